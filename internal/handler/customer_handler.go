package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/application"
	"github.com/gason-app/service-booking/internal/auth"
	"github.com/gason-app/service-booking/internal/middleware"
	"github.com/gason-app/service-booking/internal/response"
)

// CustomerHandler exposes customer registration, login and profile endpoints.
type CustomerHandler struct {
	service *application.CustomerService
	logger  *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *application.CustomerService, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, logger: logger}
}

// RegisterRoutes registers customer routes on the router.
func (h *CustomerHandler) RegisterRoutes(r *gin.Engine, jwtManager *auth.JWTManager) {
	customers := r.Group("/api/v1/customers")
	{
		customers.POST("/register", h.Register)
		customers.POST("/login", h.Login)
	}

	me := r.Group("/api/v1/customers/me")
	me.Use(middleware.AuthMiddleware(jwtManager))
	{
		me.GET("", h.GetProfile)
		me.PUT("", h.UpdateProfile)
	}
}

// Register handles POST /api/v1/customers/register.
func (h *CustomerHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

type loginRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// Login handles POST /api/v1/customers/login.
func (h *CustomerHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Phone)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProfile handles GET /api/v1/customers/me.
func (h *CustomerHandler) GetProfile(c *gin.Context) {
	dto, err := h.service.GetProfile(c.Request.Context(), sessionFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// UpdateProfile handles PUT /api/v1/customers/me.
func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	var req application.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.service.UpdateProfile(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
