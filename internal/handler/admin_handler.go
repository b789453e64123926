package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/application"
	"github.com/gason-app/service-booking/internal/auth"
	bookingDomain "github.com/gason-app/service-booking/internal/domain/booking"
	customerDomain "github.com/gason-app/service-booking/internal/domain/customer"
	"github.com/gason-app/service-booking/internal/middleware"
	"github.com/gason-app/service-booking/internal/response"
)

// AdminHandler exposes the management dashboard endpoints.
type AdminHandler struct {
	bookings  *application.BookingService
	inventory *application.InventoryService
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, inventory *application.InventoryService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{bookings: bookings, inventory: inventory, logger: logger}
}

// RegisterRoutes registers admin routes on the router.
func (h *AdminHandler) RegisterRoutes(r *gin.Engine, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager))
	admin.Use(middleware.RequireRole(string(customerDomain.RoleAdmin)))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.PATCH("/bookings/:order_id/status", h.UpdateBookingStatus)
		admin.GET("/stats", h.GetStats)

		admin.POST("/cylinders", h.CreateCylinder)
		admin.PATCH("/cylinders/:id/stock", h.RestockCylinder)
		admin.PATCH("/cylinders/:id/pricing", h.SetCylinderPricing)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := paginationParams(c)

	dtos, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dtos, total, page, limit)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBookingStatus handles PATCH /api/v1/admin/bookings/:order_id/status.
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.bookings.UpdateStatus(c.Request.Context(), sessionFrom(c), c.Param("order_id"), bookingDomain.BookingStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// GetStats handles GET /api/v1/admin/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// CreateCylinder handles POST /api/v1/admin/cylinders.
func (h *AdminHandler) CreateCylinder(c *gin.Context) {
	var req application.CreateCylinderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.inventory.CreateCylinder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

type restockRequest struct {
	Units int `json:"units" binding:"required"`
}

// RestockCylinder handles PATCH /api/v1/admin/cylinders/:id/stock.
func (h *AdminHandler) RestockCylinder(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.inventory.Restock(c.Request.Context(), c.Param("id"), req.Units)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

type pricingRequest struct {
	PricePaise          int64 `json:"price_paise" binding:"required"`
	DeliveryChargePaise int64 `json:"delivery_charge_paise"`
}

// SetCylinderPricing handles PATCH /api/v1/admin/cylinders/:id/pricing.
func (h *AdminHandler) SetCylinderPricing(c *gin.Context) {
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.inventory.SetPricing(c.Request.Context(), c.Param("id"), req.PricePaise, req.DeliveryChargePaise)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
