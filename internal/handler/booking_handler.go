package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/application"
	"github.com/gason-app/service-booking/internal/auth"
	customerDomain "github.com/gason-app/service-booking/internal/domain/customer"
	"github.com/gason-app/service-booking/internal/middleware"
	"github.com/gason-app/service-booking/internal/response"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	service *application.BookingService
	logger  *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

// RegisterRoutes registers booking routes on the router.
func (h *BookingHandler) RegisterRoutes(r *gin.Engine, jwtManager *auth.JWTManager) {
	// Tracking is public so the link in the confirmation SMS works without a
	// session.
	r.GET("/api/v1/bookings/:order_id/track", h.TrackBooking)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListMyBookings)
		bookings.GET("/:order_id", h.GetBooking)
		bookings.POST("/:order_id/allocate", h.AllocateStock)
		bookings.POST("/:order_id/confirm", h.ConfirmPayment)
		bookings.POST("/:order_id/cancel", h.CancelBooking)
	}
}

// sessionFrom builds the caller session from validated token claims.
func sessionFrom(c *gin.Context) application.Session {
	phone, _ := middleware.GetCustomerPhone(c)
	role, _ := middleware.GetRole(c)
	return application.Session{Phone: phone, Role: customerDomain.Role(role)}
}

func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.service.CreateBooking(c.Request.Context(), sessionFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto)
}

// ListMyBookings handles GET /api/v1/bookings.
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	page, limit := paginationParams(c)

	result, err := h.service.GetCustomerBookings(c.Request.Context(), sessionFrom(c), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetBooking handles GET /api/v1/bookings/:order_id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	dto, err := h.service.GetBooking(c.Request.Context(), sessionFrom(c), c.Param("order_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// AllocateStock handles POST /api/v1/bookings/:order_id/allocate. This is the
// checkout step: it reserves one cylinder unit for the booking.
func (h *BookingHandler) AllocateStock(c *gin.Context) {
	orderID := c.Param("order_id")

	dto, err := h.service.AllocateStock(c.Request.Context(), sessionFrom(c), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

type confirmPaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
	PaymentRef    string `json:"payment_ref"`
}

// ConfirmPayment handles POST /api/v1/bookings/:order_id/confirm. Used for
// cash-on-delivery and manual confirmation; online payments confirm through
// the payment webhook.
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	dto, err := h.service.ConfirmPayment(c.Request.Context(), sessionFrom(c), c.Param("order_id"), req.PaymentMethod, req.PaymentRef)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// CancelBooking handles POST /api/v1/bookings/:order_id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	dto, err := h.service.CancelBooking(c.Request.Context(), sessionFrom(c), c.Param("order_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}

// TrackBooking handles GET /api/v1/bookings/:order_id/track.
func (h *BookingHandler) TrackBooking(c *gin.Context) {
	dto, err := h.service.TrackBooking(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
