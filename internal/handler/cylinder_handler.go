package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/application"
	"github.com/gason-app/service-booking/internal/response"
)

// CylinderHandler exposes the public cylinder catalogue.
type CylinderHandler struct {
	service *application.InventoryService
	logger  *zap.Logger
}

// NewCylinderHandler creates a new CylinderHandler.
func NewCylinderHandler(service *application.InventoryService, logger *zap.Logger) *CylinderHandler {
	return &CylinderHandler{service: service, logger: logger}
}

// RegisterRoutes registers catalogue routes on the router. The catalogue is
// public: customers browse before they log in.
func (h *CylinderHandler) RegisterRoutes(r *gin.Engine) {
	cylinders := r.Group("/api/v1/cylinders")
	{
		cylinders.GET("", h.ListCatalogue)
		cylinders.GET("/:id", h.GetCylinder)
	}
}

// ListCatalogue handles GET /api/v1/cylinders.
func (h *CylinderHandler) ListCatalogue(c *gin.Context) {
	dtos, err := h.service.ListCatalogue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dtos)
}

// GetCylinder handles GET /api/v1/cylinders/:id.
func (h *CylinderHandler) GetCylinder(c *gin.Context) {
	dto, err := h.service.GetCylinder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto)
}
