package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/domain"
	"github.com/gason-app/service-booking/internal/domain/inventory"
)

// CylinderDTO is the response representation of a cylinder type.
type CylinderDTO struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	PricePaise          int64     `json:"price_paise"`
	DeliveryChargePaise int64     `json:"delivery_charge_paise"`
	TotalPaise          int64     `json:"total_paise"`
	Stock               int       `json:"stock"`
	InStock             bool      `json:"in_stock"`
	Description         string    `json:"description,omitempty"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// CreateCylinderRequest holds the data for registering a new cylinder type.
type CreateCylinderRequest struct {
	ID                  string `json:"id" binding:"required"`
	Name                string `json:"name" binding:"required"`
	PricePaise          int64  `json:"price_paise" binding:"required"`
	DeliveryChargePaise int64  `json:"delivery_charge_paise"`
	Stock               int    `json:"stock"`
	Description         string `json:"description"`
}

// InventoryService manages the cylinder catalogue and stock levels.
type InventoryService struct {
	cylinders inventory.Repository
	logger    *zap.Logger
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(cylinders inventory.Repository, logger *zap.Logger) *InventoryService {
	return &InventoryService{cylinders: cylinders, logger: logger}
}

// ListCatalogue returns all cylinder types, including out-of-stock ones so the
// storefront can render them as unavailable.
func (s *InventoryService) ListCatalogue(ctx context.Context) ([]CylinderDTO, error) {
	cylinders, err := s.cylinders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cylinders: %w", err)
	}

	dtos := make([]CylinderDTO, len(cylinders))
	for i, cyl := range cylinders {
		dtos[i] = toCylinderDTO(cyl)
	}
	return dtos, nil
}

// GetCylinder retrieves a single cylinder type.
func (s *InventoryService) GetCylinder(ctx context.Context, id string) (*CylinderDTO, error) {
	cyl, err := s.cylinders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toCylinderDTO(cyl)
	return &dto, nil
}

// CreateCylinder registers a new cylinder type in the catalogue (admin).
func (s *InventoryService) CreateCylinder(ctx context.Context, req CreateCylinderRequest) (*CylinderDTO, error) {
	cyl, err := inventory.NewCylinderType(req.ID, req.Name, req.PricePaise, req.DeliveryChargePaise, req.Stock, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.cylinders.Save(ctx, cyl); err != nil {
		return nil, err
	}

	s.logger.Info("cylinder type registered",
		zap.String("cylinder_id", cyl.ID()),
		zap.Int("stock", cyl.Stock()),
	)

	dto := toCylinderDTO(cyl)
	return &dto, nil
}

// Restock adds units to a cylinder type's stock (admin). The write is a
// relative increment so allocations that land concurrently keep their
// decrements.
func (s *InventoryService) Restock(ctx context.Context, id string, units int) (*CylinderDTO, error) {
	if err := inventory.ValidateRestock(units); err != nil {
		return nil, err
	}

	if err := s.cylinders.IncrementStock(ctx, id, units); err != nil {
		return nil, err
	}

	cyl, err := s.cylinders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("cylinder restocked",
		zap.String("cylinder_id", cyl.ID()),
		zap.Int("units", units),
		zap.Int("stock", cyl.Stock()),
	)

	dto := toCylinderDTO(cyl)
	return &dto, nil
}

// SetPricing updates a cylinder type's price and delivery charge (admin).
// Existing bookings keep the amount frozen at creation.
func (s *InventoryService) SetPricing(ctx context.Context, id string, pricePaise, deliveryChargePaise int64) (*CylinderDTO, error) {
	cyl, err := s.cylinders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := cyl.SetPricing(pricePaise, deliveryChargePaise); err != nil {
		return nil, err
	}

	if err := s.cylinders.Update(ctx, cyl); err != nil {
		return nil, err
	}

	dto := toCylinderDTO(cyl)
	return &dto, nil
}

// SeedCatalogue inserts the default cylinder types if the catalogue is empty.
// Safe to run on every startup.
func (s *InventoryService) SeedCatalogue(ctx context.Context) error {
	existing, err := s.cylinders.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check catalogue: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []CreateCylinderRequest{
		{ID: "5kg", Name: "5kg Domestic Cylinder", PricePaise: 45000, DeliveryChargePaise: 5000, Stock: 150, Description: "Compact cylinder for small households"},
		{ID: "14.2kg", Name: "14.2kg Domestic Cylinder", PricePaise: 110000, DeliveryChargePaise: 10000, Stock: 320, Description: "Standard household cylinder"},
		{ID: "19kg", Name: "19kg Commercial Cylinder", PricePaise: 220000, DeliveryChargePaise: 50000, Stock: 85, Description: "Commercial cylinder for restaurants and businesses"},
	}

	for _, req := range defaults {
		if _, err := s.CreateCylinder(ctx, req); err != nil {
			if domain.IsCode(err, domain.ErrCodeConflict) {
				continue
			}
			return fmt.Errorf("failed to seed cylinder %s: %w", req.ID, err)
		}
	}

	s.logger.Info("cylinder catalogue seeded", zap.Int("types", len(defaults)))
	return nil
}

func toCylinderDTO(cyl *inventory.CylinderType) CylinderDTO {
	return CylinderDTO{
		ID:                  cyl.ID(),
		Name:                cyl.Name(),
		PricePaise:          cyl.PricePaise(),
		DeliveryChargePaise: cyl.DeliveryChargePaise(),
		TotalPaise:          cyl.BookingAmountPaise(),
		Stock:               cyl.Stock(),
		InStock:             cyl.InStock(),
		Description:         cyl.Description(),
		UpdatedAt:           cyl.UpdatedAt(),
	}
}
