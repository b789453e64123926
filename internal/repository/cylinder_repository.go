package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gason-app/service-booking/internal/domain"
	"github.com/gason-app/service-booking/internal/domain/inventory"
)

// CylinderModel is the GORM model for the cylinders table.
type CylinderModel struct {
	ID                  string    `gorm:"primaryKey;size:20"`
	Name                string    `gorm:"not null;size:100"`
	PricePaise          int64     `gorm:"not null"`
	DeliveryChargePaise int64     `gorm:"not null"`
	Stock               int       `gorm:"not null;default:0;check:stock >= 0"`
	Description         string    `gorm:"size:500"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CylinderModel) TableName() string {
	return "cylinders"
}

// GormCylinderRepository is the GORM-based implementation of inventory.Repository.
type GormCylinderRepository struct {
	db *gorm.DB
}

// NewGormCylinderRepository creates a new GormCylinderRepository.
func NewGormCylinderRepository(db *gorm.DB) *GormCylinderRepository {
	return &GormCylinderRepository{db: db}
}

// FindByID retrieves a cylinder type by its catalogue identifier.
func (r *GormCylinderRepository) FindByID(ctx context.Context, id string) (*inventory.CylinderType, error) {
	var model CylinderModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Cylinder", id)
		}
		return nil, fmt.Errorf("failed to find cylinder: %w", err)
	}
	return toDomainCylinder(&model), nil
}

// ListAll retrieves the full catalogue ordered by identifier.
func (r *GormCylinderRepository) ListAll(ctx context.Context) ([]*inventory.CylinderType, error) {
	var models []CylinderModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list cylinders: %w", err)
	}

	cylinders := make([]*inventory.CylinderType, len(models))
	for i, m := range models {
		cylinders[i] = toDomainCylinder(&m)
	}
	return cylinders, nil
}

// Save persists a new cylinder type.
func (r *GormCylinderRepository) Save(ctx context.Context, cyl *inventory.CylinderType) error {
	if err := r.db.WithContext(ctx).Create(toCylinderModel(cyl)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("a cylinder with this id already exists")
		}
		return fmt.Errorf("failed to save cylinder: %w", err)
	}
	return nil
}

// Update persists changes to an existing cylinder type. The stock column is
// deliberately excluded: stock moves only through relative updates
// (IncrementStock, the lifecycle store), so a stale aggregate snapshot can
// never overwrite a concurrent allocation's decrement.
func (r *GormCylinderRepository) Update(ctx context.Context, cyl *inventory.CylinderType) error {
	model := toCylinderModel(cyl)
	result := r.db.WithContext(ctx).
		Model(&CylinderModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":                  model.Name,
			"price_paise":           model.PricePaise,
			"delivery_charge_paise": model.DeliveryChargePaise,
			"description":           model.Description,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update cylinder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Cylinder", model.ID)
	}
	return nil
}

// IncrementStock adjusts a cylinder's stock by delta as a relative update, so
// it composes with the lifecycle store's conditional decrements.
func (r *GormCylinderRepository) IncrementStock(ctx context.Context, id string, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&CylinderModel{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return fmt.Errorf("failed to adjust stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Cylinder", id)
	}
	return nil
}

// --- Conversion helpers ---

func toCylinderModel(c *inventory.CylinderType) *CylinderModel {
	return &CylinderModel{
		ID:                  c.ID(),
		Name:                c.Name(),
		PricePaise:          c.PricePaise(),
		DeliveryChargePaise: c.DeliveryChargePaise(),
		Stock:               c.Stock(),
		Description:         c.Description(),
		CreatedAt:           c.CreatedAt(),
		UpdatedAt:           c.UpdatedAt(),
	}
}

func toDomainCylinder(m *CylinderModel) *inventory.CylinderType {
	return inventory.ReconstructCylinderType(
		m.ID,
		m.Name,
		m.PricePaise,
		m.DeliveryChargePaise,
		m.Stock,
		m.Description,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
