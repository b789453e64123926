package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gason-app/service-booking/internal/domain"
	customerDomain "github.com/gason-app/service-booking/internal/domain/customer"
)

// CustomerModel is the GORM model for the customers table.
type CustomerModel struct {
	Phone     string    `gorm:"primaryKey;size:20"`
	FullName  string    `gorm:"not null;size:200"`
	Email     string    `gorm:"size:200"`
	Address   string    `gorm:"size:500"`
	Role      string    `gorm:"not null;size:20;default:'customer'"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CustomerModel) TableName() string {
	return "customers"
}

// GormCustomerRepository is the GORM-based implementation of customer.Repository.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByPhone retrieves a customer profile by phone number.
func (r *GormCustomerRepository) FindByPhone(ctx context.Context, phone string) (*customerDomain.Customer, error) {
	var model CustomerModel
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Customer", phone)
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return toDomainCustomer(&model), nil
}

// Save persists a new customer profile.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customerDomain.Customer) error {
	if err := r.db.WithContext(ctx).Create(toCustomerModel(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("a customer with this phone number already exists")
		}
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

// Update persists changes to an existing customer profile.
func (r *GormCustomerRepository) Update(ctx context.Context, c *customerDomain.Customer) error {
	model := toCustomerModel(c)
	result := r.db.WithContext(ctx).
		Model(&CustomerModel{}).
		Where("phone = ?", model.Phone).
		Updates(map[string]interface{}{
			"full_name":  model.FullName,
			"email":      model.Email,
			"address":    model.Address,
			"role":       model.Role,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Customer", model.Phone)
	}
	return nil
}

// --- Conversion helpers ---

func toCustomerModel(c *customerDomain.Customer) *CustomerModel {
	return &CustomerModel{
		Phone:     c.Phone(),
		FullName:  c.FullName(),
		Email:     c.Email(),
		Address:   c.Address(),
		Role:      string(c.Role()),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func toDomainCustomer(m *CustomerModel) *customerDomain.Customer {
	return customerDomain.ReconstructCustomer(
		m.Phone,
		m.FullName,
		m.Email,
		m.Address,
		customerDomain.Role(m.Role),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
