package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gason-app/service-booking/internal/domain"
	bookingDomain "github.com/gason-app/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderID       string     `gorm:"uniqueIndex;not null;size:20"`
	CustomerPhone string     `gorm:"index;not null;size:20"`
	CustomerName  string     `gorm:"size:200"`
	CylinderID    string     `gorm:"not null;size:20;index"`
	CylinderName  string     `gorm:"size:100"`
	AmountPaise   int64      `gorm:"not null"`
	DeliveryDate  string     `gorm:"not null;size:10"`
	TimeSlot      string     `gorm:"not null;size:30"`
	Status        string     `gorm:"not null;size:30;index"`
	PaymentMethod *string    `gorm:"size:30"`
	PaymentRef    *string    `gorm:"size:100"`
	CancelledAt   *time.Time `gorm:""`
	Version       int64      `gorm:"not null;default:1"`
	CreatedAt     time.Time  `gorm:"not null;index"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByOrderID retrieves a booking by its customer-facing order identifier.
func (r *GormBookingRepository) FindByOrderID(ctx context.Context, orderID string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", orderID)
		}
		return nil, fmt.Errorf("failed to find booking by order ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindPendingByOrderID retrieves a booking by order identifier only if it is still Pending.
func (r *GormBookingRepository) FindPendingByOrderID(ctx context.Context, orderID string) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, string(bookingDomain.StatusPending)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Pending booking", orderID)
		}
		return nil, fmt.Errorf("failed to find pending booking: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCustomer retrieves bookings for a customer with pagination, newest first.
func (r *GormBookingRepository) FindByCustomer(ctx context.Context, phone string, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("customer_phone = ?", phone).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customer bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("customer_phone = ?", phone).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find customer bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// Surfaced as CONFLICT so the caller can retry with a fresh order id.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("order id already in use")
		}
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the version matches (current version - 1, since the
	// aggregate bumped it before the write).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_method": model.PaymentMethod,
			"payment_ref":    model.PaymentRef,
			"cancelled_at":   model.CancelledAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            bk.ID(),
		OrderID:       bk.OrderID(),
		CustomerPhone: bk.CustomerPhone(),
		CustomerName:  bk.CustomerName(),
		CylinderID:    bk.CylinderID(),
		CylinderName:  bk.CylinderName(),
		AmountPaise:   bk.AmountPaise(),
		DeliveryDate:  bk.DeliveryDate(),
		TimeSlot:      string(bk.TimeSlot()),
		Status:        string(bk.Status()),
		PaymentMethod: bk.PaymentMethod(),
		PaymentRef:    bk.PaymentRef(),
		CancelledAt:   bk.CancelledAt(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.OrderID,
		m.CustomerPhone,
		m.CustomerName,
		m.CylinderID,
		m.CylinderName,
		m.AmountPaise,
		m.DeliveryDate,
		bookingDomain.TimeSlot(m.TimeSlot),
		status,
		m.PaymentMethod,
		m.PaymentRef,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
