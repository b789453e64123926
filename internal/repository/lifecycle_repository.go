package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gason-app/service-booking/internal/domain"
	bookingDomain "github.com/gason-app/service-booking/internal/domain/booking"
)

// GormLifecycleRepository implements booking.LifecycleStore. Each operation is
// one database transaction that pairs a booking-status write with its stock
// effect: the booking row is locked FOR UPDATE to serialize lifecycle
// operations per booking, and stock moves through conditional updates
// (stock > 0 guard) so the non-negativity invariant holds even when many
// bookings contend for the same cylinder.
type GormLifecycleRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormLifecycleRepository creates a new GormLifecycleRepository.
func NewGormLifecycleRepository(db *gorm.DB, logger *zap.Logger) *GormLifecycleRepository {
	return &GormLifecycleRepository{db: db, logger: logger}
}

// Allocate transitions a Pending booking to Booked while decrementing the
// referenced cylinder's stock by exactly one, atomically.
func (r *GormLifecycleRepository) Allocate(ctx context.Context, orderID string) (*bookingDomain.Booking, error) {
	var result *bookingDomain.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bk, err := lockBooking(tx, orderID)
		if err != nil {
			return err
		}

		// Re-validated under the row lock, closing the race between any
		// earlier status check and this write.
		if err := bk.Allocate(); err != nil {
			return err
		}

		if err := decrementStock(tx, bk.CylinderID()); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := writeBooking(tx, bk); err != nil {
			return err
		}

		result = bk
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Confirm transitions a booking to Confirmed, recording payment metadata.
// Confirming from Pending allocates stock in the same transaction, so a
// booking that skips the Booked step is still decremented exactly once.
// Bookings already Confirmed or later are returned unchanged.
func (r *GormLifecycleRepository) Confirm(ctx context.Context, orderID, paymentMethod, paymentRef string) (*bookingDomain.Booking, bool, error) {
	var (
		result           *bookingDomain.Booking
		alreadyConfirmed bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bk, err := lockBooking(tx, orderID)
		if err != nil {
			return err
		}

		switch bk.Status() {
		case bookingDomain.StatusConfirmed, bookingDomain.StatusOutForDelivery, bookingDomain.StatusDelivered:
			// Idempotent guard: duplicate webhook deliveries and user retries
			// must not re-apply the transition.
			result = bk
			alreadyConfirmed = true
			return nil

		case bookingDomain.StatusPending:
			if err := decrementStock(tx, bk.CylinderID()); err != nil {
				return err
			}

		case bookingDomain.StatusBooked:
			// Stock was allocated when the booking was made; only the status
			// and payment metadata change here.

		default:
			return domain.NewInvalidTransitionError(string(bk.Status()), string(bookingDomain.StatusConfirmed))
		}

		if err := bk.Confirm(paymentMethod, paymentRef); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := writeBooking(tx, bk); err != nil {
			return err
		}

		result = bk
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, alreadyConfirmed, nil
}

// Cancel transitions a booking to Cancelled, restocking one unit in the same
// transaction iff the booking held allocated stock.
func (r *GormLifecycleRepository) Cancel(ctx context.Context, orderID string) (*bookingDomain.Booking, bool, error) {
	var (
		result    *bookingDomain.Booking
		restocked bool
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bk, err := lockBooking(tx, orderID)
		if err != nil {
			return err
		}

		wasAllocated := bk.Status().HoldsStock()

		if err := bk.Cancel(); err != nil {
			return err
		}

		if wasAllocated {
			res := tx.Model(&CylinderModel{}).
				Where("id = ?", bk.CylinderID()).
				UpdateColumn("stock", gorm.Expr("stock + 1"))
			if res.Error != nil {
				return fmt.Errorf("failed to restock cylinder: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				// Cylinder record gone (catalogue edit). Keep the cancellation;
				// the unit is unaccounted for and flagged for operators.
				r.logger.Warn("cylinder missing during cancellation, restock skipped",
					zap.String("order_id", orderID),
					zap.String("cylinder_id", bk.CylinderID()),
				)
			} else {
				restocked = true
			}
		}

		bk.IncrementVersion()
		if err := writeBooking(tx, bk); err != nil {
			return err
		}

		result = bk
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, restocked, nil
}

// lockBooking loads a booking row FOR UPDATE inside the transaction.
func lockBooking(tx *gorm.DB, orderID string) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", orderID)
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}
	return toDomainBooking(&model)
}

// decrementStock takes one unit of the cylinder's stock. The stock > 0 guard
// makes the write conditional: under concurrency the database serializes the
// row update and the losing transaction sees zero rows affected.
func decrementStock(tx *gorm.DB, cylinderID string) error {
	res := tx.Model(&CylinderModel{}).
		Where("id = ? AND stock > 0", cylinderID).
		UpdateColumn("stock", gorm.Expr("stock - 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to decrement stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&CylinderModel{}).Where("id = ?", cylinderID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check cylinder existence: %w", err)
		}
		if count == 0 {
			return domain.NewNotFoundError("Cylinder", cylinderID)
		}
		return domain.NewOutOfStockError(cylinderID)
	}
	return nil
}

// writeBooking persists the mutated aggregate inside the transaction. The row
// is already locked, so this cannot lose a race; the version bump is kept for
// readers using optimistic updates outside the lifecycle.
func writeBooking(tx *gorm.DB, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	res := tx.Model(&BookingModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":         model.Status,
			"payment_method": model.PaymentMethod,
			"payment_ref":    model.PaymentRef,
			"cancelled_at":   model.CancelledAt,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to write booking: %w", res.Error)
	}
	return nil
}
