package booking

import (
	"context"
)

// Repository defines the persistence contract for booking aggregates.
type Repository interface {
	// FindByOrderID retrieves a booking by its customer-facing order identifier.
	FindByOrderID(ctx context.Context, orderID string) (*Booking, error)

	// FindPendingByOrderID retrieves a booking by order identifier only if it is
	// still Pending. Used by webhook reconciliation; a missing result is not an
	// error there.
	FindPendingByOrderID(ctx context.Context, orderID string) (*Booking, error)

	// FindByCustomer retrieves bookings belonging to a customer with pagination,
	// newest first.
	FindByCustomer(ctx context.Context, phone string, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}

// LifecycleStore executes the paired booking-status/stock writes of the booking
// lifecycle. Each method runs as a single database transaction: a status write
// is never observable without its paired stock effect, and vice versa.
type LifecycleStore interface {
	// Allocate transitions a Pending booking to Booked while decrementing the
	// referenced cylinder's stock by exactly one. Fails with OUT_OF_STOCK if no
	// stock remains (nothing written) and ALREADY_PROCESSED if the booking has
	// left Pending.
	Allocate(ctx context.Context, orderID string) (*Booking, error)

	// Confirm transitions a booking to Confirmed and records payment metadata.
	// Confirming from Pending also allocates stock in the same transaction.
	// A booking already Confirmed or later is returned unchanged with
	// alreadyConfirmed=true (idempotent guard for duplicate webhooks/retries).
	Confirm(ctx context.Context, orderID, paymentMethod, paymentRef string) (b *Booking, alreadyConfirmed bool, err error)

	// Cancel transitions a booking to Cancelled, restocking one unit in the same
	// transaction iff the booking held allocated stock. A missing cylinder row
	// skips the restock but keeps the status write. restocked reports whether a
	// unit was returned to inventory.
	Cancel(ctx context.Context, orderID string) (b *Booking, restocked bool, err error)
}
