package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/gason-app/service-booking/internal/domain"
	"github.com/google/uuid"
)

// Booking is the aggregate root for the booking domain. A booking is never
// deleted; cancellation is a status transition.
type Booking struct {
	id            uuid.UUID
	orderID       string
	customerPhone string
	customerName  string
	cylinderID    string
	cylinderName  string
	amountPaise   int64
	deliveryDate  string
	timeSlot      TimeSlot
	status        BookingStatus

	paymentMethod *string
	paymentRef    *string
	cancelledAt   *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateOrderID creates a customer-facing order identifier "GAS-NNNNN".
func generateOrderID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", fmt.Errorf("failed to generate order ID: %w", err)
	}
	return fmt.Sprintf("GAS-%05d", 10000+n.Int64()), nil
}

// NewBooking creates a new Booking aggregate with status=Pending. No stock is
// reserved at this step; allocation is a separate lifecycle operation.
func NewBooking(
	customerPhone string,
	customerName string,
	cylinderID string,
	cylinderName string,
	amountPaise int64,
	deliveryDate string,
	timeSlot TimeSlot,
) (*Booking, error) {
	if customerPhone == "" {
		return nil, domain.NewNotAuthenticatedError("customer session is required to book")
	}
	if cylinderID == "" {
		return nil, domain.NewValidationError("cylinder type is required")
	}
	if !timeSlot.IsValid() {
		return nil, domain.NewValidationError("a delivery time slot must be selected")
	}
	if _, err := time.Parse("2006-01-02", deliveryDate); err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid delivery date: %s", deliveryDate))
	}
	if amountPaise <= 0 {
		return nil, domain.NewValidationError("booking amount must be positive")
	}

	orderID, err := generateOrderID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		orderID:       orderID,
		customerPhone: customerPhone,
		customerName:  customerName,
		cylinderID:    cylinderID,
		cylinderName:  cylinderName,
		amountPaise:   amountPaise,
		deliveryDate:  deliveryDate,
		timeSlot:      timeSlot,
		status:        StatusPending,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	orderID string,
	customerPhone string,
	customerName string,
	cylinderID string,
	cylinderName string,
	amountPaise int64,
	deliveryDate string,
	timeSlot TimeSlot,
	status BookingStatus,
	paymentMethod *string,
	paymentRef *string,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		orderID:       orderID,
		customerPhone: customerPhone,
		customerName:  customerName,
		cylinderID:    cylinderID,
		cylinderName:  cylinderName,
		amountPaise:   amountPaise,
		deliveryDate:  deliveryDate,
		timeSlot:      timeSlot,
		status:        status,
		paymentMethod: paymentMethod,
		paymentRef:    paymentRef,
		cancelledAt:   cancelledAt,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's internal unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// OrderID returns the customer-facing order identifier ("GAS-NNNNN").
func (b *Booking) OrderID() string { return b.orderID }

// CustomerPhone returns the phone number keying the customer profile.
func (b *Booking) CustomerPhone() string { return b.customerPhone }

// CustomerName returns the customer name snapshot taken at booking time.
func (b *Booking) CustomerName() string { return b.customerName }

// CylinderID returns the booked cylinder type identifier.
func (b *Booking) CylinderID() string { return b.cylinderID }

// CylinderName returns the cylinder display name snapshot taken at booking time.
func (b *Booking) CylinderName() string { return b.cylinderName }

// AmountPaise returns the total amount in paise, frozen at booking time.
func (b *Booking) AmountPaise() int64 { return b.amountPaise }

// DeliveryDate returns the requested delivery date (YYYY-MM-DD).
func (b *Booking) DeliveryDate() string { return b.deliveryDate }

// TimeSlot returns the requested delivery window.
func (b *Booking) TimeSlot() TimeSlot { return b.timeSlot }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentMethod returns the payment method recorded on confirmation, or nil.
func (b *Booking) PaymentMethod() *string { return b.paymentMethod }

// PaymentRef returns the external payment identifier, or nil.
func (b *Booking) PaymentRef() *string { return b.paymentRef }

// CancelledAt returns the time the booking was cancelled, or nil.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Allocate transitions the booking from Pending to Booked. The paired stock
// decrement is the lifecycle store's responsibility and must commit atomically
// with this status change.
func (b *Booking) Allocate() error {
	if b.status != StatusPending {
		return domain.NewAlreadyProcessedError(b.orderID)
	}
	b.status = StatusBooked
	b.updatedAt = time.Now().UTC()
	return nil
}

// Confirm transitions the booking to Confirmed and records payment metadata.
func (b *Booking) Confirm(paymentMethod, paymentRef string) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	if paymentMethod != "" {
		b.paymentMethod = &paymentMethod
	}
	if paymentRef != "" {
		b.paymentRef = &paymentRef
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to Cancelled if it is not in a terminal state.
func (b *Booking) Cancel() error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// MarkOutOfStock transitions the booking to "Cancelled - Out of Stock" after a
// failed allocation.
func (b *Booking) MarkOutOfStock() error {
	if !b.status.CanTransitionTo(StatusCancelledOutOfStock) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusCancelledOutOfStock))
	}
	now := time.Now().UTC()
	b.status = StatusCancelledOutOfStock
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// MarkOutForDelivery transitions the booking from Confirmed to Out for Delivery.
func (b *Booking) MarkOutForDelivery() error {
	if !b.status.CanTransitionTo(StatusOutForDelivery) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusOutForDelivery))
	}
	b.status = StatusOutForDelivery
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkDelivered transitions the booking from Out for Delivery to Delivered.
func (b *Booking) MarkDelivered() error {
	if !b.status.CanTransitionTo(StatusDelivered) {
		return domain.NewInvalidTransitionError(string(b.status), string(StatusDelivered))
	}
	b.status = StatusDelivered
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
