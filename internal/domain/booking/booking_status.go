package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
// The string values are part of the external contract (order history, tracking,
// webhook reconciliation) and must match exactly, including case and spacing.
type BookingStatus string

const (
	StatusPending             BookingStatus = "Pending"
	StatusBooked              BookingStatus = "Booked"
	StatusConfirmed           BookingStatus = "Confirmed"
	StatusOutForDelivery      BookingStatus = "Out for Delivery"
	StatusDelivered           BookingStatus = "Delivered"
	StatusCancelled           BookingStatus = "Cancelled"
	StatusCancelledOutOfStock BookingStatus = "Cancelled - Out of Stock"
)

// validTransitions defines the state machine for booking status transitions.
// Pending may confirm directly (card/COD checkout) or via the Booked step
// (payment page reservation). Terminal states admit nothing.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:             {StatusBooked, StatusConfirmed, StatusCancelled, StatusCancelledOutOfStock},
	StatusBooked:              {StatusConfirmed, StatusCancelled, StatusCancelledOutOfStock},
	StatusConfirmed:           {StatusOutForDelivery, StatusCancelled, StatusCancelledOutOfStock},
	StatusOutForDelivery:      {StatusDelivered},
	StatusDelivered:           {},
	StatusCancelled:           {},
	StatusCancelledOutOfStock: {},
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// CanBeCancelled returns true if the booking can be cancelled from this status.
func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

// HoldsStock returns true if a booking in this status has a unit of cylinder
// stock allocated to it. Cancelling from such a status must restock exactly one.
func (s BookingStatus) HoldsStock() bool {
	switch s {
	case StatusBooked, StatusConfirmed, StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
