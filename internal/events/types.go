package events

import "time"

// Kafka topics.
const (
	// TopicBookingEvents carries events emitted by this service.
	TopicBookingEvents = "booking.events"

	// TopicDeliveryEvents carries events from the delivery fleet system.
	TopicDeliveryEvents = "delivery.events"
)

// Event types published on booking.events.
const (
	BookingCreated   = "booking.created"
	StockAllocated   = "booking.stock_allocated"
	PaymentConfirmed = "booking.payment_confirmed"
	BookingCancelled = "booking.cancelled"
	DeliveryUpdated  = "booking.delivery_updated"
)

// Event types consumed from delivery.events.
const (
	DeliveryDispatched = "delivery.dispatched"
	DeliveryCompleted  = "delivery.completed"
)

// BookingCreatedEvent is published when a new booking enters Pending.
type BookingCreatedEvent struct {
	OrderID       string    `json:"order_id"`
	CustomerPhone string    `json:"customer_phone"`
	CylinderID    string    `json:"cylinder_id"`
	AmountPaise   int64     `json:"amount_paise"`
	DeliveryDate  string    `json:"delivery_date"`
	TimeSlot      string    `json:"time_slot"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// StockAllocatedEvent is published when a booking reserves a cylinder unit.
type StockAllocatedEvent struct {
	OrderID    string    `json:"order_id"`
	CylinderID string    `json:"cylinder_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentConfirmedEvent is published when a booking's payment is confirmed.
type PaymentConfirmedEvent struct {
	OrderID       string    `json:"order_id"`
	PaymentMethod string    `json:"payment_method"`
	PaymentRef    string    `json:"payment_ref,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	Restocked  bool      `json:"restocked"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DeliveryUpdatedEvent is published when a booking moves through the delivery
// leg of its lifecycle (Out for Delivery, Delivered).
type DeliveryUpdatedEvent struct {
	OrderID    string    `json:"order_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DeliveryStatusEvent is the payload of delivery.dispatched and
// delivery.completed events from the fleet system.
type DeliveryStatusEvent struct {
	OrderID    string    `json:"order_id"`
	DriverID   string    `json:"driver_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
