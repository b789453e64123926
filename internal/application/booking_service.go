package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/domain"
	bookingDomain "github.com/gason-app/service-booking/internal/domain/booking"
	customerDomain "github.com/gason-app/service-booking/internal/domain/customer"
	"github.com/gason-app/service-booking/internal/domain/inventory"
	"github.com/gason-app/service-booking/internal/events"
	"github.com/gason-app/service-booking/internal/kafka"
)

// Session identifies the authenticated caller for engine operations. It is
// built from validated token claims at the transport boundary and passed
// explicitly into every call; the engine never reads ambient session state.
type Session struct {
	Phone string
	Role  customerDomain.Role
}

// IsAdmin returns true if the session belongs to an administrator.
func (s Session) IsAdmin() bool {
	return s.Role == customerDomain.RoleAdmin
}

// EventPublisher publishes CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CylinderID   string `json:"cylinder_id" binding:"required"`
	DeliveryDate string `json:"delivery_date" binding:"required"`
	TimeSlot     string `json:"time_slot" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	OrderID       string     `json:"order_id"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CylinderID    string     `json:"cylinder_id"`
	CylinderName  string     `json:"cylinder_name"`
	AmountPaise   int64      `json:"amount_paise"`
	DeliveryDate  string     `json:"delivery_date"`
	TimeSlot      string     `json:"time_slot"`
	Status        string     `json:"status"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	PaymentRef    *string    `json:"payment_ref,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: creation, stock allocation, payment confirmation, cancellation
// and delivery progress.
type BookingService struct {
	repo      bookingDomain.Repository
	lifecycle bookingDomain.LifecycleStore
	cylinders inventory.Repository
	customers customerDomain.Repository
	producer  EventPublisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.Repository,
	lifecycle bookingDomain.LifecycleStore,
	cylinders inventory.Repository,
	customers customerDomain.Repository,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:      repo,
		lifecycle: lifecycle,
		cylinders: cylinders,
		customers: customers,
		producer:  producer,
		logger:    logger,
	}
}

// CreateBooking creates a new Pending booking for the session's customer. The
// amount is frozen from the current catalogue price; no stock is reserved yet.
// The stock pre-check here is optimistic only, the authoritative check is the
// conditional decrement at allocation.
func (s *BookingService) CreateBooking(ctx context.Context, sess Session, req CreateBookingRequest) (*BookingDTO, error) {
	if sess.Phone == "" {
		return nil, domain.NewNotAuthenticatedError("login is required to book a cylinder")
	}

	cust, err := s.customers.FindByPhone(ctx, sess.Phone)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, domain.NewNotAuthenticatedError("no customer profile for this session")
		}
		return nil, err
	}

	cyl, err := s.cylinders.FindByID(ctx, req.CylinderID)
	if err != nil {
		return nil, err
	}
	if !cyl.InStock() {
		return nil, domain.NewOutOfStockError(cyl.ID())
	}

	// Order ids are drawn from a short random space, so two bookings can
	// collide on the unique index. A collision just means drawing again.
	const maxOrderIDAttempts = 5

	var bk *bookingDomain.Booking
	for attempt := 1; ; attempt++ {
		bk, err = bookingDomain.NewBooking(
			cust.Phone(),
			cust.FullName(),
			cyl.ID(),
			cyl.Name(),
			cyl.BookingAmountPaise(),
			req.DeliveryDate,
			bookingDomain.TimeSlot(req.TimeSlot),
		)
		if err != nil {
			return nil, err
		}

		err = s.repo.Save(ctx, bk)
		if err == nil {
			break
		}
		if domain.IsCode(err, domain.ErrCodeConflict) && attempt < maxOrderIDAttempts {
			s.logger.Warn("order id collision, retrying with a fresh id",
				zap.String("order_id", bk.OrderID()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.publishEvent(ctx, events.BookingCreated, bk.OrderID(), events.BookingCreatedEvent{
		OrderID:       bk.OrderID(),
		CustomerPhone: bk.CustomerPhone(),
		CylinderID:    bk.CylinderID(),
		AmountPaise:   bk.AmountPaise(),
		DeliveryDate:  bk.DeliveryDate(),
		TimeSlot:      string(bk.TimeSlot()),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// AllocateStock reserves one cylinder unit for a Pending booking, moving it to
// Booked. Customers may only allocate their own bookings. On OUT_OF_STOCK the
// booking is moved to "Cancelled - Out of Stock" as a best-effort follow-up
// write outside the failed transaction.
func (s *BookingService) AllocateStock(ctx context.Context, sess Session, orderID string) (*BookingDTO, error) {
	if err := s.authorizeOwner(ctx, sess, orderID); err != nil {
		return nil, err
	}
	return s.allocateStock(ctx, orderID)
}

func (s *BookingService) allocateStock(ctx context.Context, orderID string) (*BookingDTO, error) {
	bk, err := s.lifecycle.Allocate(ctx, orderID)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeOutOfStock) {
			s.markOutOfStock(ctx, orderID)
		}
		return nil, err
	}

	s.publishEvent(ctx, events.StockAllocated, bk.OrderID(), events.StockAllocatedEvent{
		OrderID:    bk.OrderID(),
		CylinderID: bk.CylinderID(),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmPayment transitions a booking to Confirmed, recording the payment
// method and external payment reference. Customers may only confirm their own
// bookings. Already-confirmed bookings are a no-op success, so duplicate
// webhook deliveries and user retries are safe.
func (s *BookingService) ConfirmPayment(ctx context.Context, sess Session, orderID, paymentMethod, paymentRef string) (*BookingDTO, error) {
	if err := s.authorizeOwner(ctx, sess, orderID); err != nil {
		return nil, err
	}
	return s.confirmPayment(ctx, orderID, paymentMethod, paymentRef)
}

// confirmPayment is the trust-boundary-free confirmation path, used after an
// ownership check and by the signature-verified webhook reconciliation.
func (s *BookingService) confirmPayment(ctx context.Context, orderID, paymentMethod, paymentRef string) (*BookingDTO, error) {
	bk, alreadyConfirmed, err := s.lifecycle.Confirm(ctx, orderID, paymentMethod, paymentRef)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeOutOfStock) {
			s.markOutOfStock(ctx, orderID)
		}
		return nil, err
	}

	if alreadyConfirmed {
		s.logger.Info("payment confirmation skipped, booking already confirmed",
			zap.String("order_id", orderID),
		)
	} else {
		s.publishEvent(ctx, events.PaymentConfirmed, bk.OrderID(), events.PaymentConfirmedEvent{
			OrderID:       bk.OrderID(),
			PaymentMethod: paymentMethod,
			PaymentRef:    paymentRef,
			OccurredAt:    time.Now().UTC(),
		})
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// ReconcilePayment matches an external payment-captured notification to a
// Pending booking and confirms it. A missing Pending booking is a no-op
// success: the booking may have been confirmed through another path already.
func (s *BookingService) ReconcilePayment(ctx context.Context, orderID, externalPaymentID string) error {
	_, err := s.repo.FindPendingByOrderID(ctx, orderID)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeNotFound) {
			s.logger.Info("no pending booking for captured payment, nothing to reconcile",
				zap.String("order_id", orderID),
				zap.String("payment_id", externalPaymentID),
			)
			return nil
		}
		return err
	}

	if _, err := s.confirmPayment(ctx, orderID, "razorpay", externalPaymentID); err != nil {
		// The lookup races with other confirmation paths; losing that race is
		// the idempotent case, not a failure.
		if domain.IsCode(err, domain.ErrCodeAlreadyProcessed) {
			return nil
		}
		return err
	}

	s.logger.Info("booking confirmed from payment webhook",
		zap.String("order_id", orderID),
		zap.String("payment_id", externalPaymentID),
	)
	return nil
}

// CancelBooking cancels a booking that is not yet in a terminal state,
// restocking its cylinder unit if one was allocated. Customers may only cancel
// their own bookings.
func (s *BookingService) CancelBooking(ctx context.Context, sess Session, orderID string) (*BookingDTO, error) {
	if err := s.authorizeOwner(ctx, sess, orderID); err != nil {
		return nil, err
	}

	bk, restocked, err := s.lifecycle.Cancel(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.BookingCancelled, bk.OrderID(), events.BookingCancelledEvent{
		OrderID:    bk.OrderID(),
		Status:     string(bk.Status()),
		Restocked:  restocked,
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// MarkOutForDelivery moves a Confirmed booking to Out for Delivery.
func (s *BookingService) MarkOutForDelivery(ctx context.Context, orderID string) (*BookingDTO, error) {
	return s.updateDeliveryLeg(ctx, orderID, (*bookingDomain.Booking).MarkOutForDelivery)
}

// MarkDelivered moves an Out for Delivery booking to Delivered.
func (s *BookingService) MarkDelivered(ctx context.Context, orderID string) (*BookingDTO, error) {
	return s.updateDeliveryLeg(ctx, orderID, (*bookingDomain.Booking).MarkDelivered)
}

// UpdateStatus applies an arbitrary status transition requested from the admin
// dashboard, subject to the transition table. Cancellation goes through
// CancelBooking so the restock pairing is preserved.
func (s *BookingService) UpdateStatus(ctx context.Context, sess Session, orderID string, target bookingDomain.BookingStatus) (*BookingDTO, error) {
	if !target.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown status: %s", target))
	}

	switch target {
	case bookingDomain.StatusCancelled:
		return s.CancelBooking(ctx, sess, orderID)
	case bookingDomain.StatusBooked:
		return s.AllocateStock(ctx, sess, orderID)
	case bookingDomain.StatusConfirmed:
		return s.ConfirmPayment(ctx, sess, orderID, "manual", "")
	case bookingDomain.StatusOutForDelivery:
		return s.MarkOutForDelivery(ctx, orderID)
	case bookingDomain.StatusDelivered:
		return s.MarkDelivered(ctx, orderID)
	default:
		return nil, domain.NewInvalidTransitionError("", string(target))
	}
}

// GetBooking retrieves a single booking. Customers may only see their own.
func (s *BookingService) GetBooking(ctx context.Context, sess Session, orderID string) (*BookingDTO, error) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !sess.IsAdmin() && bk.CustomerPhone() != sess.Phone {
		return nil, domain.NewForbiddenError("booking does not belong to this customer")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// TrackBooking retrieves the delivery status for an order id. Tracking is
// public: only non-identifying fields are returned.
func (s *BookingService) TrackBooking(ctx context.Context, orderID string) (*TrackingDTO, error) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &TrackingDTO{
		OrderID:      bk.OrderID(),
		CylinderName: bk.CylinderName(),
		DeliveryDate: bk.DeliveryDate(),
		TimeSlot:     string(bk.TimeSlot()),
		Status:       string(bk.Status()),
	}, nil
}

// TrackingDTO is the public tracking view of a booking.
type TrackingDTO struct {
	OrderID      string `json:"order_id"`
	CylinderName string `json:"cylinder_name"`
	DeliveryDate string `json:"delivery_date"`
	TimeSlot     string `json:"time_slot"`
	Status       string `json:"status"`
}

// GetCustomerBookings retrieves the session customer's order history.
func (s *BookingService) GetCustomerBookings(ctx context.Context, sess Session, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	if sess.Phone == "" {
		return nil, domain.NewNotAuthenticatedError("login is required")
	}

	bookings, total, err := s.repo.FindByCustomer(ctx, sess.Phone, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

// authorizeOwner rejects callers that neither own the booking nor hold the
// admin role.
func (s *BookingService) authorizeOwner(ctx context.Context, sess Session, orderID string) error {
	if sess.IsAdmin() {
		return nil
	}
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if bk.CustomerPhone() != sess.Phone {
		return domain.NewForbiddenError("booking does not belong to this customer")
	}
	return nil
}

func (s *BookingService) updateDeliveryLeg(ctx context.Context, orderID string, transition func(*bookingDomain.Booking) error) (*BookingDTO, error) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := transition(bk); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.DeliveryUpdated, bk.OrderID(), events.DeliveryUpdatedEvent{
		OrderID:    bk.OrderID(),
		Status:     string(bk.Status()),
		OccurredAt: time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// markOutOfStock is the best-effort follow-up after a failed allocation. It is
// deliberately outside the failed transaction; a crash in between leaves the
// booking Pending, which a later retry or cancellation resolves.
func (s *BookingService) markOutOfStock(ctx context.Context, orderID string) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to load booking for out-of-stock follow-up",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	if err := bk.MarkOutOfStock(); err != nil {
		s.logger.Warn("out-of-stock follow-up skipped",
			zap.String("order_id", orderID),
			zap.String("status", string(bk.Status())),
			zap.Error(err),
		)
		return
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		s.logger.Error("failed to mark booking out of stock",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	s.publishEvent(ctx, events.BookingCancelled, bk.OrderID(), events.BookingCancelledEvent{
		OrderID:    bk.OrderID(),
		Status:     string(bk.Status()),
		Restocked:  false,
		OccurredAt: time.Now().UTC(),
	})
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
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
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}
