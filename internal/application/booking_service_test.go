package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gason-app/service-booking/internal/domain"
	bookingDomain "github.com/gason-app/service-booking/internal/domain/booking"
	customerDomain "github.com/gason-app/service-booking/internal/domain/customer"
	"github.com/gason-app/service-booking/internal/domain/inventory"
	"github.com/gason-app/service-booking/internal/events"
	"github.com/gason-app/service-booking/internal/kafka"
)

// --- In-memory fakes ---

type fakeBookingRepo struct {
	bookings map[string]*bookingDomain.Booking
	// saveConflicts makes the next N Save calls fail with CONFLICT, like a
	// unique-index violation on the order id.
	saveConflicts int
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByOrderID(_ context.Context, orderID string) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[orderID]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", orderID)
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindPendingByOrderID(_ context.Context, orderID string) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[orderID]
	if !ok || bk.Status() != bookingDomain.StatusPending {
		return nil, domain.NewNotFoundError("Booking", orderID)
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByCustomer(_ context.Context, phone string, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	var result []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.CustomerPhone() == phone {
			result = append(result, bk)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	var result []*bookingDomain.Booking
	for _, bk := range r.bookings {
		result = append(result, bk)
	}
	return result, int64(len(result)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[string(bk.Status())]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	if r.saveConflicts > 0 {
		r.saveConflicts--
		return domain.NewConflictError("order id already in use")
	}
	if _, ok := r.bookings[bk.OrderID()]; ok {
		return domain.NewConflictError("order id already in use")
	}
	r.bookings[bk.OrderID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if _, ok := r.bookings[bk.OrderID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.OrderID())
	}
	r.bookings[bk.OrderID()] = bk
	return nil
}

// fakeLifecycleStore mimics the transactional store against in-memory stock
// counts: the stock check happens before any state change so a failed call
// leaves the booking untouched, like a rolled-back transaction.
type fakeLifecycleStore struct {
	repo  *fakeBookingRepo
	stock map[string]int
}

func (s *fakeLifecycleStore) Allocate(ctx context.Context, orderID string) (*bookingDomain.Booking, error) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if bk.Status() != bookingDomain.StatusPending {
		return nil, domain.NewAlreadyProcessedError(orderID)
	}
	if s.stock[bk.CylinderID()] <= 0 {
		return nil, domain.NewOutOfStockError(bk.CylinderID())
	}
	if err := bk.Allocate(); err != nil {
		return nil, err
	}
	s.stock[bk.CylinderID()]--
	bk.IncrementVersion()
	return bk, nil
}

func (s *fakeLifecycleStore) Confirm(ctx context.Context, orderID, paymentMethod, paymentRef string) (*bookingDomain.Booking, bool, error) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	switch bk.Status() {
	case bookingDomain.StatusConfirmed, bookingDomain.StatusOutForDelivery, bookingDomain.StatusDelivered:
		return bk, true, nil
	case bookingDomain.StatusPending:
		if s.stock[bk.CylinderID()] <= 0 {
			return nil, false, domain.NewOutOfStockError(bk.CylinderID())
		}
		s.stock[bk.CylinderID()]--
	case bookingDomain.StatusBooked:
	default:
		return nil, false, domain.NewInvalidTransitionError(string(bk.Status()), string(bookingDomain.StatusConfirmed))
	}
	if err := bk.Confirm(paymentMethod, paymentRef); err != nil {
		return nil, false, err
	}
	bk.IncrementVersion()
	return bk, false, nil
}

func (s *fakeLifecycleStore) Cancel(ctx context.Context, orderID string) (*bookingDomain.Booking, bool, error) {
	bk, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	wasAllocated := bk.Status().HoldsStock()
	if err := bk.Cancel(); err != nil {
		return nil, false, err
	}
	restocked := false
	if wasAllocated {
		s.stock[bk.CylinderID()]++
		restocked = true
	}
	bk.IncrementVersion()
	return bk, restocked, nil
}

type fakeCylinderRepo struct {
	cylinders map[string]*inventory.CylinderType
}

func (r *fakeCylinderRepo) FindByID(_ context.Context, id string) (*inventory.CylinderType, error) {
	cyl, ok := r.cylinders[id]
	if !ok {
		return nil, domain.NewNotFoundError("Cylinder", id)
	}
	return cyl, nil
}

func (r *fakeCylinderRepo) ListAll(_ context.Context) ([]*inventory.CylinderType, error) {
	var result []*inventory.CylinderType
	for _, cyl := range r.cylinders {
		result = append(result, cyl)
	}
	return result, nil
}

func (r *fakeCylinderRepo) Save(_ context.Context, cyl *inventory.CylinderType) error {
	r.cylinders[cyl.ID()] = cyl
	return nil
}

func (r *fakeCylinderRepo) Update(_ context.Context, cyl *inventory.CylinderType) error {
	r.cylinders[cyl.ID()] = cyl
	return nil
}

func (r *fakeCylinderRepo) IncrementStock(_ context.Context, id string, delta int) error {
	cyl, ok := r.cylinders[id]
	if !ok {
		return domain.NewNotFoundError("Cylinder", id)
	}
	r.cylinders[id] = inventory.ReconstructCylinderType(
		cyl.ID(), cyl.Name(), cyl.PricePaise(), cyl.DeliveryChargePaise(),
		cyl.Stock()+delta, cyl.Description(), cyl.CreatedAt(), time.Now().UTC())
	return nil
}

type fakeCustomerRepo struct {
	customers map[string]*customerDomain.Customer
}

func (r *fakeCustomerRepo) FindByPhone(_ context.Context, phone string) (*customerDomain.Customer, error) {
	cust, ok := r.customers[phone]
	if !ok {
		return nil, domain.NewNotFoundError("Customer", phone)
	}
	return cust, nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, cust *customerDomain.Customer) error {
	if _, ok := r.customers[cust.Phone()]; ok {
		return domain.NewConflictError("customer already exists")
	}
	r.customers[cust.Phone()] = cust
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, cust *customerDomain.Customer) error {
	r.customers[cust.Phone()] = cust
	return nil
}

type publishedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

type fakePublisher struct {
	published []publishedEvent
}

func (p *fakePublisher) PublishEvent(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.published = append(p.published, publishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	types := make([]string, len(p.published))
	for i, e := range p.published {
		types[i] = e.Event.Type
	}
	return types
}

// --- Harness ---

type serviceFixture struct {
	service   *BookingService
	repo      *fakeBookingRepo
	lifecycle *fakeLifecycleStore
	cylinders *fakeCylinderRepo
	customers *fakeCustomerRepo
	publisher *fakePublisher
}

const (
	testPhone    = "+919876543210"
	otherPhone   = "+918765432109"
	testCylinder = "14.2kg"
)

func newServiceFixture(t *testing.T, stock int) *serviceFixture {
	t.Helper()

	repo := newFakeBookingRepo()
	lifecycle := &fakeLifecycleStore{repo: repo, stock: map[string]int{testCylinder: stock}}

	cyl, err := inventory.NewCylinderType(testCylinder, "14.2kg Domestic Cylinder", 110000, 10000, stock, "")
	require.NoError(t, err)
	cylinders := &fakeCylinderRepo{cylinders: map[string]*inventory.CylinderType{testCylinder: cyl}}

	cust, err := customerDomain.NewCustomer(testPhone, "Asha Patel", "asha@example.com", "12 MG Road, Pune")
	require.NoError(t, err)
	customers := &fakeCustomerRepo{customers: map[string]*customerDomain.Customer{testPhone: cust}}

	publisher := &fakePublisher{}

	return &serviceFixture{
		service:   NewBookingService(repo, lifecycle, cylinders, customers, publisher, zap.NewNop()),
		repo:      repo,
		lifecycle: lifecycle,
		cylinders: cylinders,
		customers: customers,
		publisher: publisher,
	}
}

func (f *serviceFixture) createBooking(t *testing.T) *BookingDTO {
	t.Helper()
	dto, err := f.service.CreateBooking(context.Background(), Session{Phone: testPhone, Role: customerDomain.RoleCustomer},
		CreateBookingRequest{CylinderID: testCylinder, DeliveryDate: "2026-09-15", TimeSlot: string(bookingDomain.SlotMorning)})
	require.NoError(t, err)
	return dto
}

// --- Tests ---

func TestCreateBooking(t *testing.T) {
	f := newServiceFixture(t, 5)

	dto := f.createBooking(t)

	assert.Regexp(t, `^GAS-\d{5}$`, dto.OrderID)
	assert.Equal(t, string(bookingDomain.StatusPending), dto.Status)
	assert.Equal(t, int64(120000), dto.AmountPaise, "amount should be price plus delivery charge")
	assert.Equal(t, testPhone, dto.CustomerPhone)

	// Creation never reserves stock.
	assert.Equal(t, 5, f.lifecycle.stock[testCylinder])
	assert.Equal(t, []string{events.BookingCreated}, f.publisher.eventTypes())
}

func TestCreateBooking_UnknownCustomer(t *testing.T) {
	f := newServiceFixture(t, 5)

	_, err := f.service.CreateBooking(context.Background(), Session{Phone: "+911111111111"},
		CreateBookingRequest{CylinderID: testCylinder, DeliveryDate: "2026-09-15", TimeSlot: string(bookingDomain.SlotMorning)})

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotAuthenticated))
	assert.Empty(t, f.publisher.published)
}

func TestCreateBooking_NoSession(t *testing.T) {
	f := newServiceFixture(t, 5)

	_, err := f.service.CreateBooking(context.Background(), Session{},
		CreateBookingRequest{CylinderID: testCylinder, DeliveryDate: "2026-09-15", TimeSlot: string(bookingDomain.SlotMorning)})

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeNotAuthenticated))
}

func TestCreateBooking_SoldOutCylinder(t *testing.T) {
	f := newServiceFixture(t, 0)

	_, err := f.service.CreateBooking(context.Background(), Session{Phone: testPhone},
		CreateBookingRequest{CylinderID: testCylinder, DeliveryDate: "2026-09-15", TimeSlot: string(bookingDomain.SlotMorning)})

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeOutOfStock))
}

func TestCreateBooking_RetriesOrderIDCollision(t *testing.T) {
	f := newServiceFixture(t, 5)
	f.repo.saveConflicts = 2

	dto := f.createBooking(t)

	assert.Regexp(t, `^GAS-\d{5}$`, dto.OrderID)
	assert.Len(t, f.repo.bookings, 1)
	assert.Equal(t, []string{events.BookingCreated}, f.publisher.eventTypes())
}

func TestCreateBooking_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newServiceFixture(t, 5)
	f.repo.saveConflicts = 100

	_, err := f.service.CreateBooking(context.Background(), Session{Phone: testPhone},
		CreateBookingRequest{CylinderID: testCylinder, DeliveryDate: "2026-09-15", TimeSlot: string(bookingDomain.SlotMorning)})

	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeConflict))
	assert.Empty(t, f.publisher.published)
}

func TestAllocateStock(t *testing.T) {
	f := newServiceFixture(t, 2)
	dto := f.createBooking(t)

	allocated, err := f.service.AllocateStock(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusBooked), allocated.Status)
	assert.Equal(t, 1, f.lifecycle.stock[testCylinder])
	assert.Equal(t, []string{events.BookingCreated, events.StockAllocated}, f.publisher.eventTypes())
}

func TestAllocateStock_OutOfStockCancelsBooking(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)
	f.lifecycle.stock[testCylinder] = 0

	_, err := f.service.AllocateStock(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeOutOfStock))

	// Follow-up write moved the booking to the out-of-stock terminal state.
	bk, findErr := f.repo.FindByOrderID(context.Background(), dto.OrderID)
	require.NoError(t, findErr)
	assert.Equal(t, bookingDomain.StatusCancelledOutOfStock, bk.Status())

	types := f.publisher.eventTypes()
	assert.Contains(t, types, events.BookingCancelled)
	assert.NotContains(t, types, events.StockAllocated)
}

func TestAllocateStock_Twice(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.AllocateStock(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)

	_, err = f.service.AllocateStock(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeAlreadyProcessed))

	// Only one unit reserved.
	assert.Equal(t, 4, f.lifecycle.stock[testCylinder])
}

func TestAllocateStock_OtherCustomerForbidden(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.AllocateStock(context.Background(), Session{Phone: otherPhone}, dto.OrderID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeForbidden))

	// No unit reserved, no event published for the rejected caller.
	assert.Equal(t, 5, f.lifecycle.stock[testCylinder])
	assert.NotContains(t, f.publisher.eventTypes(), events.StockAllocated)
}

func TestAllocateStock_AdminMayActOnAny(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	allocated, err := f.service.AllocateStock(context.Background(),
		Session{Phone: otherPhone, Role: customerDomain.RoleAdmin}, dto.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusBooked), allocated.Status)
}

func TestConfirmPayment(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)
	_, err := f.service.AllocateStock(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)

	confirmed, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "razorpay", "pay_Mh7abc123")
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusConfirmed), confirmed.Status)
	require.NotNil(t, confirmed.PaymentRef)
	assert.Equal(t, "pay_Mh7abc123", *confirmed.PaymentRef)
	// Allocation already took the unit; confirming must not take another.
	assert.Equal(t, 4, f.lifecycle.stock[testCylinder])
}

func TestConfirmPayment_Idempotent(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "razorpay", "pay_first")
	require.NoError(t, err)

	confirmed, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "razorpay", "pay_second")
	require.NoError(t, err)

	// The retry is a no-op: original payment reference kept, no extra stock
	// taken, no duplicate event.
	require.NotNil(t, confirmed.PaymentRef)
	assert.Equal(t, "pay_first", *confirmed.PaymentRef)
	assert.Equal(t, 4, f.lifecycle.stock[testCylinder])

	var confirmedEvents int
	for _, typ := range f.publisher.eventTypes() {
		if typ == events.PaymentConfirmed {
			confirmedEvents++
		}
	}
	assert.Equal(t, 1, confirmedEvents)
}

func TestConfirmPayment_OtherCustomerForbidden(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.ConfirmPayment(context.Background(), Session{Phone: otherPhone}, dto.OrderID, "cod", "")
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeForbidden))

	bk, findErr := f.repo.FindByOrderID(context.Background(), dto.OrderID)
	require.NoError(t, findErr)
	assert.Equal(t, bookingDomain.StatusPending, bk.Status())
	assert.Equal(t, 5, f.lifecycle.stock[testCylinder])
}

func TestConfirmPayment_FromPendingTakesStock(t *testing.T) {
	f := newServiceFixture(t, 2)
	dto := f.createBooking(t)

	confirmed, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "cod", "")
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusConfirmed), confirmed.Status)
	assert.Equal(t, 1, f.lifecycle.stock[testCylinder])
}

func TestReconcilePayment(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	err := f.service.ReconcilePayment(context.Background(), dto.OrderID, "pay_Mh7abc123")
	require.NoError(t, err)

	bk, findErr := f.repo.FindByOrderID(context.Background(), dto.OrderID)
	require.NoError(t, findErr)
	assert.Equal(t, bookingDomain.StatusConfirmed, bk.Status())
	require.NotNil(t, bk.PaymentMethod())
	assert.Equal(t, "razorpay", *bk.PaymentMethod())
}

func TestReconcilePayment_NoPendingBooking(t *testing.T) {
	f := newServiceFixture(t, 5)

	// Unknown order ids are swallowed: the webhook must not be retried for a
	// booking that does not exist here.
	err := f.service.ReconcilePayment(context.Background(), "GAS-99999", "pay_unknown")
	require.NoError(t, err)
	assert.Empty(t, f.publisher.published)
}

func TestReconcilePayment_AlreadyConfirmed(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "razorpay", "pay_first")
	require.NoError(t, err)

	err = f.service.ReconcilePayment(context.Background(), dto.OrderID, "pay_duplicate")
	require.NoError(t, err)

	assert.Equal(t, 4, f.lifecycle.stock[testCylinder])
}

func TestCancelBooking_RestocksAllocatedUnit(t *testing.T) {
	f := newServiceFixture(t, 2)
	dto := f.createBooking(t)
	_, err := f.service.AllocateStock(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)
	require.Equal(t, 1, f.lifecycle.stock[testCylinder])

	cancelled, err := f.service.CancelBooking(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)

	assert.Equal(t, string(bookingDomain.StatusCancelled), cancelled.Status)
	assert.Equal(t, 2, f.lifecycle.stock[testCylinder], "allocated unit should return to stock")

	last := f.publisher.published[len(f.publisher.published)-1]
	assert.Equal(t, events.BookingCancelled, last.Event.Type)
	var payload events.BookingCancelledEvent
	require.NoError(t, last.Event.ParseData(&payload))
	assert.True(t, payload.Restocked)
}

func TestCancelBooking_PendingDoesNotRestock(t *testing.T) {
	f := newServiceFixture(t, 2)
	dto := f.createBooking(t)

	_, err := f.service.CancelBooking(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)

	assert.Equal(t, 2, f.lifecycle.stock[testCylinder], "pending booking held no stock")

	last := f.publisher.published[len(f.publisher.published)-1]
	var payload events.BookingCancelledEvent
	require.NoError(t, last.Event.ParseData(&payload))
	assert.False(t, payload.Restocked)
}

func TestCancelBooking_OtherCustomerForbidden(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.CancelBooking(context.Background(), Session{Phone: otherPhone}, dto.OrderID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeForbidden))
}

func TestCancelBooking_AdminMayCancelAny(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.CancelBooking(context.Background(), Session{Phone: otherPhone, Role: customerDomain.RoleAdmin}, dto.OrderID)
	require.NoError(t, err)
}

func TestGetBooking_Ownership(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.GetBooking(context.Background(), Session{Phone: testPhone}, dto.OrderID)
	require.NoError(t, err)

	_, err = f.service.GetBooking(context.Background(), Session{Phone: otherPhone}, dto.OrderID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeForbidden))

	_, err = f.service.GetBooking(context.Background(), Session{Phone: otherPhone, Role: customerDomain.RoleAdmin}, dto.OrderID)
	require.NoError(t, err)
}

func TestTrackBooking_PublicView(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	tracking, err := f.service.TrackBooking(context.Background(), dto.OrderID)
	require.NoError(t, err)

	assert.Equal(t, dto.OrderID, tracking.OrderID)
	assert.Equal(t, string(bookingDomain.StatusPending), tracking.Status)
}

func TestDeliveryProgression(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)
	_, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "cod", "")
	require.NoError(t, err)

	out, err := f.service.MarkOutForDelivery(context.Background(), dto.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusOutForDelivery), out.Status)

	delivered, err := f.service.MarkDelivered(context.Background(), dto.OrderID)
	require.NoError(t, err)
	assert.Equal(t, string(bookingDomain.StatusDelivered), delivered.Status)

	// Delivery never touches stock.
	assert.Equal(t, 4, f.lifecycle.stock[testCylinder])
}

func TestMarkOutForDelivery_RequiresConfirmed(t *testing.T) {
	f := newServiceFixture(t, 5)
	dto := f.createBooking(t)

	_, err := f.service.MarkOutForDelivery(context.Background(), dto.OrderID)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidTransition))
}

func TestGetBookingStats(t *testing.T) {
	f := newServiceFixture(t, 5)
	f.createBooking(t)
	dto := f.createBooking(t)
	_, err := f.service.ConfirmPayment(context.Background(), Session{Phone: testPhone}, dto.OrderID, "cod", "")
	require.NoError(t, err)

	stats, err := f.service.GetBookingStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus[string(bookingDomain.StatusPending)])
	assert.Equal(t, int64(1), stats.ByStatus[string(bookingDomain.StatusConfirmed)])
}
