package booking

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gason-app/service-booking/internal/domain"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking("+919876543210", "Asha Patel", "14.2kg", "14.2kg Domestic Cylinder", 120000, "2026-09-15", SlotMorning)
	require.NoError(t, err)
	return bk
}

func TestNewBooking(t *testing.T) {
	bk := newTestBooking(t)

	assert.Regexp(t, regexp.MustCompile(`^GAS-\d{5}$`), bk.OrderID())
	assert.Equal(t, StatusPending, bk.Status())
	assert.Equal(t, int64(120000), bk.AmountPaise())
	assert.Equal(t, int64(1), bk.Version())
	assert.Nil(t, bk.PaymentMethod())
	assert.Nil(t, bk.CancelledAt())
}

func TestNewBooking_Validation(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		cylinder string
		amount   int64
		date     string
		slot     TimeSlot
		wantCode domain.ErrorCode
	}{
		{"missing phone", "", "5kg", 50000, "2026-09-15", SlotMorning, domain.ErrCodeNotAuthenticated},
		{"missing cylinder", "+919876543210", "", 50000, "2026-09-15", SlotMorning, domain.ErrCodeValidation},
		{"invalid slot", "+919876543210", "5kg", 50000, "2026-09-15", TimeSlot("midnight"), domain.ErrCodeValidation},
		{"bad date format", "+919876543210", "5kg", 50000, "15-09-2026", SlotMorning, domain.ErrCodeValidation},
		{"zero amount", "+919876543210", "5kg", 0, "2026-09-15", SlotMorning, domain.ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBooking(tt.phone, "Asha Patel", tt.cylinder, "Cylinder", tt.amount, tt.date, tt.slot)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, tt.wantCode), "expected code %s, got %v", tt.wantCode, err)
		})
	}
}

func TestBooking_Allocate(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Allocate())
	assert.Equal(t, StatusBooked, bk.Status())

	err := bk.Allocate()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeAlreadyProcessed))
}

func TestBooking_Confirm(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Allocate())

	require.NoError(t, bk.Confirm("razorpay", "pay_Mh7abc123"))
	assert.Equal(t, StatusConfirmed, bk.Status())
	require.NotNil(t, bk.PaymentMethod())
	assert.Equal(t, "razorpay", *bk.PaymentMethod())
	require.NotNil(t, bk.PaymentRef())
	assert.Equal(t, "pay_Mh7abc123", *bk.PaymentRef())
}

func TestBooking_ConfirmDirectlyFromPending(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Confirm("cod", ""))
	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Nil(t, bk.PaymentRef())
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Allocate())

	require.NoError(t, bk.Cancel())
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.NotNil(t, bk.CancelledAt())

	err := bk.Cancel()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidTransition))
}

func TestBooking_CancelAfterDispatchRejected(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Allocate())
	require.NoError(t, bk.Confirm("razorpay", "pay_x"))
	require.NoError(t, bk.MarkOutForDelivery())

	err := bk.Cancel()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidTransition))
}

func TestBooking_DeliveryLeg(t *testing.T) {
	bk := newTestBooking(t)

	// Not deliverable before confirmation.
	err := bk.MarkOutForDelivery()
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidTransition))

	require.NoError(t, bk.Allocate())
	require.NoError(t, bk.Confirm("cod", ""))
	require.NoError(t, bk.MarkOutForDelivery())
	require.NoError(t, bk.MarkDelivered())
	assert.Equal(t, StatusDelivered, bk.Status())
}

func TestBooking_MarkOutOfStock(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.MarkOutOfStock())
	assert.Equal(t, StatusCancelledOutOfStock, bk.Status())
	assert.NotNil(t, bk.CancelledAt())

	// Terminal afterwards.
	err := bk.Allocate()
	require.Error(t, err)
}

func TestGenerateOrderID_Format(t *testing.T) {
	seen := make(map[string]bool)
	pattern := regexp.MustCompile(`^GAS-\d{5}$`)
	for i := 0; i < 50; i++ {
		id, err := generateOrderID()
		require.NoError(t, err)
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// Collisions are possible in a 90k space but 50 draws should be distinct
	// nearly always; allow a single repeat to keep the test stable.
	assert.GreaterOrEqual(t, len(seen), 49)
}
