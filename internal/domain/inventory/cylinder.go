package inventory

import (
	"time"

	"github.com/gason-app/service-booking/internal/domain"
)

// CylinderType is the aggregate root for the inventory domain. The identifier
// is the catalogue key customers book against ("5kg", "14.2kg", "19kg").
//
// Stock is the only contended field in the system. It is never mutated through
// this aggregate during the booking lifecycle; allocation and restock happen as
// conditional database writes paired with the booking status change, so the
// stock >= 0 invariant holds under concurrency.
type CylinderType struct {
	id                  string
	name                string
	pricePaise          int64
	deliveryChargePaise int64
	stock               int
	description         string
	createdAt           time.Time
	updatedAt           time.Time
}

// NewCylinderType creates a catalogue entry after validating its fields.
func NewCylinderType(id, name string, pricePaise, deliveryChargePaise int64, stock int, description string) (*CylinderType, error) {
	if id == "" {
		return nil, domain.NewValidationError("cylinder ID is required")
	}
	if name == "" {
		return nil, domain.NewValidationError("cylinder name is required")
	}
	if pricePaise <= 0 {
		return nil, domain.NewValidationError("cylinder price must be positive")
	}
	if deliveryChargePaise < 0 {
		return nil, domain.NewValidationError("delivery charge cannot be negative")
	}
	if stock < 0 {
		return nil, domain.NewValidationError("stock cannot be negative")
	}

	now := time.Now().UTC()
	return &CylinderType{
		id:                  id,
		name:                name,
		pricePaise:          pricePaise,
		deliveryChargePaise: deliveryChargePaise,
		stock:               stock,
		description:         description,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructCylinderType rebuilds a CylinderType from persistence data.
func ReconstructCylinderType(id, name string, pricePaise, deliveryChargePaise int64, stock int, description string, createdAt, updatedAt time.Time) *CylinderType {
	return &CylinderType{
		id:                  id,
		name:                name,
		pricePaise:          pricePaise,
		deliveryChargePaise: deliveryChargePaise,
		stock:               stock,
		description:         description,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// ID returns the catalogue identifier.
func (c *CylinderType) ID() string { return c.id }

// Name returns the display label.
func (c *CylinderType) Name() string { return c.name }

// PricePaise returns the unit price in paise.
func (c *CylinderType) PricePaise() int64 { return c.pricePaise }

// DeliveryChargePaise returns the delivery charge in paise.
func (c *CylinderType) DeliveryChargePaise() int64 { return c.deliveryChargePaise }

// Stock returns the current stock count.
func (c *CylinderType) Stock() int { return c.stock }

// Description returns the catalogue description.
func (c *CylinderType) Description() string { return c.description }

// CreatedAt returns the creation timestamp.
func (c *CylinderType) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (c *CylinderType) UpdatedAt() time.Time { return c.updatedAt }

// InStock returns true if at least one unit is available. This is the
// optimistic pre-check used at booking creation; the authoritative check is
// the conditional decrement at allocation time.
func (c *CylinderType) InStock() bool { return c.stock > 0 }

// BookingAmountPaise returns the total a new booking of this cylinder freezes:
// unit price plus delivery charge. Later price changes do not affect existing
// bookings.
func (c *CylinderType) BookingAmountPaise() int64 {
	return c.pricePaise + c.deliveryChargePaise
}

// ValidateRestock checks an admin restock request. The write itself is a
// relative database update (Repository.IncrementStock), never an aggregate
// mutation, so it cannot overwrite concurrent allocation decrements.
func ValidateRestock(units int) error {
	if units <= 0 {
		return domain.NewValidationError("restock units must be positive")
	}
	return nil
}

// SetPricing updates the unit price and delivery charge (admin operation).
func (c *CylinderType) SetPricing(pricePaise, deliveryChargePaise int64) error {
	if pricePaise <= 0 {
		return domain.NewValidationError("cylinder price must be positive")
	}
	if deliveryChargePaise < 0 {
		return domain.NewValidationError("delivery charge cannot be negative")
	}
	c.pricePaise = pricePaise
	c.deliveryChargePaise = deliveryChargePaise
	c.updatedAt = time.Now().UTC()
	return nil
}
