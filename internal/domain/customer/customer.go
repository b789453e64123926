package customer

import (
	"strings"
	"time"

	"github.com/gason-app/service-booking/internal/domain"
)

// Role distinguishes regular customers from administrators.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// IsValid returns true if the role is recognized.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Customer is a profile record keyed by phone number. Bookings reference it by
// phone; the booking lifecycle never mutates it.
type Customer struct {
	phone     string
	fullName  string
	email     string
	address   string
	role      Role
	createdAt time.Time
	updatedAt time.Time
}

// NewCustomer creates a customer profile after validating its fields.
func NewCustomer(phone, fullName, email, address string) (*Customer, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 10 {
		return nil, domain.NewValidationError("a valid phone number is required")
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, domain.NewValidationError("full name is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("invalid email address")
	}

	now := time.Now().UTC()
	return &Customer{
		phone:     phone,
		fullName:  fullName,
		email:     email,
		address:   address,
		role:      RoleCustomer,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructCustomer rebuilds a Customer from persistence data.
func ReconstructCustomer(phone, fullName, email, address string, role Role, createdAt, updatedAt time.Time) *Customer {
	return &Customer{
		phone:     phone,
		fullName:  fullName,
		email:     email,
		address:   address,
		role:      role,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Phone returns the phone number keying this profile.
func (c *Customer) Phone() string { return c.phone }

// FullName returns the customer's full name.
func (c *Customer) FullName() string { return c.fullName }

// Email returns the customer's email address.
func (c *Customer) Email() string { return c.email }

// Address returns the customer's delivery address.
func (c *Customer) Address() string { return c.address }

// Role returns the customer's role.
func (c *Customer) Role() Role { return c.role }

// CreatedAt returns the creation timestamp.
func (c *Customer) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (c *Customer) UpdatedAt() time.Time { return c.updatedAt }

// UpdateProfile replaces the mutable profile fields.
func (c *Customer) UpdateProfile(fullName, email, address string) error {
	if strings.TrimSpace(fullName) == "" {
		return domain.NewValidationError("full name is required")
	}
	if email != "" && !strings.Contains(email, "@") {
		return domain.NewValidationError("invalid email address")
	}
	c.fullName = fullName
	c.email = email
	c.address = address
	c.updatedAt = time.Now().UTC()
	return nil
}

// PromoteToAdmin grants the admin role.
func (c *Customer) PromoteToAdmin() {
	c.role = RoleAdmin
	c.updatedAt = time.Now().UTC()
}
