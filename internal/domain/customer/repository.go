package customer

import "context"

// Repository defines the persistence contract for customer profiles.
type Repository interface {
	// FindByPhone retrieves a customer profile by phone number.
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// Save persists a new customer profile.
	Save(ctx context.Context, customer *Customer) error

	// Update persists changes to an existing customer profile.
	Update(ctx context.Context, customer *Customer) error
}
