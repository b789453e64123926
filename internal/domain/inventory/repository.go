package inventory

import "context"

// Repository defines the persistence contract for the cylinder catalogue.
// Stock mutations tied to the booking lifecycle go through the booking
// LifecycleStore, not this interface.
type Repository interface {
	// FindByID retrieves a cylinder type by its catalogue identifier.
	FindByID(ctx context.Context, id string) (*CylinderType, error)

	// ListAll retrieves the full catalogue ordered by identifier.
	ListAll(ctx context.Context) ([]*CylinderType, error)

	// Save persists a new cylinder type.
	Save(ctx context.Context, cylinder *CylinderType) error

	// Update persists changes to an existing cylinder type. Stock is not
	// written through this method.
	Update(ctx context.Context, cylinder *CylinderType) error

	// IncrementStock adjusts a cylinder's stock by delta as a relative
	// update, preserving concurrent lifecycle decrements.
	IncrementStock(ctx context.Context, id string, delta int) error
}
