package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for carts
type Repository interface {
	Save(ctx context.Context, c *Cart) error
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)
	FindByOwner(ctx context.Context, identity Identity) (*Cart, error)
	Update(ctx context.Context, c *Cart) error
	// ClearItems removes every line of the cart in a single statement
	ClearItems(ctx context.Context, cartID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
