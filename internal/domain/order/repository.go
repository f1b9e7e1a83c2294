package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the persistence contract for orders
type Repository interface {
	// CreateFromCheckout inserts the order with its items and clears the
	// source cart in one transaction. When an order for the same payment
	// intent already exists it returns shared.ErrAlreadyExists and leaves
	// storage untouched.
	CreateFromCheckout(ctx context.Context, o *Order, cartID uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByNumber(ctx context.Context, number string) (*Order, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*Order, int64, error)
	Update(ctx context.Context, o *Order) error
}
