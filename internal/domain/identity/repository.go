package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the persistence contract for user accounts
type UserRepository interface {
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

// AddressRepository defines the persistence contract for saved addresses
type AddressRepository interface {
	Save(ctx context.Context, a *SavedAddress) error
	FindByID(ctx context.Context, id uuid.UUID) (*SavedAddress, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*SavedAddress, error)
	Update(ctx context.Context, a *SavedAddress) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClearDefault unsets the default flag on all of the user's addresses
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}
