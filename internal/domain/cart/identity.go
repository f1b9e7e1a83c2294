package cart

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Identity names a cart owner: exactly one of a registered user ID or
// an anonymous guest token is set.
type Identity struct {
	userID     *uuid.UUID
	guestToken string
}

// UserIdentity builds an identity for a registered user
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{userID: &userID}
}

// GuestIdentity builds an identity for an anonymous guest
func GuestIdentity(token string) (Identity, error) {
	if token == "" {
		return Identity{}, shared.NewDomainError("INVALID_GUEST_TOKEN", "Guest token is required")
	}
	return Identity{guestToken: token}, nil
}

// IsUser reports whether the identity belongs to a registered user
func (i Identity) IsUser() bool {
	return i.userID != nil
}

// UserID returns the user ID; valid only when IsUser is true
func (i Identity) UserID() uuid.UUID {
	if i.userID == nil {
		return uuid.Nil
	}
	return *i.userID
}

// GuestToken returns the guest token; empty for user identities
func (i Identity) GuestToken() string {
	return i.guestToken
}

// IsZero reports whether neither owner kind is set
func (i Identity) IsZero() bool {
	return i.userID == nil && i.guestToken == ""
}

// Matches reports whether the cart belongs to this identity
func (i Identity) Matches(c *Cart) bool {
	if i.IsUser() {
		return c.UserID != nil && *c.UserID == *i.userID
	}
	return c.GuestToken != nil && *c.GuestToken == i.guestToken
}
