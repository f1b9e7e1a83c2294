package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// RegisterInput represents a request to create an account
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	DisplayName string `json:"display_name" binding:"max=100"`
}

// LoginInput represents a login request
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordInput represents a password change request
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserResponse represents an account in API responses
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// AuthResult carries the authenticated user and their access token
type AuthResult struct {
	User  UserResponse `json:"user"`
	Token *auth.Token  `json:"token"`
}

// SaveAddressInput represents a request to store an address
type SaveAddressInput struct {
	Label      string `json:"label" binding:"max=50"`
	FullName   string `json:"full_name" binding:"required,max=100"`
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
	Phone      string `json:"phone" binding:"max=30"`
	IsDefault  bool   `json:"is_default"`
}

// AddressResponse represents a saved address in API responses
type AddressResponse struct {
	ID        uuid.UUID           `json:"id"`
	Label     string              `json:"label"`
	Address   valueobject.Address `json:"address"`
	IsDefault bool                `json:"is_default"`
}

func toUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAddressResponse(a *identity.SavedAddress) AddressResponse {
	return AddressResponse{
		ID:        a.ID,
		Label:     a.Label,
		Address:   a.Address,
		IsDefault: a.IsDefault,
	}
}
