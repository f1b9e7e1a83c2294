package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// AddressService manages a user's saved addresses
type AddressService struct {
	addresses identity.AddressRepository
}

// NewAddressService creates an address service
func NewAddressService(addresses identity.AddressRepository) *AddressService {
	return &AddressService{addresses: addresses}
}

// List returns all of a user's saved addresses
func (s *AddressService) List(ctx context.Context, userID uuid.UUID) ([]AddressResponse, error) {
	list, err := s.addresses.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]AddressResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAddressResponse(a))
	}
	return out, nil
}

// Save stores a new address for the user
func (s *AddressService) Save(ctx context.Context, userID uuid.UUID, input SaveAddressInput) (*AddressResponse, error) {
	addr, err := valueobject.NewAddress(input.FullName, input.Line1, input.Line2, input.City, input.PostalCode, input.Country, input.Phone)
	if err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := s.addresses.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	saved := &identity.SavedAddress{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Label:      input.Label,
		Address:    addr,
		IsDefault:  input.IsDefault,
	}
	if err := s.addresses.Save(ctx, saved); err != nil {
		return nil, err
	}
	resp := toAddressResponse(saved)
	return &resp, nil
}

// Update replaces a saved address. Only the owner may update it.
func (s *AddressService) Update(ctx context.Context, userID, addressID uuid.UUID, input SaveAddressInput) (*AddressResponse, error) {
	saved, err := s.findOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	addr, err := valueobject.NewAddress(input.FullName, input.Line1, input.Line2, input.City, input.PostalCode, input.Country, input.Phone)
	if err != nil {
		return nil, err
	}

	if input.IsDefault && !saved.IsDefault {
		if err := s.addresses.ClearDefault(ctx, userID); err != nil {
			return nil, err
		}
	}

	saved.Label = input.Label
	saved.Address = addr
	saved.IsDefault = input.IsDefault
	saved.Touch()
	if err := s.addresses.Update(ctx, saved); err != nil {
		return nil, err
	}
	resp := toAddressResponse(saved)
	return &resp, nil
}

// Delete removes a saved address. Only the owner may delete it.
func (s *AddressService) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	saved, err := s.findOwned(ctx, userID, addressID)
	if err != nil {
		return err
	}
	return s.addresses.Delete(ctx, saved.ID)
}

func (s *AddressService) findOwned(ctx context.Context, userID, addressID uuid.UUID) (*identity.SavedAddress, error) {
	saved, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if saved.UserID != userID {
		return nil, shared.ErrForbidden
	}
	return saved, nil
}
