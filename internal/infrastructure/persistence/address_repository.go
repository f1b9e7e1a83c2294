package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormAddressRepository implements identity.AddressRepository using GORM
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// Save creates a new saved address
func (r *GormAddressRepository) Save(ctx context.Context, a *identity.SavedAddress) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// FindByID finds a saved address by ID
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.SavedAddress, error) {
	var a identity.SavedAddress
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindByUser finds all of a user's saved addresses, default first
func (r *GormAddressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*identity.SavedAddress, error) {
	var addresses []*identity.SavedAddress
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

// Update persists changes to an existing saved address
func (r *GormAddressRepository) Update(ctx context.Context, a *identity.SavedAddress) error {
	result := r.db.WithContext(ctx).Model(a).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"label":      a.Label,
		"address":    a.Address,
		"is_default": a.IsDefault,
		"updated_at": a.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a saved address
func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.SavedAddress{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ClearDefault unsets the default flag on all of the user's addresses
func (r *GormAddressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&identity.SavedAddress{}).
		Where("user_id = ?", userID).
		Update("is_default", false).Error
}

// Ensure GormAddressRepository implements AddressRepository
var _ identity.AddressRepository = (*GormAddressRepository)(nil)
