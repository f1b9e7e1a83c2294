package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service manages shopping carts for both registered users and guests
type Service struct {
	carts    cart.Repository
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewService creates a cart service
func NewService(carts cart.Repository, products catalog.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		carts:    carts,
		products: products,
		logger:   logger,
	}
}

// GetOrCreate returns the owner's cart, creating an empty one on first use
func (s *Service) GetOrCreate(ctx context.Context, owner cart.Identity) (*cart.Cart, error) {
	c, err := s.carts.FindByOwner(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if owner.IsUser() {
		c = cart.NewUserCart(owner.UserID())
	} else {
		c, err = cart.NewGuestCart(owner.GuestToken())
		if err != nil {
			return nil, err
		}
	}
	if err := s.carts.Save(ctx, c); err != nil {
		// Concurrent first request for the same owner: reload theirs
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.carts.FindByOwner(ctx, owner)
		}
		return nil, err
	}
	return c, nil
}

// AddItem puts a product into the owner's cart, snapshotting its current
// price. Disabled products cannot be added.
func (s *Service) AddItem(ctx context.Context, owner cart.Identity, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, fmt.Errorf("%w: product %s is not available", shared.ErrInvalidState, product.SKU)
	}

	c, err := s.GetOrCreate(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := c.AddItem(product.ID, product.SKU, product.Name, product.UnitPrice(), quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity sets the quantity of a cart line; zero removes it
func (s *Service) UpdateQuantity(ctx context.Context, owner cart.Identity, productID uuid.UUID, quantity int) (*cart.Cart, error) {
	c, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveItem deletes one line from the owner's cart
func (s *Service) RemoveItem(ctx context.Context, owner cart.Identity, productID uuid.UUID) (*cart.Cart, error) {
	c, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveItem(productID); err != nil {
		return nil, err
	}
	if err := s.carts.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the owner's cart
func (s *Service) Clear(ctx context.Context, owner cart.Identity) error {
	c, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.carts.ClearItems(ctx, c.ID)
}

// MergeGuestCart folds a guest cart into the user's cart after login.
// Quantities for lines present in both carts are added together. The
// guest cart is deleted afterwards; a missing guest cart is a no-op.
func (s *Service) MergeGuestCart(ctx context.Context, userID uuid.UUID, guestToken string) (*cart.Cart, error) {
	guestOwner, err := cart.GuestIdentity(guestToken)
	if err != nil {
		return nil, err
	}
	guest, err := s.carts.FindByOwner(ctx, guestOwner)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return s.GetOrCreate(ctx, cart.UserIdentity(userID))
		}
		return nil, err
	}

	target, err := s.GetOrCreate(ctx, cart.UserIdentity(userID))
	if err != nil {
		return nil, err
	}

	for _, item := range guest.Items {
		price, err := item.Price()
		if err != nil {
			return nil, err
		}
		if err := target.AddItem(item.ProductID, item.SKU, item.Name, price, item.Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.carts.Update(ctx, target); err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, guest.ID); err != nil {
		s.logger.Warn("Failed to delete guest cart after merge",
			zap.String("cart_id", guest.ID.String()), zap.Error(err))
	}
	return target, nil
}
