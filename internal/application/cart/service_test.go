package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) FindByOwner(ctx context.Context, identity cart.Identity) (*cart.Cart, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Update(ctx context.Context, c *cart.Cart) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func testProduct(t *testing.T, sku, price string) *catalog.Product {
	t.Helper()
	money, err := valueobject.NewMoneyFromString(price, valueobject.EUR)
	require.NoError(t, err)
	p, err := catalog.NewProduct(sku, "Product "+sku, money)
	require.NoError(t, err)
	return p
}

// =============================================================================
// Test Cases
// =============================================================================

func TestCartService_GetOrCreate(t *testing.T) {
	t.Run("returns existing cart", func(t *testing.T) {
		userID := uuid.New()
		owner := cart.UserIdentity(userID)
		existing := cart.NewUserCart(userID)

		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(existing, nil)

		svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
		c, err := svc.GetOrCreate(context.Background(), owner)

		require.NoError(t, err)
		assert.Equal(t, existing.ID, c.ID)
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("creates user cart on first use", func(t *testing.T) {
		owner := cart.UserIdentity(uuid.New())

		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(nil, shared.ErrNotFound)
		carts.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
		c, err := svc.GetOrCreate(context.Background(), owner)

		require.NoError(t, err)
		require.NotNil(t, c.UserID)
		assert.Equal(t, owner.UserID(), *c.UserID)
		assert.True(t, c.IsEmpty())
	})

	t.Run("creates guest cart on first use", func(t *testing.T) {
		owner, err := cart.GuestIdentity("guest-token-1")
		require.NoError(t, err)

		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(nil, shared.ErrNotFound)
		carts.On("Save", mock.Anything, mock.Anything).Return(nil)

		svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
		c, err := svc.GetOrCreate(context.Background(), owner)

		require.NoError(t, err)
		require.NotNil(t, c.GuestToken)
		assert.Equal(t, "guest-token-1", *c.GuestToken)
	})

	t.Run("reloads cart lost to a concurrent create", func(t *testing.T) {
		userID := uuid.New()
		owner := cart.UserIdentity(userID)
		winner := cart.NewUserCart(userID)

		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(nil, shared.ErrNotFound).Once()
		carts.On("Save", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)
		carts.On("FindByOwner", mock.Anything, owner).Return(winner, nil).Once()

		svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
		c, err := svc.GetOrCreate(context.Background(), owner)

		require.NoError(t, err)
		assert.Equal(t, winner.ID, c.ID)
	})
}

func TestCartService_AddItem(t *testing.T) {
	t.Run("snapshots product price into the cart", func(t *testing.T) {
		userID := uuid.New()
		owner := cart.UserIdentity(userID)
		product := testProduct(t, "TEE-1", "20.00")

		products := &MockProductRepository{}
		products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(cart.NewUserCart(userID), nil)
		carts.On("Update", mock.Anything, mock.Anything).Return(nil)

		svc := NewService(carts, products, zap.NewNop())
		c, err := svc.AddItem(context.Background(), owner, product.ID, 2)

		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.Equal(t, "TEE-1", c.Items[0].SKU)
		assert.Equal(t, 2, c.Items[0].Quantity)
		subtotal, err := c.Subtotal()
		require.NoError(t, err)
		assert.Equal(t, "40.00 EUR", subtotal.String())
	})

	t.Run("rejects disabled product", func(t *testing.T) {
		userID := uuid.New()
		owner := cart.UserIdentity(userID)
		product := testProduct(t, "TEE-2", "20.00")
		require.NoError(t, product.Disable())

		products := &MockProductRepository{}
		products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

		carts := &MockCartRepository{}
		svc := NewService(carts, products, zap.NewNop())

		_, err := svc.AddItem(context.Background(), owner, product.ID, 1)

		assert.ErrorIs(t, err, shared.ErrInvalidState)
		carts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCartService_MergeGuestCart(t *testing.T) {
	userID := uuid.New()
	guestToken := "guest-token-merge"
	guestOwner, err := cart.GuestIdentity(guestToken)
	require.NoError(t, err)

	guest, err := cart.NewGuestCart(guestToken)
	require.NoError(t, err)
	price, err := valueobject.NewMoneyFromString("5.00", valueobject.EUR)
	require.NoError(t, err)
	productID := uuid.New()
	require.NoError(t, guest.AddItem(productID, "MUG-1", "Mug", price, 3))

	target := cart.NewUserCart(userID)
	require.NoError(t, target.AddItem(productID, "MUG-1", "Mug", price, 1))

	carts := &MockCartRepository{}
	carts.On("FindByOwner", mock.Anything, guestOwner).Return(guest, nil)
	carts.On("FindByOwner", mock.Anything, cart.UserIdentity(userID)).Return(target, nil)
	carts.On("Update", mock.Anything, target).Return(nil)
	carts.On("Delete", mock.Anything, guest.ID).Return(nil)

	svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
	merged, err := svc.MergeGuestCart(context.Background(), userID, guestToken)

	require.NoError(t, err)
	require.Len(t, merged.Items, 1)
	assert.Equal(t, 4, merged.Items[0].Quantity)
	carts.AssertExpectations(t)
}

func TestCartService_Clear(t *testing.T) {
	t.Run("clears existing cart", func(t *testing.T) {
		userID := uuid.New()
		owner := cart.UserIdentity(userID)
		c := cart.NewUserCart(userID)

		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(c, nil)
		carts.On("ClearItems", mock.Anything, c.ID).Return(nil)

		svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
		assert.NoError(t, svc.Clear(context.Background(), owner))
		carts.AssertExpectations(t)
	})

	t.Run("missing cart is a no-op", func(t *testing.T) {
		owner := cart.UserIdentity(uuid.New())
		carts := &MockCartRepository{}
		carts.On("FindByOwner", mock.Anything, owner).Return(nil, shared.ErrNotFound)

		svc := NewService(carts, &MockProductRepository{}, zap.NewNop())
		assert.NoError(t, svc.Clear(context.Background(), owner))
	})
}
