package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateFromCheckout(ctx context.Context, o *order.Order, cartID uuid.UUID) error {
	args := m.Called(ctx, o, cartID)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*order.Order, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*order.Order, int64, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

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

// =============================================================================
// Fixtures
// =============================================================================

func money(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(s, valueobject.EUR)
	require.NoError(t, err)
	return m
}

func checkoutFixture(t *testing.T) (*cart.Cart, checkout.Payload) {
	t.Helper()
	userID := uuid.New()
	c := cart.NewUserCart(userID)
	require.NoError(t, c.AddItem(uuid.New(), "TEE-1", "T-Shirt", money(t, "20.00"), 1))
	require.NoError(t, c.AddItem(uuid.New(), "MUG-1", "Mug", money(t, "5.50"), 1))

	addr, err := valueobject.NewAddress("Ada Lovelace", "12 Analytical Way", "", "Turin", "10100", "IT", "")
	require.NoError(t, err)

	return c, checkout.Payload{
		CartID:          c.ID,
		UserID:          &userID,
		Email:           "ada@example.com",
		Subtotal:        money(t, "25.50"),
		TaxAmount:       money(t, "5.61"),
		Total:           money(t, "31.11"),
		ShippingAddress: addr,
		BillingAddress:  addr,
	}
}

// =============================================================================
// Test Cases
// =============================================================================

func TestOrderService_Materialize(t *testing.T) {
	c, payload := checkoutFixture(t)

	carts := &MockCartRepository{}
	carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	var created *order.Order
	orders := &MockOrderRepository{}
	orders.On("CreateFromCheckout", mock.Anything, mock.Anything, c.ID).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*order.Order)
		}).
		Return(nil)

	svc := NewService(orders, carts, zap.NewNop())
	o, err := svc.Materialize(context.Background(), "pi_123", 3111, payload)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, created, o)
	assert.Equal(t, "pi_123", o.PaymentIntentID)
	assert.Equal(t, int64(3111), o.AmountCharged)
	assert.Equal(t, order.StatusPaid, o.Status)
	assert.Equal(t, "ada@example.com", o.Email)
	assert.NotEmpty(t, o.Number)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "TEE-1", o.Items[0].SKU)
	assert.Equal(t, "MUG-1", o.Items[1].SKU)
	assert.Equal(t, "Ada Lovelace", o.ShippingAddress.FullName)
}

func TestOrderService_Materialize_DuplicateIntent(t *testing.T) {
	c, payload := checkoutFixture(t)

	carts := &MockCartRepository{}
	carts.On("FindByID", mock.Anything, c.ID).Return(c, nil)

	orders := &MockOrderRepository{}
	orders.On("CreateFromCheckout", mock.Anything, mock.Anything, c.ID).
		Return(shared.ErrAlreadyExists)

	svc := NewService(orders, carts, zap.NewNop())
	_, err := svc.Materialize(context.Background(), "pi_123", 3111, payload)

	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestOrderService_GetByID_Ownership(t *testing.T) {
	userID := uuid.New()
	o, err := order.NewOrder("ORD-1", "pi_9", "ada@example.com", order.Totals{
		Subtotal:      money(t, "10.00"),
		TaxAmount:     money(t, "2.20"),
		Total:         money(t, "12.20"),
		AmountCharged: 1220,
	})
	require.NoError(t, err)
	o.UserID = &userID

	orders := &MockOrderRepository{}
	orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	svc := NewService(orders, &MockCartRepository{}, zap.NewNop())

	got, err := svc.GetByID(context.Background(), userID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = svc.GetByID(context.Background(), uuid.New(), o.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestOrderService_Transitions(t *testing.T) {
	newPaid := func(t *testing.T) *order.Order {
		o, err := order.NewOrder("ORD-2", uuid.NewString(), "ada@example.com", order.Totals{
			Subtotal:      money(t, "10.00"),
			TaxAmount:     money(t, "2.20"),
			Total:         money(t, "12.20"),
			AmountCharged: 1220,
		})
		require.NoError(t, err)
		return o
	}

	t.Run("ship then deliver", func(t *testing.T) {
		o := newPaid(t)
		orders := &MockOrderRepository{}
		orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		orders.On("Update", mock.Anything, o).Return(nil)

		svc := NewService(orders, &MockCartRepository{}, zap.NewNop())

		shipped, err := svc.MarkShipped(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusShipped, shipped.Status)

		delivered, err := svc.MarkDelivered(context.Background(), o.ID)
		require.NoError(t, err)
		assert.Equal(t, order.StatusDelivered, delivered.Status)
	})

	t.Run("cannot cancel after shipping", func(t *testing.T) {
		o := newPaid(t)
		require.NoError(t, o.MarkShipped())

		orders := &MockOrderRepository{}
		orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		svc := NewService(orders, &MockCartRepository{}, zap.NewNop())
		_, err := svc.Cancel(context.Background(), o.ID)
		assert.Error(t, err)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
