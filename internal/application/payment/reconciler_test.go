package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

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
// Mock Materializer
// =============================================================================

type MockMaterializer struct {
	mock.Mock
}

func (m *MockMaterializer) Materialize(ctx context.Context, intentID string, amountCharged int64, payload checkout.Payload) (*order.Order, error) {
	args := m.Called(ctx, intentID, amountCharged, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockMaterializer) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

// =============================================================================
// Mock Idempotency Store
// =============================================================================

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// =============================================================================
// Fixtures
// =============================================================================

func testPayload(t *testing.T) checkout.Payload {
	t.Helper()
	userID := uuid.New()
	subtotal, err := valueobject.NewMoneyFromString("20.00", valueobject.EUR)
	require.NoError(t, err)
	taxAmount, err := valueobject.NewMoneyFromString("4.40", valueobject.EUR)
	require.NoError(t, err)
	total, err := valueobject.NewMoneyFromString("24.40", valueobject.EUR)
	require.NoError(t, err)
	return checkout.Payload{
		CartID:          uuid.New(),
		UserID:          &userID,
		Email:           "ada@example.com",
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		Total:           total,
		ShippingAddress: testAddress(t),
		BillingAddress:  testAddress(t),
	}
}

func succeededEvent(t *testing.T, eventID, intentID string, payload checkout.Payload) checkout.Event {
	t.Helper()
	metadata, err := payload.Encode()
	require.NoError(t, err)
	return checkout.Event{
		ID:       eventID,
		Type:     checkout.EventPaymentSucceeded,
		IntentID: intentID,
		Amount:   payload.Total.MinorUnits(),
		Currency: "EUR",
		Metadata: metadata,
	}
}

func failedEvent(t *testing.T, eventID, intentID string, payload checkout.Payload) checkout.Event {
	t.Helper()
	ev := succeededEvent(t, eventID, intentID, payload)
	ev.Type = checkout.EventPaymentFailed
	return ev
}

func materializedOrder(t *testing.T, intentID string, payload checkout.Payload) *order.Order {
	t.Helper()
	o, err := order.NewOrder("ORD-20260828-TEST0001", intentID, payload.Email, order.Totals{
		Subtotal:      payload.Subtotal,
		TaxAmount:     payload.TaxAmount,
		Total:         payload.Total,
		AmountCharged: payload.Total.MinorUnits(),
	})
	require.NoError(t, err)
	return o
}

// =============================================================================
// Test Cases
// =============================================================================

func TestReconciler_SucceededEvent_CreatesOrder(t *testing.T) {
	payload := testPayload(t)
	event := succeededEvent(t, "evt_1", "pi_1", payload)

	materializer := &MockMaterializer{}
	materializer.On("Materialize", mock.Anything, "pi_1", int64(2440), mock.Anything).
		Return(materializedOrder(t, "pi_1", payload), nil)

	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_1").Return(false, nil)
	store.On("MarkProcessed", mock.Anything, "evt_1", shared.DefaultIdempotencyTTL).Return(true, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, OutcomeOrderCreated, outcome)
	materializer.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestReconciler_DoubleDelivery_FastPath(t *testing.T) {
	// Second delivery of the same event is skipped via the dedup store
	payload := testPayload(t)
	event := succeededEvent(t, "evt_1", "pi_1", payload)

	materializer := &MockMaterializer{}
	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_1").Return(true, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	materializer.AssertNotCalled(t, "Materialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_DoubleDelivery_StorageGuard(t *testing.T) {
	// The dedup store misses, but the unique index on the intent reports
	// the order exists. The delivery still counts as a success.
	payload := testPayload(t)
	event := succeededEvent(t, "evt_2", "pi_1", payload)

	materializer := &MockMaterializer{}
	materializer.On("Materialize", mock.Anything, "pi_1", int64(2440), mock.Anything).
		Return(nil, shared.ErrAlreadyExists)

	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_2").Return(false, nil)
	store.On("MarkProcessed", mock.Anything, "evt_2", shared.DefaultIdempotencyTTL).Return(true, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, outcome)
	store.AssertExpectations(t)
}

func TestReconciler_DistinctIntents_AreIndependent(t *testing.T) {
	payloadA := testPayload(t)
	payloadB := testPayload(t)

	materializer := &MockMaterializer{}
	materializer.On("Materialize", mock.Anything, "pi_a", int64(2440), mock.Anything).
		Return(materializedOrder(t, "pi_a", payloadA), nil).Once()
	materializer.On("Materialize", mock.Anything, "pi_b", int64(2440), mock.Anything).
		Return(materializedOrder(t, "pi_b", payloadB), nil).Once()

	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, mock.Anything).Return(false, nil)
	store.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())

	outcomeA, err := r.Process(context.Background(), succeededEvent(t, "evt_a", "pi_a", payloadA))
	require.NoError(t, err)
	outcomeB, err := r.Process(context.Background(), succeededEvent(t, "evt_b", "pi_b", payloadB))
	require.NoError(t, err)

	assert.Equal(t, OutcomeOrderCreated, outcomeA)
	assert.Equal(t, OutcomeOrderCreated, outcomeB)
	materializer.AssertExpectations(t)
}

func TestReconciler_FailedEvent_ClearsCart(t *testing.T) {
	payload := testPayload(t)
	event := failedEvent(t, "evt_f", "pi_f", payload)

	materializer := &MockMaterializer{}
	materializer.On("ClearCart", mock.Anything, payload.CartID).Return(nil)

	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_f").Return(false, nil)
	store.On("MarkProcessed", mock.Anything, "evt_f", shared.DefaultIdempotencyTTL).Return(true, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, OutcomeCartCleared, outcome)
	materializer.AssertExpectations(t)
	materializer.AssertNotCalled(t, "Materialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_MaterializeFailure_NotMarkedProcessed(t *testing.T) {
	// A transient failure must not mark the event processed, so a
	// manual resend of the same event gets a clean retry.
	payload := testPayload(t)
	event := succeededEvent(t, "evt_3", "pi_3", payload)

	materializer := &MockMaterializer{}
	materializer.On("Materialize", mock.Anything, "pi_3", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_3").Return(false, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, OutcomeUnprocessed, outcome)
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_UnknownEventType_IsIgnored(t *testing.T) {
	materializer := &MockMaterializer{}
	store := &MockIdempotencyStore{}

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), checkout.Event{
		ID:   "evt_x",
		Type: "charge.refunded",
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	materializer.AssertNotCalled(t, "Materialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_UndecodablePayload_IsAcknowledged(t *testing.T) {
	// Metadata without our schema version cannot be retried into
	// existence, so the event is acknowledged and dropped.
	materializer := &MockMaterializer{}
	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_y").Return(false, nil)

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), checkout.Event{
		ID:       "evt_y",
		Type:     checkout.EventPaymentSucceeded,
		IntentID: "pi_y",
		Metadata: map[string]string{"foreign": "metadata"},
	})

	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, outcome)
	materializer.AssertNotCalled(t, "Materialize", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReconciler_HandleDelivery_SignatureFailure(t *testing.T) {
	gateway := &MockGateway{}
	gateway.On("VerifyEvent", []byte(`{}`), "bad-signature").
		Return(checkout.Event{}, checkout.ErrInvalidSignature)

	r := NewReconciler(gateway, &MockMaterializer{}, &MockIdempotencyStore{}, zap.NewNop())
	_, err := r.HandleDelivery(context.Background(), []byte(`{}`), "bad-signature")

	assert.ErrorIs(t, err, checkout.ErrInvalidSignature)
}

func TestReconciler_HandleDelivery_NotConfigured(t *testing.T) {
	r := NewReconciler(nil, &MockMaterializer{}, &MockIdempotencyStore{}, zap.NewNop())
	_, err := r.HandleDelivery(context.Background(), []byte(`{}`), "sig")
	assert.ErrorIs(t, err, checkout.ErrNotConfigured)
}

func TestReconciler_StoreFailure_FallsThroughToStorage(t *testing.T) {
	// A broken dedup store degrades to the storage guard instead of
	// blocking the delivery.
	payload := testPayload(t)
	event := succeededEvent(t, "evt_z", "pi_z", payload)

	materializer := &MockMaterializer{}
	materializer.On("Materialize", mock.Anything, "pi_z", mock.Anything, mock.Anything).
		Return(materializedOrder(t, "pi_z", payload), nil)

	store := &MockIdempotencyStore{}
	store.On("IsProcessed", mock.Anything, "evt_z").Return(false, errors.New("redis down"))
	store.On("MarkProcessed", mock.Anything, "evt_z", mock.Anything).Return(false, errors.New("redis down"))

	r := NewReconciler(&MockGateway{}, materializer, store, zap.NewNop())
	outcome, err := r.Process(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, OutcomeOrderCreated, outcome)
}

// =============================================================================
// End-to-end: checkout intent to reconciled order
// =============================================================================

// fakeOrderStore materializes orders in memory, enforcing the unique
// payment intent constraint the way the database does.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	carts  map[uuid.UUID]int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		orders: make(map[string]*order.Order),
		carts:  make(map[uuid.UUID]int),
	}
}

func (f *fakeOrderStore) Materialize(_ context.Context, intentID string, amountCharged int64, payload checkout.Payload) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[intentID]; ok {
		return nil, shared.ErrAlreadyExists
	}
	o, err := order.NewOrder("ORD-20260828-E2E00001", intentID, payload.Email, order.Totals{
		Subtotal:      payload.Subtotal,
		TaxAmount:     payload.TaxAmount,
		Total:         payload.Total,
		AmountCharged: amountCharged,
	})
	if err != nil {
		return nil, err
	}
	f.orders[intentID] = o
	f.carts[payload.CartID] = 0
	return o, nil
}

func (f *fakeOrderStore) ClearCart(_ context.Context, cartID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[cartID] = 0
	return nil
}

// fakeEventStore is a plain in-memory dedup set.
type fakeEventStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeEventStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeEventStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[eventID], nil
}

func (f *fakeEventStore) Close() error { return nil }

func TestCheckoutToReconciliation_EndToEnd(t *testing.T) {
	// A 20.00 EUR cart checks out at 22% tax for 2440 cents. The
	// provider delivers the succeeded event for pi_1 twice; exactly one
	// order must exist with the charged amount.
	userID := uuid.New()
	owner := cart.UserIdentity(userID)
	c := cartWithItems(t, userID, "20.00")

	carts := &MockCartRepository{}
	carts.On("FindByOwner", mock.Anything, owner).Return(c, nil)

	var metadata map[string]string
	gateway := &MockGateway{}
	gateway.On("CreateIntent", mock.Anything, int64(2440), "EUR", mock.Anything).
		Run(func(args mock.Arguments) {
			metadata = args.Get(3).(map[string]string)
		}).
		Return(checkout.IntentRef{IntentID: "pi_1", ClientSecret: "sec"}, nil)

	checkoutSvc := NewCheckoutService(carts, gateway, testCheckoutConfig(t), zap.NewNop())
	intent, err := checkoutSvc.CreateIntent(context.Background(), owner, CreateIntentInput{
		Email:           "ada@example.com",
		ShippingAddress: testAddress(t),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2440), intent.Amount)

	store := newFakeOrderStore()
	events := &fakeEventStore{seen: make(map[string]bool)}
	r := NewReconciler(gateway, store, events, zap.NewNop())

	event := checkout.Event{
		ID:       "evt_pi_1",
		Type:     checkout.EventPaymentSucceeded,
		IntentID: "pi_1",
		Amount:   intent.Amount,
		Currency: "EUR",
		Metadata: metadata,
	}

	first, err := r.Process(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOrderCreated, first)

	second, err := r.Process(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, second)

	require.Len(t, store.orders, 1)
	o := store.orders["pi_1"]
	assert.Equal(t, int64(2440), o.AmountCharged)
	assert.Equal(t, "pi_1", o.PaymentIntentID)
	assert.Equal(t, "ada@example.com", o.Email)
	assert.Equal(t, order.StatusPaid, o.Status)
}
