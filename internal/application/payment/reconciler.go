package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Materializer converts a confirmed payment into a persisted order.
// It must be idempotent per intent: a repeated call for the same intent
// returns shared.ErrAlreadyExists without touching storage.
type Materializer interface {
	Materialize(ctx context.Context, intentID string, amountCharged int64, payload checkout.Payload) (*order.Order, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

// Outcome describes what a webhook delivery resulted in
type Outcome string

const (
	// OutcomeOrderCreated means the event produced a new order
	OutcomeOrderCreated Outcome = "order_created"
	// OutcomeDuplicate means the event was delivered before and skipped
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeCartCleared means a failed payment released the cart
	OutcomeCartCleared Outcome = "cart_cleared"
	// OutcomeIgnored means the event type is not one we act on
	OutcomeIgnored Outcome = "ignored"
	// OutcomeUnprocessed means processing failed after verification;
	// the delivery is still acknowledged and the failure is surfaced
	// through error-level logs
	OutcomeUnprocessed Outcome = "unprocessed"
)

// Reconciler processes payment provider webhook deliveries. Signature
// failures are the only errors it propagates; everything past
// verification is absorbed, so the provider gets a 2xx either way and
// processing failures show up as error-level log alerts, not as
// delivery errors. Deduplication is two-layered: the event
// store is a fast path, and the unique index on payment_intent_id is
// the authoritative guard.
type Reconciler struct {
	gateway         checkout.Gateway
	materializer    Materializer
	processedEvents shared.IdempotencyStore
	logger          *zap.Logger
}

// NewReconciler creates a webhook reconciler
func NewReconciler(gateway checkout.Gateway, materializer Materializer, processedEvents shared.IdempotencyStore, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		gateway:         gateway,
		materializer:    materializer,
		processedEvents: processedEvents,
		logger:          logger,
	}
}

// HandleDelivery verifies and processes one raw webhook delivery.
// checkout.ErrInvalidSignature (and ErrNotConfigured for a nil gateway)
// are the only error returns; any processing failure after verification
// yields OutcomeUnprocessed with a nil error.
func (r *Reconciler) HandleDelivery(ctx context.Context, payload []byte, signature string) (Outcome, error) {
	if r.gateway == nil {
		return "", checkout.ErrNotConfigured
	}
	event, err := r.gateway.VerifyEvent(payload, signature)
	if err != nil {
		return "", err
	}
	return r.Process(ctx, event)
}

// Process applies one verified event
func (r *Reconciler) Process(ctx context.Context, event checkout.Event) (Outcome, error) {
	logger := r.logger.With(
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("intent_id", event.IntentID))

	switch event.Type {
	case checkout.EventPaymentSucceeded:
		return r.handleSucceeded(ctx, event, logger)
	case checkout.EventPaymentFailed:
		return r.handleFailed(ctx, event, logger)
	default:
		logger.Debug("Ignoring webhook event type")
		return OutcomeIgnored, nil
	}
}

func (r *Reconciler) handleSucceeded(ctx context.Context, event checkout.Event, logger *zap.Logger) (Outcome, error) {
	if r.seen(ctx, event.ID, logger) {
		logger.Info("Skipping already processed event")
		return OutcomeDuplicate, nil
	}

	payload, err := checkout.DecodePayload(event.Metadata)
	if err != nil {
		// Not ours, or a version we cannot read. A resend will not
		// change that, so acknowledge and move on.
		logger.Warn("Failed to decode checkout payload from event metadata", zap.Error(err))
		return OutcomeIgnored, nil
	}

	o, err := r.materializer.Materialize(ctx, event.IntentID, event.Amount, payload)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Another delivery won the race. The order exists, so this
			// delivery succeeded too.
			logger.Info("Order already materialized for intent")
			r.markProcessed(ctx, event.ID, logger)
			return OutcomeDuplicate, nil
		}
		// The delivery is acknowledged regardless, so this log line is
		// the operational alert. Not marking the event processed keeps
		// a manual resend of the same event retryable.
		logger.Error("Failed to materialize order for paid intent", zap.Error(err))
		return OutcomeUnprocessed, nil
	}

	r.markProcessed(ctx, event.ID, logger)
	logger.Info("Order created from payment event",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.Number))
	return OutcomeOrderCreated, nil
}

func (r *Reconciler) handleFailed(ctx context.Context, event checkout.Event, logger *zap.Logger) (Outcome, error) {
	if r.seen(ctx, event.ID, logger) {
		logger.Info("Skipping already processed event")
		return OutcomeDuplicate, nil
	}

	payload, err := checkout.DecodePayload(event.Metadata)
	if err != nil {
		logger.Warn("Failed to decode checkout payload from event metadata", zap.Error(err))
		return OutcomeIgnored, nil
	}

	if err := r.materializer.ClearCart(ctx, payload.CartID); err != nil {
		logger.Error("Failed to clear cart after failed payment", zap.Error(err))
		return OutcomeUnprocessed, nil
	}

	r.markProcessed(ctx, event.ID, logger)
	logger.Info("Cleared cart after failed payment", zap.String("cart_id", payload.CartID.String()))
	return OutcomeCartCleared, nil
}

// seen reports whether the event was processed before. Store errors are
// treated as "not seen": the unique index catches any duplicate that
// slips through.
func (r *Reconciler) seen(ctx context.Context, eventID string, logger *zap.Logger) bool {
	processed, err := r.processedEvents.IsProcessed(ctx, eventID)
	if err != nil {
		logger.Warn("Failed to check event dedup store", zap.Error(err))
		return false
	}
	return processed
}

// markProcessed records a fully handled event. Best effort: on failure
// the next delivery falls through to the storage guard.
func (r *Reconciler) markProcessed(ctx context.Context, eventID string, logger *zap.Logger) {
	if _, err := r.processedEvents.MarkProcessed(ctx, eventID, shared.DefaultIdempotencyTTL); err != nil {
		logger.Warn("Failed to record processed event", zap.Error(err))
	}
}
