package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

// Service coordinates order materialization and retrieval
type Service struct {
	orders order.Repository
	carts  cart.Repository
	logger *zap.Logger
}

// NewService creates an order service
func NewService(orders order.Repository, carts cart.Repository, logger *zap.Logger) *Service {
	return &Service{
		orders: orders,
		carts:  carts,
		logger: logger,
	}
}

// Materialize turns a confirmed payment into an order: it snapshots the
// cart lines into order items, inserts the order and clears the cart in
// one transaction. The unique index on payment_intent_id makes the
// operation idempotent: a duplicate attempt surfaces shared.ErrAlreadyExists
// and leaves storage untouched.
func (s *Service) Materialize(ctx context.Context, intentID string, amountCharged int64, payload checkout.Payload) (*order.Order, error) {
	c, err := s.carts.FindByID(ctx, payload.CartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", payload.CartID, err)
	}
	if c.IsEmpty() {
		// The cart was already cleared: either this intent was handled, or
		// the shopper paid twice for one cart. The unique index decides.
		s.logger.Warn("Materializing order from an empty cart",
			zap.String("intent_id", intentID),
			zap.String("cart_id", payload.CartID.String()))
	}

	o, err := order.NewOrder(newOrderNumber(), intentID, payload.Email, order.Totals{
		Subtotal:      payload.Subtotal,
		TaxAmount:     payload.TaxAmount,
		Total:         payload.Total,
		AmountCharged: amountCharged,
	})
	if err != nil {
		return nil, err
	}

	o.UserID = payload.UserID
	if payload.GuestToken != "" {
		token := payload.GuestToken
		o.GuestToken = &token
	}
	o.ShippingAddress = payload.ShippingAddress
	o.BillingAddress = payload.BillingAddress
	o.ShippingMethod = payload.ShippingMethod
	o.Notes = payload.Notes

	for _, item := range c.Items {
		if err := o.AddItem(item.ProductID, item.SKU, item.Name, item.UnitPrice, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err := s.orders.CreateFromCheckout(ctx, o, c.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Materialized order",
		zap.String("order_id", o.ID.String()),
		zap.String("order_number", o.Number),
		zap.String("intent_id", intentID),
		zap.Int64("amount_charged", amountCharged))

	return o, nil
}

// ClearCart removes all lines from a cart, used when a payment fails
func (s *Service) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return s.carts.ClearItems(ctx, cartID)
}

// GetByID returns an order if it belongs to the given user
func (s *Service) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID == nil || *o.UserID != userID {
		return nil, shared.ErrForbidden
	}
	return o, nil
}

// GetByPaymentIntent returns the order materialized for a payment intent
func (s *Service) GetByPaymentIntent(ctx context.Context, intentID string) (*order.Order, error) {
	return s.orders.FindByPaymentIntentID(ctx, intentID)
}

// ListByUser returns a user's orders, newest first
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]*order.Order, int64, error) {
	return s.orders.FindByUser(ctx, userID, filter)
}

// MarkShipped transitions a paid order to shipped
func (s *Service) MarkShipped(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return s.transition(ctx, orderID, (*order.Order).MarkShipped)
}

// MarkDelivered transitions a shipped order to delivered
func (s *Service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return s.transition(ctx, orderID, (*order.Order).MarkDelivered)
}

// Cancel cancels an order that has not shipped yet
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return s.transition(ctx, orderID, (*order.Order).Cancel)
}

func (s *Service) transition(ctx context.Context, orderID uuid.UUID, fn func(*order.Order) error) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// newOrderNumber builds a human-facing order number. Uniqueness is
// enforced by the database; the random suffix makes collisions unlikely.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
