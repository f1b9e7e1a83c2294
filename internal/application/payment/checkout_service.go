package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// CheckoutConfig carries the pricing parameters applied at checkout
type CheckoutConfig struct {
	// Currency every intent is created in
	Currency valueobject.Currency
	// TaxRate as a fraction, e.g. 0.22 for 22%
	TaxRate decimal.Decimal
}

// Validate checks the checkout configuration
func (c CheckoutConfig) Validate() error {
	if c.Currency == "" {
		return fmt.Errorf("checkout currency is required")
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be in [0, 1), got %s", c.TaxRate)
	}
	return nil
}

// CreateIntentInput is the shopper-supplied part of a checkout
type CreateIntentInput struct {
	Email           string
	ShippingAddress valueobject.Address
	BillingAddress  valueobject.Address
	Notes           string
	ShippingMethod  string
}

// CheckoutIntent is returned to the client to drive payment confirmation
type CheckoutIntent struct {
	IntentID     string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Subtotal     string `json:"subtotal"`
	TaxAmount    string `json:"tax_amount"`
	Total        string `json:"total"`
}

// CheckoutService prices a cart and opens a payment intent for it. The
// full checkout state travels inside the intent metadata, so the flow
// holds no server-side session between intent creation and the webhook.
type CheckoutService struct {
	carts   cart.Repository
	gateway checkout.Gateway
	config  CheckoutConfig
	logger  *zap.Logger
}

// NewCheckoutService creates a checkout service. A nil gateway is
// allowed and makes every checkout fail with ErrNotConfigured.
func NewCheckoutService(carts cart.Repository, gateway checkout.Gateway, config CheckoutConfig, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		carts:   carts,
		gateway: gateway,
		config:  config,
		logger:  logger,
	}
}

// CreateIntent prices the owner's cart and creates a payment intent for
// the taxed total. The cart is validated before the provider is
// contacted: an empty or missing cart never reaches the gateway.
// Rounding to minor units happens once, on the final total.
func (s *CheckoutService) CreateIntent(ctx context.Context, owner cart.Identity, input CreateIntentInput) (*CheckoutIntent, error) {
	if s.gateway == nil {
		return nil, checkout.ErrNotConfigured
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, fmt.Errorf("%w: shipping address: %s", checkout.ErrInvalidCheckout, err)
	}
	billing := input.BillingAddress
	if billing.IsZero() {
		billing = input.ShippingAddress
	} else if err := billing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: billing address: %s", checkout.ErrInvalidCheckout, err)
	}

	c, err := s.carts.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, checkout.ErrEmptyCart
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, checkout.ErrEmptyCart
	}

	subtotal, err := c.Subtotal()
	if err != nil {
		return nil, err
	}
	taxAmount := subtotal.MulRate(s.config.TaxRate)
	total, err := subtotal.Add(taxAmount)
	if err != nil {
		return nil, err
	}
	amount := total.MinorUnits()

	payload := checkout.Payload{
		CartID:          c.ID,
		Email:           input.Email,
		Subtotal:        subtotal,
		TaxAmount:       taxAmount,
		Total:           total,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  billing,
		Notes:           input.Notes,
		ShippingMethod:  input.ShippingMethod,
	}
	if owner.IsUser() {
		userID := owner.UserID()
		payload.UserID = &userID
	} else {
		payload.GuestToken = owner.GuestToken()
	}

	metadata, err := payload.Encode()
	if err != nil {
		return nil, err
	}

	ref, err := s.gateway.CreateIntent(ctx, amount, string(s.config.Currency), metadata)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Created checkout intent",
		zap.String("intent_id", ref.IntentID),
		zap.String("cart_id", c.ID.String()),
		zap.Int64("amount", amount),
		zap.String("currency", string(s.config.Currency)))

	return &CheckoutIntent{
		IntentID:     ref.IntentID,
		ClientSecret: ref.ClientSecret,
		Amount:       amount,
		Currency:     string(s.config.Currency),
		Subtotal:     subtotal.Amount().StringFixed(2),
		TaxAmount:    taxAmount.Amount().StringFixed(2),
		Total:        total.Amount().StringFixed(2),
	}, nil
}
