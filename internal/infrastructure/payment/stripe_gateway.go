package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/checkout"
)

// StripeGateway implements checkout.Gateway against the Stripe API
type StripeGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.InitStripeClient()

	return &StripeGateway{
		config: config,
		logger: logger,
	}, nil
}

// CreateIntent registers a payment intent for the given amount in minor
// units, attaching metadata for later reconciliation
func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (checkout.IntentRef, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.Metadata = metadata

	pi, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error("Failed to create payment intent",
			zap.Int64("amount", amount),
			zap.String("currency", currency),
			zap.Error(err))
		return checkout.IntentRef{}, mapStripeError(err)
	}

	g.logger.Info("Created payment intent",
		zap.String("intent_id", pi.ID),
		zap.Int64("amount", amount),
		zap.String("currency", currency))

	return checkout.IntentRef{
		IntentID:     pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// VerifyEvent checks the webhook signature over the raw payload and parses
// the event. Any verification failure surfaces as ErrInvalidSignature.
func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (checkout.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.config.WebhookSecret)
	if err != nil {
		return checkout.Event{}, checkout.ErrInvalidSignature
	}

	out := checkout.Event{
		ID:   event.ID,
		Type: string(event.Type),
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return checkout.Event{}, fmt.Errorf("failed to parse payment intent from event %s: %w", event.ID, err)
		}
		out.IntentID = pi.ID
		out.Amount = pi.Amount
		out.Currency = strings.ToUpper(string(pi.Currency))
		out.Metadata = pi.Metadata
	}

	return out, nil
}

// mapStripeError translates provider transport failures to the domain error
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeAPI || stripeErr.HTTPStatusCode >= 500 {
			return fmt.Errorf("%w: %s", checkout.ErrProviderUnavailable, stripeErr.Msg)
		}
		return err
	}
	// Non-API errors (DNS, timeouts) also mean the provider is unreachable
	return fmt.Errorf("%w: %v", checkout.ErrProviderUnavailable, err)
}

// Ensure StripeGateway implements checkout.Gateway
var _ checkout.Gateway = (*StripeGateway)(nil)
