package checkout

import "context"

// Event types a reconciler reacts to. Values follow the provider's naming.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// IntentRef identifies a payment intent created at the provider. The
// client secret is handed to the browser to confirm the payment.
type IntentRef struct {
	IntentID     string
	ClientSecret string
}

// Event is a verified provider notification. Metadata carries the
// checkout payload that was attached when the intent was created.
type Event struct {
	ID       string
	Type     string
	IntentID string
	Amount   int64
	Currency string
	Metadata map[string]string
}

// Gateway is the payment provider contract. Implementations talk to the
// real provider; tests substitute a fake.
type Gateway interface {
	// CreateIntent registers a payment intent for the given amount in
	// minor units, attaching metadata for later reconciliation.
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (IntentRef, error)
	// VerifyEvent checks the webhook signature over the raw payload and
	// parses the event. Returns ErrInvalidSignature when verification fails.
	VerifyEvent(payload []byte, signature string) (Event, error)
}
