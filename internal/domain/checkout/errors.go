package checkout

import "github.com/storefront/backend/internal/domain/shared"

// Checkout error sentinels
var (
	// ErrEmptyCart is returned when checkout is attempted on a cart with no lines
	ErrEmptyCart = shared.NewDomainError("EMPTY_CART", "Cart is empty")
	// ErrInvalidCheckout is returned when the shopper-supplied checkout details are invalid
	ErrInvalidCheckout = shared.NewDomainError("INVALID_CHECKOUT", "Checkout details are invalid")
	// ErrPayloadTooLarge is returned when a metadata value exceeds the provider limit
	ErrPayloadTooLarge = shared.NewDomainError("PAYLOAD_TOO_LARGE", "Checkout payload exceeds provider metadata limits")
	// ErrUnsupportedPayloadVersion is returned when event metadata carries an unknown schema version
	ErrUnsupportedPayloadVersion = shared.NewDomainError("UNSUPPORTED_PAYLOAD_VERSION", "Unsupported checkout payload version")
	// ErrInvalidSignature is returned when a webhook signature does not verify
	ErrInvalidSignature = shared.NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
	// ErrProviderUnavailable is returned when the payment provider cannot be reached
	ErrProviderUnavailable = shared.NewDomainError("PROVIDER_UNAVAILABLE", "Payment provider is unavailable")
	// ErrNotConfigured is returned when payment credentials are missing
	ErrNotConfigured = shared.NewDomainError("PAYMENT_NOT_CONFIGURED", "Payment service is not configured")
)
