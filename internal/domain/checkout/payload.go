package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// PayloadVersion is the current metadata schema version. Bump it when
// the key set changes so old in-flight events are rejected explicitly
// instead of being misread.
const PayloadVersion = "1"

// maxMetadataValueLen is the provider's per-value metadata limit
const maxMetadataValueLen = 500

// Metadata keys for schema version 1
const (
	keyVersion         = "schema_version"
	keyCartID          = "cart_id"
	keyUserID          = "user_id"
	keyGuestToken      = "guest_token"
	keyEmail           = "email"
	keySubtotal        = "subtotal"
	keyTaxAmount       = "tax_amount"
	keyTotal           = "total"
	keyCurrency        = "currency"
	keyShippingAddress = "shipping_address"
	keyBillingAddress  = "billing_address"
	keyNotes           = "notes"
	keyShippingMethod  = "shipping_method"
)

// Payload is the checkout state attached to a payment intent as flat
// string metadata. It carries everything the reconciler needs to
// materialize an order without trusting the client again.
type Payload struct {
	CartID          uuid.UUID
	UserID          *uuid.UUID
	GuestToken      string
	Email           string
	Subtotal        valueobject.Money
	TaxAmount       valueobject.Money
	Total           valueobject.Money
	ShippingAddress valueobject.Address
	BillingAddress  valueobject.Address
	Notes           string
	ShippingMethod  string
}

// Encode flattens the payload into provider metadata. Addresses are
// JSON-serialized into single values. Returns ErrPayloadTooLarge if any
// value exceeds the provider's per-value limit.
func (p Payload) Encode() (map[string]string, error) {
	shipping, err := json.Marshal(p.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal shipping address: %w", err)
	}
	billing, err := json.Marshal(p.BillingAddress)
	if err != nil {
		return nil, fmt.Errorf("marshal billing address: %w", err)
	}

	md := map[string]string{
		keyVersion:         PayloadVersion,
		keyCartID:          p.CartID.String(),
		keySubtotal:        p.Subtotal.Amount().String(),
		keyTaxAmount:       p.TaxAmount.Amount().String(),
		keyTotal:           p.Total.Amount().String(),
		keyCurrency:        string(p.Total.Currency()),
		keyShippingAddress: string(shipping),
		keyBillingAddress:  string(billing),
	}
	if p.UserID != nil {
		md[keyUserID] = p.UserID.String()
	}
	if p.GuestToken != "" {
		md[keyGuestToken] = p.GuestToken
	}
	if p.Email != "" {
		md[keyEmail] = p.Email
	}
	if p.Notes != "" {
		md[keyNotes] = p.Notes
	}
	if p.ShippingMethod != "" {
		md[keyShippingMethod] = p.ShippingMethod
	}

	for _, v := range md {
		if len(v) > maxMetadataValueLen {
			return nil, ErrPayloadTooLarge
		}
	}
	return md, nil
}

// DecodePayload parses provider metadata back into a payload. Metadata
// written under a different schema version is rejected.
func DecodePayload(md map[string]string) (Payload, error) {
	if md[keyVersion] != PayloadVersion {
		return Payload{}, ErrUnsupportedPayloadVersion
	}

	cartID, err := uuid.Parse(md[keyCartID])
	if err != nil {
		return Payload{}, fmt.Errorf("parse cart_id: %w", err)
	}

	currency := valueobject.Currency(md[keyCurrency])
	subtotal, err := valueobject.NewMoneyFromString(md[keySubtotal], currency)
	if err != nil {
		return Payload{}, fmt.Errorf("parse subtotal: %w", err)
	}
	taxAmount, err := valueobject.NewMoneyFromString(md[keyTaxAmount], currency)
	if err != nil {
		return Payload{}, fmt.Errorf("parse tax_amount: %w", err)
	}
	total, err := valueobject.NewMoneyFromString(md[keyTotal], currency)
	if err != nil {
		return Payload{}, fmt.Errorf("parse total: %w", err)
	}

	p := Payload{
		CartID:         cartID,
		Email:          md[keyEmail],
		GuestToken:     md[keyGuestToken],
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		Total:          total,
		Notes:          md[keyNotes],
		ShippingMethod: md[keyShippingMethod],
	}

	if raw, ok := md[keyUserID]; ok && raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return Payload{}, fmt.Errorf("parse user_id: %w", err)
		}
		p.UserID = &userID
	}
	if raw := md[keyShippingAddress]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.ShippingAddress); err != nil {
			return Payload{}, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}
	if raw := md[keyBillingAddress]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.BillingAddress); err != nil {
			return Payload{}, fmt.Errorf("unmarshal billing address: %w", err)
		}
	}
	return p, nil
}
