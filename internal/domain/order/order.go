package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of an order
type Status string

const (
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Order is the aggregate root materialized from a confirmed payment.
// PaymentIntentID carries a unique index: it is the storage-level guard
// that makes materialization idempotent under duplicated webhook delivery.
type Order struct {
	shared.BaseEntity
	Number          string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	PaymentIntentID string          `gorm:"type:varchar(255);not null;uniqueIndex"`
	UserID          *uuid.UUID      `gorm:"type:uuid;index"`
	GuestToken      *string         `gorm:"type:varchar(64);index"`
	Email           string          `gorm:"type:varchar(255);not null"`
	Status          Status          `gorm:"type:varchar(20);not null"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountCharged   int64           `gorm:"not null"` // minor units, as charged by the provider
	Currency        string          `gorm:"type:varchar(3);not null"`
	ShippingAddress valueobject.Address `gorm:"type:jsonb"`
	BillingAddress  valueobject.Address `gorm:"type:jsonb"`
	ShippingMethod  string              `gorm:"type:varchar(50)"`
	Notes           string              `gorm:"type:varchar(400)"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt          time.Time           `gorm:"not null"`
}

// OrderItem is a purchased line, snapshotted from the cart at payment time
type OrderItem struct {
	shared.BaseEntity
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	SKU       string          `gorm:"type:varchar(50);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity  int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// Totals bundles the money figures of an order
type Totals struct {
	Subtotal      valueobject.Money
	TaxAmount     valueobject.Money
	Total         valueobject.Money
	AmountCharged int64
}

// NewOrder creates a paid order from checkout data
func NewOrder(number, paymentIntentID, email string, totals Totals) (*Order, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number is required")
	}
	if paymentIntentID == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_INTENT", "Payment intent ID is required")
	}
	// Email may be empty: guests can check out without one, and the
	// provider enforces nothing about it either.
	return &Order{
		BaseEntity:      shared.NewBaseEntity(),
		Number:          number,
		PaymentIntentID: paymentIntentID,
		Email:           email,
		Status:          StatusPaid,
		Subtotal:        totals.Subtotal.Amount(),
		TaxAmount:       totals.TaxAmount.Amount(),
		Total:           totals.Total.Amount(),
		AmountCharged:   totals.AmountCharged,
		Currency:        string(totals.Total.Currency()),
		PaidAt:          time.Now(),
	}, nil
}

// AddItem appends a purchased line to the order
func (o *Order) AddItem(productID uuid.UUID, sku, name string, unitPrice decimal.Decimal, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	o.Items = append(o.Items, OrderItem{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		ProductID:  productID,
		SKU:        sku,
		Name:       name,
		UnitPrice:  unitPrice,
		Quantity:   quantity,
	})
	return nil
}

// MarkShipped transitions a paid order to shipped
func (o *Order) MarkShipped() error {
	if o.Status != StatusPaid {
		return shared.ErrInvalidState
	}
	o.Status = StatusShipped
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered transitions a shipped order to delivered
func (o *Order) MarkDelivered() error {
	if o.Status != StatusShipped {
		return shared.ErrInvalidState
	}
	o.Status = StatusDelivered
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels an order that has not shipped yet
func (o *Order) Cancel() error {
	if o.Status != StatusPaid {
		return shared.ErrInvalidState
	}
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}
