package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

const (
	// MaxQuantityPerItem bounds a single line to keep intent amounts sane
	MaxQuantityPerItem = 999
	// MaxItemsPerCart bounds the number of distinct lines in a cart
	MaxItemsPerCart = 100
)

// Cart is the aggregate root for a shopper's cart. A cart belongs to
// exactly one owner: a registered user or an anonymous guest.
type Cart struct {
	shared.BaseEntity
	UserID     *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	GuestToken *string    `gorm:"type:varchar(64);uniqueIndex"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem is a line in a cart. Name and unit price are snapshots taken
// when the line was added so the cart stays stable if the catalog changes.
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_cart_product"`
	SKU       string          `gorm:"type:varchar(50);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency  string          `gorm:"type:varchar(3);not null"`
	Quantity  int             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// Price returns the snapshotted unit price as money
func (i CartItem) Price() (valueobject.Money, error) {
	return valueobject.NewMoney(i.UnitPrice, valueobject.Currency(i.Currency))
}

// NewUserCart creates an empty cart owned by a registered user
func NewUserCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     &userID,
	}
}

// NewGuestCart creates an empty cart owned by a guest token
func NewGuestCart(token string) (*Cart, error) {
	if token == "" {
		return nil, shared.NewDomainError("INVALID_GUEST_TOKEN", "Guest token is required")
	}
	if len(token) > 64 {
		return nil, shared.NewDomainError("INVALID_GUEST_TOKEN", "Guest token cannot exceed 64 characters")
	}
	return &Cart{
		BaseEntity: shared.NewBaseEntity(),
		GuestToken: &token,
	}, nil
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem adds a product to the cart, merging quantity into an
// existing line for the same product
func (c *Cart) AddItem(productID uuid.UUID, sku, name string, unitPrice valueobject.Money, quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return c.changeQuantity(i, c.Items[i].Quantity+quantity)
		}
	}
	if len(c.Items) >= MaxItemsPerCart {
		return shared.NewDomainError("CART_FULL", "Cart cannot hold more distinct items")
	}
	if quantity > MaxQuantityPerItem {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
	}
	c.Items = append(c.Items, CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		SKU:        sku,
		Name:       name,
		UnitPrice:  unitPrice.Amount(),
		Currency:   string(unitPrice.Currency()),
		Quantity:   quantity,
	})
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Zero removes the line.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			if quantity == 0 {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				c.UpdatedAt = time.Now()
				return nil
			}
			return c.changeQuantity(i, quantity)
		}
	}
	return shared.ErrNotFound
}

// RemoveItem removes a line from the cart
func (c *Cart) RemoveItem(productID uuid.UUID) error {
	return c.UpdateQuantity(productID, 0)
}

// Clear removes all lines from the cart
func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

// Subtotal sums unit price times quantity over all lines. All lines in a
// cart share one currency; an empty cart reports a zero subtotal in the
// default currency.
func (c *Cart) Subtotal() (valueobject.Money, error) {
	if len(c.Items) == 0 {
		return valueobject.Zero(valueobject.DefaultCurrency), nil
	}
	total := valueobject.Zero(valueobject.Currency(c.Items[0].Currency))
	for _, item := range c.Items {
		line, err := valueobject.NewMoney(item.UnitPrice, valueobject.Currency(item.Currency))
		if err != nil {
			return valueobject.Money{}, err
		}
		total, err = total.Add(line.MulInt(int64(item.Quantity)))
		if err != nil {
			return valueobject.Money{}, err
		}
	}
	return total, nil
}

// TotalQuantity returns the number of units across all lines
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) changeQuantity(i, quantity int) error {
	if quantity > MaxQuantityPerItem {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the per-item limit")
	}
	c.Items[i].Quantity = quantity
	c.Items[i].UpdatedAt = time.Now()
	c.UpdatedAt = time.Now()
	return nil
}
