package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusDisabled ProductStatus = "disabled"
)

// Product represents a sellable product in the catalog
// It is the aggregate root for product-related operations
type Product struct {
	shared.BaseEntity
	SKU         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency    string          `gorm:"type:varchar(3);not null"`
	ImageKey    string          `gorm:"type:varchar(500)"` // object storage key, not a URL
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(sku, name string, price valueobject.Money) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	return &Product{
		BaseEntity: shared.NewBaseEntity(),
		SKU:        strings.ToUpper(strings.TrimSpace(sku)),
		Name:       name,
		Price:      price.Amount(),
		Currency:   string(price.Currency()),
		Status:     ProductStatusActive,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	return nil
}

// SetPrice updates the selling price
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	p.Price = price.Amount()
	p.Currency = string(price.Currency())
	p.UpdatedAt = time.Now()
	return nil
}

// SetCategory assigns the product to a category (nil detaches it)
func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.UpdatedAt = time.Now()
}

// SetImageKey sets the object storage key for the product image
func (p *Product) SetImageKey(key string) error {
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_IMAGE_KEY", "Image key cannot exceed 500 characters")
	}
	p.ImageKey = key
	p.UpdatedAt = time.Now()
	return nil
}

// Disable takes the product off sale
func (p *Product) Disable() error {
	if p.Status == ProductStatusDisabled {
		return shared.ErrInvalidState
	}
	p.Status = ProductStatusDisabled
	p.UpdatedAt = time.Now()
	return nil
}

// Enable puts the product back on sale
func (p *Product) Enable() error {
	if p.Status == ProductStatusActive {
		return shared.ErrInvalidState
	}
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	return nil
}

// IsActive returns true if the product can be added to carts
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// UnitPrice returns the selling price as a Money value
func (p *Product) UnitPrice() valueobject.Money {
	m, _ := valueobject.NewMoney(p.Price, valueobject.Currency(p.Currency))
	return m
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU is required")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	return nil
}

func validateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
