package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ImageResolver turns a stored image key into a URL the client can fetch.
// A nil resolver leaves image URLs empty.
type ImageResolver interface {
	DownloadURL(ctx context.Context, key string) (string, error)
}

// ProductService handles product catalog operations
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	images     ImageResolver
	currency   valueobject.Currency
}

// NewProductService creates a product service
func NewProductService(
	products catalog.ProductRepository,
	categories catalog.CategoryRepository,
	images ImageResolver,
	currency valueobject.Currency,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		images:     images,
		currency:   currency,
	}
}

// Create adds a product to the catalog
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	currency := s.currency
	if req.Currency != "" {
		currency = valueobject.Currency(req.Currency)
	}
	price, err := valueobject.NewMoney(req.Price, currency)
	if err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return nil, err
		}
	}

	product, err := catalog.NewProduct(req.SKU, req.Name, price)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		if err := product.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	product.SetCategory(req.CategoryID)
	if req.SortOrder != nil {
		product.SortOrder = *req.SortOrder
	}

	if err := s.products.Save(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("SKU_TAKEN", "A product with this SKU already exists")
		}
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// GetBySKU returns one product looked up by SKU
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, filter shared.Filter) (*ProductListResponse, error) {
	products, total, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, *s.respond(ctx, p))
	}
	return &ProductListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Update modifies a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := product.Name
	if req.Name != nil {
		name = *req.Name
	}
	description := product.Description
	if req.Description != nil {
		description = *req.Description
	}
	if err := product.Update(name, description); err != nil {
		return nil, err
	}

	if req.Price != nil {
		price, err := valueobject.NewMoney(*req.Price, valueobject.Currency(product.Currency))
		if err != nil {
			return nil, err
		}
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_CATEGORY", "Category not found")
			}
			return nil, err
		}
		product.SetCategory(req.CategoryID)
	}
	if req.SortOrder != nil {
		product.SortOrder = *req.SortOrder
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product), nil
}

// Disable takes a product off sale
func (s *ProductService) Disable(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, (*catalog.Product).Disable)
}

// Enable puts a product back on sale
func (s *ProductService) Enable(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, (*catalog.Product).Enable)
}

func (s *ProductService) setStatus(ctx context.Context, id uuid.UUID, fn func(*catalog.Product) error) error {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(product); err != nil {
		return err
	}
	return s.products.Update(ctx, product)
}

func (s *ProductService) respond(ctx context.Context, p *catalog.Product) *ProductResponse {
	imageURL := ""
	if s.images != nil && p.ImageKey != "" {
		if url, err := s.images.DownloadURL(ctx, p.ImageKey); err == nil {
			imageURL = url
		}
	}
	resp := toProductResponse(p, imageURL)
	return &resp
}
