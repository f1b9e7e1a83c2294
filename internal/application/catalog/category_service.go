package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category tree operations
type CategoryService struct {
	categories catalog.CategoryRepository
}

// NewCategoryService creates a category service
func NewCategoryService(categories catalog.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Create adds a category
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	category, err := catalog.NewCategory(req.Name, req.Slug)
	if err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.categories.FindByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("INVALID_PARENT", "Parent category not found")
			}
			return nil, err
		}
		if err := category.SetParent(req.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.categories.Save(ctx, category); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("SLUG_TAKEN", "A category with this slug already exists")
		}
		return nil, err
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

// GetBySlug returns one category looked up by slug
func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*CategoryResponse, error) {
	category, err := s.categories.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

// categoryListFilter covers the whole catalog tree; storefront
// category sets are small, so no pagination at this level
func categoryListFilter() shared.Filter {
	f := shared.DefaultFilter()
	f.PageSize = 500
	f.OrderBy = "sort_order"
	f.OrderDir = "asc"
	return f
}

// List returns all categories
func (s *CategoryService) List(ctx context.Context) ([]CategoryResponse, error) {
	categories, _, err := s.categories.FindAll(ctx, categoryListFilter())
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	return out, nil
}

// Tree returns all categories nested by parent, roots first, siblings
// in sort order
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryTreeNode, error) {
	categories, _, err := s.categories.FindAll(ctx, categoryListFilter())
	if err != nil {
		return nil, err
	}

	children := make(map[uuid.UUID][]*catalog.Category)
	var roots []*catalog.Category
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var build func(c *catalog.Category) CategoryTreeNode
	build = func(c *catalog.Category) CategoryTreeNode {
		node := CategoryTreeNode{CategoryResponse: toCategoryResponse(c)}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	tree := make([]CategoryTreeNode, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, build(root))
	}
	return tree, nil
}

// Update modifies a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := category.Update(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.ParentID != nil {
		if err := category.SetParent(req.ParentID); err != nil {
			return nil, err
		}
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}
