package product

import (
	"context"

	"pannpos/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID     *id.ID
	SubcategoryID  *id.ID
	Search         string // matches sku or name, case-insensitive
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error

	// Update persists changes with an optimistic version check.
	// Returns ConcurrentModification when the stored version differs.
	Update(ctx context.Context, p *Product) error

	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetBySKU(ctx context.Context, sku string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	// MarkDeleted soft-flags a product; products are never hard-deleted.
	MarkDeleted(ctx context.Context, productID id.ID) error
}
