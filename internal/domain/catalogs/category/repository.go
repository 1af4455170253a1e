package category

import (
	"context"

	"pannpos/internal/core/id"
)

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, categoryID id.ID) (*Category, error)

	// GetByName resolves a category by its name (case-insensitive),
	// subcategories included. Returns NotFound if no live category matches.
	GetByName(ctx context.Context, name string) (*Category, error)

	List(ctx context.Context, includeDeleted bool) ([]*Category, error)
}
