// Package category provides the product category catalog.
// Categories are the top-level grouping promotions refer to; each owns a set
// of subcategories, which is the granularity discounts are applied at.
package category

import (
	"context"
	"strings"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
)

// Category is a top-level product grouping.
type Category struct {
	ID id.ID `db:"id" json:"id"`

	Name string `db:"name" json:"name"`

	// DeletionMark indicates soft-deleted category
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	// Subcategories owned by this category (table part)
	Subcategories []Subcategory `db:"-" json:"subcategories"`
}

// Subcategory is the unit promotions discount against.
type Subcategory struct {
	ID         id.ID  `db:"id" json:"id"`
	CategoryID id.ID  `db:"category_id" json:"categoryId"`
	Name       string `db:"name" json:"name"`
}

// NewCategory creates a category with generated ID.
func NewCategory(name string) *Category {
	return &Category{
		ID:      id.New(),
		Name:    strings.TrimSpace(name),
		Version: 1,
	}
}

// AddSubcategory appends a subcategory with generated ID.
func (c *Category) AddSubcategory(name string) {
	c.Subcategories = append(c.Subcategories, Subcategory{
		ID:         id.New(),
		CategoryID: c.ID,
		Name:       strings.TrimSpace(name),
	})
}

// SubcategoryIDs returns the IDs of all subcategories.
func (c *Category) SubcategoryIDs() []id.ID {
	ids := make([]id.ID, len(c.Subcategories))
	for i, s := range c.Subcategories {
		ids[i] = s.ID
	}
	return ids
}

// Validate checks category invariants.
func (c *Category) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("category name is required").
			WithDetail("field", "name")
	}

	seen := make(map[string]struct{}, len(c.Subcategories))
	for i, s := range c.Subcategories {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return apperror.NewValidation("subcategory name is required").
				WithDetail("field", "subcategories").
				WithDetail("index", i)
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return apperror.NewValidation("duplicate subcategory name").
				WithDetail("field", "subcategories").
				WithDetail("name", name)
		}
		seen[key] = struct{}{}
	}

	return nil
}
