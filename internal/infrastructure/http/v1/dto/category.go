package dto

import (
	"pannpos/internal/domain/catalogs/category"
)

// --- Request DTOs ---

// CreateCategoryRequest is the body for creating a category.
type CreateCategoryRequest struct {
	Name          string   `json:"name" binding:"required"`
	Subcategories []string `json:"subcategories"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Name)
	for _, name := range r.Subcategories {
		c.AddSubcategory(name)
	}
	return c
}

// UpdateCategoryRequest is the body for updating a category.
// Subcategories replaces the full set; existing names keep their IDs.
type UpdateCategoryRequest struct {
	Name          *string  `json:"name,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
	Version       int      `json:"version" binding:"required,min=1"`
}

// ApplyTo merges non-nil fields onto the entity.
func (r *UpdateCategoryRequest) ApplyTo(c *category.Category) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Subcategories != nil {
		existing := make(map[string]category.Subcategory, len(c.Subcategories))
		for _, s := range c.Subcategories {
			existing[s.Name] = s
		}
		c.Subcategories = c.Subcategories[:0]
		for _, name := range r.Subcategories {
			if s, ok := existing[name]; ok {
				c.Subcategories = append(c.Subcategories, s)
			} else {
				c.AddSubcategory(name)
			}
		}
	}
	c.Version = r.Version
}

// --- Response DTOs ---

// SubcategoryResponse is one subcategory of a category.
type SubcategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryResponse is a catalog category with its subcategories.
type CategoryResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	DeletionMark  bool                  `json:"deletionMark"`
	Version       int                   `json:"version"`
	Subcategories []SubcategoryResponse `json:"subcategories"`
}

// FromCategory converts a category.
func FromCategory(c *category.Category) *CategoryResponse {
	resp := &CategoryResponse{
		ID:           c.ID.String(),
		Name:         c.Name,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
	resp.Subcategories = make([]SubcategoryResponse, len(c.Subcategories))
	for i, s := range c.Subcategories {
		resp.Subcategories[i] = SubcategoryResponse{ID: s.ID.String(), Name: s.Name}
	}
	return resp
}

// FromCategories converts a category list.
func FromCategories(items []*category.Category) []*CategoryResponse {
	out := make([]*CategoryResponse, len(items))
	for i, c := range items {
		out[i] = FromCategory(c)
	}
	return out
}
