package dto

import (
	"time"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the body for creating a product.
type CreateProductRequest struct {
	SKU               string         `json:"sku" binding:"required"`
	Name              string         `json:"name" binding:"required"`
	CategoryID        string         `json:"categoryId" binding:"required"`
	SubcategoryID     string         `json:"subcategoryId" binding:"required"`
	CostPrice         types.Money    `json:"costPrice"`
	SellPrice         types.Money    `json:"sellPrice"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	categoryID, _ := id.Parse(r.CategoryID)
	subcategoryID, _ := id.Parse(r.SubcategoryID)

	p := product.NewProduct(r.SKU, r.Name, categoryID, subcategoryID)
	p.CostPrice = r.CostPrice
	p.SellPrice = r.SellPrice
	p.LowStockThreshold = r.LowStockThreshold
	return p
}

// UpdateProductRequest is the body for updating a product.
type UpdateProductRequest struct {
	SKU               *string         `json:"sku,omitempty"`
	Name              *string         `json:"name,omitempty"`
	CategoryID        *string         `json:"categoryId,omitempty"`
	SubcategoryID     *string         `json:"subcategoryId,omitempty"`
	CostPrice         *types.Money    `json:"costPrice,omitempty"`
	SellPrice         *types.Money    `json:"sellPrice,omitempty"`
	LowStockThreshold *types.Quantity `json:"lowStockThreshold,omitempty"`
	Version           int             `json:"version" binding:"required,min=1"`
}

// ApplyTo merges non-nil fields onto the entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.SKU != nil {
		p.SKU = *r.SKU
	}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.CategoryID != nil {
		categoryID, _ := id.Parse(*r.CategoryID)
		p.CategoryID = categoryID
	}
	if r.SubcategoryID != nil {
		subcategoryID, _ := id.Parse(*r.SubcategoryID)
		p.SubcategoryID = subcategoryID
	}
	if r.CostPrice != nil {
		p.CostPrice = *r.CostPrice
	}
	if r.SellPrice != nil {
		p.SellPrice = *r.SellPrice
	}
	if r.LowStockThreshold != nil {
		p.LowStockThreshold = *r.LowStockThreshold
	}
	p.Version = r.Version
}

// ListProductsRequest filters product listings.
type ListProductsRequest struct {
	CategoryID     string `form:"categoryId"`
	SubcategoryID  string `form:"subcategoryId"`
	Search         string `form:"search"`
	IncludeDeleted bool   `form:"includeDeleted"`
	Limit          int    `form:"limit"`
	Offset         int    `form:"offset"`
}

// ToFilter converts query params to the domain filter.
func (r *ListProductsRequest) ToFilter() product.ListFilter {
	f := product.ListFilter{
		Search:         r.Search,
		IncludeDeleted: r.IncludeDeleted,
		Limit:          r.Limit,
		Offset:         r.Offset,
	}
	if r.CategoryID != "" {
		if categoryID, err := id.Parse(r.CategoryID); err == nil {
			f.CategoryID = &categoryID
		}
	}
	if r.SubcategoryID != "" {
		if subcategoryID, err := id.Parse(r.SubcategoryID); err == nil {
			f.SubcategoryID = &subcategoryID
		}
	}
	return f
}

// --- Response DTOs ---

// ProductResponse is a catalog product.
type ProductResponse struct {
	ID                string         `json:"id"`
	SKU               string         `json:"sku"`
	Name              string         `json:"name"`
	CategoryID        string         `json:"categoryId"`
	SubcategoryID     string         `json:"subcategoryId"`
	CostPrice         types.Money    `json:"costPrice"`
	SellPrice         types.Money    `json:"sellPrice"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
	DeletionMark      bool           `json:"deletionMark"`
	Version           int            `json:"version"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// FromProduct converts a product.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:                p.ID.String(),
		SKU:               p.SKU,
		Name:              p.Name,
		CategoryID:        p.CategoryID.String(),
		SubcategoryID:     p.SubcategoryID.String(),
		CostPrice:         p.CostPrice,
		SellPrice:         p.SellPrice,
		LowStockThreshold: p.LowStockThreshold,
		DeletionMark:      p.DeletionMark,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

// FromProducts converts a product list.
func FromProducts(items []*product.Product) []*ProductResponse {
	out := make([]*ProductResponse, len(items))
	for i, p := range items {
		out[i] = FromProduct(p)
	}
	return out
}
