// Package product provides the product catalog.
// Products are never hard-deleted: sales and batch ledgers reference them,
// so retirement is a deletion mark only.
package product

import (
	"context"
	"strings"
	"time"

	"pannpos/internal/core/apperror"
	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

// Product represents a sellable catalog item.
//
// Note there is no aggregate stock field: stock truth lives in the batch
// ledger and is computed on read as the sum over the product's batches.
type Product struct {
	ID id.ID `db:"id" json:"id"`

	// SKU is the stock-keeping unit code (unique among live products)
	SKU string `db:"sku" json:"sku"`

	Name string `db:"name" json:"name"`

	// Category placement; Subcategory is what promotions match against
	CategoryID    id.ID `db:"category_id" json:"categoryId"`
	SubcategoryID id.ID `db:"subcategory_id" json:"subcategoryId"`

	CostPrice types.Money `db:"cost_price" json:"costPrice"`
	SellPrice types.Money `db:"sell_price" json:"sellPrice"`

	// LowStockThreshold drives post-sale stock warnings
	LowStockThreshold types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold"`

	// DeletionMark indicates a retired product (never hard-deleted)
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewProduct creates a product with generated ID and timestamps.
func NewProduct(sku, name string, categoryID, subcategoryID id.ID) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:            id.New(),
		SKU:           strings.ToUpper(strings.TrimSpace(sku)),
		Name:          strings.TrimSpace(name),
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Touch updates the timestamp and bumps the optimistic lock version.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}

	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}

	if id.IsNil(p.SubcategoryID) {
		return apperror.NewValidation("subcategory is required").
			WithDetail("field", "subcategoryId")
	}

	if p.SellPrice.IsNegative() || p.CostPrice.IsNegative() {
		return apperror.NewValidation("prices cannot be negative").
			WithDetail("field", "sellPrice")
	}

	if p.LowStockThreshold.IsNegative() {
		return apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}

	return nil
}
