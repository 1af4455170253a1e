package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
)

func TestNewProduct_NormalizesInput(t *testing.T) {
	p := NewProduct("  milk-1l ", "  Whole Milk 1L ", id.New(), id.New())

	assert.Equal(t, "MILK-1L", p.SKU)
	assert.Equal(t, "Whole Milk 1L", p.Name)
	assert.Equal(t, 1, p.Version)
	assert.False(t, p.DeletionMark)
}

func TestProductValidate(t *testing.T) {
	ctx := context.Background()

	valid := func() *Product {
		return NewProduct("SKU-1", "Widget", id.New(), id.New())
	}
	require.NoError(t, valid().Validate(ctx))

	tests := []struct {
		name string
		mod  func(p *Product)
	}{
		{"blank sku", func(p *Product) { p.SKU = " " }},
		{"blank name", func(p *Product) { p.Name = "" }},
		{"nil category", func(p *Product) { p.CategoryID = id.Nil() }},
		{"nil subcategory", func(p *Product) { p.SubcategoryID = id.Nil() }},
		{"negative sell price", func(p *Product) { p.SellPrice = types.MustMoney("-1") }},
		{"negative cost price", func(p *Product) { p.CostPrice = types.MustMoney("-0.01") }},
		{"negative threshold", func(p *Product) { p.LowStockThreshold = types.NewQuantityFromUnits(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mod(p)
			assert.Error(t, p.Validate(ctx))
		})
	}
}

func TestTouch(t *testing.T) {
	p := NewProduct("SKU-1", "Widget", id.New(), id.New())
	p.Touch()
	assert.Equal(t, 2, p.Version)
}
