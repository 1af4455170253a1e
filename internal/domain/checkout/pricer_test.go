package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pannpos/internal/core/id"
	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/product"
	"pannpos/internal/domain/catalogs/promotion"
)

func pricedLine(t *testing.T, sellPrice string, units int64, subcategoryID id.ID) resolvedLine {
	t.Helper()
	p := product.NewProduct("SKU", "Item", id.New(), subcategoryID)
	p.SellPrice = types.MustMoney(sellPrice)
	return resolvedLine{
		LineItem: LineItem{
			ProductID: p.ID,
			Quantity:  types.NewQuantityFromUnits(units),
			UnitPrice: p.SellPrice,
		},
		Product: p,
	}
}

func connectionFor(promo *promotion.Promotion, subcategoryIDs ...id.ID) *Connection {
	affected := make(map[id.ID]struct{}, len(subcategoryIDs))
	for _, sid := range subcategoryIDs {
		affected[sid] = struct{}{}
	}
	return &Connection{Promotion: promo, AffectedSubcategories: affected}
}

func TestPrice_NoPromotionIsPassThrough(t *testing.T) {
	pricer := NewPricer()
	lines := []resolvedLine{
		pricedLine(t, "1.50", 2, id.New()),
		pricedLine(t, "1.20", 3, id.New()),
	}

	pricing := pricer.Price(lines, nil)

	require.Len(t, pricing.Lines, 2)
	assert.True(t, pricing.GrossTotal.Equal(types.MustMoney("6.60")))
	assert.True(t, pricing.TotalDiscount.IsZero())
	assert.True(t, pricing.NetTotal.Equal(types.MustMoney("6.60")))
	for _, line := range pricing.Lines {
		assert.True(t, line.Discount.IsZero())
		assert.True(t, line.Net.Equal(line.Gross))
	}
}

func TestPrice_PercentageDiscount(t *testing.T) {
	pricer := NewPricer()
	matched := id.New()
	lines := []resolvedLine{pricedLine(t, "50.00", 1, matched)}

	promo := promotion.NewPromotion("deal", promotion.DiscountPercentage, types.MustMoney("20"))
	pricing := pricer.Price(lines, connectionFor(promo, matched))

	assert.True(t, pricing.Lines[0].Discount.Equal(types.MustMoney("10.00")), "discount %s", pricing.Lines[0].Discount)
	assert.True(t, pricing.Lines[0].Net.Equal(types.MustMoney("40.00")))
	assert.True(t, pricing.NetTotal.Equal(types.MustMoney("40.00")))
}

func TestPrice_FixedDiscountCappedAtLineGross(t *testing.T) {
	pricer := NewPricer()
	matched := id.New()
	lines := []resolvedLine{pricedLine(t, "3.00", 1, matched)}

	promo := promotion.NewPromotion("deal", promotion.DiscountFixed, types.MustMoney("5.00"))
	pricing := pricer.Price(lines, connectionFor(promo, matched))

	// discount never exceeds the line gross: net floors at zero
	assert.True(t, pricing.Lines[0].Discount.Equal(types.MustMoney("3.00")))
	assert.True(t, pricing.Lines[0].Net.IsZero())
}

func TestPrice_FixedDiscountPerMatchedLine(t *testing.T) {
	pricer := NewPricer()
	matched := id.New()
	lines := []resolvedLine{
		pricedLine(t, "10.00", 1, matched),
		pricedLine(t, "10.00", 1, matched),
	}

	promo := promotion.NewPromotion("deal", promotion.DiscountFixed, types.MustMoney("2.00"))
	pricing := pricer.Price(lines, connectionFor(promo, matched))

	// each matched line independently, never pooled across the cart
	assert.True(t, pricing.TotalDiscount.Equal(types.MustMoney("4.00")))
	assert.True(t, pricing.NetTotal.Equal(types.MustMoney("16.00")))
}

func TestPrice_UnmatchedSubcategoryPaysFullPrice(t *testing.T) {
	pricer := NewPricer()
	matched := id.New()
	lines := []resolvedLine{
		pricedLine(t, "4.00", 1, matched),
		pricedLine(t, "6.00", 1, id.New()),
	}

	promo := promotion.NewPromotion("deal", promotion.DiscountPercentage, types.MustMoney("50"))
	pricing := pricer.Price(lines, connectionFor(promo, matched))

	assert.True(t, pricing.Lines[0].Discount.Equal(types.MustMoney("2.00")))
	assert.True(t, pricing.Lines[1].Discount.IsZero())
	assert.True(t, pricing.NetTotal.Equal(types.MustMoney("8.00")))
}

func TestPrice_FractionalQuantityRounding(t *testing.T) {
	pricer := NewPricer()
	line := pricedLine(t, "1.99", 1, id.New())
	line.Quantity = types.NewQuantityFromFloat64(1.333)

	pricing := pricer.Price([]resolvedLine{line}, nil)

	// 1.99 * 1.333 = 2.65267 -> 2.65
	assert.True(t, pricing.Lines[0].Gross.Equal(types.MustMoney("2.65")), "gross %s", pricing.Lines[0].Gross)
}

func TestPrice_EmptyCart(t *testing.T) {
	pricing := NewPricer().Price(nil, nil)
	assert.Empty(t, pricing.Lines)
	assert.True(t, pricing.GrossTotal.IsZero())
	assert.True(t, pricing.NetTotal.IsZero())
}
