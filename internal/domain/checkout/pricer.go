package checkout

import (
	"pannpos/internal/core/types"
	"pannpos/internal/domain/catalogs/promotion"

	"github.com/shopspring/decimal"
)

// PricedLine is one cart line with its discount breakdown.
type PricedLine struct {
	resolvedLine

	Gross    types.Money
	Discount types.Money
	Net      types.Money
}

// CartPricing is the priced cart.
type CartPricing struct {
	Lines []PricedLine

	GrossTotal    types.Money
	TotalDiscount types.Money
	NetTotal      types.Money
}

// Pricer applies a resolved promotion to cart lines.
//
// Discounts are computed per item, never redistributed across the cart:
// a fixed-amount promotion applied to a multi-item cart discounts each
// matched line independently, capped at that line's gross.
type Pricer struct{}

func NewPricer() *Pricer {
	return &Pricer{}
}

var hundred = decimal.NewFromInt(100)

// Price computes gross, discount and net per line and cart totals.
// A nil connection makes this a pass-through: every line pays full price.
// All amounts are rounded to 2 decimal places.
func (p *Pricer) Price(lines []resolvedLine, conn *Connection) *CartPricing {
	pricing := &CartPricing{
		Lines:         make([]PricedLine, 0, len(lines)),
		GrossTotal:    types.ZeroMoney(),
		TotalDiscount: types.ZeroMoney(),
		NetTotal:      types.ZeroMoney(),
	}

	for _, line := range lines {
		gross := line.UnitPrice.Mul(line.Quantity.Decimal()).Round(2)
		discount := types.ZeroMoney()

		if conn.Applies(line.Product.SubcategoryID) {
			discount = lineDiscount(gross, conn.Promotion)
		}

		net := gross.Sub(discount)

		pricing.Lines = append(pricing.Lines, PricedLine{
			resolvedLine: line,
			Gross:        gross,
			Discount:     discount,
			Net:          net,
		})

		pricing.GrossTotal = pricing.GrossTotal.Add(gross)
		pricing.TotalDiscount = pricing.TotalDiscount.Add(discount)
		pricing.NetTotal = pricing.NetTotal.Add(net)
	}

	return pricing
}

// lineDiscount computes the discount for one matched line.
// Percentage discounts gross * value/100; fixed discounts min(value, gross)
// so a line never nets below zero.
func lineDiscount(gross types.Money, promo *promotion.Promotion) types.Money {
	switch promo.DiscountType {
	case promotion.DiscountPercentage:
		return gross.Mul(promo.DiscountValue).Div(hundred).Round(2)
	case promotion.DiscountFixed:
		if promo.DiscountValue.GreaterThan(gross) {
			return gross
		}
		return promo.DiscountValue.Round(2)
	default:
		return types.ZeroMoney()
	}
}
