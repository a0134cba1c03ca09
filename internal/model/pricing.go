package model

import "github.com/shopspring/decimal"

// Pricing is the buyer-facing breakdown submitted at checkout.
type Pricing struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// pricingTolerance is one cent.
var pricingTolerance = decimal.New(1, -2)

// Expected returns subtotal - discount + tax + shipping.
func (p Pricing) Expected() decimal.Decimal {
	return decimal.NewFromFloat(p.Subtotal).
		Sub(decimal.NewFromFloat(p.Discount)).
		Add(decimal.NewFromFloat(p.Tax)).
		Add(decimal.NewFromFloat(p.Shipping))
}

// Balanced reports whether Total matches the breakdown within currency rounding.
func (p Pricing) Balanced() bool {
	diff := p.Expected().Sub(decimal.NewFromFloat(p.Total)).Abs()
	return diff.LessThanOrEqual(pricingTolerance)
}

// UnitPrice divides a line total by its quantity, rounded to cents.
// A non-positive quantity yields the total itself.
func UnitPrice(total float64, quantity int) float64 {
	t := decimal.NewFromFloat(total)
	if quantity <= 0 {
		return t.Round(2).InexactFloat64()
	}
	return t.Div(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// Money rounds an amount to cents.
func Money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
