package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/petshop/internal/domain/model"
)

// Pricing derives shipping, tax and grand total from a cart subtotal.
type Pricing struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal
}

// DefaultPricing ships free strictly above 500, charges 50 otherwise and
// applies 18% tax on the subtotal.
func DefaultPricing() Pricing {
	return NewPricing(500, 50, 0.18)
}

// NewPricing builds Pricing from plain amounts.
func NewPricing(threshold, fee, taxRate float64) Pricing {
	return Pricing{
		FreeShippingThreshold: decimal.NewFromFloat(threshold),
		ShippingFee:           decimal.NewFromFloat(fee),
		TaxRate:               decimal.NewFromFloat(taxRate),
	}
}

// Totals are the amounts shown at checkout and stored on the order.
type Totals struct {
	Subtotal float64
	Shipping float64
	Tax      float64
	Total    float64
}

// Quote computes totals for subtotal. Tax and total are rounded to cents.
func (p Pricing) Quote(subtotal float64) Totals {
	sub := decimal.NewFromFloat(subtotal)
	shipping := p.ShippingFee
	if sub.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := sub.Mul(p.TaxRate).Round(2)
	total := sub.Add(shipping).Add(tax).Round(2)

	return Totals{
		Subtotal: sub.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// Snapshot freezes the cart and its totals at the moment checkout begins.
// Later cart changes do not alter an order placed from this snapshot.
type Snapshot struct {
	Lines   []model.CartLine
	Totals  Totals
	TakenAt time.Time
}

// Begin captures lines and their totals.
func Begin(lines []model.CartLine, pricing Pricing, now time.Time) Snapshot {
	frozen := make([]model.CartLine, len(lines))
	copy(frozen, lines)
	return Snapshot{
		Lines:   frozen,
		Totals:  pricing.Quote(model.SumPrice(frozen)),
		TakenAt: now,
	}
}

// ItemCount is the number of units in the snapshot.
func (s Snapshot) ItemCount() int {
	return model.CountItems(s.Lines)
}
