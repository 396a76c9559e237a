// Package delivery resolves a cart's deliveries and their shipping costs for
// one calculation pass.
package delivery

import (
	"github.com/shopspring/decimal"

	"github.com/alengo/customer-discount/internal/checkout/cart"
	"github.com/alengo/customer-discount/internal/checkout/pricing"
)

// Processor populates the pass data with the cart's deliveries. It runs in
// the collect phase, before any processor that reads shipping costs.
type Processor struct{}

// NewProcessor returns a delivery processor.
func NewProcessor() *Processor {
	return &Processor{}
}

// Collect records the cart's deliveries into the pass data.
func (p *Processor) Collect(data *cart.PassData, original *cart.Cart, _ *pricing.Context, _ cart.Behavior) {
	data.Deliveries = original.Deliveries
}

// ShippingCosts returns the tax-inclusive shipping total of the first
// delivery: its total price plus its first calculated tax. Zero when the
// cart has no deliveries.
func ShippingCosts(deliveries cart.DeliveryCollection) decimal.Decimal {
	first := deliveries.First()
	if first == nil || first.ShippingCosts == nil {
		return decimal.Zero
	}

	costs := first.ShippingCosts.TotalPrice
	if len(first.ShippingCosts.CalculatedTaxes) > 0 {
		costs = costs.Add(first.ShippingCosts.CalculatedTaxes[0].Tax)
	}
	return costs
}
