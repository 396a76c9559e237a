// Package checkout hosts the cart calculation pipeline: an ordered set of
// processors whose collect phases all run before any process phase, once per
// pass, per cart, sequentially.
package checkout

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/alengo/customer-discount/internal/checkout/cart"
	"github.com/alengo/customer-discount/internal/checkout/pricing"
)

// Collector is the collect-phase hook. Collectors populate the pass data with
// everything later process phases need; they must not mutate the cart.
type Collector interface {
	Collect(data *cart.PassData, original *cart.Cart, pctx *pricing.Context, behavior cart.Behavior)
}

// Processor is the process-phase hook. Processors may mutate the cart being
// calculated. Returned errors abort the pass.
type Processor interface {
	Process(data *cart.PassData, original *cart.Cart, toCalculate *cart.Cart, pctx *pricing.Context, behavior cart.Behavior) error
}

// Calculator runs one synchronous calculation pass over a cart. Participants
// run in registration order; the delivery-dependent discount processor must
// therefore be registered after anything it collects from.
type Calculator struct {
	collectors []Collector
	processors []Processor
}

// NewCalculator returns an empty pipeline.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Register adds a pipeline participant. Participants may implement either or
// both hooks.
func (c *Calculator) Register(participant any) {
	if col, ok := participant.(Collector); ok {
		c.collectors = append(c.collectors, col)
	}
	if proc, ok := participant.(Processor); ok {
		c.processors = append(c.processors, proc)
	}
}

// Calculate executes one pass: all collect phases, then all process phases,
// recomputing the aggregate totals after every mutation so each processor
// sees the evolving cart total. The original cart is left untouched; the
// returned cart is the calculated snapshot.
func (c *Calculator) Calculate(original *cart.Cart, pctx *pricing.Context, behavior cart.Behavior) (*cart.Cart, error) {
	data := &cart.PassData{}

	for _, col := range c.collectors {
		col.Collect(data, original, pctx, behavior)
	}

	toCalculate := &cart.Cart{
		Token:      original.Token,
		LineItems:  append([]*cart.LineItem(nil), original.LineItems...),
		Deliveries: original.Deliveries,
	}
	recalculateAmounts(toCalculate)

	for _, proc := range c.processors {
		if err := proc.Process(data, original, toCalculate, pctx, behavior); err != nil {
			return nil, errors.Wrap(err, "process cart")
		}
		recalculateAmounts(toCalculate)
	}

	return toCalculate, nil
}

// recalculateAmounts derives the cart totals from the calculated prices of
// its line items. Deliveries are kept out of the line item totals; shipping
// is reported separately through the pass data.
func recalculateAmounts(c *cart.Cart) {
	gross := decimal.Zero
	taxTotal := decimal.Zero
	byRate := make(map[string]*pricing.CalculatedTax)
	var rates []string

	for _, item := range c.LineItems {
		if item.Price == nil {
			continue
		}
		gross = gross.Add(item.Price.TotalPrice)
		for _, tax := range item.Price.CalculatedTaxes {
			key := tax.TaxRate.String()
			agg, ok := byRate[key]
			if !ok {
				agg = &pricing.CalculatedTax{TaxRate: tax.TaxRate}
				byRate[key] = agg
				rates = append(rates, key)
			}
			agg.Tax = agg.Tax.Add(tax.Tax)
			agg.Price = agg.Price.Add(tax.Price)
		}
	}

	taxes := make([]pricing.CalculatedTax, 0, len(rates))
	for _, key := range rates {
		taxes = append(taxes, *byRate[key])
		taxTotal = taxTotal.Add(byRate[key].Tax)
	}

	c.Price = cart.CartPrice{
		TotalPrice:      gross,
		NetPrice:        gross.Sub(taxTotal),
		CalculatedTaxes: taxes,
	}
}
