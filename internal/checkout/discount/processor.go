// Package discount implements the customer discount cart processor. During
// every price-calculation pass it decides whether the logged-in customer's
// discount entitlement applies, clamps the amount against the cart's worth,
// and injects a synthetic negative line item.
package discount

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alengo/customer-discount/internal/checkout/cart"
	"github.com/alengo/customer-discount/internal/checkout/delivery"
	"github.com/alengo/customer-discount/internal/checkout/pricing"
)

// descriptionDateLayout is the display format for the expiration date
// embedded in the discount line item's description.
const descriptionDateLayout = "02.01.2006"

// Processor implements the collect and process hooks of the cart pipeline.
// Both hooks run once per pass, collect strictly before process.
type Processor struct {
	calculator *pricing.AbsolutePriceCalculator
	deliveries *delivery.Processor
	now        func() time.Time
}

// NewProcessor creates a discount processor using the given price calculator
// and delivery collaborator.
func NewProcessor(calculator *pricing.AbsolutePriceCalculator, deliveries *delivery.Processor) *Processor {
	return &Processor{
		calculator: calculator,
		deliveries: deliveries,
		now:        time.Now,
	}
}

// Collect resolves the cart's deliveries via the delivery collaborator and
// records the tax-inclusive shipping cost into the pass data. Process reads
// that value later in the same pass; deliveries must therefore be collected
// before any discount calculation happens.
func (p *Processor) Collect(data *cart.PassData, original *cart.Cart, pctx *pricing.Context, behavior cart.Behavior) {
	p.deliveries.Collect(data, original, pctx, behavior)
	data.ShippingCosts = delivery.ShippingCosts(data.Deliveries)
}

// Process applies the customer discount to toCalculate. Any failed
// eligibility check is a silent no-op; only pricing-engine faults are
// returned, unwrapped business rules never are.
func (p *Processor) Process(data *cart.PassData, _ *cart.Cart, toCalculate *cart.Cart, pctx *pricing.Context, _ cart.Behavior) error {
	// Decorative or shipping-only carts never qualify.
	if len(toCalculate.LineItemsOfType(cart.TypeProduct)) == 0 {
		return nil
	}

	if pctx.Customer == nil {
		return nil
	}
	ent := pctx.Customer.Entitlement
	if ent.Inert() {
		return nil
	}

	deadline := deadline(ent.ExpirationDate, p.now())
	if p.now().After(deadline) {
		return nil
	}

	// Sole idempotence guard: the (type, label) pair is the durable identity
	// of the discount across recalculation passes.
	if toCalculate.Has(cart.TypeSpecialDiscount, ent.Name) {
		return nil
	}

	// Shipping costs already include their tax; added exactly once.
	cartTotal := toCalculate.Price.TotalPrice.Add(data.ShippingCosts)

	// The discount may never exceed what the cart is worth.
	amount := decimal.Min(ent.Amount, cartTotal)
	priceValue := amount.Neg()

	definition := &pricing.AbsolutePriceDefinition{
		Price:    priceValue,
		Rounding: pctx.Rounding,
	}

	calculated, err := p.calculator.Calculate(priceValue, pctx)
	if err != nil {
		return errors.Wrap(err, "calculate discount price")
	}

	toCalculate.Add(&cart.LineItem{
		// Fresh per creation; only has to avoid collisions within the pass.
		ID:          uuid.New().String(),
		Type:        cart.TypeSpecialDiscount,
		Label:       ent.Name,
		Description: "Discount valid until " + deadline.Format(descriptionDateLayout),
		Quantity:    1,
		Good:        false,
		Stackable:   false,
		Removable:   false,

		PriceDefinition: definition,
		Price:           calculated,
	})

	return nil
}

// deadline resolves the effective expiration instant. A configured date is
// valid through 23:59:59 of that calendar day. A missing date yields a 24h
// grace window from now rather than "never expires".
func deadline(expires *time.Time, now time.Time) time.Time {
	if expires == nil {
		return now.Add(24 * time.Hour)
	}
	y, m, d := expires.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, expires.Location())
}
