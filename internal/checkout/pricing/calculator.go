package pricing

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidRounding is returned when a context carries an unusable rounding
// configuration. Calculation faults are never swallowed by callers; a broken
// price configuration aborts the whole cart recalculation.
var ErrInvalidRounding = errors.New("invalid rounding configuration")

var hundred = decimal.NewFromInt(100)

// AbsolutePriceCalculator turns a fixed price value into a calculated price
// whose tax breakdown is consistent with the rest of the cart. It is used for
// synthetic line items such as discounts and surcharges, where the value may
// be negative.
type AbsolutePriceCalculator struct{}

// NewAbsolutePriceCalculator returns a ready-to-use calculator.
func NewAbsolutePriceCalculator() *AbsolutePriceCalculator {
	return &AbsolutePriceCalculator{}
}

// Calculate produces the calculated price for value under the given context.
// It fails when the context's rounding configuration is invalid.
func (c *AbsolutePriceCalculator) Calculate(value decimal.Decimal, pctx *Context) (*CalculatedPrice, error) {
	rounded, err := Round(value, pctx.Rounding)
	if err != nil {
		return nil, err
	}

	price := &CalculatedPrice{
		UnitPrice:  rounded,
		TotalPrice: rounded,
		Quantity:   1,
	}

	if pctx.TaxState == TaxStateFree || pctx.TaxRate.IsZero() {
		return price, nil
	}

	// Gross state: the value includes tax, so the tax portion is extracted.
	// Net state: tax is charged on top of the value.
	var tax decimal.Decimal
	if pctx.TaxState == TaxStateNet {
		tax = rounded.Mul(pctx.TaxRate).Div(hundred)
	} else {
		tax = rounded.Mul(pctx.TaxRate).Div(hundred.Add(pctx.TaxRate))
	}
	tax = tax.Round(int32(pctx.Rounding.Decimals))

	price.CalculatedTaxes = []CalculatedTax{{
		TaxRate: pctx.TaxRate,
		Tax:     tax,
		Price:   rounded,
	}}

	return price, nil
}

// Round applies the currency rounding rules to value.
func Round(value decimal.Decimal, cfg RoundingConfig) (decimal.Decimal, error) {
	if cfg.Decimals < 0 || cfg.Interval.IsNegative() {
		return decimal.Zero, errors.Wrapf(ErrInvalidRounding, "decimals=%d interval=%s", cfg.Decimals, cfg.Interval)
	}

	rounded := value.Round(int32(cfg.Decimals))
	if cfg.Interval.IsZero() {
		return rounded, nil
	}

	// Round to the nearest multiple of the cash interval.
	return rounded.Div(cfg.Interval).Round(0).Mul(cfg.Interval), nil
}
