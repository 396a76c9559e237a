// Package pricing models the platform's price calculation primitives: price
// definitions, calculated prices with tax breakdown, and the absolute price
// calculator used for surcharges and discounts.
package pricing

import (
	"github.com/shopspring/decimal"
)

// TaxState describes how prices in a calculation context are expressed.
type TaxState string

const (
	// TaxStateGross means prices include tax.
	TaxStateGross TaxState = "gross"
	// TaxStateNet means prices exclude tax.
	TaxStateNet TaxState = "net"
	// TaxStateFree means no tax applies.
	TaxStateFree TaxState = "tax-free"
)

// RoundingConfig holds the currency-specific cash rounding rules applied to
// every calculated price.
type RoundingConfig struct {
	// Decimals is the number of decimal places prices are rounded to.
	Decimals int
	// Interval is the smallest representable cash unit, e.g. 0.01 or 0.05.
	Interval decimal.Decimal
}

// DefaultRounding returns the standard two-decimal, one-cent rounding used
// when a currency does not configure anything else.
func DefaultRounding() RoundingConfig {
	return RoundingConfig{Decimals: 2, Interval: decimal.New(1, -2)}
}

// AbsolutePriceDefinition describes a fixed price value together with the
// rounding rules it was defined under. It is attached to synthetic line items
// so the platform can recalculate them on later passes.
type AbsolutePriceDefinition struct {
	Price    decimal.Decimal
	Rounding RoundingConfig
}

// CalculatedTax is one tax portion of a calculated price.
type CalculatedTax struct {
	TaxRate decimal.Decimal
	Tax     decimal.Decimal
	Price   decimal.Decimal
}

// CalculatedPrice is a tax-resolved price as produced by a calculator.
type CalculatedPrice struct {
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	Quantity        int
	CalculatedTaxes []CalculatedTax
}
