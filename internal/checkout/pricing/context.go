package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/alengo/customer-discount/internal/customer"
)

// Context carries the sales-channel state one price calculation pass runs
// under: currency rounding rules, tax configuration, and the logged-in
// customer (nil for guest sessions).
type Context struct {
	CurrencyISO string
	TaxState    TaxState
	// TaxRate is the channel's default tax rate in percent.
	TaxRate  decimal.Decimal
	Rounding RoundingConfig
	Customer *customer.Customer
}
