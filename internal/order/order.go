// Package order handles the post-order side of the customer discount: once
// an order is placed, the redeemed discount is subtracted from the customer's
// remaining entitlement balance.
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is the settled view of an order position. Only the type, label
// and total price matter for discount bookkeeping.
type LineItem struct {
	Type       string
	Label      string
	TotalPrice decimal.Decimal
}

// Order is the minimal order projection the settlement needs.
type Order struct {
	ID         string
	CustomerID string
	LineItems  []LineItem
	PlacedAt   time.Time
}
