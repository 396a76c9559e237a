// Package cart models one price-calculation pass's view of a shopping cart:
// the ordered line items, the aggregate totals derived from them, and the
// deliveries attached to the cart.
//
// A cart snapshot is ephemeral. The platform rebuilds it on every
// recalculation; only line items survive between passes.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/alengo/customer-discount/internal/checkout/pricing"
)

// Line item types known to the checkout pipeline.
const (
	TypeProduct         = "product"
	TypeDelivery        = "delivery"
	TypeSpecialDiscount = "special_discount"
)

// LineItem is one unit within the cart: a purchasable product, a shipping
// position, or a synthetic discount.
type LineItem struct {
	ID          string
	Type        string
	Label       string
	Description string
	Quantity    int

	// Good marks purchasable products. Stackable items may appear with a
	// quantity greater than one; Removable items can be deleted by the
	// customer in the storefront.
	Good      bool
	Stackable bool
	Removable bool

	PriceDefinition *pricing.AbsolutePriceDefinition
	Price           *pricing.CalculatedPrice
}

// CartPrice holds the aggregate totals of a cart, derived from the line items
// by the pricing engine. The cart never owns these numbers.
type CartPrice struct {
	NetPrice        decimal.Decimal
	TotalPrice      decimal.Decimal
	CalculatedTaxes []pricing.CalculatedTax
}

// Cart is the full set of line items and totals considered during one pass.
type Cart struct {
	Token      string
	LineItems  []*LineItem
	Price      CartPrice
	Deliveries DeliveryCollection
}

// Add appends a line item to the cart.
func (c *Cart) Add(item *LineItem) {
	c.LineItems = append(c.LineItems, item)
}

// LineItemsOfType returns all line items with the given type tag, preserving
// cart order.
func (c *Cart) LineItemsOfType(typ string) []*LineItem {
	var items []*LineItem
	for _, item := range c.LineItems {
		if item.Type == typ {
			items = append(items, item)
		}
	}
	return items
}

// Has reports whether a line item with the given type and label exists. The
// (type, label) pair is the durable identity used to detect an already
// applied discount across passes; item IDs are fresh per creation.
func (c *Cart) Has(typ, label string) bool {
	for _, item := range c.LineItems {
		if item.Type == typ && item.Label == label {
			return true
		}
	}
	return false
}
