package cart

import (
	"github.com/alengo/customer-discount/internal/checkout/pricing"
)

// Delivery is one shipment of the cart with its calculated shipping costs.
// ShippingCosts.TotalPrice is the net shipping charge; the tax portion lives
// in the attached calculated taxes.
type Delivery struct {
	ShippingMethod string
	ShippingCosts  *pricing.CalculatedPrice
}

// DeliveryCollection is the ordered set of deliveries for a cart.
type DeliveryCollection []*Delivery

// First returns the first delivery or nil.
func (d DeliveryCollection) First() *Delivery {
	if len(d) == 0 {
		return nil
	}
	return d[0]
}
