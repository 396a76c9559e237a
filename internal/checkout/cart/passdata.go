package cart

import (
	"github.com/shopspring/decimal"
)

// PassData carries state between the collect and process phases of a single
// calculation pass. It replaces the platform's stringly-keyed data map with
// typed fields, so producers and consumers agree at compile time.
type PassData struct {
	// Deliveries resolved during the collect phase.
	Deliveries DeliveryCollection
	// ShippingCosts is the tax-inclusive shipping total for this pass.
	ShippingCosts decimal.Decimal
}

// Behavior holds the pipeline flags for one pass.
type Behavior struct {
	// Recalculation is set when the platform replays a persisted cart, e.g.
	// during order conversion.
	Recalculation bool
}
