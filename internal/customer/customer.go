// Package customer holds the customer aggregate and the typed discount
// entitlement decoded from the platform's custom-field attribute bag.
package customer

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// Customer is the checkout-side view of a customer record. The entitlement is
// resolved from the custom-field bag once at the storage boundary, so callers
// never deal with raw attribute lookups.
type Customer struct {
	ID          string
	Number      string
	FirstName   string
	LastName    string
	Email       string
	Entitlement *Entitlement
}

// Repository defines the customer persistence operations the checkout side
// needs: entitlement lookup and post-order balance settlement.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Customer, error)
	// UpdateEntitlementAmount overwrites the remaining discount balance in the
	// customer's attribute bag. The single-record update relies on the
	// underlying store's own atomicity.
	UpdateEntitlementAmount(ctx context.Context, customerID string, amount decimal.Decimal) error
}
