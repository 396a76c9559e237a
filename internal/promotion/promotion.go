// Package promotion materializes a customer's discount entitlement as a
// redeemable promotion record with a derived code.
package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no promotion with the requested name exists.
var ErrNotFound = errors.New("promotion not found")

// Discount kinds and scopes supported by promotion records.
const (
	DiscountTypeAbsolute = "absolute"
	ScopeCart            = "cart"
)

// Discount is one discount rule attached to a promotion.
type Discount struct {
	Type                  string
	Scope                 string
	Value                 decimal.Decimal
	ConsiderAdvancedRules bool
}

// Promotion is a redeemable promotion record. For customer discounts the name
// doubles as the code and both redemption limits are one.
type Promotion struct {
	ID                        string
	Name                      string
	Code                      string
	Active                    bool
	ValidUntil                *time.Time
	UseCodes                  bool
	MaxRedemptionsGlobal      int
	MaxRedemptionsPerCustomer int
	Discounts                 []Discount
}

// Repository defines promotion persistence.
type Repository interface {
	FindByName(ctx context.Context, name string) (*Promotion, error)
	Create(ctx context.Context, p *Promotion) error
}
