package customer

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Attribute keys under which the discount entitlement is stored in the
// customer's custom-field bag.
const (
	AttrName           = "customerDiscount_name"
	AttrAmount         = "customerDiscount_amount"
	AttrExpirationDate = "customerDiscount_expirationDate"
)

// Entitlement is a customer's discount configuration. Amount is the remaining
// balance, decremented after each order that redeemed the discount.
type Entitlement struct {
	Name   string
	Amount decimal.Decimal
	// ExpirationDate is the last calendar day the discount may be applied,
	// inclusive. Nil means no date was configured; eligibility then falls back
	// to a short grace window decided by the calculator.
	ExpirationDate *time.Time
}

// Inert reports whether the entitlement can never produce a discount:
// missing name or non-positive balance.
func (e *Entitlement) Inert() bool {
	return e == nil || e.Name == "" || !e.Amount.IsPositive()
}

// EntitlementFromAttributes decodes the loosely-typed custom-field bag into a
// typed entitlement. It returns (nil, nil) when no entitlement is configured
// (name or amount absent) and an error when present values cannot be coerced.
func EntitlementFromAttributes(attrs map[string]any) (*Entitlement, error) {
	if len(attrs) == 0 {
		return nil, nil
	}

	name, _ := attrs[AttrName].(string)
	rawAmount, hasAmount := attrs[AttrAmount]
	if name == "" || !hasAmount || rawAmount == nil {
		return nil, nil
	}

	amount, err := coerceAmount(rawAmount)
	if err != nil {
		return nil, errors.Wrap(err, "decode amount")
	}

	ent := &Entitlement{Name: name, Amount: amount}

	if raw, ok := attrs[AttrExpirationDate]; ok && raw != nil {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expiration date has unexpected type %T", raw)
		}
		expires, err := parseExpirationDate(s)
		if err != nil {
			return nil, errors.Wrap(err, "decode expiration date")
		}
		ent.ExpirationDate = &expires
	}

	return ent, nil
}

func coerceAmount(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case string:
		return decimal.NewFromString(v)
	case json.Number:
		return decimal.NewFromString(v.String())
	default:
		return decimal.Zero, errors.Errorf("unexpected type %T", raw)
	}
}

// parseExpirationDate accepts the date formats the admin UI has historically
// written into the bag: a plain date or a full RFC 3339 timestamp.
func parseExpirationDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("unsupported date format %q", s)
}
