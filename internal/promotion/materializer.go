package promotion

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/customer"
)

// Materializer turns a customer's discount entitlement into a promotion
// record whenever the cart changes. Creation is idempotent: the promotion
// name is derived deterministically from the customer and expiration date,
// and an existing record short-circuits.
type Materializer struct {
	repo Repository
	lg   *zap.Logger
	now  func() time.Time
}

// NewMaterializer creates a Materializer backed by the given repository.
func NewMaterializer(repo Repository, lg *zap.Logger) *Materializer {
	return &Materializer{repo: repo, lg: lg, now: time.Now}
}

// OnCartChanged ensures a promotion exists for the customer's entitlement.
// It returns the promotion, or nil when the customer has no materializable
// entitlement (no amount, no expiration date, or already expired).
func (m *Materializer) OnCartChanged(ctx context.Context, cust *customer.Customer) (*Promotion, error) {
	if cust == nil {
		return nil, nil
	}
	ent := cust.Entitlement
	// A promotion needs a fixed expiry; entitlements without one stay
	// cart-calculation only.
	if ent == nil || !ent.Amount.IsPositive() || ent.ExpirationDate == nil {
		return nil, nil
	}
	if m.now().After(*ent.ExpirationDate) {
		return nil, nil
	}

	name := CodeFor(cust, *ent.ExpirationDate)

	existing, err := m.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "find promotion")
	}
	if existing != nil {
		return existing, nil
	}

	validUntil := *ent.ExpirationDate
	promo := &Promotion{
		// Deterministic ID keeps creation idempotent even when two passes
		// race on the same customer.
		ID:                        uuid.NewMD5(uuid.NameSpaceURL, []byte(name)).String(),
		Name:                      name,
		Code:                      name,
		Active:                    true,
		ValidUntil:                &validUntil,
		UseCodes:                  true,
		MaxRedemptionsGlobal:      1,
		MaxRedemptionsPerCustomer: 1,
		Discounts: []Discount{{
			Type:                  DiscountTypeAbsolute,
			Scope:                 ScopeCart,
			Value:                 ent.Amount,
			ConsiderAdvancedRules: false,
		}},
	}

	if err := m.repo.Create(ctx, promo); err != nil {
		return nil, errors.Wrap(err, "create promotion")
	}

	m.lg.Info("Promotion materialized",
		zap.String("customer_id", cust.ID),
		zap.String("code", promo.Code),
		zap.Time("valid_until", validUntil),
	)

	return promo, nil
}

// CodeFor derives the promotion name and code for a customer entitlement:
// customer number, last name, first name, and expiration date, upper-cased.
func CodeFor(cust *customer.Customer, expires time.Time) string {
	parts := []string{cust.Number, cust.LastName, cust.FirstName, expires.Format("2006-01-02")}
	return strings.ToUpper(strings.Join(parts, "-"))
}
