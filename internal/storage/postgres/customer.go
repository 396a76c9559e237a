package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/alengo/customer-discount/internal/customer"
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
// The entitlement is decoded from the custom_fields JSONB bag at this
// boundary; callers only ever see the typed structure.
type CustomerRepository struct {
	pool *pgxpool.Pool
	lg   *zap.Logger
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool, lg *zap.Logger) *CustomerRepository {
	return &CustomerRepository{pool: pool, lg: lg}
}

// GetByID loads a customer with its decoded entitlement. A malformed
// entitlement in the bag is treated as absent, not as a failure: a broken
// admin entry must never break checkout.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customer.Customer, error) {
	const q = `
		SELECT id, customer_number, first_name, last_name, email, custom_fields
		FROM customers
		WHERE id = $1`

	var (
		cust     customer.Customer
		rawAttrs []byte
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&cust.ID, &cust.Number, &cust.FirstName, &cust.LastName, &cust.Email, &rawAttrs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get customer %s", id)
	}

	var attrs map[string]any
	if len(rawAttrs) > 0 {
		if err := json.Unmarshal(rawAttrs, &attrs); err != nil {
			return nil, errors.Wrapf(err, "decode custom fields for customer %s", id)
		}
	}

	ent, err := customer.EntitlementFromAttributes(attrs)
	if err != nil {
		r.lg.Warn("Ignoring malformed entitlement",
			zap.String("customer_id", id),
			zap.Error(err),
		)
		ent = nil
	}
	cust.Entitlement = ent

	return &cust, nil
}

// UpdateEntitlementAmount overwrites the remaining balance inside the bag.
// The single-statement jsonb_set relies on PostgreSQL's row-level atomicity.
func (r *CustomerRepository) UpdateEntitlementAmount(ctx context.Context, customerID string, amount decimal.Decimal) error {
	const q = `
		UPDATE customers
		SET custom_fields = jsonb_set(
			COALESCE(custom_fields, '{}'::jsonb),
			'{customerDiscount_amount}',
			to_jsonb($2::numeric)
		),
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, q, customerID, amount)
	if err != nil {
		return errors.Wrapf(err, "update entitlement for customer %s", customerID)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}
