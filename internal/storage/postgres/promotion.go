package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alengo/customer-discount/internal/promotion"
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// FindByName looks up a promotion by its derived name. Returns
// promotion.ErrNotFound when no record exists.
func (r *PromotionRepository) FindByName(ctx context.Context, name string) (*promotion.Promotion, error) {
	const q = `
		SELECT id, name, code, active, valid_until, use_codes,
		       max_redemptions_global, max_redemptions_per_customer,
		       discount_type, discount_scope, discount_value, consider_advanced_rules
		FROM promotions
		WHERE name = $1`

	var (
		p promotion.Promotion
		d promotion.Discount
	)
	err := r.pool.QueryRow(ctx, q, name).Scan(
		&p.ID, &p.Name, &p.Code, &p.Active, &p.ValidUntil, &p.UseCodes,
		&p.MaxRedemptionsGlobal, &p.MaxRedemptionsPerCustomer,
		&d.Type, &d.Scope, &d.Value, &d.ConsiderAdvancedRules,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, errors.Wrapf(err, "find promotion %q", name)
	}

	p.Discounts = []promotion.Discount{d}
	return &p, nil
}

// Create persists a promotion. A concurrent insert with the same name wins
// silently; creation is idempotent by design.
func (r *PromotionRepository) Create(ctx context.Context, p *promotion.Promotion) error {
	const q = `
		INSERT INTO promotions (
			id, name, code, active, valid_until, use_codes,
			max_redemptions_global, max_redemptions_per_customer,
			discount_type, discount_scope, discount_value, consider_advanced_rules
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (name) DO NOTHING`

	if len(p.Discounts) != 1 {
		return errors.Errorf("promotion %q must carry exactly one discount, got %d", p.Name, len(p.Discounts))
	}
	d := p.Discounts[0]

	_, err := r.pool.Exec(ctx, q,
		p.ID, p.Name, p.Code, p.Active, p.ValidUntil, p.UseCodes,
		p.MaxRedemptionsGlobal, p.MaxRedemptionsPerCustomer,
		d.Type, d.Scope, d.Value, d.ConsiderAdvancedRules,
	)
	if err != nil {
		return errors.Wrapf(err, "create promotion %q", p.Name)
	}
	return nil
}
