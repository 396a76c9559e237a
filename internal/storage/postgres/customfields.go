package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alengo/customer-discount/internal/customfields"
)

var _ customfields.Repository = (*FieldSetRepository)(nil)

// FieldSetRepository implements customfields.Repository backed by PostgreSQL.
type FieldSetRepository struct {
	pool *pgxpool.Pool
}

// NewFieldSetRepository returns a FieldSetRepository that uses the given pool.
func NewFieldSetRepository(pool *pgxpool.Pool) *FieldSetRepository {
	return &FieldSetRepository{pool: pool}
}

// FindSetID returns the ID of the field set with the given name.
func (r *FieldSetRepository) FindSetID(ctx context.Context, name string) (string, error) {
	var id string
	err := r.pool.QueryRow(ctx, `SELECT id FROM custom_field_sets WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", customfields.ErrNotFound
		}
		return "", errors.Wrapf(err, "find field set %q", name)
	}
	return id, nil
}

// UpsertSet creates the field set with all its fields, or updates its config
// when it already exists, and returns the set ID.
func (r *FieldSetRepository) UpsertSet(ctx context.Context, set customfields.FieldSet) (string, error) {
	config, err := json.Marshal(map[string]any{"label": set.Labels})
	if err != nil {
		return "", errors.Wrap(err, "marshal set config")
	}

	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO custom_field_sets (id, name, config)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET config = EXCLUDED.config
		RETURNING id`,
		uuid.New().String(), set.Name, config,
	).Scan(&id)
	if err != nil {
		return "", errors.Wrapf(err, "upsert field set %q", set.Name)
	}

	if err := r.AddFields(ctx, id, set.Fields); err != nil {
		return "", err
	}
	return id, nil
}

// FieldExists reports whether a custom field with the given name exists.
func (r *FieldSetRepository) FieldExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM custom_fields WHERE name = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "check field %q", name)
	}
	return exists, nil
}

// AddFields inserts the given fields into a set, skipping names that are
// already present.
func (r *FieldSetRepository) AddFields(ctx context.Context, setID string, fields []customfields.Field) error {
	for _, f := range fields {
		config, err := json.Marshal(map[string]any{
			"label":               f.Labels,
			"customFieldPosition": f.Position,
		})
		if err != nil {
			return errors.Wrapf(err, "marshal config for field %s", f.Name)
		}

		_, err = r.pool.Exec(ctx, `
			INSERT INTO custom_fields (id, set_id, name, type, config, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (name) DO NOTHING`,
			uuid.New().String(), setID, f.Name, f.Type, config, f.Position,
		)
		if err != nil {
			return errors.Wrapf(err, "insert field %s", f.Name)
		}
	}
	return nil
}

// RelationExists reports whether the set is already related to the entity.
func (r *FieldSetRepository) RelationExists(ctx context.Context, setID, entity string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM custom_field_set_relations
			WHERE set_id = $1 AND entity_name = $2
		)`, setID, entity,
	).Scan(&exists)
	if err != nil {
		return false, errors.Wrapf(err, "check relation %s/%s", setID, entity)
	}
	return exists, nil
}

// AddRelation relates the field set to a platform entity.
func (r *FieldSetRepository) AddRelation(ctx context.Context, setID, entity string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO custom_field_set_relations (id, set_id, entity_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (set_id, entity_name) DO NOTHING`,
		uuid.New().String(), setID, entity,
	)
	if err != nil {
		return errors.Wrapf(err, "add relation %s/%s", setID, entity)
	}
	return nil
}

// DeleteSet removes the field set; fields and relations cascade.
func (r *FieldSetRepository) DeleteSet(ctx context.Context, setID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM custom_field_sets WHERE id = $1`, setID)
	if err != nil {
		return errors.Wrapf(err, "delete field set %s", setID)
	}
	return nil
}
