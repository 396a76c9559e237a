// Package customfields provisions the customer custom-field schema the
// discount entitlement is stored under. Plain CRUD glue; the checkout core
// only ever sees the decoded entitlement.
package customfields

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested field set does not exist.
var ErrNotFound = errors.New("custom field set not found")

// Field value types supported by the platform's custom-field schema.
const (
	TypeText  = "text"
	TypeFloat = "float"
	TypeDate  = "date"
)

// Field describes one custom field within a set.
type Field struct {
	Name     string
	Type     string
	Labels   map[string]string
	Position int
}

// FieldSet groups fields and can be related to platform entities.
type FieldSet struct {
	Name   string
	Labels map[string]string
	Fields []Field
}

// Repository defines the schema storage operations the installer needs.
type Repository interface {
	FindSetID(ctx context.Context, name string) (string, error)
	UpsertSet(ctx context.Context, set FieldSet) (string, error)
	FieldExists(ctx context.Context, name string) (bool, error)
	AddFields(ctx context.Context, setID string, fields []Field) error
	RelationExists(ctx context.Context, setID, entity string) (bool, error)
	AddRelation(ctx context.Context, setID, entity string) error
	DeleteSet(ctx context.Context, setID string) error
}
