package customfields

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/alengo/customer-discount/internal/customer"
)

// SetName is the name of the field set carrying the discount entitlement.
const SetName = "customerDiscount"

// relatedEntity is the platform entity the field set is attached to.
const relatedEntity = "customer"

// DefaultFieldSet is the schema installed for the customer discount.
func DefaultFieldSet() FieldSet {
	return FieldSet{
		Name: SetName,
		Labels: map[string]string{
			"en-GB": "Customer discount settings",
			"de-DE": "Einstellungen für Kundenrabatte",
		},
		Fields: []Field{
			{
				Name:     customer.AttrName,
				Type:     TypeText,
				Labels:   map[string]string{"en-GB": "Discount name", "de-DE": "Rabattname"},
				Position: 0,
			},
			{
				Name:     customer.AttrAmount,
				Type:     TypeFloat,
				Labels:   map[string]string{"en-GB": "Discount amount", "de-DE": "Rabattbetrag"},
				Position: 1,
			},
			{
				Name:     customer.AttrExpirationDate,
				Type:     TypeDate,
				Labels:   map[string]string{"en-GB": "Expiration date", "de-DE": "Ablaufdatum"},
				Position: 2,
			},
		},
	}
}

// Installer provisions the entitlement field set. All operations are
// idempotent and safe to rerun on every deployment.
type Installer struct {
	repo Repository
}

// NewInstaller creates an Installer backed by the given repository.
func NewInstaller(repo Repository) *Installer {
	return &Installer{repo: repo}
}

// Install creates the field set, or synchronizes missing fields into an
// already existing set.
func (i *Installer) Install(ctx context.Context) error {
	set := DefaultFieldSet()

	setID, err := i.repo.FindSetID(ctx, set.Name)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return errors.Wrap(err, "find field set")
		}
		if _, err := i.repo.UpsertSet(ctx, set); err != nil {
			return errors.Wrap(err, "create field set")
		}
		return nil
	}

	var missing []Field
	for _, f := range set.Fields {
		exists, err := i.repo.FieldExists(ctx, f.Name)
		if err != nil {
			return errors.Wrapf(err, "check field %s", f.Name)
		}
		if !exists {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if err := i.repo.AddFields(ctx, setID, missing); err != nil {
		return errors.Wrap(err, "add missing fields")
	}
	return nil
}

// AddRelations attaches the field set to the customer entity.
func (i *Installer) AddRelations(ctx context.Context) error {
	setID, err := i.repo.FindSetID(ctx, SetName)
	if err != nil {
		return errors.Wrap(err, "find field set")
	}

	exists, err := i.repo.RelationExists(ctx, setID, relatedEntity)
	if err != nil {
		return errors.Wrap(err, "check relation")
	}
	if exists {
		return nil
	}

	if err := i.repo.AddRelation(ctx, setID, relatedEntity); err != nil {
		return errors.Wrap(err, "add relation")
	}
	return nil
}

// Uninstall removes the field set and its relations. Field values stored on
// customers are left untouched.
func (i *Installer) Uninstall(ctx context.Context) error {
	setID, err := i.repo.FindSetID(ctx, SetName)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "find field set")
	}

	if err := i.repo.DeleteSet(ctx, setID); err != nil {
		return errors.Wrap(err, "delete field set")
	}
	return nil
}
