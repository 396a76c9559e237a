package customfields

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	setID          string
	existingFields map[string]bool
	relations      map[string]bool

	upsertN   int
	upserted  FieldSet
	added     []Field
	relatedTo string
	deletedID string
}

func (m *mockRepo) FindSetID(_ context.Context, _ string) (string, error) {
	if m.setID == "" {
		return "", ErrNotFound
	}
	return m.setID, nil
}

func (m *mockRepo) UpsertSet(_ context.Context, set FieldSet) (string, error) {
	m.upsertN++
	m.upserted = set
	m.setID = "fs-1"
	return m.setID, nil
}

func (m *mockRepo) FieldExists(_ context.Context, name string) (bool, error) {
	return m.existingFields[name], nil
}

func (m *mockRepo) AddFields(_ context.Context, _ string, fields []Field) error {
	m.added = append(m.added, fields...)
	return nil
}

func (m *mockRepo) RelationExists(_ context.Context, _, entity string) (bool, error) {
	return m.relations[entity], nil
}

func (m *mockRepo) AddRelation(_ context.Context, _, entity string) error {
	m.relatedTo = entity
	return nil
}

func (m *mockRepo) DeleteSet(_ context.Context, setID string) error {
	m.deletedID = setID
	return nil
}

func TestInstall_CreatesSetWhenMissing(t *testing.T) {
	repo := &mockRepo{}
	inst := NewInstaller(repo)

	require.NoError(t, inst.Install(context.Background()))

	assert.Equal(t, 1, repo.upsertN)
	assert.Equal(t, SetName, repo.upserted.Name)
	require.Len(t, repo.upserted.Fields, 3)
	assert.Empty(t, repo.added)
}

func TestInstall_SyncsMissingFields(t *testing.T) {
	repo := &mockRepo{
		setID: "fs-1",
		existingFields: map[string]bool{
			"customerDiscount_name":   true,
			"customerDiscount_amount": true,
		},
	}
	inst := NewInstaller(repo)

	require.NoError(t, inst.Install(context.Background()))

	assert.Zero(t, repo.upsertN)
	require.Len(t, repo.added, 1)
	assert.Equal(t, "customerDiscount_expirationDate", repo.added[0].Name)
	assert.Equal(t, TypeDate, repo.added[0].Type)
}

func TestInstall_NoopWhenComplete(t *testing.T) {
	repo := &mockRepo{
		setID: "fs-1",
		existingFields: map[string]bool{
			"customerDiscount_name":           true,
			"customerDiscount_amount":         true,
			"customerDiscount_expirationDate": true,
		},
	}
	inst := NewInstaller(repo)

	require.NoError(t, inst.Install(context.Background()))

	assert.Zero(t, repo.upsertN)
	assert.Empty(t, repo.added)
}

func TestAddRelations(t *testing.T) {
	repo := &mockRepo{setID: "fs-1"}
	inst := NewInstaller(repo)

	require.NoError(t, inst.AddRelations(context.Background()))
	assert.Equal(t, "customer", repo.relatedTo)
}

func TestAddRelations_AlreadyRelated(t *testing.T) {
	repo := &mockRepo{setID: "fs-1", relations: map[string]bool{"customer": true}}
	inst := NewInstaller(repo)

	require.NoError(t, inst.AddRelations(context.Background()))
	assert.Empty(t, repo.relatedTo)
}

func TestUninstall(t *testing.T) {
	repo := &mockRepo{setID: "fs-1"}
	inst := NewInstaller(repo)

	require.NoError(t, inst.Uninstall(context.Background()))
	assert.Equal(t, "fs-1", repo.deletedID)
}

func TestUninstall_NothingInstalled(t *testing.T) {
	repo := &mockRepo{}
	inst := NewInstaller(repo)

	require.NoError(t, inst.Uninstall(context.Background()))
	assert.Empty(t, repo.deletedID)
}

func TestDefaultFieldSet(t *testing.T) {
	set := DefaultFieldSet()

	assert.Equal(t, "customerDiscount", set.Name)
	assert.Contains(t, set.Labels, "en-GB")
	assert.Contains(t, set.Labels, "de-DE")

	types := map[string]string{}
	for _, f := range set.Fields {
		types[f.Name] = f.Type
	}
	assert.Equal(t, map[string]string{
		"customerDiscount_name":           TypeText,
		"customerDiscount_amount":         TypeFloat,
		"customerDiscount_expirationDate": TypeDate,
	}, types)
}
