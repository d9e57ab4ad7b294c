package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// fakeRecordStore records primitive calls and committed batches.
type fakeRecordStore struct {
	docs        map[string]map[string]json.RawMessage
	commits     []*store.Batch
	queryField  string
	queryValue  string
	addedTo     string
	updatedWith map[string]interface{}
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{docs: map[string]map[string]json.RawMessage{}}
}

func (f *fakeRecordStore) put(collection, id string, v interface{}) {
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]json.RawMessage{}
	}
	body, _ := json.Marshal(v)
	f.docs[collection][id] = body
}

func (f *fakeRecordStore) Get(_ context.Context, collection, id string) (*store.Document, error) {
	body, ok := f.docs[collection][id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &store.Document{Collection: collection, ID: id, Data: body}, nil
}

func (f *fakeRecordStore) List(_ context.Context, collection string) ([]store.Document, error) {
	var out []store.Document
	for id, body := range f.docs[collection] {
		out = append(out, store.Document{Collection: collection, ID: id, Data: body})
	}
	return out, nil
}

func (f *fakeRecordStore) QueryEqual(_ context.Context, collection, field, value string) ([]store.Document, error) {
	f.queryField = field
	f.queryValue = value
	var out []store.Document
	for id, body := range f.docs[collection] {
		var parsed map[string]interface{}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, err
		}
		if got, ok := parsed[field].(string); ok && got == value {
			out = append(out, store.Document{Collection: collection, ID: id, Data: body})
		}
	}
	return out, nil
}

func (f *fakeRecordStore) Add(_ context.Context, collection string, data interface{}) (string, error) {
	f.addedTo = collection
	id := "generated-id"
	f.put(collection, id, data)
	return id, nil
}

func (f *fakeRecordStore) UpdateFields(_ context.Context, collection, id string, fields map[string]interface{}) error {
	if _, ok := f.docs[collection][id]; !ok {
		return sql.ErrNoRows
	}
	f.updatedWith = fields
	return nil
}

func (f *fakeRecordStore) Delete(_ context.Context, collection, id string) error {
	delete(f.docs[collection], id)
	return nil
}

func (f *fakeRecordStore) Commit(_ context.Context, batch *store.Batch) error {
	f.commits = append(f.commits, batch)
	return nil
}

func TestCreateAssignsStoreID(t *testing.T) {
	rs := newFakeRecordStore()
	repo := NewProfileRepository(rs)

	profile := &models.Profile{Name: "Amina", Email: "a@example.com"}
	require.NoError(t, repo.Create(context.Background(), profile))

	assert.Equal(t, "generated-id", profile.ID)
	assert.Equal(t, models.CollectionProfiles, rs.addedTo)
	assert.False(t, profile.CreatedAt.IsZero())
}

func TestCreateLinkedCommitsOneBatchOfTwo(t *testing.T) {
	rs := newFakeRecordStore()
	repo := NewProfileRepository(rs)

	profile := &models.Profile{Name: "Bilal", ReferralByCode: "REF-1"}
	require.NoError(t, repo.CreateLinked(context.Background(), profile, "ref-1", 3))

	assert.NotEmpty(t, profile.ID)
	require.Len(t, rs.commits, 1)
	assert.Equal(t, 2, rs.commits[0].Len())
}

func TestDeleteCascadeBatchGrowsWithSeveredLinks(t *testing.T) {
	rs := newFakeRecordStore()
	repo := NewProfileRepository(rs)

	err := repo.DeleteCascade(context.Background(), "u-1", "ref-1", 2, []string{"c-1", "c-2"})
	require.NoError(t, err)

	// delete + referrer decrement + one clear per severed profile
	require.Len(t, rs.commits, 1)
	assert.Equal(t, 4, rs.commits[0].Len())
}

func TestDeleteCascadeWithoutReferrer(t *testing.T) {
	rs := newFakeRecordStore()
	repo := NewProfileRepository(rs)

	require.NoError(t, repo.DeleteCascade(context.Background(), "u-1", "", 0, nil))
	require.Len(t, rs.commits, 1)
	assert.Equal(t, 1, rs.commits[0].Len())
}

func TestUnlinkCommitsOneBatchOfTwo(t *testing.T) {
	rs := newFakeRecordStore()
	repo := NewProfileRepository(rs)

	require.NoError(t, repo.Unlink(context.Background(), "u-1", "ref-1", 1))
	require.Len(t, rs.commits, 1)
	assert.Equal(t, 2, rs.commits[0].Len())
}

func TestFindByReferralCodeQueriesExactField(t *testing.T) {
	rs := newFakeRecordStore()
	rs.put(models.CollectionProfiles, "u-1", models.Profile{ID: "u-1", ReferralCode: "REF-1"})
	repo := NewProfileRepository(rs)

	profile, err := repo.FindByReferralCode(context.Background(), "REF-1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "u-1", profile.ID)
	assert.Equal(t, "referralCode", rs.queryField)

	// Case-sensitive exact match: lowercase misses.
	miss, err := repo.FindByReferralCode(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestListReferredByUsesSignupCodeField(t *testing.T) {
	rs := newFakeRecordStore()
	rs.put(models.CollectionProfiles, "c-1", models.Profile{ID: "c-1", ReferralByCode: "REF-1"})
	rs.put(models.CollectionProfiles, "c-2", models.Profile{ID: "c-2", ReferralByCode: "OTHER"})
	repo := NewProfileRepository(rs)

	referred, err := repo.ListReferredBy(context.Background(), "REF-1")
	require.NoError(t, err)
	require.Len(t, referred, 1)
	assert.Equal(t, "c-1", referred[0].ID)
	assert.Equal(t, "referralByCode", rs.queryField)
}
