package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return NewPostgresStore(sqlx.NewDb(mockDB, "sqlmock")), mock
}

func documentRows(id string, data string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"collection", "id", "data", "created_at", "updated_at"}).
		AddRow("profiles", id, []byte(data), now, now)
}

func TestGetReturnsDocument(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2 LIMIT 1`)).
		WithArgs("profiles", "u-1").
		WillReturnRows(documentRows("u-1", `{"id":"u-1","name":"Amina"}`))

	doc, err := store.Get(context.Background(), "profiles", "u-1")
	require.NoError(t, err)

	var decoded struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, doc.Decode(&decoded))
	assert.Equal(t, "Amina", decoded.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMissSurfacesNoRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2 LIMIT 1`)).
		WithArgs("profiles", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "profiles", "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestQueryEqualFiltersOnField(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = $1 AND data->>$2 = $3 ORDER BY created_at, id`)).
		WithArgs("profiles", "referralByCode", "REF-1").
		WillReturnRows(documentRows("u-2", `{"id":"u-2","referralByCode":"REF-1"}`))

	docs, err := store.QueryEqual(context.Background(), "profiles", "referralByCode", "REF-1")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddAssignsID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3::jsonb || jsonb_build_object('id', $2::text), $4, $4)`)).
		WithArgs("profiles", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := store.Add(context.Background(), "profiles", map[string]string{"name": "Amina"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldsMissingDocument(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`)).
		WithArgs("profiles", "missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateFields(context.Background(), "profiles", "missing", map[string]interface{}{"name": "x"})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestUpdateFieldsMergesPatch(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`)).
		WithArgs("profiles", "u-1", []byte(`{"referralCount":4}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateFields(context.Background(), "profiles", "u-1", map[string]interface{}{"referralCount": 4})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitAppliesAllOpsInOneTransaction(t *testing.T) {
	store, mock := newMockStore(t)

	batch := NewBatch().
		Set("profiles", "u-1", map[string]string{"id": "u-1"}).
		Update("profiles", "ref-1", map[string]interface{}{"referralCount": 2}).
		Delete("profiles", "u-2")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("profiles", "u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`)).
		WithArgs("profiles", "ref-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM documents WHERE collection = $1 AND id = $2`)).
		WithArgs("profiles", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.Commit(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	batch := NewBatch().
		Set("profiles", "u-1", map[string]string{"id": "u-1"}).
		Delete("profiles", "u-2")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("profiles", "u-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := store.Commit(context.Background(), batch)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitEmptyBatchIsNoop(t *testing.T) {
	store, mock := newMockStore(t)
	require.NoError(t, store.Commit(context.Background(), NewBatch()))
	require.NoError(t, store.Commit(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentDecodeError(t *testing.T) {
	doc := Document{Collection: "profiles", ID: "u-1", Data: json.RawMessage(`{bad`)}
	var out map[string]interface{}
	assert.Error(t, doc.Decode(&out))
}
