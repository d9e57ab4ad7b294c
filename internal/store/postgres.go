package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresStore keeps every collection in a single documents table with a
// JSONB body, preserving the whole-document overwrite and partial merge
// semantics of the original cloud store.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an sqlx handle as a RecordStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure documents schema: %w", err)
	}
	return nil
}

// Get returns a document by id.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	const query = `SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2 LIMIT 1`
	var doc Document
	if err := s.db.GetContext(ctx, &doc, query, collection, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// List returns every document of a collection in insertion order.
func (s *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = $1 ORDER BY created_at, id`
	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, query, collection); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// QueryEqual returns documents whose top-level field equals value.
func (s *PostgresStore) QueryEqual(ctx context.Context, collection, field, value string) ([]Document, error) {
	const query = `SELECT collection, id, data, created_at, updated_at FROM documents WHERE collection = $1 AND data->>$2 = $3 ORDER BY created_at, id`
	var docs []Document
	if err := s.db.SelectContext(ctx, &docs, query, collection, field, value); err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return docs, nil
}

// Add stores a new document under a store-assigned id. The id is merged into
// the document body so decoded models carry it.
func (s *PostgresStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.NewString()
	const query = `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3::jsonb || jsonb_build_object('id', $2::text), $4, $4)`
	if _, err := s.db.ExecContext(ctx, query, collection, id, body, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("add document: %w", err)
	}
	return id, nil
}

// UpdateFields merges the given fields into an existing document.
func (s *PostgresStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	patch, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	const query = `UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`
	result, err := s.db.ExecContext(ctx, query, collection, id, patch, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a document. Missing documents are ignored.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	if _, err := s.db.ExecContext(ctx, query, collection, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Commit applies the batch inside one transaction.
func (s *PostgresStore) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	now := time.Now().UTC()
	for _, op := range batch.ops {
		if err := applyOp(ctx, tx, op, now); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func applyOp(ctx context.Context, tx *sqlx.Tx, op batchOp, now time.Time) error {
	switch op.kind {
	case opSet:
		body, err := json.Marshal(op.data)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		const query = `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)
			ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
		if _, err := tx.ExecContext(ctx, query, op.collection, op.id, body, now); err != nil {
			return fmt.Errorf("batch set: %w", err)
		}
	case opUpdate:
		patch, err := json.Marshal(op.fields)
		if err != nil {
			return fmt.Errorf("encode patch: %w", err)
		}
		const query = `UPDATE documents SET data = data || $3::jsonb, updated_at = $4 WHERE collection = $1 AND id = $2`
		if _, err := tx.ExecContext(ctx, query, op.collection, op.id, patch, now); err != nil {
			return fmt.Errorf("batch update: %w", err)
		}
	case opDelete:
		const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
		if _, err := tx.ExecContext(ctx, query, op.collection, op.id); err != nil {
			return fmt.Errorf("batch delete: %w", err)
		}
	}
	return nil
}
