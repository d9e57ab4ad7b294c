package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Document is a raw record fetched from a collection.
type Document struct {
	Collection string          `db:"collection"`
	ID         string          `db:"id"`
	Data       json.RawMessage `db:"data"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

// Decode unmarshals the document body into v.
func (d Document) Decode(v interface{}) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("decode document %s/%s: %w", d.Collection, d.ID, err)
	}
	return nil
}

// RecordStore is the document database consumed by all repositories.
// It exposes exactly the six primitives the dashboard's backing store offers,
// plus a multi-document atomic batch. No listeners, no subscriptions.
type RecordStore interface {
	// Get returns a document by id. Misses surface sql.ErrNoRows.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// List returns every document of a collection in insertion order.
	List(ctx context.Context, collection string) ([]Document, error)
	// QueryEqual returns documents whose top-level field equals value
	// (case-sensitive exact match).
	QueryEqual(ctx context.Context, collection, field, value string) ([]Document, error)
	// Add stores a new document under a store-assigned id and returns it.
	Add(ctx context.Context, collection string, data interface{}) (string, error)
	// UpdateFields merges the given fields into an existing document.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error
	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Commit applies a batch atomically: either all operations are visible
	// or none are.
	Commit(ctx context.Context, batch *Batch) error
}

type batchOpKind int

const (
	opSet batchOpKind = iota
	opUpdate
	opDelete
)

type batchOp struct {
	kind       batchOpKind
	collection string
	id         string
	data       interface{}
	fields     map[string]interface{}
}

// Batch accumulates write operations for a single atomic commit.
type Batch struct {
	ops []batchOp
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Set schedules a whole-document overwrite (created when absent).
func (b *Batch) Set(collection, id string, data interface{}) *Batch {
	b.ops = append(b.ops, batchOp{kind: opSet, collection: collection, id: id, data: data})
	return b
}

// Update schedules a partial field merge of an existing document.
func (b *Batch) Update(collection, id string, fields map[string]interface{}) *Batch {
	b.ops = append(b.ops, batchOp{kind: opUpdate, collection: collection, id: id, fields: fields})
	return b
}

// Delete schedules a document removal.
func (b *Batch) Delete(collection, id string) *Batch {
	b.ops = append(b.ops, batchOp{kind: opDelete, collection: collection, id: id})
	return b
}

// Len reports the number of scheduled operations.
func (b *Batch) Len() int {
	return len(b.ops)
}
