package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	commits int
}

func (s *stubStore) Get(context.Context, string, string) (*Document, error)       { return nil, nil }
func (s *stubStore) List(context.Context, string) ([]Document, error)             { return nil, nil }
func (s *stubStore) QueryEqual(context.Context, string, string, string) ([]Document, error) {
	return nil, nil
}
func (s *stubStore) Add(context.Context, string, interface{}) (string, error) { return "", nil }
func (s *stubStore) UpdateFields(context.Context, string, string, map[string]interface{}) error {
	return nil
}
func (s *stubStore) Delete(context.Context, string, string) error { return nil }
func (s *stubStore) Commit(_ context.Context, _ *Batch) error {
	s.commits++
	return nil
}

type spyObserver struct {
	ops        []string
	batchSizes []int
}

func (o *spyObserver) ObserveStoreOp(op, _ string, _ time.Duration) { o.ops = append(o.ops, op) }
func (o *spyObserver) ObserveBatch(size int)                        { o.batchSizes = append(o.batchSizes, size) }

func TestInstrumentedCommitObservesBatchSize(t *testing.T) {
	inner := &stubStore{}
	observer := &spyObserver{}
	s := NewInstrumentedStore(inner, observer)

	batch := NewBatch().Set("profiles", "u-1", map[string]string{"name": "a"}).Delete("profiles", "u-2")
	require.NoError(t, s.Commit(context.Background(), batch))

	assert.Equal(t, 1, inner.commits)
	assert.Equal(t, []string{"commit"}, observer.ops)
	assert.Equal(t, []int{2}, observer.batchSizes)
}

func TestInstrumentedCommitToleratesNilAndEmptyBatch(t *testing.T) {
	inner := &stubStore{}
	observer := &spyObserver{}
	s := NewInstrumentedStore(inner, observer)

	require.NoError(t, s.Commit(context.Background(), nil))
	require.NoError(t, s.Commit(context.Background(), NewBatch()))

	assert.Equal(t, 2, inner.commits)
	assert.Empty(t, observer.batchSizes)
}

func TestNilObserverReturnsInnerStore(t *testing.T) {
	inner := &stubStore{}
	assert.Equal(t, RecordStore(inner), NewInstrumentedStore(inner, nil))
}
