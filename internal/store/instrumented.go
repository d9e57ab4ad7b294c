package store

import (
	"context"
	"time"
)

// Observer receives timing signals from an instrumented store.
type Observer interface {
	ObserveStoreOp(op, collection string, duration time.Duration)
	ObserveBatch(size int)
}

// InstrumentedStore decorates a RecordStore with operation timing.
type InstrumentedStore struct {
	inner    RecordStore
	observer Observer
}

// NewInstrumentedStore wraps inner; a nil observer returns inner unchanged.
func NewInstrumentedStore(inner RecordStore, observer Observer) RecordStore {
	if observer == nil {
		return inner
	}
	return &InstrumentedStore{inner: inner, observer: observer}
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	start := time.Now()
	doc, err := s.inner.Get(ctx, collection, id)
	s.observer.ObserveStoreOp("get", collection, time.Since(start))
	return doc, err
}

func (s *InstrumentedStore) List(ctx context.Context, collection string) ([]Document, error) {
	start := time.Now()
	docs, err := s.inner.List(ctx, collection)
	s.observer.ObserveStoreOp("list", collection, time.Since(start))
	return docs, err
}

func (s *InstrumentedStore) QueryEqual(ctx context.Context, collection, field, value string) ([]Document, error) {
	start := time.Now()
	docs, err := s.inner.QueryEqual(ctx, collection, field, value)
	s.observer.ObserveStoreOp("query", collection, time.Since(start))
	return docs, err
}

func (s *InstrumentedStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	start := time.Now()
	id, err := s.inner.Add(ctx, collection, data)
	s.observer.ObserveStoreOp("add", collection, time.Since(start))
	return id, err
}

func (s *InstrumentedStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	start := time.Now()
	err := s.inner.UpdateFields(ctx, collection, id, fields)
	s.observer.ObserveStoreOp("update", collection, time.Since(start))
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, collection, id)
	s.observer.ObserveStoreOp("delete", collection, time.Since(start))
	return err
}

func (s *InstrumentedStore) Commit(ctx context.Context, batch *Batch) error {
	if batch == nil || batch.Len() == 0 {
		return s.inner.Commit(ctx, batch)
	}
	start := time.Now()
	err := s.inner.Commit(ctx, batch)
	s.observer.ObserveStoreOp("commit", "", time.Since(start))
	s.observer.ObserveBatch(batch.Len())
	return err
}
