package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// ClassRepository provides record-store access for the classes collection.
type ClassRepository struct {
	store store.RecordStore
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(s store.RecordStore) *ClassRepository {
	return &ClassRepository{store: s}
}

// List returns every class.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	docs, err := r.store.List(ctx, models.CollectionClasses)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	classes := make([]models.Class, 0, len(docs))
	for _, doc := range docs {
		var class models.Class
		if err := doc.Decode(&class); err != nil {
			return nil, err
		}
		class.ID = doc.ID
		classes = append(classes, class)
	}
	return classes, nil
}

// FindByID returns a class by identifier.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	doc, err := r.store.Get(ctx, models.CollectionClasses, id)
	if err != nil {
		return nil, err
	}
	var class models.Class
	if err := doc.Decode(&class); err != nil {
		return nil, err
	}
	class.ID = doc.ID
	return &class, nil
}

// FindByName returns the class with the given name, or nil.
func (r *ClassRepository) FindByName(ctx context.Context, name string) (*models.Class, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionClasses, "className", name)
	if err != nil {
		return nil, fmt.Errorf("query classes by name: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var class models.Class
	if err := docs[0].Decode(&class); err != nil {
		return nil, err
	}
	class.ID = docs[0].ID
	return &class, nil
}

// Create stores a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	id, err := r.store.Add(ctx, models.CollectionClasses, class)
	if err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	class.ID = id
	return nil
}

// Update overwrites the stored class document.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionClasses, class.ID, class)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionClasses, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
