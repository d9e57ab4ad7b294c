package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// StudentRepository provides record-store access for the students collection.
type StudentRepository struct {
	store store.RecordStore
}

// NewStudentRepository creates a new instance of StudentRepository.
func NewStudentRepository(s store.RecordStore) *StudentRepository {
	return &StudentRepository{store: s}
}

// List returns every student.
func (r *StudentRepository) List(ctx context.Context) ([]models.Student, error) {
	docs, err := r.store.List(ctx, models.CollectionStudents)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	students := make([]models.Student, 0, len(docs))
	for _, doc := range docs {
		var student models.Student
		if err := doc.Decode(&student); err != nil {
			return nil, err
		}
		student.ID = doc.ID
		students = append(students, student)
	}
	return students, nil
}

// ListByClass returns the students enrolled in a class.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionStudents, "classID", classID)
	if err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	students := make([]models.Student, 0, len(docs))
	for _, doc := range docs {
		var student models.Student
		if err := doc.Decode(&student); err != nil {
			return nil, err
		}
		student.ID = doc.ID
		students = append(students, student)
	}
	return students, nil
}

// FindByID returns a student by identifier.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	doc, err := r.store.Get(ctx, models.CollectionStudents, id)
	if err != nil {
		return nil, err
	}
	var student models.Student
	if err := doc.Decode(&student); err != nil {
		return nil, err
	}
	student.ID = doc.ID
	return &student, nil
}

// FindByBForm returns the student registered under the B-Form number, or nil.
func (r *StudentRepository) FindByBForm(ctx context.Context, bForm string) (*models.Student, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionStudents, "bFormNo", bForm)
	if err != nil {
		return nil, fmt.Errorf("query students by b-form: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var student models.Student
	if err := docs[0].Decode(&student); err != nil {
		return nil, err
	}
	student.ID = docs[0].ID
	return &student, nil
}

// Create stores a new student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	id, err := r.store.Add(ctx, models.CollectionStudents, student)
	if err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	student.ID = id
	return nil
}

// Update overwrites the stored student document.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionStudents, student.ID, student)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionStudents, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
