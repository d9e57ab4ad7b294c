package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// ExamRepository provides record-store access for the exams collection.
type ExamRepository struct {
	store store.RecordStore
}

// NewExamRepository creates a new instance of ExamRepository.
func NewExamRepository(s store.RecordStore) *ExamRepository {
	return &ExamRepository{store: s}
}

// List returns every exam record.
func (r *ExamRepository) List(ctx context.Context) ([]models.Exam, error) {
	docs, err := r.store.List(ctx, models.CollectionExams)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return decodeExams(docs)
}

// ListByStudent returns the exams recorded for a student.
func (r *ExamRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Exam, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionExams, "studentID", studentID)
	if err != nil {
		return nil, fmt.Errorf("list exams by student: %w", err)
	}
	return decodeExams(docs)
}

// ListByClass returns the exams recorded for a class.
func (r *ExamRepository) ListByClass(ctx context.Context, classID string) ([]models.Exam, error) {
	docs, err := r.store.QueryEqual(ctx, models.CollectionExams, "classID", classID)
	if err != nil {
		return nil, fmt.Errorf("list exams by class: %w", err)
	}
	return decodeExams(docs)
}

// FindByID returns an exam by identifier.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	doc, err := r.store.Get(ctx, models.CollectionExams, id)
	if err != nil {
		return nil, err
	}
	var exam models.Exam
	if err := doc.Decode(&exam); err != nil {
		return nil, err
	}
	exam.ID = doc.ID
	return &exam, nil
}

// Create stores a new exam record.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	now := time.Now().UTC()
	exam.CreatedAt = now
	exam.UpdatedAt = now
	id, err := r.store.Add(ctx, models.CollectionExams, exam)
	if err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	exam.ID = id
	return nil
}

// Update overwrites the stored exam document.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	batch := store.NewBatch().Set(models.CollectionExams, exam.ID, exam)
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// Delete removes an exam record.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, models.CollectionExams, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}

func decodeExams(docs []store.Document) ([]models.Exam, error) {
	exams := make([]models.Exam, 0, len(docs))
	for _, doc := range docs {
		var exam models.Exam
		if err := doc.Decode(&exam); err != nil {
			return nil, err
		}
		exam.ID = doc.ID
		exams = append(exams, exam)
	}
	return exams, nil
}
