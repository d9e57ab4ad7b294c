package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context) ([]models.Exam, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Exam, error)
	ListByClass(ctx context.Context, classID string) ([]models.Exam, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// SaveExamRequest holds payload for recording or updating an exam result.
type SaveExamRequest struct {
	ClassID       string  `json:"class_id" validate:"required"`
	StudentID     string  `json:"student_id" validate:"required"`
	Subject       string  `json:"subject" validate:"required"`
	ExamTerm      string  `json:"exam_term" validate:"required"`
	TotalMarks    float64 `json:"total_marks" validate:"required,gt=0"`
	ObtainedMarks float64 `json:"obtained_marks" validate:"gte=0"`
}

// ExamResult pairs an exam record with its derived percentage.
type ExamResult struct {
	models.Exam
	Percentage float64 `json:"percentage"`
}

// ExamService handles exam-result use-cases.
type ExamService struct {
	repo      examRepository
	students  studentLookup
	classes   classLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs the exam service.
func NewExamService(repo examRepository, students studentLookup, classes classLookup, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, students: students, classes: classes, validator: validate, logger: logger}
}

// List returns exam results, optionally scoped to a student or class.
func (s *ExamService) List(ctx context.Context, studentID, classID string) ([]ExamResult, error) {
	var (
		exams []models.Exam
		err   error
	)
	switch {
	case studentID != "":
		exams, err = s.repo.ListByStudent(ctx, studentID)
	case classID != "":
		exams, err = s.repo.ListByClass(ctx, classID)
	default:
		exams, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list exams")
	}
	results := make([]ExamResult, 0, len(exams))
	for _, exam := range exams {
		results = append(results, ExamResult{Exam: exam, Percentage: exam.Percentage()})
	}
	return results, nil
}

// Get returns a single exam result.
func (s *ExamService) Get(ctx context.Context, id string) (*ExamResult, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load exam")
	}
	return &ExamResult{Exam: *exam, Percentage: exam.Percentage()}, nil
}

// Create records an exam result after verifying the referenced class and
// student exist and the marks are coherent.
func (s *ExamService) Create(ctx context.Context, req SaveExamRequest) (*ExamResult, error) {
	exam, err := s.buildExam(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create exam")
	}
	return &ExamResult{Exam: *exam, Percentage: exam.Percentage()}, nil
}

// Update modifies an existing exam result.
func (s *ExamService) Update(ctx context.Context, id string, req SaveExamRequest) (*ExamResult, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load exam")
	}
	exam, err := s.buildExam(ctx, req)
	if err != nil {
		return nil, err
	}
	exam.ID = existing.ID
	exam.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update exam")
	}
	return &ExamResult{Exam: *exam, Percentage: exam.Percentage()}, nil
}

// Delete removes an exam result.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load exam")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete exam")
	}
	return nil
}

func (s *ExamService) buildExam(ctx context.Context, req SaveExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	term := models.ExamTerm(req.ExamTerm)
	if !term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown exam term %q", req.ExamTerm))
	}
	if req.ObtainedMarks > req.TotalMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "obtained marks cannot exceed total marks")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load class")
	}

	return &models.Exam{
		ClassID:       req.ClassID,
		StudentID:     student.ID,
		Subject:       strings.TrimSpace(req.Subject),
		ExamTerm:      term,
		TotalMarks:    req.TotalMarks,
		ObtainedMarks: req.ObtainedMarks,
	}, nil
}
