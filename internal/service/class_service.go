package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context) ([]models.Class, error)
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByName(ctx context.Context, name string) (*models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type attendanceSheetRemover interface {
	DeleteSheet(ctx context.Context, subjectID string) error
}

// SaveClassRequest holds payload for creating or updating a class.
type SaveClassRequest struct {
	ClassName string   `json:"class_name" validate:"required"`
	Subjects  []string `json:"subjects" validate:"required,min=1"`
}

// ClassService handles class use-cases.
type ClassService struct {
	repo      classRepository
	sheets    attendanceSheetRemover
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs the class service.
func NewClassService(repo classRepository, sheets attendanceSheetRemover, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, sheets: sheets, validator: validate, logger: logger}
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context) ([]models.Class, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns a single class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load class")
	}
	return class, nil
}

// Create adds a class. The class name must come from the fixed enumeration and
// must not already exist; the subject list is normalized before saving.
func (s *ClassService) Create(ctx context.Context, req SaveClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if !models.ValidClassName(req.ClassName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown class name %q", req.ClassName))
	}
	subjects := models.NormalizeSubjects(req.Subjects)
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}

	existing, err := s.repo.FindByName(ctx, req.ClassName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check class name")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class already exists")
	}

	class := &models.Class{ClassName: req.ClassName, Subjects: subjects}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create class")
	}
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id string, req SaveClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if !models.ValidClassName(req.ClassName) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown class name %q", req.ClassName))
	}
	subjects := models.NormalizeSubjects(req.Subjects)
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}

	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load class")
	}
	if req.ClassName != class.ClassName {
		existing, err := s.repo.FindByName(ctx, req.ClassName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check class name")
		}
		if existing != nil && existing.ID != id {
			return nil, appErrors.Clone(appErrors.ErrConflict, "class already exists")
		}
	}

	class.ClassName = req.ClassName
	class.Subjects = subjects
	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class along with the attendance sheets of its subjects.
// Students keep their snapshotted class name.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete class")
	}
	if s.sheets != nil {
		for _, subject := range class.Subjects {
			if err := s.sheets.DeleteSheet(ctx, subject); err != nil {
				s.logger.Warn("failed to delete attendance sheet of removed class",
					zap.String("class_id", id), zap.String("subject", subject), zap.Error(err))
			}
		}
	}
	return nil
}
