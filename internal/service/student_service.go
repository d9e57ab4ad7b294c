package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context) ([]models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByBForm(ctx context.Context, bForm string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// CreateStudentRequest holds payload for enrolling a student.
type CreateStudentRequest struct {
	Name           string `json:"name" validate:"required"`
	FatherName     string `json:"father_name" validate:"required"`
	RegistrationNo string `json:"registration_no" validate:"required"`
	BFormNo        string `json:"b_form_no" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	GuardianName   string `json:"guardian_name"`
	GuardianPhone  string `json:"guardian_phone"`
	ImageURL       string `json:"image_url"`
	GuardianImage  string `json:"guardian_image_url"`
}

// UpdateStudentRequest holds payload for updating a student.
type UpdateStudentRequest struct {
	Name           string `json:"name" validate:"required"`
	FatherName     string `json:"father_name" validate:"required"`
	RegistrationNo string `json:"registration_no" validate:"required"`
	BFormNo        string `json:"b_form_no" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	GuardianName   string `json:"guardian_name"`
	GuardianPhone  string `json:"guardian_phone"`
	ImageURL       string `json:"image_url"`
	GuardianImage  string `json:"guardian_image_url"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	classes   classLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, classes classLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns students, optionally scoped to a class.
func (s *StudentService) List(ctx context.Context, classID string) ([]models.Student, error) {
	var (
		students []models.Student
		err      error
	)
	if classID != "" {
		students, err = s.repo.ListByClass(ctx, classID)
	} else {
		students, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list students")
	}
	return students, nil
}

// Get returns a single student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	return student, nil
}

// Create enrolls a student. The B-Form number must carry 13 digits and be
// unique; the class must exist and its name is snapshotted on the record.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.ValidBForm(req.BFormNo) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "b-form number must carry 13 digits")
	}
	bForm := models.FormatBForm(req.BFormNo)

	existing, err := s.repo.FindByBForm(ctx, bForm)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check b-form number")
	}
	if existing != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "b-form number already registered")
	}

	class, err := s.lookupClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		Name:           strings.TrimSpace(req.Name),
		FatherName:     strings.TrimSpace(req.FatherName),
		RegistrationNo: strings.TrimSpace(req.RegistrationNo),
		BFormNo:        bForm,
		ClassID:        class.ID,
		StudentClass:   class.ClassName,
		GuardianName:   strings.TrimSpace(req.GuardianName),
		GuardianPhone:  strings.TrimSpace(req.GuardianPhone),
		ImageURL:       req.ImageURL,
		GuardianImage:  req.GuardianImage,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to create student")
	}
	return student, nil
}

// Update modifies an existing student, re-snapshotting the class name when
// the class changes.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	if !models.ValidBForm(req.BFormNo) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "b-form number must carry 13 digits")
	}
	bForm := models.FormatBForm(req.BFormNo)
	if bForm != student.BFormNo {
		existing, err := s.repo.FindByBForm(ctx, bForm)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to check b-form number")
		}
		if existing != nil && existing.ID != id {
			return nil, appErrors.Clone(appErrors.ErrConflict, "b-form number already registered")
		}
	}

	class, err := s.lookupClass(ctx, req.ClassID)
	if err != nil {
		return nil, err
	}

	student.Name = strings.TrimSpace(req.Name)
	student.FatherName = strings.TrimSpace(req.FatherName)
	student.RegistrationNo = strings.TrimSpace(req.RegistrationNo)
	student.BFormNo = bForm
	student.ClassID = class.ID
	student.StudentClass = class.ClassName
	student.GuardianName = strings.TrimSpace(req.GuardianName)
	student.GuardianPhone = strings.TrimSpace(req.GuardianPhone)
	if req.ImageURL != "" {
		student.ImageURL = req.ImageURL
	}
	if req.GuardianImage != "" {
		student.GuardianImage = req.GuardianImage
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to delete student")
	}
	return nil
}

func (s *StudentService) lookupClass(ctx context.Context, classID string) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrReferenceNotFound, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load class")
	}
	return class, nil
}
