package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type fakeStudentRepo struct {
	students map[string]*models.Student
	created  *models.Student
	updated  *models.Student
	deleted  string
}

func newFakeStudentRepo(students ...*models.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: map[string]*models.Student{}}
	for _, s := range students {
		repo.students[s.ID] = s
	}
	return repo
}

func (f *fakeStudentRepo) List(_ context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStudentRepo) ListByClass(_ context.Context, classID string) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		if s.ClassID == classID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeStudentRepo) FindByBForm(_ context.Context, bForm string) (*models.Student, error) {
	for _, s := range f.students {
		if s.BFormNo == bForm {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	f.created = student
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	f.updated = student
	return nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

type fakeClassLookup struct {
	classes map[string]*models.Class
}

func (f *fakeClassLookup) FindByID(_ context.Context, id string) (*models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func validStudentRequest() CreateStudentRequest {
	return CreateStudentRequest{
		Name:           "Hassan",
		FatherName:     "Imran",
		RegistrationNo: "REG-42",
		BFormNo:        "1234512345671",
		ClassID:        "class-5",
	}
}

func TestCreateStudentFormatsBForm(t *testing.T) {
	repo := newFakeStudentRepo()
	classes := &fakeClassLookup{classes: map[string]*models.Class{
		"class-5": {ID: "class-5", ClassName: "Class 5"},
	}}
	svc := NewStudentService(repo, classes, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), validStudentRequest())
	require.NoError(t, err)

	assert.Equal(t, "12345-1234567-1", student.BFormNo)
	assert.Equal(t, "Class 5", student.StudentClass)
	assert.Equal(t, "class-5", student.ClassID)
	require.NotNil(t, repo.created)
}

func TestCreateStudentRejectsShortBForm(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), &fakeClassLookup{}, nil, zap.NewNop())

	req := validStudentRequest()
	req.BFormNo = "12345"
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateStudentDuplicateBForm(t *testing.T) {
	existing := &models.Student{ID: "s-1", BFormNo: "12345-1234567-1"}
	repo := newFakeStudentRepo(existing)
	svc := NewStudentService(repo, &fakeClassLookup{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestCreateStudentUnknownClass(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), &fakeClassLookup{classes: map[string]*models.Class{}}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validStudentRequest())

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateStudentResnapshotsClassName(t *testing.T) {
	existing := &models.Student{ID: "s-1", BFormNo: "12345-1234567-1", ClassID: "class-5", StudentClass: "Class 5"}
	repo := newFakeStudentRepo(existing)
	classes := &fakeClassLookup{classes: map[string]*models.Class{
		"class-6": {ID: "class-6", ClassName: "Class 6"},
	}}
	svc := NewStudentService(repo, classes, nil, zap.NewNop())

	req := UpdateStudentRequest{
		Name:           "Hassan",
		FatherName:     "Imran",
		RegistrationNo: "REG-42",
		BFormNo:        "1234512345671",
		ClassID:        "class-6",
	}
	student, err := svc.Update(context.Background(), "s-1", req)
	require.NoError(t, err)

	assert.Equal(t, "class-6", student.ClassID)
	assert.Equal(t, "Class 6", student.StudentClass)
	require.NotNil(t, repo.updated)
}

func TestDeleteStudentNotFound(t *testing.T) {
	svc := NewStudentService(newFakeStudentRepo(), &fakeClassLookup{}, nil, zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
