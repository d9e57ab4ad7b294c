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

type fakeExamRepo struct {
	exams   map[string]*models.Exam
	created *models.Exam
}

func newFakeExamRepo(exams ...*models.Exam) *fakeExamRepo {
	repo := &fakeExamRepo{exams: map[string]*models.Exam{}}
	for _, e := range exams {
		repo.exams[e.ID] = e
	}
	return repo
}

func (f *fakeExamRepo) List(_ context.Context) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range f.exams {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeExamRepo) ListByStudent(_ context.Context, studentID string) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range f.exams {
		if e.StudentID == studentID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeExamRepo) ListByClass(_ context.Context, classID string) ([]models.Exam, error) {
	var out []models.Exam
	for _, e := range f.exams {
		if e.ClassID == classID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeExamRepo) FindByID(_ context.Context, id string) (*models.Exam, error) {
	e, ok := f.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (f *fakeExamRepo) Create(_ context.Context, exam *models.Exam) error {
	f.created = exam
	return nil
}

func (f *fakeExamRepo) Update(_ context.Context, exam *models.Exam) error {
	f.exams[exam.ID] = exam
	return nil
}

func (f *fakeExamRepo) Delete(_ context.Context, id string) error {
	delete(f.exams, id)
	return nil
}

type fakeStudentLookup struct {
	students map[string]*models.Student
}

func (f *fakeStudentLookup) FindByID(_ context.Context, id string) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func examFixtures() (*fakeExamRepo, *fakeStudentLookup, *fakeClassLookup) {
	return newFakeExamRepo(),
		&fakeStudentLookup{students: map[string]*models.Student{
			"stu-1": {ID: "stu-1", Name: "Hassan", ClassID: "class-5"},
		}},
		&fakeClassLookup{classes: map[string]*models.Class{
			"class-5": {ID: "class-5", ClassName: "Class 5"},
		}}
}

func validExamRequest() SaveExamRequest {
	return SaveExamRequest{
		ClassID:       "class-5",
		StudentID:     "stu-1",
		Subject:       "Math",
		ExamTerm:      "midterm",
		TotalMarks:    100,
		ObtainedMarks: 82,
	}
}

func TestCreateExamComputesPercentage(t *testing.T) {
	repo, students, classes := examFixtures()
	svc := NewExamService(repo, students, classes, nil, zap.NewNop())

	result, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)

	assert.InDelta(t, 82.0, result.Percentage, 0.001)
	assert.Equal(t, models.TermMidterm, result.ExamTerm)
	require.NotNil(t, repo.created)
}

func TestCreateExamRejectsUnknownTerm(t *testing.T) {
	repo, students, classes := examFixtures()
	svc := NewExamService(repo, students, classes, nil, zap.NewNop())

	req := validExamRequest()
	req.ExamTerm = "quarterly"
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateExamRejectsObtainedOverTotal(t *testing.T) {
	repo, students, classes := examFixtures()
	svc := NewExamService(repo, students, classes, nil, zap.NewNop())

	req := validExamRequest()
	req.ObtainedMarks = 120
	_, err := svc.Create(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateExamUnknownStudent(t *testing.T) {
	repo, students, classes := examFixtures()
	delete(students.students, "stu-1")
	svc := NewExamService(repo, students, classes, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validExamRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReferenceNotFound.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestListExamsByStudent(t *testing.T) {
	repo, students, classes := examFixtures()
	repo.exams["e-1"] = &models.Exam{ID: "e-1", StudentID: "stu-1", TotalMarks: 50, ObtainedMarks: 25}
	repo.exams["e-2"] = &models.Exam{ID: "e-2", StudentID: "stu-2", TotalMarks: 50, ObtainedMarks: 40}
	svc := NewExamService(repo, students, classes, nil, zap.NewNop())

	results, err := svc.List(context.Background(), "stu-1", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 50.0, results[0].Percentage, 0.001)
}

func TestGetExamZeroTotalMarksPercentage(t *testing.T) {
	repo, students, classes := examFixtures()
	repo.exams["e-1"] = &models.Exam{ID: "e-1", StudentID: "stu-1", TotalMarks: 0, ObtainedMarks: 0}
	svc := NewExamService(repo, students, classes, nil, zap.NewNop())

	result, err := svc.Get(context.Background(), "e-1")
	require.NoError(t, err)
	assert.Zero(t, result.Percentage)
}
