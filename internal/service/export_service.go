package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
	"github.com/taleemhub/school-admin-api/pkg/export"
	"github.com/taleemhub/school-admin-api/pkg/storage"
)

type exportProfileSource interface {
	List(ctx context.Context) ([]models.Profile, error)
}

type exportExamSource interface {
	List(ctx context.Context) ([]models.Exam, error)
	ListByClass(ctx context.Context, classID string) ([]models.Exam, error)
}

type exportAttendanceSource interface {
	GetSheet(ctx context.Context, subjectID string) (*models.AttendanceSheet, error)
}

// ExportResult points at a rendered export file behind a signed URL.
type ExportResult struct {
	FileName  string    `json:"file_name"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService renders CSV and PDF exports to disk and hands out
// time-limited signed download tokens.
type ExportService struct {
	profiles   exportProfileSource
	exams      exportExamSource
	attendance exportAttendanceSource
	files      *storage.FileStore
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs the export service.
func NewExportService(profiles exportProfileSource, exams exportExamSource, attendance exportAttendanceSource, files *storage.FileStore, signer *storage.SignedURLSigner, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		profiles:   profiles,
		exams:      exams,
		attendance: attendance,
		files:      files,
		signer:     signer,
		logger:     logger,
		now:        time.Now,
	}
}

// ProfilesCSV exports all member profiles as CSV.
func (s *ExportService) ProfilesCSV(ctx context.Context) (*ExportResult, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list profiles")
	}

	data := export.Dataset{
		Headers: []string{"ID", "Name", "Email", "Phone", "Role", "Coins", "Hourly Rate", "Referral Code", "Referred By", "Referral Count", "Created At"},
	}
	for _, p := range profiles {
		data.Rows = append(data.Rows, []string{
			p.ID,
			p.Name,
			p.Email,
			p.Phone,
			string(p.Role),
			strconv.FormatFloat(p.Coins, 'f', 2, 64),
			strconv.FormatFloat(p.HourlyRate, 'f', 2, 64),
			p.ReferralCode,
			p.ReferralByCode,
			strconv.Itoa(p.ReferralCount),
			p.CreatedAt.Format(time.RFC3339),
		})
	}

	body, err := export.RenderCSV(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render profiles export")
	}
	return s.publish("profiles", "csv", body)
}

// ExamsCSV exports exam results as CSV, optionally scoped to a class.
func (s *ExportService) ExamsCSV(ctx context.Context, classID string) (*ExportResult, error) {
	var (
		exams []models.Exam
		err   error
	)
	if classID != "" {
		exams, err = s.exams.ListByClass(ctx, classID)
	} else {
		exams, err = s.exams.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to list exams")
	}

	data := export.Dataset{
		Headers: []string{"ID", "Class", "Student", "Subject", "Term", "Total Marks", "Obtained Marks", "Percentage"},
	}
	for _, e := range exams {
		data.Rows = append(data.Rows, []string{
			e.ID,
			e.ClassID,
			e.StudentID,
			e.Subject,
			string(e.ExamTerm),
			strconv.FormatFloat(e.TotalMarks, 'f', 1, 64),
			strconv.FormatFloat(e.ObtainedMarks, 'f', 1, 64),
			strconv.FormatFloat(e.Percentage(), 'f', 2, 64),
		})
	}

	body, err := export.RenderCSV(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render exams export")
	}
	return s.publish("exams", "csv", body)
}

// AttendancePDF exports the attendance registers of the given subjects as a
// single PDF, one summary row per subject.
func (s *ExportService) AttendancePDF(ctx context.Context, subjectIDs []string) (*ExportResult, error) {
	if len(subjectIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}

	data := export.Dataset{
		Headers: []string{"Subject", "Present", "Absent", "Leave", "Total", "Present %"},
	}
	for _, subjectID := range subjectIDs {
		sheet, err := s.attendance.GetSheet(ctx, subjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load attendance sheet")
		}
		summary := Aggregate(sheet.Entries)
		data.Rows = append(data.Rows, []string{
			subjectID,
			strconv.Itoa(summary.PresentCount),
			strconv.Itoa(summary.AbsentCount),
			strconv.Itoa(summary.LeaveCount),
			strconv.Itoa(summary.TotalEntries),
			strconv.FormatFloat(summary.PresentPercentage, 'f', 2, 64),
		})
	}

	body, err := export.RenderPDF(data, "Attendance Summary")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render attendance export")
	}
	return s.publish("attendance", "pdf", body)
}

// Open resolves a signed download token back to a file name.
func (s *ExportService) Open(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid or expired")
	}
	return relPath, nil
}

func (s *ExportService) publish(kind, ext string, body []byte) (*ExportResult, error) {
	exportID := uuid.NewString()
	fileName := fmt.Sprintf("%s-%s.%s", kind, s.now().UTC().Format("20060102-150405"), ext)

	if _, err := s.files.Save(fileName, body); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write export file")
	}
	token, expiresAt, err := s.signer.Generate(exportID, fileName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}

	s.logger.Info("export rendered",
		zap.String("kind", kind),
		zap.String("file", fileName),
	)

	return &ExportResult{
		FileName:  fileName,
		Token:     token,
		URL:       "/api/v1/exports/download?token=" + token,
		ExpiresAt: expiresAt,
	}, nil
}
