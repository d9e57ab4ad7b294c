package service

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/taleemhub/school-admin-api/internal/models"
	appErrors "github.com/taleemhub/school-admin-api/pkg/errors"
)

type attendanceSheetRepository interface {
	GetSheet(ctx context.Context, subjectID string) (*models.AttendanceSheet, error)
	SaveSheets(ctx context.Context, sheets []*models.AttendanceSheet) error
}

// Mark is one subject's status for the day being marked.
type Mark struct {
	SubjectID string                  `json:"subject_id" validate:"required"`
	Status    models.AttendanceStatus `json:"status"`
	Reason    string                  `json:"reason"`
}

// MarkRequest records a set of subjects for a single date.
type MarkRequest struct {
	Date  string `json:"date" validate:"required"`
	Marks []Mark `json:"marks" validate:"required,min=1,dive"`
}

// EditEntryRequest revises one subject's entry for a date.
type EditEntryRequest struct {
	Date   string                  `json:"date" validate:"required"`
	Status models.AttendanceStatus `json:"status" validate:"required"`
	Reason string                  `json:"reason"`
}

// AttendanceService keeps one attendance document per subject and aggregates
// entries on demand. All writes are whole-document overwrites; each Mark call
// commits every touched sheet in one batch. The per-subject reads that
// precede the batch are not re-validated, so a concurrent editor's write to
// the same sheet is lost (last-writer-wins).
type AttendanceService struct {
	sheets    attendanceSheetRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance ledger.
func NewAttendanceService(sheets attendanceSheetRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{sheets: sheets, validator: validate, logger: logger}
}

// Mark upserts one entry per subject for the given date. A subject already
// marked on that date has its entry replaced in place; otherwise a new entry
// is appended. Status defaults to Present; Absent and Leave require a reason.
func (s *AttendanceService) Mark(ctx context.Context, req MarkRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date := models.NormalizeDate(req.Date)
	if date == "" {
		return appErrors.Clone(appErrors.ErrValidation, "date must be a valid ISO date")
	}

	sheets := make([]*models.AttendanceSheet, 0, len(req.Marks))
	for _, mark := range req.Marks {
		status := mark.Status
		if status == "" {
			status = models.StatusPresent
		}
		if !status.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "status must be Present, Absent, or Leave")
		}
		if status.RequiresReason() && mark.Reason == "" {
			return appErrors.Clone(appErrors.ErrValidation, "reason is required for Absent and Leave")
		}

		sheet, err := s.sheets.GetSheet(ctx, mark.SubjectID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load attendance sheet")
		}
		upsertEntry(sheet, models.AttendanceEntry{
			SubjectID: mark.SubjectID,
			Date:      date,
			Status:    status,
			Reason:    mark.Reason,
		})
		sheets = append(sheets, sheet)
	}

	if err := s.sheets.SaveSheets(ctx, sheets); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save attendance")
	}
	return nil
}

// EditEntry revises a subject's entry for a date, appending when no entry
// matches the normalized date.
func (s *AttendanceService) EditEntry(ctx context.Context, subjectID string, req EditEntryRequest) (*models.AttendanceSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date := models.NormalizeDate(req.Date)
	if date == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be a valid ISO date")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Present, Absent, or Leave")
	}
	if req.Status.RequiresReason() && req.Reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "reason is required for Absent and Leave")
	}

	sheet, err := s.sheets.GetSheet(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load attendance sheet")
	}
	upsertEntry(sheet, models.AttendanceEntry{
		SubjectID: subjectID,
		Date:      date,
		Status:    req.Status,
		Reason:    req.Reason,
	})
	if err := s.sheets.SaveSheets(ctx, []*models.AttendanceSheet{sheet}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to save attendance")
	}
	return sheet, nil
}

// History returns a subject's full entry list.
func (s *AttendanceService) History(ctx context.Context, subjectID string) ([]models.AttendanceEntry, error) {
	sheet, err := s.sheets.GetSheet(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load attendance sheet")
	}
	return sheet.Entries, nil
}

// Range returns the entries whose date falls within [from, to] inclusive.
// Dates are compared as calendar days; time of day is ignored.
func (s *AttendanceService) Range(ctx context.Context, subjectID, from, to string) ([]models.AttendanceEntry, error) {
	start := models.NormalizeDate(from)
	end := models.NormalizeDate(to)
	if start == "" || end == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start and end must be valid ISO dates")
	}
	sheet, err := s.sheets.GetSheet(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load attendance sheet")
	}
	result := make([]models.AttendanceEntry, 0, len(sheet.Entries))
	for _, entry := range sheet.Entries {
		day := models.NormalizeDate(entry.Date)
		if day == "" {
			continue
		}
		if day >= start && day <= end {
			result = append(result, entry)
		}
	}
	return result, nil
}

// Aggregate tallies entries by status. Unknown status strings are excluded
// from all three counters but still count toward totalEntries.
func Aggregate(entries []models.AttendanceEntry) models.AttendanceSummary {
	summary := models.AttendanceSummary{TotalEntries: len(entries)}
	for _, entry := range entries {
		switch entry.Status {
		case models.StatusPresent:
			summary.PresentCount++
		case models.StatusAbsent:
			summary.AbsentCount++
		case models.StatusLeave:
			summary.LeaveCount++
		}
	}
	if summary.TotalEntries > 0 {
		pct := float64(summary.PresentCount) / float64(summary.TotalEntries) * 100
		summary.PresentPercentage = math.Round(pct*100) / 100
	}
	return summary
}

// CurrentMonth retains entries falling in the same calendar month and year
// as the given wall-clock time.
func CurrentMonth(entries []models.AttendanceEntry, now time.Time) []models.AttendanceEntry {
	result := make([]models.AttendanceEntry, 0, len(entries))
	for _, entry := range entries {
		day := models.NormalizeDate(entry.Date)
		if day == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", day)
		if err != nil {
			continue
		}
		if parsed.Year() == now.Year() && parsed.Month() == now.Month() {
			result = append(result, entry)
		}
	}
	return result
}

// upsertEntry replaces the entry matching the normalized date in place, or
// appends when the date is not yet recorded. At most one entry per date.
func upsertEntry(sheet *models.AttendanceSheet, entry models.AttendanceEntry) {
	for i, existing := range sheet.Entries {
		if models.NormalizeDate(existing.Date) == entry.Date {
			sheet.Entries[i] = entry
			return
		}
	}
	sheet.Entries = append(sheet.Entries, entry)
}
