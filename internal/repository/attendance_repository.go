package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taleemhub/school-admin-api/internal/models"
	"github.com/taleemhub/school-admin-api/internal/store"
)

// AttendanceRepository provides record-store access for attendance sheets.
// One document is kept per subject id; writes are whole-document overwrites.
type AttendanceRepository struct {
	store store.RecordStore
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(s store.RecordStore) *AttendanceRepository {
	return &AttendanceRepository{store: s}
}

// GetSheet loads the attendance document for a subject. A subject with no
// recorded attendance yet yields an empty sheet, not an error.
func (r *AttendanceRepository) GetSheet(ctx context.Context, subjectID string) (*models.AttendanceSheet, error) {
	doc, err := r.store.Get(ctx, models.CollectionAttendance, subjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.AttendanceSheet{ID: subjectID, SubjectID: subjectID}, nil
		}
		return nil, fmt.Errorf("get attendance sheet: %w", err)
	}
	var sheet models.AttendanceSheet
	if err := doc.Decode(&sheet); err != nil {
		return nil, err
	}
	sheet.ID = doc.ID
	if sheet.SubjectID == "" {
		sheet.SubjectID = doc.ID
	}
	return &sheet, nil
}

// SaveSheets overwrites every given sheet in a single atomic batch. Partial
// failure cannot leave some subjects updated and others not.
func (r *AttendanceRepository) SaveSheets(ctx context.Context, sheets []*models.AttendanceSheet) error {
	if len(sheets) == 0 {
		return nil
	}
	now := time.Now().UTC()
	batch := store.NewBatch()
	for _, sheet := range sheets {
		sheet.UpdatedAt = now
		if sheet.ID == "" {
			sheet.ID = sheet.SubjectID
		}
		batch.Set(models.CollectionAttendance, sheet.ID, sheet)
	}
	if err := r.store.Commit(ctx, batch); err != nil {
		return fmt.Errorf("save attendance sheets: %w", err)
	}
	return nil
}

// DeleteSheet removes a subject's attendance document.
func (r *AttendanceRepository) DeleteSheet(ctx context.Context, subjectID string) error {
	if err := r.store.Delete(ctx, models.CollectionAttendance, subjectID); err != nil {
		return fmt.Errorf("delete attendance sheet: %w", err)
	}
	return nil
}
