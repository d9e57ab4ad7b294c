package models

import (
	"strings"
	"time"
)

// AttendanceStatus has exactly three legal values. Any status may replace any
// other by re-marking the same date.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusLeave   AttendanceStatus = "Leave"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave:
		return true
	default:
		return false
	}
}

// RequiresReason reports whether a reason must accompany the status.
func (s AttendanceStatus) RequiresReason() bool {
	return s == StatusAbsent || s == StatusLeave
}

// AttendanceEntry is one day's record for a subject (student or employee).
// Date is normalized to YYYY-MM-DD; at most one entry exists per date.
type AttendanceEntry struct {
	SubjectID string           `json:"subjectID"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
	Reason    string           `json:"reason,omitempty"`
}

// AttendanceSheet is the single "attendance" document kept per subject.
type AttendanceSheet struct {
	ID        string            `json:"id"`
	SubjectID string            `json:"subjectID"`
	Entries   []AttendanceEntry `json:"attendance"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// AttendanceSummary aggregates tallies over a list of entries.
type AttendanceSummary struct {
	PresentCount      int     `json:"presentCount"`
	AbsentCount       int     `json:"absentCount"`
	LeaveCount        int     `json:"leaveCount"`
	TotalEntries      int     `json:"totalEntries"`
	PresentPercentage float64 `json:"presentPercentage"`
}

// NormalizeDate reduces an ISO date string to its YYYY-MM-DD day component.
// Equality of normalized dates identifies "the same day"; time of day is
// ignored. Returns the empty string when the input is not a parseable date.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
