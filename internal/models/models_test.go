package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBForm(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"digits only", "1234512345671", "12345-1234567-1"},
		{"already dashed", "12345-1234567-1", "12345-1234567-1"},
		{"mixed separators", "12345 1234567/1", "12345-1234567-1"},
		{"truncates beyond 13", "12345123456719999", "12345-1234567-1"},
		{"partial input", "123456", "12345-6"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatBForm(tc.in))
		})
	}
}

func TestValidBForm(t *testing.T) {
	assert.True(t, ValidBForm("1234512345671"))
	assert.True(t, ValidBForm("12345-1234567-1"))
	assert.False(t, ValidBForm("12345"))
	assert.False(t, ValidBForm(""))
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-03-02", "2026-03-02"},
		{"2026-03-02T08:30:00Z", "2026-03-02"},
		{"2026-03-02T08:30:00", "2026-03-02"},
		{"2026-03-02 08:30:00", "2026-03-02"},
		{"  2026-03-02  ", "2026-03-02"},
		{"not-a-date", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDate(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeDateEqualityMeansSameDay(t *testing.T) {
	assert.Equal(t, NormalizeDate("2026-03-02"), NormalizeDate("2026-03-02T23:59:59Z"))
	assert.NotEqual(t, NormalizeDate("2026-03-02"), NormalizeDate("2026-03-03T00:00:00Z"))
}

func TestNormalizeSubjects(t *testing.T) {
	got := NormalizeSubjects([]string{" Math ", "", "Science", "Math", "  ", "Urdu"})
	assert.Equal(t, []string{"Math", "Science", "Urdu"}, got)
}

func TestValidClassName(t *testing.T) {
	assert.True(t, ValidClassName("Class 1"))
	assert.True(t, ValidClassName("Class 12"))
	assert.False(t, ValidClassName("Class 13"))
	assert.False(t, ValidClassName("class 1"))
}

func TestExamPercentage(t *testing.T) {
	assert.InDelta(t, 75.0, Exam{TotalMarks: 100, ObtainedMarks: 75}.Percentage(), 0.001)
	assert.Zero(t, Exam{TotalMarks: 0, ObtainedMarks: 10}.Percentage())
}

func TestAttendanceStatus(t *testing.T) {
	assert.True(t, StatusPresent.Valid())
	assert.False(t, AttendanceStatus("Tardy").Valid())
	assert.True(t, StatusAbsent.RequiresReason())
	assert.True(t, StatusLeave.RequiresReason())
	assert.False(t, StatusPresent.RequiresReason())
}

func TestProfilePublicStripsPasswordHash(t *testing.T) {
	p := Profile{ID: "u-1", PasswordHash: "secret"}
	assert.Empty(t, p.Public().PasswordHash)
	assert.Equal(t, "secret", p.PasswordHash)
}
