package models

import "time"

// ExamTerm enumerates the supported exam terms.
type ExamTerm string

const (
	TermWeekly    ExamTerm = "weekly"
	TermMonthly   ExamTerm = "monthly"
	TermMidterm   ExamTerm = "midterm"
	TermFinalterm ExamTerm = "finalterm"
)

// Valid returns true when the exam term is supported.
func (t ExamTerm) Valid() bool {
	switch t {
	case TermWeekly, TermMonthly, TermMidterm, TermFinalterm:
		return true
	default:
		return false
	}
}

// Exam represents a document in the "exams" collection.
type Exam struct {
	ID            string    `json:"id"`
	ClassID       string    `json:"classID"`
	StudentID     string    `json:"studentID"`
	Subject       string    `json:"subject"`
	ExamTerm      ExamTerm  `json:"examTerm"`
	TotalMarks    float64   `json:"totalMarks"`
	ObtainedMarks float64   `json:"obtainedMarks"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Percentage derives obtained/total×100, 0 when total marks is 0.
func (e Exam) Percentage() float64 {
	if e.TotalMarks == 0 {
		return 0
	}
	return e.ObtainedMarks / e.TotalMarks * 100
}
