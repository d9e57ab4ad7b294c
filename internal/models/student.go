package models

import (
	"regexp"
	"strings"
	"time"
)

// Student represents a document in the "students" collection.
// StudentClass snapshots the class name at enrollment time.
type Student struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	FatherName     string    `json:"fatherName"`
	RegistrationNo string    `json:"registrationNo"`
	BFormNo        string    `json:"bFormNo"`
	ClassID        string    `json:"classID"`
	StudentClass   string    `json:"studentClass"`
	GuardianName   string    `json:"guardianName,omitempty"`
	GuardianPhone  string    `json:"guardianPhone,omitempty"`
	ImageURL       string    `json:"imageURL,omitempty"`
	GuardianImage  string    `json:"guardianImageURL,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

var nonDigits = regexp.MustCompile(`\D`)

// FormatBForm renders raw B-Form input as NNNNN-NNNNNNN-N. Non-digit characters
// are stripped and input longer than 13 digits is truncated before formatting.
func FormatBForm(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) > 13 {
		digits = digits[:13]
	}
	var b strings.Builder
	for i, r := range digits {
		if i == 5 || i == 12 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidBForm reports whether the value carries exactly 13 digits.
func ValidBForm(raw string) bool {
	return len(nonDigits.ReplaceAllString(raw, "")) == 13
}
