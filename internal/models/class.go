package models

import (
	"strings"
	"time"
)

// ClassNames is the fixed set of legal class names.
var ClassNames = []string{
	"Class 1", "Class 2", "Class 3", "Class 4", "Class 5", "Class 6",
	"Class 7", "Class 8", "Class 9", "Class 10", "Class 11", "Class 12",
}

// ValidClassName reports whether the name belongs to the fixed enumerated set.
func ValidClassName(name string) bool {
	for _, candidate := range ClassNames {
		if candidate == name {
			return true
		}
	}
	return false
}

// Class represents a document in the "classes" collection.
type Class struct {
	ID        string    `json:"id"`
	ClassName string    `json:"className"`
	Subjects  []string  `json:"subjects"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeSubjects filters blanks and duplicates while preserving order.
func NormalizeSubjects(subjects []string) []string {
	seen := make(map[string]struct{}, len(subjects))
	result := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		trimmed := strings.TrimSpace(subject)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
