package models

import "time"

// Collection names used in the record store.
const (
	CollectionProfiles   = "profiles"
	CollectionStudents   = "students"
	CollectionClasses    = "classes"
	CollectionAttendance = "attendance"
	CollectionExams      = "exams"
	CollectionBlogs      = "blogs"
	CollectionAds        = "ads"
	CollectionSettings   = "settings"
)

// ProfileRole distinguishes operator accounts from regular member profiles.
type ProfileRole string

const (
	RoleAdmin  ProfileRole = "ADMIN"
	RoleMember ProfileRole = "MEMBER"
)

// Profile represents a user document in the "profiles" collection.
// ReferralCount is denormalized: it duplicates the number of profiles whose
// ReferrerID points at this profile and is mutated only by the referral ledger.
type Profile struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Role           ProfileRole `json:"role,omitempty"`
	PasswordHash   string      `json:"passwordHash,omitempty"`
	Coins          float64     `json:"coins"`
	HourlyRate     float64     `json:"hourlyRate"`
	ReferralCode   string      `json:"referralCode"`
	ReferralByCode string      `json:"referralByCode,omitempty"`
	ReferrerID     string      `json:"referrerID,omitempty"`
	ReferralCount  int         `json:"referralCount"`
	ImageURL       string      `json:"imageURL,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Public returns a copy safe for API responses.
func (p Profile) Public() Profile {
	p.PasswordHash = ""
	return p
}
