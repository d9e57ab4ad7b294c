package models

import "time"

// Blog represents a document in the "blogs" collection.
type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"imageURL,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ad represents a document in the "ads" collection.
type Ad struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageURL,omitempty"`
	TargetURL   string    `json:"targetURL,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MiningRateDocID is the fixed settings document holding the mining rate.
const MiningRateDocID = "mining-rate"

// MiningRate is the hourly coin accrual rate applied to member profiles.
type MiningRate struct {
	ID           string    `json:"id"`
	CoinsPerHour float64   `json:"coinsPerHour"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UpdatedBy    string    `json:"updatedBy,omitempty"`
}
