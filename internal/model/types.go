package model

import "time"

// Event is a single stored feed event. ID is the feed-assigned identifier and
// the primary key of the event store; Raw keeps the original JSON object as
// received, uninterpreted.
type Event struct {
	ID        string    `json:"id"`
	Repo      string    `json:"repo"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Raw       string    `json:"raw,omitempty"`
}

// Pair identifies one repository/event-type combination.
type Pair struct {
	Repo string `json:"repo"`
	Type string `json:"type"`
}

// FetchStats is the outcome of the most recent feed fetch for one repository.
type FetchStats struct {
	Fetched   int       `json:"fetched"`
	Inserted  int       `json:"inserted"`
	Dropped   int       `json:"dropped"`
	LastError string    `json:"last_error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
