package domain

import "time"

// Process is an ordered step graph persisted as a single unit.
type Process struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Steps     Steps     `json:"steps"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ProcessCandidate is an externally authored process (for example an AI proposal).
// References may use draft names instead of ids until it is normalized.
type ProcessCandidate struct {
	Title string `json:"title"`
	Steps Steps  `json:"steps"`
}
