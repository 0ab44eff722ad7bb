package domain

import "time"

// Outcomes of a failed batch insert.
const (
	// BatchRejected means the database refused the reviews, so none of them were stored.
	BatchRejected = "rejected"
	// BatchUnknown means the insert timed out or lost its connection and may
	// have been applied anyway. Check for the reviews before replaying them.
	BatchUnknown = "unknown"
)

// FailedReview records buffered submissions whose insert failed.
type FailedReview struct {
	ID       string
	Reviews  []Review
	Error    string
	Status   string
	FailedAt time.Time
}
