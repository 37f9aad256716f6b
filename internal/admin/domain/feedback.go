package domain

import "time"

type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "pending"
	FeedbackRead     FeedbackStatus = "read"
	FeedbackArchived FeedbackStatus = "archived"
)

// Feedback is a reader message submitted through the public site form.
// The dashboard only transitions pending -> read and deletes; creation
// happens outside the admin surface.
type Feedback struct {
	ID        int64
	Name      string
	Email     string
	Message   string
	Rating    int // 1-5
	Status    FeedbackStatus
	CreatedAt time.Time
}
