package domain

import "time"

// Thought is an author's note shown on the public site.
type Thought struct {
	ID          int64
	ThoughtDate time.Time // defaults to creation time
	ThoughtText string    // sanitized before persistence
}
