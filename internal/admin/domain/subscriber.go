package domain

import "time"

// Subscriber is a newsletter signup. The dashboard can delete and export;
// signups come from the public site.
type Subscriber struct {
	ID             int64
	Email          string
	DateSubscribed time.Time
}
