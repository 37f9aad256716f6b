package service

import (
	"context"
	"fmt"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
)

// Per-session fixed-window defaults: 30 requests per 60-second window.
const (
	DefaultRequestLimit = 30
	DefaultRateWindow   = 60 * time.Second
)

// RateDecision is the outcome of a rate limit check.
type RateDecision int

const (
	RateAllowed RateDecision = iota
	RateLimited
)

// SessionRateLimiter caps requests per session with a fixed-window counter
// persisted on the session record. This is not a token bucket: bursts
// straddling a window boundary can admit up to roughly twice the nominal
// rate. Accepted imprecision, not a bug.
//
// The counter also increments for requests that are later rejected on auth
// grounds; preserved as specified.
type SessionRateLimiter struct {
	Sessions store.Sessions
	Limit    int
	Window   time.Duration

	// Now is overridable for tests; defaults to time.Now().UTC.
	Now func() time.Time
}

func (l *SessionRateLimiter) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now().UTC()
}

func (l *SessionRateLimiter) limit() int {
	if l.Limit > 0 {
		return l.Limit
	}
	return DefaultRequestLimit
}

func (l *SessionRateLimiter) window() time.Duration {
	if l.Window > 0 {
		return l.Window
	}
	return DefaultRateWindow
}

// CheckAndIncrement counts the current request against the session's window
// and persists the updated counter. The window anchor (last_request) only
// moves when the window rolls over.
func (l *SessionRateLimiter) CheckAndIncrement(ctx context.Context, s *domain.Session) (RateDecision, error) {
	now := l.now()

	if s.LastRequest.IsZero() || now.Sub(s.LastRequest) > l.window() {
		s.RequestCount = 0
		s.LastRequest = now
	}
	s.RequestCount++

	if err := l.Sessions.Update(ctx, *s); err != nil {
		return RateAllowed, fmt.Errorf("failed to persist rate counter: %w", err)
	}

	if s.RequestCount > l.limit() {
		return RateLimited, nil
	}
	return RateAllowed, nil
}
