package store

import (
	"context"
	"errors"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite for
// production, memory for tests) implement this. It exposes sub-repositories
// to keep concerns tidy and testable.
//
// Every mutation in this system is a single parameterized statement, so no
// transaction machinery is exposed; concurrent writers to the same record id
// resolve last-write-wins.
type Store interface {
	Sessions() Sessions
	Thoughts() Thoughts
	Feedbacks() Feedbacks
	Subscribers() Subscribers

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Sessions is the pluggable session store. The cookie token never touches
// disk: rows are keyed by the token's SHA-256 fingerprint.
type Sessions interface {
	// Create inserts a new session record (id is provided by app via ULID).
	Create(ctx context.Context, s domain.Session) error

	// GetByTokenHash looks up a session by the hashed cookie token.
	GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)

	// Update persists mutated session state (activity, counters, login state,
	// regenerated token hash). Matches on the record id.
	Update(ctx context.Context, s domain.Session) error

	// Delete removes a session record by id.
	Delete(ctx context.Context, id string) error

	// DeleteIdleBefore removes sessions whose last activity predates cutoff.
	// Returns the number of rows removed (housekeeping).
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type Thoughts interface {
	// Create inserts a thought and returns its assigned id.
	Create(ctx context.Context, t domain.Thought) (int64, error)

	// List returns all thoughts ordered by thought_date descending.
	List(ctx context.Context) ([]domain.Thought, error)

	// UpdateText replaces the text of an existing thought.
	UpdateText(ctx context.Context, id int64, text string) error

	// Delete removes a thought by id.
	Delete(ctx context.Context, id int64) error
}

type Feedbacks interface {
	// Create inserts a feedback row (used by the public-facing form, which
	// lives outside the dashboard).
	Create(ctx context.Context, f domain.Feedback) (int64, error)

	// List returns all feedback ordered by created_at descending.
	List(ctx context.Context) ([]domain.Feedback, error)

	// MarkRead transitions a pending feedback to read.
	MarkRead(ctx context.Context, id int64) error

	// Delete removes a feedback row by id.
	Delete(ctx context.Context, id int64) error
}

type Subscribers interface {
	// Create inserts a subscriber (public signup path).
	Create(ctx context.Context, email string, at time.Time) (int64, error)

	// List returns all subscribers ordered by date_subscribed descending.
	List(ctx context.Context) ([]domain.Subscriber, error)

	// Delete removes a subscriber by id.
	Delete(ctx context.Context, id int64) error
}
