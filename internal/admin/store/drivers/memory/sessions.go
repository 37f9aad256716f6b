// Package memory provides an in-memory Sessions driver for unit tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
)

type Sessions struct {
	mu   sync.Mutex
	byID map[string]domain.Session
}

var _ store.Sessions = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]domain.Session)}
}

func (m *Sessions) Create(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.byID[s.ID] = s
	return nil
}

func (m *Sessions) GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.TokenHash == tokenHash {
			return s, nil
		}
	}
	return domain.Session{}, store.ErrNotFound
}

func (m *Sessions) Update(ctx context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[s.ID]
	if !ok {
		return store.ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	m.byID[s.ID] = s
	return nil
}

func (m *Sessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *Sessions) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.byID {
		if s.LastActivity.Before(cutoff) {
			delete(m.byID, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored sessions. Test helper.
func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}
