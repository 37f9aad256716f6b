package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/store"
)

// HousekeepingService periodically removes idle-expired session records so
// the sessions table does not grow without bound. Expiry is also enforced on
// every request by the SessionManager; this only reclaims rows of clients
// that never came back.
type HousekeepingService struct {
	Store       store.Store
	Logger      *slog.Logger
	Interval    time.Duration
	IdleTimeout time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// sweep interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, idleTimeout time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	return &HousekeepingService{
		Store:       st,
		Logger:      logger,
		Interval:    interval,
		IdleTimeout: idleTimeout,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker, blocking until any
// in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-s.IdleTimeout)

	removed, err := s.Store.Sessions().DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to sweep expired sessions", "error", err)
		return
	}
	if removed > 0 {
		s.Logger.Info("swept expired sessions", "removed", removed)
	}
}
