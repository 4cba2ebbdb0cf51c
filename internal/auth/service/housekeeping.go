package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopking/auth/internal/auth/store"
)

// HousekeepingService periodically clears expired reset challenges and
// revoked-session entries. Expired data is already inert; this only keeps
// the tables small.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults a non-positive interval to one hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. Call it once the database is migrated.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup drops expired reset challenges and denylist entries. Each step
// is independent so one failure does not block the other.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	now := s.now()
	s.Logger.Debug("starting housekeeping cleanup")

	resets, err := s.Store.Users().ClearExpiredResetChallenges(ctx, now)
	if err != nil {
		s.Logger.Error("failed to clear expired reset challenges", "error", err)
	}

	sessions, err := s.Store.RevokedSessions().DeleteExpiredRevokedSessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired revoked sessions", "error", err)
	}

	s.Logger.Info("housekeeping cleanup completed",
		"reset_challenges_cleared", resets,
		"revoked_sessions_deleted", sessions,
	)
}

func (s *HousekeepingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
