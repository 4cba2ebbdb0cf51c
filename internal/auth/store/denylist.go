package store

import (
	"context"
	"time"
)

// DenylistAdapter serves the revoked-session repository of a Store as a
// standalone denylist, so callers outside a transaction need not hold the
// Store itself.
type DenylistAdapter struct {
	store Store
}

func NewDenylistAdapter(s Store) *DenylistAdapter {
	return &DenylistAdapter{store: s}
}

func (a *DenylistAdapter) RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error {
	return a.store.RevokedSessions().RevokeSession(ctx, sessionID, expiresAt)
}

func (a *DenylistAdapter) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	return a.store.RevokedSessions().IsSessionRevoked(ctx, sessionID)
}

func (a *DenylistAdapter) Ping(ctx context.Context) error {
	return a.store.Ping(ctx)
}
