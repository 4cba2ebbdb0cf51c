package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopking/auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrConflict      = errors.New("store: concurrent modification")
)

// Store is the root data access interface. Concrete drivers implement it
// and expose sub-repositories so a transaction can only ever be started
// from the root, never nested.
type Store interface {
	Users() Users
	RevokedSessions() RevokedSessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail expects the normalised email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetUserByResetTokenHash finds the user holding a pending reset with
	// this digest, expired or not.
	GetUserByResetTokenHash(ctx context.Context, hash string) (domain.User, error)

	// CreateUser inserts u at version 1. ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// SaveUser writes every mutable field of u if the stored version still
	// equals u.Version, returning the row with its bumped version.
	// ErrConflict if another writer got there first.
	SaveUser(ctx context.Context, u domain.User) (domain.User, error)

	// ListUsers returns every user, newest first.
	ListUsers(ctx context.Context) ([]domain.User, error)

	DeleteUser(ctx context.Context, id string) error

	// ClearExpiredResetChallenges drops reset challenges that expired
	// before now and reports how many were cleared.
	ClearExpiredResetChallenges(ctx context.Context, now time.Time) (int64, error)
}

// RevokedSessions is the logout denylist. Entries only need to outlive
// the token they name.
type RevokedSessions interface {
	RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)

	// DeleteExpiredRevokedSessions removes entries whose tokens expired
	// before now.
	DeleteExpiredRevokedSessions(ctx context.Context, now time.Time) (int64, error)
}
