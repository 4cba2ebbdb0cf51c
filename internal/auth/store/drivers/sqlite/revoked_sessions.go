package sqlite

import (
	"context"
	"time"
)

type revokedSessionsRepo struct {
	db  dbtx
	now func() time.Time
}

// RevokeSession is idempotent; revoking twice keeps the first entry.
func (r *revokedSessionsRepo) RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revoked_sessions (session_id, expires_at, revoked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id) DO NOTHING`,
		sessionID, toMillis(expiresAt), toMillis(r.now()),
	)
	return err
}

func (r *revokedSessionsRepo) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_sessions WHERE session_id = ?)`, sessionID,
	).Scan(&revoked)
	return revoked, err
}

func (r *revokedSessionsRepo) DeleteExpiredRevokedSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
