package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/internal/auth/store"
)

const userColumns = `id, email, name, mobile, role, password_hash,
	reset_token_hash, reset_expires_at, version, created_at, updated_at`

type usersRepo struct {
	db  dbtx
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u                domain.User
		role             string
		resetHash        sql.NullString
		resetExpires     sql.NullInt64
		created, updated int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Profile.Name, &u.Profile.Mobile, &role, &u.PasswordHash,
		&resetHash, &resetExpires, &u.Version, &created, &updated,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	if resetHash.Valid && resetExpires.Valid {
		u.Reset = domain.NewResetChallenge(resetHash.String, fromMillis(resetExpires.Int64))
	}
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}

func resetColumns(c domain.ResetChallenge) (sql.NullString, sql.NullInt64) {
	if !c.Present() {
		return sql.NullString{}, sql.NullInt64{}
	}
	return sql.NullString{String: c.TokenHash(), Valid: true},
		sql.NullInt64{Int64: toMillis(c.ExpiresAt()), Valid: true}
}

func (r *usersRepo) getOne(ctx context.Context, where string, arg any) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *usersRepo) GetUserByResetTokenHash(ctx context.Context, hash string) (domain.User, error) {
	if hash == "" {
		return domain.User{}, store.ErrNotFound
	}
	return r.getOne(ctx, `reset_token_hash = ?`, hash)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := fromMillis(toMillis(r.now()))
	u.Version = 1
	u.CreatedAt = now
	u.UpdatedAt = now
	resetHash, resetExpires := resetColumns(u.Reset)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Profile.Name, u.Profile.Mobile, string(u.Role), u.PasswordHash,
		resetHash, resetExpires, u.Version, toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrAlreadyExists
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *usersRepo) SaveUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := fromMillis(toMillis(r.now()))
	resetHash, resetExpires := resetColumns(u.Reset)

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email = ?, name = ?, mobile = ?, role = ?, password_hash = ?,
			reset_token_hash = ?, reset_expires_at = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		u.Email, u.Profile.Name, u.Profile.Mobile, string(u.Role), u.PasswordHash,
		resetHash, resetExpires, toMillis(now),
		u.ID, u.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, store.ErrAlreadyExists
		}
		return domain.User{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if n == 0 {
		return domain.User{}, r.missOrConflict(ctx, u.ID)
	}

	u.Version++
	u.UpdatedAt = now
	return u, nil
}

// missOrConflict explains why a guarded update touched no rows.
func (r *usersRepo) missOrConflict(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case err != nil:
		return err
	default:
		return store.ErrConflict
	}
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) ClearExpiredResetChallenges(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			reset_token_hash = NULL, reset_expires_at = NULL,
			version = version + 1, updated_at = ?
		WHERE reset_expires_at IS NOT NULL AND reset_expires_at < ?`,
		toMillis(r.now()), toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
