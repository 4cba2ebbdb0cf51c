package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/internal/auth/store"
	"github.com/shopking/auth/pkg/slogx"
)

// UserService serves account reads and the admin-only user management.
// Authorisation is enforced by the router, not here.
type UserService struct {
	Store store.Store
}

// GetUser fetches a user by id.
func (s *UserService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, mapUserErr(ctx, "get user", err)
	}
	return u, nil
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, claims domain.SessionClaims) (domain.User, error) {
	return s.GetUser(ctx, claims.SubjectID)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, mapUserErr(ctx, "list users", err)
	}
	return users, nil
}

// DeleteUser removes an account. Admins cannot delete themselves, which
// keeps at least the acting admin around.
func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return fieldError("id", "cannot delete your own account")
	}
	if err := s.Store.Users().DeleteUser(ctx, userID); err != nil {
		return mapUserErr(ctx, "delete user", err)
	}
	slogx.FromContext(ctx).Info("user deleted",
		slog.String("user_id", userID),
		slog.String("deleted_by", actorID),
	)
	return nil
}

func mapUserErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	slogx.FromContext(ctx).Error("user operation failed", slog.String("op", op), slog.Any("error", err))
	return ErrInternal
}
