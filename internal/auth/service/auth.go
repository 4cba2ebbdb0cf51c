package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopking/auth/internal/auth/domain"
	"github.com/shopking/auth/internal/auth/store"
	"github.com/shopking/auth/pkg/cryptox"
	"github.com/shopking/auth/pkg/idx"
	"github.com/shopking/auth/pkg/jwtx"
	"github.com/shopking/auth/pkg/slogx"
)

// SessionDenylist records logged-out sessions until their tokens expire.
type SessionDenylist interface {
	RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// AuthService is the single entry point for every credential and session
// operation. It owns no state beyond its collaborators.
type AuthService struct {
	Store    store.Store
	Vault    *cryptox.PasswordVault
	Resets   *ResetTokenIssuer
	Sessions *jwtx.SessionIssuer
	Notifier ResetNotifier

	// Denylist is optional; without it logout is a no-op and tokens live
	// until they expire.
	Denylist SessionDenylist

	// ResetURLBase is prefixed to the raw token to build the link mailed
	// to the user.
	ResetURLBase string

	// AdminEmails register with the admin role instead of customer.
	AdminEmails []string

	dummyOnce sync.Once
	dummyHash string
}

// Register creates a customer account. The email is trimmed and
// lower-cased before the uniqueness check.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	in.Email = domain.NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Mobile = strings.TrimSpace(in.Mobile)
	if err := validateInput(in); err != nil {
		return domain.User{}, err
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, in.Email); err == nil {
		log.Info("registration rejected, email already registered")
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, s.internal(ctx, "lookup email", err)
	}

	hash, err := s.hashPassword(ctx, in.Password, "password")
	if err != nil {
		return domain.User{}, err
	}

	role := domain.RoleCustomer
	if slices.Contains(s.AdminEmails, in.Email) {
		role = domain.RoleAdmin
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		ID:           idx.New().String(),
		Email:        in.Email,
		Profile:      domain.Profile{Name: in.Name, Mobile: in.Mobile},
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost a race with a concurrent registration.
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, s.internal(ctx, "create user", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

// Login exchanges an email and password for a session token. Unknown
// emails and wrong passwords are indistinguishable to the caller and cost
// the same bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.Session, error) {
	log := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if err := validateInput(loginInput{Email: email, Password: password}); err != nil {
		return domain.Session{}, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		s.burnPasswordCheck(password)
		log.Warn("login failed, unknown email")
		return domain.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.Session{}, s.internal(ctx, "lookup email", err)
	}

	if err := s.checkPassword(ctx, user, password, ErrInvalidCredentials); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Warn("login failed, wrong password", slog.String("user_id", user.ID))
		}
		return domain.Session{}, err
	}

	token, claims, err := s.Sessions.Issue(user.ID, string(user.Role))
	if err != nil {
		return domain.Session{}, s.internal(ctx, "issue session", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID))
	return domain.Session{Token: token, Claims: sessionClaims(claims)}, nil
}

// ChangePassword replaces the caller's password after re-checking the
// current one. Outstanding sessions stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, subjectID, oldPassword, newPassword, confirmPassword string) error {
	if err := validateInput(changePasswordInput{
		OldPassword:     oldPassword,
		NewPassword:     newPassword,
		ConfirmPassword: confirmPassword,
	}); err != nil {
		return err
	}
	if newPassword != confirmPassword {
		return ErrMismatch
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, subjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := s.checkPassword(ctx, user, oldPassword, ErrWrongOldPassword); err != nil {
			return err
		}

		hash, err := s.hashPassword(ctx, newPassword, "new_password")
		if err != nil {
			return err
		}
		user.PasswordHash = hash

		_, err = tx.Users().SaveUser(ctx, user)
		return err
	})
	if err != nil {
		return s.internal(ctx, "change password", err)
	}

	slogx.FromContext(ctx).Info("password changed", slog.String("user_id", subjectID))
	return nil
}

// ForgotPassword starts a reset for email. It reports success whether or
// not the email is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if err := validateInput(forgotPasswordInput{Email: email}); err != nil {
		return err
	}

	var event *PasswordResetEvent
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByEmail(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		raw, challenge, err := s.Resets.Issue()
		if err != nil {
			return err
		}
		// A newer request replaces any challenge still outstanding.
		user.Reset = challenge

		if _, err := tx.Users().SaveUser(ctx, user); err != nil {
			return err
		}
		event = &PasswordResetEvent{UserID: user.ID, Email: user.Email, URL: s.ResetURLBase + raw}
		return nil
	})
	if err != nil {
		return s.internal(ctx, "issue reset", err)
	}

	if event == nil {
		log.Warn("password reset requested for unknown email")
		return nil
	}

	// A delivery failure must answer exactly like an unknown email. The
	// challenge stays stored and the next request replaces it.
	if err := s.Notifier.NotifyPasswordReset(ctx, *event); err != nil {
		log.Error("password reset delivery failed",
			slog.String("user_id", event.UserID),
			slog.Any("error", err),
		)
		return nil
	}
	log.Info("password reset issued", slog.String("user_id", event.UserID))
	return nil
}

// ResetPassword redeems a raw reset token. The challenge is consumed in
// the same write that stores the new password, so a token works once.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return ErrInvalidToken
	}
	if err := validateInput(resetPasswordInput{Password: newPassword}); err != nil {
		return err
	}

	var userID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByResetTokenHash(ctx, cryptox.FingerprintToken(rawToken))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		if err := s.Resets.Verify(rawToken, user.Reset); err != nil {
			return err
		}

		hash, err := s.hashPassword(ctx, newPassword, "password")
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		s.Resets.Consume(&user)

		if _, err := tx.Users().SaveUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrConflict) {
				// Someone else redeemed or replaced the challenge first.
				return ErrInvalidToken
			}
			return err
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrExpiredToken) {
			slogx.FromContext(ctx).Warn("password reset rejected", slog.String("reason", err.Error()))
		}
		return s.internal(ctx, "reset password", err)
	}

	slogx.FromContext(ctx).Info("password reset completed", slog.String("user_id", userID))
	return nil
}

// AuthenticateRequest turns a bearer token into verified claims.
func (s *AuthService) AuthenticateRequest(ctx context.Context, token string) (domain.SessionClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.SessionClaims{}, ErrMissingToken
	}

	claims, err := s.Sessions.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.SessionClaims{}, ErrSessionExpired
		}
		slogx.FromContext(ctx).Debug("session token rejected", slog.Any("error", err))
		return domain.SessionClaims{}, ErrInvalidSignature
	}

	if s.Denylist != nil && claims.ID != "" {
		revoked, err := s.Denylist.IsSessionRevoked(ctx, claims.ID)
		if err != nil {
			return domain.SessionClaims{}, s.internal(ctx, "check denylist", err)
		}
		if revoked {
			return domain.SessionClaims{}, ErrSessionRevoked
		}
	}

	return sessionClaims(claims), nil
}

// Logout revokes the session named by claims until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims domain.SessionClaims) error {
	if s.Denylist == nil || claims.SessionID == "" {
		return nil
	}
	if err := s.Denylist.RevokeSession(ctx, claims.SessionID, claims.ExpiresAt); err != nil {
		return s.internal(ctx, "revoke session", err)
	}
	slogx.FromContext(ctx).Info("session revoked", slog.String("user_id", claims.SubjectID))
	return nil
}

// checkPassword verifies password against the stored hash, answering
// mismatch with onMismatch.
func (s *AuthService) checkPassword(ctx context.Context, user domain.User, password string, onMismatch error) error {
	ok, err := s.Vault.Verify(password, user.PasswordHash)
	if err != nil {
		slogx.FromContext(ctx).Error("stored password hash is unreadable",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return ErrCorruptCredential
	}
	if !ok {
		return onMismatch
	}
	return nil
}

func (s *AuthService) hashPassword(ctx context.Context, password, field string) (string, error) {
	hash, err := s.Vault.Hash(password)
	switch {
	case errors.Is(err, cryptox.ErrEmptyPassword):
		return "", fieldError(field, field+" is required")
	case errors.Is(err, cryptox.ErrPasswordTooLong):
		return "", fieldError(field, field+" must be at most 72 bytes")
	case err != nil:
		return "", s.internal(ctx, "hash password", err)
	}
	return hash, nil
}

// burnPasswordCheck spends the same bcrypt work a real comparison would.
func (s *AuthService) burnPasswordCheck(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Vault.Hash("not-a-real-password")
	})
	if s.dummyHash != "" {
		_, _ = s.Vault.Verify(password, s.dummyHash)
	}
}

// internal passes taxonomy errors through and logs anything else as an
// internal failure.
func (s *AuthService) internal(ctx context.Context, op string, err error) error {
	if IsKnown(err) {
		return err
	}
	if errors.Is(err, store.ErrConflict) {
		return ErrConflict
	}
	slogx.FromContext(ctx).Error("auth operation failed", slog.String("op", op), slog.Any("error", err))
	return ErrInternal
}

func sessionClaims(c jwtx.Claims) domain.SessionClaims {
	out := domain.SessionClaims{
		SubjectID: c.Subject,
		Role:      domain.Role(c.Role),
		SessionID: c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.UTC()
	}
	return out
}
