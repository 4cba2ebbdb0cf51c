package authsdk

import (
	"context"
	"net/http"
	"time"
)

// Session holds a bearer token. There is no refresh: once the token
// expires every call fails with ErrInvalidToken and the caller logs in
// again.
type Session struct {
	client *SDKClient

	token     string
	userID    string
	role      string
	expiresAt time.Time
}

func newSession(c *SDKClient, login LoginResponse) *Session {
	return &Session{
		client:    c,
		token:     login.Token,
		userID:    login.UserID,
		role:      login.Role,
		expiresAt: login.ExpiresAt,
	}
}

func (s *Session) Token() string { return s.token }

func (s *Session) UserID() string { return s.userID }

func (s *Session) Role() string { return s.role }

// ExpiresAt is zero for sessions built with NewSessionFromToken.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// ChangePassword replaces the password after re-checking the current one.
func (s *Session) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/change-password", req)
	if err != nil {
		return err
	}

	var msg MessageResponse
	return decodeJSON(resp, &msg, http.StatusOK)
}

// Logout revokes this session's token on the server.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
