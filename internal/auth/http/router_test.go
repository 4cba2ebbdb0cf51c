package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/httpx"
	"github.com/shopking/auth/pkg/idx"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())

	u := ts.register(t, "Alice@X.com", "secret1")
	require.Equal(t, "alice@x.com", u.Email)
	require.Equal(t, "customer", u.Role)
	require.NotEmpty(t, u.ID)

	_, err := ts.client.Register(ctx, authsdk.RegisterRequest{
		Name: "Other", Email: "alice@x.com", Mobile: "1", Password: "other",
	})
	require.ErrorIs(t, err, authsdk.ErrDuplicateEmail)

	s := ts.login(t, "alice@x.com", "secret1")
	require.Equal(t, u.ID, s.UserID())
	require.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt(), 5*time.Second)

	me, err := s.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)
	require.Equal(t, "Alice", me.Name)
}

func TestRegister_ValidationFields(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	_, err := ts.client.Register(context.Background(), authsdk.RegisterRequest{Email: "nope"})
	require.ErrorIs(t, err, authsdk.ErrInvalidInput)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Fields, "email")
	require.Contains(t, apiErr.Fields, "password")
	require.Contains(t, apiErr.Fields, "name")
	require.Contains(t, apiErr.Fields, "mobile")
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, body.Error)
}

func TestLogin_UniformFailure(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())
	ts.register(t, "a@x.com", "secret1")

	_, wrongPassword := ts.client.Login(ctx, "a@x.com", "nope")
	_, unknownEmail := ts.client.Login(ctx, "ghost@x.com", "nope")

	require.ErrorIs(t, wrongPassword, authsdk.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, authsdk.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())
	ts.register(t, "a@x.com", "secret1")

	require.NoError(t, ts.client.ForgotPassword(ctx, "ghost@x.com"))
	require.Zero(t, ts.links.count(), "unknown emails get no link")

	require.NoError(t, ts.client.ForgotPassword(ctx, "a@x.com"))
	token := ts.links.token(t)
	require.Len(t, token, 64)

	require.NoError(t, ts.client.ResetPassword(ctx, token, "newpass"))

	_, err := ts.client.Login(ctx, "a@x.com", "secret1")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	ts.login(t, "a@x.com", "newpass")

	err = ts.client.ResetPassword(ctx, token, "again")
	require.ErrorIs(t, err, authsdk.ErrInvalidResetToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())
	ts.register(t, "a@x.com", "secret1")
	s := ts.login(t, "a@x.com", "secret1")

	err := s.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "newpass", ConfirmPassword: "newpass",
	})
	require.ErrorIs(t, err, authsdk.ErrWrongOldPassword)

	err = s.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "different",
	})
	require.ErrorIs(t, err, authsdk.ErrPasswordMismatch)

	require.NoError(t, s.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "newpass",
	}))
	ts.login(t, "a@x.com", "newpass")
}

func TestBearerFailures(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())

	t.Run("missing token", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/me")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), `error="invalid_token"`)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ts.client.NewSessionFromToken("garbage").Me(ctx)
		require.ErrorIs(t, err, authsdk.ErrInvalidToken)
	})

	t.Run("logged out token", func(t *testing.T) {
		ts.register(t, "a@x.com", "secret1")
		s := ts.login(t, "a@x.com", "secret1")
		require.NoError(t, s.Logout(ctx))

		_, err := s.Me(ctx)
		require.ErrorIs(t, err, authsdk.ErrInvalidToken)

		var apiErr *authsdk.APIError
		require.True(t, errors.As(err, &apiErr))
		require.Equal(t, "session_revoked", apiErr.Description)
	})
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())

	admin := ts.register(t, "admin@x.com", "secret1")
	require.Equal(t, "admin", admin.Role)
	alice := ts.register(t, "alice@x.com", "secret1")

	as := ts.login(t, "admin@x.com", "secret1")
	cs := ts.login(t, "alice@x.com", "secret1")

	_, err := cs.ListUsers(ctx)
	require.ErrorIs(t, err, authsdk.ErrForbidden)

	users, err := as.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	got, err := as.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", got.Email)

	_, err = as.GetUser(ctx, idx.New().String())
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	require.ErrorIs(t, as.DeleteUser(ctx, admin.ID), authsdk.ErrInvalidInput)
	require.NoError(t, as.DeleteUser(ctx, alice.ID))
	require.ErrorIs(t, as.DeleteUser(ctx, alice.ID), authsdk.ErrNotFound)
}

func TestUserRoutes_MalformedID(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())

	ts.register(t, "admin@x.com", "secret1")
	alice := ts.register(t, "alice@x.com", "secret1")
	as := ts.login(t, "admin@x.com", "secret1")

	for _, id := range []string{"missing", "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3Z", alice.ID + "0"} {
		_, err := as.GetUser(ctx, id)
		require.ErrorIs(t, err, authsdk.ErrNotFound, "get %q", id)
		require.ErrorIs(t, as.DeleteUser(ctx, id), authsdk.ErrNotFound, "delete %q", id)
	}

	// alice survives every attempt above.
	got, err := as.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)
}

func TestUserResponseOmitsSecrets(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	resp, err := http.Post(ts.URL+"/api/register", "application/json", bytes.NewBufferString(
		`{"name":"A","email":"a@x.com","mobile":"1","password":"secret1"}`,
	))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	for _, k := range []string{"password", "password_hash", "reset_token_hash", "reset_expires_at"} {
		require.NotContains(t, raw, k)
	}
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	ts := newTestServer(t, generousLimits())

	live, err := ts.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Denylist)
	require.Equal(t, "disabled", ready.Checks.Notifier)
}

func TestLoginRateLimit(t *testing.T) {
	ctx := context.Background()
	strict := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	ts := newTestServer(t, RateLimits{Strict: strict, Moderate: generous, Lenient: generous})

	for range 2 {
		_, err := ts.client.Login(ctx, "a@x.com", "nope")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)
	}

	_, err := ts.client.Login(ctx, "a@x.com", "nope")
	require.ErrorIs(t, err, authsdk.ErrRateLimited)
}

func TestSwaggerMounted(t *testing.T) {
	ts := newTestServer(t, generousLimits())

	resp, err := http.Get(ts.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	require.Contains(t, doc["paths"], "/api/login")
}
