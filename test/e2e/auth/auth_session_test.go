package auth_test

import (
	"net/http"
	"testing"

	"github.com/shopking/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginMe(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()

	user := registerUser(t, client, "Alice@Example.com", "secret1")
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "customer", user.Role)

	_, err := client.Register(ctx, authsdk.RegisterRequest{
		Name: "Impostor", Email: "alice@example.com", Mobile: "1", Password: "other",
	})
	assertAPIError(t, err, http.StatusConflict, authsdk.ErrorCodeDuplicateEmail)

	session, err := client.Login(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, user.ID, session.UserID())
	require.False(t, session.ExpiresAt().IsZero())

	me, err := session.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, user.ID, me.ID)
	require.Equal(t, "Test User", me.Name)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()

	registerUser(t, client, "bob@example.com", "secret1")

	_, wrongPassword := client.Login(ctx, "bob@example.com", "wrong")
	_, unknownEmail := client.Login(ctx, "nobody@example.com", "wrong")

	assertAPIError(t, wrongPassword, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
	assertAPIError(t, unknownEmail, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestChangePasswordAndLogout(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()

	registerUser(t, client, "carol@example.com", "secret1")
	session, err := client.Login(ctx, "carol@example.com", "secret1")
	require.NoError(t, err)

	err = session.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "newpass", ConfirmPassword: "newpass",
	})
	assertAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeWrongOldPassword)

	require.NoError(t, session.ChangePassword(ctx, authsdk.ChangePasswordRequest{
		OldPassword: "secret1", NewPassword: "newpass", ConfirmPassword: "newpass",
	}))

	// The session that changed the password is still valid.
	_, err = session.Me(ctx)
	require.NoError(t, err)

	_, err = client.Login(ctx, "carol@example.com", "secret1")
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidCredentials)

	fresh, err := client.Login(ctx, "carol@example.com", "newpass")
	require.NoError(t, err)

	require.NoError(t, session.Logout(ctx))
	_, err = session.Me(ctx)
	assertAPIError(t, err, http.StatusUnauthorized, authsdk.ErrorCodeInvalidToken)

	_, err = fresh.Me(ctx)
	require.NoError(t, err, "logging out one session leaves others valid")
}
