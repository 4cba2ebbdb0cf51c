package auth_test

import (
	"net/http"
	"testing"

	"github.com/shopking/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestAdminUserManagement(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()

	admin := registerUser(t, client, adminEmail, "admin-pass")
	require.Equal(t, "admin", admin.Role)
	erin := registerUser(t, client, "erin@example.com", "secret1")

	adminSession, err := client.Login(ctx, adminEmail, "admin-pass")
	require.NoError(t, err)
	erinSession, err := client.Login(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)

	_, err = erinSession.ListUsers(ctx)
	assertAPIError(t, err, http.StatusForbidden, authsdk.ErrorCodeForbidden)

	users, err := adminSession.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	got, err := adminSession.GetUser(ctx, erin.ID)
	require.NoError(t, err)
	require.Equal(t, "erin@example.com", got.Email)

	err = adminSession.DeleteUser(ctx, admin.ID)
	assertAPIError(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidInput)

	require.NoError(t, adminSession.DeleteUser(ctx, erin.ID))

	_, err = adminSession.GetUser(ctx, erin.ID)
	assertAPIError(t, err, http.StatusNotFound, authsdk.ErrorCodeNotFound)
}
