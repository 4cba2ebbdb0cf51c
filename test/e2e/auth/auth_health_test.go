package auth_test

import (
	"testing"

	"github.com/shopking/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	c := setupAuthContainer(t)
	client := authsdk.NewSDKClient(c.BaseURL)

	live, err := client.GetLiveness(t.Context())
	assertHealthy(t, live, err)
	require.NotEmpty(t, live.Version)

	ready, err := client.GetReadiness(t.Context())
	assertHealthy(t, ready, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Denylist)
	require.Equal(t, "disabled", ready.Checks.Notifier)
}
