package auth_test

import (
	"net/http"
	"testing"

	"github.com/shopking/auth/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin verifies the strict profile (5 req/min) guards login.
func TestRateLimitLogin(t *testing.T) {
	c := setupAuthContainerWithDefaultRateLimits(t)
	client := authsdk.NewSDKClient(c.BaseURL)
	ctx := t.Context()

	for i := range 5 {
		_, err := client.Login(ctx, "nobody@example.com", "wrong")
		require.ErrorIs(t, err, authsdk.ErrInvalidCredentials, "request %d should reach the handler", i+1)
	}

	_, err := client.Login(ctx, "nobody@example.com", "wrong")
	assertAPIError(t, err, http.StatusTooManyRequests, authsdk.ErrorCodeRateLimited)
}
