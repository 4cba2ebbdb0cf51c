package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/shopking/auth/pkg/authsdk"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		SessionSecret:        strings.Repeat("k", 32),
		Issuer:               "shopking-auth",
		SessionTTL:           time.Hour,
		ResetTTL:             15 * time.Minute,
		PasswordCost:         4,
		DatabaseFile:         filepath.Join(t.TempDir(), "auth.db"),
		ResetURLBase:         "http://localhost:3000/reset-password/",
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		Port:                 8080,
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func readiness(t *testing.T, h http.Handler) authsdk.HealthResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp authsdk.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Checks)
	return resp
}

func TestNew_SQLiteOnly(t *testing.T) {
	a, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.closeBackends() })

	require.Nil(t, a.redis)
	require.Nil(t, a.publisher)

	resp := readiness(t, a.router)
	require.Equal(t, "ok", resp.Checks.Database)
	require.Equal(t, "ok", resp.Checks.Denylist)
	require.Equal(t, "disabled", resp.Checks.Notifier)
}

func TestNew_RedisDenylist(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()

	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.closeBackends() })

	require.NotNil(t, a.redis)
	require.Equal(t, "ok", readiness(t, a.router).Checks.Denylist)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.SessionSecret = ""

	_, err := New(cfg)
	require.ErrorContains(t, err, "AUTH_SESSION_SECRET")
}

func TestNew_UnreachableRedis(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(cfg)
	require.ErrorContains(t, err, "redis")
}
