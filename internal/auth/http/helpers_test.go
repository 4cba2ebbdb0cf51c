package http

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/internal/auth/store"
	"github.com/shopking/auth/internal/auth/store/drivers/sqlite"
	"github.com/shopking/auth/pkg/authsdk"
	"github.com/shopking/auth/pkg/cryptox"
	"github.com/shopking/auth/pkg/httpx"
	"github.com/shopking/auth/pkg/jwtx"
)

const testResetURLBase = "http://localhost:3000/reset-password/"

// linkCatcher keeps the last reset link instead of mailing it.
type linkCatcher struct {
	mu   sync.Mutex
	last service.PasswordResetEvent
	n    int
}

func (c *linkCatcher) NotifyPasswordReset(_ context.Context, evt service.PasswordResetEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = evt
	c.n++
	return nil
}

func (c *linkCatcher) token(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotZero(t, c.n, "expected a reset link")
	return strings.TrimPrefix(c.last.URL, testResetURLBase)
}

func (c *linkCatcher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type testServer struct {
	*httptest.Server
	client *authsdk.SDKClient
	links  *linkCatcher
	store  store.Store
}

var generous = httpx.RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}

func newTestServer(t *testing.T, limits RateLimits) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	vault, err := cryptox.NewPasswordVault(bcrypt.MinCost)
	require.NoError(t, err)

	sessions, err := jwtx.NewSessionIssuer(jwtx.SessionOptions{
		Secret: []byte("http-test-secret-http-test-secret"),
		Issuer: "shopking-auth",
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	links := &linkCatcher{}
	denylist := store.NewDenylistAdapter(st)

	r := NewRouter("test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.Limits = limits
	r.AuthService = &service.AuthService{
		Store:        st,
		Vault:        vault,
		Resets:       service.NewResetTokenIssuer(0),
		Sessions:     sessions,
		Notifier:     links,
		Denylist:     denylist,
		ResetURLBase: testResetURLBase,
		AdminEmails:  []string{"admin@x.com"},
	}
	r.UserService = &service.UserService{Store: st}
	r.Database = st
	r.Denylist = denylist
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, client: authsdk.NewSDKClient(srv.URL), links: links, store: st}
}

func generousLimits() RateLimits {
	return RateLimits{Strict: generous, Moderate: generous, Lenient: generous}
}

func (ts *testServer) register(t *testing.T, email, password string) *authsdk.UserResponse {
	t.Helper()
	u, err := ts.client.Register(context.Background(), authsdk.RegisterRequest{
		Name: "Alice", Email: email, Mobile: "0400000000", Password: password,
	})
	require.NoError(t, err)
	return u
}

func (ts *testServer) login(t *testing.T, email, password string) *authsdk.Session {
	t.Helper()
	s, err := ts.client.Login(context.Background(), email, password)
	require.NoError(t, err)
	return s
}
