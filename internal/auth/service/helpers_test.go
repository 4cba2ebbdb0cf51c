package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopking/auth/internal/auth/store"
	"github.com/shopking/auth/internal/auth/store/drivers/sqlite"
	"github.com/shopking/auth/pkg/cryptox"
	"github.com/shopking/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// captureNotifier records every reset event instead of delivering it.
type captureNotifier struct {
	mu     sync.Mutex
	events []PasswordResetEvent
	err    error
}

func (n *captureNotifier) NotifyPasswordReset(_ context.Context, evt PasswordResetEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.events = append(n.events, evt)
	return nil
}

func (n *captureNotifier) last(t *testing.T) PasswordResetEvent {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.events, "expected a reset notification")
	return n.events[len(n.events)-1]
}

type testEnv struct {
	auth     *AuthService
	users    *UserService
	store    store.Store
	clock    *testClock
	notifier *captureNotifier
}

const testResetURLBase = "http://localhost:3000/reset-password/"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	clock := &testClock{t: time.Now().UTC().Truncate(time.Second)}

	vault, err := cryptox.NewPasswordVault(bcrypt.MinCost)
	require.NoError(t, err)

	sessions, err := jwtx.NewSessionIssuer(jwtx.SessionOptions{
		Secret: []byte("test-secret-test-secret-test-secret!"),
		Issuer: "shopking-auth",
		TTL:    time.Hour,
		Now:    clock.Now,
	})
	require.NoError(t, err)

	notifier := &captureNotifier{}
	return &testEnv{
		auth: &AuthService{
			Store:        st,
			Vault:        vault,
			Resets:       &ResetTokenIssuer{TTL: DefaultResetTTL, Now: clock.Now},
			Sessions:     sessions,
			Notifier:     notifier,
			Denylist:     store.NewDenylistAdapter(st),
			ResetURLBase: testResetURLBase,
			AdminEmails:  []string{"boss@x.com"},
		},
		users:    &UserService{Store: st},
		store:    st,
		clock:    clock,
		notifier: notifier,
	}
}

func registerInput(email, password string) RegisterInput {
	return RegisterInput{Email: email, Password: password, Name: "Alice", Mobile: "0400000000"}
}
