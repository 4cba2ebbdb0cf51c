package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopking/auth/internal/auth/store/drivers/redis"
	"github.com/stretchr/testify/require"
)

func newTestDenylist(t *testing.T) (*redis.Denylist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	d, err := redis.Connect(context.Background(), redis.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d, mr
}

func TestDenylist_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	d, mr := newTestDenylist(t)

	revoked, err := d.IsSessionRevoked(ctx, "sid-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, d.RevokeSession(ctx, "sid-1", time.Now().Add(time.Minute)))

	revoked, err = d.IsSessionRevoked(ctx, "sid-1")
	require.NoError(t, err)
	require.True(t, revoked)
	require.True(t, mr.Exists("auth:revoked_session:sid-1"))

	mr.FastForward(2 * time.Minute)

	revoked, err = d.IsSessionRevoked(ctx, "sid-1")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestDenylist_SkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	d, mr := newTestDenylist(t)

	require.NoError(t, d.RevokeSession(ctx, "old", time.Now().Add(-time.Second)))
	require.False(t, mr.Exists("auth:revoked_session:old"))
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redis.Connect(context.Background(), redis.Options{Addr: addr})
	require.Error(t, err)
}

func TestConnect_RequiresAuth(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	_, err := redis.Connect(context.Background(), redis.Options{Addr: mr.Addr()})
	require.Error(t, err)

	d, err := redis.Connect(context.Background(), redis.Options{Addr: mr.Addr(), Password: "secret"})
	require.NoError(t, err)
	require.NoError(t, d.Ping(context.Background()))
	_ = d.Close()
}
