package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "auth:revoked_session:"

// Options configures the connection to the denylist instance.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Denylist keeps revoked session IDs in Redis with a TTL equal to the
// remaining life of the token, so entries clean themselves up.
type Denylist struct {
	rdb *goredis.Client
	now func() time.Time
}

// Connect dials Redis and verifies it answers a PING.
func Connect(ctx context.Context, opts Options) (*Denylist, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return New(rdb), nil
}

// New wraps an existing client.
func New(rdb *goredis.Client) *Denylist {
	return &Denylist{rdb: rdb, now: time.Now}
}

func key(sessionID string) string { return keyPrefix + sessionID }

// RevokeSession records sessionID until expiresAt. Already-expired tokens
// need no entry.
func (d *Denylist) RevokeSession(ctx context.Context, sessionID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(d.now())
	if ttl <= 0 {
		return nil
	}
	if err := d.rdb.Set(ctx, key(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: revoke session: %w", err)
	}
	return nil
}

func (d *Denylist) IsSessionRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := d.rdb.Exists(ctx, key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis: check session: %w", err)
	}
	return n > 0, nil
}

func (d *Denylist) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

func (d *Denylist) Close() error {
	return d.rdb.Close()
}
