package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginGuard counts failed logins per username and reports a lockout once
// maxFailures is reached. The counter expires lockout after the first failure.
// Key format: login:failures:<lowercased username>
type LoginGuard struct {
	client      *redis.Client
	maxFailures int64
	lockout     time.Duration
}

// NewLoginGuard creates a LoginGuard. A non-positive maxFailures disables lockout.
func NewLoginGuard(client *redis.Client, maxFailures int, lockout time.Duration) *LoginGuard {
	return &LoginGuard{client: client, maxFailures: int64(maxFailures), lockout: lockout}
}

func (g *LoginGuard) Locked(ctx context.Context, username string) (bool, error) {
	if g.maxFailures <= 0 {
		return false, nil
	}
	n, err := g.client.Get(ctx, g.key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login guard check: %w", err)
	}
	return n >= g.maxFailures, nil
}

// RecordFailure bumps the counter and arms its expiry in one MULTI/EXEC.
// EXPIRE NX keeps the window anchored at the first failure and re-arms a
// counter that somehow lost its TTL.
func (g *LoginGuard) RecordFailure(ctx context.Context, username string) error {
	key := g.key(username)
	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, g.lockout)
		return nil
	})
	if err != nil {
		return fmt.Errorf("login guard record: %w", err)
	}
	return nil
}

func (g *LoginGuard) Reset(ctx context.Context, username string) error {
	return g.client.Del(ctx, g.key(username)).Err()
}

func (g *LoginGuard) key(username string) string {
	return "login:failures:" + strings.ToLower(username)
}
