package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// UserCache is a read-through cache in front of a UserRepository. Only
// FindByID and FindByUsername are cached; writes invalidate both keys.
// Redis failures are logged and fall through to the repository.
type UserCache struct {
	ports.UserRepository
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewUserCache(inner ports.UserRepository, client *redis.Client, ttl time.Duration, log zerolog.Logger) *UserCache {
	return &UserCache{UserRepository: inner, client: client, ttl: ttl, log: log}
}

// cachedUser keeps the password hash, which domain.User hides from JSON.
type cachedUser struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

func (c *UserCache) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return c.readThrough(ctx, idKey(id), func() (*domain.User, error) {
		return c.UserRepository.FindByID(ctx, id)
	})
}

func (c *UserCache) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return c.readThrough(ctx, usernameKey(username), func() (*domain.User, error) {
		return c.UserRepository.FindByUsername(ctx, username)
	})
}

func (c *UserCache) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	keys := []string{idKey(user.ID), usernameKey(user.Username)}
	if prev, err := c.UserRepository.FindByID(ctx, user.ID); err == nil {
		keys = append(keys, usernameKey(prev.Username))
	}

	updated, err := c.UserRepository.Update(ctx, user)
	c.invalidate(ctx, keys...)
	return updated, err
}

func (c *UserCache) readThrough(ctx context.Context, key string, load func() (*domain.User, error)) (*domain.User, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cu cachedUser
		if jsonErr := json.Unmarshal(raw, &cu); jsonErr == nil {
			u := cu.User
			u.PasswordHash = cu.PasswordHash
			return &u, nil
		}
		c.log.Warn().Str("key", key).Msg("discarding unreadable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
	}

	u, err := load()
	if err != nil {
		return nil, err
	}
	c.store(ctx, u)
	return u, nil
}

func (c *UserCache) store(ctx context.Context, u *domain.User) {
	raw, err := json.Marshal(cachedUser{User: *u, PasswordHash: u.PasswordHash})
	if err != nil {
		return
	}
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, idKey(u.ID), raw, c.ttl)
		p.Set(ctx, usernameKey(u.Username), raw, c.ttl)
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID).Msg("user cache write failed")
	}
}

func (c *UserCache) invalidate(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Strs("keys", keys).Msg("user cache invalidation failed")
	}
}

func idKey(id string) string             { return "user:id:" + id }
func usernameKey(username string) string { return "user:name:" + username }
