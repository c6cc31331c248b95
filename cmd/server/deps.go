package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gameshelf/gameshelf/internal/api"
	"github.com/gameshelf/gameshelf/internal/api/cookies"
	"github.com/gameshelf/gameshelf/internal/api/handler"
	"github.com/gameshelf/gameshelf/internal/api/middleware"
	"github.com/gameshelf/gameshelf/internal/core/ports"
	"github.com/gameshelf/gameshelf/internal/core/service"
	"github.com/gameshelf/gameshelf/internal/infrastructure/db/mongo"
	"github.com/gameshelf/gameshelf/internal/infrastructure/db/postgres"
	"github.com/gameshelf/gameshelf/internal/infrastructure/db/redis"
	"github.com/gameshelf/gameshelf/internal/pkg/config"
	"github.com/gameshelf/gameshelf/internal/web"
	"github.com/gameshelf/gameshelf/pkg/logger"
)

// bcryptCost of zero selects bcrypt.DefaultCost.
const bcryptCost = 0

// stores is what a storage driver contributes to the dependency graph.
type stores struct {
	users  ports.UserRepository
	games  ports.GameRepository
	checks []handler.HealthCheck
}

// wire opens every backing store and assembles the router dependencies. The
// returned cleanup closes them in reverse order.
func wire(ctx context.Context, cfg *config.Config, autoMigrate bool) (api.Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (api.Dependencies, func(), error) {
		cleanup()
		return api.Dependencies{}, func() {}, err
	}

	var (
		st  stores
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		st, err = openMongo(ctx, cfg, &closers)
	default:
		st, err = openPostgres(ctx, cfg, autoMigrate, &closers)
	}
	if err != nil {
		return fail(err)
	}

	var guard ports.LoginGuard
	users := st.users
	if cfg.Redis.Enabled {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = client.Close() })
		guard = loginGuard(client, cfg)
		users = redis.NewUserCache(users, client, cfg.Redis.UserCacheTTL, logger.Component("user-cache"))
		st.checks = append(st.checks, redis.NewCheck(client))
	}

	clock := service.SystemClock{}
	codec, err := service.NewTokenCodec(cfg.TokenConfig(), clock)
	if err != nil {
		return fail(fmt.Errorf("token codec: %w", err))
	}
	hasher := service.NewBcryptHasher(bcryptCost)

	ipExtractor, err := middleware.IPExtractor(cfg.Auth.TrustedProxies)
	if err != nil {
		return fail(err)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return fail(fmt.Errorf("templates: %w", err))
	}

	deps := api.Dependencies{
		Log:          logger.Component("http"),
		Resolver:     service.NewSessionResolver(codec, users, logger.Component("session")),
		Jar:          sessionJar(cfg.Auth.CookieSecure, codec),
		AuthService:  service.NewAuthService(users, hasher, codec, guard, clock, logger.Component("auth")),
		UserService:  service.NewUserService(users, hasher, codec, clock, logger.Component("users")),
		GameService:  service.NewGameService(st.games, clock, logger.Component("games")),
		HealthChecks: st.checks,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Auth.RatePerMinute,
			Burst:             cfg.Auth.RateBurst,
		},
		Renderer:    renderer,
		IPExtractor: ipExtractor,
	}
	return deps, cleanup, nil
}

// sessionJar sizes cookie max-ages from the codec so they always match token lifetimes.
func sessionJar(secure bool, codec *service.TokenCodec) cookies.Jar {
	return cookies.NewJar(secure, codec.AccessTTL(), codec.RefreshTTL())
}

func loginGuard(client *goredis.Client, cfg *config.Config) ports.LoginGuard {
	if cfg.Auth.LoginMaxFailures <= 0 {
		return nil
	}
	return redis.NewLoginGuard(client, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginLockout)
}

func openPostgres(ctx context.Context, cfg *config.Config, autoMigrate bool, closers *[]func()) (stores, error) {
	if autoMigrate {
		m, err := postgres.NewMigrator(cfg.Postgres.URL)
		if err != nil {
			return stores{}, err
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			return stores{}, err
		}
	}

	pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
	if err != nil {
		return stores{}, err
	}
	*closers = append(*closers, pool.Close)

	return stores{
		users:  postgres.NewUserRepository(pool),
		games:  postgres.NewGameRepository(pool),
		checks: []handler.HealthCheck{postgres.NewPinger(pool)},
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, closers *[]func()) (stores, error) {
	store, err := mongo.Open(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  logger.ServiceName,
	})
	if err != nil {
		return stores{}, err
	}
	*closers = append(*closers, func() { _ = store.Close(context.Background()) })

	if err := store.EnsureIndexes(ctx); err != nil {
		return stores{}, err
	}

	return stores{
		users:  store.Users(),
		games:  store.Games(),
		checks: []handler.HealthCheck{store},
	}, nil
}
