package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 10 * time.Second
	queryTimeout   = 10 * time.Second
)

// Config selects the deployment and database holding the users and games collections.
type Config struct {
	URI      string
	Database string
	AppName  string
	Timeout  time.Duration
}

// Store owns the client and exposes the repositories built on its database.
type Store struct {
	client *mongo.Client
	users  *UserRepository
	games  *GameRepository
}

// Open connects, pings the primary and builds the repositories. It does not
// create indexes; call EnsureIndexes for that.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = connectTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return &Store{
		client: client,
		users:  NewUserRepository(db),
		games:  NewGameRepository(db),
	}, nil
}

func (s *Store) Users() *UserRepository { return s.users }

func (s *Store) Games() *GameRepository { return s.games }

// EnsureIndexes creates the unique indexes both directories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := s.games.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("game indexes: %w", err)
	}
	return nil
}

// Name and Ping make the store a readiness check.
func (s *Store) Name() string { return "mongo" }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }
