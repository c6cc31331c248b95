package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	codec  *TokenCodec
	guard  ports.LoginGuard
	clock  ports.Clock
	log    zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	codec *TokenCodec,
	guard ports.LoginGuard,
	clock ports.Clock,
	log zerolog.Logger,
) *AuthService {
	if guard == nil {
		guard = noopLoginGuard{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AuthService{repo: repo, hasher: hasher, codec: codec, guard: guard, clock: clock, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if !domain.ValidUsername(username) {
		return nil, domain.ErrInvalidUsername
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}
	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.clock.Now()
	user := &domain.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues an access/refresh pair. Unknown users
// and wrong passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	locked, err := s.guard.Locked(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login guard check failed, continuing")
	} else if locked {
		return nil, domain.ErrLoginLocked
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Unknown usernames pay the same hash cost as known ones.
			s.hasher.Verify(password, s.dummyPasswordHash())
			s.recordFailure(ctx, username)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if ok := s.hasher.Verify(password, user.PasswordHash); !ok || !user.IsActive {
		s.recordFailure(ctx, username)
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.guard.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login guard")
	}

	pair, err := s.codec.IssuePair(user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("user logged in")
	return &ports.LoginResult{User: user, Tokens: pair}, nil
}

// dummyPasswordHash is hashed once with the configured hasher so its cost
// matches stored hashes.
func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("gameshelf-unknown-user")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *AuthService) recordFailure(ctx context.Context, username string) {
	if err := s.guard.RecordFailure(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to record login failure")
	}
}

type noopLoginGuard struct{}

func (noopLoginGuard) Locked(context.Context, string) (bool, error) { return false, nil }
func (noopLoginGuard) RecordFailure(context.Context, string) error  { return nil }
func (noopLoginGuard) Reset(context.Context, string) error          { return nil }
