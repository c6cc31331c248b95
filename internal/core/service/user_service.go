package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// UserService implements profile reads and updates.
type UserService struct {
	repo   ports.UserRepository
	hasher ports.PasswordHasher
	codec  *TokenCodec
	clock  ports.Clock
	log    zerolog.Logger
}

func NewUserService(repo ports.UserRepository, hasher ports.PasswordHasher, codec *TokenCodec, clock ports.Clock, log zerolog.Logger) *UserService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &UserService{repo: repo, hasher: hasher, codec: codec, clock: clock, log: log}
}

// GetProfile returns an active user; deactivated accounts read as not found.
func (s *UserService) GetProfile(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of in. A changed username yields a
// new token pair because existing cookies name the old subject.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*ports.UpdateProfileResult, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	usernameChanged := false

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" && !strings.EqualFold(email, user.Email) {
			if err := s.ensureFree(ctx, s.repo.FindByEmail, email, user.ID, domain.ErrEmailTaken); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if *in.Username != "" && !domain.ValidUsername(username) {
			return nil, domain.ErrInvalidUsername
		}
		if username != "" && username != user.Username {
			if err := s.ensureFree(ctx, s.repo.FindByUsername, username, user.ID, domain.ErrUsernameTaken); err != nil {
				return nil, err
			}
			user.Username = username
			usernameChanged = true
		}
	}
	if in.FullName != nil {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Birthday != nil {
		b := *in.Birthday
		user.Birthday = &b
	}
	if in.Password != nil && *in.Password != "" {
		if len(*in.Password) < domain.MinPasswordLength {
			return nil, domain.ErrPasswordTooShort
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.clock.Now()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	result := &ports.UpdateProfileResult{User: updated}
	if usernameChanged {
		pair, err := s.codec.IssuePair(updated.Username)
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
		result.Tokens = &pair
	}

	s.log.Info().Str("user_id", updated.ID).Str("username", updated.Username).Msg("profile updated")
	return result, nil
}

func (s *UserService) ensureFree(
	ctx context.Context,
	find func(context.Context, string) (*domain.User, error),
	value, selfID string,
	taken error,
) error {
	other, err := find(ctx, value)
	switch {
	case err == nil && other.ID != selfID:
		return taken
	case err == nil, errors.Is(err, domain.ErrUserNotFound):
		return nil
	default:
		return fmt.Errorf("update profile: %w", err)
	}
}
