package ports

import (
	"context"
	"time"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

// Clock is the time source for token issue and expiry checks.
type Clock interface {
	Now() time.Time
}

// PasswordHasher is a one-way hash with verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// LoginGuard tracks failed logins per username.
type LoginGuard interface {
	Locked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// RegisterInput is the DTO passed from the transport layer to AuthService.Register.
type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// TokenPair holds a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	User   *domain.User
	Tokens TokenPair
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}
