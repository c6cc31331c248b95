package ports

import (
	"context"
	"time"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

// UpdateProfileInput carries optional profile changes; nil means unchanged.
type UpdateProfileInput struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
	Birthday *time.Time
}

// UpdateProfileResult reports the updated user and, when the username
// changed, a token pair issued for the new subject.
type UpdateProfileResult struct {
	User   *domain.User
	Tokens *TokenPair
}

type UserService interface {
	GetProfile(ctx context.Context, username string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*UpdateProfileResult, error)
}
