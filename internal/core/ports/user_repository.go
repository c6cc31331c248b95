package ports

import (
	"context"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

// UserRepository is the user directory. Lookups return domain.ErrUserNotFound
// when no record matches; Create returns domain.ErrUserExists on a unique
// violation of username or email.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}

// PrincipalDirectory is the narrow view the session resolver needs.
type PrincipalDirectory interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
}
