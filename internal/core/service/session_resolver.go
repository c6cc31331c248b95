package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// ErrPrincipalNotFound reports a valid token whose subject is not an active user.
var ErrPrincipalNotFound = errors.New("principal not found")

// SessionState is the outcome of resolving a pair of session cookies.
type SessionState int

const (
	Unauthenticated SessionState = iota
	Authenticated
	RefreshNeeded
)

func (s SessionState) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case RefreshNeeded:
		return "refresh_needed"
	default:
		return "unauthenticated"
	}
}

// Session is the resolver's verdict for one request. Tokens is only set when
// State is RefreshNeeded. Reason records why resolution failed and must not
// reach the client.
type Session struct {
	State     SessionState
	Principal *domain.User
	Tokens    ports.TokenPair
	Reason    error
}

func unauthenticated(reason error) Session {
	return Session{State: Unauthenticated, Reason: reason}
}

// SessionResolver turns optional access/refresh tokens into a Session.
type SessionResolver struct {
	codec     *TokenCodec
	directory ports.PrincipalDirectory
	log       zerolog.Logger
}

func NewSessionResolver(codec *TokenCodec, directory ports.PrincipalDirectory, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{codec: codec, directory: directory, log: log}
}

// Resolve applies, in order:
//  1. no tokens: Unauthenticated
//  2. refresh only: validate refresh, look up subject, RefreshNeeded with a new pair
//  3. access present: valid -> Authenticated; expired -> fall back to rule 2 when a
//     refresh token is present; any other failure -> Unauthenticated
//
// The returned error is non-nil only when the directory itself fails.
func (r *SessionResolver) Resolve(ctx context.Context, accessToken, refreshToken string) (Session, error) {
	if accessToken == "" && refreshToken == "" {
		return unauthenticated(nil), nil
	}
	if accessToken == "" {
		return r.refresh(ctx, refreshToken)
	}

	claims, err := r.codec.DecodeAccess(accessToken)
	switch {
	case err == nil:
		user, err := r.lookup(ctx, claims.Subject)
		if err != nil {
			if errors.Is(err, ErrPrincipalNotFound) {
				return unauthenticated(err), nil
			}
			return Session{}, err
		}
		return Session{State: Authenticated, Principal: user}, nil
	case errors.Is(err, ErrTokenExpired):
		if refreshToken == "" {
			return unauthenticated(err), nil
		}
		return r.refresh(ctx, refreshToken)
	default:
		return unauthenticated(err), nil
	}
}

func (r *SessionResolver) refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := r.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return unauthenticated(err), nil
	}

	user, err := r.lookup(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return unauthenticated(err), nil
		}
		return Session{}, err
	}

	pair, err := r.codec.IssuePair(user.Username)
	if err != nil {
		return Session{}, fmt.Errorf("reissue tokens: %w", err)
	}

	r.log.Debug().Str("username", user.Username).Msg("session refreshed")
	return Session{State: RefreshNeeded, Principal: user, Tokens: pair}, nil
}

func (r *SessionResolver) lookup(ctx context.Context, username string) (*domain.User, error) {
	user, err := r.directory.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	if !user.IsActive {
		return nil, ErrPrincipalNotFound
	}
	return user, nil
}
