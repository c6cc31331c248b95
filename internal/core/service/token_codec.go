package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gameshelf/gameshelf/internal/core/ports"
)

const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	refreshTokenType = "refresh"
)

var (
	ErrSignatureInvalid   = errors.New("token signature invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenMalformed     = errors.New("token malformed")
	ErrClaimMissing       = errors.New("token claim missing")
	ErrWrongTokenKind     = errors.New("wrong token kind")
	ErrSecretsNotDistinct = errors.New("access and refresh secrets must be non-empty and distinct")
)

// TokenKind distinguishes access from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// TokenConfig is the signing configuration. It is copied by NewTokenCodec and
// never mutated afterwards.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Claims is the decoded payload of a token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	Kind      TokenKind
}

// tokenClaims is the wire shape: {"sub", "exp"} plus "token_type" on refresh tokens.
type tokenClaims struct {
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 tokens with separate access and refresh secrets.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         ports.Clock
}

func NewTokenCodec(cfg TokenConfig, clock ports.Clock) (*TokenCodec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 ||
		subtle.ConstantTimeCompare(cfg.AccessSecret, cfg.RefreshSecret) == 1 {
		return nil, ErrSecretsNotDistinct
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenCodec{
		accessSecret:  append([]byte(nil), cfg.AccessSecret...),
		refreshSecret: append([]byte(nil), cfg.RefreshSecret...),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		clock:         clock,
	}, nil
}

func (c *TokenCodec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs {sub, exp=now+accessTTL} with the access secret.
func (c *TokenCodec) IssueAccess(subject string) (string, error) {
	return c.issue(subject, "", c.accessTTL, c.accessSecret)
}

// IssueRefresh signs {sub, exp=now+refreshTTL, token_type=refresh} with the refresh secret.
func (c *TokenCodec) IssueRefresh(subject string) (string, error) {
	return c.issue(subject, refreshTokenType, c.refreshTTL, c.refreshSecret)
}

// IssuePair issues a fresh access and refresh token for subject.
func (c *TokenCodec) IssuePair(subject string) (ports.TokenPair, error) {
	access, err := c.IssueAccess(subject)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := c.IssueRefresh(subject)
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (c *TokenCodec) issue(subject, tokenType string, ttl time.Duration, secret []byte) (string, error) {
	if subject == "" {
		return "", ErrClaimMissing
	}
	claims := tokenClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(c.clock.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies token under secret and returns its claims. The signature is
// checked before expiry, so a forged expired token reports ErrSignatureInvalid.
func (c *TokenCodec) Decode(token string, secret []byte) (*Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}
	if tc.Subject == "" {
		return nil, ErrClaimMissing
	}

	kind := KindAccess
	if tc.TokenType != "" {
		kind = TokenKind(tc.TokenType)
	}
	return &Claims{
		Subject:   tc.Subject,
		ExpiresAt: tc.ExpiresAt.Time,
		Kind:      kind,
	}, nil
}

// DecodeAccess accepts only tokens signed with the access secret and carrying no token_type.
func (c *TokenCodec) DecodeAccess(token string) (*Claims, error) {
	claims, err := c.Decode(token, c.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

// DecodeRefresh accepts only tokens signed with the refresh secret and tagged token_type=refresh.
func (c *TokenCodec) DecodeRefresh(token string) (*Claims, error) {
	claims, err := c.Decode(token, c.refreshSecret)
	if err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrClaimMissing
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
