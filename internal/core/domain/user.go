package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidUsername    = errors.New("username must be between 6 and 50 characters")
	ErrLoginLocked        = errors.New("too many failed login attempts")
	ErrForbidden          = errors.New("access forbidden")
)

// Length limits enforced by the service layer in addition to form validation.
const (
	MinPasswordLength = 8
	MinUsernameLength = 6
	MaxUsernameLength = 50
)

// ValidUsername reports whether an already trimmed username has an accepted length.
func ValidUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= MinUsernameLength && n <= MaxUsernameLength
}

// User is the principal behind a session. Username and Email are both unique.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FullName     string     `json:"full_name,omitempty"`
	PasswordHash string     `json:"-"`
	Birthday     *time.Time `json:"birthday,omitempty"`
	Avatar       *string    `json:"avatar,omitempty"`
	IsActive     bool       `json:"is_active"`
	IsSuperuser  bool       `json:"is_superuser"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DisplayName falls back to the username when no full name was given.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
