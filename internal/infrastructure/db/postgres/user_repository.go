package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

const userColumns = `id, username, email, COALESCE(full_name, ''), password_hash,
	birthday, avatar, is_active, is_superuser, created_at, updated_at`

type UserRepository struct {
	db pool
}

func NewUserRepository(db pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email, full_name, password_hash, birthday, avatar,
			is_active, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.Birthday, u.Avatar,
		u.IsActive, u.IsSuperuser, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	created := *u
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// FindByEmail matches case-insensitively, mirroring the unique index.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET username = $2, email = $3, full_name = NULLIF($4, ''), password_hash = $5,
			birthday = $6, avatar = $7, is_active = $8, is_superuser = $9, updated_at = $10
		WHERE id = $1`,
		u.ID, u.Username, u.Email, u.FullName, u.PasswordHash, u.Birthday, u.Avatar,
		u.IsActive, u.IsSuperuser, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrUserNotFound
	}
	updated := *u
	return &updated, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Birthday, &u.Avatar, &u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}
