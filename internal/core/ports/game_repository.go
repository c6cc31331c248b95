package ports

import (
	"context"

	"github.com/gameshelf/gameshelf/internal/core/domain"
)

// ListGamesFilter carries the query parameters for listing games.
type ListGamesFilter struct {
	Platform string // optional: exact platform name, case-insensitive
	Year     int    // optional: 0 = any
	Search   string // optional: partial match on name
	Page     int    // 1-based
	Limit    int    // capped at 100 by the service
}

// GameRepository defines persistence operations for the game catalog.
type GameRepository interface {
	Create(ctx context.Context, g *domain.Game) error
	FindByID(ctx context.Context, id string) (*domain.Game, error)
	FindByName(ctx context.Context, name string) (*domain.Game, error)
	// List returns a page of games matching filter and the total count.
	List(ctx context.Context, filter ListGamesFilter) ([]*domain.Game, int64, error)
	Update(ctx context.Context, g *domain.Game) error
	Delete(ctx context.Context, id string) error
}
