package ports

import (
	"context"
	"time"
)

// GameInput carries the fields needed to create a game.
type GameInput struct {
	Name        string
	Year        int
	Description string
	Platforms   []string
}

// UpdateGameInput carries optional game changes; nil means unchanged.
type UpdateGameInput struct {
	Name        *string
	Year        *int
	Description *string
	Platforms   []string // nil = unchanged
}

// GameDetail is the view returned by the game service.
type GameDetail struct {
	ID          string
	Name        string
	Year        int
	Description string
	Platforms   []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListGamesInput carries all parameters for the list endpoint.
type ListGamesInput struct {
	Platform string
	Year     int
	Search   string
	Page     int
	Limit    int
}

// ListGamesResult is returned by ListGames.
type ListGamesResult struct {
	Items      []GameDetail
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// GameService defines use-case operations for the catalog.
type GameService interface {
	CreateGame(ctx context.Context, in GameInput) (*GameDetail, error)
	GetGame(ctx context.Context, id string) (*GameDetail, error)
	ListGames(ctx context.Context, in ListGamesInput) (*ListGamesResult, error)
	UpdateGame(ctx context.Context, id string, in UpdateGameInput) (*GameDetail, error)
	DeleteGame(ctx context.Context, id string) error
}
