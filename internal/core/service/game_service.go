package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type GameService struct {
	repo   ports.GameRepository
	clock  ports.Clock
	logger zerolog.Logger
}

func NewGameService(repo ports.GameRepository, clock ports.Clock, logger zerolog.Logger) *GameService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &GameService{repo: repo, clock: clock, logger: logger}
}

// CreateGame adds a game to the catalog. Names are unique.
func (s *GameService) CreateGame(ctx context.Context, in ports.GameInput) (*ports.GameDetail, error) {
	name := strings.TrimSpace(in.Name)
	if len(name) < domain.MinGameNameLength {
		return nil, fmt.Errorf("%w: name must be at least %d characters", domain.ErrInvalidGame, domain.MinGameNameLength)
	}
	if !domain.YearInRange(in.Year) {
		return nil, fmt.Errorf("%w: year must be between %d and %d", domain.ErrInvalidGame, domain.MinGameYear, domain.MaxGameYear)
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	game := &domain.Game{
		ID:          ulid.Make().String(),
		Name:        name,
		Year:        in.Year,
		Description: strings.TrimSpace(in.Description),
		Platforms:   domain.NormalizePlatforms(in.Platforms),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, game); err != nil {
		s.logger.Error().Err(err).Msg("failed to create game")
		return nil, err
	}

	s.logger.Info().Str("game_id", game.ID).Str("name", game.Name).Msg("game created")
	return toGameDetail(game), nil
}

func (s *GameService) GetGame(ctx context.Context, id string) (*ports.GameDetail, error) {
	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toGameDetail(game), nil
}

// ListGames returns a page of games. Page defaults to 1, limit to 20 and is capped at 100.
func (s *GameService) ListGames(ctx context.Context, in ports.ListGamesInput) (*ports.ListGamesResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	switch {
	case limit < 1:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}

	games, total, err := s.repo.List(ctx, ports.ListGamesFilter{
		Platform: strings.TrimSpace(in.Platform),
		Year:     in.Year,
		Search:   strings.TrimSpace(in.Search),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	items := make([]ports.GameDetail, 0, len(games))
	for _, g := range games {
		items = append(items, *toGameDetail(g))
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &ports.ListGamesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *GameService) UpdateGame(ctx context.Context, id string, in ports.UpdateGameInput) (*ports.GameDetail, error) {
	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if len(name) < domain.MinGameNameLength {
			return nil, fmt.Errorf("%w: name must be at least %d characters", domain.ErrInvalidGame, domain.MinGameNameLength)
		}
		if name != game.Name {
			if err := s.ensureNameFree(ctx, name, game.ID); err != nil {
				return nil, err
			}
			game.Name = name
		}
	}
	if in.Year != nil {
		if !domain.YearInRange(*in.Year) {
			return nil, fmt.Errorf("%w: year must be between %d and %d", domain.ErrInvalidGame, domain.MinGameYear, domain.MaxGameYear)
		}
		game.Year = *in.Year
	}
	if in.Description != nil {
		game.Description = strings.TrimSpace(*in.Description)
	}
	if in.Platforms != nil {
		game.Platforms = domain.NormalizePlatforms(in.Platforms)
	}
	game.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, game); err != nil {
		return nil, err
	}

	s.logger.Info().Str("game_id", game.ID).Msg("game updated")
	return toGameDetail(game), nil
}

func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("game_id", id).Msg("game deleted")
	return nil
}

func (s *GameService) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return domain.ErrGameExists
	case err == nil, errors.Is(err, domain.ErrGameNotFound):
		return nil
	default:
		return fmt.Errorf("check game name: %w", err)
	}
}

func toGameDetail(g *domain.Game) *ports.GameDetail {
	platforms := make([]string, len(g.Platforms))
	copy(platforms, g.Platforms)
	return &ports.GameDetail{
		ID:          g.ID,
		Name:        g.Name,
		Year:        g.Year,
		Description: g.Description,
		Platforms:   platforms,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}
}
