package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

// likeEscaper makes LIKE wildcards in user search text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const gameSelect = `
	SELECT g.id, g.name, g.year, COALESCE(g.description, ''), g.created_at, g.updated_at,
		COALESCE(array_agg(p.name ORDER BY p.name) FILTER (WHERE p.name IS NOT NULL), '{}')
	FROM games g
	LEFT JOIN game_platforms gp ON gp.game_id = g.id
	LEFT JOIN platforms p ON p.id = gp.platform_id`

type GameRepository struct {
	db pool
}

func NewGameRepository(db pool) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts the game and links its platforms in one transaction.
// Unknown platforms are created on the fly.
func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO games (id, name, year, description, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		g.ID, g.Name, g.Year, g.Description, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrGameExists
		}
		return fmt.Errorf("insert game: %w", err)
	}

	if err := linkPlatforms(ctx, tx, g.ID, g.Platforms); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit game: %w", err)
	}
	return nil
}

func (r *GameRepository) FindByID(ctx context.Context, id string) (*domain.Game, error) {
	return r.findOne(ctx, gameSelect+` WHERE g.id = $1 GROUP BY g.id`, id)
}

func (r *GameRepository) FindByName(ctx context.Context, name string) (*domain.Game, error) {
	return r.findOne(ctx, gameSelect+` WHERE g.name = $1 GROUP BY g.id`, name)
}

func (r *GameRepository) List(ctx context.Context, f ports.ListGamesFilter) ([]*domain.Game, int64, error) {
	where, args := listConditions(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM games g`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf("%s%s GROUP BY g.id ORDER BY g.name LIMIT $%d OFFSET $%d",
		gameSelect, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := make([]*domain.Game, 0, limit)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	return games, total, nil
}

func (r *GameRepository) Update(ctx context.Context, g *domain.Game) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE games SET name = $2, year = $3, description = NULLIF($4, ''), updated_at = $5
		WHERE id = $1`,
		g.ID, g.Name, g.Year, g.Description, g.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrGameExists
		}
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM game_platforms WHERE game_id = $1`, g.ID); err != nil {
		return fmt.Errorf("clear platforms: %w", err)
	}
	if err := linkPlatforms(ctx, tx, g.ID, g.Platforms); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit game: %w", err)
	}
	return nil
}

// Delete removes the game; platform links cascade.
func (r *GameRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func (r *GameRepository) findOne(ctx context.Context, query string, arg any) (*domain.Game, error) {
	g, err := scanGame(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	return g, nil
}

func scanGame(row pgx.Row) (*domain.Game, error) {
	var g domain.Game
	if err := row.Scan(&g.ID, &g.Name, &g.Year, &g.Description, &g.CreatedAt, &g.UpdatedAt, &g.Platforms); err != nil {
		return nil, err
	}
	return &g, nil
}

func linkPlatforms(ctx context.Context, tx pgx.Tx, gameID string, platforms []string) error {
	for _, name := range platforms {
		var platformID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO platforms (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`, name,
		).Scan(&platformID)
		if err != nil {
			return fmt.Errorf("upsert platform %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO game_platforms (game_id, platform_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, gameID, platformID,
		); err != nil {
			return fmt.Errorf("link platform %q: %w", name, err)
		}
	}
	return nil
}

func listConditions(f ports.ListGamesFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Platform != "" {
		args = append(args, f.Platform)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM game_platforms fgp JOIN platforms fp ON fp.id = fgp.platform_id
			WHERE fgp.game_id = g.id AND LOWER(fp.name) = LOWER($%d))`, len(args)))
	}
	if f.Year != 0 {
		args = append(args, f.Year)
		conds = append(conds, fmt.Sprintf("g.year = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+likeEscaper.Replace(s)+"%")
		conds = append(conds, fmt.Sprintf(`g.name ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
