package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

var gameRowColumns = []string{"id", "name", "year", "description", "created_at", "updated_at", "platforms"}

func sampleGame() *domain.Game {
	return &domain.Game{
		ID:          "01HZX0000000000000000000GG",
		Name:        "Hollow Knight",
		Year:        2017,
		Description: "Metroidvania",
		Platforms:   []string{"PC", "Switch"},
		CreatedAt:   fixedTime,
		UpdatedAt:   fixedTime,
	}
}

func gameRows(games ...*domain.Game) *pgxmock.Rows {
	rows := pgxmock.NewRows(gameRowColumns)
	for _, g := range games {
		rows.AddRow(g.ID, g.Name, g.Year, g.Description, g.CreatedAt, g.UpdatedAt, g.Platforms)
	}
	return rows
}

func expectLink(mock pgxmock.PgxPoolIface, gameID, platform string, platformID int64) {
	mock.ExpectQuery(`INSERT INTO platforms`).
		WithArgs(platform).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(platformID))
	mock.ExpectExec(`INSERT INTO game_platforms`).
		WithArgs(gameID, platformID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestGameRepository_Create(t *testing.T) {
	t.Run("inserts game and links platforms", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		g := sampleGame()
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO games`).
			WithArgs(g.ID, g.Name, g.Year, g.Description, fixedTime, fixedTime).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		expectLink(mock, g.ID, "PC", 1)
		expectLink(mock, g.ID, "Switch", 2)
		mock.ExpectCommit()

		require.NoError(t, NewGameRepository(mock).Create(context.Background(), g))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate name rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO games`).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
		mock.ExpectRollback()

		err = NewGameRepository(mock).Create(context.Background(), sampleGame())
		require.ErrorIs(t, err, domain.ErrGameExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		want := sampleGame()
		mock.ExpectQuery(`WHERE g.id = \$1 GROUP BY g.id`).
			WithArgs(want.ID).
			WillReturnRows(gameRows(want))

		got, err := NewGameRepository(mock).FindByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`WHERE g.id = \$1`).
			WithArgs("nope").
			WillReturnError(pgx.ErrNoRows)

		_, err = NewGameRepository(mock).FindByID(context.Background(), "nope")
		require.ErrorIs(t, err, domain.ErrGameNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameRepository_ListWithFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM games g WHERE EXISTS`).
		WithArgs("pc", 2017, "%Knight%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(11)))
	mock.ExpectQuery(`ORDER BY g.name LIMIT \$4 OFFSET \$5`).
		WithArgs("pc", 2017, "%Knight%", 10, 10).
		WillReturnRows(gameRows(sampleGame()))

	games, total, err := NewGameRepository(mock).List(context.Background(), ports.ListGamesFilter{
		Platform: "pc", Year: 2017, Search: " Knight ", Page: 2, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, games, 1)
	assert.Equal(t, "Hollow Knight", games[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_ListEscapesSearchWildcards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM games g WHERE g.name ILIKE \$1 ESCAPE '\\'`).
		WithArgs(`%100\% \_done\\%`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`ILIKE \$1 ESCAPE '\\'.*LIMIT \$2 OFFSET \$3`).
		WithArgs(`%100\% \_done\\%`, 20, 0).
		WillReturnRows(gameRows())

	_, _, err = NewGameRepository(mock).List(context.Background(), ports.ListGamesFilter{Search: `100% _done\`})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_ListWithoutFilters(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM games g$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(gameRows())

	games, total, err := NewGameRepository(mock).List(context.Background(), ports.ListGamesFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, games)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameRepository_Update(t *testing.T) {
	t.Run("replaces platform links", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		g := sampleGame()
		g.Platforms = []string{"PS5"}
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE games SET`).
			WithArgs(g.ID, g.Name, g.Year, g.Description, fixedTime).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`DELETE FROM game_platforms`).
			WithArgs(g.ID).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
		expectLink(mock, g.ID, "PS5", 7)
		mock.ExpectCommit()

		require.NoError(t, NewGameRepository(mock).Update(context.Background(), g))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing game", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE games SET`).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectRollback()

		err = NewGameRepository(mock).Update(context.Background(), sampleGame())
		require.ErrorIs(t, err, domain.ErrGameNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM games WHERE id = \$1`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM games WHERE id = \$1`).
		WithArgs("here").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewGameRepository(mock)
	require.ErrorIs(t, repo.Delete(context.Background(), "gone"), domain.ErrGameNotFound)
	require.NoError(t, repo.Delete(context.Background(), "here"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/games", migrateURL("postgres://u:p@db:5432/games"))
	assert.Equal(t, "pgx5://u:p@db/games", migrateURL("postgresql://u:p@db/games"))
	assert.Equal(t, "pgx5://already", migrateURL("pgx5://already"))
}
