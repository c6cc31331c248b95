package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

const collectionGames = "games"

// GameRepository stores games as single documents with platforms embedded
// by name. A lowercase copy of the platform list backs filtering.
type GameRepository struct {
	col *mongo.Collection
}

func NewGameRepository(db *mongo.Database) *GameRepository {
	return &GameRepository{col: db.Collection(collectionGames)}
}

type gameDocument struct {
	domain.Game  `bson:",inline"`
	PlatformKeys []string `bson:"platform_keys"`
}

func newGameDocument(g *domain.Game) gameDocument {
	keys := make([]string, len(g.Platforms))
	for i, p := range g.Platforms {
		keys[i] = strings.ToLower(p)
	}
	return gameDocument{Game: *g, PlatformKeys: keys}
}

func (r *GameRepository) Create(ctx context.Context, g *domain.Game) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newGameDocument(g)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrGameExists
		}
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (r *GameRepository) FindByID(ctx context.Context, id string) (*domain.Game, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *GameRepository) FindByName(ctx context.Context, name string) (*domain.Game, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *GameRepository) List(ctx context.Context, f ports.ListGamesFilter) ([]*domain.Game, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := listFilter(f)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	page, limit := int64(f.Page), int64(f.Limit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	defer cur.Close(ctx)

	games := make([]*domain.Game, 0, limit)
	for cur.Next(ctx) {
		var doc gameDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode game: %w", err)
		}
		g := doc.Game
		games = append(games, &g)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}
	return games, total, nil
}

func (r *GameRepository) Update(ctx context.Context, g *domain.Game) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": g.ID}, newGameDocument(g))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrGameExists
		}
		return fmt.Errorf("update game: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

func (r *GameRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGameNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the games collection.
func (r *GameRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "year", Value: 1}}},
		{Keys: bson.D{{Key: "platform_keys", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *GameRepository) findOne(ctx context.Context, filter bson.M) (*domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var doc gameDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("find game: %w", err)
	}
	return &doc.Game, nil
}

func listFilter(f ports.ListGamesFilter) bson.M {
	filter := bson.M{}
	if f.Platform != "" {
		filter["platform_keys"] = strings.ToLower(f.Platform)
	}
	if f.Year != 0 {
		filter["year"] = f.Year
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
	}
	return filter
}
