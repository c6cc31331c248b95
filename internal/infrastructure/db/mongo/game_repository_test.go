package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

func TestListFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter ports.ListGamesFilter
		want   bson.M
	}{
		{name: "empty", filter: ports.ListGamesFilter{}, want: bson.M{}},
		{
			name:   "platform is lowercased",
			filter: ports.ListGamesFilter{Platform: "PlayStation"},
			want:   bson.M{"platform_keys": "playstation"},
		},
		{
			name:   "search is escaped",
			filter: ports.ListGamesFilter{Search: " F.E.A.R ", Year: 2005},
			want: bson.M{
				"year": 2005,
				"name": bson.M{"$regex": `F\.E\.A\.R`, "$options": "i"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, listFilter(tt.filter))
		})
	}
}

func TestGameDocumentRoundTrip(t *testing.T) {
	g := &domain.Game{ID: "g1", Name: "Celeste", Year: 2018, Platforms: []string{"PC", "Switch"}}
	doc := newGameDocument(g)
	assert.Equal(t, []string{"pc", "switch"}, doc.PlatformKeys)

	raw, err := bson.Marshal(doc)
	assert.NoError(t, err)

	var decoded gameDocument
	assert.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, *g, decoded.Game)
	assert.Equal(t, "g1", bson.Raw(raw).Lookup("_id").StringValue())
}

func TestUserDocumentConversion(t *testing.T) {
	avatar := "avatars/one.png"
	u := &domain.User{
		ID: "u1", Username: "player_one", Email: "p@example.com",
		Avatar: &avatar, IsActive: true,
	}
	got := toMongoUser(u).toDomain()
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, &avatar, got.Avatar)
	assert.True(t, got.IsActive)
	assert.True(t, got.CreatedAt.IsZero())
}
