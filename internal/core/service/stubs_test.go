package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

var (
	testAccessSecret  = []byte("access-secret-for-tests")
	testRefreshSecret = []byte("refresh-secret-for-tests")
	testNow           = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: testNow} }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCodec(clock ports.Clock) *TokenCodec {
	codec, err := NewTokenCodec(TokenConfig{
		AccessSecret:  testAccessSecret,
		RefreshSecret: testRefreshSecret,
	}, clock)
	if err != nil {
		panic(err)
	}
	return codec
}

// ---------------------------------------------------------------------------
// In-memory user directory
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User // keyed by ID
	findErr error                   // if set, every lookup returns it
	lookups int
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

// ---------------------------------------------------------------------------
// In-memory game catalog
// ---------------------------------------------------------------------------

type stubGameRepo struct {
	games      map[string]*domain.Game
	lastFilter ports.ListGamesFilter
	createErr  error
}

func newStubGameRepo(games ...*domain.Game) *stubGameRepo {
	r := &stubGameRepo{games: make(map[string]*domain.Game)}
	for _, g := range games {
		clone := *g
		r.games[g.ID] = &clone
	}
	return r
}

func (r *stubGameRepo) Create(_ context.Context, g *domain.Game) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *g
	r.games[g.ID] = &clone
	return nil
}

func (r *stubGameRepo) FindByID(_ context.Context, id string) (*domain.Game, error) {
	g, ok := r.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	clone := *g
	return &clone, nil
}

func (r *stubGameRepo) FindByName(_ context.Context, name string) (*domain.Game, error) {
	for _, g := range r.games {
		if g.Name == name {
			clone := *g
			return &clone, nil
		}
	}
	return nil, domain.ErrGameNotFound
}

func (r *stubGameRepo) List(_ context.Context, f ports.ListGamesFilter) ([]*domain.Game, int64, error) {
	r.lastFilter = f
	out := make([]*domain.Game, 0, len(r.games))
	for _, g := range r.games {
		clone := *g
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubGameRepo) Update(_ context.Context, g *domain.Game) error {
	if _, ok := r.games[g.ID]; !ok {
		return domain.ErrGameNotFound
	}
	clone := *g
	r.games[g.ID] = &clone
	return nil
}

func (r *stubGameRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.games[id]; !ok {
		return domain.ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}

// ---------------------------------------------------------------------------
// Login guard
// ---------------------------------------------------------------------------

type stubLoginGuard struct {
	failures map[string]int
	max      int
}

func newStubLoginGuard(max int) *stubLoginGuard {
	return &stubLoginGuard{failures: make(map[string]int), max: max}
}

func (g *stubLoginGuard) Locked(_ context.Context, username string) (bool, error) {
	return g.failures[username] >= g.max, nil
}

func (g *stubLoginGuard) RecordFailure(_ context.Context, username string) error {
	g.failures[username]++
	return nil
}

func (g *stubLoginGuard) Reset(_ context.Context, username string) error {
	delete(g.failures, username)
	return nil
}

var nopLogger = zerolog.Nop()
