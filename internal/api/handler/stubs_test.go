package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gameshelf/gameshelf/internal/api/middleware"
	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
	"github.com/gameshelf/gameshelf/internal/web"
)

// --- Renderer ---

// recordingRenderer keeps the last template name and page instead of executing HTML.
type recordingRenderer struct {
	name string
	page web.Page
}

func (r *recordingRenderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	r.name = name
	if p, ok := data.(web.Page); ok {
		r.page = p
	}
	_, err := io.WriteString(w, name)
	return err
}

func newTestEcho() (*echo.Echo, *recordingRenderer) {
	e := echo.New()
	r := &recordingRenderer{}
	e.Renderer = r
	e.Validator = NewValidator()
	return e, r
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withPrincipal(req *http.Request, u *domain.User) *http.Request {
	return req.WithContext(middleware.ContextWithPrincipal(req.Context(), u))
}

// --- AuthService ---

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

// --- UserService ---

type stubUserService struct {
	getProfileFn    func(ctx context.Context, username string) (*domain.User, error)
	updateProfileFn func(ctx context.Context, userID string, in ports.UpdateProfileInput) (*ports.UpdateProfileResult, error)
}

func (s *stubUserService) GetProfile(ctx context.Context, username string) (*domain.User, error) {
	return s.getProfileFn(ctx, username)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, userID string, in ports.UpdateProfileInput) (*ports.UpdateProfileResult, error) {
	return s.updateProfileFn(ctx, userID, in)
}

// --- GameService ---

type stubGameService struct {
	createFn func(ctx context.Context, in ports.GameInput) (*ports.GameDetail, error)
	getFn    func(ctx context.Context, id string) (*ports.GameDetail, error)
	listFn   func(ctx context.Context, in ports.ListGamesInput) (*ports.ListGamesResult, error)
	updateFn func(ctx context.Context, id string, in ports.UpdateGameInput) (*ports.GameDetail, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubGameService) CreateGame(ctx context.Context, in ports.GameInput) (*ports.GameDetail, error) {
	return s.createFn(ctx, in)
}

func (s *stubGameService) GetGame(ctx context.Context, id string) (*ports.GameDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubGameService) ListGames(ctx context.Context, in ports.ListGamesInput) (*ports.ListGamesResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubGameService) UpdateGame(ctx context.Context, id string, in ports.UpdateGameInput) (*ports.GameDetail, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubGameService) DeleteGame(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
