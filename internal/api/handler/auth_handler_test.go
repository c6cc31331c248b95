package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gameshelf/gameshelf/internal/api/cookies"
	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
)

func testJar() cookies.Jar {
	return cookies.NewJar(false, 30*time.Minute, 7*24*time.Hour)
}

func responseCookies(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		loginErr     error
		wantStatus   int
		wantLocation string
		wantError    string
		wantCookies  bool
		wantCalled   bool
	}{
		{
			name:         "success sets both cookies and redirects",
			form:         url.Values{"username": {"alice01"}, "password": {"password123"}},
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/profile",
			wantCookies:  true,
			wantCalled:   true,
		},
		{
			name:       "invalid credentials render the generic message",
			form:       url.Values{"username": {"alice01"}, "password": {"wrong"}},
			loginErr:   domain.ErrInvalidCredentials,
			wantStatus: http.StatusOK,
			wantError:  msgInvalidLogin,
			wantCalled: true,
		},
		{
			name:       "locked login renders 429",
			form:       url.Values{"username": {"alice01"}, "password": {"password123"}},
			loginErr:   domain.ErrLoginLocked,
			wantStatus: http.StatusTooManyRequests,
			wantError:  msgLoginLocked,
			wantCalled: true,
		},
		{
			name:       "missing fields never reach the service",
			form:       url.Values{"username": {""}},
			wantStatus: http.StatusOK,
			wantError:  msgInvalidLogin,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			svc := &stubAuthService{
				loginFn: func(_ context.Context, username, password string) (*ports.LoginResult, error) {
					called = true
					if tc.loginErr != nil {
						return nil, tc.loginErr
					}
					return &ports.LoginResult{
						User:   &domain.User{ID: "u1", Username: username},
						Tokens: ports.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
					}, nil
				},
			}
			e, r := newTestEcho()
			h := NewAuthHandler(svc, testJar(), zerolog.Nop())

			rec := httptest.NewRecorder()
			c := e.NewContext(formRequest(http.MethodPost, "/login", tc.form), rec)

			require.NoError(t, h.Login(c))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantCalled, called)
			assert.Equal(t, tc.wantLocation, rec.Header().Get("Location"))

			got := responseCookies(rec)
			if tc.wantCookies {
				require.Contains(t, got, cookies.AccessName)
				require.Contains(t, got, cookies.RefreshName)
				assert.Equal(t, "acc", got[cookies.AccessName].Value)
				assert.Equal(t, "ref", got[cookies.RefreshName].Value)
				assert.True(t, got[cookies.AccessName].HttpOnly)
			} else {
				assert.Empty(t, got)
				assert.Equal(t, "login", r.name)
				assert.Equal(t, tc.wantError, r.page.Error)
				assert.Equal(t, tc.form.Get("username"), r.page.Form["username"])
			}
		})
	}
}

func TestAuthHandler_Login_UnexpectedErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	svc := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) { return nil, boom },
	}
	e, _ := newTestEcho()
	h := NewAuthHandler(svc, testJar(), zerolog.Nop())

	c := e.NewContext(formRequest(http.MethodPost, "/login", url.Values{
		"username": {"alice01"}, "password": {"password123"},
	}), httptest.NewRecorder())

	assert.ErrorIs(t, h.Login(c), boom)
}

func TestAuthHandler_Logout(t *testing.T) {
	e, _ := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, testJar(), zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	got := responseCookies(rec)
	require.Contains(t, got, cookies.AccessName)
	require.Contains(t, got, cookies.RefreshName)
	assert.Equal(t, -1, got[cookies.AccessName].MaxAge)
	assert.Equal(t, -1, got[cookies.RefreshName].MaxAge)
}

func TestAuthHandler_Register(t *testing.T) {
	valid := url.Values{
		"email":     {"alice@example.com"},
		"username":  {"alice01"},
		"full_name": {"Alice"},
		"password":  {"password123"},
	}

	tests := []struct {
		name        string
		form        url.Values
		registerErr error
		wantStatus  int
		wantView    string
		wantCalled  bool
	}{
		{name: "success", form: valid, wantStatus: http.StatusOK, wantView: "register_success", wantCalled: true},
		{name: "email taken", form: valid, registerErr: domain.ErrEmailTaken, wantStatus: http.StatusConflict, wantView: "register", wantCalled: true},
		{name: "username taken", form: valid, registerErr: domain.ErrUsernameTaken, wantStatus: http.StatusConflict, wantView: "register", wantCalled: true},
		{
			name:       "short username fails validation",
			form:       url.Values{"email": {"a@example.com"}, "username": {"bob"}, "password": {"password123"}},
			wantStatus: http.StatusBadRequest,
			wantView:   "register",
		},
		{
			name:       "bad email fails validation",
			form:       url.Values{"email": {"not-an-email"}, "username": {"bobby99"}, "password": {"password123"}},
			wantStatus: http.StatusBadRequest,
			wantView:   "register",
		},
		{
			name:       "short password fails validation",
			form:       url.Values{"email": {"a@example.com"}, "username": {"bobby99"}, "password": {"short"}},
			wantStatus: http.StatusBadRequest,
			wantView:   "register",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			svc := &stubAuthService{
				registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
					called = true
					if tc.registerErr != nil {
						return nil, tc.registerErr
					}
					return &domain.User{ID: "u1", Username: in.Username, Email: in.Email}, nil
				},
			}
			e, r := newTestEcho()
			h := NewAuthHandler(svc, testJar(), zerolog.Nop())

			rec := httptest.NewRecorder()
			c := e.NewContext(formRequest(http.MethodPost, "/register", tc.form), rec)

			require.NoError(t, h.Register(c))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantView, r.name)
			assert.Equal(t, tc.wantCalled, called)
			if tc.wantView == "register" {
				assert.NotEmpty(t, r.page.Error)
				assert.NotContains(t, r.page.Form, "password")
			} else {
				assert.Equal(t, "alice01", r.page.Username)
			}
		})
	}
}

func TestAuthHandler_Pages(t *testing.T) {
	e, r := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, testJar(), zerolog.Nop())

	rec := httptest.NewRecorder()
	require.NoError(t, h.LoginPage(e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login", r.name)

	rec = httptest.NewRecorder()
	require.NoError(t, h.RegisterPage(e.NewContext(httptest.NewRequest(http.MethodGet, "/register", nil), rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "register", r.name)
}

func TestAuthHandler_Register_TrimsBeforeValidating(t *testing.T) {
	tests := []struct {
		name       string
		username   string
		wantStatus int
		wantStored string
	}{
		{name: "padded short username", username: "  ab  ", wantStatus: http.StatusBadRequest},
		{name: "blank username", username: "      ", wantStatus: http.StatusBadRequest},
		{name: "padded valid username", username: "  alice01  ", wantStatus: http.StatusOK, wantStored: "alice01"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var stored string
			svc := &stubAuthService{
				registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
					stored = in.Username
					return &domain.User{ID: "u1", Username: in.Username}, nil
				},
			}
			e, r := newTestEcho()
			h := NewAuthHandler(svc, testJar(), zerolog.Nop())

			rec := httptest.NewRecorder()
			c := e.NewContext(formRequest(http.MethodPost, "/register", url.Values{
				"email":    {" alice@example.com "},
				"username": {tc.username},
				"password": {"password123"},
			}), rec)

			require.NoError(t, h.Register(c))
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantStored, stored)
			if tc.wantStatus == http.StatusBadRequest {
				assert.Equal(t, "register", r.name)
				assert.Contains(t, r.page.Error, "username")
			}
		})
	}
}

func TestAuthHandler_Register_ServiceUsernameRejectionRendersForm(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrInvalidUsername
		},
	}
	e, r := newTestEcho()
	h := NewAuthHandler(svc, testJar(), zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/register", url.Values{
		"email": {"alice@example.com"}, "username": {"alice01"}, "password": {"password123"},
	}), rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "register", r.name)
}
