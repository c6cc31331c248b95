package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/api/cookies"
	"github.com/gameshelf/gameshelf/internal/api/metrics"
	"github.com/gameshelf/gameshelf/internal/api/middleware"
	"github.com/gameshelf/gameshelf/internal/core/domain"
	"github.com/gameshelf/gameshelf/internal/core/ports"
	"github.com/gameshelf/gameshelf/internal/web"
)

const (
	msgInvalidLogin = "Invalid username or password."
	msgLoginLocked  = "Too many failed attempts. Please try again later."
)

// AuthHandler serves the login, logout and registration pages.
type AuthHandler struct {
	authService ports.AuthService
	jar         cookies.Jar
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, jar cookies.Jar, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, jar: jar, log: log}
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", web.Page{Viewer: middleware.Principal(c)})
}

// Login handles POST /login. Success sets both session cookies and redirects
// to the profile; every credential failure renders the same message.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil || c.Validate(&form) != nil {
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return h.renderLogin(c, http.StatusOK, form.Username, msgInvalidLogin)
	}

	result, err := h.authService.Login(c.Request().Context(), form.Username, form.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return h.renderLogin(c, http.StatusOK, form.Username, msgInvalidLogin)
	case errors.Is(err, domain.ErrLoginLocked):
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return h.renderLogin(c, http.StatusTooManyRequests, form.Username, msgLoginLocked)
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	cookies.Write(c.Response().Header(), h.jar.Pair(result.Tokens))
	return c.Redirect(http.StatusSeeOther, "/profile")
}

// Logout handles POST /logout by expiring both cookies.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookies.Write(c.Response().Header(), h.jar.Clear())
	return c.Redirect(http.StatusSeeOther, middleware.DefaultLoginPath)
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register", web.Page{Viewer: middleware.Principal(c)})
}

// Register handles POST /register.
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return h.renderRegister(c, http.StatusBadRequest, form, "Invalid form submission.")
	}
	form.trim()
	if err := c.Validate(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return h.renderRegister(c, http.StatusBadRequest, form, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    form.Email,
		Username: form.Username,
		FullName: form.FullName,
		Password: form.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmailTaken):
		metrics.RegistrationsTotal.WithLabelValues("email_taken").Inc()
		return h.renderRegister(c, http.StatusConflict, form, "This email is already registered.")
	case errors.Is(err, domain.ErrUsernameTaken), errors.Is(err, domain.ErrUserExists):
		metrics.RegistrationsTotal.WithLabelValues("username_taken").Inc()
		return h.renderRegister(c, http.StatusConflict, form, "This username is already taken.")
	case errors.Is(err, domain.ErrPasswordTooShort), errors.Is(err, domain.ErrInvalidUsername):
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return h.renderRegister(c, http.StatusBadRequest, form, err.Error())
	default:
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.Render(http.StatusOK, "register_success", web.Page{Username: user.Username})
}

func (h *AuthHandler) renderLogin(c echo.Context, status int, username, msg string) error {
	return c.Render(status, "login", web.Page{
		Error: msg,
		Form:  map[string]string{"username": username},
	})
}

func (h *AuthHandler) renderRegister(c echo.Context, status int, form registerForm, msg string) error {
	return c.Render(status, "register", web.Page{Error: msg, Form: form.values()})
}
