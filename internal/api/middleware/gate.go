package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/gameshelf/gameshelf/internal/api/cookies"
	"github.com/gameshelf/gameshelf/internal/api/metrics"
	"github.com/gameshelf/gameshelf/internal/core/service"
)

const DefaultLoginPath = "/login"

// Resolver is the session resolution step the gate depends on.
type Resolver interface {
	Resolve(ctx context.Context, access, refresh string) (service.Session, error)
}

// AllowList holds the paths reachable without a session, matched either
// exactly or by prefix.
type AllowList struct {
	exact    map[string]struct{}
	prefixes []string
}

func NewAllowList(exact, prefixes []string) AllowList {
	a := AllowList{exact: make(map[string]struct{}, len(exact)), prefixes: prefixes}
	for _, p := range exact {
		a.exact[p] = struct{}{}
	}
	return a
}

// DefaultAllowList covers the auth pages, static assets and operational endpoints.
func DefaultAllowList() AllowList {
	return NewAllowList(
		[]string{DefaultLoginPath, "/register", "/favicon.ico", "/health", "/health/ready", "/metrics"},
		[]string{"/static/css/", "/static/js/", "/swagger/"},
	)
}

func (a AllowList) Allows(path string) bool {
	if _, ok := a.exact[path]; ok {
		return true
	}
	for _, p := range a.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Decision is the outcome of the gate's first phase. A non-empty Redirect
// means the request must not reach the handler.
type Decision struct {
	Session     service.Session
	AllowListed bool
	Redirect    string
}

func (d Decision) Proceed() bool { return d.Redirect == "" }

// Gate authenticates every request from its session cookies. It runs in two
// phases: Before decides whether the request proceeds, After attaches
// reissued cookies to the response.
type Gate struct {
	resolver  Resolver
	jar       cookies.Jar
	allow     AllowList
	loginPath string
	log       zerolog.Logger
}

type GateOption func(*Gate)

func WithAllowList(a AllowList) GateOption { return func(g *Gate) { g.allow = a } }

func WithLoginPath(path string) GateOption { return func(g *Gate) { g.loginPath = path } }

func NewGate(resolver Resolver, jar cookies.Jar, log zerolog.Logger, opts ...GateOption) *Gate {
	g := &Gate{
		resolver:  resolver,
		jar:       jar,
		allow:     DefaultAllowList(),
		loginPath: DefaultLoginPath,
		log:       log,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Before resolves the request's cookies. The error is non-nil only when the
// user directory failed.
func (g *Gate) Before(r *http.Request) (Decision, error) {
	access, refresh := cookies.Read(r)
	sess, err := g.resolver.Resolve(r.Context(), access, refresh)
	if err != nil {
		return Decision{}, err
	}
	metrics.SessionOutcomesTotal.WithLabelValues(sess.State.String()).Inc()

	d := Decision{Session: sess, AllowListed: g.allow.Allows(r.URL.Path)}
	if sess.State == service.Unauthenticated {
		if sess.Reason != nil {
			g.log.Debug().Err(sess.Reason).Str("path", r.URL.Path).Msg("session rejected")
		}
		if !d.AllowListed {
			d.Redirect = g.loginPath
		}
	}
	return d, nil
}

// After sets both cookies when the session was refreshed, unless the handler
// already set session cookies itself (login, logout, username change).
func (g *Gate) After(h http.Header, d Decision) {
	if d.Session.State != service.RefreshNeeded || cookies.Present(h) {
		return
	}
	cookies.Write(h, g.jar.Pair(d.Session.Tokens))
}

// RewritesUnauthorized reports whether a 401 on path becomes a login redirect.
func (g *Gate) RewritesUnauthorized(status int, path string) bool {
	return status == http.StatusUnauthorized && path != g.loginPath
}

// Middleware adapts the gate to echo. The response hook runs inside
// WriteHeader, so cookies and the 401 rewrite apply to every response
// regardless of how the handler wrote it.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			d, err := g.Before(req)
			if err != nil {
				return err
			}
			if !d.Proceed() {
				metrics.GateRedirectsTotal.WithLabelValues("unauthenticated").Inc()
				return c.Redirect(http.StatusSeeOther, d.Redirect)
			}

			if d.Session.Principal != nil {
				c.SetRequest(req.WithContext(ContextWithPrincipal(req.Context(), d.Session.Principal)))
			}

			res := c.Response()
			res.Before(func() {
				g.After(res.Header(), d)
				if g.RewritesUnauthorized(res.Status, req.URL.Path) {
					metrics.GateRedirectsTotal.WithLabelValues("unauthorized").Inc()
					res.Header().Set(echo.HeaderLocation, g.loginPath)
					res.Status = http.StatusSeeOther
				}
			})

			err = next(c)
			var he *echo.HTTPError
			if errors.As(err, &he) && !res.Committed && g.RewritesUnauthorized(he.Code, req.URL.Path) {
				metrics.GateRedirectsTotal.WithLabelValues("unauthorized").Inc()
				return c.Redirect(http.StatusSeeOther, g.loginPath)
			}
			return err
		}
	}
}
