package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the swagger spec served under /swagger.
	_ "github.com/gameshelf/gameshelf/docs"
	"github.com/gameshelf/gameshelf/internal/api/cookies"
	"github.com/gameshelf/gameshelf/internal/api/handler"
	"github.com/gameshelf/gameshelf/internal/api/middleware"
	"github.com/gameshelf/gameshelf/internal/core/ports"
	"github.com/gameshelf/gameshelf/internal/web"
)

// Dependencies is everything the router wires into handlers and middleware.
type Dependencies struct {
	Log          zerolog.Logger
	Resolver     middleware.Resolver
	Jar          cookies.Jar
	AuthService  ports.AuthService
	UserService  ports.UserService
	GameService  ports.GameService
	HealthChecks []handler.HealthCheck
	RateLimit    middleware.RateLimitConfig
	Renderer     echo.Renderer
	// IPExtractor derives client addresses; nil means the socket peer.
	IPExtractor echo.IPExtractor
	// Registry receives the HTTP request metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = deps.Renderer
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)
	e.IPExtractor = deps.IPExtractor
	if e.IPExtractor == nil {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(requestLogger(deps.Log))

	promConfig := echoprometheus.MiddlewareConfig{Subsystem: "http"}
	promHandler := echoprometheus.NewHandler()
	if deps.Registry != nil {
		promConfig.Registerer = deps.Registry
		promHandler = echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Registry})
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(promConfig))

	gate := middleware.NewGate(deps.Resolver, deps.Jar, deps.Log.With().Str("component", "gate").Logger())
	e.Use(gate.Middleware())

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.Jar, deps.Log)
	profileHandler := handler.NewProfileHandler(deps.UserService, deps.Jar)
	gameHandler := handler.NewGameHandler(deps.GameService)
	healthHandler := handler.NewHealthHandler(deps.Log.With().Str("component", "health").Logger(), deps.HealthChecks...)
	limited := middleware.RateLimit(deps.RateLimit, deps.Log)

	// --- Pages ---
	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/profile") })
	e.GET("/login", authHandler.LoginPage)
	e.POST("/login", authHandler.Login, limited)
	e.POST("/logout", authHandler.Logout)
	e.GET("/register", authHandler.RegisterPage)
	e.POST("/register", authHandler.Register, limited)

	e.GET("/profile", profileHandler.Show)
	e.GET("/profile/edit", profileHandler.EditPage)
	e.POST("/profile/edit", profileHandler.Edit)
	e.GET("/users/:username", profileHandler.Public)

	// --- Game catalog API ---
	games := e.Group("/api/games")
	games.GET("", gameHandler.List)
	games.GET("/:id", gameHandler.Get)
	games.POST("", gameHandler.Create, middleware.RequireSuperuser())
	games.PUT("/:id", gameHandler.Update, middleware.RequireSuperuser())
	games.DELETE("/:id", gameHandler.Delete, middleware.RequireSuperuser())

	// --- Operations (allow-listed) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", promHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/favicon.ico", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.StaticFS("/static", web.Static())

	return e
}

// requestLogger routes echo's access log through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
