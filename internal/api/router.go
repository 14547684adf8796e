package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/miapp/secure-notes/docs"
	"github.com/miapp/secure-notes/internal/api/handler"
	"github.com/miapp/secure-notes/internal/api/middleware"
	"github.com/miapp/secure-notes/internal/core/ports"
)

// bodyLimit caps request bodies; the largest valid note is well under it.
const bodyLimit = "64K"

// Dependencies is everything the router needs. Services are constructed by
// the caller so tests can swap any of them.
type Dependencies struct {
	AuthService   ports.AuthService
	NoteService   ports.NoteService
	Tokens        ports.TokenService
	HealthChecks  map[string]handler.HealthCheck
	Logger        zerolog.Logger
	SecureCookies bool
	Version       string

	// Metrics defaults to the global Prometheus registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Metrics != nil {
		registerer, gatherer = deps.Metrics, deps.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registerer,
	}))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))
	e.Use(echomiddleware.BodyLimit(bodyLimit))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService, deps.SecureCookies)
	noteHandler := handler.NewNoteHandler(deps.NoteService)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks, deps.Version, deps.Logger)
	requireAuth := middleware.Auth(deps.Tokens, deps.Logger)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- Note routes (token required) ---
	notes := e.Group("/notes", requireAuth)
	notes.GET("", noteHandler.List)
	notes.POST("", noteHandler.Create)
	notes.PUT("", noteHandler.Update)
	notes.DELETE("", noteHandler.Delete)
	notes.GET("/:id", noteHandler.Get)
	notes.PUT("/:id", noteHandler.Update)
	notes.DELETE("/:id", noteHandler.Delete)

	return e
}
