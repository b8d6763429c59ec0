package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/biblioteca/loan-system/docs"
	"github.com/biblioteca/loan-system/internal/api/handler"
	"github.com/biblioteca/loan-system/internal/api/middleware"
	"github.com/biblioteca/loan-system/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Readiness checks are
// optional; a nil Catalog, Ledger, Users or Auth service is a wiring bug.
type Deps struct {
	Auth    ports.AuthService
	Catalog ports.CatalogService
	Ledger  ports.LedgerService
	Users   ports.UserService

	Readiness   []handler.DependencyCheck
	JWTSecret   string
	CORSOrigins []string
	Logger      zerolog.Logger

	// Registerer receives the HTTP collectors. Nil means the default registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Idempotency-Key"},
		AllowCredentials: true,
	}))
	reg := d.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "library",
		Subsystem:  "http",
		Registerer: reg,
	}))

	// --- Operational endpoints (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Readiness...)
	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- API ---
	authHandler := handler.NewAuthHandler(d.Auth)
	bookHandler := handler.NewBookHandler(d.Catalog)
	loanHandler := handler.NewLoanHandler(d.Ledger)
	userHandler := handler.NewUserHandler(d.Users)

	apiGroup := e.Group("/api")
	apiGroup.POST("/login", authHandler.Login)

	protected := apiGroup.Group("", middleware.Auth(d.JWTSecret))
	adminOnly := middleware.AdminOnly()

	protected.GET("/books", bookHandler.List)
	protected.GET("/books/:id", bookHandler.Get)
	protected.POST("/books", bookHandler.Create, adminOnly)
	protected.PUT("/books/:id", bookHandler.Update, adminOnly)
	protected.DELETE("/books/:id", bookHandler.Delete, adminOnly)

	protected.GET("/loans", loanHandler.List)
	protected.GET("/loans/:id", loanHandler.Get)
	protected.POST("/loans", loanHandler.Issue, adminOnly)
	protected.PUT("/loans/:id/return", loanHandler.Return, adminOnly)

	protected.GET("/users/list", userHandler.ListStudents, adminOnly)

	return e
}
