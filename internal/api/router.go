package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/dairyledger/milk-collection/docs"
	"github.com/dairyledger/milk-collection/internal/api/handler"
	"github.com/dairyledger/milk-collection/internal/api/middleware"
	"github.com/dairyledger/milk-collection/internal/core/domain"
	"github.com/dairyledger/milk-collection/internal/core/ports"
	"github.com/dairyledger/milk-collection/internal/infrastructure/http/handlers"
)

// Deps collects everything the HTTP layer needs.
type Deps struct {
	MilkService ports.MilkService
	UserService ports.UserService
	AuthService ports.AuthService
	JWTSecret   string
	Logger      zerolog.Logger

	HealthChecks []handlers.Check

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "milk",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Ops routes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.HealthChecks...)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authHandler := handler.NewAuthHandler(d.AuthService)
	milkHandler := handler.NewMilkHandler(d.MilkService)
	userHandler := handler.NewUserHandler(d.UserService)

	authn := middleware.Auth(d.JWTSecret)
	adminOnly := middleware.RBAC(string(domain.RoleAdmin))

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/signin", authHandler.Signin)

	// --- Milk routes ---
	milk := e.Group("/api/milk", authn)
	milk.GET("/my-milk", milkHandler.ListMine)
	milk.GET("", milkHandler.ListAll, adminOnly)
	milk.GET("/user/:userId", milkHandler.ListByUser, adminOnly)
	milk.GET("/users", userHandler.List, adminOnly)
	milk.POST("", milkHandler.Create, adminOnly)
	milk.GET("/type/:milkType", milkHandler.ListByType)
	milk.GET("/:id", milkHandler.Get)
	milk.PUT("/:id", milkHandler.Update, adminOnly)
	milk.DELETE("/:id", milkHandler.Delete, adminOnly)

	// --- User routes ---
	users := e.Group("/api/users", authn)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/me", userHandler.Me)
	users.GET("/count", userHandler.Count, adminOnly)
	users.POST("/change-password", userHandler.ChangePassword)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	return e
}
