package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	rediscli "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/douradolabs/backoffice/internal/api/handler"
	"github.com/douradolabs/backoffice/internal/api/middleware"
	"github.com/douradolabs/backoffice/internal/core/auth"
	"github.com/douradolabs/backoffice/internal/core/service"
	mongodb "github.com/douradolabs/backoffice/internal/infrastructure/db/mongo"
	redisdb "github.com/douradolabs/backoffice/internal/infrastructure/db/redis"
)

// Options carries the router's tunables.
type Options struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *rediscli.Client, log zerolog.Logger, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("backoffice"))
	e.Use(middleware.Credentials())

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	sessions := redisdb.NewSessionProvider(rdb, opts.JWTSecret)
	listCache := redisdb.NewListCache(rdb)
	guard := auth.NewGuard(sessions, log)

	userService := service.NewUserService(guard, userRepo, listCache, log)
	authService := service.NewAuthService(userRepo, sessions, opts.SessionTTL, log)

	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(authService)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)

	// --- User administration routes ---
	// No per-route auth middleware: the service operations run the guard
	// themselves so the authorization decision lives in one place.
	e.GET("/users", userHandler.List)
	e.POST("/users", userHandler.Create)
	e.GET("/users/me", userHandler.Me)
	e.POST("/users/me/password", userHandler.ChangePassword)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
