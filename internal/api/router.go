package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/triplog/tracking-system/internal/api/handler"
	"github.com/triplog/tracking-system/internal/api/middleware"
	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/service"
	mongodb "github.com/triplog/tracking-system/internal/infrastructure/db/mongo"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The dispatcher is injected by main, which owns its worker lifecycle.
func NewRouter(db *mongo.Database, rdb *redis.Client, jwtSecret string, dispatcher handler.PositionDispatcher, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("tracking"))

	// --- Dependencies ---
	deviceRepo := mongodb.NewDeviceRepository(db)
	sampleRepo := mongodb.NewSampleRepository(db)
	waypointRepo := mongodb.NewWaypointRepository(db)

	authService := service.NewDeviceAuth(deviceRepo, jwtSecret, 24*time.Hour)
	liveService := service.NewLivePositionService(sampleRepo, waypointRepo, log)

	deviceHandler := handler.NewDeviceHandler(authService)
	positionHandler := handler.NewPositionHandler(dispatcher, liveService)
	itineraryHandler := handler.NewItineraryHandler(waypointRepo)

	authMiddleware := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/auth/register", deviceHandler.Register)
	e.POST("/auth/login", deviceHandler.Login)

	// --- Position routes ---
	v1 := e.Group("/api/v1")
	v1.POST("/positions", positionHandler.Submit,
		authMiddleware, middleware.RBAC(domain.RoleDevice, domain.RoleAdmin))
	v1.POST("/positions/batch", positionHandler.SubmitBatch,
		authMiddleware, middleware.RBAC(domain.RoleDevice, domain.RoleAdmin))
	// live position is the public blog-facing read
	v1.GET("/trips/:trip_id/position", positionHandler.Current)

	// --- Itinerary routes ---
	v1.GET("/trips/:trip_id/itinerary", itineraryHandler.Get)
	v1.PUT("/trips/:trip_id/itinerary", itineraryHandler.Replace,
		authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
