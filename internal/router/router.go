package router

import (
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/titoride/backend/internal/handlers"
	appmiddleware "github.com/titoride/backend/internal/middleware"
	"github.com/titoride/backend/internal/models"
	"github.com/titoride/backend/internal/notify"
	"github.com/titoride/backend/internal/repositories"
	"github.com/titoride/backend/pkg/config"
)

// SetupRoutes wires repositories, handlers and route groups onto the Echo instance.
// The notification repository is constructed by the caller so the retention job
// can share it.
func SetupRoutes(e *echo.Echo, db *config.DB, cfg *config.Config, firebaseAuth *auth.Client, hub *notify.Hub, notificationRepo repositories.NotificationRepository) error {
	// Auto-migrate the relational schema
	if err := db.Postgres.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	mongoDB := db.Mongo.Database("titoride")

	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	rideRepo := repositories.NewMongoRideRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)

	notifier := notify.NewService(notificationRepo, rideRepo, hub)

	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuth, cfg.JWTSecret, cfg.UploadDir)
	userHandler := handlers.NewUserHandler(userRepo, cfg.UploadDir)
	rideHandler := handlers.NewRideHandler(rideRepo, userRepo, notifier)
	commentHandler := handlers.NewCommentHandler(commentRepo, rideRepo, userRepo, notifier)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	e.GET("/", handlers.Root)

	api := e.Group("/api")
	api.GET("/health", handlers.HealthCheck)

	authHandler.RegisterAuthRoutes(api)
	userHandler.RegisterPublicUserRoutes(api)
	rideHandler.RegisterPublicRideRoutes(api)
	commentHandler.RegisterPublicCommentRoutes(api)

	protected := api.Group("")
	protected.Use(appmiddleware.JWTAuthMiddleware(cfg.JWTSecret))

	authHandler.RegisterProtectedAuthRoutes(protected)
	userHandler.RegisterUserRoutes(protected)
	rideHandler.RegisterRideRoutes(protected)
	commentHandler.RegisterCommentRoutes(protected)
	notificationHandler.RegisterNotificationRoutes(protected)

	wsHandler.RegisterWSRoutes(e)

	// Serve uploaded profile images
	e.Static("/uploads", cfg.UploadDir)

	return nil
}
