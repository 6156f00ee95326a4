package main

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"github.com/titoride/backend/internal/handlers"
	"github.com/titoride/backend/internal/notify"
	"github.com/titoride/backend/internal/repositories"
	"github.com/titoride/backend/internal/router"
	"github.com/titoride/backend/pkg/config"
	"github.com/titoride/backend/pkg/firebase"
	"github.com/titoride/backend/validators"
)

func main() {
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Firebase is optional; without credentials the federated login route
	// is simply not registered.
	var firebaseAuth *auth.Client
	if cfg.FirebaseCredentialsPath != "" {
		fbApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuth = fbApp.AuthClient
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, Firebase login disabled.")
	}

	e := echo.New()
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg.ClientURL)

	hub := notify.NewHub()
	notificationRepo := repositories.NewMongoNotificationRepository(db.Mongo.Database("titoride"))

	if err := router.SetupRoutes(e, db, cfg, firebaseAuth, hub, notificationRepo); err != nil {
		log.Fatalf("Failed to set up routes: %v", err)
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		cutoff := time.Now().AddDate(0, 0, -handlers.RetentionDays)
		deleted, err := notificationRepo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			log.Printf("Notification retention sweep failed: %v", err)
			return
		}
		log.Printf("Notification retention sweep removed %d records", deleted)
	}); err != nil {
		log.Fatalf("Failed to schedule retention sweep: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("Starting server on port %s (%s)", cfg.Port, cfg.Env)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
