package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/amenapp/backend/internal/push"
	"github.com/amenapp/backend/internal/router"
	"github.com/amenapp/backend/pkg/config"
	"github.com/amenapp/backend/pkg/firebase"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	var sender push.Sender = push.NewFCMSender(firebaseApp.MessagingClient, logger)
	if cfg.Env == "development" {
		sender = &push.LogSender{Log: logger}
	}

	e := echo.New()
	router.SetupMiddleware(e)

	dispatcher, err := router.SetupRoutes(e, db.Postgres, db.Mongo, cfg.MongoDatabase, firebaseApp.AuthClient, sender, logger)
	if err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}

	// Fan-out delivery loop.
	go dispatcher.Run(ctx)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
