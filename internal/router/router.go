package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/amenapp/backend/internal/fanout"
	"github.com/amenapp/backend/internal/handlers"
	"github.com/amenapp/backend/internal/middleware"
	"github.com/amenapp/backend/internal/models"
	"github.com/amenapp/backend/internal/push"
	"github.com/amenapp/backend/internal/repositories"
	"github.com/amenapp/backend/internal/stream"
	"github.com/amenapp/backend/internal/syncbus"
)

// SetupMiddleware configures global Echo middleware.
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes wires repositories, the fan-out pipeline and all routes,
// and returns the dispatcher so main can run its delivery loop.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, mongoDatabase string, authClient *auth.Client, sender push.Sender, logger *logrus.Logger) (*fanout.Dispatcher, error) {
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Amen{},
		&models.Comment{},
		&models.Repost{},
		&models.SavedPost{},
		&models.Notification{},
	); err != nil {
		return nil, err
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	e.GET("/health", handlers.HealthCheck)

	hub := stream.NewHub()
	bus := syncbus.NewBus()

	userRepo := repositories.NewPostgresUserRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb, hub)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	followRequestRepo := repositories.NewPostgresFollowRequestRepository(pgdb)
	amenRepo := repositories.NewPostgresAmenRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	repostRepo := repositories.NewPostgresRepostRepository(pgdb)
	savedPostRepo := repositories.NewPostgresSavedPostRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database(mongoDatabase))

	dispatcher := fanout.NewDispatcher(logger)
	fanout.NewHandlers(userRepo, notificationRepo, sender, logger).RegisterAll(dispatcher)

	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(authClient))

	handlers.NewUserHandler(userRepo).RegisterUserRoutes(api)
	handlers.NewFollowHandler(followRepo, followRequestRepo, dispatcher).RegisterFollowRoutes(api)
	handlers.NewPostHandler(postRepo, dispatcher, bus).RegisterPostRoutes(api)
	handlers.NewAmenHandler(amenRepo, postRepo, dispatcher, bus).RegisterAmenRoutes(api)
	handlers.NewCommentHandler(commentRepo, postRepo, dispatcher).RegisterCommentRoutes(api)
	handlers.NewRepostHandler(repostRepo, postRepo, dispatcher).RegisterRepostRoutes(api)
	handlers.NewSavedPostHandler(savedPostRepo, postRepo, bus).RegisterSavedPostRoutes(api)
	handlers.NewNotificationHandler(notificationRepo).RegisterNotificationRoutes(api)
	handlers.NewPushHandler(userRepo, sender, logger).RegisterPushRoutes(api)
	handlers.NewStreamHandler(notificationRepo, hub, logger).RegisterStreamRoutes(api)

	return dispatcher, nil
}
