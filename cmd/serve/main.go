package main

import (
	"context"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
	"github.com/troop127/portal/internal/handler"
	"github.com/troop127/portal/internal/log"
	"github.com/troop127/portal/internal/middleware"
	"github.com/troop127/portal/internal/server"
	"github.com/troop127/portal/pkg/config"
	"github.com/troop127/portal/pkg/event"
	"github.com/troop127/portal/pkg/image"
	"github.com/troop127/portal/pkg/inspector"
	"github.com/troop127/portal/pkg/session"
	"github.com/troop127/portal/pkg/storage"
	"github.com/troop127/portal/pkg/user"
)

const (
	sweepInterval    = 15 * time.Minute
	orphanImageGrace = time.Hour
)

func main() {
	if err := run(); err != nil {
		stdlog.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.New()

	logger := slog.New(log.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.SetDefault(logger)

	err := handler.RegisterValidation()
	if err != nil {
		return err
	}

	db, err := storage.NewDatabase(cfg.Postgresql)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %v", err)
	}
	s3Client := storage.NewS3Client(logger, s3.NewFromConfig(awsCfg), cfg.S3.KeyPrefix)

	userRepository := user.NewRepository(db)
	userService := user.NewService(userRepository)

	sessionRepository := session.NewRepository(db)
	sessionService := session.NewService(cfg.SessionExpirationSeconds, sessionRepository)

	imageRepository := image.NewRepository(db)
	imageService := image.NewService(logger, cfg.S3.Bucket, s3Client, imageRepository)

	eventRepository := event.NewRepository(db)
	eventService := event.NewService(imageService, eventRepository)

	err = user.CreateAdminUser(ctx, cfg.AdminUser.Email, cfg.AdminUser.Password, userService)
	if err != nil {
		return err
	}

	goth.UseProviders(
		google.New(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.CallbackURL, "email", "profile"),
	)
	gothic.Store = sessions.NewCookieStore([]byte(cfg.SessionSecret))

	authenticationMiddleware := middleware.NewAuthentication(sessionService, userService)
	authorizationMiddleware := middleware.NewAuthorization(logger, userService)
	ssoMiddleware := middleware.NewSSOMiddleware(logger, userService, sessionService, cfg.Hostname, cfg.SecureCookies, cfg.SessionExpirationSeconds)

	eventHandler := event.NewHandler(eventService)
	imageHandler := image.NewHandler(imageService)
	userHandler := user.NewHandler(cfg, userService, sessionService)

	sweeper := inspector.NewInspector(logger, imageService, sessionService, sweepInterval, orphanImageGrace)
	go sweeper.Inspect(ctx)

	r := server.NewEngine(logger, eventHandler, imageHandler, userHandler, authenticationMiddleware, authorizationMiddleware, ssoMiddleware)
	return r.Run(fmt.Sprintf(":%d", cfg.Port))
}
