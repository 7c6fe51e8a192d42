package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	h "github.com/gorilla/handlers"
	"github.com/reviewfighters/reviewfighters-api/internal/config"
	"github.com/reviewfighters/reviewfighters-api/internal/handlers"
	"github.com/reviewfighters/reviewfighters-api/internal/kv"
	"github.com/reviewfighters/reviewfighters-api/internal/middleware"
	"github.com/reviewfighters/reviewfighters-api/internal/migration"
	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/reviewfighters/reviewfighters-api/internal/navigation"
	"github.com/reviewfighters/reviewfighters-api/internal/notification"
	"github.com/reviewfighters/reviewfighters-api/internal/repository"
	"github.com/reviewfighters/reviewfighters-api/internal/routes"
	"github.com/rs/zerolog"

	_ "github.com/lib/pq" // PostgreSQL driver
)

type application struct {
	config        *config.Config
	db            *sql.DB
	users         repository.UserRepository
	logger        zerolog.Logger
	notifications *notification.Store
	events        *notification.Events

	notificationHandler *handlers.NotificationHandler
}

func main() {
	// Set up structured, level-based logging.
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	logger := zerolog.New(consoleWriter).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.SetFlags(0)
	log.SetOutput(logger)

	// Load configuration.
	cfg := config.Load()
	if level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
	}

	// The navigation table doubles as the page authorization policy.
	if err := navigation.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid navigation policy")
	}

	// Initialize database connection.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ping database")
	}

	// Run database migrations.
	if err := migration.RunMigrations(db, logger); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	users := repository.NewUserRepository(db)

	// Initialize the notification store.
	storage, err := kv.NewSQLiteStore(cfg.Notifications.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open notification storage")
	}
	defer storage.Close()

	store := notification.NewStore(context.Background(), notification.Options{
		Storage:      storage,
		Namespace:    cfg.Notifications.Namespace,
		Platform:     newPlatform(cfg, users, logger),
		SoundEnabled: cfg.Notifications.SoundEnabled,
		Logger:       logger,
	})

	// Create the application instance.
	app := &application{
		config:        cfg,
		db:            db,
		users:         users,
		logger:        logger,
		notifications: store,
		events:        notification.NewEvents(store),
	}

	// Initialize the HTTP router and middleware.
	router := app.initRouter(logger)
	loggedRouter := middleware.LoggingMiddleware(app.logger)(router)
	corsHandler := h.CORS(
		h.AllowedOrigins(cfg.CORS.AllowedOrigins),
		h.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		h.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		h.AllowCredentials(),
	)(loggedRouter)
	recovered := h.RecoveryHandler(h.RecoveryLogger(log.Default()), h.PrintRecoveryStack(true))(corsHandler)

	// Start the HTTP server and handle graceful shutdown.
	app.startServer(recovered, logger)

	logger.Info().Msg("Application terminated.")
}

// newPlatform wires the native notification channels that are configured.
func newPlatform(cfg *config.Config, users repository.UserRepository, logger zerolog.Logger) notification.Platform {
	var notifiers []notification.Notifier

	if cfg.Notifications.Email.SMTPHost != "" {
		email, err := notification.NewEmailNotifier(cfg.Notifications.Email, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure email notifier")
		}
		notifiers = append(notifiers, email.WithRecipientLookup(func(ctx context.Context, userID string) (string, error) {
			user, err := users.Get(ctx, userID)
			if err != nil {
				return "", err
			}
			return user.Email, nil
		}))
	}
	if push := notification.NewPushNotifier(cfg.Notifications.Push, logger); push.Enabled() {
		notifiers = append(notifiers, push)
	}

	return notification.NewChannelPlatform(
		notification.StaticPrompter(cfg.Notifications.AutoGrant), logger, notifiers...)
}

// initRouter sets up all HTTP handlers and returns the router.
func (app *application) initRouter(logger zerolog.Logger) http.Handler {
	// Repositories
	userRepo := app.users
	profileRepo := repository.NewProfileRepository(app.db)
	reviewRepo := repository.NewReviewRepository(app.db)
	affiliateRepo := repository.NewAffiliateRepository(app.db)
	staffRepo := repository.NewStaffRepository(app.db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, app.events, app.config.JWTSecret, logger)
	app.notificationHandler = handlers.NewNotificationHandler(app.notifications, logger)

	return routes.NewRouter(routes.Handlers{
		Auth:          authHandler,
		Notifications: app.notificationHandler,
		Health:        handlers.HealthCheck(app.db),

		Users: handlers.NewResourceHandler[models.User]("user", userRepo, logger).
			AfterCreate(app.events.UserRegistered),
		Profiles: handlers.NewResourceHandler[models.UserProfile]("user profile", profileRepo, logger).
			OwnedBy(handlers.ProfileOwnership()),
		Reviews: handlers.NewResourceHandler[models.Review]("review", reviewRepo, logger).
			OwnedBy(handlers.ReviewOwnership()).
			AfterCreate(app.events.ReviewSubmitted),
		Affiliates: handlers.NewResourceHandler[models.Affiliate]("affiliate", affiliateRepo, logger).
			OwnedBy(handlers.AffiliateOwnership()).
			AfterCreate(app.events.AffiliateRegistered),
		StaffMembers: handlers.NewResourceHandler[models.StaffMember]("staff member", staffRepo, logger).
			AfterCreate(app.events.StaffOnboarded),
	})
}

// startServer launches the HTTP server and handles graceful shutdown.
func (app *application) startServer(handler http.Handler, logger zerolog.Logger) {
	server := &http.Server{
		Addr:    ":" + app.config.ServerPort,
		Handler: handler,
	}
	server.RegisterOnShutdown(app.notificationHandler.CloseStreams)

	// Channel to listen for server errors
	serverErrCh := make(chan error, 1)
	go func() {
		logger.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for an interrupt signal or a server error.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info().Msgf("Received signal: %s. Shutting down...", sig)
	case err := <-serverErrCh:
		logger.Error().Err(err).Msg("Server error occurred")
	}

	// Gracefully shut down the HTTP server.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		logger.Info().Msg("HTTP server shutdown complete.")
	}

	// Flush notification state before storage closes.
	logger.Info().Msg("Closing notification store...")
	app.notifications.Close()
	logger.Info().Msg("Notification store closed.")
}
