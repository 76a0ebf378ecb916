// Package app wires configuration, storage, services and the HTTP server together.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"eventease/config"
	"eventease/internal/adapters/auth"
	"eventease/internal/adapters/email"
	"eventease/internal/adapters/storage"
	httpdelivery "eventease/internal/delivery/http"
	"eventease/internal/delivery/http/controllers"
	"eventease/internal/delivery/http/middleware"
	"eventease/internal/repository/postgres"
	"eventease/internal/services"
	"eventease/migrations"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	cfg        *config.Config
	log        *slog.Logger
	db         *sql.DB
	httpServer *http.Server
}

func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	if err := app.initDB(); err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if cfg.RunMigrations {
		if err := runMigrations(app.db); err != nil {
			_ = app.db.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations applied successfully")
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("init services: %w", err)
	}
	return app, nil
}

func (a *App) initDB() error {
	db, err := sql.Open("postgres", a.cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	db.SetMaxOpenConns(a.cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(a.cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("pinging database: %w", err)
	}
	a.db = db
	a.log.Info("database connected", "max_open_conns", a.cfg.DBMaxOpenConns)
	return nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func (a *App) initServices() error {
	cfg := a.cfg

	venueRepo := postgres.NewVenueRepository(a.db)
	eventRepo := postgres.NewEventRepository(a.db)
	bookingRepo := postgres.NewBookingRepository(a.db)
	userRepo := postgres.NewUserRepository(a.db)
	roleRepo := postgres.NewRoleRepository(a.db)

	images, err := storage.New(storage.Config{
		Provider:        cfg.ImageStoreProvider,
		Dir:             cfg.ImageStoreDir,
		BaseURL:         cfg.ImageStoreBaseURL,
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	}, a.log)
	if err != nil {
		return fmt.Errorf("init image store: %w", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, a.log)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), a.log)

	tokens := auth.NewJWT(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, roleRepo, auth.NewBcryptHasher(0), tokens, services.AuthConfig{
		TokenExpiry:      cfg.JWTExpiry,
		AllowAdminSignUp: cfg.AllowAdminSignUp,
		Timeout:          cfg.ContextTimeout,
	})
	venueService := services.NewVenueService(venueRepo, images, cfg.ContextTimeout)
	eventService := services.NewEventService(eventRepo, venueRepo, images, cfg.ContextTimeout)
	bookingService := services.NewBookingService(services.BookingDeps{
		Bookings: bookingRepo,
		Events:   eventRepo,
		Venues:   venueRepo,
		Users:    userRepo,
		Email:    emailService,
	}, cfg.ConflictPolicy, a.log, cfg.ContextTimeout)

	deps := httpdelivery.RouterDeps{
		Logger:   a.log,
		Verifier: tokens,
		Auth:     controllers.NewAuthController(a.log, authService),
		Venues:   controllers.NewVenueController(a.log, venueService),
		Events:   controllers.NewEventController(a.log, eventService),
		Bookings: controllers.NewBookingController(a.log, bookingService),
		Health:   controllers.NewHealthController(a.log, a.db),
	}
	if local, ok := images.(*storage.LocalStore); ok {
		deps.UploadsDir = local.Dir()
		deps.UploadsPath = cfg.ImageStoreBaseURL
	}

	var handler http.Handler = httpdelivery.NewRouter(deps)
	handler = middleware.CORS(cfg.CORSAllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(a.log, handler)
	handler = middleware.Recovery(a.log, handler)

	a.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ContextTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	a.log.Info("services initialized",
		"conflict_policy", cfg.ConflictPolicy,
		"image_store", cfg.ImageStoreProvider,
		"email_provider", cfg.EmailProvider,
	)
	return nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP server starting", "addr", a.httpServer.Addr, "env", a.cfg.Environment)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.db.Close()
		return err
	}
	return a.shutdown()
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	a.log.Info("HTTP server stopped")

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	a.log.Info("database connection closed")
	return nil
}
