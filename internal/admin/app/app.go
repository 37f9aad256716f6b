package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	httpapi "github.com/lanternpress/novelsite/internal/admin/http"
	"github.com/lanternpress/novelsite/internal/admin/service"
	"github.com/lanternpress/novelsite/internal/admin/store"
	"github.com/lanternpress/novelsite/internal/admin/store/drivers/sqlite"
	"github.com/lanternpress/novelsite/pkg/cryptox"
	"github.com/lanternpress/novelsite/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the admin service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	// Services
	sessionManager      *service.SessionManager
	authService         *service.AuthService
	rateLimiter         *service.SessionRateLimiter
	thoughtsService     *service.ThoughtsService
	feedbackService     *service.FeedbackService
	newsletterService   *service.NewsletterService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "novelsite-admin",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("admin service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down admin service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admin service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.sessionManager = &service.SessionManager{
		Sessions:    app.db.Sessions(),
		CSRF:        service.CSRFGuard{},
		IdleTimeout: app.cfg.SessionIdleTimeout,
	}

	app.authService = &service.AuthService{
		Credential: domain.Credential{
			UserID:   "admin",
			Username: app.cfg.AdminUsername,
			Password: app.cfg.AdminPassword,
		},
		TOTPSecret: app.cfg.TOTPSecret,
		Sessions:   app.sessionManager,
	}

	app.rateLimiter = &service.SessionRateLimiter{
		Sessions: app.db.Sessions(),
	}

	sanitizer := service.NewSanitizer()
	app.thoughtsService = &service.ThoughtsService{Store: app.db, Sanitizer: sanitizer}
	app.feedbackService = &service.FeedbackService{Store: app.db}
	app.newsletterService = &service.NewsletterService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.SessionIdleTimeout,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() error {
	views, err := httpapi.NewViews()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.SessionManager = app.sessionManager
	router.RateLimiter = app.rateLimiter
	router.CSRFGuard = app.sessionManager.CSRF
	router.ThoughtsService = app.thoughtsService
	router.FeedbackService = app.feedbackService
	router.NewsletterService = app.newsletterService
	router.Views = views
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return nil
}
