package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/shopking/auth/internal/auth/http"
	"github.com/shopking/auth/internal/auth/notify/rabbitmq"
	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/internal/auth/store"
	"github.com/shopking/auth/internal/auth/store/drivers/redis"
	"github.com/shopking/auth/internal/auth/store/drivers/sqlite"
	"github.com/shopking/auth/pkg/cryptox"
	"github.com/shopking/auth/pkg/jwtx"
	"github.com/shopking/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	denylist service.SessionDenylist
	notifier service.ResetNotifier

	// Optional backends, nil when not configured.
	redis     *redis.Denylist
	publisher *rabbitmq.Publisher

	// Services
	authService         *service.AuthService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.initDenylist(ctx); err != nil {
		app.closeBackends()
		return nil, err
	}
	if err := app.initNotifier(); err != nil {
		app.closeBackends()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeBackends()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// closeBackends releases the broker, Redis and database in that order.
func (app *Application) closeBackends() error {
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.logger.Error("error closing rabbitmq publisher", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
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

// initDenylist uses Redis when configured and the SQLite table otherwise.
func (app *Application) initDenylist(ctx context.Context) error {
	if app.cfg.RedisAddr == "" {
		app.denylist = store.NewDenylistAdapter(app.db)
		app.logger.Info("session denylist backed by sqlite")
		return nil
	}

	rd, err := redis.Connect(ctx, redis.Options{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	app.redis = rd
	app.denylist = rd
	app.logger.Info("session denylist backed by redis", "addr", app.cfg.RedisAddr)
	return nil
}

// initNotifier publishes reset events to RabbitMQ when configured, or logs
// them. Links are only logged in dev.
func (app *Application) initNotifier() error {
	if app.cfg.AMQPURL == "" {
		app.notifier = service.LogNotifier{IncludeURL: app.cfg.IsDev()}
		app.logger.Warn("no AUTH_AMQP_URL set, reset links will only be logged")
		return nil
	}

	pub, err := rabbitmq.NewPublisher(rabbitmq.Options{URL: app.cfg.AMQPURL})
	if err != nil {
		return fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	app.publisher = pub
	app.notifier = pub
	app.logger.Info("reset links delivered via rabbitmq", "exchange", rabbitmq.DefaultExchange)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	vault, err := cryptox.NewPasswordVault(app.cfg.PasswordCost)
	if err != nil {
		return fmt.Errorf("failed to initialize password vault: %w", err)
	}

	sessions, err := jwtx.NewSessionIssuer(jwtx.SessionOptions{
		Secret: []byte(app.cfg.SessionSecret),
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize session issuer: %w", err)
	}

	app.authService = &service.AuthService{
		Store:        app.db,
		Vault:        vault,
		Resets:       service.NewResetTokenIssuer(app.cfg.ResetTTL),
		Sessions:     sessions,
		Notifier:     app.notifier,
		Denylist:     app.denylist,
		ResetURLBase: app.cfg.ResetURLBase,
		AdminEmails:  app.cfg.AdminEmails,
	}
	app.userService = &service.UserService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.logger)

	// Wire services to router
	router.AuthService = app.authService
	router.UserService = app.userService
	router.Database = app.db
	if app.redis != nil {
		router.Denylist = app.redis
	} else {
		router.Denylist = store.NewDenylistAdapter(app.db)
	}
	if app.publisher != nil {
		router.Notifier = app.publisher
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
