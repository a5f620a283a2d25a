package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/nichenest/nichenest/internal/groups/http"
	"github.com/nichenest/nichenest/internal/groups/service"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/internal/groups/store/drivers/sqlite"
	"github.com/nichenest/nichenest/pkg/jwtx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the groups service together: store, services, router,
// HTTP server.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *jwtx.Codec

	userService         *service.UserService
	groupService        *service.GroupService
	membershipService   *service.MembershipService
	requestService      *service.MemberRequestService
	invitationService   *service.InvitationService
	notificationService *service.NotificationService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "groups-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCodec(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start(context.Background())

	app.logger.Info("groups service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown gracefully stops the server, the housekeeping loop and the
// database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down groups service...")

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

	app.logger.Info("groups service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
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

func (app *Application) initCodec() error {
	secret := []byte(app.cfg.SessionSecret)
	if len(secret) == 0 {
		// Sessions will not survive a restart without a configured secret.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		app.logger.Warn("GROUPS_SESSION_SECRET not set, using a random per-boot secret")
	}

	codec, err := jwtx.NewCodec(secret, app.cfg.Issuer, app.cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize session codec: %w", err)
	}
	app.codec = codec
	return nil
}

func (app *Application) initServices() {
	app.notificationService = &service.NotificationService{Store: app.db}

	app.userService = &service.UserService{Store: app.db, Codec: app.codec}
	app.groupService = &service.GroupService{Store: app.db}
	app.membershipService = &service.MembershipService{
		Store:    app.db,
		Notifier: app.notificationService,
	}
	app.requestService = &service.MemberRequestService{
		Store:    app.db,
		Notifier: app.notificationService,
	}
	app.invitationService = &service.InvitationService{
		Store:    app.db,
		Notifier: app.notificationService,
	}
	app.housekeepingService = &service.HousekeepingService{
		Store:     app.db,
		Interval:  app.cfg.HousekeepingInterval,
		Retention: app.cfg.HousekeepingRetention,
	}
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)
	app.router.UserService = app.userService
	app.router.GroupService = app.groupService
	app.router.MembershipService = app.membershipService
	app.router.RequestService = app.requestService
	app.router.InvitationService = app.invitationService
	app.router.NotificationService = app.notificationService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
