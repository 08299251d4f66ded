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

	httpapi "github.com/tally-team/tally/internal/track/http"
	"github.com/tally-team/tally/internal/track/invite"
	"github.com/tally-team/tally/internal/track/service"
	"github.com/tally-team/tally/internal/track/store"
	"github.com/tally-team/tally/internal/track/store/drivers/postgres"
	"github.com/tally-team/tally/internal/track/store/drivers/sqlite"
	"github.com/tally-team/tally/pkg/jwtx"
	"github.com/tally-team/tally/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the tracking service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *invite.Codec

	userService         *service.UserService
	teamService         *service.TeamService
	projectService      *service.ProjectService
	taskService         *service.TaskService
	entryService        *service.EntryService
	invitationService   *service.InvitationService
	reportService       *service.ReportService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("TALLY_JWT_SECRET is required")
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tally",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	var codecOpts []invite.Option
	if cfg.InviteTTL > 0 {
		codecOpts = append(codecOpts, invite.WithTTL(cfg.InviteTTL))
	}
	codec, err := invite.NewCodec(cfg.InviteSecret, codecOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize invitation codec: %w", err)
	}
	app.codec = codec

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("tally starting", "addr", app.cfg.ListenAddr, "version", BuildVersion)

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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down tally...")

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

	app.logger.Info("tally stopped")
	return nil
}

// initDatabase opens the configured backend and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DBDriver {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseDSN)
	case "sqlite", "":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DBDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DBDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.teamService = &service.TeamService{Store: app.db}
	app.projectService = &service.ProjectService{
		Store: app.db,
		Teams: app.teamService,
	}
	app.taskService = &service.TaskService{
		Store:    app.db,
		Teams:    app.teamService,
		Projects: app.projectService,
	}
	app.entryService = &service.EntryService{
		Store: app.db,
		Teams: app.teamService,
	}
	app.invitationService = &service.InvitationService{
		Store: app.db,
		Teams: app.teamService,
		Codec: app.codec,
	}
	app.reportService = &service.ReportService{
		Store:    app.db,
		Teams:    app.teamService,
		Projects: app.projectService,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	verifier := jwtx.NewHS256Verifier([]byte(app.cfg.JWTSecret), app.cfg.Issuer)

	router := httpapi.NewRouter(
		verifier,
		BuildVersion,
		app.cfg.InviteLinkBase,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.UserService = app.userService
	router.TeamService = app.teamService
	router.ProjectService = app.projectService
	router.TaskService = app.taskService
	router.EntryService = app.entryService
	router.InvitationService = app.invitationService
	router.ReportService = app.reportService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
