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

	"github.com/yplabs/council/internal/council/audit"
	"github.com/yplabs/council/internal/council/domain"
	httpapi "github.com/yplabs/council/internal/council/http"
	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/internal/council/identity/local"
	"github.com/yplabs/council/internal/council/service"
	"github.com/yplabs/council/internal/council/store"
	"github.com/yplabs/council/internal/council/store/drivers/sqlite"
	"github.com/yplabs/council/pkg/idx"
	"github.com/yplabs/council/pkg/jwtx"
	"github.com/yplabs/council/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the council service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	identity *local.Store

	intakeService   *service.IntakeService
	approvalService *service.ApprovalService
	bulkService     *service.BulkService
	cohortService   *service.CohortService
	accountService  *service.AccountService
	authzService    *service.AuthzService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "council-accounts",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := context.Background()

	if err := app.initStores(ctx); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	if err := app.ensureAdmin(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("council service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully stops the HTTP server and closes both databases.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down council service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.identity.Close(); err != nil {
		app.logger.Error("error closing identity database", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("council service stopped")
	return nil
}

func (app *Application) initStores(ctx context.Context) error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	signer, err := jwtx.NewSigner(app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to initialize session signer: %w", err)
	}

	identDSN := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.IdentityDatabaseFile)
	ident, err := local.NewStore(ctx, identDSN, signer)
	if err != nil {
		return fmt.Errorf("failed to initialize identity store: %w", err)
	}
	app.identity = ident

	return nil
}

func (app *Application) initServices() {
	sink := audit.LogSink{}

	app.intakeService = &service.IntakeService{Store: app.db}
	app.approvalService = &service.ApprovalService{Store: app.db, Identity: app.identity, Audit: sink}
	app.bulkService = &service.BulkService{Store: app.db, Identity: app.identity, Audit: sink}
	app.cohortService = &service.CohortService{Store: app.db, Audit: sink}
	app.accountService = &service.AccountService{Store: app.db, Identity: app.identity, Audit: sink}
	app.authzService = &service.AuthzService{Store: app.db, Identity: app.identity}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.identity, app.logger)
	router.IntakeService = app.intakeService
	router.ApprovalService = app.approvalService
	router.BulkService = app.bulkService
	router.CohortService = app.cohortService
	router.AccountService = app.accountService
	router.AuthzService = app.authzService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// ensureAdmin provisions the bootstrap admin account when the profile table
// is empty and credentials were configured. Without it a fresh deployment
// has no way to pass the admin gate.
func (app *Application) ensureAdmin(ctx context.Context) error {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return nil
	}

	profiles, err := app.db.Profiles().ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing profiles: %w", err)
	}
	if len(profiles) > 0 {
		return nil
	}

	ident, err := app.identity.Create(ctx, identity.CreateParams{
		Email:          app.cfg.AdminEmail,
		Password:       app.cfg.AdminPassword,
		EmailConfirmed: true,
		FullName:       "Bootstrap Admin",
	})
	if err != nil {
		if errors.Is(err, identity.ErrAlreadyExists) {
			// Identity survived a previous partial bootstrap; the
			// profile insert below is what was missing.
			app.logger.Warn("bootstrap admin identity already exists")
			return nil
		}
		return fmt.Errorf("failed to create bootstrap admin identity: %w", err)
	}

	err = app.db.Profiles().CreateProfile(ctx, domain.Profile{
		ID:          idx.New().String(),
		IdentityID:  ident.ID,
		FullName:    "Bootstrap Admin",
		AccountKind: domain.AccountOther,
		Role:        domain.RoleAdmin,
		Approved:    true,
		Disabled:    false,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin profile: %w", err)
	}

	app.logger.Info("bootstrap admin provisioned", "email", app.cfg.AdminEmail)
	return nil
}
