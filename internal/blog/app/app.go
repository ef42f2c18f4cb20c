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

	"github.com/aussiebroadwan/blog/internal/blog/acl"
	httpapi "github.com/aussiebroadwan/blog/internal/blog/http"
	"github.com/aussiebroadwan/blog/internal/blog/mfa"
	"github.com/aussiebroadwan/blog/internal/blog/service"
	"github.com/aussiebroadwan/blog/internal/blog/session"
	"github.com/aussiebroadwan/blog/internal/blog/store/drivers/sqlite"
	"github.com/aussiebroadwan/blog/pkg/cryptox"
	"github.com/aussiebroadwan/blog/pkg/httpx"
	"github.com/aussiebroadwan/blog/pkg/jwtx"
	"github.com/aussiebroadwan/blog/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application owns the blog service and all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// clock is shared by the token codec and every service.
	clock service.Clock

	db       *sqlite.Store
	sessions *session.Provider
	codec    *jwtx.Codec
	verifier *mfa.Verifier
	hasher   *cryptox.PasswordHasher

	authService      *service.AuthService
	userService      *service.UserService
	draftService     *service.DraftService
	bootstrapService *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New builds the application. The redis connection is not opened here; the
// session provider dials on first use.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:   cfg,
		clock: time.Now,
		logger: slogx.New(slogx.Config{
			Service: "blog",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadPepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)

	codec, err := jwtx.NewCodec([]byte(cfg.SecretKey), cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	codec.Now = app.clock
	app.codec = codec
	app.verifier = mfa.NewVerifier(cfg.TOTPIssuer, cfg.TOTPSkew)
	app.sessions = session.NewProvider(cfg.RedisURL)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("blog service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests, then closes redis and the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down blog service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.sessions.Close(); err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("blog service stopped")
	return nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

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

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:           app.db,
		Cache:           app.sessions,
		Codec:           app.codec,
		MFA:             app.verifier,
		Hasher:          app.hasher,
		AccessTTL:       app.cfg.AccessTokenTTL,
		RefreshTTL:      app.cfg.RefreshTokenTTL,
		VerificationTTL: app.cfg.VerificationTTL,
		Now:             app.clock,
	}

	table := acl.Default(service.UserOwner(app.db), service.DraftOwner(app.db))
	app.userService = &service.UserService{Store: app.db, ACL: table, Now: app.clock}
	app.draftService = &service.DraftService{Store: app.db, ACL: table, Now: app.clock}

	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: app.hasher,
		MFA:    app.verifier,
		Token:  app.cfg.BootstrapToken,
		Now:    app.clock,
	}
	if app.bootstrapService.Enabled() {
		app.logger.Info("bootstrap endpoint enabled")
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(httpapi.Options{
		APIPrefix:    app.cfg.APIPrefix,
		BuildVersion: BuildVersion,
		CORSOrigins:  app.cfg.CORSOrigins,
		Cookies:      httpx.CookieOptions{Secure: app.cfg.CookieSecure, Path: "/"},
		Limits:       app.cfg.RateLimits,
	}, app.db, app.sessions, app.logger)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.DraftService = app.draftService
	router.BootstrapService = app.bootstrapService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
