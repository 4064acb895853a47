package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/bookcatalog/internal/audit"
	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/cache"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	auditrepo "github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	http_controllers "github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/logging"
	"github.com/mrlokans/bookcatalog/internal/metrics"
	"github.com/mrlokans/bookcatalog/internal/pagination"
	"github.com/mrlokans/bookcatalog/internal/scheduler"
	"github.com/mrlokans/bookcatalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// BuildInfo is stamped at build time and reported by /management/info.
type BuildInfo struct {
	Version string
	Commit  string
}

// App is the assembled service: the router plus everything that has to be
// released on shutdown.
type App struct {
	Router *gin.Engine

	cancel    context.CancelFunc
	shutdowns []ShutdownFunc
}

func (a *App) onShutdown(fn ShutdownFunc) {
	a.shutdowns = append(a.shutdowns, fn)
}

// Shutdown releases resources in reverse order of acquisition.
func (a *App) Shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i](ctx)
	}
}

// Build wires configuration into a ready-to-serve App.
func Build(cfg *config.Config, logger *logrus.Logger, info BuildInfo) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{cancel: cancel}

	if err := app.build(ctx, cfg, logger, info); err != nil {
		app.Shutdown(context.Background())
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context, cfg *config.Config, logger *logrus.Logger, info BuildInfo) error {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.onShutdown(func(context.Context) {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("error closing database")
		}
	})

	health := map[string]http_controllers.Pinger{"db": db}
	m := metrics.New()

	var bookRepo http_controllers.BookRepository = books.NewRepository(db.DB)
	if cfg.Cache.RedisAddr != "" {
		client, err := cache.NewClient(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword)
		if err != nil {
			return fmt.Errorf("failed to initialize cache: %w", err)
		}
		a.onShutdown(func(context.Context) { client.Close() })

		cached := cache.NewBookRepository(bookRepo, client, cfg.Cache.TTL, logger)
		if err := cached.Ping(ctx); err != nil {
			logger.WithError(err).WithField("addr", cfg.Cache.RedisAddr).Warn("cache unreachable at startup, reads fall back to the database")
		}
		health["cache"] = cached
		bookRepo = cached
		logger.WithField("cache", cached.String()).Info("entity cache enabled")
	}

	pages := pagination.Parser{
		DefaultSize: cfg.Pagination.DefaultSize,
		MaxSize:     cfg.Pagination.MaxSize,
		Sortable:    books.SortableProperties,
		DefaultSort: books.DefaultSort,
	}

	routerCfg := http_controllers.RouterConfig{
		Books:        bookRepo,
		Pages:        pages,
		AppName:      cfg.Global.AppName,
		Version:      info.Version,
		Commit:       info.Commit,
		Metrics:      m,
		Logger:       logger,
		HealthChecks: health,
		ReadOnly:     cfg.ReadOnly.Enabled,
	}

	if cfg.Audit.Enabled {
		auditService := audit.NewService(auditrepo.NewRepository(db.DB), logger)
		a.onShutdown(func(context.Context) { auditService.Wait() })
		routerCfg.Changes = auditService
		routerCfg.AuditLog = auditService

		if err := a.startAuditCleanup(ctx, cfg, auditService, m, health, logger); err != nil {
			return err
		}
	}

	switch cfg.Auth.Mode {
	case config.AuthModeNone, "":
		logger.Info("authentication mode: none (no authentication required)")
	case config.AuthModeJWT:
		if err := a.setupAuth(ctx, cfg, db, &routerCfg, logger); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown auth mode %q", cfg.Auth.Mode)
	}

	if cfg.RateLimit.Enabled {
		limiter := http_controllers.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		a.onShutdown(func(context.Context) { limiter.Stop() })
		routerCfg.RateLimiter = limiter
	}
	if cfg.ReadOnly.Enabled {
		logger.Info("read-only mode enabled, write operations will be blocked")
	}

	a.Router = http_controllers.NewRouter(routerCfg)
	return nil
}

// startAuditCleanup schedules retention cleanup, through the task queue
// when it is enabled and inline otherwise.
func (a *App) startAuditCleanup(ctx context.Context, cfg *config.Config, auditService *audit.Service, m *metrics.Metrics, health map[string]http_controllers.Pinger, logger *logrus.Logger) error {
	var enqueuer scheduler.AuditCleanupEnqueuer
	if cfg.Tasks.Enabled {
		taskClient, err := tasks.NewClient(cfg.Database.Path, tasks.FromConfig(cfg.Tasks), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService, m, logger))
		go taskClient.Start(ctx)
		a.onShutdown(func(ctx context.Context) {
			taskClient.Stop(ctx)
			if err := taskClient.Close(); err != nil {
				logger.WithError(err).Error("error closing task client")
			}
		})
		health["tasks"] = taskClient
		enqueuer = taskClient
	} else {
		enqueuer = tasks.NewInlineAuditCleanup(auditService, m, logger)
	}

	cleanup := scheduler.NewAuditCleanupScheduler(enqueuer, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays, logger)
	if err := cleanup.Start(ctx); err != nil {
		return fmt.Errorf("failed to start audit cleanup scheduler: %w", err)
	}
	a.onShutdown(func(context.Context) { cleanup.Stop() })
	return nil
}

func (a *App) setupAuth(ctx context.Context, cfg *config.Config, db *database.Database, routerCfg *http_controllers.RouterConfig, logger *logrus.Logger) error {
	logger.Info("authentication mode: jwt")

	tokens, err := auth.NewTokenProvider(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token provider: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("generated a random JWT secret, tokens will not survive a restart (set AUTH_JWT_SECRET to persist)")
	}

	service := auth.NewService(users.NewRepository(db.DB), tokens, cfg.Auth)
	hasUsers, err := service.HasUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if !hasUsers {
		logger.Warn("no users found, create one with 'bookcatalog create-user'")
	}

	limiter := auth.NewLoginLimiter(cfg.Auth)
	a.onShutdown(func(context.Context) { limiter.Stop() })

	routerCfg.Tokens = tokens
	routerCfg.Authenticator = service
	routerCfg.LoginThrottle = limiter
	return nil
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router http.Handler, cfg *config.Config, logger logrus.FieldLogger, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", addr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-quit:
	}
	logger.WithField("timeout", timeout).Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Drain in-flight requests first so their audit writes are waited on
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
	return nil
}

// Run configures logging, builds the App and serves it.
func Run(cfg *config.Config, info BuildInfo) error {
	logger := logging.Setup(cfg.Global.LogLevel, cfg.Global.LogFormat)
	logger.WithField("version", info.Version).Info("starting bookcatalog")
	gin.SetMode(gin.ReleaseMode)

	app, err := Build(cfg, logger, info)
	if err != nil {
		return err
	}
	return Serve(app.Router, cfg, logger, app.Shutdown)
}
