// Package server builds the service dependencies and runs its listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/pageinfo/internal/analyzer"
	"github.com/JakeFAU/pageinfo/internal/api"
	"github.com/JakeFAU/pageinfo/internal/cache"
	"github.com/JakeFAU/pageinfo/internal/cache/memory"
	rediscache "github.com/JakeFAU/pageinfo/internal/cache/redis"
	"github.com/JakeFAU/pageinfo/internal/clock/system"
	"github.com/JakeFAU/pageinfo/internal/config"
	collyfetcher "github.com/JakeFAU/pageinfo/internal/fetcher/colly"
	"github.com/JakeFAU/pageinfo/internal/id/uuid"
	"github.com/JakeFAU/pageinfo/internal/logging"
)

const startupPingTimeout = 2 * time.Second

// App contains the application's dependencies.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	cache      cache.Store
	apiServer  *api.Server
	admin      http.Handler
	listenAddr string
	adminAddr  string
}

// Build creates the application's dependencies. The cache client is created
// once here and shared by every request.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	app := &App{
		cfg:        cfg,
		logger:     logger,
		listenAddr: cfg.ListenAddr(),
		adminAddr:  cfg.AdminAddr(),
	}
	logger.Info("building application dependencies",
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Duration("fetch_timeout", cfg.Fetch.Timeout),
		zap.Int("admin_port", cfg.Admin.Port),
	)

	app.cache = setupCache(ctx, cfg, logger)

	fetcher := collyfetcher.New(collyfetcher.Config{
		UserAgent:   cfg.Fetch.UserAgent,
		Timeout:     cfg.Fetch.Timeout,
		MaxBodySize: cfg.Fetch.MaxBodySize,
	})
	pageAnalyzer := analyzer.New(fetcher, logger.Named("analyzer"))

	app.apiServer = api.NewServer(
		pageAnalyzer,
		app.cache,
		uuid.NewGenerator(),
		api.Options{
			CachePrefix:    cfg.Cache.Prefix,
			CacheTTL:       cfg.Cache.TTL,
			RequestTimeout: cfg.Server.RequestTimeout,
		},
		logger.Named("api"),
	)
	app.admin = api.NewAdminHandler(app.cache, logger.Named("admin"))
	return app, nil
}

// setupCache never fails: an unreachable Redis is logged and the service
// keeps answering without the cache.
func setupCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Store {
	if cfg.Cache.Backend == config.BackendMemory {
		logger.Info("using in-memory cache backend")
		return memory.NewStore(system.New())
	}
	store := rediscache.New(rediscache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.IOTimeout,
		WriteTimeout: cfg.Redis.IOTimeout,
		PoolSize:     cfg.Redis.PoolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable at startup, serving uncached until it recovers",
			zap.String("addr", net.JoinHostPort(cfg.Redis.Host, fmt.Sprint(cfg.Redis.Port))),
			zap.Error(err),
		)
	} else {
		logger.Info("using redis cache backend", zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	}
	return store
}

// Handler exposes the public router.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// AdminHandler exposes the health and metrics router.
func (a *App) AdminHandler() http.Handler {
	return a.admin
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run starts the listeners and blocks until the context is canceled or a
// termination signal arrives, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servers := make([]*http.Server, 0, 2)
	mainSrv, err := a.serve(a.listenAddr, a.apiServer.Handler(), "http", stop)
	if err != nil {
		return err
	}
	servers = append(servers, mainSrv)

	if a.adminAddr != "" {
		adminSrv, err := a.serve(a.adminAddr, a.admin, "admin", stop)
		if err != nil {
			a.shutdown(servers)
			return err
		}
		servers = append(servers, adminSrv)
	}

	<-ctx.Done()
	a.logger.Info("shutdown initiated")
	a.shutdown(servers)
	return a.Close(context.Background())
}

func (a *App) serve(addr string, handler http.Handler, name string, stop context.CancelFunc) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%s listen on %s: %w", name, addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
	}
	go func() {
		a.logger.Info(name+" server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(name+" server error", zap.Error(err))
			stop()
		}
	}()
	return srv, nil
}

func (a *App) shutdown(servers []*http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", zap.Error(err))
		}
	}
}

// Close releases the cache client and flushes the logger.
func (a *App) Close(_ context.Context) error {
	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("cache close failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	a.logger.Info("shutdown complete")
	// Sync on a console writer can report EINVAL.
	_ = a.logger.Sync()
	return errors.Join(errs...)
}
