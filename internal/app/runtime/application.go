package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	app "github.com/R3E-Network/blog_service/internal/app"
	"github.com/R3E-Network/blog_service/internal/app/httpapi"
	"github.com/R3E-Network/blog_service/internal/app/metrics"
	"github.com/R3E-Network/blog_service/internal/app/storage/sqlstore"
	"github.com/R3E-Network/blog_service/internal/config"
	"github.com/R3E-Network/blog_service/internal/middleware"
	"github.com/R3E-Network/blog_service/internal/platform/database"
	"github.com/R3E-Network/blog_service/internal/platform/schema"
	"github.com/R3E-Network/blog_service/pkg/logger"
)

// limiterCleanupInterval is how often idle per-client limiters are dropped.
const limiterCleanupInterval = 5 * time.Minute

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *sqlx.DB
	limiter *middleware.RateLimiter
	server  *http.Server

	unregisterStats func()

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

// NewApplication opens the configured store and builds the HTTP server.
// A nil log is built from cfg.Logging.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if log == nil {
		log = logger.New(cfg.Logging.Logger())
	}

	a := &Application{cfg: cfg, log: log, ready: make(chan struct{}), unregisterStats: func() {}}

	stores, err := a.buildStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("configure stores: %w", err)
	}

	application := app.New(stores, log.With("component", "app"))

	opts := httpapi.Options{CORSOrigins: cfg.HTTP.Origins()}
	if cfg.HTTP.RateLimit > 0 {
		a.limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst, log.With("component", "ratelimit"))
		opts.RateLimiter = a.limiter
	}

	handler := httpapi.Wrap(httpapi.NewHandler(application, log.With("component", "httpapi")), log, opts)
	a.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return a, nil
}

func (a *Application) buildStores(ctx context.Context) (app.Stores, error) {
	dbCfg := a.cfg.Database
	if dbCfg.Driver == config.DriverMemory {
		a.log.Warn("database driver is memory; posts will not survive a restart")
		return app.Stores{}, nil
	}

	dialect, err := sqlstore.DialectFor(dbCfg.Driver)
	if err != nil {
		return app.Stores{}, err
	}

	db, err := database.Open(ctx, database.Config{
		Driver:          dbCfg.Driver,
		DSN:             dbCfg.DSN,
		MaxOpenConns:    dbCfg.MaxOpenConns,
		MaxIdleConns:    dbCfg.MaxIdleConns,
		ConnMaxLifetime: dbCfg.ConnMaxLifetime,
	})
	if err != nil {
		return app.Stores{}, err
	}

	if dbCfg.ApplySchema {
		if err := schema.Apply(ctx, db.DB, dbCfg.Driver); err != nil {
			_ = db.Close()
			return app.Stores{}, err
		}
	}

	a.db = db
	a.unregisterStats = metrics.RegisterDBStats(db.DB, dbCfg.Driver)
	a.log.WithField("driver", dbCfg.Driver).Info("database connected")

	store := sqlstore.New(db, dialect, sqlstore.WithAcquireTimeout(dbCfg.AcquireTimeout))
	return app.Stores{Posts: store, DB: db}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	a.mu.Lock()
	a.addr = ln.Addr()
	a.mu.Unlock()
	close(a.ready)

	if a.limiter != nil {
		a.limiter.StartCleanup(ctx, limiterCleanupInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", ln.Addr())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Addr blocks until Run is listening and returns the bound address.
func (a *Application) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case <-a.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr, nil
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.unregisterStats()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}
