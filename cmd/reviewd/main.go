package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"reviewapp/internal/catalog"
	"reviewapp/internal/identity"
	"reviewapp/internal/navigation"
	"reviewapp/internal/platform/config"
	"reviewapp/internal/platform/httpserver"
	"reviewapp/internal/platform/logger"
	"reviewapp/internal/platform/metrics"
	"reviewapp/internal/platform/postgres"
	"reviewapp/internal/platform/redis"
	"reviewapp/internal/preferences"
	"reviewapp/internal/preferences/store"
	"reviewapp/internal/theme"
	httptransport "reviewapp/internal/transport/http"
	"reviewapp/pkg/platform/circuit"
)

// main wires the session's owned state (preferences, theme, navigation,
// identity) and serves the adapter surface until SIGINT or SIGTERM.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("reviewd stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	// Store latency metrics live on the default registry; everything owned by
	// this process registers on reg. /metrics serves both.
	reg := prometheus.NewRegistry()
	appMetrics := metrics.New(reg)

	backend, checks, closeBackend, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	prefs := preferences.New(backend,
		preferences.WithLogger(log),
		preferences.WithGracePeriod(cfg.Preferences.GracePeriod),
	)
	defer prefs.Close()

	seedCtx, cancelSeed := context.WithTimeout(ctx, cfg.Identity.WaitTimeout)
	if err := prefs.Seed(seedCtx); err != nil {
		log.Warn("preference seeding failed, flows will load lazily", "error", err)
	}
	if _, err := prefs.EnsureIdentity(seedCtx); err != nil {
		log.Warn("no identity at startup, requests may go out anonymously", "error", err)
	}
	cancelSeed()

	engine := theme.NewEngine(prefs.ThemeMode(),
		theme.WithLogger(log),
		theme.WithTransitionHook(func(m theme.Mode) {
			appMetrics.IncrementThemeTransition(m.String())
		}),
	)
	defer engine.Close()

	injector := identity.NewInjector(prefs.UserID(),
		identity.WithWaitTimeout(cfg.Identity.WaitTimeout),
		identity.WithLogger(log),
		identity.WithMetrics(identity.NewMetrics(reg)),
	)
	injector.Start(ctx)
	defer injector.Stop()

	nav := navigation.NewNavigator(
		navigation.WithLogger(log),
		navigation.WithMetrics(appMetrics),
	)

	opts := []httptransport.Option{
		httptransport.WithLogger(log),
		httptransport.WithIdentity(injector),
	}
	for name, check := range checks {
		opts = append(opts, httptransport.WithHealthCheck(name, check))
	}
	if cfg.Catalog.BaseURL != "" {
		client, err := catalog.NewClient(cfg.Catalog.BaseURL,
			catalog.WithTransport(injector),
			catalog.WithTimeout(cfg.Catalog.Timeout),
			catalog.WithLogger(log),
		)
		if err != nil {
			return err
		}
		opts = append(opts, httptransport.WithCatalog(client))
	}

	handler := httptransport.New(nav, engine, prefs, opts...)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler, metrics.Handler(prometheus.Gatherers{prometheus.DefaultGatherer, reg})))

	log.Info("starting reviewd", "addr", cfg.Addr, "store", cfg.Store.Backend)
	return httpserver.Serve(ctx, srv, httpserver.DefaultShutdownTimeout, log)
}

// openStore builds the configured preference backend. Remote backends are
// fronted by a circuit-breaking in-memory fallback.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.Store, map[string]httptransport.HealthCheck, func(), error) {
	checks := map[string]httptransport.HealthCheck{}
	breaker := circuit.New("preference-store",
		circuit.WithFailureThreshold(cfg.Store.FailureThreshold),
		circuit.WithSuccessThreshold(cfg.Store.SuccessThreshold),
	)
	wrap := func(primary store.Store) *store.Fallback {
		return store.NewFallback(primary, store.WithBreaker(breaker), store.WithLogger(log))
	}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		rc, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		if rc == nil {
			return nil, nil, nil, errors.New("redis backend selected but REDIS_URL is empty")
		}
		checks["redis"] = rc.Health
		return wrap(store.NewRedis(rc.Client)), checks, func() { _ = rc.Close() }, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		if db == nil {
			return nil, nil, nil, errors.New("postgres backend selected but DATABASE_URL is empty")
		}
		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		checks["postgres"] = db.PingContext
		return wrap(pg), checks, closeDB(db, log), nil

	case config.BackendMemory, "":
		return store.NewMemory(), checks, func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func closeDB(db *sql.DB, log *slog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
}
