// SPDX-License-Identifier: MIT

// The vt2g daemon serves the download API, the exported GeoJSON files and
// the health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/vt2g/internal/api"
	"github.com/ManuGH/vt2g/internal/cache"
	"github.com/ManuGH/vt2g/internal/config"
	"github.com/ManuGH/vt2g/internal/daemon"
	"github.com/ManuGH/vt2g/internal/health"
	"github.com/ManuGH/vt2g/internal/jobs"
	vtlog "github.com/ManuGH/vt2g/internal/log"
	"github.com/ManuGH/vt2g/internal/resilience"
	"github.com/ManuGH/vt2g/internal/tile"
	"github.com/ManuGH/vt2g/internal/upstream"
	"github.com/ManuGH/vt2g/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	// Safe defaults until the configuration is loaded.
	vtlog.Configure(vtlog.Config{
		Level:   "info",
		Service: "vt2g",
		Version: version.Version,
	})
	logger := vtlog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		logger.Fatal().
			Err(err).
			Str(vtlog.FieldEvent, "config.invalid").
			Msg("invalid configuration")
	}

	vtlog.Configure(vtlog.Config{
		Level:   cfg.LogLevel,
		Service: "vt2g",
		Version: version.Version,
	})

	if err := health.PerformStartupChecks(cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str(vtlog.FieldEvent, "startup.check_failed").
			Msg("startup checks failed")
	}

	holder, err := config.NewCatalogHolder(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(vtlog.FieldEvent, "catalog.load_failed").
			Str(vtlog.FieldPath, cfg.CatalogPath).
			Msg("failed to load layer catalog")
	}
	go func() {
		if err := holder.Watch(ctx); err != nil {
			logger.Warn().Err(err).Msg("catalog watcher stopped")
		}
	}()

	store, err := openTileStore(cfg)
	if err != nil {
		logger.Fatal().
			Err(err).
			Str(vtlog.FieldEvent, "cache.open_failed").
			Str("backend", cfg.CacheBackend).
			Msg("failed to open tile store")
	}

	client := upstream.NewWithOptions(cfg.TileBase, upstream.Options{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
	})
	breaker := resilience.NewCircuitBreaker("upstream", cfg.BreakerThreshold, cfg.BreakerReset)

	manager := jobs.NewManager(ctx, jobs.Config{
		DataDir:      cfg.DataDir,
		Workers:      cfg.Workers,
		Retries:      cfg.Retries,
		FetchTimeout: cfg.FetchTimeout,
		MinZoom:      cfg.MinZoom,
		MaxZoom:      cfg.MaxZoom,
		CacheTTL:     cfg.CacheTTL,
		Client:       client,
		Store:        store,
		Breaker:      breaker,
		Catalog:      holder.Current,
	})

	hm := health.NewManager(version.Version)
	hm.RegisterChecker(health.NewWritableDirChecker("data_dir", cfg.DataDir))
	hm.RegisterChecker(health.NewUpstreamChecker(func(ctx context.Context) error {
		// A low-zoom tile over Japan; any HTTP answer counts as reachable.
		return client.Probe(ctx, tile.Tile{Z: 5, X: 28, Y: 12})
	}))
	hm.RegisterChecker(health.NewTileStoreChecker(storeHealth(store)))
	hm.RegisterChecker(health.NewLastRunChecker(manager.LastSuccess))

	server := api.NewServer(cfg, manager, hm, holder.Current, version.Version)

	deps := daemon.Deps{APIHandler: server.Routes()}
	if cfg.MetricsEnabled {
		deps.MetricsHandler = promhttp.Handler()
	}
	dm, err := daemon.NewManager(daemon.Config{
		ListenAddr:  cfg.ListenAddr,
		MetricsAddr: cfg.MetricsAddr,
	}, deps)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create daemon manager")
	}
	dm.RegisterShutdownHook("tile-store", func(context.Context) error {
		return store.Close()
	})

	logger.Info().
		Str(vtlog.FieldEvent, "daemon.starting").
		Str("version", version.Version).
		Str(vtlog.FieldBaseURL, cfg.TileBase).
		Str("cache_backend", cfg.CacheBackend).
		Msg("vt2g starting")

	if err := dm.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("daemon exited with error")
	}
}

// openTileStore builds the tile store for the configured backend.
func openTileStore(cfg config.AppConfig) (cache.TileStore, error) {
	switch cfg.CacheBackend {
	case "badger":
		path := cfg.CachePath
		if path == "" {
			path = filepath.Join(cfg.DataDir, "tiles")
		}
		return cache.OpenBadgerStore(path, vtlog.WithComponent("cache"))
	case "redis":
		return cache.NewRedisStore(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, vtlog.WithComponent("cache"))
	case "memory":
		return cache.NewMemoryStore(10 * time.Minute), nil
	case "none":
		return cache.NewNoOpStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// storeHealth returns a health probe for stores that support one.
func storeHealth(store cache.TileStore) func(ctx context.Context) error {
	type healthChecker interface {
		HealthCheck(ctx context.Context) error
	}
	if hc, ok := store.(healthChecker); ok {
		return hc.HealthCheck
	}
	return nil
}
