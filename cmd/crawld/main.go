package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/cache"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/config"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/db"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/dungeon"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/spawn"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/tactical"
	"github.com/FallingWithStyle/Avoros-Dungeon-sub000/internal/world"
)

const ConfigPath = "config/crawld.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && err != context.Canceled {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("CRAWLD_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("crawld starting", "log_level", cfg.LogLevel)

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	// Cross-node invalidation is optional; without NATS the per-key TTLs
	// bound staleness on sibling nodes.
	var invalidator *cache.Invalidator
	if cfg.Nats.URL != "" {
		invalidator, err = cache.NewInvalidator(cfg.Nats.URL, cfg.Nats.Subject)
		if err != nil {
			return fmt.Errorf("connecting invalidator: %w", err)
		}
		defer invalidator.Close()
	}

	// The cache is best-effort everywhere: without Redis the in-process
	// cache serves the same role for a single node.
	var store cache.Cache
	if cfg.Redis.Addr != "" {
		store, err = cache.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, invalidator)
		if err != nil {
			return fmt.Errorf("connecting cache: %w", err)
		}
	} else {
		slog.Info("redis not configured, using in-process cache")
		store = cache.NewMemoryCache()
	}
	defer store.Close()

	pool := database.Pool()
	roomRepo := db.NewRoomRepository(pool)
	positionRepo := db.NewPositionRepository(pool)
	mobRepo := db.NewMobRepository(pool)
	templateRepo := db.NewEnemyTemplateRepository(pool)
	tacticalRepo := db.NewTacticalRepository(pool)

	graph := world.NewGraph(roomRepo, store)
	mover := world.NewMover(graph, positionRepo, store, world.NoEnergyPolicy{})
	exploration := world.NewExploration(graph, positionRepo, store)
	registry := spawn.NewRegistry(mobRepo, templateRepo, graph, cfg.Policies(), store)
	board := tactical.NewBoard(tacticalRepo, registry, templateRepo, store)

	service := dungeon.NewService(graph, mover, exploration, registry, board, cfg.ScanRange)
	dungeon.SetDefault(service)

	g, gctx := errgroup.WithContext(ctx)

	respawnMgr := spawn.NewRespawnManager(registry, cfg.RespawnInterval)
	g.Go(func() error {
		if err := respawnMgr.Start(gctx); err != nil {
			return fmt.Errorf("respawn manager: %w", err)
		}
		return nil
	})

	if invalidator != nil {
		g.Go(func() error {
			if err := invalidator.Subscribe(gctx, store); err != nil && err != context.Canceled {
				return fmt.Errorf("invalidation subscriber: %w", err)
			}
			return context.Canceled
		})
	}

	slog.Info("crawld ready")
	return g.Wait()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
