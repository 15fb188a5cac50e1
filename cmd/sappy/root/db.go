package root

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/wabdoteth/sappy-care/internal/catalog"
	"github.com/wabdoteth/sappy-care/internal/config"
	"github.com/wabdoteth/sappy-care/internal/engine"
	"github.com/wabdoteth/sappy-care/internal/logging"
	"github.com/wabdoteth/sappy-care/internal/storage"
	"github.com/wabdoteth/sappy-care/internal/storage/filestore"
	"github.com/wabdoteth/sappy-care/internal/storage/sqlite"
)

// env is what every command needs: a service over an opened, seeded store.
type env struct {
	cfg   *config.Config
	svc   *engine.Service
	store storage.Store
	log   *slog.Logger
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.dataDir != "" {
		cfg.SetDataDir(flags.dataDir)
	}
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return filestore.Open(cfg.Path())
	default:
		return sqlite.Open(ctx, cfg.Path())
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath != "" {
		return catalog.LoadFile(cfg.CatalogPath)
	}
	return catalog.Default()
}

func openEnv(ctx context.Context) (*env, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", "err", err)
		}
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if err := cat.Seed(ctx, store.Repos().Shop); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("seed catalog: %w", err)
	}
	logger.Debug("store opened", "backend", cfg.Backend, "path", cfg.Path())

	svc := engine.NewService(store,
		engine.WithLogger(logger),
		engine.WithStickerDropRate(cfg.StickerDropRate),
	)
	return &env{cfg: cfg, svc: svc, store: store, log: logger}, cleanup, nil
}

func openService(ctx context.Context) (*engine.Service, func(), error) {
	e, cleanup, err := openEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	return e.svc, cleanup, nil
}

// openMutating opens the service and makes sure today's quests exist before
// any reward is applied.
func openMutating(ctx context.Context) (*engine.Service, func(), error) {
	svc, cleanup, err := openService(ctx)
	if err != nil {
		return nil, nil, err
	}
	if _, err := svc.EnsureDailyQuests(ctx, ""); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
