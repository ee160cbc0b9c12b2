package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-lexicon/internal/config"
	"github.com/phrazzld/scry-lexicon/internal/platform/filestore"
	"github.com/phrazzld/scry-lexicon/internal/platform/postgres"
	"github.com/phrazzld/scry-lexicon/internal/platform/redisstore"
	"github.com/phrazzld/scry-lexicon/internal/platform/sqlite"
	"github.com/phrazzld/scry-lexicon/internal/store"
)

func noopClose() error { return nil }

// openBackend builds the store backend named by cfg.Driver. The returned
// function releases any connection it holds.
func openBackend(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store.Backend, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryBackend(nil), noopClose, nil

	case config.DriverFile:
		backend, err := filestore.NewBackend(cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return backend, noopClose, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		backend, err := sqlite.NewBackend(db, cfg.Key, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return backend, db.Close, nil

	case config.DriverPostgres:
		db, err := postgres.OpenDB(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		backend, err := postgres.NewCollectionBackend(db, cfg.Key, logger)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return backend, db.Close, nil

	case config.DriverRedis:
		rdb, err := redisstore.NewClient(ctx, cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		backend, err := redisstore.NewBackend(rdb, cfg.Key, logger)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return backend, rdb.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store driver %q", config.ErrInvalidConfig, cfg.Driver)
	}
}
