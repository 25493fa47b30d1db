package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"tintura-sst/internal/config"
	"tintura-sst/internal/database"
	"tintura-sst/internal/store"
	"tintura-sst/internal/store/memory"
	"tintura-sst/internal/supabase"
)

const startupPingTimeout = 10 * time.Second

type storeOpener func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, func(), error)

// openConfigured connects the store named by STORE_DRIVER and runs
// migrations for the postgres driver.
func openConfigured(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.RunMigrations {
			if err := database.NewMigrator(db, logger).Run(ctx); err != nil {
				db.Close()
				return nil, nil, fmt.Errorf("migration failed: %w", err)
			}
			logger.Info("migrations completed successfully")
		}
		return supabase.NewDatabaseClient(db), func() { db.Close() }, nil
	case config.StoreSupabase:
		client, err := supabase.NewRestClient(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return client, func() {}, nil
	default:
		st, err := memory.NewSeeded()
		if err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil
	}
}

// selectStore opens the configured store and checks it answers. When it
// does not and DEGRADED_FALLBACK is set, the seeded memory store is returned
// together with the reason; otherwise startup fails.
func selectStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger, open storeOpener) (store.Store, func(), string, error) {
	st, closeFn, err := open(ctx, cfg, logger)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
		err = st.Ping(pingCtx)
		cancel()
		if err != nil {
			closeFn()
		}
	}
	if err == nil {
		return st, closeFn, "", nil
	}

	if !cfg.DegradedFallback || cfg.StoreDriver == config.StoreMemory {
		return nil, nil, "", fmt.Errorf("%s store unavailable: %w", cfg.StoreDriver, err)
	}

	reason := fmt.Sprintf("%s store unavailable: %v", cfg.StoreDriver, err)
	config.LogError(logger, "main", "selectStore", "starting in degraded mode on seeded data", logrus.Fields{"driver": cfg.StoreDriver}, err)
	fallback, seedErr := memory.NewSeeded()
	if seedErr != nil {
		return nil, nil, "", fmt.Errorf("failed to seed fallback store: %w", seedErr)
	}
	return fallback, func() {}, reason, nil
}
