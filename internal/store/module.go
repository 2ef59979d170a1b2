package store

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"signals_bot/internal/modules/config"
	"signals_bot/pkg/db"
	"signals_bot/pkg/logger"
)

func Module() fx.Option {
	return fx.Module("store",
		fx.Provide(
			New, // Store
		),
	)
}

// New выбирает бэкенд: postgres при заданном DSN, иначе плоский JSON-файл.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.DB != "" {
		pool, err := db.NewPool(ctx, db.PoolConfig{DSN: cfg.DB})
		if err != nil {
			return nil, fmt.Errorf("failed to create poolMaster: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, err
		}
		logger.Info("[STORE] backend: postgres")
		return NewPGStore(ctx, db.NewPgTxManager(pool))
	}
	logger.Info("[STORE] backend: file %s", cfg.Cache.File)
	return NewFileStore(cfg.Cache.File)
}
