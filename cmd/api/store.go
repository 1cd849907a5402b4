package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/cache"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/config"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/database/sqlite"
	"github.com/progate-hackathon-strawberry-flavor/WOODBLOCK-backend/internal/scores"
)

// openScoreStore は設定された保存先の scores.Store を開きます。戻り値の関数で接続を閉じます。
func openScoreStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (scores.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.ScoreBackend {
	case config.BackendPostgres:
		db, err := database.NewDatabaseService(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return database.NewResultRepository(db.DB), db.Close, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendRedis:
		store, err := cache.NewScoreStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.BackendMemory:
		logger.Warn("using in-memory score store; scores are lost on restart")
		return scores.NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown score backend %q", cfg.ScoreBackend)
}
