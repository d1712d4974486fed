package store

import (
	"context"
	"fmt"

	"studyquest/internal/config"
	"studyquest/internal/database"
	"studyquest/internal/logger"
)

// Open builds the record store selected by cfg.StoreBackend. The returned
// close func releases the underlying connection.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (RecordStore, func() error, error) {
	switch cfg.StoreBackend {
	case "memory":
		log.Warn("using in-memory store, data will not survive a restart")
		return NewMemoryStore(), func() error { return nil }, nil

	case "redis":
		rs, err := NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		log.Info("redis store connected", "prefix", cfg.RedisPrefix)
		return rs, rs.Close, nil

	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		ran, err := db.RunMigrations(ctx)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database ready", "type", cfg.DatabaseType, "migrations_applied", len(ran))
		return NewSQLStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store backend: %s", cfg.StoreBackend)
	}
}
