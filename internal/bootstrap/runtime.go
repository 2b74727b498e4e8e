// Package bootstrap wires up process-level dependencies shared by the
// server, migration, and seeding entry points.
package bootstrap

import (
	"context"
	"fmt"

	"buddyup/internal/cache"
	"buddyup/internal/config"
	"buddyup/internal/database"
	"buddyup/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureSchema runs the embedded SQL migrations (and AutoMigrate in
	// non-production environments) before returning.
	EnsureSchema bool
	// InstallSports installs the built-in sports catalog if missing.
	InstallSports bool
}

// InitRuntime connects to DB and Redis and prepares the schema.
// The Redis client may be nil if the server is unreachable; callers are
// expected to degrade gracefully.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.EnsureSchema {
		if err := database.EnsureSchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("schema setup failed: %w", err)
		}
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.InstallSports {
		if err := seed.InstallSports(db); err != nil {
			return nil, nil, fmt.Errorf("failed to install sports catalog: %w", err)
		}
	}

	return db, r, nil
}
