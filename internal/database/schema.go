package database

import (
	"context"
	"fmt"
	"log/slog"

	"buddyup/internal/config"
	"buddyup/internal/middleware"

	"gorm.io/gorm"
)

// EnsureSchema brings the database schema up to date. Versioned SQL
// migrations always run first; outside production, GORM AutoMigrate then
// reconciles any model drift the migrations do not cover yet. In production
// the SQL migrations are the only source of schema changes.
func EnsureSchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	if err := RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cfg.Env == "production" || cfg.Env == "prod" {
		return nil
	}

	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	middleware.Logger.Debug("AutoMigrate reconciled model schema",
		slog.Int("models", len(PersistentModels())),
	)
	return nil
}

// SchemaStatus summarizes migration progress for diagnostics.
type SchemaStatus struct {
	Registered int   `json:"registered"`
	Applied    int   `json:"applied"`
	Pending    []int `json:"pending,omitempty"`
}

// GetSchemaStatus reports which registered migrations have been applied.
func GetSchemaStatus(ctx context.Context, db *gorm.DB) (*SchemaStatus, error) {
	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	status := &SchemaStatus{
		Registered: len(migrations),
		Applied:    len(applied),
	}
	for _, m := range migrations {
		if !appliedSet[m.Version] {
			status.Pending = append(status.Pending, m.Version)
		}
	}
	return status, nil
}
