package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"buddyup/internal/middleware"

	"gorm.io/gorm"
)

// Migration is one versioned SQL schema change with a paired rollback.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m *Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrations is the version-ordered registry, loaded once at init.
var migrations []Migration

func init() {
	loaded, err := loadMigrations(migrationFS)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded migrations: %v", err))
	}
	migrations = loaded
}

// loadMigrations reads NNNNNN_description.up.sql / .down.sql pairs from the
// embedded filesystem. An up script without a matching down script is an
// error; rollback support is not optional.
func loadMigrations(efs embed.FS) ([]Migration, error) {
	entries, err := efs.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if !ok {
			continue
		}

		versionRaw, name, ok := strings.Cut(base, "_")
		if !ok {
			return nil, fmt.Errorf("migration %q does not follow NNNNNN_name.up.sql", entry.Name())
		}
		version, err := strconv.Atoi(versionRaw)
		if err != nil {
			return nil, fmt.Errorf("migration %q has a non-numeric version: %w", entry.Name(), err)
		}

		up, err := efs.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, err
		}
		down, err := efs.ReadFile("migrations/" + base + ".down.sql")
		if err != nil {
			return nil, fmt.Errorf("migration %06d_%s has no down script: %w", version, name, err)
		}

		out = append(out, Migration{
			Version:    version,
			Name:       name,
			UpScript:   string(up),
			DownScript: string(down),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// GetMigrations returns the registered migrations in version order.
func GetMigrations() []Migration {
	return migrations
}

// GetMigrationByVersion returns the registered migration with the given
// version, or nil.
func GetMigrationByVersion(version int) *Migration {
	for i := range migrations {
		if migrations[i].Version == version {
			return &migrations[i]
		}
	}
	return nil
}

// MigrationLog is one row of the applied-migrations ledger.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationStore tracks which migrations have been applied.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, m Migration) error
	RemoveMigration(ctx context.Context, version int) error
}

// NewMigrationStore returns a MigrationStore backed by the migration_logs table.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &ledgerStore{db: db}
}

type ledgerStore struct {
	db *gorm.DB
}

func (s *ledgerStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	var versions []int
	err := s.db.WithContext(ctx).
		Model(&MigrationLog{}).
		Order("version ASC").
		Pluck("version", &versions).Error
	if err != nil {
		// first run: the ledger table itself does not exist yet
		if errors.Is(err, gorm.ErrRecordNotFound) || isMissingTableError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	return versions, nil
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

func (s *ledgerStore) ApplyMigration(ctx context.Context, m Migration) error {
	if err := s.db.WithContext(ctx).Exec(m.UpScript).Error; err != nil {
		return fmt.Errorf("apply migration %s: %w", m.String(), err)
	}
	entry := MigrationLog{Version: m.Version, Name: m.Name}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", m.String(), err)
	}
	middleware.Logger.Info("Migration applied",
		slog.Int("version", m.Version), slog.String("name", m.Name))
	return nil
}

func (s *ledgerStore) RemoveMigration(ctx context.Context, version int) error {
	if err := s.db.WithContext(ctx).Where("version = ?", version).Delete(&MigrationLog{}).Error; err != nil {
		return fmt.Errorf("remove migration record %d: %w", version, err)
	}
	middleware.Logger.Info("Migration rolled back", slog.Int("version", version))
	return nil
}

const createLedgerTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_migration_logs_applied_at ON migration_logs (applied_at);`

// RunMigrations ensures the ledger table exists and applies every
// registered migration that is not yet in the ledger, in version order.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(createLedgerTableSQL).Error; err != nil {
		return fmt.Errorf("ensure migration ledger table: %w", err)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if err := checkLedgerAgainstRegistry(applied); err != nil {
		return err
	}

	appliedSet := make(map[int]bool, len(applied))
	for _, v := range applied {
		appliedSet[v] = true
	}

	for _, m := range migrations {
		if appliedSet[m.Version] {
			continue
		}
		middleware.Logger.Info("Applying migration",
			slog.Int("version", m.Version), slog.String("name", m.Name))
		if err := store.ApplyMigration(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// checkLedgerAgainstRegistry refuses to run when the database records
// versions this binary has never heard of — an older binary against a newer
// database would otherwise silently skip schema it depends on.
func checkLedgerAgainstRegistry(applied []int) error {
	var unknown []string
	for _, version := range applied {
		if GetMigrationByVersion(version) == nil {
			unknown = append(unknown, fmt.Sprintf("%06d", version))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf(
		"migration_logs contains unknown versions not present in code: %s (rebuild the development database to recover)",
		strings.Join(unknown, ", "))
}

// RollbackMigration reverts a specific applied migration by version number.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}

	store := NewMigrationStore(db)
	applied, err := store.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}

	isApplied := false
	for _, v := range applied {
		if v == version {
			isApplied = true
			break
		}
	}
	if !isApplied {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration",
		slog.Int("version", version), slog.String("name", m.Name))
	if err := db.WithContext(ctx).Exec(m.DownScript).Error; err != nil {
		return fmt.Errorf("rollback migration %s: %w", m.String(), err)
	}
	return store.RemoveMigration(ctx, version)
}
