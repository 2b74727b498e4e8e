package repository

import (
	"testing"

	"buddyup/internal/database"
	"buddyup/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the application schema.
// The connection pool is pinned to one connection so the memory database is
// shared for the lifetime of the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	// sqlite supports the same partial index the Postgres migration creates.
	require.NoError(t, db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_match_requests_active
		ON match_requests (requester_id, recipient_id, COALESCE(sport_id, 0))
		WHERE status = 'pending'`).Error)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	lat, lon := 39.9526, -75.1652
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "hashed-password",
		Latitude:    &lat,
		Longitude:   &lon,
		MaxTravelKm: models.DefaultMaxTravelKm,
		Public:      true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestSport(t *testing.T, db *gorm.DB, name, slug string) *models.Sport {
	t.Helper()

	sport := &models.Sport{Name: name, Slug: slug}
	require.NoError(t, db.Create(sport).Error)
	return sport
}
