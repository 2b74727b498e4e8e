package database

import "buddyup/internal/models"

// PersistentModels returns every model managed by AutoMigrate. Schema-level
// constructs AutoMigrate cannot express, such as the pending-scoped unique
// index on match_requests, live in the SQL migrations instead.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Sport{},
		&models.SportPreference{},
		&models.MatchRequest{},
	}
}
