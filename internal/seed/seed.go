// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"fmt"
	"log"

	"buddyup/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumRequests int
	ShouldClean bool
}

// sportsCatalog is the fixed sports list installed by the seeder. Slugs
// match what the migrations would produce for a production catalog.
var sportsCatalog = []models.Sport{
	{Name: "Basketball", Slug: "basketball"},
	{Name: "Tennis", Slug: "tennis"},
	{Name: "Soccer", Slug: "soccer"},
	{Name: "Running", Slug: "running"},
	{Name: "Cycling", Slug: "cycling"},
	{Name: "Climbing", Slug: "climbing"},
	{Name: "Swimming", Slug: "swimming"},
	{Name: "Volleyball", Slug: "volleyball"},
	{Name: "Badminton", Slug: "badminton"},
	{Name: "Table Tennis", Slug: "table-tennis"},
	{Name: "Golf", Slug: "golf"},
	{Name: "Yoga", Slug: "yoga"},
}

// Seed populates the database with test data
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users and %d match requests...",
		opts.NumUsers, opts.NumRequests)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	factory, err := NewFactory(db)
	if err != nil {
		return err
	}

	sports, err := createSports(db)
	if err != nil {
		return fmt.Errorf("failed to create sports: %w", err)
	}
	log.Printf("✓ %d sports installed", len(sports))

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	prefCount, err := createPreferences(factory, users, sports)
	if err != nil {
		return fmt.Errorf("failed to create sport preferences: %w", err)
	}
	log.Printf("✓ %d sport preferences created", prefCount)

	reqCount, err := createMatchRequests(factory, users, sports, opts.NumRequests)
	if err != nil {
		return fmt.Errorf("failed to create match requests: %w", err)
	}
	log.Printf("✓ %d match requests created", reqCount)

	log.Println("🎉 Database seeding completed!")
	log.Printf("   Every account logs in with password %q", sharedPassword)
	return nil
}

// clearData removes seeded rows in dependency order.
func clearData(db *gorm.DB) error {
	tables := []string{"match_requests", "sport_preferences", "sports", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// InstallSports makes sure the built-in sports catalog exists. Safe to run
// on every startup; existing rows are left untouched.
func InstallSports(db *gorm.DB) error {
	_, err := createSports(db)
	return err
}

func createSports(db *gorm.DB) ([]models.Sport, error) {
	for i := range sportsCatalog {
		sport := sportsCatalog[i]
		sport.ID = 0
		err := db.Where(models.Sport{Slug: sport.Slug}).FirstOrCreate(&sport).Error
		if err != nil {
			return nil, err
		}
	}

	var sports []models.Sport
	if err := db.Order("id").Find(&sports).Error; err != nil {
		return nil, err
	}
	return sports, nil
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		users = append(users, factory.BuildUser(i+1))
	}
	if err := factory.CreateUsersBatch(users); err != nil {
		return nil, err
	}
	return users, nil
}

func createPreferences(factory *Factory, users []*models.User, sports []models.Sport) (int, error) {
	if len(sports) == 0 {
		return 0, nil
	}

	var prefs []*models.SportPreference
	for _, user := range users {
		count := 1 + factory.rng.Intn(3)
		for _, idx := range factory.rng.Perm(len(sports))[:count] {
			prefs = append(prefs, factory.BuildPreference(user.ID, sports[idx].ID))
		}
	}
	if len(prefs) == 0 {
		return 0, nil
	}
	if err := factory.db.CreateInBatches(prefs, 200).Error; err != nil {
		return 0, err
	}
	return len(prefs), nil
}

// pairKey identifies an ordered (requester, recipient, sport) triple so the
// seeder never violates the pending-scoped unique index.
type pairKey struct {
	requester uint
	recipient uint
	sport     uint
}

func createMatchRequests(factory *Factory, users []*models.User, sports []models.Sport, count int) (int, error) {
	if len(users) < 2 || count <= 0 {
		return 0, nil
	}

	seen := make(map[pairKey]bool, count)
	var requests []*models.MatchRequest

	attempts := 0
	for len(requests) < count && attempts < count*10 {
		attempts++

		requester := users[factory.rng.Intn(len(users))]
		recipient := users[factory.rng.Intn(len(users))]
		if requester.ID == recipient.ID {
			continue
		}

		var sportID *uint
		key := pairKey{requester: requester.ID, recipient: recipient.ID}
		if len(sports) > 0 && factory.rng.Intn(4) != 0 {
			sport := sports[factory.rng.Intn(len(sports))]
			sportID = &sport.ID
			key.sport = sport.ID
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		requests = append(requests, factory.BuildMatchRequest(requester.ID, recipient.ID, sportID))
	}

	if len(requests) == 0 {
		return 0, nil
	}
	if err := factory.db.CreateInBatches(requests, 200).Error; err != nil {
		return 0, err
	}
	return len(requests), nil
}
