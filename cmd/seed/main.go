// Command main runs the database seeder for BuddyUp.
package main

import (
	"context"
	"flag"
	"log"

	"buddyup/internal/bootstrap"
	"buddyup/internal/config"
	"buddyup/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numRequests := flag.Int("requests", 120, "Number of match requests to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d match requests, clean=%v\n",
		*numUsers, *numRequests, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{
		EnsureSchema: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumRequests: *numRequests,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
}
