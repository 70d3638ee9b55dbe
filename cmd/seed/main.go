package main

import (
	"log"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

func main() {
	// Load configuration
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	users, err := db.SeedDemoData(database)
	if err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	// Print bearer tokens so the API can be exercised right away.
	tokens := auth.NewTokens(cfg)
	for _, u := range users {
		token, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			log.Fatalf("failed to issue token for %s: %v", u.Email, err)
		}
		log.Printf("%-20s %-6s %s", u.Email, u.Role, token)
	}

	log.Println("Seeding completed.")
}
