package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedBrands = []struct{ brand, model string }{
		{"Toyota", "Land Cruiser"}, {"Nissan", "Patrol"}, {"Lexus", "LX 600"},
		{"Chevrolet", "Tahoe"}, {"GMC", "Yukon"}, {"Mercedes", "G 63"},
		{"BMW", "X5"}, {"Porsche", "Cayenne"}, {"Honda", "Accord"}, {"Kia", "Sportage"},
	}
	seedColors = []string{"white", "black", "silver", "grey", "red", "blue"}
	seedFuel   = []string{"petrol", "hybrid", "diesel", "electric"}
)

// SeedDemoData resets the database and populates it with demo users and ads.
//
// Behavior:
//  1. Clears every table, children first.
//  2. Creates 5 members and one guest, all with password "password".
//  3. Creates ~40 ads spread across members, each with a thumbnail and images.
//  4. Soft-deletes every 7th ad so "my completed ads" has content.
//  5. Adds random favorites between members.
//  6. Ensures the category tree exists (categories are never cleared).
//
// The created users are returned so callers can issue demo tokens.
func SeedDemoData(db *gorm.DB) ([]User, error) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"ad_views", "ad_flags", "ad_favorites", "ad_media", "ad_drafts", "ads", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return nil, fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	// ad_views is the only auto-increment table
	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE ad_views AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'ad_views'")
	}

	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Users ---
	users := make([]User, 0, 6)
	for i := 1; i <= 5; i++ {
		users = append(users, User{
			FullName:     fmt.Sprintf("Demo User %d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			Phone:        fmt.Sprintf("+9655000000%d", i),
			PasswordHash: string(hash),
			Role:         RoleUser,
		})
	}
	users = append(users, User{
		FullName:     "Guest",
		Email:        "guest@example.com",
		PasswordHash: string(hash),
		Role:         RoleGuest,
	})
	if err := db.Create(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to seed users: %w", err)
	}
	members := users[:5]
	log.Printf("Seeded %d users.", len(users))

	// --- Ads ---
	now := time.Now().UTC().Truncate(time.Millisecond)
	ads := make([]Ad, 0, 40)
	for i := 0; i < 40; i++ {
		car := seedBrands[r.Intn(len(seedBrands))]
		owner := members[i%len(members)]
		expires := now.Add(time.Duration(1+r.Intn(30)) * 24 * time.Hour)
		created := now.Add(-time.Duration(40-i) * time.Hour)

		ad := Ad{
			UserID:        owner.ID,
			Title:         fmt.Sprintf("%s %s %d", car.brand, car.model, 2015+r.Intn(11)),
			Description:   "Single owner, agency maintained.",
			AdType:        "sale",
			Plan:          "free",
			Price:         float64(2000 + r.Intn(60)*500),
			Year:          2015 + r.Intn(11),
			Brand:         car.brand,
			Model:         car.model,
			ExteriorColor: seedColors[r.Intn(len(seedColors))],
			Transmission:  "automatic",
			FuelType:      seedFuel[r.Intn(len(seedFuel))],
			Mileage:       float64(r.Intn(200_000)),
			MileageUnit:   "km",
			Status:        AdStatusActive,
			ExpiresAt:     &expires,
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		if i%7 == 6 {
			ad.Status = AdStatusCompleted
			ad.DeletedAt = &created
		}

		ad.Media = append(ad.Media, Media{
			PublicID:  fmt.Sprintf("seed/ad-%02d/thumb", i),
			MediaType: MediaThumbnail,
		})
		for j := 0; j < 1+r.Intn(3); j++ {
			ad.Media = append(ad.Media, Media{
				PublicID:  fmt.Sprintf("seed/ad-%02d/img-%d", i, j),
				MediaType: MediaImage,
			})
		}
		ads = append(ads, ad)
	}
	if err := db.Create(&ads).Error; err != nil {
		return nil, fmt.Errorf("failed to seed ads: %w", err)
	}
	log.Printf("Seeded %d ads.", len(ads))

	// --- Favorites ---
	favorites := 0
	for _, u := range members {
		for j := 0; j < 6; j++ {
			ad := ads[r.Intn(len(ads))]
			if ad.UserID == u.ID || ad.DeletedAt != nil {
				continue
			}
			res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&AdFavorite{UserID: u.ID, AdID: ad.ID})
			if res.Error != nil {
				return nil, fmt.Errorf("failed to seed favorite: %w", res.Error)
			}
			favorites += int(res.RowsAffected)
		}
	}
	log.Printf("Seeded %d favorites.", favorites)

	if err := SeedCategories(db); err != nil {
		return nil, err
	}

	return users, nil
}
