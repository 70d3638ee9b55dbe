package repository_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/search"
)

//
// Test helpers
//

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB opens an isolated in-memory SQLite database per test and migrates it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	database, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), db.GormConfig("silent"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return database
}

func createUser(t *testing.T, gdb *gorm.DB, id string) db.User {
	t.Helper()
	u := db.User{ID: id, FullName: id, Email: id + "@test.com", PasswordHash: "x", Role: db.RoleUser}
	require.NoError(t, gdb.Create(&u).Error)
	return u
}

type adOpt func(*db.Ad)

func withBrand(b string) adOpt { return func(a *db.Ad) { a.Brand = b } }
func withTitle(s string) adOpt { return func(a *db.Ad) { a.Title = s } }
func deletedAt(ts time.Time) adOpt {
	return func(a *db.Ad) { a.DeletedAt = &ts; a.Status = db.AdStatusCompleted }
}
func expiresAt(ts time.Time) adOpt { return func(a *db.Ad) { a.ExpiresAt = &ts } }
func withMedia(ids ...string) adOpt {
	return func(a *db.Ad) {
		for _, id := range ids {
			a.Media = append(a.Media, db.Media{PublicID: id, MediaType: db.MediaImage})
		}
	}
}

// createAd inserts an ad created `minutes` after baseTime.
func createAd(t *testing.T, gdb *gorm.DB, owner string, price float64, minutes int, opts ...adOpt) db.Ad {
	t.Helper()
	ad := db.Ad{
		UserID:    owner,
		Title:     fmt.Sprintf("Car %.0f", price),
		AdType:    "SALE",
		Price:     price,
		Year:      2020,
		Brand:     "Toyota",
		Status:    db.AdStatusActive,
		CreatedAt: baseTime.Add(time.Duration(minutes) * time.Minute),
	}
	for _, o := range opts {
		o(&ad)
	}
	require.NoError(t, gdb.Create(&ad).Error)
	return ad
}

func ptr[T any](v T) *T { return &v }

func compile(t *testing.T, req search.Request, opts search.Options) *search.Query {
	t.Helper()
	opts.DefaultLimit, opts.MaxLimit = 12, 50
	q, err := search.Compile(req, opts)
	require.NoError(t, err)
	return q
}

func prices(ads []db.Ad) []float64 {
	out := make([]float64, len(ads))
	for i, a := range ads {
		out[i] = a.Price
	}
	return out
}
