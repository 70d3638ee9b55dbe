package ads_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/cache"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/metrics"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/notify"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/service/ads"
)

//
// Test helpers
//

var (
	alice = auth.Principal{UserID: "alice", Role: db.RoleUser}
	bob   = auth.Principal{UserID: "bob", Role: db.RoleUser}
	guest = auth.Principal{UserID: "guest-1", Role: db.RoleGuest}
)

// fakeMedia records destroyed public ids and fails for the ones in failOn.
type fakeMedia struct {
	mu        sync.Mutex
	destroyed []string
	failOn    map[string]bool
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[publicID] {
		return errors.New("remote store unavailable")
	}
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.FavoriteEvent
}

func (f *fakeNotifier) AdFavorited(_ context.Context, ev notify.FavoriteEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type testEnv struct {
	appCtx   *app.AppContext
	svc      *ads.Service
	db       *gorm.DB
	redis    *miniredis.Miniredis
	media    *fakeMedia
	notifier *fakeNotifier
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.ENV = config.EnvTest
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Issuer = "kuwait-cars"
	cfg.JWT.TTL = time.Hour
	cfg.Ads.PageSize = 12
	cfg.Ads.MaxPageSize = 50
	cfg.Ads.DraftLimit = 2
	cfg.Ads.ExpiryDays = 30
	cfg.Ads.BatchMax = 3
	cfg.Cron.Secret = "cron-secret"
	return cfg
}

// setup wires a service over an isolated in-memory SQLite database, a
// miniredis instance and recording fakes. alice and bob exist as users.
func setup(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), db.GormConfig("silent"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	mr := miniredis.RunT(t)
	rc := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	appCtx := app.New(testConfig(), gdb, rc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	media := &fakeMedia{failOn: map[string]bool{}}
	notifier := &fakeNotifier{}
	appCtx.Media = media
	appCtx.Notifier = notifier
	appCtx.Metrics = metrics.New()

	for _, id := range []string{"alice", "bob", "guest-1"} {
		role := db.RoleUser
		if id == "guest-1" {
			role = db.RoleGuest
		}
		require.NoError(t, gdb.Create(&db.User{ID: id, FullName: id, Email: id + "@test.com", PasswordHash: "x", Role: role}).Error)
	}

	return &testEnv{
		appCtx:   appCtx,
		svc:      ads.NewService(appCtx),
		db:       gdb,
		redis:    mr,
		media:    media,
		notifier: notifier,
	}
}

func ptr[T any](v T) *T { return &v }

// newAd creates an ACTIVE ad owned by p through the service.
func (e *testEnv) newAd(t *testing.T, p auth.Principal, title string, price float64, media ...string) ads.View {
	t.Helper()
	in := ads.CreateAdInput{
		AdType:      "SALE",
		Title:       title,
		Description: "well kept",
		Price:       &price,
		Year:        ptr(2020),
		Brand:       "Toyota",
	}
	for _, id := range media {
		in.Media = append(in.Media, ads.MediaInput{PublicID: id, MediaType: "IMAGE"})
	}
	v, err := e.svc.CreateAd(context.Background(), p, in)
	require.NoError(t, err)
	return *v
}

func (e *testEnv) load(t *testing.T, id string) db.Ad {
	t.Helper()
	var ad db.Ad
	require.NoError(t, e.db.Where("id = ?", id).First(&ad).Error)
	return ad
}

func requireCode(t *testing.T, err error, kind svcErr.Kind, code svcErr.Code) {
	t.Helper()
	var typed *svcErr.Error
	require.True(t, errors.As(err, &typed), "expected typed error, got %v", err)
	assert.Equal(t, kind, typed.Kind)
	assert.Equal(t, code, typed.Code)
}
