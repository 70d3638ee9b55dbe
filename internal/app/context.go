package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/cache"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/config"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/media"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/metrics"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/notify"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.)
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Tokens     *auth.Tokens
	Media      media.Store
	Notifier   notify.Notifier
	Metrics    *metrics.Metrics
}

// New creates a new AppContext.
// Media and Notifier default to no-ops so services never nil-check them.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger) *AppContext {
	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Tokens:     auth.NewTokens(cfg),
		Media:      media.Noop{},
		Notifier:   notify.Noop{},
	}
}
