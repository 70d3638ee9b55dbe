package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/search"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/utils/pagination"
)

// AdRepository provides data access methods for the Ad model and its media.
type AdRepository struct {
	db *gorm.DB
}

// NewAdRepository creates a new repository bound to the given DB connection.
func NewAdRepository(database *gorm.DB) *AdRepository {
	return &AdRepository{db: database}
}

// WithTx returns a copy of the repository bound to tx.
func (r *AdRepository) WithTx(tx *gorm.DB) *AdRepository {
	return &AdRepository{db: tx}
}

// Page is one window of a search.
// NextCursor continues in the requested direction. PrevCursor sits on the
// row nearest the request cursor and is followed with the opposite
// direction: "backward" after a forward page, "forward" after a backward
// one. It is only set when the request resumed from a cursor.
type Page struct {
	Ads        []db.Ad
	Total      int64
	HasMore    bool
	NextCursor *string
	PrevCursor *string
}

// Create inserts an ad together with its media rows.
//
// Behavior:
//   - Ad and media are written in one transaction; any failure leaves nothing behind.
//   - The ad starts ACTIVE with no deleted_at.
func (r *AdRepository) Create(ctx context.Context, ad *db.Ad) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("User", "Favorites", "Flags").Create(ad).Error
	})
}

// Search runs a compiled query.
//
// Behavior:
//   - Total counts every row matching the filters, ignoring the cursor.
//   - Fetches q.Take (= limit+1) rows; the sentinel row only proves a next page exists.
//   - When walking backward the page is reversed back into display order.
//   - Preloads media, and the caller's own favorite/flag edges when callerID is set.
//
// Example:
//
//	page, err := repo.Search(ctx, q, "0192...")
func (r *AdRepository) Search(ctx context.Context, q *search.Query, callerID string) (*Page, error) {
	base := r.db.WithContext(ctx).Model(&db.Ad{})
	for _, c := range q.Where {
		base = base.Where(c.SQL, c.Args...)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	query := base
	if q.Keyset != nil {
		query = query.Where(q.Keyset.SQL, q.Keyset.Args...)
	}

	var ads []db.Ad
	err := withInteractions(query, callerID).
		Preload("Media", orderMedia).
		Order(q.OrderBy()).
		Limit(q.Take).
		Find(&ads).Error
	if err != nil {
		return nil, err
	}

	page := &Page{Total: total}
	page.Ads, page.HasMore = pagination.Trim(ads, q.Limit)

	if page.HasMore {
		page.NextCursor = encode(q.CursorFor(&page.Ads[len(page.Ads)-1]))
	}
	if q.HasCursor() && len(page.Ads) > 0 {
		page.PrevCursor = encode(q.CursorFor(&page.Ads[0]))
	}
	if q.Backward {
		pagination.Reverse(page.Ads)
	}

	return page, nil
}

// FindByID loads one ad with its owner and media, soft-deleted or not.
// Visibility is decided by the caller.
func (r *AdRepository) FindByID(ctx context.Context, id, callerID string) (*db.Ad, error) {
	var ad db.Ad
	err := withInteractions(r.db.WithContext(ctx), callerID).
		Preload("Media", orderMedia).
		Preload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "full_name", "phone", "created_at")
		}).
		Where("ads.id = ?", id).
		First(&ad).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// FindVisibleByIDs loads non-deleted ads among ids, in storage order.
func (r *AdRepository) FindVisibleByIDs(ctx context.Context, ids []string, callerID string) ([]db.Ad, error) {
	var ads []db.Ad
	err := withInteractions(r.db.WithContext(ctx), callerID).
		Preload("Media", orderMedia).
		Where("ads.id IN ? AND ads.deleted_at IS NULL", ids).
		Find(&ads).Error
	return ads, err
}

// LockByID reads the ad row under a row lock (no-op on SQLite).
// Must run inside a transaction.
func (r *AdRepository) LockByID(ctx context.Context, id string) (*db.Ad, error) {
	var ad db.Ad
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", id).
		First(&ad).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// MediaOf lists the media rows attached to adID.
func (r *AdRepository) MediaOf(ctx context.Context, adID string) ([]db.Media, error) {
	var media []db.Media
	err := orderMedia(r.db.WithContext(ctx)).Where("ad_id = ?", adID).Find(&media).Error
	return media, err
}

// MarkDeleted sets deleted_at and moves the ad to COMPLETED.
func (r *AdRepository) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Ad{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": at,
			"status":     db.AdStatusCompleted,
		}).Error
}

// Reactivate moves the ad back to ACTIVE, clears deleted_at and renews expiry.
func (r *AdRepository) Reactivate(ctx context.Context, id string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Ad{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     db.AdStatusActive,
			"deleted_at": nil,
			"expires_at": expiresAt,
		}).Error
}

// Delete removes the ad and every row that references it.
// Must run inside a transaction so the cascade is all-or-nothing.
func (r *AdRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx)
	for _, model := range []any{&db.Media{}, &db.AdFavorite{}, &db.AdFlag{}, &db.AdView{}} {
		if err := tx.Where("ad_id = ?", id).Delete(model).Error; err != nil {
			return err
		}
	}
	res := tx.Where("id = ?", id).Delete(&db.Ad{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ExpireBefore soft-deletes every live ad whose expires_at is before now.
func (r *AdRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&db.Ad{}).
		Where("deleted_at IS NULL AND expires_at IS NOT NULL AND expires_at < ?", now).
		Updates(map[string]any{
			"deleted_at": now,
			"status":     db.AdStatusCompleted,
		})
	return res.RowsAffected, res.Error
}

// IncrementViews bumps the denormalized view counter.
func (r *AdRepository) IncrementViews(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&db.Ad{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// --- helpers ---

func withInteractions(tx *gorm.DB, callerID string) *gorm.DB {
	if callerID == "" {
		return tx
	}
	return tx.
		Preload("Favorites", "user_id = ?", callerID).
		Preload("Flags", "user_id = ?", callerID)
}

func orderMedia(tx *gorm.DB) *gorm.DB {
	return tx.Order("ad_media.created_at ASC, ad_media.id ASC")
}

func encode(c pagination.Cursor) *string {
	token, err := pagination.Encode(c)
	if err != nil {
		return nil
	}
	return &token
}
