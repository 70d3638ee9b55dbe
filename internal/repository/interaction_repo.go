package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

// InteractionRepository stores favorite, flag and view edges between users and ads.
// Callers wrap check-then-act sequences in a transaction via WithTx.
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(database *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: database}
}

func (r *InteractionRepository) WithTx(tx *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: tx}
}

// HasFavorite reports whether userID has favorited adID.
func (r *InteractionRepository) HasFavorite(ctx context.Context, userID, adID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.AdFavorite{}).
		Where("user_id = ? AND ad_id = ?", userID, adID).
		Count(&count).Error
	return count > 0, err
}

// AddFavorite inserts the edge; an existing edge is left untouched.
func (r *InteractionRepository) AddFavorite(ctx context.Context, userID, adID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.AdFavorite{UserID: userID, AdID: adID}).Error
}

// RemoveFavorite deletes the edge and reports whether one existed.
func (r *InteractionRepository) RemoveFavorite(ctx context.Context, userID, adID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND ad_id = ?", userID, adID).
		Delete(&db.AdFavorite{})
	return res.RowsAffected > 0, res.Error
}

// CountFavorites counts users who favorited adID.
func (r *InteractionRepository) CountFavorites(ctx context.Context, adID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.AdFavorite{}).
		Where("ad_id = ?", adID).
		Count(&count).Error
	return count, err
}

// HasFlag reports whether userID already flagged adID.
func (r *InteractionRepository) HasFlag(ctx context.Context, userID, adID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.AdFlag{}).
		Where("user_id = ? AND ad_id = ?", userID, adID).
		Count(&count).Error
	return count > 0, err
}

// AddFlag inserts the flag edge. A duplicate surfaces as gorm.ErrDuplicatedKey.
func (r *InteractionRepository) AddFlag(ctx context.Context, userID, adID, reason string) error {
	return r.db.WithContext(ctx).
		Create(&db.AdFlag{UserID: userID, AdID: adID, Reason: reason}).Error
}

// ListFlaggers returns every flag on adID, oldest first.
func (r *InteractionRepository) ListFlaggers(ctx context.Context, adID string) ([]db.AdFlag, error) {
	var flags []db.AdFlag
	err := r.db.WithContext(ctx).
		Where("ad_id = ?", adID).
		Order("created_at ASC, user_id ASC").
		Find(&flags).Error
	return flags, err
}

// InsertView records a view unless the (ad, viewer) pair already exists.
//
// Behavior:
//   - Uses INSERT ... ON CONFLICT DO NOTHING rather than catching a unique violation.
//   - inserted is true only when a new row was written.
//   - A nil viewer never conflicts, so anonymous views are always inserted.
func (r *InteractionRepository) InsertView(ctx context.Context, adID string, viewerID *string) (inserted bool, err error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.AdView{AdID: adID, ViewerID: viewerID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
