package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

// DraftRepository stores unfinished ads. Every query is scoped to the owner.
type DraftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(database *gorm.DB) *DraftRepository {
	return &DraftRepository{db: database}
}

func (r *DraftRepository) WithTx(tx *gorm.DB) *DraftRepository {
	return &DraftRepository{db: tx}
}

// LockOwner takes a row lock on the user so concurrent draft creation
// for the same user is serialized (no-op on SQLite).
func (r *DraftRepository) LockOwner(ctx context.Context, userID string) error {
	var u db.User
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Select("id").
		Where("id = ?", userID).
		First(&u).Error
}

func (r *DraftRepository) Count(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&db.AdDraft{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// List returns the owner's drafts, most recently edited first.
func (r *DraftRepository) List(ctx context.Context, userID string) ([]db.AdDraft, error) {
	var drafts []db.AdDraft
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&drafts).Error
	return drafts, err
}

func (r *DraftRepository) Create(ctx context.Context, draft *db.AdDraft) error {
	return r.db.WithContext(ctx).Create(draft).Error
}

// Update replaces the payload of the owner's draft.
func (r *DraftRepository) Update(ctx context.Context, id, userID string, payload datatypes.JSON) (*db.AdDraft, error) {
	res := r.db.WithContext(ctx).
		Model(&db.AdDraft{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("payload", payload)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var draft db.AdDraft
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

// Delete removes one of the owner's drafts.
func (r *DraftRepository) Delete(ctx context.Context, id, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&db.AdDraft{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAll removes every draft of the owner and returns how many were removed.
func (r *DraftRepository) DeleteAll(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&db.AdDraft{})
	return res.RowsAffected, res.Error
}
