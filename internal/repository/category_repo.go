package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(database *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: database}
}

// List returns every category in display order with its subcategories.
func (r *CategoryRepository) List(ctx context.Context) ([]db.Category, error) {
	var categories []db.Category
	err := r.db.WithContext(ctx).
		Preload("Subcategories", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("position ASC, id ASC")
		}).
		Order("position ASC, id ASC").
		Find(&categories).Error
	return categories, err
}
