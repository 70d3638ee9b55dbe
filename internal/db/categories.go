package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedCategoryTree is the fixed browse tree shown on the home screen.
var seedCategoryTree = []struct {
	id, name string
	subs     [][2]string
}{
	{"cars_for_sale", "Cars for sale", [][2]string{{"sport_cars", "Sports cars"}, {"sport_bikes", "Sports bikes"}}},
	{"new_cars", "New cars", [][2]string{{"new_cars_agency", "Agency cars"}}},
	{"classic_cars", "Classic cars", nil},
	{"damaged_cars", "Damaged cars", nil},
	{"motorcycles", "Motorcycles", nil},
	{"car_rental", "Car rental agencies", nil},
	{"rims_and_tires", "Rims and tires", nil},
	{"spare_parts", "Spare parts", nil},
	{"accessories", "Accessories", nil},
	{"repair_garages", "Repair garages", nil},
	{"home_services", "Home services", nil},
	{"logistics", "Logistics", nil},
	{"offers", "Offers", nil},
	{"other", "Other", nil},
}

// SeedCategories inserts the browse tree. Existing rows are left untouched,
// so it is safe to run on every start.
func SeedCategories(db *gorm.DB) error {
	categories := make([]Category, 0, len(seedCategoryTree))
	var subs []Subcategory
	for i, c := range seedCategoryTree {
		categories = append(categories, Category{ID: c.id, Name: c.name, Position: i})
		for j, s := range c.subs {
			subs = append(subs, Subcategory{ID: s[0], CategoryID: c.id, Name: s[1], Position: j})
		}
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&categories).Error; err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&subs).Error; err != nil {
		return fmt.Errorf("failed to seed subcategories: %w", err)
	}
	return nil
}
