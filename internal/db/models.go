package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleGuest     Role = "GUEST"
	RoleAnonymous Role = "ANONYMOUS"
)

type AdStatus string

const (
	AdStatusActive    AdStatus = "ACTIVE"
	AdStatusCompleted AdStatus = "COMPLETED"
)

type MediaType string

const (
	MediaThumbnail MediaType = "THUMBNAIL"
	MediaImage     MediaType = "IMAGE"
	MediaVideo     MediaType = "VIDEO"
)

// NewID returns a time-ordered UUIDv7 so that ids sort in creation order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// User table
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	FullName     string `gorm:"size:128;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	Phone        string `gorm:"size:32"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         Role   `gorm:"size:16;not null;default:USER"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// Ad is a classifieds listing.
//
// Indexes:
//   - idx_ads_visible_created(deleted_at, created_at, id)
//     Serves the default "newest first" search and its keyset cursor.
//   - idx_ads_visible_price(deleted_at, price, id)
//     Serves price-sorted searches.
//   - idx_ads_owner_status(user_id, status)
//     Serves "my ads by status".
//
// DeletedAt is a plain nullable timestamp rather than gorm.DeletedAt:
// visibility is decided by the search layer, and the owner must still be
// able to read their own soft-deleted ads.
type Ad struct {
	ID            string   `gorm:"primaryKey;size:36;index:idx_ads_visible_created,priority:3;index:idx_ads_visible_price,priority:3"`
	UserID        string   `gorm:"size:36;not null;index:idx_ads_owner_status,priority:1"`
	Title         string   `gorm:"size:255;not null"`
	Description   string   `gorm:"type:text"`
	AdType        string   `gorm:"size:32;not null;index"`
	Plan          string   `gorm:"size:32"`
	Price         float64  `gorm:"not null;index:idx_ads_visible_price,priority:2"`
	Year          int      `gorm:"not null"`
	Brand         string   `gorm:"size:64"`
	Model         string   `gorm:"size:64"`
	ExteriorColor string   `gorm:"size:32"`
	Transmission  string   `gorm:"size:32"`
	FuelType      string   `gorm:"size:32"`
	Mileage       float64  `gorm:"not null;default:0"`
	MileageUnit   string   `gorm:"size:8"`
	Status        AdStatus `gorm:"size:16;not null;default:ACTIVE;index:idx_ads_owner_status,priority:2"`
	ViewCount     int64    `gorm:"not null;default:0"`
	ExpiresAt     *time.Time
	DeletedAt     *time.Time `gorm:"index:idx_ads_visible_created,priority:1;index:idx_ads_visible_price,priority:1"`
	CreatedAt     time.Time  `gorm:"index:idx_ads_visible_created,priority:2"`
	UpdatedAt     time.Time

	User      *User        `gorm:"foreignKey:UserID"`
	Media     []Media      `gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE"`
	Favorites []AdFavorite `gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE"`
	Flags     []AdFlag     `gorm:"foreignKey:AdID;constraint:OnDelete:CASCADE"`
}

func (a *Ad) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}

// Media is an attachment owned by exactly one Ad.
type Media struct {
	ID             string    `gorm:"primaryKey;size:36"`
	AdID           string    `gorm:"size:36;not null;index"`
	PublicID       string    `gorm:"size:255;not null"`
	MediaType      MediaType `gorm:"size:16;not null"`
	OriginalURL    string    `gorm:"size:1024"`
	TransformedURL string    `gorm:"size:1024"`
	CreatedAt      time.Time
}

func (Media) TableName() string { return "ad_media" }

func (m *Media) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = NewID()
	}
	return nil
}

// AdFavorite is the favorited_by edge.
// Composite PK: (UserID, AdID) keeps set semantics per pair.
type AdFavorite struct {
	UserID    string `gorm:"primaryKey;size:36"`
	AdID      string `gorm:"primaryKey;size:36;index"`
	CreatedAt time.Time
}

// AdFlag is the flagged_by edge. Same composite PK as AdFavorite.
type AdFlag struct {
	UserID    string `gorm:"primaryKey;size:36"`
	AdID      string `gorm:"primaryKey;size:36;index"`
	Reason    string `gorm:"size:255"`
	CreatedAt time.Time
}

// AdView records one view per (ad, viewer).
// Anonymous views carry a NULL viewer and are therefore never deduplicated.
type AdView struct {
	ID        uint64  `gorm:"primaryKey;autoIncrement"`
	AdID      string  `gorm:"size:36;not null;uniqueIndex:idx_ad_views_ad_viewer,priority:1"`
	ViewerID  *string `gorm:"size:36;uniqueIndex:idx_ad_views_ad_viewer,priority:2"`
	CreatedAt time.Time
}

// AdDraft stores an unfinished ad as free-form JSON.
type AdDraft struct {
	ID        string         `gorm:"primaryKey;size:36"`
	UserID    string         `gorm:"size:36;not null;index"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *AdDraft) BeforeCreate(*gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}

// Category is a browse section of the app. Ids are stable slugs the
// client keys its icons on.
type Category struct {
	ID            string        `gorm:"primaryKey;size:64"`
	Name          string        `gorm:"size:128;not null"`
	Position      int           `gorm:"not null;default:0"`
	Subcategories []Subcategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

type Subcategory struct {
	ID         string `gorm:"primaryKey;size:64"`
	CategoryID string `gorm:"size:64;not null;index"`
	Name       string `gorm:"size:128;not null"`
	Position   int    `gorm:"not null;default:0"`
}

// Models lists every table in migration order.
func Models() []any {
	return []any{&User{}, &Ad{}, &Media{}, &AdFavorite{}, &AdFlag{}, &AdView{}, &AdDraft{}, &Category{}, &Subcategory{}}
}
