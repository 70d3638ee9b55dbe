package ads

import (
	"time"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

// View is the client-facing ad.
// IsFavorited and IsFlagged are omitted for guests: nil means "unknown",
// false means the caller has not interacted.
type View struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	AdType         string      `json:"ad_type"`
	Plan           string      `json:"plan,omitempty"`
	Price          float64     `json:"price"`
	Year           int         `json:"year"`
	Brand          string      `json:"brand,omitempty"`
	Model          string      `json:"model,omitempty"`
	ExteriorColor  string      `json:"exterior_color,omitempty"`
	Transmission   string      `json:"transmission,omitempty"`
	FuelType       string      `json:"fuel_type,omitempty"`
	Mileage        float64     `json:"mileage"`
	MileageUnit    string      `json:"mileage_unit,omitempty"`
	Status         db.AdStatus `json:"status"`
	ViewCount      int64       `json:"view_count"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
	DeletedAt      *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Media          []MediaView `json:"media"`
	User           *OwnerView  `json:"user,omitempty"`
	FavoritesCount *int64      `json:"favorites_count,omitempty"`
	IsFavorited    *bool       `json:"is_favorited,omitempty"`
	IsFlagged      *bool       `json:"is_flagged,omitempty"`
}

type MediaView struct {
	ID             string       `json:"id"`
	PublicID       string       `json:"public_id"`
	MediaType      db.MediaType `json:"media_type"`
	OriginalURL    string       `json:"original_url,omitempty"`
	TransformedURL string       `json:"transformed_url,omitempty"`
}

type OwnerView struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Flagger is one entry of the flaggers list returned by Flag.
type Flagger struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Shape turns a stored ad into a View for callerID.
// The favorite/flag join rows are reduced to booleans and never exposed.
func Shape(ad *db.Ad, callerID string) View {
	v := View{
		ID:            ad.ID,
		UserID:        ad.UserID,
		Title:         ad.Title,
		Description:   ad.Description,
		AdType:        ad.AdType,
		Plan:          ad.Plan,
		Price:         ad.Price,
		Year:          ad.Year,
		Brand:         ad.Brand,
		Model:         ad.Model,
		ExteriorColor: ad.ExteriorColor,
		Transmission:  ad.Transmission,
		FuelType:      ad.FuelType,
		Mileage:       ad.Mileage,
		MileageUnit:   ad.MileageUnit,
		Status:        ad.Status,
		ViewCount:     ad.ViewCount,
		ExpiresAt:     ad.ExpiresAt,
		DeletedAt:     ad.DeletedAt,
		CreatedAt:     ad.CreatedAt,
		UpdatedAt:     ad.UpdatedAt,
		Media:         make([]MediaView, 0, len(ad.Media)),
	}
	for _, m := range ad.Media {
		v.Media = append(v.Media, MediaView{
			ID:             m.ID,
			PublicID:       m.PublicID,
			MediaType:      m.MediaType,
			OriginalURL:    m.OriginalURL,
			TransformedURL: m.TransformedURL,
		})
	}
	if ad.User != nil {
		v.User = &OwnerView{
			ID:        ad.User.ID,
			FullName:  ad.User.FullName,
			Phone:     ad.User.Phone,
			CreatedAt: ad.User.CreatedAt,
		}
	}

	if callerID == "" {
		return v
	}

	favorited := false
	for _, f := range ad.Favorites {
		if f.UserID == callerID {
			favorited = true
			break
		}
	}
	flagged := false
	for _, f := range ad.Flags {
		if f.UserID == callerID {
			flagged = true
			break
		}
	}
	v.IsFavorited = &favorited
	v.IsFlagged = &flagged
	return v
}

// ShapeAll applies Shape to every ad, preserving order. Never returns nil.
func ShapeAll(ads []db.Ad, callerID string) []View {
	out := make([]View, 0, len(ads))
	for i := range ads {
		out = append(out, Shape(&ads[i], callerID))
	}
	return out
}

func shapeFlaggers(flags []db.AdFlag) []Flagger {
	out := make([]Flagger, 0, len(flags))
	for _, f := range flags {
		out = append(out, Flagger{UserID: f.UserID, Reason: f.Reason, CreatedAt: f.CreatedAt})
	}
	return out
}
