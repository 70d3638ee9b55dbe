package ads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/repository"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/search"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/validation"
)

// Service implements the ads API.
// It contains the business logic on top of repository and cache layers.
type Service struct {
	appCtx       *app.AppContext
	ads          *repository.AdRepository
	interactions *repository.InteractionRepository
	drafts       *repository.DraftRepository
	now          func() time.Time
}

// NewService creates a new ads service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:       appCtx,
		ads:          repository.NewAdRepository(appCtx.DB),
		interactions: repository.NewInteractionRepository(appCtx.DB),
		drafts:       repository.NewDraftRepository(appCtx.DB),
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// PageInfo is the pagination block of every listing response.
// nextCursor keeps the request's direction; prevCursor is followed with the
// opposite one.
type PageInfo struct {
	HasMore    bool    `json:"hasMore"`
	NextCursor *string `json:"nextCursor"`
	PrevCursor *string `json:"prevCursor"`
	Total      int64   `json:"total"`
	Limit      int     `json:"limit"`
}

// Result is one page of shaped ads.
type Result struct {
	Ads        []View
	Pagination PageInfo
}

// PageParams are the pagination inputs of the GET listings.
type PageParams struct {
	Limit     *int
	Cursor    *string
	Direction string
}

// MediaInput describes one already-uploaded media object.
type MediaInput struct {
	PublicID       string `json:"public_id" binding:"notblank"`
	MediaType      string `json:"media_type" binding:"required,media_type"`
	OriginalURL    string `json:"original_url"`
	TransformedURL string `json:"transformed_url"`
}

// CreateAdInput is the body of CreateAd.
type CreateAdInput struct {
	AdType        string       `json:"ad_type" binding:"notblank"`
	Title         string       `json:"title" binding:"notblank,min=3"`
	Description   string       `json:"description" binding:"notblank,min=3"`
	Plan          string       `json:"plan"`
	Price         *float64     `json:"price" binding:"omitempty,gte=0"`
	Year          *int         `json:"year" binding:"omitempty,gte=0,car_year"`
	Brand         string       `json:"brand"`
	Model         string       `json:"model"`
	ExteriorColor string       `json:"exterior_color"`
	Transmission  string       `json:"transmission"`
	FuelType      string       `json:"fuel_type"`
	Mileage       *float64     `json:"mileage" binding:"omitempty,gte=0"`
	MileageUnit   string       `json:"mileage_unit"`
	Media         []MediaInput `json:"media" binding:"dive"`
}

// Search runs a filtered, sorted, cursor-paginated listing.
//
// Behavior:
//   - Compiles the request with the caller's own id; ids inside the body are never trusted.
//   - Interaction flags are computed for signed-in callers only.
//
// Example:
//
//	res, err := svc.Search(ctx, principal, search.Request{Pagination: search.Pagination{Limit: &two}})
func (s *Service) Search(ctx context.Context, p auth.Principal, req search.Request) (*Result, error) {
	s.appCtx.Logger.Debug("Search called", "caller", p.UserID, "cursor", req.Pagination.Cursor != nil)
	return s.run(ctx, p, req, search.Options{})
}

// ListMine lists the caller's own ads with the given status.
// The COMPLETED listing includes soft-deleted ads.
func (s *Service) ListMine(ctx context.Context, p auth.Principal, status string, page PageParams) (*Result, error) {
	if _, err := requireUser(p); err != nil {
		return nil, err
	}
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != string(db.AdStatusActive) && status != string(db.AdStatusCompleted) {
		return nil, svcErr.InvalidArgument("invalid status",
			svcErr.FieldError{Field: "status", Message: "must be ACTIVE or COMPLETED"})
	}

	mine := true
	req := pageRequest(page)
	req.Filters = search.Filters{IsMine: &mine, Status: &status}
	return s.run(ctx, p, req, search.Options{})
}

// ListFavorites lists non-deleted ads the caller favorited.
func (s *Service) ListFavorites(ctx context.Context, p auth.Principal, page PageParams) (*Result, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, p, pageRequest(page), search.Options{FavoritedBy: uid})
}

func (s *Service) run(ctx context.Context, p auth.Principal, req search.Request, opts search.Options) (*Result, error) {
	callerID := p.CallerID()
	opts.CallerID = callerID
	opts.DefaultLimit = s.appCtx.Config.Ads.PageSize
	opts.MaxLimit = s.appCtx.Config.Ads.MaxPageSize

	q, err := search.Compile(req, opts)
	if err != nil {
		return nil, err
	}

	page, err := s.ads.Search(ctx, q, callerID)
	if err != nil {
		s.appCtx.Logger.Error("Search failed", "err", err)
		return nil, svcErr.Map(err)
	}

	return &Result{
		Ads: ShapeAll(page.Ads, callerID),
		Pagination: PageInfo{
			HasMore:    page.HasMore,
			NextCursor: page.NextCursor,
			PrevCursor: page.PrevCursor,
			Total:      page.Total,
			Limit:      q.Limit,
		},
	}, nil
}

// GetAd returns one ad with its owner and favorites count.
//
// Behavior:
//   - A soft-deleted ad is only visible to its owner.
//   - favorites_count is read from Redis first, then from the DB (and cached for 1h).
func (s *Service) GetAd(ctx context.Context, p auth.Principal, id string) (*View, error) {
	callerID := p.CallerID()

	ad, err := s.ads.FindByID(ctx, id, callerID)
	if err != nil {
		return nil, adError(err)
	}
	if ad.DeletedAt != nil && (callerID == "" || ad.UserID != callerID) {
		return nil, svcErr.NotFound(svcErr.CodeAdNotFound, "ad not found")
	}

	count, err := s.favoriteCount(ctx, ad.ID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	v := Shape(ad, callerID)
	v.FavoritesCount = &count
	return &v, nil
}

// BatchList loads the visible ads among ids, in the order the ids were given.
//
// Behavior:
//   - An empty list returns an empty result without touching storage.
//   - Missing and soft-deleted ads are skipped; duplicate ids are returned once.
func (s *Service) BatchList(ctx context.Context, p auth.Principal, ids []string) ([]View, error) {
	if len(ids) == 0 {
		return []View{}, nil
	}
	if limit := s.appCtx.Config.Ads.BatchMax; limit > 0 && len(ids) > limit {
		return nil, svcErr.InvalidArgument("too many ids",
			svcErr.FieldError{Field: "ids", Message: fmt.Sprintf("must contain at most %d ids", limit)})
	}

	callerID := p.CallerID()
	rows, err := s.ads.FindVisibleByIDs(ctx, ids, callerID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	byID := make(map[string]int, len(rows))
	for i := range rows {
		byID[rows[i].ID] = i
	}

	out := make([]View, 0, len(rows))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, Shape(&rows[i], callerID))
	}
	return out, nil
}

// CreateAd validates in and stores a new ACTIVE ad with its media.
func (s *Service) CreateAd(ctx context.Context, p auth.Principal, in CreateAdInput) (*View, error) {
	uid, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	expires := s.now().AddDate(0, 0, s.appCtx.Config.Ads.ExpiryDays)
	ad := &db.Ad{
		UserID:        uid,
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		AdType:        strings.TrimSpace(in.AdType),
		Plan:          in.Plan,
		Price:         deref(in.Price),
		Year:          deref(in.Year),
		Brand:         in.Brand,
		Model:         in.Model,
		ExteriorColor: in.ExteriorColor,
		Transmission:  in.Transmission,
		FuelType:      in.FuelType,
		Mileage:       deref(in.Mileage),
		MileageUnit:   in.MileageUnit,
		Status:        db.AdStatusActive,
		ExpiresAt:     &expires,
	}
	for _, m := range in.Media {
		ad.Media = append(ad.Media, db.Media{
			PublicID:       m.PublicID,
			MediaType:      db.MediaType(strings.ToUpper(m.MediaType)),
			OriginalURL:    m.OriginalURL,
			TransformedURL: m.TransformedURL,
		})
	}

	if err := s.ads.Create(ctx, ad); err != nil {
		s.appCtx.Logger.Error("CreateAd failed", "user", uid, "err", err)
		return nil, svcErr.Map(err)
	}
	s.appCtx.Metrics.Transition("create")
	s.appCtx.Logger.Info("ad created", "ad", ad.ID, "user", uid, "media", len(ad.Media))

	v := Shape(ad, uid)
	return &v, nil
}

// favoriteCount reads the cached favorites counter, falling back to the DB.
// Cache failures are logged and never fail the request.
func (s *Service) favoriteCount(ctx context.Context, adID string) (int64, error) {
	rc := s.appCtx.RedisCache
	if rc != nil {
		count, ok, err := rc.GetFavoriteCount(ctx, adID)
		if err != nil {
			s.appCtx.Logger.Warn("favorite count cache read failed", "ad", adID, "err", err)
		} else if ok {
			return count, nil
		}
	}

	count, err := s.interactions.CountFavorites(ctx, adID)
	if err != nil {
		return 0, err
	}
	if rc != nil {
		// SETNX: a toggle may have cached a fresher count since the read.
		if _, err := rc.SetFavoriteCountIfAbsent(ctx, adID, count); err != nil {
			s.appCtx.Logger.Warn("favorite count cache write failed", "ad", adID, "err", err)
		}
	}
	return count, nil
}

func (s *Service) cacheFavoriteCount(ctx context.Context, adID string, count int64) {
	if s.appCtx.RedisCache == nil {
		return
	}
	if err := s.appCtx.RedisCache.SetFavoriteCount(ctx, adID, count); err != nil {
		s.appCtx.Logger.Warn("favorite count cache write failed", "ad", adID, "err", err)
	}
}

// --- helpers ---

// requireUser returns the caller's id, rejecting anonymous and guest callers.
func requireUser(p auth.Principal) (string, error) {
	if p.UserID == "" || p.Role == db.RoleAnonymous {
		return "", svcErr.Unauthorized("authentication required")
	}
	if p.IsGuest() {
		return "", svcErr.Forbidden(svcErr.CodeGuestRestricted, "guests cannot perform this action, please create an account")
	}
	return p.UserID, nil
}

// adError maps a missing ad to AD_NOT_FOUND and anything else through Map.
func adError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return svcErr.NotFound(svcErr.CodeAdNotFound, "ad not found")
	}
	return svcErr.Map(err)
}

func pageRequest(page PageParams) search.Request {
	return search.Request{
		Pagination: search.Pagination{Limit: page.Limit, Cursor: page.Cursor},
		Direction:  page.Direction,
	}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
