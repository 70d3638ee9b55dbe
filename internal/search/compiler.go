// Package search compiles a typed ad search request into storage conditions,
// a deterministic sort order and a keyset cursor condition.
package search

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/utils/pagination"
)

type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortPrice     SortField = "price"
	SortYear      SortField = "year"
	SortMileage   SortField = "mileage"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: "ads.created_at",
	SortPrice:     "ads.price",
	SortYear:      "ads.year",
	SortMileage:   "ads.mileage",
}

const idColumn = "ads.id"

// Condition is one SQL fragment with positional args, ready for gorm's Where.
type Condition struct {
	SQL  string
	Args []any
}

// OrderKey is one ORDER BY term.
type OrderKey struct {
	Column string
	Desc   bool
}

func (k OrderKey) String() string {
	if k.Desc {
		return k.Column + " DESC"
	}
	return k.Column + " ASC"
}

// Options carries values that must never come from the request body.
type Options struct {
	// CallerID is the authenticated user, empty for guests and anonymous callers.
	CallerID string
	// FavoritedBy restricts results to ads favorited by this user.
	FavoritedBy string

	DefaultLimit int
	MaxLimit     int
}

// Query is the compiled form of a Request.
//
// Where holds the filter predicate without the cursor and is reused for the
// total count. Keyset is nil on the first page.
type Query struct {
	Where    []Condition
	Keyset   *Condition
	Order    []OrderKey
	Field    SortField
	Limit    int
	Take     int
	Backward bool
}

// OrderBy renders Order as an ORDER BY clause body.
func (q *Query) OrderBy() string {
	parts := make([]string, len(q.Order))
	for i, k := range q.Order {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}

// HasCursor reports whether the request resumed from a cursor.
func (q *Query) HasCursor() bool { return q.Keyset != nil }

// CursorFor builds the cursor pointing at ad under the active sort field.
func (q *Query) CursorFor(ad *db.Ad) pagination.Cursor {
	return pagination.Cursor{ID: ad.ID, Field: string(q.Field), Value: sortValue(q.Field, ad)}
}

// Compile validates req and translates it into a Query.
//
// Behavior:
//   - Absent filters produce no condition at all.
//   - Soft-deleted ads are excluded unless the caller lists their own COMPLETED ads.
//   - is_mine scopes to opts.CallerID only; it fails for callers without an id.
//   - Order always ends with ads.id in the primary direction; backward inverts every key.
//   - Take is limit+1 so the caller can detect a next page.
//
// Example:
//
//	q, err := search.Compile(req, search.Options{CallerID: uid, DefaultLimit: 12, MaxLimit: 50})
func Compile(req Request, opts Options) (*Query, error) {
	v := &validator{}

	limit := resolveLimit(v, req.Pagination.Limit, opts)
	field, desc := resolveSort(v, req.Sorting)
	backward := resolveDirection(v, req.Direction)

	where := compileFilters(v, req.Filters, opts)

	if !v.ok() {
		return nil, svcErr.InvalidArgument("invalid search request", v.fields...)
	}

	if req.Filters.IsMine != nil && *req.Filters.IsMine && opts.CallerID == "" {
		return nil, svcErr.Unauthorized("sign in to list your own ads")
	}

	effectiveDesc := desc != backward
	q := &Query{
		Where: where,
		Order: []OrderKey{
			{Column: sortColumns[field], Desc: effectiveDesc},
			{Column: idColumn, Desc: effectiveDesc},
		},
		Field:    field,
		Limit:    limit,
		Take:     limit + 1,
		Backward: backward,
	}

	if req.Pagination.Cursor != nil && *req.Pagination.Cursor != "" {
		keyset, err := keysetCondition(*req.Pagination.Cursor, field, effectiveDesc)
		if err != nil {
			return nil, err
		}
		q.Keyset = keyset
	}

	return q, nil
}

func resolveLimit(v *validator, limit *int, opts Options) int {
	def := opts.DefaultLimit
	if def <= 0 {
		def = 12
	}
	maxLimit := opts.MaxLimit
	if maxLimit < def {
		maxLimit = def
	}

	if limit == nil {
		return def
	}
	if *limit <= 0 {
		v.add("pagination.limit", "must be a positive integer")
		return def
	}
	return min(*limit, maxLimit)
}

func resolveSort(v *validator, s Sorting) (SortField, bool) {
	field := SortField(strings.ToLower(strings.TrimSpace(s.Field)))
	if field == "" {
		field = SortCreatedAt
	}
	if _, ok := sortColumns[field]; !ok {
		v.add("sorting.field", "must be one of created_at, price, year, mileage")
		field = SortCreatedAt
	}

	switch strings.ToLower(strings.TrimSpace(s.Direction)) {
	case "", SortDesc:
		return field, true
	case SortAsc:
		return field, false
	default:
		v.add("sorting.direction", "must be asc or desc")
		return field, true
	}
}

func resolveDirection(v *validator, d string) bool {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "", DirectionForward:
		return false
	case DirectionBackward:
		return true
	default:
		v.add("direction", "must be forward or backward")
		return false
	}
}

func compileFilters(v *validator, f Filters, opts Options) []Condition {
	var out []Condition

	isMine := f.IsMine != nil && *f.IsMine

	status := ""
	if f.Status != nil {
		status = strings.ToUpper(strings.TrimSpace(*f.Status))
		switch db.AdStatus(status) {
		case "", db.AdStatusActive, db.AdStatusCompleted:
		default:
			v.add("filters.status", "must be ACTIVE or COMPLETED")
		}
	}

	if !(isMine && db.AdStatus(status) == db.AdStatusCompleted) {
		out = append(out, Condition{SQL: "ads.deleted_at IS NULL"})
	}
	if status != "" {
		out = append(out, Condition{SQL: "ads.status = ?", Args: []any{status}})
	}
	if isMine && opts.CallerID != "" {
		out = append(out, Condition{SQL: "ads.user_id = ?", Args: []any{opts.CallerID}})
	}
	if opts.FavoritedBy != "" {
		out = append(out, Condition{
			SQL:  "ads.id IN (SELECT ad_id FROM ad_favorites WHERE user_id = ?)",
			Args: []any{opts.FavoritedBy},
		})
	}

	for _, c := range []struct {
		column string
		value  *string
	}{
		{"ads.title", f.Title},
		{"ads.description", f.Description},
		{"ads.transmission", f.Transmission},
		{"ads.fuel_type", f.FuelType},
		{"ads.mileage_unit", f.MileageUnit},
	} {
		if s := trimmed(c.value); s != "" {
			out = append(out, contains(c.column, s))
		}
	}

	if s := trimmed(f.AdType); s != "" {
		out = append(out, Condition{SQL: "ads.ad_type = ?", Args: []any{s}})
	}

	if c, ok := rangeCondition(v, "filters.price", "ads.price", f.Price); ok {
		out = append(out, c)
	}
	if c, ok := rangeCondition(v, "filters.mileage", "ads.mileage", f.Mileage); ok {
		out = append(out, c)
	}

	for _, c := range []struct {
		column string
		values []string
	}{
		{"ads.brand", f.Brand},
		{"ads.model", f.Model},
		{"ads.exterior_color", f.ExteriorColor},
	} {
		if values := lowered(c.values); len(values) > 0 {
			out = append(out, Condition{SQL: "LOWER(" + c.column + ") IN ?", Args: []any{values}})
		}
	}

	if len(f.Year) > 0 {
		out = append(out, Condition{SQL: "ads.year IN ?", Args: []any{f.Year}})
	}

	if s := trimmed(f.Search); s != "" {
		pattern := likePattern(s)
		out = append(out, Condition{
			SQL:  "(LOWER(ads.title) LIKE ? ESCAPE '!' OR LOWER(ads.description) LIKE ? ESCAPE '!')",
			Args: []any{pattern, pattern},
		})
	}

	return out
}

func rangeCondition(v *validator, field, column string, r []float64) (Condition, bool) {
	if r == nil {
		return Condition{}, false
	}
	if len(r) != 2 {
		v.add(field, "must contain exactly two values [min, max]")
		return Condition{}, false
	}
	if math.IsNaN(r[0]) || math.IsNaN(r[1]) || r[0] > r[1] {
		v.add(field, "min must not exceed max")
		return Condition{}, false
	}
	return Condition{SQL: column + " BETWEEN ? AND ?", Args: []any{r[0], r[1]}}, true
}

func keysetCondition(token string, field SortField, desc bool) (*Condition, error) {
	cur, err := pagination.Decode(token)
	if err != nil {
		return nil, svcErr.InvalidCursor(err)
	}
	if cur.Field != string(field) {
		return nil, svcErr.InvalidCursor(fmt.Errorf("cursor issued for sort %q, request sorts by %q", cur.Field, field))
	}
	value, err := parseSortValue(field, cur.Value)
	if err != nil {
		return nil, svcErr.InvalidCursor(err)
	}

	op := ">"
	if desc {
		op = "<"
	}
	col := sortColumns[field]
	return &Condition{
		SQL:  fmt.Sprintf("(%s %s ? OR (%s = ? AND %s %s ?))", col, op, col, idColumn, op),
		Args: []any{value, value, cur.ID},
	}, nil
}

func sortValue(field SortField, ad *db.Ad) string {
	switch field {
	case SortPrice:
		return strconv.FormatFloat(ad.Price, 'f', -1, 64)
	case SortYear:
		return strconv.Itoa(ad.Year)
	case SortMileage:
		return strconv.FormatFloat(ad.Mileage, 'f', -1, 64)
	default:
		return strconv.FormatInt(ad.CreatedAt.UnixMilli(), 10)
	}
}

// Cursor values outside these bounds were never issued by sortValue.
var (
	minCursorTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	maxCursorTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC).UnixMilli()
)

const maxCursorYear = 9999

func parseSortValue(field SortField, s string) (any, error) {
	switch field {
	case SortPrice, SortMileage:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite %s value %q", field, s)
		}
		return f, nil
	case SortYear:
		y, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		if y < 0 || y > maxCursorYear {
			return nil, fmt.Errorf("year %d out of range", y)
		}
		return y, nil
	default:
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		if ms < minCursorTime || ms > maxCursorTime {
			return nil, fmt.Errorf("created_at %d out of range", ms)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
}

// --- helpers ---

type validator struct {
	fields []svcErr.FieldError
}

func (v *validator) add(field, msg string) {
	v.fields = append(v.fields, svcErr.FieldError{Field: field, Message: msg})
}

func (v *validator) ok() bool { return len(v.fields) == 0 }

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func lowered(values []string) []string {
	out := make([]string, 0, len(values))
	for _, s := range values {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func contains(column, s string) Condition {
	return Condition{SQL: "LOWER(" + column + ") LIKE ? ESCAPE '!'", Args: []any{likePattern(s)}}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
