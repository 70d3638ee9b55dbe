package search

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/utils/pagination"
)

//
// Test helpers
//

var defaults = Options{DefaultLimit: 12, MaxLimit: 50}

func ptr[T any](v T) *T { return &v }

func sqls(conds []Condition) []string {
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = c.SQL
	}
	return out
}

func find(t *testing.T, conds []Condition, sql string) Condition {
	t.Helper()
	for _, c := range conds {
		if c.SQL == sql {
			return c
		}
	}
	t.Fatalf("condition %q not found in %v", sql, sqls(conds))
	return Condition{}
}

func requireKind(t *testing.T, err error, kind svcErr.Kind) *svcErr.Error {
	t.Helper()
	var typed *svcErr.Error
	require.True(t, errors.As(err, &typed), "expected typed error, got %v", err)
	assert.Equal(t, kind, typed.Kind)
	return typed
}

//
// Tests
//

func TestCompile_Defaults(t *testing.T) {
	q, err := Compile(Request{}, defaults)
	require.NoError(t, err)

	assert.Equal(t, []string{"ads.deleted_at IS NULL"}, sqls(q.Where))
	assert.Equal(t, "ads.created_at DESC, ads.id DESC", q.OrderBy())
	assert.Equal(t, SortCreatedAt, q.Field)
	assert.Equal(t, 12, q.Limit)
	assert.Equal(t, 13, q.Take)
	assert.Nil(t, q.Keyset)
	assert.False(t, q.Backward)
}

func TestCompile_AbsentFiltersProduceNoConditions(t *testing.T) {
	q, err := Compile(Request{Filters: Filters{
		Title:  ptr("   "),
		Brand:  []string{},
		Year:   nil,
		IsMine: ptr(false),
		Search: ptr(""),
	}}, defaults)
	require.NoError(t, err)
	assert.Equal(t, []string{"ads.deleted_at IS NULL"}, sqls(q.Where))
}

func TestCompile_Limit(t *testing.T) {
	q, err := Compile(Request{Pagination: Pagination{Limit: ptr(500)}}, defaults)
	require.NoError(t, err)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 51, q.Take)

	for _, bad := range []int{0, -3} {
		_, err := Compile(Request{Pagination: Pagination{Limit: ptr(bad)}}, defaults)
		typed := requireKind(t, err, svcErr.KindValidation)
		assert.Equal(t, "pagination.limit", typed.Fields[0].Field)
	}
}

func TestCompile_StringFiltersAreCaseInsensitiveSubstrings(t *testing.T) {
	q, err := Compile(Request{Filters: Filters{
		Title:        ptr("Land Cruiser"),
		Transmission: ptr("AUTO"),
		FuelType:     ptr("100%_diesel"),
	}}, defaults)
	require.NoError(t, err)

	title := find(t, q.Where, "LOWER(ads.title) LIKE ? ESCAPE '!'")
	assert.Equal(t, []any{"%land cruiser%"}, title.Args)

	trans := find(t, q.Where, "LOWER(ads.transmission) LIKE ? ESCAPE '!'")
	assert.Equal(t, []any{"%auto%"}, trans.Args)

	fuel := find(t, q.Where, "LOWER(ads.fuel_type) LIKE ? ESCAPE '!'")
	assert.Equal(t, []any{"%100!%!_diesel%"}, fuel.Args)
}

func TestCompile_Ranges(t *testing.T) {
	q, err := Compile(Request{Filters: Filters{Price: []float64{100, 300}, Mileage: []float64{0, 0}}}, defaults)
	require.NoError(t, err)

	price := find(t, q.Where, "ads.price BETWEEN ? AND ?")
	assert.Equal(t, []any{100.0, 300.0}, price.Args)
	find(t, q.Where, "ads.mileage BETWEEN ? AND ?")

	_, err = Compile(Request{Filters: Filters{Price: []float64{100}}}, defaults)
	typed := requireKind(t, err, svcErr.KindValidation)
	assert.Equal(t, "filters.price", typed.Fields[0].Field)

	_, err = Compile(Request{Filters: Filters{Mileage: []float64{1, 2, 3}}}, defaults)
	requireKind(t, err, svcErr.KindValidation)

	_, err = Compile(Request{Filters: Filters{Price: []float64{300, 100}}}, defaults)
	requireKind(t, err, svcErr.KindValidation)
}

func TestCompile_MultiSelect(t *testing.T) {
	q, err := Compile(Request{Filters: Filters{
		Brand:         []string{"Toyota", " NISSAN "},
		ExteriorColor: []string{"White"},
		Year:          []int{2020, 2021},
	}}, defaults)
	require.NoError(t, err)

	brand := find(t, q.Where, "LOWER(ads.brand) IN ?")
	assert.Equal(t, []any{[]string{"toyota", "nissan"}}, brand.Args)

	color := find(t, q.Where, "LOWER(ads.exterior_color) IN ?")
	assert.Equal(t, []any{[]string{"white"}}, color.Args)

	year := find(t, q.Where, "ads.year IN ?")
	assert.Equal(t, []any{[]int{2020, 2021}}, year.Args)
}

func TestCompile_SearchMatchesTitleOrDescription(t *testing.T) {
	q, err := Compile(Request{Filters: Filters{Search: ptr("V8")}}, defaults)
	require.NoError(t, err)

	c := find(t, q.Where, "(LOWER(ads.title) LIKE ? ESCAPE '!' OR LOWER(ads.description) LIKE ? ESCAPE '!')")
	assert.Equal(t, []any{"%v8%", "%v8%"}, c.Args)
}

func TestCompile_IsMineUsesCallerOnly(t *testing.T) {
	q, err := Compile(Request{Filters: Filters{IsMine: ptr(true)}}, Options{CallerID: "caller-1", DefaultLimit: 12, MaxLimit: 50})
	require.NoError(t, err)

	owner := find(t, q.Where, "ads.user_id = ?")
	assert.Equal(t, []any{"caller-1"}, owner.Args)
	find(t, q.Where, "ads.deleted_at IS NULL")

	_, err = Compile(Request{Filters: Filters{IsMine: ptr(true)}}, defaults)
	requireKind(t, err, svcErr.KindUnauthorized)
}

func TestCompile_OwnerCompletedViewIncludesSoftDeleted(t *testing.T) {
	opts := Options{CallerID: "owner", DefaultLimit: 12, MaxLimit: 50}

	q, err := Compile(Request{Filters: Filters{IsMine: ptr(true), Status: ptr("completed")}}, opts)
	require.NoError(t, err)
	assert.NotContains(t, sqls(q.Where), "ads.deleted_at IS NULL")
	assert.Equal(t, []any{"COMPLETED"}, find(t, q.Where, "ads.status = ?").Args)

	// not mine: deleted filter stays even when asking for COMPLETED
	q, err = Compile(Request{Filters: Filters{Status: ptr("COMPLETED")}}, opts)
	require.NoError(t, err)
	assert.Contains(t, sqls(q.Where), "ads.deleted_at IS NULL")

	_, err = Compile(Request{Filters: Filters{Status: ptr("ARCHIVED")}}, opts)
	requireKind(t, err, svcErr.KindValidation)
}

func TestCompile_FavoritedBy(t *testing.T) {
	q, err := Compile(Request{}, Options{FavoritedBy: "u1", DefaultLimit: 12, MaxLimit: 50})
	require.NoError(t, err)
	c := find(t, q.Where, "ads.id IN (SELECT ad_id FROM ad_favorites WHERE user_id = ?)")
	assert.Equal(t, []any{"u1"}, c.Args)
}

func TestCompile_SortAndDirection(t *testing.T) {
	q, err := Compile(Request{Sorting: Sorting{Field: "price", Direction: "asc"}}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "ads.price ASC, ads.id ASC", q.OrderBy())

	q, err = Compile(Request{Sorting: Sorting{Field: "price", Direction: "asc"}, Direction: DirectionBackward}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "ads.price DESC, ads.id DESC", q.OrderBy())
	assert.True(t, q.Backward)

	q, err = Compile(Request{Direction: DirectionBackward}, defaults)
	require.NoError(t, err)
	assert.Equal(t, "ads.created_at ASC, ads.id ASC", q.OrderBy())

	_, err = Compile(Request{Sorting: Sorting{Field: "user_id"}}, defaults)
	requireKind(t, err, svcErr.KindValidation)

	_, err = Compile(Request{Direction: "sideways"}, defaults)
	requireKind(t, err, svcErr.KindValidation)
}

func TestCompile_CollectsEveryFieldError(t *testing.T) {
	_, err := Compile(Request{
		Pagination: Pagination{Limit: ptr(0)},
		Sorting:    Sorting{Direction: "up"},
		Filters:    Filters{Price: []float64{1}},
	}, defaults)
	typed := requireKind(t, err, svcErr.KindValidation)
	assert.Len(t, typed.Fields, 3)
}

func TestCompile_Keyset(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 123_000_000, time.UTC)
	ad := &db.Ad{ID: "ad-2", CreatedAt: created, Price: 250.5}

	q, err := Compile(Request{}, defaults)
	require.NoError(t, err)
	token, err := pagination.Encode(q.CursorFor(ad))
	require.NoError(t, err)

	q, err = Compile(Request{Pagination: Pagination{Cursor: &token}}, defaults)
	require.NoError(t, err)
	require.NotNil(t, q.Keyset)
	assert.Equal(t, "(ads.created_at < ? OR (ads.created_at = ? AND ads.id < ?))", q.Keyset.SQL)
	assert.Equal(t, []any{created, created, "ad-2"}, q.Keyset.Args)

	priceReq := Request{Sorting: Sorting{Field: "price", Direction: "asc"}}
	pq, err := Compile(priceReq, defaults)
	require.NoError(t, err)
	priceToken, err := pagination.Encode(pq.CursorFor(ad))
	require.NoError(t, err)

	priceReq.Pagination.Cursor = &priceToken
	pq, err = Compile(priceReq, defaults)
	require.NoError(t, err)
	assert.Equal(t, "(ads.price > ? OR (ads.price = ? AND ads.id > ?))", pq.Keyset.SQL)
	assert.Equal(t, []any{250.5, 250.5, "ad-2"}, pq.Keyset.Args)
}

func TestCompile_BadCursor(t *testing.T) {
	for _, token := range []string{
		"garbage!!",
		mustEncode(t, pagination.Cursor{ID: "x", Field: "price", Value: "10"}),
		mustEncode(t, pagination.Cursor{ID: "x", Field: "created_at", Value: "yesterday"}),
		mustEncode(t, pagination.Cursor{ID: "x", Field: "created_at", Value: "9223372036854775807"}),
		mustEncode(t, pagination.Cursor{ID: "x", Field: "created_at", Value: "-1"}),
	} {
		_, err := Compile(Request{Pagination: Pagination{Cursor: ptr(token)}}, defaults)
		typed := requireKind(t, err, svcErr.KindValidation)
		assert.Equal(t, svcErr.CodeInvalidCursor, typed.Code, token)
	}
}

func TestCompile_CursorValueMustBeFinite(t *testing.T) {
	cases := []struct {
		field SortField
		value string
	}{
		{SortPrice, "NaN"},
		{SortPrice, "+Inf"},
		{SortPrice, "-Inf"},
		{SortMileage, "Infinity"},
		{SortYear, "-3"},
		{SortYear, "123456"},
	}
	for _, tc := range cases {
		token := mustEncode(t, pagination.Cursor{ID: "x", Field: string(tc.field), Value: tc.value})
		_, err := Compile(Request{
			Sorting:    Sorting{Field: string(tc.field)},
			Pagination: Pagination{Cursor: ptr(token)},
		}, defaults)
		typed := requireKind(t, err, svcErr.KindValidation)
		assert.Equal(t, svcErr.CodeInvalidCursor, typed.Code, "%s=%s", tc.field, tc.value)
	}

	// a genuine cursor still compiles
	token := mustEncode(t, pagination.Cursor{ID: "x", Field: "price", Value: "1500.5"})
	q, err := Compile(Request{Sorting: Sorting{Field: "price"}, Pagination: Pagination{Cursor: ptr(token)}}, defaults)
	require.NoError(t, err)
	require.NotNil(t, q.Keyset)
	assert.Equal(t, []any{1500.5, 1500.5, "x"}, q.Keyset.Args)
}

func TestSortValue(t *testing.T) {
	ad := &db.Ad{Year: 2019, Mileage: 120000.25, CreatedAt: time.UnixMilli(1700000000123)}
	assert.Equal(t, "2019", sortValue(SortYear, ad))
	assert.Equal(t, "120000.25", sortValue(SortMileage, ad))
	assert.Equal(t, strconv.FormatInt(1700000000123, 10), sortValue(SortCreatedAt, ad))
}

func mustEncode(t *testing.T, c pagination.Cursor) string {
	t.Helper()
	token, err := pagination.Encode(c)
	require.NoError(t, err)
	return token
}
