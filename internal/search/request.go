package search

// Request is the body of a search call.
//
// Filters is a closed set of typed fields; keys outside it (for example a
// client supplied user_id) never reach the storage predicate.
type Request struct {
	Pagination Pagination `json:"pagination"`
	Sorting    Sorting    `json:"sorting"`
	Filters    Filters    `json:"filters"`
	Direction  string     `json:"direction"`
}

type Pagination struct {
	Limit  *int    `json:"limit"`
	Cursor *string `json:"cursor"`
}

type Sorting struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

// Filters enumerates every supported filter. A nil or empty value means
// "not filtered".
type Filters struct {
	// case-insensitive substring
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Transmission *string `json:"transmission"`
	FuelType     *string `json:"fuel_type"`
	MileageUnit  *string `json:"mileage_unit"`

	// exact
	AdType *string `json:"ad_type"`
	Status *string `json:"status"`

	// inclusive [min, max]
	Price   []float64 `json:"price"`
	Mileage []float64 `json:"mileage"`

	// one of, case-insensitive for text
	Brand         []string `json:"brand"`
	Model         []string `json:"model"`
	ExteriorColor []string `json:"exterior_color"`
	Year          []int    `json:"year"`

	IsMine *bool `json:"is_mine"`

	// OR-matched substring over title and description
	Search *string `json:"search"`
}

const (
	DirectionForward  = "forward"
	DirectionBackward = "backward"

	SortAsc  = "asc"
	SortDesc = "desc"
)
