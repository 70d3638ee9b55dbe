package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidToken is returned for tokens that are not base64url JSON cursors.
var ErrInvalidToken = errors.New("invalid pagination token")

// Cursor is the opaque pagination state we encode/decode.
// Field names the sort column the cursor was issued for, Value holds that
// column's value on the boundary row, and ID breaks ties between equal values.
type Cursor struct {
	ID    string `json:"id"`
	Field string `json:"f,omitempty"`
	Value string `json:"v,omitempty"`
}

// IsZero reports whether the cursor marks the first page.
func (c Cursor) IsZero() bool { return c.ID == "" }

// Encode converts a Cursor into a URL-safe Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidToken
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, ErrInvalidToken
	}
	if c.ID == "" {
		return Cursor{}, ErrInvalidToken
	}
	return c, nil
}

// Trim drops the over-fetched sentinel row.
// rows must have been fetched with limit+1; more reports whether the sentinel was present.
func Trim[T any](rows []T, limit int) (page []T, more bool) {
	if limit >= 0 && len(rows) > limit {
		return rows[:limit], true
	}
	return rows, false
}

// Reverse flips rows in place, used when a page was fetched walking backward.
func Reverse[T any](rows []T) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}
