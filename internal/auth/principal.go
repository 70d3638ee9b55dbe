// Package auth verifies bearer tokens and exposes the calling principal.
package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
)

const (
	principalKey = "principal"
	userIDKey    = "user_id"
)

// Principal is the verified (user id, role) pair for one request.
type Principal struct {
	UserID string
	Role   db.Role
}

// Anonymous is the principal of requests without a token.
var Anonymous = Principal{Role: db.RoleAnonymous}

// IsGuest reports whether the caller lacks a durable account.
func (p Principal) IsGuest() bool {
	return p.UserID == "" || p.Role == db.RoleGuest || p.Role == db.RoleAnonymous
}

// CallerID is the user id used for ownership and interaction flags.
// Guests and anonymous callers have none.
func (p Principal) CallerID() string {
	if p.IsGuest() {
		return ""
	}
	return p.UserID
}

// FromContext returns the principal stored by Authenticate.
func FromContext(c *gin.Context) Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return Anonymous
}

func inject(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
	if p.UserID != "" {
		c.Set(userIDKey, p.UserID)
	}
}
