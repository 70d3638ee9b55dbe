package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/db"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/httpx"
)

// Authenticate resolves the principal for every request.
// Requests without a token continue as Anonymous; a bad token is rejected.
func Authenticate(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ExtractToken(c)
		if tokenStr == "" {
			inject(c, Anonymous)
			c.Next()
			return
		}

		p, err := tokens.Parse(tokenStr)
		if err != nil {
			httpx.Fail(c, svcErr.Unauthorized("invalid or expired token"))
			return
		}

		inject(c, p)
		c.Next()
	}
}

// RestrictGuest rejects guests and anonymous callers.
func RestrictGuest() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := FromContext(c)
		if p.Role == db.RoleAnonymous {
			httpx.Fail(c, svcErr.Unauthorized("authentication required"))
			return
		}
		if p.IsGuest() {
			httpx.Fail(c, svcErr.Forbidden(svcErr.CodeGuestRestricted, "guests cannot perform this action, please create an account"))
			return
		}
		c.Next()
	}
}

// RequireSecret guards internal endpoints (cron) with a static bearer secret.
func RequireSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := ExtractToken(c)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			httpx.Fail(c, svcErr.Unauthorized("unauthorized"))
			return
		}
		c.Next()
	}
}

// ExtractToken reads a bearer token from the Authorization header.
func ExtractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
