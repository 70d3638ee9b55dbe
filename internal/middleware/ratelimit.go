package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/cache"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/httpx"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/metrics"
)

// RateLimit allows max requests per client IP in each fixed window.
// Redis failures let the request through.
func RateLimit(rc *cache.RedisCache, max int64, window time.Duration, m *metrics.Metrics, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rc == nil || max <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 200*time.Millisecond)
		count, ttl, err := rc.Hit(ctx, c.ClientIP(), window)
		cancel()
		if err != nil {
			log.Warn("rate limiter unavailable", "err", err)
			c.Next()
			return
		}

		remaining := max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(max, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > max {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Round(time.Second).Seconds())))
			if m != nil {
				m.RateLimited.Inc()
			}
			httpx.Fail(c, svcErr.RateLimited())
			return
		}

		c.Next()
	}
}
