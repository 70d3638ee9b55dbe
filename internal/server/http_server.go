package server

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/httpx"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/middleware"
)

// NewRouter builds the gin engine.
//
// Behavior:
//   - Logging, metrics, CORS and error rendering wrap every route.
//   - /health and /metrics skip rate limiting and authentication.
//   - Every registrar is mounted under /api/v1 behind the rate limiter
//     (when Redis is configured) and token authentication.
//   - Internal routes share the rate limiter but skip token authentication.
func NewRouter(appCtx *app.AppContext, registrars ...HTTPRegistrar) *gin.Engine {
	cfg := appCtx.Config
	log := appCtx.Logger

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	if appCtx.Metrics != nil {
		r.Use(middleware.Metrics(appCtx.Metrics))
	}
	r.Use(middleware.CORS(cfg.CORS.Origins))
	r.Use(httpx.ErrorHandler(log, cfg.IsDevelopment()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.App.Name})
	})
	if appCtx.Metrics != nil {
		r.GET("/metrics", gin.WrapH(appCtx.Metrics.Handler()))
	}

	base := r.Group("/api/v1")
	if appCtx.RedisCache != nil && cfg.RateLimit.Max > 0 {
		base.Use(middleware.RateLimit(appCtx.RedisCache, cfg.RateLimit.Max, cfg.RateLimit.Window, appCtx.Metrics, log))
	}
	for _, reg := range registrars {
		if internal, ok := reg.(InternalRegistrar); ok {
			internal.RegisterInternal(base)
		}
	}

	api := base.Group("", auth.Authenticate(appCtx.Tokens))
	for _, reg := range registrars {
		reg.Register(api)
	}
	return r
}

// NewHTTPServer wraps handler in an http.Server bound to the configured address.
func NewHTTPServer(appCtx *app.AppContext, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(appCtx.Config.HTTP.Host, appCtx.Config.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
