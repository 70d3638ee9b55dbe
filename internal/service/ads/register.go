package ads

import (
	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
)

// Registrar ties the ads API into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the ads API
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the ads routes under rg (normally /api/v1).
func (r *Registrar) Register(rg *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx))
	member := auth.RestrictGuest()

	ads := rg.Group("/ads")
	{
		ads.POST("", member, h.create)
		ads.POST("/create", member, h.create)
		ads.POST("/", h.search)
		ads.POST("/search", h.search)
		ads.POST("/batch-list", h.batchList)
		ads.GET("/favorite", member, h.listFavorites)
		ads.GET("/me/:status", member, h.listMine)

		drafts := ads.Group("/drafts", member)
		{
			drafts.GET("", h.listDrafts)
			drafts.POST("", h.createDraft)
			drafts.PUT("/:id", h.updateDraft)
			drafts.DELETE("/all", h.deleteAllDrafts)
			drafts.DELETE("/:id", h.deleteDraft)
		}

		ads.GET("/:id", h.get)
		ads.DELETE("/:id", member, h.hardDelete)
		ads.PATCH("/:id/delete", member, h.softDelete)
		ads.PATCH("/:id/repost", member, h.repost)
		ads.POST("/:id/toggle-favorite", member, h.toggleFavorite)
		ads.POST("/:id/flag", member, h.flag)
		ads.POST("/:id/view", h.recordView)
	}
}

// RegisterInternal attaches the cron routes. They carry a shared secret
// instead of a user token.
func (r *Registrar) RegisterInternal(rg *gin.RouterGroup) {
	h := NewHandler(NewService(r.appCtx))
	rg.POST("/cron/soft-delete-ads", auth.RequireSecret(r.appCtx.Config.Cron.Secret), h.expire)
}
