// Package translations serves the i18n namespaces consumed by the mobile app.
package translations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/httpx"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/i18n"
)

const cacheControl = "public, max-age=300"

// Registrar ties the translation endpoint into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
	loader *i18n.Loader
}

func NewRegistrar(appCtx *app.AppContext, loader *i18n.Loader) *Registrar {
	return &Registrar{appCtx: appCtx, loader: loader}
}

func (r *Registrar) Register(rg *gin.RouterGroup) {
	rg.GET("/translations/:lng/:ns", r.serve)
}

// serve returns the raw namespace document, falling back to en/common.
func (r *Registrar) serve(c *gin.Context) {
	lng, ns := c.Param("lng"), c.Param("ns")

	doc, fellBack, err := r.loader.Load(lng, ns)
	switch {
	case errors.Is(err, i18n.ErrInvalidName):
		httpx.Fail(c, svcErr.InvalidArgument("invalid language or namespace",
			svcErr.FieldError{Field: "lng/ns", Message: "must match [A-Za-z0-9_-]{1,32}"}))
		return
	case errors.Is(err, i18n.ErrNotFound):
		httpx.Fail(c, svcErr.NotFound(svcErr.CodeNotFound, "translations unavailable"))
		return
	case err != nil:
		r.appCtx.Logger.Error("translation load failed", "lng", lng, "ns", ns, "err", err)
		httpx.Fail(c, svcErr.Internal(err))
		return
	}

	if fellBack {
		r.appCtx.Logger.Warn("falling back to default translations", "lng", lng, "ns", ns)
	}
	c.Header("Cache-Control", cacheControl)
	c.JSON(http.StatusOK, doc)
}
