// Package categories serves the browse tree shown on the home screen.
// Ads are not attached to categories; the tree only drives navigation.
package categories

import (
	"github.com/gin-gonic/gin"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/app"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/httpx"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/repository"
)

type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Registrar ties the category listing into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
	repo   *repository.CategoryRepository
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx, repo: repository.NewCategoryRepository(appCtx.DB)}
}

func (r *Registrar) Register(rg *gin.RouterGroup) {
	rg.GET("/categories", r.list)
}

func (r *Registrar) list(c *gin.Context) {
	rows, err := r.repo.List(c.Request.Context())
	if err != nil {
		r.appCtx.Logger.Error("list categories failed", "err", err)
		httpx.Fail(c, svcErr.Internal(err))
		return
	}

	out := make([]Category, 0, len(rows))
	for _, row := range rows {
		cat := Category{ID: row.ID, Name: row.Name, Subcategories: make([]Subcategory, 0, len(row.Subcategories))}
		for _, s := range row.Subcategories {
			cat.Subcategories = append(cat.Subcategories, Subcategory{ID: s.ID, Name: s.Name})
		}
		out = append(out, cat)
	}
	httpx.OK(c, out)
}
