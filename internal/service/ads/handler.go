package ads

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/auth"
	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/httpx"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/search"
	"github.com/KhalfaouiAnis/kuwait-cars-backend/internal/validation"
)

// Handler adapts Service to gin.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) search(c *gin.Context) {
	var req search.Request
	if err := bindOptionalJSON(c, &req); err != nil {
		httpx.Fail(c, err)
		return
	}
	res, err := h.svc.Search(c.Request.Context(), auth.FromContext(c), req)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Paginated(c, res.Ads, res.Pagination)
}

func (h *Handler) listMine(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	res, err := h.svc.ListMine(c.Request.Context(), auth.FromContext(c), c.Param("status"), page)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Paginated(c, res.Ads, res.Pagination)
}

func (h *Handler) listFavorites(c *gin.Context) {
	page, err := pageParams(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	res, err := h.svc.ListFavorites(c.Request.Context(), auth.FromContext(c), page)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Paginated(c, res.Ads, res.Pagination)
}

func (h *Handler) get(c *gin.Context) {
	ad, err := h.svc.GetAd(c.Request.Context(), auth.FromContext(c), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, ad)
}

type batchRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) batchList(c *gin.Context) {
	var req batchRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		httpx.Fail(c, err)
		return
	}
	ads, err := h.svc.BatchList(c.Request.Context(), auth.FromContext(c), req.IDs)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, ads)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateAdInput
	if err := c.ShouldBindJSON(&in); err != nil {
		httpx.Fail(c, invalidBody(err))
		return
	}
	ad, err := h.svc.CreateAd(c.Request.Context(), auth.FromContext(c), in)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, ad)
}

func (h *Handler) softDelete(c *gin.Context) {
	if err := h.svc.SoftDelete(c.Request.Context(), auth.FromContext(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) repost(c *gin.Context) {
	if err := h.svc.Repost(c.Request.Context(), auth.FromContext(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"id": c.Param("id")})
}

func (h *Handler) hardDelete(c *gin.Context) {
	if err := h.svc.HardDelete(c.Request.Context(), auth.FromContext(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	res, err := h.svc.ToggleFavorite(c.Request.Context(), auth.FromContext(c), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, res)
}

type flagRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) flag(c *gin.Context) {
	var req flagRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		httpx.Fail(c, err)
		return
	}
	flaggers, err := h.svc.Flag(c.Request.Context(), auth.FromContext(c), c.Param("id"), req.Reason)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"flagged_by": flaggers})
}

func (h *Handler) recordView(c *gin.Context) {
	counted, err := h.svc.RecordView(c.Request.Context(), auth.FromContext(c), c.Param("id"))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"counted": counted})
}

func (h *Handler) expire(c *gin.Context) {
	n, err := h.svc.ExpireAds(c.Request.Context())
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, gin.H{"expired": n})
}

func (h *Handler) listDrafts(c *gin.Context) {
	drafts, err := h.svc.ListDrafts(c.Request.Context(), auth.FromContext(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, drafts)
}

func (h *Handler) createDraft(c *gin.Context) {
	payload, err := rawBody(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	draft, err := h.svc.CreateDraft(c.Request.Context(), auth.FromContext(c), payload)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.Created(c, draft)
}

func (h *Handler) updateDraft(c *gin.Context) {
	payload, err := rawBody(c)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	draft, err := h.svc.UpdateDraft(c.Request.Context(), auth.FromContext(c), c.Param("id"), payload)
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	httpx.OK(c, draft)
}

func (h *Handler) deleteDraft(c *gin.Context) {
	if err := h.svc.DeleteDraft(c.Request.Context(), auth.FromContext(c), c.Param("id")); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) deleteAllDrafts(c *gin.Context) {
	if _, err := h.svc.DeleteAllDrafts(c.Request.Context(), auth.FromContext(c)); err != nil {
		httpx.Fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- helpers ---

// bindOptionalJSON decodes the body into dst; an empty body leaves dst untouched.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return invalidBody(err)
	}
	return nil
}

func rawBody(c *gin.Context) (json.RawMessage, error) {
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, invalidBody(err)
	}
	return json.RawMessage(b), nil
}

// invalidBody reports rule violations per field and anything else
// (malformed JSON, wrong types) as a plain validation error.
func invalidBody(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return validation.Translate(verrs)
	}
	e := svcErr.InvalidArgument("invalid request body")
	e.Err = err
	return e
}

// pageParams reads ?limit=&cursor=&direction= for the GET listings.
func pageParams(c *gin.Context) (PageParams, error) {
	var page PageParams
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return page, svcErr.InvalidArgument("invalid limit",
				svcErr.FieldError{Field: "limit", Message: "must be a positive integer"})
		}
		page.Limit = &n
	}
	if cursor, ok := c.GetQuery("cursor"); ok && cursor != "" {
		page.Cursor = &cursor
	}
	page.Direction = c.Query("direction")
	return page, nil
}
