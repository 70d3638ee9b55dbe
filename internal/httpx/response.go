// Package httpx renders the JSON envelopes shared by every HTTP handler.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/KhalfaouiAnis/kuwait-cars-backend/internal/errors"
)

// ErrorItem is one entry of the error envelope.
type ErrorItem struct {
	Message string         `json:"message"`
	Code    svcErr.Code    `json:"code"`
	Context map[string]any `json:"context,omitempty"`
}

type ErrorBody struct {
	Errors []ErrorItem `json:"errors"`
}

// Fail records err on the request and stops the handler chain.
// ErrorHandler renders it once the chain unwinds.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// OK writes {"status":"success","data":data}.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data})
}

// Created writes the success envelope with 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": data})
}

// Paginated writes the success envelope plus pagination metadata.
func Paginated(c *gin.Context, data any, pagination any) {
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": data, "pagination": pagination})
}

// ErrorHandler renders the last error attached to the request.
// Internal details are only included when exposeInternal is set.
func ErrorHandler(log *slog.Logger, exposeInternal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		var typed *svcErr.Error
		if !errors.As(svcErr.Map(c.Errors.Last().Err), &typed) {
			typed = svcErr.Internal(c.Errors.Last().Err)
		}

		status := svcErr.HTTPStatus(typed.Kind)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", status,
				"err", typed.Error(),
			)
		}

		c.JSON(status, Render(typed, exposeInternal))
	}
}

// Render converts a typed error into the client-facing envelope.
func Render(e *svcErr.Error, exposeInternal bool) ErrorBody {
	if len(e.Fields) > 0 {
		items := make([]ErrorItem, 0, len(e.Fields))
		for _, f := range e.Fields {
			items = append(items, ErrorItem{
				Message: f.Message,
				Code:    e.Code,
				Context: map[string]any{"field": f.Field},
			})
		}
		return ErrorBody{Errors: items}
	}

	item := ErrorItem{Message: e.Message, Code: e.Code}
	if exposeInternal && e.Err != nil {
		item.Context = map[string]any{"detail": e.Err.Error()}
	}
	return ErrorBody{Errors: []ErrorItem{item}}
}
