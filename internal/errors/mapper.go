// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Kind classifies a domain error independent of transport.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindRateLimited
	KindTimeout
	KindCanceled
)

// FieldError points a validation message at one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the typed error every service returns.
// Err carries the underlying cause and is never sent to clients
// outside development mode.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// GRPCStatus lets status.FromError understand domain errors.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(grpcCode(e.Kind), e.Message)
}

// Map converts repo/infra errors into typed domain errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "record not found", Err: err}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindConflict, Code: CodeDuplicate, Message: "resource already exists", Err: err}

	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindValidation, Code: CodeInvalidReference, Message: "referenced resource does not exist", Err: err}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Code: CodeTimeout, Message: "request timed out", Err: err}

	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Code: CodeCanceled, Message: "request was canceled", Err: err}

	default:
		return Internal(err)
	}
}

// KindOf returns the Kind of err after mapping.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(Map(err), &typed) {
		return typed.Kind
	}
	return KindInternal
}

// InvalidArgument creates a validation error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg, Fields: fields}
}

// InvalidCursor is returned for malformed or tampered pagination tokens.
func InvalidCursor(err error) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidCursor,
		Message: "invalid pagination cursor",
		Fields:  []FieldError{{Field: "pagination.cursor", Message: "malformed cursor"}},
		Err:     err,
	}
}

// NotFound creates a not-found error with a specific code.
func NotFound(code Code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// AlreadyExists creates a conflict error for duplicate resources.
func AlreadyExists(code Code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

// Conflict creates a conflict error for invalid state transitions.
func Conflict(code Code, msg string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: msg}
}

func Forbidden(code Code, msg string) *Error {
	return &Error{Kind: KindForbidden, Code: code, Message: msg}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Code: CodeRateLimited, Message: "too many requests, please try again later"}
}

// Internal hides err behind a generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "Something went wrong", Err: err}
}

// HTTPStatus maps a Kind to its HTTP status code.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func grpcCode(k Kind) codes.Code {
	switch k {
	case KindValidation:
		return codes.InvalidArgument
	case KindNotFound:
		return codes.NotFound
	case KindConflict:
		return codes.AlreadyExists
	case KindUnauthorized:
		return codes.Unauthenticated
	case KindForbidden:
		return codes.PermissionDenied
	case KindRateLimited:
		return codes.ResourceExhausted
	case KindTimeout:
		return codes.DeadlineExceeded
	case KindCanceled:
		return codes.Canceled
	default:
		return codes.Internal
	}
}
