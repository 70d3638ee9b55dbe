package errors

// Code is a stable machine-readable identifier clients can switch on.
type Code string

const (
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInvalidCursor    Code = "INVALID_CURSOR"
	CodeInvalidReference Code = "INVALID_REFERENCE"

	CodeNotFound      Code = "NOT_FOUND"
	CodeAdNotFound    Code = "AD_NOT_FOUND"
	CodeDraftNotFound Code = "DRAFT_NOT_FOUND"

	CodeDuplicate         Code = "DUPLICATE_RESOURCE"
	CodeAlreadyFlagged    Code = "AD_ALREADY_FLAGGED"
	CodeDraftLimitReached Code = "DRAFT_LIMIT_REACHED"
	CodeAdNotCompleted    Code = "AD_NOT_COMPLETED"

	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeGuestRestricted Code = "GUEST_RESTRICTED"
	CodeNotOwner        Code = "NOT_AD_OWNER"

	CodeRateLimited Code = "RATE_LIMITED"
	CodeTimeout     Code = "TIMEOUT"
	CodeCanceled    Code = "CANCELED"
	CodeInternal    Code = "INTERNAL_ERROR"
)
