package domain

import "errors"

// Caller-facing failures. Messages are rendered to end users verbatim,
// so wrap them with item context rather than replacing them.
var (
	ErrDuplicateItem      = errors.New("item already exists")
	ErrItemNotFound       = errors.New("item not found")
	ErrInvalidQuantity    = errors.New("quantity must be a positive whole number")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidInput       = errors.New("invalid input")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// IsCallerError reports whether err is a recoverable condition caused by the request itself
func IsCallerError(err error) bool {
	return errors.Is(err, ErrDuplicateItem) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidInput)
}
