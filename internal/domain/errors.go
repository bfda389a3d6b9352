package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface lets the handler layer translate domain
// failures without switching on concrete types.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	// ErrNotFound indicates a folder, volume or asset lookup missed where
	// one was required.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a name or path collision.
	ErrConflict = errors.New("already exists")

	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrOperation indicates structural misuse of an operation, such as
	// renaming a volume root folder or exhausting filename candidates.
	ErrOperation = errors.New("operation not permitted")

	// ErrStorage indicates a physical volume operation failed.
	ErrStorage = errors.New("storage operation failed")
)

// ConflictError represents a resource conflict with details about the
// existing resource, so callers can surface the conflicting record
// alongside a 409.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, asset)
	ResourceID   int64  // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
