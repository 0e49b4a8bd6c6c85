package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found. Resources outside the
	// caller's tenant are reported with this same error so existence never
	// leaks across tenants.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Is implementations allow errors.Is() to match against the sentinel errors
func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors for backwards compatibility - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrExternalAuthExpired is internal to the external-storage download
	// path: it marks a provider call rejected for an expired access token and
	// triggers the single refresh-and-retry cycle. Callers outside that path
	// never see it; after the retry budget is spent the operation surfaces
	// ErrExternalStorageUnavailable instead.
	ErrExternalAuthExpired = errors.New("external storage auth expired")

	// ErrExternalStorageUnavailable is the terminal failure of an external
	// storage operation: the refresh failed, or the retried call failed again.
	ErrExternalStorageUnavailable = errors.New("external storage unavailable")

	// ErrMalformedHierarchy marks a cycle detected in a folder graph. The
	// traversal still terminates (visited-set guard); this is logged by the
	// detecting code, never returned as a request failure.
	ErrMalformedHierarchy = errors.New("malformed folder hierarchy")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (file, folder, role, user)
	ResourceID   string // ID of the existing/conflicting resource
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

// ExternalStorageError wraps a terminal external-storage failure with the
// provider name for logging and response bodies. Token values never appear
// in Message.
type ExternalStorageError struct {
	Provider string
	Message  string
}

func (e *ExternalStorageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// StatusCode implements the HTTPError interface
func (e *ExternalStorageError) StatusCode() int {
	return http.StatusBadGateway
}

// Is allows errors.Is() to match against ErrExternalStorageUnavailable
func (e *ExternalStorageError) Is(target error) bool {
	return target == ErrExternalStorageUnavailable
}

// NodeFailure records one failed step of a recursive folder delete.
type NodeFailure struct {
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"` // "file" or "folder"
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

// PartialDeleteError reports a recursive delete that did not fully complete.
// Completed sub-deletions are NOT rolled back; the listed nodes remain and
// need another delete pass (deleting an already-deleted node is a no-op, so
// retrying the whole operation is safe).
type PartialDeleteError struct {
	FolderID string
	Failures []NodeFailure
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("folder %s: %d node(s) could not be deleted", e.FolderID, len(e.Failures))
}

// StatusCode implements the HTTPError interface
func (e *PartialDeleteError) StatusCode() int {
	return http.StatusInternalServerError
}
