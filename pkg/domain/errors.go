package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned when the backend rejects the bearer token (401/403).
// The session is cleared before this error reaches the caller.
var ErrUnauthorized = errors.New("unauthorized: login required")

// ErrUnavailable wraps transport failures (backend offline, DNS, connection reset).
var ErrUnavailable = errors.New("backend unavailable")

// ErrNotAuthenticated is returned when no token is stored in the session.
var ErrNotAuthenticated = errors.New("not authenticated")

// ErrTokenExpired is returned when the stored token carries an expired or missing exp claim.
var ErrTokenExpired = errors.New("token expired")

// ErrStepNotFound is returned when a step id is not present in the step map.
var ErrStepNotFound = errors.New("step not found")

// ErrRootNotFound is returned when the step map has no root step.
var ErrRootNotFound = errors.New("root step not found")

// Validation errors, raised before any request is sent.
var (
	ErrInvalidPhone     = errors.New("phone number must have exactly 13 digits (country code, area code and number)")
	ErrDanglingOption   = errors.New("option points to an unknown step")
	ErrDuplicateOption  = errors.New("option id already exists in step")
	ErrOptionNotFound   = errors.New("option not found in step")
	ErrEmptyOptionID    = errors.New("option id is required")
	ErrInvalidFile      = errors.New("invalid attachment")
	ErrTooManyFiles     = errors.New("too many attachments")
	ErrInvalidAction    = errors.New("invalid action")
	ErrInvalidInstance  = errors.New("invalid instance")
	ErrSaveInProgress   = errors.New("save already in progress")
	ErrEditorClosed     = errors.New("editor is closed")
	ErrEmptyCredentials = errors.New("username and password are required")
)

// APIError is a non-2xx response from the backend that is not an auth failure.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
