package errors

import (
	"errors"
	"fmt"
)

// DART API status codes that matter to control flow.
const (
	StatusOK     = "000"
	StatusNoData = "013"
)

// ErrNoData signals a run that completed without any qualifying
// filings. It is a distinct, successful-but-empty outcome, not a
// failure.
var ErrNoData = errors.New("no filings matched the requested window")

// UpstreamError is a non-success status returned by a DART endpoint.
// At the list level it is fatal for the whole run; at the per-company
// detail level callers skip the offending company and continue.
type UpstreamError struct {
	Endpoint string
	Status   string
	Message  string
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("dart %s: [%s] %s", e.Endpoint, e.Status, e.Message)
}

// Is maps the no-data status onto ErrNoData, so an empty upstream
// response and an empty filtered result read the same to callers.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrNoData && e.Status == StatusNoData
}

// NewUpstreamError creates an UpstreamError for the given endpoint.
func NewUpstreamError(endpoint, status, message string) *UpstreamError {
	return &UpstreamError{Endpoint: endpoint, Status: status, Message: message}
}

// IsUpstream reports whether err is (or wraps) an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// ValidationError represents a rejected request parameter.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrValidation creates a validation error for a single field.
func ErrValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
