// Package errs defines the error kinds handlers report to API clients.
//
// Every kind carries the HTTP status it maps to, so services can return
// them directly and the router renders a consistent {error, details} body.
package errs

import (
	"errors"
	"net/http"
	"strings"
)

// FieldError is a single violated constraint on a request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPError is an error that knows its HTTP status and client-facing message.
type HTTPError struct {
	Code    string
	Message string
	Status  int

	// Errors holds field-level validation failures.
	Errors []FieldError

	// Details holds free-form context such as upstream error text.
	Details []string

	cause error
}

func (e *HTTPError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.cause
}

// WithCause attaches an internal cause that is logged but never sent to clients.
func (e *HTTPError) WithCause(err error) *HTTPError {
	cp := *e
	cp.cause = err
	return &cp
}

func newError(status int, message string) *HTTPError {
	return &HTTPError{
		Code:    codeFor(status),
		Message: message,
		Status:  status,
	}
}

func codeFor(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// NewValidationError reports every violated field constraint (400).
func NewValidationError(fields []FieldError) *HTTPError {
	e := newError(http.StatusBadRequest, "Validation failed")
	e.Code = "VALIDATION_FAILED"
	e.Errors = fields
	return e
}

// NewBadRequestError reports a malformed request (400).
func NewBadRequestError(message string) *HTTPError {
	return newError(http.StatusBadRequest, message)
}

// NewNotFoundError reports a missing or unreferenced entity (404).
func NewNotFoundError(message string) *HTTPError {
	return newError(http.StatusNotFound, message)
}

// NewConflictError reports a uniqueness violation (409).
func NewConflictError(message string) *HTTPError {
	return newError(http.StatusConflict, message)
}

// NewInternalServerError hides the real cause behind the generic status text (500).
func NewInternalServerError() *HTTPError {
	return newError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// NewUpstreamError surfaces an external catalog failure with its text (500).
func NewUpstreamError(message, upstream string) *HTTPError {
	e := newError(http.StatusInternalServerError, message)
	e.Code = "UPSTREAM_FAILED"
	if upstream != "" {
		e.Details = []string{upstream}
	}
	return e
}

// As returns the *HTTPError in err's chain, if any.
func As(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an *HTTPError with the given status.
func IsStatus(err error, status int) bool {
	httpErr, ok := As(err)
	return ok && httpErr.Status == status
}
