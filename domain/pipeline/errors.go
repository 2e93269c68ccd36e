// Package pipeline defines the error taxonomy shared by the download and
// metadata paths. Stage-local errors are wrapped with a Kind at the
// orchestrator boundary; HTTP handlers classify and emit only the safe
// message, never the underlying cause.
package pipeline

import (
	"errors"
	"net/http"
)

// Kind classifies a pipeline failure
type Kind int

const (
	// KindInvalidInput covers missing or malformed URL/time fields
	KindInvalidInput Kind = iota

	// KindUnauthorized covers requests failing the origin allow-list
	KindUnauthorized

	// KindMethodNotAllowed covers non-POST requests on POST-only endpoints
	KindMethodNotAllowed

	// KindMetadataUnavailable covers resolver/platform API failures
	KindMetadataUnavailable

	// KindTranscodeFailed covers stream and transcoding failures
	KindTranscodeFailed

	// KindPublishFailed covers storage and credential failures
	KindPublishFailed

	// KindInternal is the fallback for errors that escaped classification
	KindInternal
)

// String returns the machine-readable code used in logs
func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindMethodNotAllowed:
		return "method_not_allowed"
	case KindMetadataUnavailable:
		return "metadata_unavailable"
	case KindTranscodeFailed:
		return "transcode_failed"
	case KindPublishFailed:
		return "publish_failed"
	default:
		return "internal"
	}
}

// HTTPStatus maps the kind to its HTTP status code
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a classified failure. Message is safe to return to the
// caller; Err holds the full internal cause for logging only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError creates a classified error wrapping an internal cause
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error returns the safe message; internal detail stays in Unwrap
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the internal cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify extracts the pipeline error from err. Errors that were never
// classified fall back to KindInternal with a generic message.
func Classify(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindInternal, Message: "failed to process request", Err: err}
}
