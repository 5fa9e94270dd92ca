package domain

import (
	"errors"
	"net/http"
)

// Sentinel errors for catalog operations
var (
	// ErrFetchFailed indicates a catalog read failed (network, status or payload)
	ErrFetchFailed = errors.New("failed to fetch catalog")

	// ErrValidationFailed indicates an entry was rejected locally or by the server
	ErrValidationFailed = errors.New("entry failed validation")

	// ErrUnauthorized indicates the credential was missing or rejected
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound indicates the target entry does not exist
	ErrNotFound = errors.New("entry not found")

	// ErrRequestFailed is the catch-all for failed write requests
	ErrRequestFailed = errors.New("request failed")

	// ErrNotPlayable indicates an entry has no playback URL
	ErrNotPlayable = errors.New("entry has no playback URL")
)

// RequestError is returned by write operations. Kind is one of the sentinel
// errors above; Message is suitable for showing to the user.
type RequestError struct {
	Kind    error
	Status  int // HTTP status, 0 when no response was received
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Kind
}

// NewRequestError builds a RequestError, falling back to the kind's text
// when message is empty
func NewRequestError(kind error, status int, message string) *RequestError {
	if message == "" {
		message = kind.Error()
	}
	return &RequestError{Kind: kind, Status: status, Message: message}
}

// KindForStatus maps a non-2xx HTTP status to the error taxonomy
func KindForStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrValidationFailed
	default:
		return ErrRequestFailed
	}
}
