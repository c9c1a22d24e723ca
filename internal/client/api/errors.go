package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers network failures and 5xx answers; reads may be retried.
	ErrUnavailable = errors.New("service unavailable")
	// ErrUnauthorized maps 401: the token is missing, invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden maps 403: the token is fine but the role is not.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound maps 404.
	ErrNotFound = errors.New("not found")
	// ErrBadResponse marks a response body that does not match the endpoint's envelope.
	ErrBadResponse = errors.New("unexpected response shape")
)

// Error is a non-success answer from the Vacation Service. Message carries the
// server's error/message field verbatim, per the service's error contract.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("vacation service: %s (status %d)", e.Message, e.StatusCode)
}

// Unwrap maps the status code to a sentinel so callers can use errors.Is
// without inspecting codes.
func (e *Error) Unwrap() error {
	switch {
	case e.StatusCode == 401:
		return ErrUnauthorized
	case e.StatusCode == 403:
		return ErrForbidden
	case e.StatusCode == 404:
		return ErrNotFound
	case e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return nil
	}
}
