package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for any 401 response after the central
// handler has already cleared the session. Controllers treat it as
// "redirect happened elsewhere" and stop.
var ErrUnauthorized = errors.New("unauthorized")

// AuthError is a rejected sign-in or sign-up. Message carries the
// server-provided detail when present, a generic fallback otherwise.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("authentication failed (status %d)", e.Status)
}

// APIError is any other non-2xx response, passed through for the caller
// to surface inline.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("request failed (status %d)", e.Status)
}
