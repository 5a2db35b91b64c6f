package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoToken is returned when the credential store has no bearer token.
	ErrNoToken = errors.New("api: bearer token not available")
	// ErrInvalidPayload is returned when a request body fails validation
	// before it is sent.
	ErrInvalidPayload = errors.New("api: invalid request payload")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsUnauthorized reports whether err is a 401/403 from the backend.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden
	}
	return errors.Is(err, ErrNoToken)
}
