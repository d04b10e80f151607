package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured is returned by every call of a client built without a base URL.
	ErrNotConfigured = errors.New("server is not configured properly")
	// ErrUnauthorized reports a 401 on a bearer call. Callers end the session.
	ErrUnauthorized       = errors.New("unauthorized: token expired")
	ErrInvalidCredentials = errors.New("Email or password is incorrect")
	ErrNotFound           = errors.New("not found")
	ErrCircuitOpen        = errors.New("circuit breaker is open")
)

// APIError is any non-2xx answer other than a bearer 401.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, msg)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsServerError reports whether err is a 5xx answer.
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}
