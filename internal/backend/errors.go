package backend

import (
	"errors"
	"fmt"
)

// ErrUnavailable wraps transport failures and undecodable responses.
var ErrUnavailable = errors.New("offers backend unavailable")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: backend responded %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: backend responded %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}
