package transfer

import (
	"errors"
	"fmt"
)

// ErrEmptyFileID is returned when a download URL is requested without an identifier.
var ErrEmptyFileID = errors.New("file id is empty")

// TransportError represents a failure to reach the backend at all.
type TransportError struct {
	URL     string
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error for %s: %s", e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ServerError represents a non-success HTTP status returned by the backend.
type ServerError struct {
	URL    string
	Status int
	Body   string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error for %s: HTTP status %d: %s", e.URL, e.Status, truncate(e.Body, maxErrorBody))
}

// maxErrorBody caps how much of a rejection body ends up in error strings and logs.
const maxErrorBody = 512

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
