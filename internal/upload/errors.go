package upload

import (
	"errors"
	"fmt"
)

// User-facing messages. Causes of failures are logged, never shown.
const (
	UnsupportedTypeMessage = "Please upload a PDF or Image file."
	FailureMessage         = "Upload failed. Please try again."
)

// ErrBusy is returned for any file offered while a submission is in flight.
var ErrBusy = errors.New("upload already in progress")

// ValidationError indicates a file rejected before contacting the backend.
type ValidationError struct {
	ContentType string
	Message     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (content type %q)", e.Message, e.ContentType)
}

// SubmissionError wraps any failure after validation: transport, server or a
// response the listener refused. All of them look the same to the user.
type SubmissionError struct {
	Cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
