package profile

import "fmt"

// MalformedProfileError indicates a submission that cannot become a profile,
// typically because it carries no usable file identifier.
type MalformedProfileError struct {
	Message string
	Cause   error
}

func (e *MalformedProfileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed profile: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed profile: %s", e.Message)
}

func (e *MalformedProfileError) Unwrap() error {
	return e.Cause
}
