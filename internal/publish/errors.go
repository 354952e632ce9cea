package publish

import "fmt"

// Error represents a rejected or failed publication.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("publish error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("publish error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
