package planner

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a plan does not exist.
var ErrNotFound = errors.New("plan not found")

// PlanningError represents a decomposition that produced no usable topics.
type PlanningError struct {
	Resource string
	Message  string
	Cause    error
}

func (e *PlanningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("planning error for %q: %s: %v", e.Resource, e.Message, e.Cause)
	}
	return fmt.Sprintf("planning error for %q: %s", e.Resource, e.Message)
}

func (e *PlanningError) Unwrap() error {
	return e.Cause
}
