// Package discovery finds popular posts related to a topic's keywords.
package discovery

import (
	"context"
	"fmt"

	"github.com/jonathan/series-publisher/internal/types"
)

// DefaultTopN is the number of reference notes kept per topic.
const DefaultTopN = 10

// Discoverer searches for reference notes matching a set of keywords.
type Discoverer interface {
	Discover(ctx context.Context, keywords []string) ([]types.ReferenceNote, error)
}

// Error represents a failed search against a discovery backend.
type Error struct {
	Backend string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("discovery error (%s): %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("discovery error (%s): %s", e.Backend, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
