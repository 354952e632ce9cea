package generation

import "fmt"

// Stage names reported in GenerationError.
const (
	StagePlanning   = "planning"
	StageDrafting   = "drafting"
	StageRefinement = "refinement"
)

// GenerationError represents a model call whose result could not be used.
type GenerationError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error (%s): %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error (%s): %s", e.Stage, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
