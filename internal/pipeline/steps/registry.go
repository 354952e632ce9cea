// Package steps defines the stages a topic moves through, their order and
// which earlier stages each one depends on.
package steps

import (
	"fmt"
)

// Stage names
const (
	Discovery   = "discovery"
	Drafting    = "drafting"
	Refinement  = "refinement"
	Publication = "publication"
	Finalize    = "finalize"
)

// Stage categories
const (
	CategoryEnrichment  = "enrichment"
	CategoryGeneration  = "generation"
	CategoryDelivery    = "delivery"
	CategoryBookkeeping = "bookkeeping"
)

// StageDefinition defines metadata for a topic stage
type StageDefinition struct {
	Name     string
	Category string
	// Number is the 1-based position shown in progress output; Finalize has none.
	Number int
	// Fatal stages end the run on failure. Non-fatal failures are absorbed.
	Fatal        bool
	Dependencies []string
	Next         string
}

// StageRegistry holds all stage definitions
var StageRegistry = map[string]StageDefinition{
	Discovery: {
		Name:         Discovery,
		Category:     CategoryEnrichment,
		Number:       1,
		Fatal:        false,
		Dependencies: []string{},
		Next:         Drafting,
	},
	Drafting: {
		Name:         Drafting,
		Category:     CategoryGeneration,
		Number:       2,
		Fatal:        true,
		Dependencies: []string{Discovery},
		Next:         Refinement,
	},
	Refinement: {
		Name:         Refinement,
		Category:     CategoryGeneration,
		Number:       3,
		Fatal:        true,
		Dependencies: []string{Drafting},
		Next:         Publication,
	},
	Publication: {
		Name:         Publication,
		Category:     CategoryDelivery,
		Number:       4,
		Fatal:        true,
		Dependencies: []string{Refinement},
		Next:         Finalize,
	},
	Finalize: {
		Name:         Finalize,
		Category:     CategoryBookkeeping,
		Dependencies: []string{},
	},
}

// First is the stage every run starts in.
const First = Discovery

// Count is the number of numbered stages before Finalize.
func Count() int {
	n := 0
	for _, def := range StageRegistry {
		if def.Number > 0 {
			n++
		}
	}
	return n
}

// Next returns the stage after name, or Finalize for unknown and last stages.
func Next(name string) string {
	def, ok := StageRegistry[name]
	if !ok || def.Next == "" {
		return Finalize
	}
	return def.Next
}

// Order returns the numbered stages in execution order.
func Order() []string {
	var order []string
	for stage := First; stage != Finalize; stage = Next(stage) {
		order = append(order, stage)
	}
	return order
}

// DependencyError represents a stage whose prerequisites have not succeeded
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s: missing dependencies: %v", e.Stage, e.MissingDependencies)
}

// ValidateDependencies checks that every dependency of stage is in completed
func ValidateDependencies(stage string, completed map[string]bool) error {
	def, ok := StageRegistry[stage]
	if !ok {
		return fmt.Errorf("unknown stage: %s", stage)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Stage:               stage,
			MissingDependencies: missing,
		}
	}

	return nil
}
