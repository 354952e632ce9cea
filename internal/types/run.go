package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// RunRequest asks for one topic to be advanced, on a new plan or an existing one.
type RunRequest struct {
	ResourceName string     `json:"resource_name,omitempty" validate:"required_without=PlanID"`
	ResourceKind string     `json:"resource_kind,omitempty"`
	PlanID       *uuid.UUID `json:"plan_id,omitempty" validate:"required_without=ResourceName"`
}

// Validate validates the RunRequest using the validator.
func (r *RunRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// RunResult is the structured outcome of one run.
type RunResult struct {
	Success       bool       `json:"success"`
	PlanID        *uuid.UUID `json:"plan_id,omitempty"`
	TopicID       *uuid.UUID `json:"topic_id,omitempty"`
	HasMoreTopics bool       `json:"has_more_topics"`
	ErrorMessage  string     `json:"error_message,omitempty"`
}
