package pipeline

import (
	"github.com/jonathan/series-publisher/internal/db"
)

// RunContext accumulates the outputs of each stage for one topic run.
type RunContext struct {
	Topic      *db.Topic
	Plan       *db.Plan
	References []db.ReferenceItem
	Content    *db.Content
	Attempt    *db.PublishAttempt

	// FailedStage and Err record the first fatal failure, if any.
	FailedStage string
	Err         error

	completed map[string]bool
}

func newRunContext(topic *db.Topic) *RunContext {
	return &RunContext{Topic: topic, completed: make(map[string]bool)}
}

// fail records err unless an earlier failure was already captured.
func (rc *RunContext) fail(stage string, err error) {
	if rc.Err != nil {
		return
	}
	rc.FailedStage = stage
	rc.Err = err
}

// Completed reports whether stage finished successfully.
func (rc *RunContext) Completed(stage string) bool {
	return rc.completed[stage]
}

// Published reports whether the run ended with a successful publish attempt.
func (rc *RunContext) Published() bool {
	return rc.Err == nil && rc.Attempt != nil && rc.Attempt.Status == db.AttemptStatusSuccess
}

// ErrorMessage returns the captured failure as text, or "".
func (rc *RunContext) ErrorMessage() string {
	if rc.Err == nil {
		return ""
	}
	return rc.Err.Error()
}
