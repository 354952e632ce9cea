package db

import (
	"time"

	"github.com/google/uuid"
)

// TopicStatus constants
const (
	TopicStatusPending    = "pending"
	TopicStatusProcessing = "processing"
	TopicStatusCompleted  = "completed"
	TopicStatusFailed     = "failed"
)

// topicPredecessors lists, for each target status, the statuses a topic may leave to reach it.
var topicPredecessors = map[string][]string{
	TopicStatusProcessing: {TopicStatusPending},
	TopicStatusCompleted:  {TopicStatusProcessing},
	TopicStatusFailed:     {TopicStatusProcessing},
}

// resettableStatuses are the statuses an operator may move back to pending.
var resettableStatuses = []string{TopicStatusProcessing, TopicStatusFailed}

// CanTransition reports whether a topic in status from may move to status to.
func CanTransition(from, to string) bool {
	for _, s := range topicPredecessors[to] {
		if s == from {
			return true
		}
	}
	return false
}

// CanReset reports whether a topic in the given status may be reset to pending.
func CanReset(status string) bool {
	for _, s := range resettableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends a topic's lifecycle.
func IsTerminal(status string) bool {
	return status == TopicStatusCompleted || status == TopicStatusFailed
}

// Topic is one unit of backlog work within a plan.
type Topic struct {
	ID        uuid.UUID `json:"id"`
	PlanID    uuid.UUID `json:"plan_id"`
	Title     string    `json:"title"`
	Brief     string    `json:"brief"`
	Position  int       `json:"position"`
	Status    string    `json:"status"`
	Keywords  []string  `json:"keywords"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TopicInput represents input for creating a topic
type TopicInput struct {
	Title    string
	Brief    string
	Position int
	Keywords []string
}
