package db

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus constants
const (
	AttemptStatusPending = "pending"
	AttemptStatusSuccess = "success"
	AttemptStatusFailed  = "failed"
)

// PublishAttempt records one attempt to publish a content.
type PublishAttempt struct {
	ID             uuid.UUID  `json:"id"`
	ContentID      uuid.UUID  `json:"content_id"`
	ExternalPostID *string    `json:"external_post_id,omitempty"`
	Status         string     `json:"status"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	RetryCount     int        `json:"retry_count"`
	PublishTime    *time.Time `json:"publish_time,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// PublishAttemptUpdate sets the outcome of an attempt.
type PublishAttemptUpdate struct {
	Status         string
	ExternalPostID string
	ErrorMessage   string
}
