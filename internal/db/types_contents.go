package db

import (
	"time"

	"github.com/google/uuid"
)

// Content is the generated artifact for a topic.
type Content struct {
	ID                uuid.UUID `json:"id"`
	TopicID           uuid.UUID `json:"topic_id"`
	RawTitle          string    `json:"raw_title"`
	RawBody           string    `json:"raw_body"`
	RefinedTitle      *string   `json:"refined_title,omitempty"`
	RefinedBody       *string   `json:"refined_body,omitempty"`
	Tags              []string  `json:"tags"`
	OptimizationNotes *string   `json:"optimization_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsRefined reports whether refinement has been applied.
func (c *Content) IsRefined() bool {
	return c.RefinedTitle != nil && c.RefinedBody != nil
}

// DraftInput holds the drafting output persisted as a new content row.
type DraftInput struct {
	Title string
	Body  string
	Tags  []string
}

// RefinementInput holds the refinement output applied to an existing content row.
type RefinementInput struct {
	Title string
	Body  string
	Tags  []string
	Notes string
}
