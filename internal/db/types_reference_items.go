package db

import (
	"time"

	"github.com/google/uuid"
)

// ReferenceItem is inspiration material attached to a topic.
type ReferenceItem struct {
	ID         uuid.UUID `json:"id"`
	TopicID    uuid.UUID `json:"topic_id"`
	ExternalID string    `json:"external_id"`
	Title      string    `json:"title"`
	Excerpt    string    `json:"excerpt"`
	Author     string    `json:"author"`
	Likes      int       `json:"likes"`
	Collects   int       `json:"collects"`
	Comments   int       `json:"comments"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}

// Engagement is the ranking score of the item.
func (r *ReferenceItem) Engagement() int {
	return r.Likes + r.Collects
}

// ReferenceItemInput represents input for creating a reference item
type ReferenceItemInput struct {
	ExternalID string
	Title      string
	Excerpt    string
	Author     string
	Likes      int
	Collects   int
	Comments   int
	URL        string
}
