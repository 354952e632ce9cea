package db

import (
	"time"

	"github.com/google/uuid"
)

// Default values for new plans
const (
	DefaultResourceKind = "book"
)

// Plan is the backlog derived from one resource.
type Plan struct {
	ID                  uuid.UUID `json:"id"`
	ResourceName        string    `json:"resource_name"`
	ResourceKind        string    `json:"resource_kind"`
	TotalTopicCount     int       `json:"total_topic_count"`
	CompletedTopicCount int       `json:"completed_topic_count"`
	Description         string    `json:"description"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ProgressPercent returns completed/total as a percentage.
func (p *Plan) ProgressPercent() float64 {
	if p.TotalTopicCount == 0 {
		return 0
	}
	return float64(p.CompletedTopicCount) / float64(p.TotalTopicCount) * 100
}

// PlanInput represents input for creating a plan
type PlanInput struct {
	ResourceName    string
	ResourceKind    string
	Description     string
	TotalTopicCount int
}

// DefaultDescription is the description used when a plan is created without one.
func DefaultDescription(resourceName string) string {
	return resourceName + " content outline"
}
