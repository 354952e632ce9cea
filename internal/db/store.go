package db

import (
	"context"

	"github.com/google/uuid"
)

// Store is the unit-of-work boundary every entity operation runs inside.
type Store interface {
	// WithTx commits everything fn wrote if fn returns nil, and nothing otherwise.
	WithTx(ctx context.Context, fn func(Tx) error) error
	Ping(ctx context.Context) error
	Close()
}

// Tx exposes the entity operations available inside one unit of work.
// Getters return (nil, nil) when the row does not exist.
type Tx interface {
	CreatePlan(ctx context.Context, input *PlanInput) (*Plan, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	ListPlans(ctx context.Context) ([]Plan, error)
	RefreshPlanProgress(ctx context.Context, planID uuid.UUID) (*Plan, error)
	DeletePlan(ctx context.Context, planID uuid.UUID) error

	CreateTopics(ctx context.Context, planID uuid.UUID, inputs []TopicInput) ([]Topic, error)
	GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error)
	ListTopics(ctx context.Context, planID uuid.UUID) ([]Topic, error)
	CountTopicsByStatus(ctx context.Context, planID uuid.UUID) (map[string]int, error)
	ClaimNextTopic(ctx context.Context, planID uuid.UUID) (*Topic, error)
	UpdateTopicStatus(ctx context.Context, id uuid.UUID, status string) (*Topic, error)
	ResetTopic(ctx context.Context, id uuid.UUID) (*Topic, error)

	CreateReferenceItems(ctx context.Context, topicID uuid.UUID, inputs []ReferenceItemInput) ([]ReferenceItem, error)
	ListReferenceItems(ctx context.Context, topicID uuid.UUID, limit int) ([]ReferenceItem, error)

	CreateContent(ctx context.Context, topicID uuid.UUID, input *DraftInput) (*Content, error)
	GetContentByTopic(ctx context.Context, topicID uuid.UUID) (*Content, error)
	UpdateContentRefinement(ctx context.Context, contentID uuid.UUID, input *RefinementInput) (*Content, error)

	CreatePublishAttempt(ctx context.Context, contentID uuid.UUID) (*PublishAttempt, error)
	UpdatePublishAttempt(ctx context.Context, id uuid.UUID, update *PublishAttemptUpdate) (*PublishAttempt, error)
	LatestPublishAttempt(ctx context.Context, contentID uuid.UUID) (*PublishAttempt, error)
	ListPublishAttempts(ctx context.Context, contentID uuid.UUID) ([]PublishAttempt, error)
}
