// Package planner builds topic backlogs for resources and hands out the next unit of work.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/types"
)

// Decomposer breaks a resource into ordered topics.
type Decomposer interface {
	Decompose(ctx context.Context, resourceName, resourceKind string) ([]types.TopicSpec, error)
}

// Options configures a Planner.
type Options struct {
	// Timeout bounds the decomposition call. Zero means no extra bound.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Planner creates plans and selects topics.
type Planner struct {
	store      db.Store
	decomposer Decomposer
	timeout    time.Duration
	logger     *slog.Logger
}

// New creates a Planner.
func New(store db.Store, decomposer Decomposer, opts *Options) *Planner {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{store: store, decomposer: decomposer, timeout: opts.Timeout, logger: logger}
}

// CreatePlan decomposes the resource and persists the plan with all of its
// topics in one unit of work.
func (p *Planner) CreatePlan(ctx context.Context, resourceName, resourceKind string) (uuid.UUID, error) {
	resourceName = strings.TrimSpace(resourceName)
	if resourceName == "" {
		return uuid.Nil, &PlanningError{Message: "resource name is required"}
	}
	if resourceKind == "" {
		resourceKind = db.DefaultResourceKind
	}

	specs, err := p.decompose(ctx, resourceName, resourceKind)
	if err != nil {
		return uuid.Nil, &PlanningError{Resource: resourceName, Message: "decomposition failed", Cause: err}
	}
	if len(specs) == 0 {
		return uuid.Nil, &PlanningError{Resource: resourceName, Message: "decomposition returned no topics"}
	}

	inputs := make([]db.TopicInput, 0, len(specs))
	for i, spec := range specs {
		if strings.TrimSpace(spec.Title) == "" {
			return uuid.Nil, &PlanningError{Resource: resourceName, Message: fmt.Sprintf("topic %d has no title", i+1)}
		}
		inputs = append(inputs, db.TopicInput{
			Title:    spec.Title,
			Brief:    spec.Brief,
			Position: i + 1,
			Keywords: spec.Keywords,
		})
	}

	// The decomposition already happened; persist it even if ctx is canceled now.
	wctx := context.WithoutCancel(ctx)
	var planID uuid.UUID
	err = p.store.WithTx(wctx, func(tx db.Tx) error {
		plan, err := tx.CreatePlan(wctx, &db.PlanInput{
			ResourceName:    resourceName,
			ResourceKind:    resourceKind,
			TotalTopicCount: len(inputs),
		})
		if err != nil {
			return err
		}
		if _, err := tx.CreateTopics(wctx, plan.ID, inputs); err != nil {
			return err
		}
		planID = plan.ID
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	p.logger.Info("plan created", "plan_id", planID, "resource", resourceName, "kind", resourceKind, "topics", len(inputs))
	return planID, nil
}

func (p *Planner) decompose(ctx context.Context, resourceName, resourceKind string) ([]types.TopicSpec, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.decomposer.Decompose(ctx, resourceName, resourceKind)
}

// NextTopic claims the lowest-position pending topic of the plan, moving it
// to processing. It returns nil when the plan has no pending topics.
func (p *Planner) NextTopic(ctx context.Context, planID uuid.UUID) (*db.Topic, error) {
	var topic *db.Topic
	err := p.store.WithTx(ctx, func(tx db.Tx) error {
		plan, err := tx.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, planID)
		}
		topic, err = tx.ClaimNextTopic(ctx, planID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if topic != nil {
		p.logger.Info("topic claimed", "plan_id", planID, "topic_id", topic.ID, "position", topic.Position, "title", topic.Title)
	}
	return topic, nil
}

// Resolve ensures a plan exists for the request and claims its next topic.
// A non-empty resource name creates a new plan even when a plan id is also set.
func (p *Planner) Resolve(ctx context.Context, req *types.RunRequest) (uuid.UUID, *db.Topic, error) {
	var planID uuid.UUID
	switch {
	case req == nil:
		return uuid.Nil, nil, &PlanningError{Message: "request is required"}
	case strings.TrimSpace(req.ResourceName) != "":
		id, err := p.CreatePlan(ctx, req.ResourceName, req.ResourceKind)
		if err != nil {
			return uuid.Nil, nil, err
		}
		planID = id
	case req.PlanID != nil:
		planID = *req.PlanID
	default:
		return uuid.Nil, nil, &PlanningError{Message: "either resource name or plan id is required"}
	}

	topic, err := p.NextTopic(ctx, planID)
	if err != nil {
		return planID, nil, err
	}
	return planID, topic, nil
}

// PendingCount returns how many topics of the plan are still pending.
func (p *Planner) PendingCount(ctx context.Context, planID uuid.UUID) (int, error) {
	var pending int
	err := p.store.WithTx(ctx, func(tx db.Tx) error {
		counts, err := tx.CountTopicsByStatus(ctx, planID)
		if err != nil {
			return err
		}
		pending = counts[db.TopicStatusPending]
		return nil
	})
	return pending, err
}
