// Package orchestrator is the entry point that advances a plan by one topic per call.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/pipeline"
	"github.com/jonathan/series-publisher/internal/planner"
	"github.com/jonathan/series-publisher/internal/types"
)

// DefaultConcurrency is the number of plans drained at once by DrainAll.
const DefaultConcurrency = 4

// Resolver ensures a plan exists and claims its next topic.
type Resolver interface {
	Resolve(ctx context.Context, req *types.RunRequest) (uuid.UUID, *db.Topic, error)
	PendingCount(ctx context.Context, planID uuid.UUID) (int, error)
}

// Runner advances one claimed topic through every stage.
type Runner interface {
	Run(ctx context.Context, topic *db.Topic) (*pipeline.RunContext, error)
}

// Orchestrator combines planning and the stage engine.
type Orchestrator struct {
	store    db.Store
	resolver Resolver
	runner   Runner
	logger   *slog.Logger
}

// New creates an Orchestrator.
func New(store db.Store, resolver Resolver, runner Runner, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{store: store, resolver: resolver, runner: runner, logger: logger}
}

// Run advances the backlog by at most one topic.
//
// The result distinguishes three outcomes: no more work (Success false, no
// error message), a topic that failed (error message set, topic durably
// failed), and an invocation that itself failed (error message set, returned
// error non-nil). Only the last one returns an error.
func (o *Orchestrator) Run(ctx context.Context, req *types.RunRequest) (*types.RunResult, error) {
	if req == nil {
		req = &types.RunRequest{}
	}
	if err := req.Validate(); err != nil {
		err = &planner.PlanningError{Resource: req.ResourceName, Message: "invalid run request", Cause: err}
		return failed(nil, nil, err), err
	}

	planID, topic, err := o.resolver.Resolve(ctx, req)
	if err != nil {
		o.logger.Error("run could not resolve a topic", "resource", req.ResourceName, "error", err)
		return failed(idPtr(planID), nil, err), err
	}
	result := &types.RunResult{PlanID: &planID}

	if topic == nil {
		o.logger.Info("plan has no pending topics", "plan_id", planID)
		return result, nil
	}
	result.TopicID = &topic.ID

	rc, err := o.runner.Run(ctx, topic)
	if err != nil {
		return failed(&planID, &topic.ID, err), err
	}

	result.Success = rc.Published()
	result.ErrorMessage = rc.ErrorMessage()

	pending, err := o.resolver.PendingCount(context.WithoutCancel(ctx), planID)
	if err != nil {
		return failed(&planID, &topic.ID, err), err
	}
	result.HasMoreTopics = pending > 0
	return result, nil
}

// DrainPlan runs the plan until no pending topics remain, returning every
// per-topic result. It stops at the first invocation failure.
func (o *Orchestrator) DrainPlan(ctx context.Context, planID uuid.UUID) ([]types.RunResult, error) {
	var results []types.RunResult
	id := planID
	for {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := o.Run(ctx, &types.RunRequest{PlanID: &id})
		if err != nil {
			return results, err
		}
		if res.TopicID == nil {
			return results, nil
		}
		results = append(results, *res)
		if !res.HasMoreTopics {
			return results, nil
		}
	}
}

// DrainAll drains every plan with pending topics, up to concurrency plans at
// a time. Each plan is drained sequentially by a single goroutine.
func (o *Orchestrator) DrainAll(ctx context.Context, concurrency int) (map[uuid.UUID][]types.RunResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	planIDs, err := o.plansWithPendingWork(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]types.RunResult, len(planIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range planIDs {
		g.Go(func() error {
			res, err := o.DrainPlan(gctx, id)
			results[i] = res
			if err != nil {
				return fmt.Errorf("plan %s: %w", id, err)
			}
			return nil
		})
	}
	err = g.Wait()

	out := make(map[uuid.UUID][]types.RunResult, len(planIDs))
	for i, id := range planIDs {
		out[id] = results[i]
	}
	return out, err
}

func (o *Orchestrator) plansWithPendingWork(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := o.store.WithTx(ctx, func(tx db.Tx) error {
		plans, err := tx.ListPlans(ctx)
		if err != nil {
			return err
		}
		for _, p := range plans {
			counts, err := tx.CountTopicsByStatus(ctx, p.ID)
			if err != nil {
				return err
			}
			if counts[db.TopicStatusPending] > 0 {
				ids = append(ids, p.ID)
			}
		}
		return nil
	})
	return ids, err
}

func failed(planID, topicID *uuid.UUID, err error) *types.RunResult {
	return &types.RunResult{PlanID: planID, TopicID: topicID, ErrorMessage: err.Error()}
}

func idPtr(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
