package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
)

// PlanDetail is a plan together with its topics and a status breakdown.
type PlanDetail struct {
	Plan   db.Plan        `json:"plan"`
	Topics []db.Topic     `json:"topics"`
	Counts map[string]int `json:"counts"`
}

// Pending returns the number of topics still waiting to be claimed.
func (d *PlanDetail) Pending() int {
	return d.Counts[db.TopicStatusPending]
}

// ListPlans returns every plan, newest first.
func (p *Planner) ListPlans(ctx context.Context) ([]db.Plan, error) {
	var plans []db.Plan
	err := p.store.WithTx(ctx, func(tx db.Tx) error {
		var err error
		plans, err = tx.ListPlans(ctx)
		return err
	})
	return plans, err
}

// GetPlan loads a plan with its topics ordered by position.
func (p *Planner) GetPlan(ctx context.Context, planID uuid.UUID) (*PlanDetail, error) {
	var detail *PlanDetail
	err := p.store.WithTx(ctx, func(tx db.Tx) error {
		plan, err := tx.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, planID)
		}
		topics, err := tx.ListTopics(ctx, planID)
		if err != nil {
			return err
		}
		counts, err := tx.CountTopicsByStatus(ctx, planID)
		if err != nil {
			return err
		}
		detail = &PlanDetail{Plan: *plan, Topics: topics, Counts: counts}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// DeletePlan removes a plan and everything recorded under it.
func (p *Planner) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	err := p.store.WithTx(ctx, func(tx db.Tx) error {
		return tx.DeletePlan(ctx, planID)
	})
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, planID)
	}
	if err != nil {
		return err
	}
	p.logger.Info("plan deleted", "plan_id", planID)
	return nil
}

// ResetTopic moves a failed or stuck topic back to pending so the next run
// picks it up again, and refreshes the plan's progress.
func (p *Planner) ResetTopic(ctx context.Context, topicID uuid.UUID) (*db.Topic, error) {
	var topic *db.Topic
	err := p.store.WithTx(ctx, func(tx db.Tx) error {
		var err error
		topic, err = tx.ResetTopic(ctx, topicID)
		if err != nil {
			return err
		}
		_, err = tx.RefreshPlanProgress(ctx, topic.PlanID)
		return err
	})
	if err != nil {
		return nil, err
	}
	p.logger.Info("topic reset", "topic_id", topicID, "plan_id", topic.PlanID)
	return topic, nil
}
