package db

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Plan Methods
// -----------------------------------------------------------------------------

const planColumns = `id, resource_name, resource_kind, total_topic_count, completed_topic_count,
	description, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.ResourceName, &p.ResourceKind, &p.TotalTopicCount,
		&p.CompletedTopicCount, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlan inserts a new plan
func (t *pgTx) CreatePlan(ctx context.Context, input *PlanInput) (*Plan, error) {
	kind := strings.TrimSpace(input.ResourceKind)
	if kind == "" {
		kind = DefaultResourceKind
	}
	description := input.Description
	if description == "" {
		description = DefaultDescription(input.ResourceName)
	}

	plan, err := scanPlan(t.tx.QueryRow(ctx,
		`INSERT INTO plans (resource_name, resource_kind, total_topic_count, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+planColumns,
		input.ResourceName, kind, input.TotalTopicCount, description,
	))
	if err != nil {
		return nil, storageErr("create plan", err)
	}
	return plan, nil
}

// GetPlan retrieves a plan by ID
func (t *pgTx) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	plan, err := scanPlan(t.tx.QueryRow(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get plan", err)
	}
	return plan, nil
}

// ListPlans returns all plans, newest first
func (t *pgTx) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+planColumns+` FROM plans ORDER BY created_at DESC`)
	if err != nil {
		return nil, storageErr("list plans", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, storageErr("scan plan", err)
		}
		plans = append(plans, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list plans", err)
	}
	return plans, nil
}

// RefreshPlanProgress recomputes completed_topic_count from the completed topics of the plan.
func (t *pgTx) RefreshPlanProgress(ctx context.Context, planID uuid.UUID) (*Plan, error) {
	plan, err := scanPlan(t.tx.QueryRow(ctx,
		`UPDATE plans SET
		     completed_topic_count = (
		         SELECT COUNT(*) FROM topics WHERE plan_id = $1 AND status = $2
		     ),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+planColumns,
		planID, TopicStatusCompleted,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("refresh plan progress", err)
	}
	return plan, nil
}

// DeletePlan removes a plan and everything under it, children first.
func (t *pgTx) DeletePlan(ctx context.Context, planID uuid.UUID) error {
	statements := []struct {
		op  string
		sql string
	}{
		{"delete publish attempts", `DELETE FROM publish_attempts WHERE content_id IN (
			SELECT c.id FROM contents c JOIN topics tp ON tp.id = c.topic_id WHERE tp.plan_id = $1)`},
		{"delete contents", `DELETE FROM contents WHERE topic_id IN (SELECT id FROM topics WHERE plan_id = $1)`},
		{"delete reference items", `DELETE FROM reference_items WHERE topic_id IN (SELECT id FROM topics WHERE plan_id = $1)`},
		{"delete topics", `DELETE FROM topics WHERE plan_id = $1`},
	}
	for _, s := range statements {
		if _, err := t.tx.Exec(ctx, s.sql, planID); err != nil {
			return storageErr(s.op, err)
		}
	}

	tag, err := t.tx.Exec(ctx, `DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return storageErr("delete plan", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
