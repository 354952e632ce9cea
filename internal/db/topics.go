package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Topic Methods
// -----------------------------------------------------------------------------

const topicColumns = `id, plan_id, title, brief, position, status, keywords, created_at, updated_at`

func scanTopic(row pgx.Row) (*Topic, error) {
	var tp Topic
	err := row.Scan(&tp.ID, &tp.PlanID, &tp.Title, &tp.Brief, &tp.Position,
		&tp.Status, &tp.Keywords, &tp.CreatedAt, &tp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tp.Keywords == nil {
		tp.Keywords = []string{}
	}
	return &tp, nil
}

// CreateTopics inserts a batch of pending topics for a plan
func (t *pgTx) CreateTopics(ctx context.Context, planID uuid.UUID, inputs []TopicInput) ([]Topic, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, in := range inputs {
		keywords := in.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		batch.Queue(
			`INSERT INTO topics (plan_id, title, brief, position, status, keywords)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+topicColumns,
			planID, in.Title, in.Brief, in.Position, TopicStatusPending, keywords,
		)
	}

	br := t.tx.SendBatch(ctx, batch)
	topics := make([]Topic, 0, len(inputs))
	for range inputs {
		tp, err := scanTopic(br.QueryRow())
		if err != nil {
			_ = br.Close()
			return nil, storageErr("create topic", err)
		}
		topics = append(topics, *tp)
	}
	if err := br.Close(); err != nil {
		return nil, storageErr("create topics", err)
	}
	return topics, nil
}

// GetTopic retrieves a topic by ID
func (t *pgTx) GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error) {
	tp, err := scanTopic(t.tx.QueryRow(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get topic", err)
	}
	return tp, nil
}

// ListTopics returns the topics of a plan in position order
func (t *pgTx) ListTopics(ctx context.Context, planID uuid.UUID) ([]Topic, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE plan_id = $1 ORDER BY position`, planID)
	if err != nil {
		return nil, storageErr("list topics", err)
	}
	defer rows.Close()

	var topics []Topic
	for rows.Next() {
		tp, err := scanTopic(rows)
		if err != nil {
			return nil, storageErr("scan topic", err)
		}
		topics = append(topics, *tp)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list topics", err)
	}
	return topics, nil
}

// CountTopicsByStatus returns the number of topics per status for a plan
func (t *pgTx) CountTopicsByStatus(ctx context.Context, planID uuid.UUID) (map[string]int, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT status, COUNT(*) FROM topics WHERE plan_id = $1 GROUP BY status`, planID)
	if err != nil {
		return nil, storageErr("count topics", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, storageErr("scan topic count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("count topics", err)
	}
	return counts, nil
}

// ClaimNextTopic marks the lowest-position pending topic of a plan as processing and returns it.
// Returns nil when the plan has no pending topic. Rows locked by a concurrent claim are skipped.
func (t *pgTx) ClaimNextTopic(ctx context.Context, planID uuid.UUID) (*Topic, error) {
	tp, err := scanTopic(t.tx.QueryRow(ctx,
		`UPDATE topics SET status = $2, updated_at = NOW()
		 WHERE id = (
		     SELECT id FROM topics
		     WHERE plan_id = $1 AND status = $3
		     ORDER BY position
		     LIMIT 1
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING `+topicColumns,
		planID, TopicStatusProcessing, TopicStatusPending,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("claim next topic", err)
	}
	return tp, nil
}

// UpdateTopicStatus moves a topic to status, enforcing the lifecycle order.
func (t *pgTx) UpdateTopicStatus(ctx context.Context, id uuid.UUID, status string) (*Topic, error) {
	from, ok := topicPredecessors[status]
	if !ok {
		return nil, fmt.Errorf("%w: cannot move topic to %q", ErrInvalidTransition, status)
	}
	return t.transitionTopic(ctx, id, status, from)
}

// ResetTopic moves a processing or failed topic back to pending.
func (t *pgTx) ResetTopic(ctx context.Context, id uuid.UUID) (*Topic, error) {
	return t.transitionTopic(ctx, id, TopicStatusPending, resettableStatuses)
}

func (t *pgTx) transitionTopic(ctx context.Context, id uuid.UUID, to string, from []string) (*Topic, error) {
	tp, err := scanTopic(t.tx.QueryRow(ctx,
		`UPDATE topics SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = ANY($3)
		 RETURNING `+topicColumns,
		id, to, from,
	))
	if err == nil {
		return tp, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, storageErr("update topic status", err)
	}

	current, getErr := t.GetTopic(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current == nil {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: topic %s is %s, cannot move to %s", ErrInvalidTransition, id, current.Status, to)
}
