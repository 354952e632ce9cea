package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Content Methods
// -----------------------------------------------------------------------------

const contentColumns = `id, topic_id, raw_title, raw_body, refined_title, refined_body,
	tags, optimization_notes, created_at, updated_at`

func scanContent(row pgx.Row) (*Content, error) {
	var c Content
	err := row.Scan(&c.ID, &c.TopicID, &c.RawTitle, &c.RawBody, &c.RefinedTitle,
		&c.RefinedBody, &c.Tags, &c.OptimizationNotes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

// CreateContent stores the draft for a topic. A topic has at most one content row.
func (t *pgTx) CreateContent(ctx context.Context, topicID uuid.UUID, input *DraftInput) (*Content, error) {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	c, err := scanContent(t.tx.QueryRow(ctx,
		`INSERT INTO contents (topic_id, raw_title, raw_body, tags)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+contentColumns,
		topicID, input.Title, input.Body, tags,
	))
	if err != nil {
		return nil, storageErr("create content", err)
	}
	return c, nil
}

// GetContentByTopic retrieves the content of a topic
func (t *pgTx) GetContentByTopic(ctx context.Context, topicID uuid.UUID) (*Content, error) {
	c, err := scanContent(t.tx.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM contents WHERE topic_id = $1`, topicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get content", err)
	}
	return c, nil
}

// UpdateContentRefinement writes the refined variant onto an existing content row
func (t *pgTx) UpdateContentRefinement(ctx context.Context, contentID uuid.UUID, input *RefinementInput) (*Content, error) {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	c, err := scanContent(t.tx.QueryRow(ctx,
		`UPDATE contents SET
		     refined_title = $2,
		     refined_body = $3,
		     tags = $4,
		     optimization_notes = NULLIF($5, ''),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+contentColumns,
		contentID, input.Title, input.Body, tags, input.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("update content refinement", err)
	}
	return c, nil
}
