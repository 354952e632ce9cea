package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Reference Item Methods
// -----------------------------------------------------------------------------

const referenceItemColumns = `id, topic_id, external_id, title, excerpt, author,
	likes, collects, comments, url, created_at`

func scanReferenceItem(row pgx.Row) (*ReferenceItem, error) {
	var r ReferenceItem
	err := row.Scan(&r.ID, &r.TopicID, &r.ExternalID, &r.Title, &r.Excerpt, &r.Author,
		&r.Likes, &r.Collects, &r.Comments, &r.URL, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateReferenceItems inserts a batch of reference items for a topic
func (t *pgTx) CreateReferenceItems(ctx context.Context, topicID uuid.UUID, inputs []ReferenceItemInput) ([]ReferenceItem, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, in := range inputs {
		batch.Queue(
			`INSERT INTO reference_items (topic_id, external_id, title, excerpt, author,
			                              likes, collects, comments, url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING `+referenceItemColumns,
			topicID, in.ExternalID, in.Title, in.Excerpt, in.Author,
			in.Likes, in.Collects, in.Comments, in.URL,
		)
	}

	br := t.tx.SendBatch(ctx, batch)
	items := make([]ReferenceItem, 0, len(inputs))
	for range inputs {
		r, err := scanReferenceItem(br.QueryRow())
		if err != nil {
			_ = br.Close()
			return nil, storageErr("create reference item", err)
		}
		items = append(items, *r)
	}
	if err := br.Close(); err != nil {
		return nil, storageErr("create reference items", err)
	}
	return items, nil
}

// ListReferenceItems returns a topic's reference items by engagement, highest first.
// A limit of zero or less returns all items.
func (t *pgTx) ListReferenceItems(ctx context.Context, topicID uuid.UUID, limit int) ([]ReferenceItem, error) {
	query := `SELECT ` + referenceItemColumns + `
	          FROM reference_items
	          WHERE topic_id = $1
	          ORDER BY likes + collects DESC, created_at DESC`
	args := []any{topicID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list reference items", err)
	}
	defer rows.Close()

	var items []ReferenceItem
	for rows.Next() {
		r, err := scanReferenceItem(rows)
		if err != nil {
			return nil, storageErr("scan reference item", err)
		}
		items = append(items, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list reference items", err)
	}
	return items, nil
}
