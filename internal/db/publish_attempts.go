package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Publish Attempt Methods
// -----------------------------------------------------------------------------

const publishAttemptColumns = `id, content_id, external_post_id, status, error_message,
	retry_count, publish_time, created_at`

func scanPublishAttempt(row pgx.Row) (*PublishAttempt, error) {
	var a PublishAttempt
	err := row.Scan(&a.ID, &a.ContentID, &a.ExternalPostID, &a.Status, &a.ErrorMessage,
		&a.RetryCount, &a.PublishTime, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreatePublishAttempt appends a pending attempt for a content
func (t *pgTx) CreatePublishAttempt(ctx context.Context, contentID uuid.UUID) (*PublishAttempt, error) {
	a, err := scanPublishAttempt(t.tx.QueryRow(ctx,
		`INSERT INTO publish_attempts (content_id, status)
		 VALUES ($1, $2)
		 RETURNING `+publishAttemptColumns,
		contentID, AttemptStatusPending,
	))
	if err != nil {
		return nil, storageErr("create publish attempt", err)
	}
	return a, nil
}

// UpdatePublishAttempt records the outcome of an attempt.
// A failed update increments retry_count; a successful one stamps publish_time.
func (t *pgTx) UpdatePublishAttempt(ctx context.Context, id uuid.UUID, update *PublishAttemptUpdate) (*PublishAttempt, error) {
	switch update.Status {
	case AttemptStatusPending, AttemptStatusSuccess, AttemptStatusFailed:
	default:
		return nil, fmt.Errorf("unknown publish attempt status %q", update.Status)
	}

	a, err := scanPublishAttempt(t.tx.QueryRow(ctx,
		`UPDATE publish_attempts SET
		     status = $2,
		     external_post_id = COALESCE(NULLIF($3, ''), external_post_id),
		     error_message = NULLIF($4, ''),
		     retry_count = retry_count + CASE WHEN $2 = 'failed' THEN 1 ELSE 0 END,
		     publish_time = CASE WHEN $2 = 'success' THEN NOW() ELSE publish_time END
		 WHERE id = $1
		 RETURNING `+publishAttemptColumns,
		id, update.Status, update.ExternalPostID, update.ErrorMessage,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("update publish attempt", err)
	}
	return a, nil
}

// LatestPublishAttempt returns the most recently created attempt for a content
func (t *pgTx) LatestPublishAttempt(ctx context.Context, contentID uuid.UUID) (*PublishAttempt, error) {
	a, err := scanPublishAttempt(t.tx.QueryRow(ctx,
		`SELECT `+publishAttemptColumns+`
		 FROM publish_attempts
		 WHERE content_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`, contentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get latest publish attempt", err)
	}
	return a, nil
}

// ListPublishAttempts returns every attempt for a content, oldest first
func (t *pgTx) ListPublishAttempts(ctx context.Context, contentID uuid.UUID) ([]PublishAttempt, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+publishAttemptColumns+`
		 FROM publish_attempts
		 WHERE content_id = $1
		 ORDER BY created_at, id`, contentID)
	if err != nil {
		return nil, storageErr("list publish attempts", err)
	}
	defer rows.Close()

	var attempts []PublishAttempt
	for rows.Next() {
		a, err := scanPublishAttempt(rows)
		if err != nil {
			return nil, storageErr("scan publish attempt", err)
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list publish attempts", err)
	}
	return attempts, nil
}
