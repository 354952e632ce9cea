// Package export renders plan progress as an Excel workbook.
package export

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
)

// TopicRow is one topic with the state of its content and latest publish attempt.
type TopicRow struct {
	Topic          db.Topic
	ContentTitle   string
	Refined        bool
	Tags           []string
	AttemptStatus  string
	ExternalPostID string
	AttemptError   string
	RetryCount     int
	Attempts       int
	References     int
	TopReference   string
}

// Report is everything the workbook shows for one plan.
type Report struct {
	Plan   db.Plan
	Counts map[string]int
	Rows   []TopicRow
}

// Load gathers a plan's topics with their references, contents and publish
// attempts in one unit of work.
func Load(ctx context.Context, store db.Store, planID uuid.UUID) (*Report, error) {
	var report *Report
	err := store.WithTx(ctx, func(tx db.Tx) error {
		plan, err := tx.GetPlan(ctx, planID)
		if err != nil {
			return err
		}
		if plan == nil {
			return fmt.Errorf("%w: plan %s", db.ErrNotFound, planID)
		}
		topics, err := tx.ListTopics(ctx, planID)
		if err != nil {
			return err
		}
		counts, err := tx.CountTopicsByStatus(ctx, planID)
		if err != nil {
			return err
		}

		rows := make([]TopicRow, 0, len(topics))
		for _, topic := range topics {
			row := TopicRow{Topic: topic}
			refs, err := tx.ListReferenceItems(ctx, topic.ID, 0)
			if err != nil {
				return err
			}
			row.References = len(refs)
			if len(refs) > 0 {
				row.TopReference = refs[0].Title
			}

			content, err := tx.GetContentByTopic(ctx, topic.ID)
			if err != nil {
				return err
			}
			if content != nil {
				row.ContentTitle = content.RawTitle
				if content.IsRefined() {
					row.ContentTitle = *content.RefinedTitle
					row.Refined = true
				}
				row.Tags = content.Tags

				attempts, err := tx.ListPublishAttempts(ctx, content.ID)
				if err != nil {
					return err
				}
				row.Attempts = len(attempts)
				attempt, err := tx.LatestPublishAttempt(ctx, content.ID)
				if err != nil {
					return err
				}
				if attempt != nil {
					row.AttemptStatus = attempt.Status
					row.RetryCount = attempt.RetryCount
					if attempt.ExternalPostID != nil {
						row.ExternalPostID = *attempt.ExternalPostID
					}
					if attempt.ErrorMessage != nil {
						row.AttemptError = *attempt.ErrorMessage
					}
				}
			}
			rows = append(rows, row)
		}

		report = &Report{Plan: *plan, Counts: counts, Rows: rows}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
