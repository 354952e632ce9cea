package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/discovery"
	"github.com/jonathan/series-publisher/internal/generation"
	"github.com/jonathan/series-publisher/internal/pipeline/steps"
	"github.com/jonathan/series-publisher/internal/publish"
	"github.com/jonathan/series-publisher/internal/types"
)

// discover never fails the run: search errors and empty results leave the
// topic with no reference items.
func (e *Engine) discover(ctx context.Context, rc *RunContext) error {
	topic := rc.Topic
	if e.collab.Discoverer == nil || len(topic.Keywords) == 0 {
		e.logger.Info("discovery skipped", "topic_id", topic.ID, "keywords", len(topic.Keywords))
		return nil
	}

	sctx, cancel := e.stageContext(ctx)
	notes, err := e.collab.Discoverer.Discover(sctx, topic.Keywords)
	cancel()
	if err != nil {
		e.logger.Warn("discovery failed, continuing without references", "topic_id", topic.ID, "keywords", topic.Keywords, "error", err)
		return nil
	}

	ranked := discovery.Rank(notes, e.opts.TopN)
	if len(ranked) == 0 {
		e.logger.Info("discovery returned no references", "topic_id", topic.ID, "keywords", topic.Keywords)
		return nil
	}

	inputs := make([]db.ReferenceItemInput, len(ranked))
	for i, n := range ranked {
		inputs[i] = db.ReferenceItemInput{
			ExternalID: n.ExternalID,
			Title:      n.Title,
			Excerpt:    n.Excerpt,
			Author:     n.Author,
			Likes:      n.Likes,
			Collects:   n.Collects,
			Comments:   n.Comments,
			URL:        n.URL,
		}
	}

	return e.persist(ctx, func(ctx context.Context, tx db.Tx) error {
		items, err := tx.CreateReferenceItems(ctx, topic.ID, inputs)
		if err != nil {
			return err
		}
		rc.References = items
		return nil
	})
}

func (e *Engine) draft(ctx context.Context, rc *RunContext) error {
	topic := rc.Topic
	if strings.TrimSpace(topic.Brief) == "" {
		rc.fail(steps.Drafting, &generation.GenerationError{Stage: generation.StageDrafting, Message: "topic brief is required"})
		return nil
	}

	refs := make([]types.ReferenceNote, 0, min(len(rc.References), e.opts.ReferenceLimit))
	for i := 0; i < len(rc.References) && i < e.opts.ReferenceLimit; i++ {
		refs = append(refs, toNote(&rc.References[i]))
	}

	sctx, cancel := e.stageContext(ctx)
	draft, err := e.collab.Drafter.Draft(sctx, topic.Title, topic.Brief, refs)
	cancel()
	if err != nil {
		rc.fail(steps.Drafting, asGenerationError(generation.StageDrafting, err))
		return nil
	}

	return e.persist(ctx, func(ctx context.Context, tx db.Tx) error {
		content, err := tx.CreateContent(ctx, topic.ID, &db.DraftInput{
			Title: draft.Title,
			Body:  draft.Body,
			Tags:  draft.Tags,
		})
		if err != nil {
			return err
		}
		rc.Content = content
		return nil
	})
}

func (e *Engine) refine(ctx context.Context, rc *RunContext) error {
	content := rc.Content

	sctx, cancel := e.stageContext(ctx)
	refined, err := e.collab.Refiner.Refine(sctx, content.RawTitle, content.RawBody, content.Tags)
	cancel()
	if err != nil {
		rc.fail(steps.Refinement, asGenerationError(generation.StageRefinement, err))
		return nil
	}

	return e.persist(ctx, func(ctx context.Context, tx db.Tx) error {
		updated, err := tx.UpdateContentRefinement(ctx, content.ID, &db.RefinementInput{
			Title: refined.Title,
			Body:  refined.Body,
			Tags:  refined.Tags,
			Notes: refined.OptimizationNotes,
		})
		if err != nil {
			return err
		}
		rc.Content = updated
		return nil
	})
}

// publish records a pending attempt, validates the request, calls the
// publisher and stores the outcome on the same attempt.
func (e *Engine) publish(ctx context.Context, rc *RunContext) error {
	content := rc.Content

	err := e.persist(ctx, func(ctx context.Context, tx db.Tx) error {
		attempt, err := tx.CreatePublishAttempt(ctx, content.ID)
		if err != nil {
			return err
		}
		rc.Attempt = attempt
		return nil
	})
	if err != nil {
		return err
	}

	result, pubErr := e.submit(ctx, content)

	update := &db.PublishAttemptUpdate{Status: db.AttemptStatusSuccess}
	if pubErr != nil {
		update = &db.PublishAttemptUpdate{Status: db.AttemptStatusFailed, ErrorMessage: pubErr.Error()}
	} else {
		update.ExternalPostID = result.PostID
	}

	err = e.persist(ctx, func(ctx context.Context, tx db.Tx) error {
		attempt, err := tx.UpdatePublishAttempt(ctx, rc.Attempt.ID, update)
		if err != nil {
			return err
		}
		rc.Attempt = attempt
		return nil
	})
	if err != nil {
		return err
	}

	if pubErr != nil {
		rc.fail(steps.Publication, pubErr)
	}
	return nil
}

func (e *Engine) submit(ctx context.Context, content *db.Content) (*types.PublishResult, error) {
	var media []string
	if e.collab.Media != nil {
		resolved, err := e.collab.Media.Resolve()
		if err != nil {
			return nil, &publish.Error{Message: "failed to resolve media", Cause: err}
		}
		media = resolved
	}

	req := &types.PublishRequest{
		Title: deref(content.RefinedTitle, content.RawTitle),
		Body:  deref(content.RefinedBody, content.RawBody),
		Media: media,
		Tags:  content.Tags,
	}
	if err := req.Validate(); err != nil {
		if len(media) == 0 {
			return nil, &publish.Error{Message: "at least one media item is required"}
		}
		return nil, &publish.Error{Message: "invalid publish request", Cause: err}
	}

	sctx, cancel := e.stageContext(ctx)
	defer cancel()
	result, err := e.collab.Publisher.Publish(sctx, req)
	if err != nil {
		return nil, asPublishError(err)
	}
	return result, nil
}

func asGenerationError(stage string, err error) error {
	var genErr *generation.GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &generation.GenerationError{Stage: stage, Message: "generation failed", Cause: err}
}

func asPublishError(err error) error {
	var pubErr *publish.Error
	if errors.As(err, &pubErr) {
		return err
	}
	return &publish.Error{Message: "publish failed", Cause: err}
}

func toNote(item *db.ReferenceItem) types.ReferenceNote {
	return types.ReferenceNote{
		ExternalID: item.ExternalID,
		Title:      item.Title,
		Excerpt:    item.Excerpt,
		Author:     item.Author,
		Likes:      item.Likes,
		Collects:   item.Collects,
		Comments:   item.Comments,
		URL:        item.URL,
	}
}

func deref(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
