// Package pipeline advances one topic through discovery, drafting, refinement
// and publication, then records the topic's final status.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/pipeline/steps"
	"github.com/jonathan/series-publisher/internal/types"
)

// Default limits
const (
	DefaultTopN           = 10
	DefaultReferenceLimit = 5
	DefaultStageTimeout   = 120 * time.Second
)

// Discoverer finds reference notes for a topic.
type Discoverer interface {
	Discover(ctx context.Context, keywords []string) ([]types.ReferenceNote, error)
}

// Drafter writes the first version of a post.
type Drafter interface {
	Draft(ctx context.Context, title, brief string, refs []types.ReferenceNote) (*types.Draft, error)
}

// Refiner polishes a drafted post.
type Refiner interface {
	Refine(ctx context.Context, title, body string, tags []string) (*types.RefinedDraft, error)
}

// Publisher submits a finished post.
type Publisher interface {
	Publish(ctx context.Context, req *types.PublishRequest) (*types.PublishResult, error)
}

// MediaSource supplies the media attached to a post.
type MediaSource interface {
	Resolve() ([]string, error)
}

// Collaborators are the external capabilities the engine calls.
type Collaborators struct {
	Discoverer Discoverer
	Drafter    Drafter
	Refiner    Refiner
	Publisher  Publisher
	Media      MediaSource
}

// Options configures an Engine.
type Options struct {
	// TopN caps the reference items persisted per topic.
	TopN int
	// ReferenceLimit caps the reference items passed to drafting.
	ReferenceLimit int
	// StageTimeout bounds each external call.
	StageTimeout time.Duration
	Logger       *slog.Logger
	OnProgress   ProgressCallback
}

// Engine runs the stage sequence for one topic at a time. It performs no
// internal parallelism; callers serialize runs per plan.
type Engine struct {
	store    db.Store
	collab   Collaborators
	opts     Options
	logger   *slog.Logger
	handlers map[string]stageHandler
}

type stageHandler func(ctx context.Context, rc *RunContext) error

// NewEngine creates an Engine.
func NewEngine(store db.Store, collab Collaborators, opts *Options) *Engine {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.ReferenceLimit <= 0 {
		o.ReferenceLimit = DefaultReferenceLimit
	}
	if o.StageTimeout <= 0 {
		o.StageTimeout = DefaultStageTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	e := &Engine{store: store, collab: collab, opts: o, logger: o.Logger}
	e.handlers = map[string]stageHandler{
		steps.Discovery:   e.discover,
		steps.Drafting:    e.draft,
		steps.Refinement:  e.refine,
		steps.Publication: e.publish,
	}
	return e
}

// Run drives a processing topic through every stage and finalizes it.
//
// Stage failures are captured in the returned RunContext and never returned
// as an error. The error is non-nil only when persistence failed; the engine
// still attempts to finalize the topic in that case.
func (e *Engine) Run(ctx context.Context, topic *db.Topic) (*RunContext, error) {
	if topic == nil {
		return nil, fmt.Errorf("topic is required")
	}
	rc := newRunContext(topic)
	log := e.logger.With("plan_id", topic.PlanID, "topic_id", topic.ID)

	var storeErr error
	for stage := steps.First; stage != steps.Finalize; stage = steps.Next(stage) {
		def := steps.StageRegistry[stage]
		if err := steps.ValidateDependencies(stage, rc.completed); err != nil {
			rc.fail(stage, err)
			break
		}

		log.Info("stage started", "stage", stage)
		e.emit(def, rc, fmt.Sprintf("%s: %s", titleCase(stage), topic.Title), nil)

		if err := e.handlers[stage](ctx, rc); err != nil {
			rc.fail(stage, err)
			storeErr = err
			break
		}
		if rc.Err != nil {
			log.Warn("stage failed", "stage", stage, "error", rc.Err)
			break
		}
		rc.completed[stage] = true
	}

	if err := e.finalize(ctx, rc); err != nil && storeErr == nil {
		storeErr = err
	}
	if storeErr != nil {
		log.Error("topic run aborted by storage failure", "error", storeErr)
		return rc, storeErr
	}

	e.emit(steps.StageRegistry[steps.Finalize], rc, fmt.Sprintf("Topic %q %s", topic.Title, rc.Topic.Status), rc.Plan)
	log.Info("topic finalized", "status", rc.Topic.Status, "failed_stage", rc.FailedStage)
	return rc, nil
}

// finalize marks the topic completed or failed and recounts plan progress.
// It runs detached from ctx so a canceled caller still leaves a terminal status.
func (e *Engine) finalize(ctx context.Context, rc *RunContext) error {
	status := db.TopicStatusFailed
	if rc.Published() {
		status = db.TopicStatusCompleted
	}

	wctx := context.WithoutCancel(ctx)
	return e.store.WithTx(wctx, func(tx db.Tx) error {
		topic, err := tx.UpdateTopicStatus(wctx, rc.Topic.ID, status)
		if err != nil {
			return fmt.Errorf("failed to finalize topic: %w", err)
		}
		plan, err := tx.RefreshPlanProgress(wctx, rc.Topic.PlanID)
		if err != nil {
			return fmt.Errorf("failed to refresh plan progress: %w", err)
		}
		rc.Topic = topic
		rc.Plan = plan
		return nil
	})
}

// stageContext bounds one external call.
func (e *Engine) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.opts.StageTimeout)
}

// persist runs fn in a unit of work that outlives cancellation of ctx.
func (e *Engine) persist(ctx context.Context, fn func(ctx context.Context, tx db.Tx) error) error {
	wctx := context.WithoutCancel(ctx)
	return e.store.WithTx(wctx, func(tx db.Tx) error {
		return fn(wctx, tx)
	})
}

func (e *Engine) emit(def steps.StageDefinition, rc *RunContext, message string, content any) {
	if e.opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{
		Stage:    def.Name,
		Category: def.Category,
		Message:  message,
		TopicID:  rc.Topic.ID.String(),
		Content:  content,
	}
	if def.Number > 0 {
		event.Number = def.Number
		event.Total = steps.Count()
	}
	e.opts.OnProgress(event)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
