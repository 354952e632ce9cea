package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/config"
	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/db/memdb"
	"github.com/jonathan/series-publisher/internal/discovery"
	"github.com/jonathan/series-publisher/internal/generation"
	"github.com/jonathan/series-publisher/internal/llm"
	"github.com/jonathan/series-publisher/internal/orchestrator"
	"github.com/jonathan/series-publisher/internal/pipeline"
	"github.com/jonathan/series-publisher/internal/planner"
	"github.com/jonathan/series-publisher/internal/publish"
	"github.com/jonathan/series-publisher/internal/types"
)

// app holds the wired components a command needs.
type app struct {
	cfg          *config.Config
	logger       *slog.Logger
	store        db.Store
	planner      *planner.Planner
	engine       *pipeline.Engine
	orchestrator *orchestrator.Orchestrator
	closers      []func()
}

// components are the external capabilities wired into an app.
type components struct {
	llm        llm.Client
	discoverer pipeline.Discoverer
	publisher  pipeline.Publisher
	media      pipeline.MediaSource
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// openStore returns the configured persistence store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (db.Store, error) {
	if cfg.DryRun {
		logger.Info("dry run: using in-memory store")
		return memdb.New(), nil
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required (or use --dry-run)")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxConns:       cfg.Pool.MaxConns,
		MaxOverflow:    cfg.Pool.MaxOverflow,
		AcquireTimeout: cfg.Pool.AcquireTimeout.Std(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// newAdminApp wires only the store and planner, for commands that never call
// a model.
func newAdminApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		planner: planner.New(store, nil, &planner.Options{Logger: logger}),
		closers: []func(){store.Close},
	}, nil
}

// newApp wires the full run stack from configuration.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, onProgress pipeline.ProgressCallback) (*app, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, store: store, closers: []func(){store.Close}}

	client, err := newLLMClient(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = client.Close() })

	disc, closeDisc, err := newDiscoverer(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closeDisc != nil {
		a.closers = append(a.closers, closeDisc)
	}

	var pub pipeline.Publisher
	if cfg.DryRun {
		pub = dryRunPublisher{logger: logger}
	} else {
		pub = newPublishClient(cfg, logger)
	}

	a.wire(components{
		llm:        client,
		discoverer: disc,
		publisher:  pub,
		media:      &publish.MediaResolver{Paths: cfg.Publish.Media, Dir: cfg.Publish.MediaDir},
	}, onProgress)
	return a, nil
}

// wire builds planner, engine and orchestrator over the given components.
func (a *app) wire(c components, onProgress pipeline.ProgressCallback) {
	gen := generation.New(c.llm, a.logger)
	timeout := a.cfg.StageTimeout.Std()

	a.planner = planner.New(a.store, gen, &planner.Options{Timeout: timeout, Logger: a.logger})
	a.engine = pipeline.NewEngine(a.store, pipeline.Collaborators{
		Discoverer: c.discoverer,
		Drafter:    gen,
		Refiner:    gen,
		Publisher:  c.publisher,
		Media:      c.media,
	}, &pipeline.Options{
		TopN:           a.cfg.Discovery.TopN,
		ReferenceLimit: a.cfg.Drafting.ReferenceLimit,
		StageTimeout:   timeout,
		Logger:         a.logger,
		OnProgress:     onProgress,
	})
	a.orchestrator = orchestrator.New(a.store, a.planner, a.engine, a.logger)
}

func newLLMClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	provider, err := llm.ParseProvider(cfg.LLM.Provider)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("an API key for %s is required (--api-key, llm.api_key or the provider's env var)", provider)
	}

	lcfg := llm.DefaultConfigFor(provider)
	if cfg.LLM.Model != "" {
		lcfg = lcfg.WithAllModels(cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "" {
		lcfg.BaseURL = cfg.LLM.BaseURL
	}
	if cfg.LLM.Temperature > 0 {
		lcfg.Temperature = cfg.LLM.Temperature
	}
	if cfg.LLM.MaxTokens > 0 {
		lcfg.MaxTokens = cfg.LLM.MaxTokens
	}

	client, err := llm.NewClient(ctx, lcfg, cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newDiscoverer returns the configured discovery backend, optionally cached
// in redis. A nil discoverer disables discovery.
func newDiscoverer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (pipeline.Discoverer, func(), error) {
	var inner discovery.Discoverer
	switch cfg.Discovery.Backend {
	case config.BackendNone:
		return nil, nil, nil
	case config.BackendGoogle:
		if cfg.Discovery.GoogleAPIKey == "" || cfg.Discovery.GoogleCX == "" {
			return nil, nil, fmt.Errorf("google discovery requires GOOGLE_SEARCH_API_KEY and GOOGLE_SEARCH_CX")
		}
		searcher, err := discovery.NewGoogleSearcher(ctx, cfg.Discovery.GoogleAPIKey, cfg.Discovery.GoogleCX, cfg.Discovery.GoogleSite)
		if err != nil {
			return nil, nil, err
		}
		inner = searcher
	default:
		inner = discovery.NewXHSClient(cfg.Discovery.ServiceURL, &http.Client{Timeout: cfg.StageTimeout.Std()}, logger)
	}

	if cfg.Discovery.RedisAddr == "" {
		return inner, nil, nil
	}
	cache, err := discovery.NewRedisCache(ctx, cfg.Discovery.RedisAddr)
	if err != nil {
		logger.Warn("discovery cache unavailable, continuing without it", "addr", cfg.Discovery.RedisAddr, "error", err)
		return inner, nil, nil
	}
	closeCache := func() { _ = cache.Close() }
	return discovery.NewCachedDiscoverer(inner, cache, cfg.Discovery.CacheTTL.Std(), logger), closeCache, nil
}

func newPublishClient(cfg *config.Config, logger *slog.Logger) *publish.Client {
	return publish.NewClient(cfg.Publish.ServiceURL, &publish.Options{
		MaxTitleRunes: cfg.Publish.MaxTitleRunes,
		Logger:        logger,
	})
}

// dryRunPublisher accepts every post without contacting the service.
type dryRunPublisher struct {
	logger *slog.Logger
}

func (p dryRunPublisher) Publish(_ context.Context, req *types.PublishRequest) (*types.PublishResult, error) {
	id := "dry-run-" + uuid.NewString()
	p.logger.Info("dry run: post not submitted", "title", req.Title, "media", len(req.Media), "post_id", id)
	return &types.PublishResult{PostID: id}, nil
}
