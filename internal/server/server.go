// Package server provides the HTTP API over plans and runs.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/planner"
	"github.com/jonathan/series-publisher/internal/server/ratelimit"
	"github.com/jonathan/series-publisher/internal/types"
)

// Plans is the plan administration surface.
type Plans interface {
	ListPlans(ctx context.Context) ([]db.Plan, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*planner.PlanDetail, error)
	DeletePlan(ctx context.Context, planID uuid.UUID) error
	ResetTopic(ctx context.Context, topicID uuid.UUID) (*db.Topic, error)
}

// Runs advances a plan by one topic.
type Runs interface {
	Run(ctx context.Context, req *types.RunRequest) (*types.RunResult, error)
}

// Config holds server configuration.
type Config struct {
	Port      int
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	store      db.Store
	plans      Plans
	runs       Runs
	limiter    *ratelimit.Limiter
	logger     *slog.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// New creates a Server with its routes registered.
func New(cfg Config, store db.Store, plans Plans, runs Runs) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:   store,
		plans:   plans,
		runs:    runs,
		limiter: ratelimit.NewLimiter(cfg.RateLimit),
		logger:  logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.withLogging(), withCORS(), s.withRateLimit())

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.GET("/plans", s.handleListPlans)
	v1.GET("/plans/:id", s.handleGetPlan)
	v1.GET("/plans/:id/export", s.handleExportPlan)
	v1.DELETE("/plans/:id", s.handleDeletePlan)
	v1.POST("/runs", s.handleRun)
	v1.POST("/topics/:id/reset", s.handleResetTopic)

	s.router = r
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // a run spans several model calls
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) withLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}

func withCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) withRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := s.limiter.Allow(c.ClientIP(), c.Request.URL.Path, c.Request.Method)
		if info.Limit > 0 {
			c.Header("X-RateLimit-Limit", fmt.Sprint(info.Limit))
			c.Header("X-RateLimit-Remaining", fmt.Sprint(info.Remaining))
		}
		if !info.Allowed {
			retry := int(info.RetryAfter.Seconds()) + 1
			c.Header("Retry-After", fmt.Sprint(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
