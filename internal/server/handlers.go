package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonathan/series-publisher/internal/db"
	"github.com/jonathan/series-publisher/internal/export"
	"github.com/jonathan/series-publisher/internal/types"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// PlanSummary is a plan with its progress percentage.
type PlanSummary struct {
	db.Plan
	ProgressPercent float64 `json:"progress_percent"`
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListPlans(c *gin.Context) {
	plans, err := s.plans.ListPlans(c.Request.Context())
	if err != nil {
		s.logger.Error("error listing plans", "error", err)
		writeError(c, err)
		return
	}
	out := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanSummary{Plan: p, ProgressPercent: p.ProgressPercent()})
	}
	c.JSON(http.StatusOK, gin.H{"plans": out, "count": len(out)})
}

func (s *Server) handleGetPlan(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detail, err := s.plans.GetPlan(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":            PlanSummary{Plan: detail.Plan, ProgressPercent: detail.Plan.ProgressPercent()},
		"topics":          detail.Topics,
		"counts":          detail.Counts,
		"has_more_topics": detail.Pending() > 0,
	})
}

func (s *Server) handleDeletePlan(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := s.plans.DeletePlan(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportPlan(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	report, err := export.Load(c.Request.Context(), s.store, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="plan-%s.xlsx"`, id))
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, report); err != nil {
		s.logger.Error("error writing workbook", "plan_id", id, "error", err)
	}
}

func (s *Server) handleResetTopic(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	topic, err := s.plans.ResetTopic(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, topic)
}

func (s *Server) handleRun(c *gin.Context) {
	var req types.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, &ErrValidation{Field: "body", Message: err.Error()})
		return
	}

	result, err := s.runs.Run(c.Request.Context(), &req)
	if err != nil {
		s.logger.Error("run failed", "resource", req.ResourceName, "error", err)
		if result == nil {
			writeError(c, err)
			return
		}
		c.JSON(HTTPStatus(err), result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		writeError(c, &ErrValidation{Field: name, Message: "must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}
