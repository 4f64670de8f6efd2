package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	ordersapp "github.com/orderhub/backend/internal/application/orders"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/infrastructure/scheduler"
	"github.com/orderhub/backend/internal/interfaces/http/dto"
)

// ReconcileHandler handles reconciliation API endpoints
type ReconcileHandler struct {
	BaseHandler
	scheduler *scheduler.ReconcileScheduler
}

// NewReconcileHandler creates a new ReconcileHandler
func NewReconcileHandler(s *scheduler.ReconcileScheduler) *ReconcileHandler {
	return &ReconcileHandler{scheduler: s}
}

// RunReconcileRequest represents a request to start a reconciliation pass
// @Description Request body for an ad-hoc reconciliation pass
type RunReconcileRequest struct {
	// Provider restricts the pass to one marketplace provider when set
	Provider string `json:"provider" binding:"max=30" example:"ZID"`
	// Policy overrides the configured conflict resolution policy
	Policy string `json:"policy" binding:"omitempty,oneof=marketplace_wins internal_wins manual" example:"marketplace_wins"`
}

// ReconcileJobResponse represents a reconciliation job in API responses
type ReconcileJobResponse struct {
	ID              string     `json:"id"`
	Provider        string     `json:"provider,omitempty"`
	Policy          string     `json:"policy"`
	Status          string     `json:"status"`
	Error           string     `json:"error,omitempty"`
	FromRemoteCount int        `json:"from_remote_count"`
	ToRemoteCount   int        `json:"to_remote_count"`
	ConflictCount   int        `json:"conflict_count"`
	ErrorCount      int        `json:"error_count"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// toReconcileJobResponse converts a job to its API representation
func toReconcileJobResponse(job *scheduler.ReconcileJob) ReconcileJobResponse {
	return ReconcileJobResponse{
		ID:              job.ID.String(),
		Provider:        job.Scope.Provider,
		Policy:          string(job.Policy),
		Status:          string(job.Status),
		Error:           job.Error,
		FromRemoteCount: job.FromRemoteCount,
		ToRemoteCount:   job.ToRemoteCount,
		ConflictCount:   job.ConflictCount,
		ErrorCount:      job.ErrorCount,
		StartedAt:       job.StartedAt,
		CompletedAt:     job.CompletedAt,
	}
}

// RunNow godoc
// @Summary      Start a reconciliation pass
// @Description  Enqueues an ad-hoc pass for the tenant and returns the job
// @Tags         sync
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        request body RunReconcileRequest true "Pass options"
// @Success      202 {object} dto.Response{data=ReconcileJobResponse}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /sync/reconcile [post]
func (h *ReconcileHandler) RunNow(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RunReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	policy := integration.PolicyMarketplaceWins
	if req.Policy != "" {
		policy = integration.ResolutionPolicy(req.Policy)
	}

	scope := ordersapp.ReconcileScope{TenantID: tenantID, Provider: req.Provider}
	job, err := h.scheduler.RunNow(scope, policy)
	if err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) || errors.Is(err, scheduler.ErrJobQueueFull) {
			h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, err.Error())
			return
		}
		h.InternalError(c, err.Error())
		return
	}

	h.Accepted(c, toReconcileJobResponse(job))
}

// History godoc
// @Summary      List recent reconciliation jobs
// @Tags         sync
// @Produce      json
// @Param        limit query int false "Max jobs to return" default(20)
// @Success      200 {object} dto.Response{data=[]ReconcileJobResponse}
// @Router       /sync/reconcile/jobs [get]
func (h *ReconcileHandler) History(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	jobs := h.scheduler.GetJobHistory(limit)
	out := make([]ReconcileJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toReconcileJobResponse(job))
	}
	h.Success(c, out)
}

// RegisterRoutes registers sync routes on the group
func (h *ReconcileHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/reconcile", h.RunNow)
		sync.GET("/reconcile/jobs", h.History)
	}
}
