package handlers

import (
	"net/http"

	"repairdesk/internal/api/middleware"
	"repairdesk/internal/services"
	"repairdesk/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// JobHandler holds dependencies for job lifecycle operations.
type JobHandler struct {
	service   services.JobWorkflowService
	validator *validator.Validate
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(service services.JobWorkflowService, validate *validator.Validate) *JobHandler {
	return &JobHandler{
		service:   service,
		validator: validate,
	}
}

// NextStatuses lists the statuses the caller may move the job to right now.
//
//	GET /api/v1/jobs/:id/next-statuses
func (h *JobHandler) NextStatuses(c *gin.Context) {
	actor, err := middleware.GetActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	job, next, err := h.service.NextStatuses(c.Request.Context(), &dto.NextStatusesRequest{JobID: jobID, Actor: actor})
	if err != nil {
		respondServiceError(c, err, "Job not found")
		return
	}

	resp := dto.NextStatusesResponse{
		JobID:         job.ID,
		CurrentStatus: string(job.Status),
		NextStatuses:  make([]string, 0, len(next)),
	}
	for _, s := range next {
		resp.NextStatuses = append(resp.NextStatuses, string(s))
	}
	c.JSON(http.StatusOK, resp)
}

// ChangeStatus validates and applies a status change.
//
//	PATCH /api/v1/jobs/:id/status
func (h *JobHandler) ChangeStatus(c *gin.Context) {
	actor, err := middleware.GetActorFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	jobID, ok := parseIDParam(c, "id", "job")
	if !ok {
		return
	}

	var req dto.ChangeJobStatusRequest
	if !bindAndValidate(c, h.validator, &req) {
		return
	}
	req.JobID = jobID
	req.Actor = actor

	job, err := h.service.ChangeStatus(c.Request.Context(), &req)
	if err != nil {
		respondServiceError(c, err, "Job not found")
		return
	}
	c.JSON(http.StatusOK, dto.NewJobResponse(job))
}
