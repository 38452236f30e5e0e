package services

import (
	"context"

	"repairdesk/internal/models"
	"repairdesk/internal/notify"
	"repairdesk/internal/transport/dto"

	"github.com/google/uuid"
)

// JobWorkflowService defines the job lifecycle operations exposed to API handlers and schedulers.
type JobWorkflowService interface {
	ChangeStatus(ctx context.Context, req *dto.ChangeJobStatusRequest) (*models.Job, error)
	NextStatuses(ctx context.Context, req *dto.NextStatusesRequest) (*models.Job, []models.JobStatus, error)
	ApplyQuoteAction(ctx context.Context, req *dto.QuoteActionRequest) (*models.Quote, error)
	RunOverdueSweep(ctx context.Context) bool
}

// Validator is the part of TransitionValidator the workflow service depends on.
type Validator interface {
	Validate(ctx context.Context, req ValidationRequest) (ValidationResult, error)
	ValidNextStatuses(ctx context.Context, jobID uuid.UUID, current models.JobStatus, role models.UserRole, entity models.EntityType) ([]models.JobStatus, error)
}

// Notifier is the part of notify.Dispatcher the workflow service depends on.
type Notifier interface {
	OnStatusChanged(ctx context.Context, change notify.StatusChange) bool
	OnQuoteAction(ctx context.Context, quoteID uuid.UUID, action models.QuoteAction, notes string) bool
	SweepOverdue(ctx context.Context) bool
}

var (
	_ Validator = (*TransitionValidator)(nil)
	_ Notifier  = (*notify.Dispatcher)(nil)
)
