package services

import (
	"context"
	"fmt"
	"log/slog"

	"repairdesk/internal/models"
	"repairdesk/internal/notify"
	"repairdesk/internal/storage"
	"repairdesk/internal/transport/dto"
)

type jobWorkflowService struct {
	repo      storage.JobRepository
	store     storage.JobStore
	validator Validator
	notifier  Notifier
	logger    *slog.Logger
}

// NewJobWorkflowService wires the validator and the notifier around the job store.
// The two never call each other; this service runs validate, persist, notify in that order.
func NewJobWorkflowService(repo storage.JobRepository, store storage.JobStore, validator Validator, notifier Notifier, logger *slog.Logger) JobWorkflowService {
	if logger == nil {
		logger = slog.Default()
	}
	return &jobWorkflowService{repo: repo, store: store, validator: validator, notifier: notifier, logger: logger}
}

func (s *jobWorkflowService) ChangeStatus(ctx context.Context, req *dto.ChangeJobStatusRequest) (*models.Job, error) {
	newStatus, err := models.ParseJobStatus(req.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	job, err := s.repo.GetJob(ctx, req.JobID)
	if err != nil {
		s.logger.WarnContext(ctx, "ChangeStatus: error fetching job", slog.String("job_id", req.JobID.String()), slog.Any("error", err))
		return nil, mapRepoError(err, "fetching job for status change")
	}
	oldStatus := job.Status

	result, err := s.validator.Validate(ctx, ValidationRequest{
		JobID:          job.ID,
		CurrentStatus:  oldStatus,
		NewStatus:      newStatus,
		UserRole:       req.Actor.Role,
		EntityType:     req.Actor.EntityType,
		AdditionalData: AdditionalData{Notes: req.Notes},
	})
	if err != nil {
		return nil, mapRepoError(err, "validating status change")
	}
	if !result.Valid {
		s.logger.InfoContext(ctx, "ChangeStatus: transition rejected",
			slog.String("job_id", job.ID.String()),
			slog.String("from", string(oldStatus)),
			slog.String("to", string(newStatus)),
			slog.String("kind", string(result.Kind)),
			slog.String("reason", result.Error),
		)
		return nil, &TransitionRejectedError{Result: result}
	}

	// The write is conditioned on the status we validated against.
	updated, err := s.store.UpdateStatus(ctx, job.ID, oldStatus, newStatus)
	if err != nil {
		return nil, mapRepoError(err, "updating job status")
	}

	// The status change is committed; notification outcome is informational only.
	if !s.notifier.OnStatusChanged(ctx, notify.StatusChange{
		JobID:           job.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
		ChangedByUserID: req.Actor.UserID,
		Notes:           req.Notes,
	}) {
		s.logger.WarnContext(ctx, "ChangeStatus: notifications not dispatched", slog.String("job_id", job.ID.String()))
	}

	return updated, nil
}

func (s *jobWorkflowService) NextStatuses(ctx context.Context, req *dto.NextStatusesRequest) (*models.Job, []models.JobStatus, error) {
	job, err := s.repo.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, nil, mapRepoError(err, "fetching job for next statuses")
	}
	next, err := s.validator.ValidNextStatuses(ctx, job.ID, job.Status, req.Actor.Role, req.Actor.EntityType)
	if err != nil {
		return nil, nil, mapRepoError(err, "listing next statuses")
	}
	return job, next, nil
}

func (s *jobWorkflowService) ApplyQuoteAction(ctx context.Context, req *dto.QuoteActionRequest) (*models.Quote, error) {
	action := models.QuoteAction(req.Action)
	quoteStatus, ok := action.ResultingStatus()
	if !ok {
		return nil, fmt.Errorf("%w: unknown quote action %q", ErrValidation, req.Action)
	}
	if !isClientActor(req.Actor) {
		return nil, fmt.Errorf("%w: only the client can act on a quote", ErrForbidden)
	}

	quote, err := s.repo.GetQuote(ctx, req.QuoteID)
	if err != nil {
		return nil, mapRepoError(err, "fetching quote")
	}
	if quote.Status != models.QuoteStatusProvided {
		return nil, fmt.Errorf("%w: quote %s is %s, not awaiting a decision", ErrConflict, quote.ID, quote.Status)
	}

	updated, err := s.store.UpdateQuoteStatus(ctx, quote.ID, quoteStatus)
	if err != nil {
		return nil, mapRepoError(err, "updating quote status")
	}

	if !s.notifier.OnQuoteAction(ctx, quote.ID, action, req.Notes) {
		s.logger.WarnContext(ctx, "ApplyQuoteAction: notification not dispatched", slog.String("quote_id", quote.ID.String()))
	}
	return updated, nil
}

func (s *jobWorkflowService) RunOverdueSweep(ctx context.Context) bool {
	return s.notifier.SweepOverdue(ctx)
}

func isClientActor(a dto.Actor) bool {
	return a.EntityType == models.EntityClient && clientActingRoles[a.Role]
}
