package services

import (
	"context"
	"fmt"
	"log/slog"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
)

// RejectionKind classifies why a transition was refused.
type RejectionKind string

const (
	RejectionInvalidTransition RejectionKind = "InvalidTransition"
	RejectionGuardFailed       RejectionKind = "GuardFailed"
	RejectionConfiguration     RejectionKind = "ConfigurationError"
)

// ValidationRequest is one "may this job move from A to B" question.
type ValidationRequest struct {
	JobID          uuid.UUID
	CurrentStatus  models.JobStatus
	NewStatus      models.JobStatus
	UserRole       models.UserRole
	EntityType     models.EntityType
	AdditionalData AdditionalData
}

// ValidationResult is the verdict. Rejections are ordinary results, not errors.
type ValidationResult struct {
	Valid bool          `json:"valid"`
	Kind  RejectionKind `json:"kind,omitempty"`
	Guard GuardName     `json:"guard,omitempty"` // First failing guard, if any
	Error string        `json:"error,omitempty"`
}

func accepted() ValidationResult { return ValidationResult{Valid: true} }

// TransitionValidator decides whether a status change is legal. It holds no
// per-job state; every call reads the job fresh through the repository.
type TransitionValidator struct {
	repo   storage.JobRepository
	rules  Rules
	guards Guards
	logger *slog.Logger
}

// ValidatorOption configures a TransitionValidator.
type ValidatorOption func(*TransitionValidator)

// WithRules replaces the transition table.
func WithRules(r Rules) ValidatorOption {
	return func(v *TransitionValidator) { v.rules = r }
}

// WithGuards replaces the guard registry.
func WithGuards(g Guards) ValidatorOption {
	return func(v *TransitionValidator) { v.guards = g }
}

// WithValidatorLogger sets the logger.
func WithValidatorLogger(l *slog.Logger) ValidatorOption {
	return func(v *TransitionValidator) { v.logger = l }
}

// NewTransitionValidator creates a validator over the production rules unless
// overridden by options.
func NewTransitionValidator(repo storage.JobRepository, opts ...ValidatorOption) *TransitionValidator {
	v := &TransitionValidator{
		repo:   repo,
		rules:  DefaultRules(),
		guards: DefaultGuards(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	// Private copy so the caller's map cannot change behaviour afterwards.
	guards := make(Guards, len(v.guards))
	for name, fn := range v.guards {
		guards[name] = fn
	}
	v.guards = guards
	return v
}

// Validate checks the requested transition. Guards run in declared order and
// evaluation stops at the first failure. The returned error is non-nil only
// when a guard could not be evaluated.
func (v *TransitionValidator) Validate(ctx context.Context, req ValidationRequest) (ValidationResult, error) {
	guardNames, ok := v.rules.Lookup(req.CurrentStatus, req.NewStatus)
	if !ok {
		return ValidationResult{
			Kind:  RejectionInvalidTransition,
			Error: fmt.Sprintf("Status change from '%s' to '%s' is not allowed.", req.CurrentStatus, req.NewStatus),
		}, nil
	}

	gc := &GuardContext{
		JobID:      req.JobID,
		UserRole:   req.UserRole,
		EntityType: req.EntityType,
		Data:       req.AdditionalData,
		repo:       v.repo,
	}

	for _, name := range guardNames {
		guard, known := v.guards[name]
		if !known {
			v.logger.Error("transition references unknown guard",
				slog.String("guard", string(name)),
				slog.String("from", string(req.CurrentStatus)),
				slog.String("to", string(req.NewStatus)),
			)
			return ValidationResult{
				Kind:  RejectionConfiguration,
				Guard: name,
				Error: fmt.Sprintf("Unknown validation rule: %s", name),
			}, nil
		}

		res, err := guard(ctx, gc)
		if err != nil {
			return ValidationResult{}, fmt.Errorf("evaluating %s for job %s: %w", name, req.JobID, err)
		}
		if !res.Passed {
			v.logger.Debug("transition rejected",
				slog.String("job_id", req.JobID.String()),
				slog.String("guard", string(name)),
				slog.String("reason", res.Reason),
			)
			return ValidationResult{Kind: RejectionGuardFailed, Guard: name, Error: res.Reason}, nil
		}
	}

	return accepted(), nil
}

// ValidNextStatuses lists every target reachable from current that Validate
// would accept right now, in table order. No additional data is supplied, so
// edges that need notes are never listed.
func (v *TransitionValidator) ValidNextStatuses(ctx context.Context, jobID uuid.UUID, current models.JobStatus, role models.UserRole, entity models.EntityType) ([]models.JobStatus, error) {
	next := []models.JobStatus{}
	for _, e := range v.rules.EdgesFrom(current) {
		res, err := v.Validate(ctx, ValidationRequest{
			JobID:         jobID,
			CurrentStatus: current,
			NewStatus:     e.To,
			UserRole:      role,
			EntityType:    entity,
		})
		if err != nil {
			return nil, err
		}
		if res.Valid {
			next = append(next, e.To)
		}
	}
	return next, nil
}
