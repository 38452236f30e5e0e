package services

import (
	"context"
	"fmt"
	"strings"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
)

// Guard failure reasons. Callers and tests match on these strings.
const (
	ReasonProviderNotSelected  = "Service provider must be selected."
	ReasonReasonMissing        = "A reason must be provided."
	ReasonNotesMissing         = "Notes are required."
	ReasonTechnicianMissing    = "A technician must be assigned."
	ReasonProviderNotApproved  = "Service provider is not approved for this client."
	ReasonNoAcceptedQuote      = "No accepted quote found."
	ReasonRevisionNotesMissing = "Revision notes are required."
	ReasonClientApprovalOnly   = "Only the client can approve this job."
	ReasonClientRejectionOnly  = "Only the client can reject this job."
	ReasonProviderReviewOnly   = "Only the service provider admin can review this job."
)

// AdditionalData is caller-supplied context for a single validation request.
type AdditionalData struct {
	Notes string `json:"notes"`
}

// GuardContext carries everything a guard may inspect. The job row is read at
// most once per validation and only if some guard asks for it.
type GuardContext struct {
	JobID      uuid.UUID
	UserRole   models.UserRole
	EntityType models.EntityType
	Data       AdditionalData

	repo storage.JobRepository
	job  *models.Job
}

// Job returns the job under validation, loading it on first use.
func (gc *GuardContext) Job(ctx context.Context) (*models.Job, error) {
	if gc.job != nil {
		return gc.job, nil
	}
	job, err := gc.repo.GetJob(ctx, gc.JobID)
	if err != nil {
		return nil, fmt.Errorf("loading job %s: %w", gc.JobID, err)
	}
	gc.job = job
	return job, nil
}

// Repository exposes the read side to guards that need more than the job row.
func (gc *GuardContext) Repository() storage.JobRepository { return gc.repo }

// GuardResult is the outcome of one guard.
type GuardResult struct {
	Passed bool
	Reason string
}

func pass() GuardResult { return GuardResult{Passed: true} }

func fail(reason string) GuardResult { return GuardResult{Reason: reason} }

func when(ok bool, reason string) GuardResult {
	if ok {
		return pass()
	}
	return fail(reason)
}

// GuardFunc decides one contextual condition. A non-nil error means the
// condition could not be evaluated (lookup failure), not that it failed.
type GuardFunc func(ctx context.Context, gc *GuardContext) (GuardResult, error)

// Guards maps guard names to their predicates.
type Guards map[GuardName]GuardFunc

// DefaultGuards returns a fresh registry with every production guard.
func DefaultGuards() Guards {
	return Guards{
		GuardProviderSelected:   providerSelected,
		GuardReasonRequired:     notePresent(ReasonReasonMissing),
		GuardNotesRequired:      notePresent(ReasonNotesMissing),
		GuardTechnicianAssigned: technicianAssigned,
		GuardProviderCanQuote:   providerCanQuote,
		GuardQuoteAccepted:      quoteAccepted,
		GuardRevisionRequested:  notePresent(ReasonRevisionNotesMissing),
		GuardClientApproval:     clientActor(ReasonClientApprovalOnly),
		GuardClientRejection:    clientActor(ReasonClientRejectionOnly),
		GuardProviderReview:     providerReview,
		GuardWorkFinished:       alwaysPass,
		GuardReworkFinished:     alwaysPass,
	}
}

// clientActingRoles may confirm or reject work for a client.
// ReportingEmployee counts as well (DESIGN.md, client roles).
var clientActingRoles = map[models.UserRole]bool{
	models.RoleReportingEmployee: true,
	models.RoleClientAdmin:       true,
}

func providerSelected(ctx context.Context, gc *GuardContext) (GuardResult, error) {
	job, err := gc.Job(ctx)
	if err != nil {
		return GuardResult{}, err
	}
	return when(job.AssignedProviderID != nil, ReasonProviderNotSelected), nil
}

func notePresent(reason string) GuardFunc {
	return func(_ context.Context, gc *GuardContext) (GuardResult, error) {
		return when(strings.TrimSpace(gc.Data.Notes) != "", reason), nil
	}
}

func technicianAssigned(ctx context.Context, gc *GuardContext) (GuardResult, error) {
	job, err := gc.Job(ctx)
	if err != nil {
		return GuardResult{}, err
	}
	// XS providers assign their own technicians.
	if job.AssignedProviderType == models.ProviderTypeXS {
		return pass(), nil
	}
	return when(job.AssignedTechnicianID != nil, ReasonTechnicianMissing), nil
}

func providerCanQuote(ctx context.Context, gc *GuardContext) (GuardResult, error) {
	job, err := gc.Job(ctx)
	if err != nil {
		return GuardResult{}, err
	}
	if job.AssignedProviderID == nil {
		return fail(ReasonProviderNotSelected), nil
	}
	approved, err := gc.repo.IsProviderApprovedForClient(ctx, *job.AssignedProviderID, job.ClientID)
	if err != nil {
		return GuardResult{}, fmt.Errorf("checking approval of provider %s: %w", *job.AssignedProviderID, err)
	}
	return when(approved, ReasonProviderNotApproved), nil
}

func quoteAccepted(ctx context.Context, gc *GuardContext) (GuardResult, error) {
	quote, err := gc.repo.GetLatestAcceptedQuote(ctx, gc.JobID)
	if err != nil {
		return GuardResult{}, fmt.Errorf("loading accepted quote for job %s: %w", gc.JobID, err)
	}
	return when(quote != nil, ReasonNoAcceptedQuote), nil
}

func clientActor(reason string) GuardFunc {
	return func(_ context.Context, gc *GuardContext) (GuardResult, error) {
		ok := gc.EntityType == models.EntityClient && clientActingRoles[gc.UserRole]
		return when(ok, reason), nil
	}
}

func providerReview(_ context.Context, gc *GuardContext) (GuardResult, error) {
	ok := gc.EntityType == models.EntityServiceProvider && gc.UserRole == models.RoleProviderAdmin
	return when(ok, ReasonProviderReviewOnly), nil
}

// alwaysPass backs work_finished and rework_finished, which have no business
// rule yet.
func alwaysPass(context.Context, *GuardContext) (GuardResult, error) {
	return pass(), nil
}
