package storage

import (
	"context"

	"repairdesk/internal/models"

	"github.com/google/uuid"
)

// JobRepository is the read side the lifecycle engine depends on.
// Implementations must return ErrNotFound for missing rows.
type JobRepository interface {
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	// GetLatestAcceptedQuote returns (nil, nil) when the job has no accepted quote.
	GetLatestAcceptedQuote(ctx context.Context, jobID uuid.UUID) (*models.Quote, error)
	IsProviderApprovedForClient(ctx context.Context, providerID, clientID uuid.UUID) (bool, error)
	GetApprovedProvidersFor(ctx context.Context, clientID uuid.UUID) ([]models.Participant, error)
	FindOverdueJobs(ctx context.Context, thresholdDays int) ([]models.JobView, error)

	GetJobView(ctx context.Context, id uuid.UUID) (*models.JobView, error)
	GetQuoteView(ctx context.Context, quoteID uuid.UUID) (*models.QuoteView, error)
}

// JobStore persists the outcome of a validated transition.
//
// UpdateStatus must only write when the stored status still equals expected;
// otherwise it returns ErrStaleStatus and leaves the row untouched. Two actors
// validating the same job concurrently are serialized by this condition.
type JobStore interface {
	UpdateStatus(ctx context.Context, jobID uuid.UUID, expected, next models.JobStatus) (*models.Job, error)
	UpdateQuoteStatus(ctx context.Context, quoteID uuid.UUID, status models.QuoteStatus) (*models.Quote, error)
}
