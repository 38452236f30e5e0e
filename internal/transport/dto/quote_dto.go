package dto

import (
	"time"

	"repairdesk/internal/models"

	"github.com/google/uuid"
)

// QuoteActionRequest records a client's decision on a provided quote.
type QuoteActionRequest struct {
	Action  string    `json:"action" validate:"required,oneof=accepted rejected request_revision"`
	Notes   string    `json:"notes,omitempty" validate:"max=4000"`
	QuoteID uuid.UUID `json:"-"` // From URL path
	Actor   Actor     `json:"-"`
}

// QuoteResponse defines the quote data returned to the client.
type QuoteResponse struct {
	ID         uuid.UUID `json:"id"`
	JobID      uuid.UUID `json:"job_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewQuoteResponse maps a models.Quote to a QuoteResponse.
func NewQuoteResponse(q *models.Quote) QuoteResponse {
	return QuoteResponse{
		ID:         q.ID,
		JobID:      q.JobID,
		ProviderID: q.ProviderID,
		Status:     string(q.Status),
		Amount:     q.Amount,
		UpdatedAt:  q.UpdatedAt,
	}
}
