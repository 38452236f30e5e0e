// internal/transport/dto/job_dto.go
package dto

import (
	"time"

	"repairdesk/internal/models"

	"github.com/google/uuid"
)

// --- Job Request DTOs ---

// ChangeJobStatusRequest asks to move a job to a new status.
type ChangeJobStatusRequest struct {
	Status string    `json:"status" validate:"required,max=32"`
	Notes  string    `json:"notes,omitempty" validate:"max=4000"`
	JobID  uuid.UUID `json:"-"` // From URL path
	Actor  Actor     `json:"-"` // Set internally by handler from auth context
}

// NextStatusesRequest asks which statuses the actor could move a job to right now.
type NextStatusesRequest struct {
	JobID uuid.UUID `json:"-"`
	Actor Actor     `json:"-"`
}

// --- Job Response DTOs ---

// JobResponse defines the standard job data returned to the client.
type JobResponse struct {
	ID                   uuid.UUID  `json:"id"`
	ItemID               string     `json:"item_id"`
	Description          string     `json:"description"`
	Status               string     `json:"status"`
	ClientID             uuid.UUID  `json:"client_id"`
	AssignedProviderID   *uuid.UUID `json:"assigned_provider_id,omitempty"`
	AssignedTechnicianID *uuid.UUID `json:"assigned_technician_id,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NextStatusesResponse lists permitted target statuses.
type NextStatusesResponse struct {
	JobID         uuid.UUID `json:"job_id"`
	CurrentStatus string    `json:"current_status"`
	NextStatuses  []string  `json:"next_statuses"`
}

// NewJobResponse maps a models.Job to a JobResponse.
func NewJobResponse(job *models.Job) JobResponse {
	return JobResponse{
		ID:                   job.ID,
		ItemID:               job.ItemID,
		Description:          job.Description,
		Status:               string(job.Status),
		ClientID:             job.ClientID,
		AssignedProviderID:   job.AssignedProviderID,
		AssignedTechnicianID: job.AssignedTechnicianID,
		CreatedAt:            job.CreatedAt,
		UpdatedAt:            job.UpdatedAt,
	}
}
