package dto

import (
	"repairdesk/internal/models"

	"github.com/google/uuid"
)

// Actor is the authenticated party making a request. Set by handlers from the auth context.
type Actor struct {
	UserID     uuid.UUID
	Role       models.UserRole
	EntityType models.EntityType
}
