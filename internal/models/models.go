package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// --- Job Status Enum ---
type JobStatus string

const (
	JobStatusReported       JobStatus = "Reported"
	JobStatusQuoteRequested JobStatus = "Quote Requested"
	JobStatusQuoteProvided  JobStatus = "Quote Provided"
	JobStatusQuoteRejected  JobStatus = "Quote Rejected"
	JobStatusQuoteExpired   JobStatus = "Quote Expired"
	JobStatusUnableToQuote  JobStatus = "Unable to quote"
	JobStatusAssigned       JobStatus = "Assigned"
	JobStatusDeclined       JobStatus = "Declined"
	JobStatusInProgress     JobStatus = "In Progress"
	JobStatusCompleted      JobStatus = "Completed"
	JobStatusCannotRepair   JobStatus = "Cannot repair"
	JobStatusIncomplete     JobStatus = "Incomplete"
	JobStatusConfirmed      JobStatus = "Confirmed"
	JobStatusRejected       JobStatus = "Rejected"
)

// AllJobStatuses lists every status in lifecycle order.
var AllJobStatuses = []JobStatus{
	JobStatusReported,
	JobStatusQuoteRequested,
	JobStatusQuoteProvided,
	JobStatusQuoteRejected,
	JobStatusQuoteExpired,
	JobStatusUnableToQuote,
	JobStatusAssigned,
	JobStatusDeclined,
	JobStatusInProgress,
	JobStatusCompleted,
	JobStatusCannotRepair,
	JobStatusIncomplete,
	JobStatusConfirmed,
	JobStatusRejected,
}

// Valid reports whether s is one of the enumerated job statuses.
func (s JobStatus) Valid() bool {
	for _, known := range AllJobStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusConfirmed || s == JobStatusRejected
}

// ParseJobStatus converts a raw string to a JobStatus, returning an error for unknown values.
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown job status %q", raw)
	}
	return s, nil
}

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value interface{}) error {
	strVal, err := scanString(value, "JobStatus")
	if err != nil {
		return err
	}
	v, err := ParseJobStatus(strVal)
	if err != nil {
		return fmt.Errorf("invalid JobStatus value: %s", strVal)
	}
	*s = v
	return nil
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// --- Quote Status Enum ---
type QuoteStatus string

const (
	QuoteStatusRequested         QuoteStatus = "requested"
	QuoteStatusProvided          QuoteStatus = "provided"
	QuoteStatusAccepted          QuoteStatus = "accepted"
	QuoteStatusRejected          QuoteStatus = "rejected"
	QuoteStatusRevisionRequested QuoteStatus = "revision_requested"
)

// Scan implements the sql.Scanner interface for QuoteStatus
func (qs *QuoteStatus) Scan(value interface{}) error {
	strVal, err := scanString(value, "QuoteStatus")
	if err != nil {
		return err
	}
	v := QuoteStatus(strVal)
	switch v {
	case QuoteStatusRequested, QuoteStatusProvided, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusRevisionRequested:
		*qs = v
		return nil
	default:
		return fmt.Errorf("invalid QuoteStatus value: %s", strVal)
	}
}

// Value implements the driver.Valuer interface for QuoteStatus
func (qs QuoteStatus) Value() (driver.Value, error) {
	return string(qs), nil
}

// --- Quote Action Enum ---
type QuoteAction string

const (
	QuoteActionAccepted        QuoteAction = "accepted"
	QuoteActionRejected        QuoteAction = "rejected"
	QuoteActionRequestRevision QuoteAction = "request_revision"
)

// ResultingStatus is the quote status recorded when a client takes the action.
func (a QuoteAction) ResultingStatus() (QuoteStatus, bool) {
	switch a {
	case QuoteActionAccepted:
		return QuoteStatusAccepted, true
	case QuoteActionRejected:
		return QuoteStatusRejected, true
	case QuoteActionRequestRevision:
		return QuoteStatusRevisionRequested, true
	default:
		return "", false
	}
}

// --- Actor Context ---

// UserRole distinguishes what a user may do on behalf of their organization.
type UserRole int

const (
	RoleSiteAdmin         UserRole = 1
	RoleClientAdmin       UserRole = 2
	RoleReportingEmployee UserRole = 3
	RoleProviderAdmin     UserRole = 4
	RoleTechnician        UserRole = 5
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r >= RoleSiteAdmin && r <= RoleTechnician
}

func (r UserRole) String() string {
	switch r {
	case RoleSiteAdmin:
		return "site_admin"
	case RoleClientAdmin:
		return "client_admin"
	case RoleReportingEmployee:
		return "reporting_employee"
	case RoleProviderAdmin:
		return "provider_admin"
	case RoleTechnician:
		return "technician"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// EntityType identifies which side of the workflow the acting party belongs to.
type EntityType string

const (
	EntityClient          EntityType = "client"
	EntityServiceProvider EntityType = "service_provider"
)

// ProviderTypeXS marks providers that manage their technicians internally.
const ProviderTypeXS = "XS"

// User represents a person acting for a participant.
type User struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
}

// Participant is a client or service-provider organization.
type Participant struct {
	ID   uuid.UUID  `json:"id" db:"id"`
	Name string     `json:"name" db:"name"`
	Kind EntityType `json:"kind" db:"kind"`
	// Type is the participant type tag; ProviderTypeXS exempts providers from technician assignment.
	Type    string `json:"type" db:"type"`
	Email   string `json:"email" db:"email"` // Organizational address
	Contact *User  `json:"contact,omitempty"`
}

// Job is a unit of repair/service work tracked through the lifecycle.
type Job struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	ItemID               string     `json:"item_id" db:"item_id"`
	Description          string     `json:"description" db:"description"`
	Status               JobStatus  `json:"status" db:"status"`
	ClientID             uuid.UUID  `json:"client_id" db:"client_id"`
	AssignedProviderID   *uuid.UUID `json:"assigned_provider_id,omitempty" db:"assigned_provider_id"`
	AssignedProviderType string     `json:"assigned_provider_type,omitempty" db:"assigned_provider_type"` // Joined from participants
	AssignedTechnicianID *uuid.UUID `json:"assigned_technician_id,omitempty" db:"assigned_technician_id"`
	CurrentQuoteID       *uuid.UUID `json:"current_quote_id,omitempty" db:"current_quote_id"`
	ReportedByUserID     *uuid.UUID `json:"reported_by_user_id,omitempty" db:"reported_by_user_id"`
	QuoteDeadline        *time.Time `json:"quote_deadline,omitempty" db:"quote_deadline"`
	ArchivedByClient     bool       `json:"archived_by_client" db:"archived_by_client"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// Quote is a priced proposal from a provider for a job.
type Quote struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	JobID      uuid.UUID   `json:"job_id" db:"job_id"`
	ProviderID uuid.UUID   `json:"provider_id" db:"provider_id"`
	Status     QuoteStatus `json:"status" db:"status"`
	Amount     float64     `json:"amount" db:"amount"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

// JobView is a job joined with every party a notification may address.
type JobView struct {
	Job        Job
	Client     Participant
	Provider   *Participant // nil until a provider is assigned
	Reporter   *User
	Technician *User
}

// QuoteView is a quote joined with its job and both participants.
type QuoteView struct {
	Quote    Quote
	Job      Job
	Client   Participant
	Provider Participant
}

func scanString(value interface{}, typeName string) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to scan %s: value is not string or []byte", typeName)
	}
}
