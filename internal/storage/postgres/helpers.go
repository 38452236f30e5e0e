package postgres

import (
	"context"
	"fmt"

	"repairdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// jobColumns expects jobs aliased as j and the assigned provider as ap.
const jobColumns = `
	j.id, j.item_id, j.description, j.status, j.client_id, j.assigned_provider_id,
	COALESCE(ap.type, ''), j.assigned_technician_id, j.current_quote_id,
	j.reported_by_user_id, j.quote_deadline, j.archived_by_client, j.created_at, j.updated_at`

const quoteColumns = `q.id, q.job_id, q.provider_id, q.status, q.amount::float8, q.created_at, q.updated_at`

// participantColumns selects a participant and its optional contact user.
func participantColumns(alias, contactAlias string) string {
	return fmt.Sprintf("%[1]s.id, %[1]s.name, %[1]s.kind, %[1]s.type, %[1]s.email, %[2]s.id, %[2]s.name, %[2]s.email",
		alias, contactAlias)
}

func userColumns(alias string) string {
	return fmt.Sprintf("%[1]s.id, %[1]s.name, %[1]s.email", alias)
}

func jobTargets(j *models.Job) []any {
	return []any{
		&j.ID, &j.ItemID, &j.Description, &j.Status, &j.ClientID, &j.AssignedProviderID,
		&j.AssignedProviderType, &j.AssignedTechnicianID, &j.CurrentQuoteID,
		&j.ReportedByUserID, &j.QuoteDeadline, &j.ArchivedByClient, &j.CreatedAt, &j.UpdatedAt,
	}
}

func quoteTargets(q *models.Quote) []any {
	return []any{&q.ID, &q.JobID, &q.ProviderID, &q.Status, &q.Amount, &q.CreatedAt, &q.UpdatedAt}
}

// userRow scans a LEFT JOINed user; every column may be NULL.
type userRow struct {
	id    *uuid.UUID
	name  *string
	email *string
}

func (r *userRow) targets() []any { return []any{&r.id, &r.name, &r.email} }

func (r *userRow) user() *models.User {
	if r.id == nil {
		return nil
	}
	return &models.User{ID: *r.id, Name: deref(r.name), Email: deref(r.email)}
}

// participantRow scans a participant plus contact user, both possibly NULL.
type participantRow struct {
	id      *uuid.UUID
	name    *string
	kind    *string
	ptype   *string
	email   *string
	contact userRow
}

func (r *participantRow) targets() []any {
	return append([]any{&r.id, &r.name, &r.kind, &r.ptype, &r.email}, r.contact.targets()...)
}

func (r *participantRow) participant() *models.Participant {
	if r.id == nil {
		return nil
	}
	return &models.Participant{
		ID:      *r.id,
		Name:    deref(r.name),
		Kind:    models.EntityType(deref(r.kind)),
		Type:    deref(r.ptype),
		Email:   deref(r.email),
		Contact: r.contact.user(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
