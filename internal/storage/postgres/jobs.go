package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// JobRepo implements storage.JobRepository and storage.JobStore using PostgreSQL.
type JobRepo struct {
	db Querier
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *pgxpool.Pool) *JobRepo {
	return &JobRepo{db: db}
}

// WithTx creates a new JobRepo bound to the transaction. UpdateStatus on it
// runs as a savepoint of tx.
func (r *JobRepo) WithTx(tx pgx.Tx) *JobRepo {
	return &JobRepo{db: tx}
}

// Compile-time check to ensure JobRepo implements the storage interfaces
var (
	_ storage.JobRepository = (*JobRepo)(nil)
	_ storage.JobStore      = (*JobRepo)(nil)
)

// jobViewSelect loads a job with its client, provider, reporter and technician.
var jobViewSelect = `
	SELECT ` + jobColumns + `,
		` + participantColumns("c", "cc") + `,
		` + participantColumns("ap", "apc") + `,
		` + userColumns("r") + `,
		` + userColumns("t") + `
	FROM jobs j
	JOIN participants c ON c.id = j.client_id
	LEFT JOIN users cc ON cc.id = c.contact_user_id
	LEFT JOIN participants ap ON ap.id = j.assigned_provider_id
	LEFT JOIN users apc ON apc.id = ap.contact_user_id
	LEFT JOIN users r ON r.id = j.reported_by_user_id
	LEFT JOIN users t ON t.id = j.assigned_technician_id
`

// GetJob retrieves a job by its ID.
func (r *JobRepo) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM jobs j
		LEFT JOIN participants ap ON ap.id = j.assigned_provider_id
		WHERE j.id = $1
	`
	var job models.Job
	if err := r.db.QueryRow(ctx, query, id).Scan(jobTargets(&job)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		slog.Error("JobRepo: error scanning job", slog.String("job_id", id.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	return &job, nil
}

// GetJobView retrieves a job together with its client, provider, reporter and technician.
func (r *JobRepo) GetJobView(ctx context.Context, id uuid.UUID) (*models.JobView, error) {
	row := r.db.QueryRow(ctx, jobViewSelect+" WHERE j.id = $1", id)
	view, err := scanJobView(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job view %s: %w", id, err)
	}
	return view, nil
}

// FindOverdueJobs lists open, unarchived jobs not updated for more than thresholdDays.
func (r *JobRepo) FindOverdueJobs(ctx context.Context, thresholdDays int) ([]models.JobView, error) {
	query := jobViewSelect + `
		WHERE j.status NOT IN ($1, $2)
		  AND j.updated_at < NOW() - make_interval(days => $3)
		  AND NOT j.archived_by_client
		ORDER BY j.updated_at ASC
	`
	rows, err := r.db.Query(ctx, query, models.JobStatusConfirmed, models.JobStatusRejected, thresholdDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue jobs: %w", err)
	}
	defer rows.Close()

	views := []models.JobView{}
	for rows.Next() {
		view, err := scanJobView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue job: %w", err)
		}
		views = append(views, *view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overdue jobs: %w", err)
	}
	return views, nil
}

// UpdateStatus moves a job from expected to next. It writes only if the row
// still holds expected and returns storage.ErrStaleStatus otherwise.
func (r *JobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, expected, next models.JobStatus) (*models.Job, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin status update of job %s: %w", jobID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // No-op after Commit

	job, err := r.WithTx(tx).updateStatus(ctx, jobID, expected, next)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status update of job %s: %w", jobID, err)
	}
	return job, nil
}

// updateStatus is the conditional write plus re-read; callers run it inside a transaction.
func (r *JobRepo) updateStatus(ctx context.Context, jobID uuid.UUID, expected, next models.JobStatus) (*models.Job, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE jobs
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, next, jobID, expected)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of job %s: %w", jobID, err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, jobID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check job %s: %w", jobID, err)
		}
		if !exists {
			return nil, storage.ErrNotFound
		}
		slog.Info("JobRepo: stale status write rejected",
			slog.String("job_id", jobID.String()),
			slog.String("expected", string(expected)),
			slog.String("next", string(next)),
		)
		return nil, fmt.Errorf("job %s no longer in status %q: %w", jobID, expected, storage.ErrStaleStatus)
	}

	return r.GetJob(ctx, jobID)
}

// IsProviderApprovedForClient reports whether an approved relationship links provider and client.
func (r *JobRepo) IsProviderApprovedForClient(ctx context.Context, providerID, clientID uuid.UUID) (bool, error) {
	var approved bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM participant_approvals
			WHERE provider_id = $1 AND client_id = $2 AND status = 'approved'
		)
	`, providerID, clientID).Scan(&approved)
	if err != nil {
		return false, fmt.Errorf("failed to check provider approval: %w", err)
	}
	return approved, nil
}

// GetApprovedProvidersFor lists every provider approved to work for the client.
func (r *JobRepo) GetApprovedProvidersFor(ctx context.Context, clientID uuid.UUID) ([]models.Participant, error) {
	query := `
		SELECT ` + participantColumns("p", "pc") + `
		FROM participant_approvals a
		JOIN participants p ON p.id = a.provider_id
		LEFT JOIN users pc ON pc.id = p.contact_user_id
		WHERE a.client_id = $1 AND a.status = 'approved'
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved providers: %w", err)
	}
	defer rows.Close()

	providers := []models.Participant{}
	for rows.Next() {
		var pr participantRow
		if err := rows.Scan(pr.targets()...); err != nil {
			return nil, fmt.Errorf("failed to scan provider: %w", err)
		}
		providers = append(providers, *pr.participant())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate approved providers: %w", err)
	}
	return providers, nil
}

func scanJobView(row pgx.Row) (*models.JobView, error) {
	var (
		view                 models.JobView
		client, provider     participantRow
		reporter, technician userRow
	)
	targets := jobTargets(&view.Job)
	targets = append(targets, client.targets()...)
	targets = append(targets, provider.targets()...)
	targets = append(targets, reporter.targets()...)
	targets = append(targets, technician.targets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}

	if c := client.participant(); c != nil {
		view.Client = *c
	}
	view.Provider = provider.participant()
	view.Reporter = reporter.user()
	view.Technician = technician.user()
	return &view, nil
}
