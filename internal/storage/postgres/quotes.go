package postgres

import (
	"context"
	"errors"
	"fmt"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetQuote retrieves a quote by its ID.
func (r *JobRepo) GetQuote(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var q models.Quote
	err := r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes q WHERE q.id = $1`, id).Scan(quoteTargets(&q)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote %s: %w", id, err)
	}
	return &q, nil
}

// GetLatestAcceptedQuote returns the most recent accepted quote for a job, or nil if there is none.
func (r *JobRepo) GetLatestAcceptedQuote(ctx context.Context, jobID uuid.UUID) (*models.Quote, error) {
	var q models.Quote
	err := r.db.QueryRow(ctx, `
		SELECT `+quoteColumns+`
		FROM quotes q
		WHERE q.job_id = $1 AND q.status = $2
		ORDER BY q.created_at DESC, q.id DESC
		LIMIT 1
	`, jobID, models.QuoteStatusAccepted).Scan(quoteTargets(&q)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get accepted quote for job %s: %w", jobID, err)
	}
	return &q, nil
}

// GetQuoteView retrieves a quote with its job, the job's client and the quoting provider.
func (r *JobRepo) GetQuoteView(ctx context.Context, quoteID uuid.UUID) (*models.QuoteView, error) {
	query := `
		SELECT ` + quoteColumns + `, ` + jobColumns + `,
			` + participantColumns("c", "cc") + `,
			` + participantColumns("p", "pc") + `
		FROM quotes q
		JOIN jobs j ON j.id = q.job_id
		LEFT JOIN participants ap ON ap.id = j.assigned_provider_id
		JOIN participants c ON c.id = j.client_id
		LEFT JOIN users cc ON cc.id = c.contact_user_id
		JOIN participants p ON p.id = q.provider_id
		LEFT JOIN users pc ON pc.id = p.contact_user_id
		WHERE q.id = $1
	`
	var (
		view             models.QuoteView
		client, provider participantRow
	)
	targets := quoteTargets(&view.Quote)
	targets = append(targets, jobTargets(&view.Job)...)
	targets = append(targets, client.targets()...)
	targets = append(targets, provider.targets()...)

	if err := r.db.QueryRow(ctx, query, quoteID).Scan(targets...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote view %s: %w", quoteID, err)
	}
	if c := client.participant(); c != nil {
		view.Client = *c
	}
	if p := provider.participant(); p != nil {
		view.Provider = *p
	}
	return &view, nil
}

// UpdateQuoteStatus records a quote decision. Accepting a quote also makes it
// the job's current quote.
func (r *JobRepo) UpdateQuoteStatus(ctx context.Context, quoteID uuid.UUID, status models.QuoteStatus) (*models.Quote, error) {
	query := `
		WITH q AS (
			UPDATE quotes SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING *
		), current AS (
			UPDATE jobs SET current_quote_id = q.id
			FROM q
			WHERE jobs.id = q.job_id AND $1::text = 'accepted'
			RETURNING jobs.id
		)
		SELECT ` + quoteColumns + ` FROM q
	`
	var q models.Quote
	if err := r.db.QueryRow(ctx, query, status, quoteID).Scan(quoteTargets(&q)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update quote %s: %w", quoteID, err)
	}
	return &q, nil
}
