package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"repairdesk/internal/database/migrations"
	"repairdesk/internal/models"
	"repairdesk/internal/storage"
	"repairdesk/internal/storage/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestPool connects to TEST_DATABASE_URL and migrates the schema.
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL environment variable not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.RunMigrationsUp(ctx, pool))
	cleanupTables(ctx, t, pool)
	return pool
}

func cleanupTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(ctx, `TRUNCATE quotes, jobs, participant_approvals, participants, users CASCADE`)
	require.NoError(t, err, "Failed to truncate tables")
}

type fixture struct {
	reporter   uuid.UUID
	technician uuid.UUID
	contact    uuid.UUID
	client     uuid.UUID
	provider   uuid.UUID
	job        uuid.UUID
}

func createUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name, email string, role models.UserRole) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO users (id, name, email, role) VALUES ($1, $2, $3, $4)`, id, name, email, int(role))
	require.NoError(t, err)
	return id
}

func createParticipant(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string, kind models.EntityType, ptype, email string, contact *uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO participants (id, name, kind, type, email, contact_user_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, string(kind), ptype, email, contact)
	require.NoError(t, err)
	return id
}

func seed(ctx context.Context, t *testing.T, pool *pgxpool.Pool, status models.JobStatus, updatedAt time.Time) fixture {
	t.Helper()
	var f fixture
	f.reporter = createUser(ctx, t, pool, "Rita Reporter", "rita@client.example", models.RoleReportingEmployee)
	f.technician = createUser(ctx, t, pool, "Tom Tech", "tom@provider.example", models.RoleTechnician)
	f.contact = createUser(ctx, t, pool, "Paula Contact", "paula@provider.example", models.RoleProviderAdmin)
	f.client = createParticipant(ctx, t, pool, "Acme Offices", models.EntityClient, "", "office@acme.example", nil)
	f.provider = createParticipant(ctx, t, pool, "FixIt Ltd", models.EntityServiceProvider, "Standard", "info@fixit.example", &f.contact)

	_, err := pool.Exec(ctx, `INSERT INTO participant_approvals (provider_id, client_id, status) VALUES ($1, $2, 'approved')`, f.provider, f.client)
	require.NoError(t, err)

	f.job = uuid.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO jobs (id, item_id, description, status, client_id, assigned_provider_id,
			assigned_technician_id, reported_by_user_id, updated_at)
		VALUES ($1, 'CHAIR-7', 'Broken leg', $2, $3, $4, $5, $6, $7)
	`, f.job, string(status), f.client, f.provider, f.technician, f.reporter, updatedAt)
	require.NoError(t, err)
	return f
}

func TestJobRepo_GetJobView(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepo(pool)
	f := seed(ctx, t, pool, models.JobStatusAssigned, time.Now())

	view, err := repo.GetJobView(ctx, f.job)
	require.NoError(t, err)

	assert.Equal(t, "CHAIR-7", view.Job.ItemID)
	assert.Equal(t, models.JobStatusAssigned, view.Job.Status)
	assert.Equal(t, "Standard", view.Job.AssignedProviderType)
	assert.Equal(t, "Acme Offices", view.Client.Name)
	assert.Nil(t, view.Client.Contact)
	require.NotNil(t, view.Provider)
	require.NotNil(t, view.Provider.Contact)
	assert.Equal(t, "paula@provider.example", view.Provider.Contact.Email)
	require.NotNil(t, view.Reporter)
	assert.Equal(t, "rita@client.example", view.Reporter.Email)
	require.NotNil(t, view.Technician)
	assert.Equal(t, f.technician, view.Technician.ID)

	_, err = repo.GetJobView(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobRepo_UpdateStatusCompareAndSwap(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepo(pool)
	f := seed(ctx, t, pool, models.JobStatusAssigned, time.Now())

	job, err := repo.UpdateStatus(ctx, f.job, models.JobStatusAssigned, models.JobStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, job.Status)

	// The second writer still believes the job is Assigned.
	_, err = repo.UpdateStatus(ctx, f.job, models.JobStatusAssigned, models.JobStatusDeclined)
	assert.ErrorIs(t, err, storage.ErrStaleStatus)

	stored, err := repo.GetJob(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, stored.Status)

	_, err = repo.UpdateStatus(ctx, uuid.New(), models.JobStatusAssigned, models.JobStatusInProgress)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobRepo_UpdateStatusInsideCallerTransaction(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepo(pool)
	f := seed(ctx, t, pool, models.JobStatusAssigned, time.Now())

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	job, err := repo.WithTx(tx).UpdateStatus(ctx, f.job, models.JobStatusAssigned, models.JobStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusInProgress, job.Status)

	require.NoError(t, tx.Rollback(ctx))

	stored, err := repo.GetJob(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusAssigned, stored.Status, "rolling back the outer transaction undoes the write")
}

func TestJobRepo_Approvals(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepo(pool)
	f := seed(ctx, t, pool, models.JobStatusReported, time.Now())

	ok, err := repo.IsProviderApprovedForClient(ctx, f.provider, f.client)
	require.NoError(t, err)
	assert.True(t, ok)

	pending := createParticipant(ctx, t, pool, "Slow Co", models.EntityServiceProvider, "", "slow@example.com", nil)
	_, err = pool.Exec(ctx, `INSERT INTO participant_approvals (provider_id, client_id, status) VALUES ($1, $2, 'pending')`, pending, f.client)
	require.NoError(t, err)

	ok, err = repo.IsProviderApprovedForClient(ctx, pending, f.client)
	require.NoError(t, err)
	assert.False(t, ok)

	providers, err := repo.GetApprovedProvidersFor(ctx, f.client)
	require.NoError(t, err)
	require.Len(t, providers, 1)
	assert.Equal(t, f.provider, providers[0].ID)
	require.NotNil(t, providers[0].Contact)
	assert.Equal(t, f.contact, providers[0].Contact.ID)
}

func TestJobRepo_Quotes(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepo(pool)
	f := seed(ctx, t, pool, models.JobStatusQuoteProvided, time.Now())

	none, err := repo.GetLatestAcceptedQuote(ctx, f.job)
	require.NoError(t, err)
	assert.Nil(t, none)

	older, newer := uuid.New(), uuid.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO quotes (id, job_id, provider_id, status, amount, created_at) VALUES
			($1, $3, $4, 'accepted', 100.00, NOW() - INTERVAL '2 days'),
			($2, $3, $4, 'provided', 150.50, NOW())
	`, older, newer, f.job, f.provider)
	require.NoError(t, err)

	accepted, err := repo.GetLatestAcceptedQuote(ctx, f.job)
	require.NoError(t, err)
	require.NotNil(t, accepted)
	assert.Equal(t, older, accepted.ID)

	q, err := repo.UpdateQuoteStatus(ctx, newer, models.QuoteStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.QuoteStatusAccepted, q.Status)
	assert.InDelta(t, 150.50, q.Amount, 0.001)

	job, err := repo.GetJob(ctx, f.job)
	require.NoError(t, err)
	require.NotNil(t, job.CurrentQuoteID)
	assert.Equal(t, newer, *job.CurrentQuoteID)

	accepted, err = repo.GetLatestAcceptedQuote(ctx, f.job)
	require.NoError(t, err)
	assert.Equal(t, newer, accepted.ID)

	view, err := repo.GetQuoteView(ctx, newer)
	require.NoError(t, err)
	assert.Equal(t, "FixIt Ltd", view.Provider.Name)
	assert.Equal(t, "Acme Offices", view.Client.Name)
	assert.Equal(t, f.job, view.Job.ID)

	_, err = repo.UpdateQuoteStatus(ctx, uuid.New(), models.QuoteStatusRejected)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestJobRepo_FindOverdueJobs(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	repo := postgres.NewJobRepo(pool)
	stale := seed(ctx, t, pool, models.JobStatusInProgress, time.Now().Add(-8*24*time.Hour))

	fresh := uuid.New()
	closed := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO jobs (id, item_id, status, client_id, updated_at) VALUES
			($1, 'DESK-1', 'Assigned', $3, NOW()),
			($2, 'DESK-2', 'Confirmed', $3, NOW() - INTERVAL '30 days')
	`, fresh, closed, stale.client)
	require.NoError(t, err)

	views, err := repo.FindOverdueJobs(ctx, 7)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, stale.job, views[0].Job.ID)
	require.NotNil(t, views[0].Reporter)
	require.NotNil(t, views[0].Provider)

	_, err = pool.Exec(ctx, `UPDATE jobs SET archived_by_client = TRUE WHERE id = $1`, stale.job)
	require.NoError(t, err)
	views, err = repo.FindOverdueJobs(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, views)
}
