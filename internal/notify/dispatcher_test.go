package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"repairdesk/internal/models"
	"repairdesk/internal/notify"
	"repairdesk/internal/storage/storagetest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGateway is a mock type for notify.EmailGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) SendNotification(ctx context.Context, toAddress, subject, htmlBody string) bool {
	return m.Called(ctx, toAddress, subject, htmlBody).Bool(0)
}

var _ notify.EmailGateway = (*MockGateway)(nil)

type sentMail struct {
	to, subject, body string
}

// sent lists every SendNotification call in order.
func (m *MockGateway) sent() []sentMail {
	var out []sentMail
	for _, c := range m.Calls {
		if c.Method != "SendNotification" {
			continue
		}
		out = append(out, sentMail{to: c.Arguments.String(1), subject: c.Arguments.String(2), body: c.Arguments.String(3)})
	}
	return out
}

func (m *MockGateway) acceptAll() *MockGateway {
	m.On("SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true)
	return m
}

var fixedNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	repo       *storagetest.Repo
	client     models.Participant
	provider   models.Participant
	reporter   models.User
	technician models.User
}

func newFixture() *fixture {
	repo := storagetest.NewRepo()
	repo.Now = func() time.Time { return fixedNow }
	f := &fixture{repo: repo}
	f.client = repo.AddParticipant(models.Participant{Name: "Acme Offices", Kind: models.EntityClient, Email: "office@acme.test"})
	f.provider = repo.AddParticipant(models.Participant{
		Name:    "FixIt Ltd",
		Kind:    models.EntityServiceProvider,
		Email:   "info@fixit.test",
		Contact: &models.User{Name: "Pat", Email: "pat@fixit.test"},
	})
	f.reporter = repo.AddUser(models.User{Name: "Rita", Email: "rita@acme.test"})
	f.technician = repo.AddUser(models.User{Name: "Tom", Email: "tom@fixit.test"})
	return f
}

func (f *fixture) job(status models.JobStatus, mutate ...func(*models.Job)) models.Job {
	j := models.Job{
		ItemID:               "CHAIR-42",
		Description:          "Broken armrest",
		Status:               status,
		ClientID:             f.client.ID,
		AssignedProviderID:   &f.provider.ID,
		AssignedTechnicianID: &f.technician.ID,
		ReportedByUserID:     &f.reporter.ID,
	}
	for _, m := range mutate {
		m(&j)
	}
	return f.repo.AddJob(j)
}

func (f *fixture) dispatcher(gw notify.EmailGateway, opts ...notify.Option) *notify.Dispatcher {
	opts = append([]notify.Option{notify.WithClock(f.repo.Now)}, opts...)
	return notify.NewDispatcher(f.repo, gw, opts...)
}

func change(job models.Job, to models.JobStatus, notes string) notify.StatusChange {
	return notify.StatusChange{JobID: job.ID, OldStatus: job.Status, NewStatus: to, ChangedByUserID: uuid.New(), Notes: notes}
}

func recipients(mails []sentMail) []string {
	out := make([]string, 0, len(mails))
	for _, m := range mails {
		out = append(out, m.to)
	}
	return out
}

func TestOnStatusChanged_Recipients(t *testing.T) {
	tests := []struct {
		status models.JobStatus
		want   []string
		prefix string
	}{
		{models.JobStatusAssigned, []string{"tom@fixit.test", "pat@fixit.test"}, "You have been assigned job CHAIR-42"},
		{models.JobStatusInProgress, []string{"rita@acme.test"}, "Work has started on job CHAIR-42"},
		{models.JobStatusCompleted, []string{"rita@acme.test"}, "Job CHAIR-42 completed: please confirm"},
		{models.JobStatusConfirmed, []string{"pat@fixit.test"}, "Job CHAIR-42 confirmed and closed"},
		{models.JobStatusCannotRepair, []string{"rita@acme.test"}, "Job CHAIR-42 could not be repaired"},
		{models.JobStatusIncomplete, []string{"pat@fixit.test"}, "Job CHAIR-42 marked incomplete"},
		{models.JobStatusRejected, []string{"pat@fixit.test"}, "Job CHAIR-42 rejected"},
		{models.JobStatusQuoteRequested, []string{"pat@fixit.test"}, "Quote requested for job CHAIR-42"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			f := newFixture()
			gw := new(MockGateway).acceptAll()
			job := f.job(models.JobStatusReported)

			ok := f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, tt.status, ""))

			require.True(t, ok)
			mails := gw.sent()
			assert.Equal(t, tt.want, recipients(mails))
			require.NotEmpty(t, mails)
			assert.Equal(t, tt.prefix, mails[0].subject)
		})
	}
}

func TestOnStatusChanged_ReportedGoesToEveryApprovedProvider(t *testing.T) {
	f := newFixture()
	other := f.repo.AddParticipant(models.Participant{Name: "Beta Repairs", Kind: models.EntityServiceProvider, Email: "hello@beta.test"})
	f.repo.AddParticipant(models.Participant{Name: "Gamma", Kind: models.EntityServiceProvider, Email: "g@gamma.test"})
	f.repo.Approve(f.provider.ID, f.client.ID)
	f.repo.Approve(other.ID, f.client.ID)
	gw := new(MockGateway).acceptAll()
	job := f.job(models.JobStatusReported, func(j *models.Job) { j.AssignedProviderID = nil })

	ok := f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, models.JobStatusReported, ""))

	require.True(t, ok)
	assert.ElementsMatch(t, []string{"pat@fixit.test", "hello@beta.test"}, recipients(gw.sent()))
	for _, m := range gw.sent() {
		assert.Equal(t, "New repair job reported: CHAIR-42", m.subject)
		assert.Contains(t, m.body, "Rita")
	}
}

func TestOnStatusChanged_ReporterWithoutEmailIsSkipped(t *testing.T) {
	f := newFixture()
	noEmail := f.repo.AddUser(models.User{Name: "Quiet"})
	gw := new(MockGateway).acceptAll()
	job := f.job(models.JobStatusAssigned, func(j *models.Job) { j.ReportedByUserID = &noEmail.ID })

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	ok := f.dispatcher(gw, notify.WithLogger(logger)).OnStatusChanged(context.Background(), change(job, models.JobStatusInProgress, ""))

	assert.True(t, ok)
	gw.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Contains(t, logs.String(), "no email on file")
}

func TestOnStatusChanged_UnassignedTechnicianOnlyNotifiesProvider(t *testing.T) {
	f := newFixture()
	gw := new(MockGateway).acceptAll()
	job := f.job(models.JobStatusReported, func(j *models.Job) { j.AssignedTechnicianID = nil })

	require.True(t, f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, models.JobStatusAssigned, "")))
	assert.Equal(t, []string{"pat@fixit.test"}, recipients(gw.sent()))
}

func TestOnStatusChanged_StatusWithoutHandlerIsNoOp(t *testing.T) {
	f := newFixture()
	gw := new(MockGateway)
	job := f.job(models.JobStatusQuoteRequested)

	ok := f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, models.JobStatusQuoteProvided, ""))

	assert.True(t, ok)
	assert.Zero(t, f.repo.Calls(storagetest.MethodGetJobView))
	gw.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnStatusChanged_LoadFailure(t *testing.T) {
	f := newFixture()
	gw := new(MockGateway)
	job := f.job(models.JobStatusInProgress)
	f.repo.FailOn(storagetest.MethodGetJobView, errors.New("db down"))

	assert.False(t, f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, models.JobStatusCompleted, "")))

	f.repo.FailOn(storagetest.MethodGetJobView, nil)
	assert.False(t, f.dispatcher(gw).OnStatusChanged(context.Background(), change(models.Job{ID: uuid.New()}, models.JobStatusCompleted, "")))
	gw.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOnStatusChanged_GatewayFailureIsolated(t *testing.T) {
	f := newFixture()
	gw := new(MockGateway)
	gw.On("SendNotification", mock.Anything, "tom@fixit.test", mock.Anything, mock.Anything).Return(false).Once()
	gw.On("SendNotification", mock.Anything, "pat@fixit.test", mock.Anything, mock.Anything).Return(true).Once()
	job := f.job(models.JobStatusReported)

	ok := f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, models.JobStatusAssigned, ""))

	assert.True(t, ok)
	gw.AssertExpectations(t)
}

func TestOnStatusChanged_NotesReachRecipient(t *testing.T) {
	f := newFixture()
	gw := new(MockGateway).acceptAll()
	job := f.job(models.JobStatusCompleted)

	f.dispatcher(gw).OnStatusChanged(context.Background(), change(job, models.JobStatusIncomplete, "  Armrest still wobbles  "))

	mails := gw.sent()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].body, "Client feedback: Armrest still wobbles")
}

func TestOnStatusChanged_CompletedMentionsReviewWindow(t *testing.T) {
	f := newFixture()
	gw := new(MockGateway).acceptAll()
	job := f.job(models.JobStatusInProgress)

	f.dispatcher(gw, notify.WithReviewWindowDays(5), notify.WithPortalURL("https://portal.test/")).
		OnStatusChanged(context.Background(), change(job, models.JobStatusCompleted, ""))

	mails := gw.sent()
	require.Len(t, mails, 1)
	assert.Contains(t, mails[0].body, "within 5 days")
	assert.Contains(t, mails[0].body, "https://portal.test/jobs/"+job.ID.String())
}

func TestOnStatusChanged_QuoteDeadline(t *testing.T) {
	f := newFixture()
	deadline := time.Date(2026, time.April, 2, 0, 0, 0, 0, time.UTC)
	job := f.job(models.JobStatusReported, func(j *models.Job) { j.QuoteDeadline = &deadline })
	asap := f.job(models.JobStatusReported)

	gw := new(MockGateway).acceptAll()
	d := f.dispatcher(gw)
	d.OnStatusChanged(context.Background(), change(job, models.JobStatusQuoteRequested, ""))
	d.OnStatusChanged(context.Background(), change(asap, models.JobStatusQuoteRequested, ""))

	mails := gw.sent()
	require.Len(t, mails, 2)
	assert.Contains(t, mails[0].body, "Quote needed by: 2 April 2026")
	assert.Contains(t, mails[1].body, "Quote needed by: ASAP")
}

func TestOnQuoteAction(t *testing.T) {
	tests := []struct {
		action     models.QuoteAction
		subject    string
		wantNotes  bool
		wantPhrase string
	}{
		{models.QuoteActionAccepted, "Quote accepted for job CHAIR-42", false, "has accepted your quote of 250.00"},
		{models.QuoteActionRejected, "Quote rejected for job CHAIR-42", true, "has rejected your quote"},
		{models.QuoteActionRequestRevision, "Quote revision requested for job CHAIR-42", true, "requested a revision of your quote"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			f := newFixture()
			job := f.job(models.JobStatusQuoteProvided)
			quote := f.repo.AddQuote(models.Quote{JobID: job.ID, ProviderID: f.provider.ID, Status: models.QuoteStatusProvided, Amount: 250})
			gw := new(MockGateway).acceptAll()

			ok := f.dispatcher(gw).OnQuoteAction(context.Background(), quote.ID, tt.action, "too expensive")

			require.True(t, ok)
			mails := gw.sent()
			require.Len(t, mails, 1)
			assert.Equal(t, "pat@fixit.test", mails[0].to)
			assert.Equal(t, tt.subject, mails[0].subject)
			assert.Contains(t, mails[0].body, tt.wantPhrase)
			if tt.wantNotes {
				assert.Contains(t, mails[0].body, "too expensive")
			} else {
				assert.NotContains(t, mails[0].body, "too expensive")
			}
		})
	}
}

func TestOnQuoteAction_Failures(t *testing.T) {
	f := newFixture()
	job := f.job(models.JobStatusQuoteProvided)
	quote := f.repo.AddQuote(models.Quote{JobID: job.ID, ProviderID: f.provider.ID, Status: models.QuoteStatusProvided})
	gw := new(MockGateway)
	d := f.dispatcher(gw)

	assert.False(t, d.OnQuoteAction(context.Background(), quote.ID, models.QuoteAction("haggle"), ""))
	assert.Zero(t, f.repo.Calls(storagetest.MethodGetQuoteView))

	assert.False(t, d.OnQuoteAction(context.Background(), uuid.New(), models.QuoteActionAccepted, ""))
	gw.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepOverdue_RemindsClientAndProvider(t *testing.T) {
	f := newFixture()
	job := f.job(models.JobStatusInProgress, func(j *models.Job) { j.UpdatedAt = fixedNow.Add(-8 * 24 * time.Hour) })
	gw := new(MockGateway).acceptAll()

	ok := f.dispatcher(gw).SweepOverdue(context.Background())

	require.True(t, ok)
	mails := gw.sent()
	require.Len(t, mails, 2)
	assert.Equal(t, []string{"rita@acme.test", "pat@fixit.test"}, recipients(mails))
	for _, m := range mails {
		assert.Contains(t, m.subject, "8 days")
		assert.Contains(t, m.body, "8 days")
		assert.Contains(t, m.subject, job.ItemID)
	}
}

func TestSweepOverdue_SkipsFreshTerminalAndArchivedJobs(t *testing.T) {
	f := newFixture()
	old := fixedNow.Add(-10 * 24 * time.Hour)
	f.job(models.JobStatusInProgress, func(j *models.Job) { j.UpdatedAt = fixedNow.Add(-6 * 24 * time.Hour) })
	f.job(models.JobStatusConfirmed, func(j *models.Job) { j.UpdatedAt = old })
	f.job(models.JobStatusRejected, func(j *models.Job) { j.UpdatedAt = old })
	f.job(models.JobStatusAssigned, func(j *models.Job) { j.UpdatedAt = old; j.ArchivedByClient = true })
	gw := new(MockGateway)

	assert.True(t, f.dispatcher(gw).SweepOverdue(context.Background()))
	gw.AssertNotCalled(t, "SendNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSweepOverdue_ThresholdOption(t *testing.T) {
	f := newFixture()
	f.job(models.JobStatusAssigned, func(j *models.Job) {
		j.UpdatedAt = fixedNow.Add(-3 * 24 * time.Hour)
		j.AssignedProviderID = nil
	})
	gw := new(MockGateway).acceptAll()

	assert.True(t, f.dispatcher(gw, notify.WithOverdueThresholdDays(2)).SweepOverdue(context.Background()))
	mails := gw.sent()
	require.Len(t, mails, 1, "no provider assigned, so only the reporter is reminded")
	assert.Equal(t, "Reminder: job CHAIR-42 has had no update for 3 days", mails[0].subject)
}

func TestSweepOverdue_QueryFailure(t *testing.T) {
	f := newFixture()
	f.repo.FailOn(storagetest.MethodFindOverdueJobs, errors.New("timeout"))

	assert.False(t, f.dispatcher(new(MockGateway)).SweepOverdue(context.Background()))
}

func TestDaysOverdue(t *testing.T) {
	assert.Equal(t, 8, notify.DaysOverdue(fixedNow, fixedNow.Add(-8*24*time.Hour)))
	assert.Equal(t, 7, notify.DaysOverdue(fixedNow, fixedNow.Add(-8*24*time.Hour+time.Minute)))
	assert.Equal(t, 0, notify.DaysOverdue(fixedNow, fixedNow.Add(time.Hour)))
}

func TestLogGateway(t *testing.T) {
	var logs bytes.Buffer
	gw := notify.NewLogGateway(slog.New(slog.NewJSONHandler(&logs, nil)))

	assert.True(t, gw.SendNotification(context.Background(), "a@b.test", "Hello", "<p>hi</p>"))
	assert.Contains(t, logs.String(), `"to":"a@b.test"`)
}
