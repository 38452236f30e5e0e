package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

const (
	defaultReviewWindowDays     = 3
	defaultOverdueThresholdDays = 7
)

// StatusChange describes a transition that has already been persisted.
type StatusChange struct {
	JobID           uuid.UUID
	OldStatus       models.JobStatus
	NewStatus       models.JobStatus
	ChangedByUserID uuid.UUID
	Notes           string
}

// message is one rendered-to-be email for one recipient.
type message struct {
	recipient string // Role of the addressee, for logs
	to        string
	subject   string
	template  string
	data      emailData
}

type statusHandler func(d *Dispatcher, ctx context.Context, view *models.JobView, change StatusChange) []message

// statusHandlers selects the handler for the new status. Statuses without an
// entry are not notified.
var statusHandlers = map[models.JobStatus]statusHandler{
	models.JobStatusReported:       (*Dispatcher).notifyReported,
	models.JobStatusAssigned:       (*Dispatcher).notifyAssigned,
	models.JobStatusInProgress:     (*Dispatcher).notifyInProgress,
	models.JobStatusCompleted:      (*Dispatcher).notifyCompleted,
	models.JobStatusConfirmed:      (*Dispatcher).notifyConfirmed,
	models.JobStatusCannotRepair:   (*Dispatcher).notifyCannotRepair,
	models.JobStatusIncomplete:     (*Dispatcher).notifyIncomplete,
	models.JobStatusRejected:       (*Dispatcher).notifyRejected,
	models.JobStatusQuoteRequested: (*Dispatcher).notifyQuoteRequested,
}

// Dispatcher resolves recipients for lifecycle events and sends them mail.
// It never authorizes or blocks a transition.
type Dispatcher struct {
	repo    storage.JobRepository
	gateway EmailGateway
	logger  *slog.Logger
	now     func() time.Time

	reviewWindowDays     int
	overdueThresholdDays int
	portalURL            string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option { return func(d *Dispatcher) { d.logger = l } }

// WithClock overrides the time source used by the overdue sweep.
func WithClock(now func() time.Time) Option { return func(d *Dispatcher) { d.now = now } }

func WithReviewWindowDays(days int) Option {
	return func(d *Dispatcher) { d.reviewWindowDays = days }
}

func WithOverdueThresholdDays(days int) Option {
	return func(d *Dispatcher) { d.overdueThresholdDays = days }
}

// WithPortalURL sets the base URL used to link jobs in messages.
func WithPortalURL(u string) Option {
	return func(d *Dispatcher) { d.portalURL = strings.TrimRight(u, "/") }
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(repo storage.JobRepository, gateway EmailGateway, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		repo:                 repo,
		gateway:              gateway,
		logger:               slog.Default(),
		now:                  time.Now,
		reviewWindowDays:     defaultReviewWindowDays,
		overdueThresholdDays: defaultOverdueThresholdDays,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnStatusChanged notifies the parties affected by a persisted status change.
// It returns false only when the job context could not be loaded; recipient
// level failures are logged and do not change the result.
func (d *Dispatcher) OnStatusChanged(ctx context.Context, change StatusChange) bool {
	handler, ok := statusHandlers[change.NewStatus]
	if !ok {
		d.logger.DebugContext(ctx, "no notification for status",
			slog.String("job_id", change.JobID.String()),
			slog.String("status", string(change.NewStatus)),
		)
		return true
	}

	view, err := d.repo.GetJobView(ctx, change.JobID)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to load job for notification",
			slog.String("job_id", change.JobID.String()),
			slog.String("status", string(change.NewStatus)),
			slog.Any("error", err),
		)
		return false
	}

	msgs := handler(d, ctx, view, change)
	d.deliver(ctx, "status:"+string(change.NewStatus), change.JobID, msgs)
	return true
}

// OnQuoteAction tells the quoting provider what the client did with the quote.
func (d *Dispatcher) OnQuoteAction(ctx context.Context, quoteID uuid.UUID, action models.QuoteAction, notes string) bool {
	label, ok := quoteActionLabels[action]
	if !ok {
		d.logger.WarnContext(ctx, "unsupported quote action",
			slog.String("quote_id", quoteID.String()),
			slog.String("action", string(action)),
		)
		return false
	}

	view, err := d.repo.GetQuoteView(ctx, quoteID)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to load quote for notification",
			slog.String("quote_id", quoteID.String()),
			slog.Any("error", err),
		)
		return false
	}

	data := d.baseData(&view.Job, &view.Client, &view.Provider)
	data.Greeting = contactName(&view.Provider)
	data.Amount = fmt.Sprintf("%.2f", view.Quote.Amount)
	data.ActionLabel = label.verb
	if action != models.QuoteActionAccepted {
		data.Notes = strings.TrimSpace(notes)
	}

	d.deliver(ctx, "quote:"+string(action), view.Job.ID, []message{{
		recipient: "provider contact",
		to:        participantAddress(&view.Provider),
		subject:   fmt.Sprintf("%s for job %s", label.subject, view.Job.ItemID),
		template:  tmplQuoteAction,
		data:      data,
	}})
	return true
}

var quoteActionLabels = map[models.QuoteAction]struct{ verb, subject string }{
	models.QuoteActionAccepted:        {verb: "accepted", subject: "Quote accepted"},
	models.QuoteActionRejected:        {verb: "rejected", subject: "Quote rejected"},
	models.QuoteActionRequestRevision: {verb: "requested a revision of", subject: "Quote revision requested"},
}

// deliver renders and sends msgs independently; every failure is logged and
// collected into one summary entry for the event.
func (d *Dispatcher) deliver(ctx context.Context, event string, jobID uuid.UUID, msgs []message) int {
	var errs *multierror.Error
	sent := 0
	for _, m := range msgs {
		if m.to == "" {
			d.logger.WarnContext(ctx, "skipping notification: no email on file",
				slog.String("event", event),
				slog.String("job_id", jobID.String()),
				slog.String("recipient", m.recipient),
			)
			errs = multierror.Append(errs, fmt.Errorf("%s: no email on file", m.recipient))
			continue
		}

		body, err := render(m.template, m.data)
		if err != nil {
			d.logger.ErrorContext(ctx, "skipping notification: render failed",
				slog.String("event", event),
				slog.String("job_id", jobID.String()),
				slog.Any("error", err),
			)
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", m.recipient, err))
			continue
		}

		if !d.gateway.SendNotification(ctx, m.to, m.subject, body) {
			d.logger.WarnContext(ctx, "notification not delivered",
				slog.String("event", event),
				slog.String("job_id", jobID.String()),
				slog.String("to", m.to),
			)
			errs = multierror.Append(errs, fmt.Errorf("%s <%s>: gateway refused message", m.recipient, m.to))
			continue
		}
		sent++
	}

	if errs.ErrorOrNil() != nil {
		d.logger.InfoContext(ctx, "notifications partially delivered",
			slog.String("event", event),
			slog.String("job_id", jobID.String()),
			slog.Int("sent", sent),
			slog.Int("failed", errs.Len()),
			slog.String("failures", errs.Error()),
		)
	}
	return sent
}

func (d *Dispatcher) baseData(job *models.Job, client, provider *models.Participant) emailData {
	data := emailData{
		ItemID:           job.ItemID,
		Description:      job.Description,
		ClientName:       participantName(client, "the client"),
		ProviderName:     participantName(provider, "the service provider"),
		ReviewWindowDays: d.reviewWindowDays,
		Status:           string(job.Status),
	}
	if d.portalURL != "" {
		data.JobURL = fmt.Sprintf("%s/jobs/%s", d.portalURL, job.ID)
	}
	return data
}
