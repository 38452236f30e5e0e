package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"repairdesk/internal/models"
)

const deadlineLayout = "2 January 2006"

func (d *Dispatcher) viewData(view *models.JobView) emailData {
	data := d.baseData(&view.Job, &view.Client, view.Provider)
	data.ReporterName = userName(view.Reporter, "Unknown")
	return data
}

func (d *Dispatcher) toReporter(view *models.JobView, subject, tmpl string, data emailData) message {
	data.Greeting = userName(view.Reporter, "there")
	return message{
		recipient: "reporting user",
		to:        userAddress(view.Reporter),
		subject:   subject,
		template:  tmpl,
		data:      data,
	}
}

func (d *Dispatcher) toProvider(view *models.JobView, subject, tmpl string, data emailData) message {
	data.Greeting = contactName(view.Provider)
	return message{
		recipient: "provider contact",
		to:        participantAddress(view.Provider),
		subject:   subject,
		template:  tmpl,
		data:      data,
	}
}

func (d *Dispatcher) notifyReported(ctx context.Context, view *models.JobView, _ StatusChange) []message {
	providers, err := d.repo.GetApprovedProvidersFor(ctx, view.Job.ClientID)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to load approved providers",
			slog.String("job_id", view.Job.ID.String()),
			slog.String("client_id", view.Job.ClientID.String()),
			slog.Any("error", err),
		)
		return nil
	}

	msgs := make([]message, 0, len(providers))
	for i := range providers {
		p := &providers[i]
		data := d.viewData(view)
		data.Greeting = contactName(p)
		data.ProviderName = participantName(p, "the service provider")
		msgs = append(msgs, message{
			recipient: "approved provider " + p.Name,
			to:        participantAddress(p),
			subject:   fmt.Sprintf("New repair job reported: %s", view.Job.ItemID),
			template:  tmplReported,
			data:      data,
		})
	}
	return msgs
}

func (d *Dispatcher) notifyAssigned(_ context.Context, view *models.JobView, _ StatusChange) []message {
	var msgs []message
	if view.Technician != nil {
		data := d.viewData(view)
		data.Greeting = userName(view.Technician, "there")
		msgs = append(msgs, message{
			recipient: "assigned technician",
			to:        userAddress(view.Technician),
			subject:   fmt.Sprintf("You have been assigned job %s", view.Job.ItemID),
			template:  tmplAssignedTechnician,
			data:      data,
		})
	}
	msgs = append(msgs, d.toProvider(view,
		fmt.Sprintf("Job assigned: %s", view.Job.ItemID), tmplAssignedProvider, d.viewData(view)))
	return msgs
}

func (d *Dispatcher) notifyInProgress(_ context.Context, view *models.JobView, _ StatusChange) []message {
	return []message{d.toReporter(view,
		fmt.Sprintf("Work has started on job %s", view.Job.ItemID), tmplInProgress, d.viewData(view))}
}

func (d *Dispatcher) notifyCompleted(_ context.Context, view *models.JobView, _ StatusChange) []message {
	return []message{d.toReporter(view,
		fmt.Sprintf("Job %s completed: please confirm", view.Job.ItemID), tmplCompleted, d.viewData(view))}
}

func (d *Dispatcher) notifyConfirmed(_ context.Context, view *models.JobView, _ StatusChange) []message {
	return []message{d.toProvider(view,
		fmt.Sprintf("Job %s confirmed and closed", view.Job.ItemID), tmplConfirmed, d.viewData(view))}
}

func (d *Dispatcher) notifyCannotRepair(_ context.Context, view *models.JobView, change StatusChange) []message {
	data := d.viewData(view)
	data.Notes = strings.TrimSpace(change.Notes)
	return []message{d.toReporter(view,
		fmt.Sprintf("Job %s could not be repaired", view.Job.ItemID), tmplCannotRepair, data)}
}

func (d *Dispatcher) notifyIncomplete(_ context.Context, view *models.JobView, change StatusChange) []message {
	data := d.viewData(view)
	data.Notes = strings.TrimSpace(change.Notes)
	return []message{d.toProvider(view,
		fmt.Sprintf("Job %s marked incomplete", view.Job.ItemID), tmplIncomplete, data)}
}

func (d *Dispatcher) notifyRejected(_ context.Context, view *models.JobView, change StatusChange) []message {
	data := d.viewData(view)
	data.Notes = strings.TrimSpace(change.Notes)
	return []message{d.toProvider(view,
		fmt.Sprintf("Job %s rejected", view.Job.ItemID), tmplRejected, data)}
}

func (d *Dispatcher) notifyQuoteRequested(_ context.Context, view *models.JobView, _ StatusChange) []message {
	data := d.viewData(view)
	data.Deadline = "ASAP"
	if view.Job.QuoteDeadline != nil {
		data.Deadline = view.Job.QuoteDeadline.Format(deadlineLayout)
	}
	return []message{d.toProvider(view,
		fmt.Sprintf("Quote requested for job %s", view.Job.ItemID), tmplQuoteRequested, data)}
}
