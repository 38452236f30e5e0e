package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"repairdesk/internal/models"
)

// DaysOverdue is the number of whole days between updatedAt and now.
func DaysOverdue(now, updatedAt time.Time) int {
	if !now.After(updatedAt) {
		return 0
	}
	return int(now.Sub(updatedAt) / (24 * time.Hour))
}

// SweepOverdue reminds the reporting user and the assigned provider about
// every open, unarchived job that has not moved within the threshold. It
// returns false only when the overdue query fails.
func (d *Dispatcher) SweepOverdue(ctx context.Context) bool {
	jobs, err := d.repo.FindOverdueJobs(ctx, d.overdueThresholdDays)
	if err != nil {
		d.logger.ErrorContext(ctx, "overdue sweep query failed",
			slog.Int("threshold_days", d.overdueThresholdDays),
			slog.Any("error", err),
		)
		return false
	}

	now := d.now()
	reminded := 0
	for i := range jobs {
		view := &jobs[i]
		days := DaysOverdue(now, view.Job.UpdatedAt)
		reminded += d.deliver(ctx, "overdue", view.Job.ID, d.overdueMessages(view, days))
	}

	d.logger.InfoContext(ctx, "overdue sweep finished",
		slog.Int("jobs", len(jobs)),
		slog.Int("reminders_sent", reminded),
	)
	return true
}

func (d *Dispatcher) overdueMessages(view *models.JobView, days int) []message {
	data := d.viewData(view)
	data.DaysOverdue = days

	var msgs []message
	if view.Reporter != nil {
		msgs = append(msgs, d.toReporter(view,
			fmt.Sprintf("Reminder: job %s has had no update for %d days", view.Job.ItemID, days),
			tmplOverdueClient, data))
	}
	if view.Provider != nil {
		msgs = append(msgs, d.toProvider(view,
			fmt.Sprintf("Action needed: job %s is %d days overdue", view.Job.ItemID, days),
			tmplOverdueProvider, data))
	}
	return msgs
}
