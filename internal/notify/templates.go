package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	tmplReported           = "reported"
	tmplAssignedTechnician = "assigned_technician"
	tmplAssignedProvider   = "assigned_provider"
	tmplInProgress         = "in_progress"
	tmplCompleted          = "completed"
	tmplConfirmed          = "confirmed"
	tmplCannotRepair       = "cannot_repair"
	tmplIncomplete         = "incomplete"
	tmplRejected           = "rejected"
	tmplQuoteRequested     = "quote_requested"
	tmplQuoteAction        = "quote_action"
	tmplOverdueClient      = "overdue_client"
	tmplOverdueProvider    = "overdue_provider"
)

// emailData is the single view model every template renders from.
type emailData struct {
	Greeting         string
	ItemID           string
	Description      string
	ReporterName     string
	ClientName       string
	ProviderName     string
	Notes            string
	ReviewWindowDays int
	Deadline         string
	Amount           string
	ActionLabel      string
	DaysOverdue      int
	Status           string
	JobURL           string
}

const emailTemplates = `
{{define "header"}}<html><body style="font-family: Arial, sans-serif;"><p>Hello {{.Greeting}},</p>{{end}}
{{define "footer"}}{{if .JobURL}}<p><a href="{{.JobURL}}">View job {{.ItemID}}</a></p>{{end}}<p>This is an automated message.</p></body></html>{{end}}

{{define "reported"}}{{template "header" .}}
<p>A new repair job has been reported by {{.ClientName}}.</p>
<ul><li>Item: {{.ItemID}}</li><li>Description: {{.Description}}</li><li>Reported by: {{.ReporterName}}</li></ul>
{{template "footer" .}}{{end}}

{{define "assigned_technician"}}{{template "header" .}}
<p>You have been assigned to job {{.ItemID}} for {{.ClientName}}.</p>
{{template "footer" .}}{{end}}

{{define "assigned_provider"}}{{template "header" .}}
<p>Job {{.ItemID}} from {{.ClientName}} has been assigned to {{.ProviderName}}.</p>
{{template "footer" .}}{{end}}

{{define "in_progress"}}{{template "header" .}}
<p>{{.ProviderName}} has started work on job {{.ItemID}}.</p>
{{template "footer" .}}{{end}}

{{define "completed"}}{{template "header" .}}
<p>{{.ProviderName}} has marked job {{.ItemID}} as completed.</p>
<p>Please confirm the work or reject it with feedback within {{.ReviewWindowDays}} days.</p>
{{template "footer" .}}{{end}}

{{define "confirmed"}}{{template "header" .}}
<p>{{.ClientName}} has confirmed job {{.ItemID}}. The job is now closed.</p>
{{template "footer" .}}{{end}}

{{define "cannot_repair"}}{{template "header" .}}
<p>{{.ProviderName}} was unable to repair job {{.ItemID}}.</p>
{{if .Notes}}<p>Reason: {{.Notes}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "incomplete"}}{{template "header" .}}
<p>{{.ClientName}} has marked job {{.ItemID}} as incomplete.</p>
{{if .Notes}}<p>Client feedback: {{.Notes}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "rejected"}}{{template "header" .}}
<p>{{.ClientName}} has rejected job {{.ItemID}}.</p>
{{if .Notes}}<p>Client feedback: {{.Notes}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "quote_requested"}}{{template "header" .}}
<p>{{.ClientName}} has requested a quote for job {{.ItemID}}.</p>
<p>Quote needed by: {{.Deadline}}</p>
{{template "footer" .}}{{end}}

{{define "quote_action"}}{{template "header" .}}
<p>{{.ClientName}} has {{.ActionLabel}} your quote of {{.Amount}} for job {{.ItemID}}.</p>
{{if .Notes}}<p>Client feedback: {{.Notes}}</p>{{end}}
{{template "footer" .}}{{end}}

{{define "overdue_client"}}{{template "header" .}}
<p>Your job {{.ItemID}} ({{.Status}}) has had no update for {{.DaysOverdue}} days.</p>
<p>If the work is finished, please review it; otherwise contact {{.ProviderName}}.</p>
{{template "footer" .}}{{end}}

{{define "overdue_provider"}}{{template "header" .}}
<p>Job {{.ItemID}} for {{.ClientName}} is {{.DaysOverdue}} days overdue in status {{.Status}}.</p>
<p>Please update the job or contact the client.</p>
{{template "footer" .}}{{end}}
`

var templates = template.Must(template.New("notifications").Parse(emailTemplates))

func render(name string, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}
