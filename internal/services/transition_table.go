package services

import (
	"repairdesk/internal/models"
)

// GuardName identifies a precondition in the guard registry.
type GuardName string

const (
	GuardProviderSelected   GuardName = "provider_selected"
	GuardReasonRequired     GuardName = "reason_required"
	GuardNotesRequired      GuardName = "notes_required"
	GuardTechnicianAssigned GuardName = "technician_assigned"
	GuardProviderCanQuote   GuardName = "provider_can_quote"
	GuardQuoteAccepted      GuardName = "quote_accepted"
	GuardRevisionRequested  GuardName = "revision_requested"
	GuardClientApproval     GuardName = "client_approval"
	GuardClientRejection    GuardName = "client_rejection"
	GuardProviderReview     GuardName = "provider_review"
	GuardWorkFinished       GuardName = "work_finished"
	GuardReworkFinished     GuardName = "rework_finished"
)

// Edge is one legal target of a status together with the guards that must
// all pass, in evaluation order.
type Edge struct {
	To     models.JobStatus
	Guards []GuardName
}

// Rules is an immutable transition table. The zero value permits nothing.
type Rules struct {
	edges map[models.JobStatus][]Edge
}

// NewRules builds a Rules value from table. The table is copied, so later
// changes to the argument do not leak into the rules.
func NewRules(table map[models.JobStatus][]Edge) Rules {
	edges := make(map[models.JobStatus][]Edge, len(table))
	for from, out := range table {
		edges[from] = copyEdges(out)
	}
	return Rules{edges: edges}
}

// Lookup returns the guards for from -> to and whether the edge exists.
func (r Rules) Lookup(from, to models.JobStatus) ([]GuardName, bool) {
	for _, e := range r.edges[from] {
		if e.To == to {
			return append([]GuardName(nil), e.Guards...), true
		}
	}
	return nil, false
}

// EdgesFrom returns the outgoing edges of from in declared order.
func (r Rules) EdgesFrom(from models.JobStatus) []Edge {
	return copyEdges(r.edges[from])
}

func copyEdges(in []Edge) []Edge {
	if len(in) == 0 {
		return nil
	}
	out := make([]Edge, len(in))
	for i, e := range in {
		out[i] = Edge{To: e.To, Guards: append([]GuardName(nil), e.Guards...)}
	}
	return out
}

func edge(to models.JobStatus, guards ...GuardName) Edge {
	return Edge{To: to, Guards: guards}
}

// DefaultRules is the production job lifecycle. Confirmed and Rejected are
// terminal and have no entry. Edges back to Reported are reassignment and
// carry no guards.
func DefaultRules() Rules {
	return NewRules(map[models.JobStatus][]Edge{
		models.JobStatusReported: {
			edge(models.JobStatusQuoteRequested, GuardProviderSelected),
			edge(models.JobStatusAssigned, GuardProviderSelected),
			edge(models.JobStatusRejected, GuardReasonRequired),
		},
		models.JobStatusQuoteRequested: {
			edge(models.JobStatusQuoteProvided, GuardProviderCanQuote),
			edge(models.JobStatusUnableToQuote, GuardReasonRequired),
		},
		models.JobStatusUnableToQuote: {
			edge(models.JobStatusReported),
			edge(models.JobStatusRejected, GuardReasonRequired),
		},
		models.JobStatusQuoteRejected: {
			edge(models.JobStatusQuoteRequested, GuardProviderSelected),
			edge(models.JobStatusReported),
			edge(models.JobStatusRejected, GuardReasonRequired),
		},
		models.JobStatusQuoteExpired: {
			edge(models.JobStatusQuoteRequested, GuardProviderSelected),
			edge(models.JobStatusReported),
			edge(models.JobStatusRejected, GuardReasonRequired),
		},
		models.JobStatusQuoteProvided: {
			edge(models.JobStatusAssigned, GuardQuoteAccepted),
			edge(models.JobStatusQuoteRequested, GuardRevisionRequested),
			edge(models.JobStatusRejected, GuardReasonRequired),
		},
		models.JobStatusAssigned: {
			edge(models.JobStatusInProgress, GuardTechnicianAssigned),
			edge(models.JobStatusDeclined, GuardReasonRequired),
		},
		models.JobStatusInProgress: {
			edge(models.JobStatusCompleted, GuardWorkFinished),
			edge(models.JobStatusCannotRepair, GuardReasonRequired),
		},
		models.JobStatusCompleted: {
			edge(models.JobStatusConfirmed, GuardClientApproval),
			edge(models.JobStatusIncomplete, GuardClientRejection, GuardReasonRequired),
		},
		models.JobStatusCannotRepair: {
			edge(models.JobStatusConfirmed, GuardClientApproval),
			edge(models.JobStatusIncomplete, GuardProviderReview),
			edge(models.JobStatusAssigned, GuardProviderSelected),
		},
		models.JobStatusIncomplete: {
			edge(models.JobStatusInProgress, GuardTechnicianAssigned),
			edge(models.JobStatusCompleted, GuardReworkFinished, GuardNotesRequired),
		},
		models.JobStatusDeclined: {
			edge(models.JobStatusRejected, GuardClientApproval),
			edge(models.JobStatusQuoteRequested, GuardProviderSelected),
			edge(models.JobStatusAssigned, GuardProviderSelected),
		},
	})
}
