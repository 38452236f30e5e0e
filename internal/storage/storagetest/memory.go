// Package storagetest provides an in-memory storage.JobRepository and
// storage.JobStore for tests.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"repairdesk/internal/models"
	"repairdesk/internal/storage"

	"github.com/google/uuid"
)

// Method names accepted by FailOn.
const (
	MethodGetJob                      = "GetJob"
	MethodGetQuote                    = "GetQuote"
	MethodGetLatestAcceptedQuote      = "GetLatestAcceptedQuote"
	MethodIsProviderApprovedForClient = "IsProviderApprovedForClient"
	MethodGetApprovedProvidersFor     = "GetApprovedProvidersFor"
	MethodFindOverdueJobs             = "FindOverdueJobs"
	MethodGetJobView                  = "GetJobView"
	MethodGetQuoteView                = "GetQuoteView"
	MethodUpdateStatus                = "UpdateStatus"
	MethodUpdateQuoteStatus           = "UpdateQuoteStatus"
)

// Repo keeps jobs, quotes, participants, users and approvals in maps.
// It is safe for concurrent use.
type Repo struct {
	mu sync.Mutex

	jobs         map[uuid.UUID]models.Job
	quotes       map[uuid.UUID]models.Quote
	participants map[uuid.UUID]models.Participant
	users        map[uuid.UUID]models.User
	approvals    map[[2]uuid.UUID]bool // provider, client

	failures map[string]error
	calls    map[string]int

	// Now is the clock FindOverdueJobs compares against.
	Now func() time.Time
}

var (
	_ storage.JobRepository = (*Repo)(nil)
	_ storage.JobStore      = (*Repo)(nil)
)

func NewRepo() *Repo {
	return &Repo{
		jobs:         make(map[uuid.UUID]models.Job),
		quotes:       make(map[uuid.UUID]models.Quote),
		participants: make(map[uuid.UUID]models.Participant),
		users:        make(map[uuid.UUID]models.User),
		approvals:    make(map[[2]uuid.UUID]bool),
		failures:     make(map[string]error),
		calls:        make(map[string]int),
		Now:          time.Now,
	}
}

// --- seeding ---

func (r *Repo) AddUser(u models.User) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return u
}

// AddParticipant stores p. A non-nil Contact is stored as a user as well.
func (r *Repo) AddParticipant(p models.Participant) models.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Contact != nil {
		if p.Contact.ID == uuid.Nil {
			p.Contact.ID = uuid.New()
		}
		r.users[p.Contact.ID] = *p.Contact
	}
	r.participants[p.ID] = p
	return p
}

// AddJob stores j. AssignedProviderType is filled in from the assigned
// provider, as the SQL join does.
func (r *Repo) AddJob(j models.Job) models.Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.AssignedProviderID != nil {
		j.AssignedProviderType = r.participants[*j.AssignedProviderID].Type
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = r.Now()
	}
	r.jobs[j.ID] = j
	return j
}

func (r *Repo) AddQuote(q models.Quote) models.Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = r.Now()
	}
	r.quotes[q.ID] = q
	return q
}

// Approve records an approved provider/client relationship.
func (r *Repo) Approve(providerID, clientID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.approvals[[2]uuid.UUID{providerID, clientID}] = true
}

// FailOn makes method return err until cleared with a nil err.
func (r *Repo) FailOn(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// Calls reports how often method was invoked.
func (r *Repo) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// Job returns the stored job, for assertions.
func (r *Repo) Job(id uuid.UUID) (models.Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Quote returns the stored quote, for assertions.
func (r *Repo) Quote(id uuid.UUID) (models.Quote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	return q, ok
}

// enter records a call and returns the injected failure, if any. Callers hold mu.
func (r *Repo) enter(method string) error {
	r.calls[method]++
	return r.failures[method]
}

// --- storage.JobRepository ---

func (r *Repo) GetJob(_ context.Context, id uuid.UUID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetJob); err != nil {
		return nil, err
	}
	j, ok := r.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &j, nil
}

func (r *Repo) GetQuote(_ context.Context, id uuid.UUID) (*models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetQuote); err != nil {
		return nil, err
	}
	q, ok := r.quotes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &q, nil
}

func (r *Repo) GetLatestAcceptedQuote(_ context.Context, jobID uuid.UUID) (*models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetLatestAcceptedQuote); err != nil {
		return nil, err
	}
	var latest *models.Quote
	for _, q := range r.quotes {
		if q.JobID != jobID || q.Status != models.QuoteStatusAccepted {
			continue
		}
		if latest == nil || q.CreatedAt.After(latest.CreatedAt) {
			q := q
			latest = &q
		}
	}
	return latest, nil
}

func (r *Repo) IsProviderApprovedForClient(_ context.Context, providerID, clientID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodIsProviderApprovedForClient); err != nil {
		return false, err
	}
	return r.approvals[[2]uuid.UUID{providerID, clientID}], nil
}

func (r *Repo) GetApprovedProvidersFor(_ context.Context, clientID uuid.UUID) ([]models.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetApprovedProvidersFor); err != nil {
		return nil, err
	}
	providers := []models.Participant{}
	for key, ok := range r.approvals {
		if ok && key[1] == clientID {
			providers = append(providers, r.participants[key[0]])
		}
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].Name < providers[j].Name })
	return providers, nil
}

func (r *Repo) FindOverdueJobs(_ context.Context, thresholdDays int) ([]models.JobView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodFindOverdueJobs); err != nil {
		return nil, err
	}
	cutoff := r.Now().Add(-time.Duration(thresholdDays) * 24 * time.Hour)
	views := []models.JobView{}
	for _, j := range r.jobs {
		if j.Status.Terminal() || j.ArchivedByClient || !j.UpdatedAt.Before(cutoff) {
			continue
		}
		views = append(views, r.view(j))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Job.UpdatedAt.Before(views[j].Job.UpdatedAt) })
	return views, nil
}

func (r *Repo) GetJobView(_ context.Context, id uuid.UUID) (*models.JobView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetJobView); err != nil {
		return nil, err
	}
	j, ok := r.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	v := r.view(j)
	return &v, nil
}

func (r *Repo) GetQuoteView(_ context.Context, quoteID uuid.UUID) (*models.QuoteView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodGetQuoteView); err != nil {
		return nil, err
	}
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	j, ok := r.jobs[q.JobID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &models.QuoteView{
		Quote:    q,
		Job:      j,
		Client:   r.participants[j.ClientID],
		Provider: r.participants[q.ProviderID],
	}, nil
}

func (r *Repo) view(j models.Job) models.JobView {
	v := models.JobView{Job: j, Client: r.participants[j.ClientID]}
	if j.AssignedProviderID != nil {
		if p, ok := r.participants[*j.AssignedProviderID]; ok {
			v.Provider = &p
		}
	}
	v.Reporter = r.user(j.ReportedByUserID)
	v.Technician = r.user(j.AssignedTechnicianID)
	return v
}

func (r *Repo) user(id *uuid.UUID) *models.User {
	if id == nil {
		return nil
	}
	u, ok := r.users[*id]
	if !ok {
		return nil
	}
	return &u
}

// --- storage.JobStore ---

func (r *Repo) UpdateStatus(_ context.Context, jobID uuid.UUID, expected, next models.JobStatus) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodUpdateStatus); err != nil {
		return nil, err
	}
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if j.Status != expected {
		return nil, storage.ErrStaleStatus
	}
	j.Status = next
	j.UpdatedAt = r.Now()
	r.jobs[jobID] = j
	return &j, nil
}

func (r *Repo) UpdateQuoteStatus(_ context.Context, quoteID uuid.UUID, status models.QuoteStatus) (*models.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(MethodUpdateQuoteStatus); err != nil {
		return nil, err
	}
	q, ok := r.quotes[quoteID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	q.Status = status
	q.UpdatedAt = r.Now()
	r.quotes[quoteID] = q
	if status == models.QuoteStatusAccepted {
		if j, ok := r.jobs[q.JobID]; ok {
			j.CurrentQuoteID = &q.ID
			r.jobs[q.JobID] = j
		}
	}
	return &q, nil
}
