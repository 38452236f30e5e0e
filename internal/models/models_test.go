package models_test

import (
	"testing"

	"repairdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobStatus(t *testing.T) {
	for _, s := range models.AllJobStatuses {
		got, err := models.ParseJobStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := models.ParseJobStatus("in progress")
	assert.Error(t, err, "statuses are case sensitive")
	_, err = models.ParseJobStatus("")
	assert.Error(t, err)
}

func TestJobStatus_Scan(t *testing.T) {
	var s models.JobStatus
	require.NoError(t, s.Scan([]byte("Quote Provided")))
	assert.Equal(t, models.JobStatusQuoteProvided, s)

	require.NoError(t, s.Scan("Cannot repair"))
	assert.Equal(t, models.JobStatusCannotRepair, s)

	assert.Error(t, s.Scan("Lost"))
	assert.Error(t, s.Scan(42))

	v, err := models.JobStatusInProgress.Value()
	require.NoError(t, err)
	assert.Equal(t, "In Progress", v)
}

func TestQuoteStatus_Scan(t *testing.T) {
	var qs models.QuoteStatus
	require.NoError(t, qs.Scan("revision_requested"))
	assert.Equal(t, models.QuoteStatusRevisionRequested, qs)
	assert.Error(t, qs.Scan("pending"))
}

func TestQuoteAction_ResultingStatus(t *testing.T) {
	tests := []struct {
		action models.QuoteAction
		want   models.QuoteStatus
		ok     bool
	}{
		{models.QuoteActionAccepted, models.QuoteStatusAccepted, true},
		{models.QuoteActionRejected, models.QuoteStatusRejected, true},
		{models.QuoteActionRequestRevision, models.QuoteStatusRevisionRequested, true},
		{models.QuoteAction("haggle"), "", false},
	}
	for _, tt := range tests {
		got, ok := tt.action.ResultingStatus()
		assert.Equal(t, tt.ok, ok, tt.action)
		assert.Equal(t, tt.want, got, tt.action)
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	var terminal []models.JobStatus
	for _, s := range models.AllJobStatuses {
		if s.Terminal() {
			terminal = append(terminal, s)
		}
	}
	assert.Equal(t, []models.JobStatus{models.JobStatusConfirmed, models.JobStatusRejected}, terminal)
}

func TestUserRole(t *testing.T) {
	assert.True(t, models.RoleTechnician.Valid())
	assert.False(t, models.UserRole(0).Valid())
	assert.False(t, models.UserRole(6).Valid())
	assert.Equal(t, "client_admin", models.RoleClientAdmin.String())
	assert.Equal(t, "role(9)", models.UserRole(9).String())
}
