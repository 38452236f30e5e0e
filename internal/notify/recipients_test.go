package notify

import (
	"strings"
	"testing"

	"repairdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantAddress(t *testing.T) {
	tests := []struct {
		name string
		p    *models.Participant
		want string
	}{
		{name: "nil", p: nil, want: ""},
		{name: "organization only", p: &models.Participant{Email: "org@x.test"}, want: "org@x.test"},
		{name: "contact wins", p: &models.Participant{Email: "org@x.test", Contact: &models.User{Email: "me@x.test"}}, want: "me@x.test"},
		{name: "contact without email", p: &models.Participant{Email: "org@x.test", Contact: &models.User{Name: "Me"}}, want: "org@x.test"},
		{name: "contact with blank email", p: &models.Participant{Email: "org@x.test", Contact: &models.User{Name: "Me", Email: " \t"}}, want: "org@x.test"},
		{name: "nothing on file", p: &models.Participant{Contact: &models.User{Email: "  "}}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, participantAddress(tt.p))
		})
	}
}

func TestContactName(t *testing.T) {
	assert.Equal(t, "there", contactName(nil))
	assert.Equal(t, "FixIt", contactName(&models.Participant{Name: "FixIt"}))
	assert.Equal(t, "Pat", contactName(&models.Participant{Name: "FixIt", Contact: &models.User{Name: "Pat"}}))
}

func TestTemplatesRenderEveryMessage(t *testing.T) {
	names := []string{
		tmplReported, tmplAssignedTechnician, tmplAssignedProvider, tmplInProgress,
		tmplCompleted, tmplConfirmed, tmplCannotRepair, tmplIncomplete, tmplRejected,
		tmplQuoteRequested, tmplQuoteAction, tmplOverdueClient, tmplOverdueProvider,
	}
	data := emailData{Greeting: "Pat", ItemID: "CHAIR-42", ClientName: "Acme", ProviderName: "FixIt"}
	for _, name := range names {
		body, err := render(name, data)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(strings.TrimSpace(body), "<html>"), name)
		assert.Contains(t, body, "Hello Pat,", name)
		assert.NotContains(t, body, "View job", "no portal link without a URL")
	}

	_, err := render("missing", data)
	assert.Error(t, err)
}

func TestTemplatesEscapeUserInput(t *testing.T) {
	body, err := render(tmplIncomplete, emailData{Notes: "<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}
