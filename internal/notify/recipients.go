package notify

import (
	"strings"

	"repairdesk/internal/models"
)

// participantAddress resolves where mail for an organization goes. The contact
// user's address wins; the organizational address is used only when there is
// no contact user with an address.
func participantAddress(p *models.Participant) string {
	if p == nil {
		return ""
	}
	if p.Contact != nil && strings.TrimSpace(p.Contact.Email) != "" {
		return strings.TrimSpace(p.Contact.Email)
	}
	return strings.TrimSpace(p.Email)
}

func userAddress(u *models.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.Email)
}

func userName(u *models.User, fallback string) string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return fallback
	}
	return u.Name
}

func participantName(p *models.Participant, fallback string) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return fallback
	}
	return p.Name
}

// contactName is the greeting name for a participant's recipient.
func contactName(p *models.Participant) string {
	if p != nil && p.Contact != nil && strings.TrimSpace(p.Contact.Name) != "" {
		return p.Contact.Name
	}
	return participantName(p, "there")
}
