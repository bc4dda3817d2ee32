// ABOUTME: Identity normalization and primary contact method selection
// ABOUTME: Normalizes phones/emails for matching and picks which number/address represents a contact
package sync

import (
	"strings"

	"synchro/models"
)

// NormalizePhone strips everything but digits and keeps the last 10, so
// "+1 (555) 123-4567" and "5551234567" match. Empty input stays empty.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	s := digits.String()
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}

// NormalizeEmail converts email to lowercase for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ContactMethodSelector decides which phone number and email address
// represent a device contact, both for identity matching and for the payload
// sent to the backend. Alternate strategies (labeled "mobile",
// most-recently-used) can be substituted without touching the engine.
type ContactMethodSelector interface {
	Phone(dc *models.DeviceContact) string
	Email(dc *models.DeviceContact) string
}

// FirstListed picks index 0 of each list, the address book's own ordering.
type FirstListed struct{}

func (FirstListed) Phone(dc *models.DeviceContact) string {
	if len(dc.Phones) == 0 {
		return ""
	}
	return dc.Phones[0]
}

func (FirstListed) Email(dc *models.DeviceContact) string {
	if len(dc.Emails) == 0 {
		return ""
	}
	return dc.Emails[0]
}
