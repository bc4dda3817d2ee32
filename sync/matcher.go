// ABOUTME: Contact identity resolution across the device and remote stores
// ABOUTME: Matches by stored device link first, then normalized phone, then lowercased email
package sync

import (
	"synchro/models"
)

// ContactMatcher indexes app contacts so each device contact can be resolved
// to the app record representing the same person. The stored
// device_contact_id link is authoritative; phone and email are fallbacks.
// No fuzzy name matching.
type ContactMatcher struct {
	selector   ContactMethodSelector
	byDeviceID map[string]*models.AppContact
	byPhone    map[string]*models.AppContact
	byEmail    map[string]*models.AppContact
}

// NewContactMatcher creates a matcher from existing app contacts.
func NewContactMatcher(contacts []models.AppContact, selector ContactMethodSelector) *ContactMatcher {
	m := &ContactMatcher{
		selector:   selector,
		byDeviceID: make(map[string]*models.AppContact),
		byPhone:    make(map[string]*models.AppContact),
		byEmail:    make(map[string]*models.AppContact),
	}

	for i := range contacts {
		m.Add(&contacts[i])
	}

	return m
}

// Add indexes an app contact. Also used for newly created contacts so they
// match within the same sync pass. Empty keys are excluded from every index:
// a phone that normalizes to "" must never collide two unrelated contacts.
func (m *ContactMatcher) Add(contact *models.AppContact) {
	if contact.DeviceContactID != "" {
		m.byDeviceID[contact.DeviceContactID] = contact
	}
	if phone := NormalizePhone(contact.Phone); phone != "" {
		m.byPhone[phone] = contact
	}
	if email := NormalizeEmail(contact.Email); email != "" {
		m.byEmail[email] = contact
	}
}

// Match resolves a device contact to its app record. Precedence: direct link
// lookup, then phone index, then email index. First match wins.
func (m *ContactMatcher) Match(dc *models.DeviceContact) *models.AppContact {
	if contact, ok := m.byDeviceID[dc.Identifier]; ok {
		return contact
	}
	if phone := NormalizePhone(m.selector.Phone(dc)); phone != "" {
		if contact, ok := m.byPhone[phone]; ok {
			return contact
		}
	}
	if email := NormalizeEmail(m.selector.Email(dc)); email != "" {
		if contact, ok := m.byEmail[email]; ok {
			return contact
		}
	}
	return nil
}
