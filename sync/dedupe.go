// ABOUTME: Device contact deduplication before classification
// ABOUTME: Collapses duplicate records by identifier, else by lowercased full name
package sync

import (
	"strings"

	"synchro/models"
)

// DedupeDeviceContacts removes duplicate device records, keeping the first
// occurrence. Platforms can return the same logical contact more than once
// (linked contacts); without this the engine would import the person twice.
// Keyed by identifier when present, otherwise by lowercased full name.
func DedupeDeviceContacts(contacts []models.DeviceContact) []models.DeviceContact {
	seen := make(map[string]bool, len(contacts))
	out := make([]models.DeviceContact, 0, len(contacts))

	for _, dc := range contacts {
		key := dc.Identifier
		if key == "" {
			key = "name:" + strings.ToLower(dc.FullName())
		}
		if key == "name:" {
			// No identifier and no name: nothing to dedupe on, keep it and
			// let classification skip it.
			out = append(out, dc)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, dc)
	}

	return out
}
