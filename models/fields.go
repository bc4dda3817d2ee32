// ABOUTME: Device contact field keys for selective bulk fetches
// ABOUTME: Mirrors the key-based field selection of native address-book APIs
package models

// Device contact field keys. Bulk fetches take a set of these so callers only
// pay for the columns they consume, matching the native address-book API shape.
const (
	FieldName      = "name"
	FieldPhones    = "phones"
	FieldEmails    = "emails"
	FieldBirthday  = "birthday"
	FieldJob       = "job"
	FieldNote      = "note"
	FieldAddresses = "addresses"
	FieldImage     = "image"
)

// AllDeviceFields lists every fetchable device contact field.
func AllDeviceFields() []string {
	return []string{
		FieldName, FieldPhones, FieldEmails, FieldBirthday,
		FieldJob, FieldNote, FieldAddresses, FieldImage,
	}
}
