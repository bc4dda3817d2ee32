// ABOUTME: Data models for contacts on both sides of the sync boundary
// ABOUTME: Defines AppContact (server-owned), DeviceContact (address-book-owned), and pipeline stages
package models

import (
	"math/rand"
	"strings"
	"time"
)

// AppContact is the contact record owned by the remote backend. The
// DeviceContactID field holds the link back to the address-book record; empty
// means the contact has never been matched to a device record.
type AppContact struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name"`
	Phone           string   `json:"phone,omitempty"`
	Email           string   `json:"email,omitempty"`
	Birthday        string   `json:"birthday,omitempty"` // ISO YYYY-MM-DD
	Job             string   `json:"job,omitempty"`
	Location        string   `json:"location,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Groups          []string `json:"groups,omitempty"`
	PipelineStage   string   `json:"pipeline_stage,omitempty"`
	LastContactDate string   `json:"last_contact_date,omitempty"`
	NextDue         string   `json:"next_due,omitempty"`
	TargetInterval  int      `json:"target_interval_days,omitempty"`
	Language        string   `json:"language,omitempty"`
	Tone            string   `json:"tone,omitempty"`
	DeviceContactID string   `json:"device_contact_id,omitempty"`
	CreatedAt       string   `json:"created_at,omitempty"`
	UpdatedAt       string   `json:"updated_at,omitempty"`
}

// Linked reports whether this contact carries a device back-reference.
func (c *AppContact) Linked() bool {
	return c.DeviceContactID != ""
}

// ContactUpdate is a partial update payload for PUT /api/contacts/{id}.
// Only non-nil fields are sent, so a link update touches nothing else.
type ContactUpdate struct {
	Name            *string `json:"name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
	Email           *string `json:"email,omitempty"`
	Birthday        *string `json:"birthday,omitempty"`
	Job             *string `json:"job,omitempty"`
	Location        *string `json:"location,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	PipelineStage   *string `json:"pipeline_stage,omitempty"`
	LastContactDate *string `json:"last_contact_date,omitempty"`
	DeviceContactID *string `json:"device_contact_id,omitempty"`
}

// LinkUpdate builds the partial payload that sets only device_contact_id.
func LinkUpdate(deviceContactID string) *ContactUpdate {
	return &ContactUpdate{DeviceContactID: &deviceContactID}
}

// DeviceContact is a contact record owned by the native address book.
type DeviceContact struct {
	Identifier string
	GivenName  string
	FamilyName string
	Phones     []string
	Emails     []string
	Birthday   *Birthday
	JobTitle   string
	Company    string
	Note       string
	Addresses  []string
	ImageRef   string
}

// FullName joins the name parts, trimming a missing half.
func (d *DeviceContact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(d.GivenName) + " " + strings.TrimSpace(d.FamilyName))
}

// Pipeline stage constants. StageNew is assigned to contacts freshly imported
// from the device; the cadence stages come from the backend's follow-up model.
const (
	StageNew       = "New"
	StageWeekly    = "Weekly"
	StageBiWeekly  = "Bi-Weekly"
	StageMonthly   = "Monthly"
	StageQuarterly = "Quarterly"
	StageAnnually  = "Annually"
)

// TargetInterval converts a pipeline stage to a follow-up interval in days.
// Unknown stages fall back to monthly cadence.
func TargetInterval(stage string) int {
	switch stage {
	case StageWeekly:
		return 7
	case StageBiWeekly:
		return 14
	case StageMonthly:
		return 30
	case StageQuarterly:
		return 90
	case StageAnnually:
		return 365
	default:
		return 30
	}
}

// NextDue computes the next follow-up date: last contact plus the target
// interval plus a jitter of -5..+5 days so reminders don't clump.
func NextDue(lastContact time.Time, intervalDays int) time.Time {
	jitter := rand.Intn(11) - 5
	return lastContact.AddDate(0, 0, intervalDays+jitter)
}

// Group is a named contact grouping ("University", "Work", "Tennis Club").
// Contacts reference groups by name in AppContact.Groups.
type Group struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"` // base64 image
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// GroupUpdate is a partial update payload for PUT /api/groups/{id}.
type GroupUpdate struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
}

// Draft is an AI-generated reconnection message pending user review.
type Draft struct {
	ID           string `json:"id,omitempty"`
	ContactID    string `json:"contact_id"`
	ContactName  string `json:"contact_name"`
	DraftMessage string `json:"draft_message"`
	Status       string `json:"status"` // pending, sent, dismissed
	CreatedAt    string `json:"created_at,omitempty"`
}

// Draft status constants.
const (
	DraftPending   = "pending"
	DraftSent      = "sent"
	DraftDismissed = "dismissed"
)

// Settings holds per-user client settings stored on the backend.
type Settings struct {
	WritingStyleSample string `json:"writing_style_sample"`
	NotificationTime   string `json:"notification_time"`
}
