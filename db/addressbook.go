// ABOUTME: Local address book store standing in for the native device contact API
// ABOUTME: Supports permission levels, bulk fetch with field selection, fetch-by-id, create, update
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"synchro/models"
)

// ErrAccessDenied is returned when the address book permission has been
// refused. A sync treats this as terminal: no partial work is attempted.
var ErrAccessDenied = errors.New("address book access denied")

// Access levels for the address book. Limited access mirrors platforms that
// grant contact lists but withhold some fields (birthdays) from bulk fetches.
const (
	AccessFull    = "full"
	AccessLimited = "limited"
	AccessDenied  = "denied"
)

// AddressBook is a SQLite-backed device contact store. On a phone this role
// is played by the native contacts API; everything else in the client talks
// to it through the same capability surface.
type AddressBook struct {
	db     *sql.DB
	access string
}

func NewAddressBook(database *sql.DB) *AddressBook {
	return &AddressBook{db: database, access: AccessFull}
}

// SetAccess overrides the permission level. Used to exercise the limited and
// denied paths that a real platform would impose.
func (ab *AddressBook) SetAccess(level string) {
	ab.access = level
}

// RequestAccess performs the permission query/request. Denied access is the
// only failure mode; full and limited both allow a sync to proceed.
func (ab *AddressBook) RequestAccess(ctx context.Context) error {
	if ab.access == AccessDenied {
		return ErrAccessDenied
	}
	return nil
}

// Contacts bulk-fetches device contacts, hydrating only the requested fields.
// Under limited access the bulk path omits birthdays regardless of the field
// selection; Contact (fetch-by-id) still surfaces them.
func (ab *AddressBook) Contacts(ctx context.Context, fields []string) ([]models.DeviceContact, error) {
	if err := ab.RequestAccess(ctx); err != nil {
		return nil, err
	}

	rows, err := ab.db.QueryContext(ctx, `
		SELECT identifier, given_name, family_name, phones, emails,
		       birth_year, birth_month, birth_day, job_title, company,
		       note, addresses, image_ref
		FROM device_contacts
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query device contacts: %w", err)
	}
	defer rows.Close()

	want := fieldSet(fields)
	var contacts []models.DeviceContact
	for rows.Next() {
		dc, err := scanDeviceContact(rows)
		if err != nil {
			return nil, err
		}
		ab.applyFieldSelection(dc, want, true)
		contacts = append(contacts, *dc)
	}

	return contacts, rows.Err()
}

// Contact fetches a single device contact by identifier with all fields.
// Returns nil without error when the record does not exist.
func (ab *AddressBook) Contact(ctx context.Context, id string) (*models.DeviceContact, error) {
	if err := ab.RequestAccess(ctx); err != nil {
		return nil, err
	}

	row := ab.db.QueryRowContext(ctx, `
		SELECT identifier, given_name, family_name, phones, emails,
		       birth_year, birth_month, birth_day, job_title, company,
		       note, addresses, image_ref
		FROM device_contacts
		WHERE identifier = ?
	`, id)

	dc, err := scanDeviceContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return dc, nil
}

// CreateContact inserts a new device contact and returns its identifier.
func (ab *AddressBook) CreateContact(ctx context.Context, dc *models.DeviceContact) (string, error) {
	if err := ab.RequestAccess(ctx); err != nil {
		return "", err
	}

	if dc.Identifier == "" {
		dc.Identifier = newDeviceContactID()
	}
	now := time.Now()

	phones, emails, addresses, err := encodeLists(dc)
	if err != nil {
		return "", err
	}

	var year, month, day sql.NullInt64
	if dc.Birthday != nil {
		if dc.Birthday.YearKnown {
			year = sql.NullInt64{Int64: int64(dc.Birthday.Year), Valid: true}
		}
		month = sql.NullInt64{Int64: int64(dc.Birthday.Month), Valid: true}
		day = sql.NullInt64{Int64: int64(dc.Birthday.Day), Valid: true}
	}

	_, err = ab.db.ExecContext(ctx, `
		INSERT INTO device_contacts (identifier, given_name, family_name, phones, emails,
			birth_year, birth_month, birth_day, job_title, company, note, addresses, image_ref,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, dc.Identifier, dc.GivenName, dc.FamilyName, phones, emails,
		year, month, day, dc.JobTitle, dc.Company, dc.Note, addresses, dc.ImageRef,
		now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create device contact: %w", err)
	}

	return dc.Identifier, nil
}

// UpdateContact overwrites an existing device contact's fields. Returns false
// without error when the record is gone (deleted on device); the caller
// treats that as a per-contact failure, not a fatal one.
func (ab *AddressBook) UpdateContact(ctx context.Context, dc *models.DeviceContact) (bool, error) {
	if err := ab.RequestAccess(ctx); err != nil {
		return false, err
	}

	phones, emails, addresses, err := encodeLists(dc)
	if err != nil {
		return false, err
	}

	var year, month, day sql.NullInt64
	if dc.Birthday != nil {
		if dc.Birthday.YearKnown {
			year = sql.NullInt64{Int64: int64(dc.Birthday.Year), Valid: true}
		}
		month = sql.NullInt64{Int64: int64(dc.Birthday.Month), Valid: true}
		day = sql.NullInt64{Int64: int64(dc.Birthday.Day), Valid: true}
	}

	result, err := ab.db.ExecContext(ctx, `
		UPDATE device_contacts
		SET given_name = ?, family_name = ?, phones = ?, emails = ?,
			birth_year = ?, birth_month = ?, birth_day = ?,
			job_title = ?, company = ?, note = ?, addresses = ?, image_ref = ?,
			updated_at = ?
		WHERE identifier = ?
	`, dc.GivenName, dc.FamilyName, phones, emails,
		year, month, day, dc.JobTitle, dc.Company, dc.Note, addresses, dc.ImageRef,
		time.Now(), dc.Identifier)
	if err != nil {
		return false, fmt.Errorf("failed to update device contact: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// DeleteContact removes a device contact. Not part of the sync surface; used
// by the CLI and tests to simulate deletions made on the device.
func (ab *AddressBook) DeleteContact(ctx context.Context, id string) error {
	_, err := ab.db.ExecContext(ctx, `DELETE FROM device_contacts WHERE identifier = ?`, id)
	return err
}

func (ab *AddressBook) applyFieldSelection(dc *models.DeviceContact, want map[string]bool, bulk bool) {
	if !want[models.FieldName] {
		dc.GivenName, dc.FamilyName = "", ""
	}
	if !want[models.FieldPhones] {
		dc.Phones = nil
	}
	if !want[models.FieldEmails] {
		dc.Emails = nil
	}
	if !want[models.FieldBirthday] || (bulk && ab.access == AccessLimited) {
		dc.Birthday = nil
	}
	if !want[models.FieldJob] {
		dc.JobTitle, dc.Company = "", ""
	}
	if !want[models.FieldNote] {
		dc.Note = ""
	}
	if !want[models.FieldAddresses] {
		dc.Addresses = nil
	}
	if !want[models.FieldImage] {
		dc.ImageRef = ""
	}
}

func fieldSet(fields []string) map[string]bool {
	want := make(map[string]bool, len(fields))
	for _, f := range fields {
		want[f] = true
	}
	return want
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeviceContact(row rowScanner) (*models.DeviceContact, error) {
	dc := &models.DeviceContact{}
	var phones, emails, addresses sql.NullString
	var year, month, day sql.NullInt64

	err := row.Scan(
		&dc.Identifier,
		&dc.GivenName,
		&dc.FamilyName,
		&phones,
		&emails,
		&year,
		&month,
		&day,
		&dc.JobTitle,
		&dc.Company,
		&dc.Note,
		&addresses,
		&dc.ImageRef,
	)
	if err != nil {
		return nil, err
	}

	if phones.Valid && phones.String != "" {
		if err := json.Unmarshal([]byte(phones.String), &dc.Phones); err != nil {
			return nil, fmt.Errorf("failed to decode phones for %s: %w", dc.Identifier, err)
		}
	}
	if emails.Valid && emails.String != "" {
		if err := json.Unmarshal([]byte(emails.String), &dc.Emails); err != nil {
			return nil, fmt.Errorf("failed to decode emails for %s: %w", dc.Identifier, err)
		}
	}
	if addresses.Valid && addresses.String != "" {
		if err := json.Unmarshal([]byte(addresses.String), &dc.Addresses); err != nil {
			return nil, fmt.Errorf("failed to decode addresses for %s: %w", dc.Identifier, err)
		}
	}

	if month.Valid && day.Valid {
		dc.Birthday = &models.Birthday{
			Month: int(month.Int64),
			Day:   int(day.Int64),
		}
		if year.Valid {
			dc.Birthday.Year = int(year.Int64)
			dc.Birthday.YearKnown = true
		}
	}

	return dc, nil
}

func encodeLists(dc *models.DeviceContact) (phones, emails, addresses string, err error) {
	p, err := json.Marshal(dc.Phones)
	if err != nil {
		return "", "", "", err
	}
	e, err := json.Marshal(dc.Emails)
	if err != nil {
		return "", "", "", err
	}
	a, err := json.Marshal(dc.Addresses)
	if err != nil {
		return "", "", "", err
	}
	return string(p), string(e), string(a), nil
}

// newDeviceContactID generates a ULID identifier for a device contact.
func newDeviceContactID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
