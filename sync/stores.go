// ABOUTME: Store contracts the reconciliation engine runs against
// ABOUTME: DeviceStore is the native address book, RemoteStore the backend API, StateStore persisted client state
package sync

import (
	"context"
	"time"

	"synchro/models"
)

// DeviceStore is the capability surface of the native address book.
// db.AddressBook implements it; tests use in-memory fakes.
type DeviceStore interface {
	// RequestAccess queries/requests contact permission. An error is terminal
	// for the whole sync.
	RequestAccess(ctx context.Context) error

	// Contacts bulk-fetches with field selection. On some platforms the bulk
	// path silently omits fields the permission scope withholds.
	Contacts(ctx context.Context, fields []string) ([]models.DeviceContact, error)

	// Contact fetches one record by identifier with all fields; nil when the
	// record does not exist.
	Contact(ctx context.Context, id string) (*models.DeviceContact, error)

	// CreateContact inserts a record and returns the new identifier.
	CreateContact(ctx context.Context, dc *models.DeviceContact) (string, error)

	// UpdateContact overwrites a record's fields. Returns false without error
	// when the record is gone.
	UpdateContact(ctx context.Context, dc *models.DeviceContact) (bool, error)
}

// RemoteStore is the slice of the backend API the engine needs.
// api.Client implements it.
type RemoteStore interface {
	ListContacts(ctx context.Context) ([]models.AppContact, error)
	CreateContact(ctx context.Context, contact *models.AppContact) (*models.AppContact, error)
	UpdateContact(ctx context.Context, id string, update *models.ContactUpdate) (*models.AppContact, error)
}

// StateStore persists the last-sync timestamp. db.ClientState implements it.
type StateStore interface {
	SetLastSync(ctx context.Context, t time.Time) error
}
