// ABOUTME: Engine tests over in-memory device, remote, and state fakes
// ABOUTME: Covers fresh import, idempotence, link repair, enrichment, failure isolation, quick sync
package sync

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"
	"testing"
	"time"

	"synchro/models"
)

type fakeDevice struct {
	mu             gosync.Mutex
	accessErr      error
	contacts       map[string]*models.DeviceContact
	bulkOmitsBday  bool
	perFetchCalls  int
	nextID         int
}

func newFakeDevice(contacts ...models.DeviceContact) *fakeDevice {
	d := &fakeDevice{contacts: make(map[string]*models.DeviceContact)}
	for i := range contacts {
		dc := contacts[i]
		d.contacts[dc.Identifier] = &dc
	}
	return d
}

func (d *fakeDevice) RequestAccess(ctx context.Context) error {
	return d.accessErr
}

func (d *fakeDevice) Contacts(ctx context.Context, fields []string) ([]models.DeviceContact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]models.DeviceContact, 0, len(d.contacts))
	for _, dc := range d.contacts {
		c := *dc
		if d.bulkOmitsBday {
			c.Birthday = nil
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *fakeDevice) Contact(ctx context.Context, id string) (*models.DeviceContact, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.perFetchCalls++
	dc, ok := d.contacts[id]
	if !ok {
		return nil, nil
	}
	c := *dc
	return &c, nil
}

func (d *fakeDevice) CreateContact(ctx context.Context, dc *models.DeviceContact) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := fmt.Sprintf("dev-new-%d", d.nextID)
	c := *dc
	c.Identifier = id
	d.contacts[id] = &c
	return id, nil
}

func (d *fakeDevice) UpdateContact(ctx context.Context, dc *models.DeviceContact) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.contacts[dc.Identifier]; !ok {
		return false, nil
	}
	c := *dc
	d.contacts[dc.Identifier] = &c
	return true, nil
}

type fakeRemote struct {
	mu            gosync.Mutex
	contacts      map[string]*models.AppContact
	failCreateFor string
	nextID        int
	linkUpdates   int
}

func newFakeRemote(contacts ...models.AppContact) *fakeRemote {
	r := &fakeRemote{contacts: make(map[string]*models.AppContact)}
	for i := range contacts {
		ac := contacts[i]
		r.contacts[ac.ID] = &ac
	}
	return r
}

func (r *fakeRemote) ListContacts(ctx context.Context) ([]models.AppContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AppContact, 0, len(r.contacts))
	for _, ac := range r.contacts {
		out = append(out, *ac)
	}
	return out, nil
}

func (r *fakeRemote) CreateContact(ctx context.Context, contact *models.AppContact) (*models.AppContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreateFor != "" && contact.Name == r.failCreateFor {
		return nil, errors.New("backend rejected contact")
	}
	r.nextID++
	c := *contact
	c.ID = fmt.Sprintf("app-%d", r.nextID)
	r.contacts[c.ID] = &c
	out := c
	return &out, nil
}

func (r *fakeRemote) UpdateContact(ctx context.Context, id string, update *models.ContactUpdate) (*models.AppContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ac, ok := r.contacts[id]
	if !ok {
		return nil, fmt.Errorf("contact %s not found", id)
	}
	if update.Name != nil {
		ac.Name = *update.Name
	}
	if update.DeviceContactID != nil {
		ac.DeviceContactID = *update.DeviceContactID
		r.linkUpdates++
	}
	out := *ac
	return &out, nil
}

func (r *fakeRemote) linkUpdateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.linkUpdates
}

func (r *fakeRemote) get(id string) models.AppContact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.contacts[id]
}

type fakeState struct {
	mu    gosync.Mutex
	times []time.Time
}

func (s *fakeState) SetLastSync(ctx context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = append(s.times, t)
	return nil
}

func (s *fakeState) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.times)
}

func deviceContact(id, given, family, phone string) models.DeviceContact {
	return models.DeviceContact{
		Identifier: id,
		GivenName:  given,
		FamilyName: family,
		Phones:     []string{phone},
		Birthday:   &models.Birthday{Year: 1990, Month: 0, Day: 15, YearKnown: true},
	}
}

func newTestEngine(device *fakeDevice, remote *fakeRemote, state *fakeState) *Engine {
	return NewEngine(device, remote, state, Options{Workers: 1})
}

func TestFullSyncImportsNewContacts(t *testing.T) {
	device := newFakeDevice(
		deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"),
		deviceContact("dev-2", "Grace", "Hopper", "555-000-0002"),
		deviceContact("dev-3", "Edith", "Clarke", "555-000-0003"),
	)
	remote := newFakeRemote()
	state := &fakeState{}

	res := newTestEngine(device, remote, state).FullSync(context.Background())

	if res.Imported != 3 {
		t.Errorf("Imported = %d, want 3", res.Imported)
	}
	if res.SyncedBack != 3 {
		t.Errorf("SyncedBack = %d, want 3", res.SyncedBack)
	}
	if res.Failed != 0 || len(res.Errors) != 0 {
		t.Errorf("unexpected failures: %d %v", res.Failed, res.Errors)
	}
	if state.count() != 1 {
		t.Errorf("last-sync timestamp written %d times, want 1", state.count())
	}

	all, _ := remote.ListContacts(context.Background())
	for _, ac := range all {
		if ac.PipelineStage != models.StageNew {
			t.Errorf("imported contact %q stage = %q, want %q", ac.Name, ac.PipelineStage, models.StageNew)
		}
		if !ac.Linked() {
			t.Errorf("imported contact %q is not linked", ac.Name)
		}
		if ac.Birthday != "1990-01-15" {
			t.Errorf("imported contact %q birthday = %q, want 1990-01-15", ac.Name, ac.Birthday)
		}
	}
}

func TestFullSyncIsIdempotent(t *testing.T) {
	device := newFakeDevice(
		deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"),
		deviceContact("dev-2", "Grace", "Hopper", "555-000-0002"),
	)
	remote := newFakeRemote()
	state := &fakeState{}
	engine := newTestEngine(device, remote, state)

	engine.FullSync(context.Background())
	res := engine.FullSync(context.Background())

	if res.Imported != 0 || res.Linked != 0 {
		t.Errorf("second run imported %d, linked %d, want 0/0", res.Imported, res.Linked)
	}
	if res.Failed != 0 {
		t.Errorf("second run failed %d: %v", res.Failed, res.Errors)
	}

	all, _ := remote.ListContacts(context.Background())
	if len(all) != 2 {
		t.Errorf("remote has %d contacts after two runs, want 2", len(all))
	}
}

func TestFullSyncRepairsMissingLink(t *testing.T) {
	device := newFakeDevice(deviceContact("dev-1", "Ada", "Lovelace", "+1 (555) 123-4567"))
	remote := newFakeRemote(models.AppContact{
		ID:    "app-existing",
		Name:  "Ada Lovelace",
		Phone: "5551234567",
	})
	state := &fakeState{}

	res := newTestEngine(device, remote, state).FullSync(context.Background())

	if res.Linked != 1 {
		t.Errorf("Linked = %d, want 1", res.Linked)
	}
	if res.Imported != 0 {
		t.Errorf("Imported = %d, want 0", res.Imported)
	}
	if got := remote.get("app-existing").DeviceContactID; got != "dev-1" {
		t.Errorf("remote link = %q, want dev-1", got)
	}
}

func TestFullSyncSkipsNamelessRecords(t *testing.T) {
	device := newFakeDevice(
		models.DeviceContact{Identifier: "dev-1", Phones: []string{"5550000001"}},
		deviceContact("dev-2", "Grace", "Hopper", "555-000-0002"),
	)
	remote := newFakeRemote()

	res := newTestEngine(device, remote, &fakeState{}).FullSync(context.Background())

	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}
	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}
}

func TestFullSyncPermissionDeniedIsTerminal(t *testing.T) {
	device := newFakeDevice(deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"))
	device.accessErr = errors.New("access denied by user")
	remote := newFakeRemote()
	state := &fakeState{}

	res := newTestEngine(device, remote, state).FullSync(context.Background())

	if len(res.Errors) != 1 {
		t.Fatalf("Errors = %v, want exactly one", res.Errors)
	}
	if res.Imported != 0 || res.SyncedBack != 0 {
		t.Errorf("work attempted despite denied permission: %+v", res)
	}
	if state.count() != 0 {
		t.Errorf("timestamp written despite denied permission")
	}
	all, _ := remote.ListContacts(context.Background())
	if len(all) != 0 {
		t.Errorf("remote mutated despite denied permission")
	}
}

func TestFullSyncCreatesDeviceRecordForUnlinkedContact(t *testing.T) {
	device := newFakeDevice()
	remote := newFakeRemote(models.AppContact{
		ID:       "app-1",
		Name:     "Katherine Johnson",
		Phone:    "5559990000",
		Email:    "kj@example.com",
		Birthday: "1918-08-26",
	})
	state := &fakeState{}

	res := newTestEngine(device, remote, state).FullSync(context.Background())

	if res.SyncedBack != 1 {
		t.Fatalf("SyncedBack = %d, want 1: %v", res.SyncedBack, res.Errors)
	}

	linked := remote.get("app-1")
	if !linked.Linked() {
		t.Fatal("remote contact not linked after device record creation")
	}

	dc, err := device.Contact(context.Background(), linked.DeviceContactID)
	if err != nil || dc == nil {
		t.Fatalf("device record missing: %v", err)
	}
	if dc.FullName() != "Katherine Johnson" {
		t.Errorf("device name = %q", dc.FullName())
	}
	if len(dc.Phones) == 0 || dc.Phones[0] != "5559990000" {
		t.Errorf("device phones = %v", dc.Phones)
	}
	if dc.Birthday == nil || !dc.Birthday.YearKnown || dc.Birthday.Year != 1918 {
		t.Errorf("device birthday = %+v", dc.Birthday)
	}
}

func TestFullSyncToleratesDeletedDeviceRecord(t *testing.T) {
	device := newFakeDevice(deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"))
	remote := newFakeRemote(models.AppContact{
		ID:              "app-gone",
		Name:            "Grace Hopper",
		DeviceContactID: "dev-deleted",
	})

	res := newTestEngine(device, remote, &fakeState{}).FullSync(context.Background())

	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1 for the vanished device record", res.Failed)
	}
	// The healthy contact still flows both ways.
	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}
}

func TestFullSyncIsolatesPerContactFailures(t *testing.T) {
	device := newFakeDevice(
		deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"),
		deviceContact("dev-2", "Grace", "Hopper", "555-000-0002"),
	)
	remote := newFakeRemote()
	remote.failCreateFor = "Ada Lovelace"

	res := newTestEngine(device, remote, &fakeState{}).FullSync(context.Background())

	if res.Failed != 1 {
		t.Errorf("Failed = %d, want 1", res.Failed)
	}
	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}
	if len(res.Errors) == 0 {
		t.Error("expected a failure message for the rejected contact")
	}
}

func TestFullSyncEnrichesWhenBulkOmitsBirthdays(t *testing.T) {
	device := newFakeDevice(deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"))
	device.bulkOmitsBday = true
	remote := newFakeRemote()

	newTestEngine(device, remote, &fakeState{}).FullSync(context.Background())

	all, _ := remote.ListContacts(context.Background())
	if len(all) != 1 {
		t.Fatalf("remote has %d contacts, want 1", len(all))
	}
	if all[0].Birthday != "1990-01-15" {
		t.Errorf("birthday = %q, want it recovered via per-record fetch", all[0].Birthday)
	}
}

func TestQuickSyncImportsOnly(t *testing.T) {
	device := newFakeDevice(
		deviceContact("dev-1", "Ada", "Lovelace", "555-000-0001"),
		deviceContact("dev-2", "Grace", "Hopper", "555-123-4567"),
	)
	// Grace already exists remotely but is unlinked; quick sync must not
	// repair the link or push anything back.
	remote := newFakeRemote(models.AppContact{
		ID:    "app-grace",
		Name:  "Grace Hopper",
		Phone: "5551234567",
	})
	state := &fakeState{}

	res := newTestEngine(device, remote, state).QuickSync(context.Background())

	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}
	if res.Linked != 0 || res.SyncedBack != 0 {
		t.Errorf("quick sync linked %d, synced back %d, want 0/0", res.Linked, res.SyncedBack)
	}
	grace := remote.get("app-grace")
	if grace.Linked() {
		t.Error("quick sync repaired a link")
	}
	if state.count() != 0 {
		t.Error("quick sync wrote the last-sync timestamp")
	}
}

func TestConcurrentWorkersLinkSharedMatchOnce(t *testing.T) {
	// Several device records resolving to the same unlinked app contact:
	// exactly one worker may claim the link, the rest are no-ops.
	var contacts []models.DeviceContact
	for i := 0; i < 8; i++ {
		contacts = append(contacts, deviceContact(
			fmt.Sprintf("dev-%d", i),
			fmt.Sprintf("Ada%d", i),
			"Lovelace",
			"+1 (555) 123-4567",
		))
	}
	device := newFakeDevice(contacts...)
	remote := newFakeRemote(models.AppContact{
		ID:    "app-shared",
		Name:  "Ada Lovelace",
		Phone: "5551234567",
	})

	engine := NewEngine(device, remote, &fakeState{}, Options{Workers: 8})
	res := engine.FullSync(context.Background())

	if res.Linked != 1 {
		t.Errorf("Linked = %d, want 1", res.Linked)
	}
	if res.Imported != 0 {
		t.Errorf("Imported = %d, want 0", res.Imported)
	}
	if got := remote.linkUpdateCount(); got != 1 {
		t.Errorf("link updates sent = %d, want 1", got)
	}
	shared := remote.get("app-shared")
	if !shared.Linked() {
		t.Error("app contact not linked")
	}
}

func TestConcurrentWorkersImportSharedPhoneOnce(t *testing.T) {
	device := newFakeDevice(
		deviceContact("dev-1", "Ada", "Lovelace", "5551234567"),
		deviceContact("dev-2", "A", "Lovelace", "5551234567"),
	)
	remote := newFakeRemote()

	engine := NewEngine(device, remote, &fakeState{}, Options{Workers: 8})
	res := engine.FullSync(context.Background())

	if res.Imported != 1 {
		t.Errorf("Imported = %d, want 1", res.Imported)
	}
	all, _ := remote.ListContacts(context.Background())
	if len(all) != 1 {
		t.Errorf("remote has %d contacts, want 1", len(all))
	}
}

func TestFullSyncConcurrentWorkers(t *testing.T) {
	var contacts []models.DeviceContact
	for i := 0; i < 40; i++ {
		contacts = append(contacts, deviceContact(
			fmt.Sprintf("dev-%d", i),
			fmt.Sprintf("Given%d", i),
			"Family",
			fmt.Sprintf("55500%05d", i),
		))
	}
	device := newFakeDevice(contacts...)
	remote := newFakeRemote()

	engine := NewEngine(device, remote, &fakeState{}, Options{Workers: 8})
	res := engine.FullSync(context.Background())

	if res.Imported != 40 {
		t.Errorf("Imported = %d, want 40", res.Imported)
	}
	if res.SyncedBack != 40 {
		t.Errorf("SyncedBack = %d, want 40", res.SyncedBack)
	}
	if res.Failed != 0 {
		t.Errorf("Failed = %d: %v", res.Failed, res.Errors)
	}
}
