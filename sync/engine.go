// ABOUTME: Bidirectional contact reconciliation engine between device and remote stores
// ABOUTME: Classifies contacts into import/link/update/create actions with per-contact failure isolation
package sync

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"synchro/models"
)

const defaultWorkers = 4

// Options tunes a sync pass. Workers bounds the fan-out of per-contact
// network calls; 1 reproduces strictly sequential behavior.
type Options struct {
	Workers    int
	Progress   func(msg string)
	Selector   ContactMethodSelector
	Enrichment EnrichmentPolicy
}

// Result aggregates the outcome of a sync pass. Per-contact failures are
// counted and surfaced as messages; they never abort the pass.
type Result struct {
	mu         gosync.Mutex
	Imported   int
	Linked     int
	SyncedBack int
	Skipped    int
	Failed     int
	Errors     []string
}

func (r *Result) addImported()   { r.mu.Lock(); r.Imported++; r.mu.Unlock() }
func (r *Result) addLinked()     { r.mu.Lock(); r.Linked++; r.mu.Unlock() }
func (r *Result) addSyncedBack() { r.mu.Lock(); r.SyncedBack++; r.mu.Unlock() }
func (r *Result) addSkipped()    { r.mu.Lock(); r.Skipped++; r.mu.Unlock() }

func (r *Result) addFailure(format string, args ...any) {
	r.mu.Lock()
	r.Failed++
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *Result) recordError(format string, args ...any) {
	r.mu.Lock()
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

// Engine reconciles the device address book with the remote contact store.
type Engine struct {
	device DeviceStore
	remote RemoteStore
	state  StateStore
	opts   Options

	matcherMu gosync.Mutex // guards the matcher during a concurrent pass
}

func NewEngine(device DeviceStore, remote RemoteStore, state StateStore, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Selector == nil {
		opts.Selector = FirstListed{}
	}
	if opts.Enrichment == nil {
		opts.Enrichment = ZeroBirthdayHeuristic{}
	}
	return &Engine{device: device, remote: remote, state: state, opts: opts}
}

// FullSync runs the two-phase reconciliation: device contacts flow into the
// app, then every app contact is pushed back onto (or created in) the
// address book. An unexpected failure mid-pass lands in Result.Errors with
// counters as accumulated; the last-sync timestamp is written either way.
// Denied contact permission is terminal: no partial work is attempted.
func (e *Engine) FullSync(ctx context.Context) *Result {
	res := &Result{}

	if err := e.device.RequestAccess(ctx); err != nil {
		res.recordError("contact permission denied: %v", err)
		return res
	}

	if err := e.run(ctx, res, true); err != nil {
		res.recordError("sync aborted: %v", err)
	}

	if e.state != nil {
		if err := e.state.SetLastSync(ctx, time.Now()); err != nil {
			res.recordError("failed to record sync time: %v", err)
		}
	}

	e.progressf("✓ Sync complete: %d imported, %d linked, %d synced back, %d failed",
		res.Imported, res.Linked, res.SyncedBack, res.Failed)
	return res
}

// QuickSync imports unmatched device contacts only: no link repair and no
// app-to-device phase. The last-sync timestamp is left alone.
func (e *Engine) QuickSync(ctx context.Context) *Result {
	res := &Result{}

	if err := e.device.RequestAccess(ctx); err != nil {
		res.recordError("contact permission denied: %v", err)
		return res
	}

	if err := e.run(ctx, res, false); err != nil {
		res.recordError("sync aborted: %v", err)
	}

	return res
}

func (e *Engine) run(ctx context.Context, res *Result, full bool) error {
	e.progressf("→ Fetching device and app contacts...")

	var (
		deviceContacts []models.DeviceContact
		appContacts    []models.AppContact
		deviceErr      error
		appErr         error
	)
	var wg gosync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		deviceContacts, deviceErr = e.device.Contacts(ctx, models.AllDeviceFields())
	}()
	go func() {
		defer wg.Done()
		appContacts, appErr = e.remote.ListContacts(ctx)
	}()
	wg.Wait()

	if deviceErr != nil {
		return fmt.Errorf("failed to fetch device contacts: %w", deviceErr)
	}
	if appErr != nil {
		return fmt.Errorf("failed to fetch app contacts: %w", appErr)
	}

	deviceContacts = DedupeDeviceContacts(deviceContacts)

	if e.opts.Enrichment.NeedsPerContactFetch(deviceContacts) {
		e.progressf("→ Bulk fetch looks incomplete; fetching %d contacts individually...", len(deviceContacts))
		deviceContacts = e.enrichContacts(ctx, deviceContacts)
	}

	matcher := NewContactMatcher(appContacts, e.opts.Selector)

	e.progressf("→ Syncing %d device contacts to app...", len(deviceContacts))
	e.deviceToApp(ctx, deviceContacts, matcher, res, !full)

	if !full {
		return nil
	}

	// Re-fetch so the second phase sees contacts imported and linked above.
	appContacts, err := e.remote.ListContacts(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh app contacts: %w", err)
	}

	e.progressf("→ Syncing %d app contacts back to device...", len(appContacts))
	e.appToDevice(ctx, appContacts, res)

	return nil
}

// deviceToApp classifies each device contact: skip nameless records, repair
// missing links on matched contacts, import the rest. With importOnly set
// (quick sync) matched contacts are left untouched.
//
// The decision and its claim are made under matcherMu before any network
// call: concurrent workers resolving to the same app contact must see one
// claim it and treat it as linked, never issue a second link or create.
func (e *Engine) deviceToApp(ctx context.Context, contacts []models.DeviceContact, matcher *ContactMatcher, res *Result, importOnly bool) {
	e.forEach(ctx, len(contacts), func(i int) {
		dc := &contacts[i]
		name := dc.FullName()
		if name == "" {
			res.addSkipped()
			return
		}

		e.matcherMu.Lock()
		match := matcher.Match(dc)

		if match != nil {
			if importOnly || match.Linked() {
				e.matcherMu.Unlock()
				return
			}

			// Claim the link before the network call.
			match.DeviceContactID = dc.Identifier
			matcher.Add(match)
			matchID := match.ID
			e.matcherMu.Unlock()

			updated, err := e.remote.UpdateContact(ctx, matchID, models.LinkUpdate(dc.Identifier))
			if err != nil {
				e.progressf("✗ Failed to link %q: %v", name, err)
				res.addFailure("link %q: %v", name, err)
				return
			}

			e.matcherMu.Lock()
			matcher.Add(updated)
			e.matcherMu.Unlock()
			res.addLinked()
			return
		}

		// Index the pending payload before the network call so duplicates
		// match it instead of creating the contact twice.
		payload := e.appContactFromDevice(dc)
		matcher.Add(payload)
		e.matcherMu.Unlock()

		created, err := e.remote.CreateContact(ctx, payload)
		if err != nil {
			e.progressf("✗ Failed to import %q: %v", name, err)
			res.addFailure("import %q: %v", name, err)
			return
		}

		e.matcherMu.Lock()
		matcher.Add(created)
		e.matcherMu.Unlock()
		res.addImported()
	})
}

// appToDevice pushes every app contact onto its device record, creating the
// device record (and closing the link) when none exists yet.
func (e *Engine) appToDevice(ctx context.Context, contacts []models.AppContact, res *Result) {
	e.forEach(ctx, len(contacts), func(i int) {
		ac := &contacts[i]

		if ac.Linked() {
			ok, err := e.pushToDevice(ctx, ac)
			if err != nil {
				e.progressf("✗ Failed to update device record for %q: %v", ac.Name, err)
				res.addFailure("update device record for %q: %v", ac.Name, err)
				return
			}
			if !ok {
				// Deleted on device; next full sync will recreate the link.
				res.addFailure("device record for %q is gone", ac.Name)
				return
			}
			res.addSyncedBack()
			return
		}

		dc := &models.DeviceContact{}
		applyAppFields(dc, ac)
		id, err := e.device.CreateContact(ctx, dc)
		if err != nil {
			e.progressf("✗ Failed to create device record for %q: %v", ac.Name, err)
			res.addFailure("create device record for %q: %v", ac.Name, err)
			return
		}

		if _, err := e.remote.UpdateContact(ctx, ac.ID, models.LinkUpdate(id)); err != nil {
			e.progressf("✗ Failed to store link for %q: %v", ac.Name, err)
			res.addFailure("store link for %q: %v", ac.Name, err)
			return
		}
		res.addSyncedBack()
	})
}

// pushToDevice overwrites the synced fields of the linked device record,
// preserving anything the app does not own (extra phones, image).
func (e *Engine) pushToDevice(ctx context.Context, ac *models.AppContact) (bool, error) {
	existing, err := e.device.Contact(ctx, ac.DeviceContactID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	applyAppFields(existing, ac)
	return e.device.UpdateContact(ctx, existing)
}

// enrichContacts replaces each bulk record with a per-identifier fetch.
// A failed or missing fetch keeps the bulk record.
func (e *Engine) enrichContacts(ctx context.Context, contacts []models.DeviceContact) []models.DeviceContact {
	out := make([]models.DeviceContact, len(contacts))
	copy(out, contacts)

	e.forEach(ctx, len(contacts), func(i int) {
		if contacts[i].Identifier == "" {
			return
		}
		full, err := e.device.Contact(ctx, contacts[i].Identifier)
		if err != nil || full == nil {
			return
		}
		out[i] = *full
	})

	return out
}

// appContactFromDevice builds the creation payload for an unmatched device
// contact. First-listed phone/email via the selector, first address as
// location, fresh contacts start in the New pipeline stage.
func (e *Engine) appContactFromDevice(dc *models.DeviceContact) *models.AppContact {
	job := dc.JobTitle
	if job == "" {
		job = dc.Company
	}

	location := ""
	if len(dc.Addresses) > 0 {
		location = dc.Addresses[0]
	}

	return &models.AppContact{
		Name:            dc.FullName(),
		Phone:           e.opts.Selector.Phone(dc),
		Email:           e.opts.Selector.Email(dc),
		Birthday:        dc.Birthday.ISO(),
		Job:             job,
		Location:        location,
		Notes:           dc.Note,
		DeviceContactID: dc.Identifier,
		PipelineStage:   models.StageNew,
	}
}

// applyAppFields overwrites the device fields the app owns: name parts,
// first phone, first email, birthday, job title, note, first address.
func applyAppFields(dc *models.DeviceContact, ac *models.AppContact) {
	dc.GivenName, dc.FamilyName = splitName(ac.Name)
	setFirst(&dc.Phones, ac.Phone)
	setFirst(&dc.Emails, ac.Email)
	if ac.Birthday != "" {
		dc.Birthday = models.BirthdayFromISO(ac.Birthday)
	}
	dc.JobTitle = ac.Job
	dc.Note = ac.Notes
	setFirst(&dc.Addresses, ac.Location)
}

func setFirst(list *[]string, value string) {
	if value == "" {
		return
	}
	if len(*list) == 0 {
		*list = []string{value}
		return
	}
	(*list)[0] = value
}

func splitName(name string) (given, family string) {
	given, family, _ = strings.Cut(strings.TrimSpace(name), " ")
	return given, strings.TrimSpace(family)
}

// forEach runs fn over n indices with a bounded worker pool. Each contact's
// outcome is independent: a failure in one never stops the others.
func (e *Engine) forEach(ctx context.Context, n int, fn func(i int)) {
	if n == 0 {
		return
	}

	workers := e.opts.Workers
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg gosync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func (e *Engine) progressf(format string, args ...any) {
	if e.opts.Progress != nil {
		e.opts.Progress(fmt.Sprintf(format, args...))
	}
}
