// ABOUTME: Contact sync CLI commands
// ABOUTME: Runs the reconciliation engine against the address book and backend
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"synchro/api"
	"synchro/db"
	"synchro/sync"
)

// SyncContactsCommand runs a sync pass. Full two-phase by default; --quick
// imports new device contacts only.
func SyncContactsCommand(database *sql.DB, client *api.Client, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	quick := fs.Bool("quick", false, "Import new device contacts only, skip sync-back")
	workers := fs.Int("workers", 0, "Concurrent per-contact operations (default 4)")
	_ = fs.Parse(args)

	book := db.NewAddressBook(database)
	state := db.NewClientState(database)

	engine := sync.NewEngine(book, client, state, sync.Options{
		Workers:  *workers,
		Progress: func(msg string) { fmt.Println(msg) },
	})

	ctx := context.Background()

	var result *sync.Result
	if *quick {
		result = engine.QuickSync(ctx)
	} else {
		result = engine.FullSync(ctx)
	}

	fmt.Printf("\nImported:    %d\n", result.Imported)
	fmt.Printf("Linked:      %d\n", result.Linked)
	fmt.Printf("Synced back: %d\n", result.SyncedBack)
	fmt.Printf("Skipped:     %d\n", result.Skipped)
	fmt.Printf("Failed:      %d\n", result.Failed)

	for _, msg := range result.Errors {
		fmt.Printf("  ✗ %s\n", msg)
	}

	if result.Imported > 0 {
		if err := client.UpdateImportStatus(ctx); err != nil {
			fmt.Printf("warning: failed to update import status: %v\n", err)
		}
	}

	if len(result.Errors) > 0 && result.Imported == 0 && result.SyncedBack == 0 && result.Linked == 0 {
		return fmt.Errorf("sync did not complete")
	}

	return nil
}

// StatusCommand prints configuration, session, and last-sync information.
func StatusCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg, err := api.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.IsConfigured() {
		fmt.Printf("Server: %s\n", cfg.Server)
	} else {
		fmt.Println("Server: not configured")
	}
	if cfg.Email != "" {
		fmt.Printf("Account: %s\n", cfg.Email)
	}

	if _, err := api.LoadToken(); err != nil {
		fmt.Println("Session: not logged in")
	} else {
		fmt.Println("Session: logged in")

		// Pending link count is best-effort; a dead backend shouldn't
		// break status.
		if client, err := AuthenticatedClient(); err == nil {
			if contacts, err := client.ListContacts(context.Background()); err == nil {
				unlinked := 0
				for _, c := range contacts {
					if !c.Linked() {
						unlinked++
					}
				}
				fmt.Printf("Contacts: %d remote, %d awaiting device link\n", len(contacts), unlinked)
			}
		}
	}

	state := db.NewClientState(database)
	last, err := state.LastSync(context.Background())
	if err != nil {
		return fmt.Errorf("failed to read last sync time: %w", err)
	}
	if last == nil {
		fmt.Println("Last sync: never")
	} else {
		fmt.Printf("Last sync: %s (%s)\n", last.Local().Format(time.RFC1123), humanizeSince(*last))
	}

	return nil
}

// humanizeSince renders the elapsed time since t in the largest useful unit.
func humanizeSince(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
