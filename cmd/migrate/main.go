// ABOUTME: Migration utility for transitioning the legacy local cache to the current schema.
// ABOUTME: Provides dry-run and backup capabilities for safe schema migration.

package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"synchro/db"
	"synchro/models"
)

func main() {
	dbPath := flag.String("db", "", "Path to database file (required)")
	dryRun := flag.Bool("dry-run", false, "Show what would happen without making changes")
	backup := flag.Bool("backup", true, "Create backup before migration")
	force := flag.Bool("force", false, "Force migration even if data loss may occur")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("Error: -db flag is required")
	}

	if err := migrate(*dbPath, *dryRun, *backup, *force); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration completed successfully")
}

// migrate moves an old address_book/app_state cache to the current
// device_contacts/client_state schema, carrying contact rows across.
func migrate(dbPath string, dryRun, createBackup, force bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	if createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		log.Printf("Creating backup: %s", backupPath)

		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}

		if err := os.WriteFile(backupPath, input, 0644); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		log.Printf("Backup created successfully")
	}

	database, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	tables, err := getCurrentTables(database)
	if err != nil {
		return fmt.Errorf("failed to get current tables: %w", err)
	}

	log.Printf("Current tables: %v", tables)

	hasLegacy := contains(tables, "address_book")
	hasCurrent := contains(tables, "device_contacts")

	legacyCount := 0
	if hasLegacy {
		if err := database.QueryRow("SELECT COUNT(*) FROM address_book").Scan(&legacyCount); err != nil {
			return fmt.Errorf("failed to count legacy rows: %w", err)
		}
		log.Printf("Found legacy address_book table with %d contact(s)", legacyCount)

		if !force && hasCurrent {
			log.Printf("WARNING: device_contacts already exists; migrated rows may overwrite it")
			log.Printf("Use -force flag to proceed")
			return fmt.Errorf("migration requires -force flag")
		}
	}

	if dryRun {
		log.Printf("[DRY RUN] Would perform the following actions:")
		if !hasCurrent {
			log.Printf("[DRY RUN] - Create device_contacts and client_state tables")
		}
		if hasLegacy {
			log.Printf("[DRY RUN] - Copy %d contact(s) from address_book", legacyCount)
			log.Printf("[DRY RUN] - Drop legacy tables: address_book, app_state")
		}
		return nil
	}

	if err := db.InitSchema(database); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	if hasLegacy {
		moved, err := copyLegacyContacts(database)
		if err != nil {
			return fmt.Errorf("failed to copy legacy contacts: %w", err)
		}
		log.Printf("Copied %d contact(s)", moved)

		if err := dropLegacyTables(database); err != nil {
			return fmt.Errorf("failed to drop legacy tables: %w", err)
		}
		log.Printf("Legacy tables dropped")
	}

	return nil
}

// copyLegacyContacts moves address_book rows into device_contacts. The old
// table stored one name column, comma-separated phone and email lists, and
// an ISO birthday string.
func copyLegacyContacts(database *sql.DB) (int, error) {
	rows, err := database.Query("SELECT id, name, phones, emails, birthday, notes FROM address_book")
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	type legacyRow struct {
		id, name, phones, emails, birthday, notes string
	}
	var legacy []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.id, &r.name, &r.phones, &r.emails, &r.birthday, &r.notes); err != nil {
			return 0, err
		}
		legacy = append(legacy, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	moved := 0
	for _, r := range legacy {
		given, family, _ := strings.Cut(strings.TrimSpace(r.name), " ")

		phones, err := json.Marshal(splitList(r.phones))
		if err != nil {
			return moved, err
		}
		emails, err := json.Marshal(splitList(r.emails))
		if err != nil {
			return moved, err
		}

		var birthYear, birthMonth, birthDay any
		if bday := models.BirthdayFromISO(r.birthday); bday != nil {
			if bday.YearKnown {
				birthYear = bday.Year
			}
			birthMonth = bday.Month
			birthDay = bday.Day
		}

		now := time.Now().UTC()
		_, err = database.Exec(`
			INSERT OR REPLACE INTO device_contacts
			(identifier, given_name, family_name, phones, emails, birth_year, birth_month, birth_day,
			 job_title, company, note, addresses, image_ref, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, '', '', ?, '[]', '', ?, ?)`,
			r.id, given, strings.TrimSpace(family), string(phones), string(emails),
			birthYear, birthMonth, birthDay, r.notes, now, now)
		if err != nil {
			return moved, fmt.Errorf("failed to insert contact %s: %w", r.id, err)
		}
		moved++
	}

	return moved, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getCurrentTables(database *sql.DB) ([]string, error) {
	rows, err := database.Query("SELECT name FROM sqlite_master WHERE type='table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

func contains(tables []string, name string) bool {
	for _, t := range tables {
		if t == name {
			return true
		}
	}
	return false
}

func dropLegacyTables(database *sql.DB) error {
	for _, table := range []string{"address_book", "app_state"} {
		if _, err := database.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
		log.Printf("Dropped table: %s", table)
	}

	return nil
}
