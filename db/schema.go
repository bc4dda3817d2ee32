// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation for the local address book and client state
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS device_contacts (
	identifier TEXT PRIMARY KEY,
	given_name TEXT,
	family_name TEXT,
	phones TEXT,
	emails TEXT,
	birth_year INTEGER,
	birth_month INTEGER,
	birth_day INTEGER,
	job_title TEXT,
	company TEXT,
	note TEXT,
	addresses TEXT,
	image_ref TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_device_contacts_family_name ON device_contacts(family_name);

CREATE TABLE IF NOT EXISTS client_state (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
