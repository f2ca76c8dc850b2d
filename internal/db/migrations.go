package db

import (
	"database/sql"
	"fmt"
)

// Base schema - uses Snowflake IDs (no AUTOINCREMENT)
const baseSchema = `
CREATE TABLE IF NOT EXISTS translations (
  id INTEGER PRIMARY KEY,
  owner_id TEXT NOT NULL,
  source_text TEXT NOT NULL,
  translated_text TEXT NOT NULL,
  source_language TEXT NOT NULL,
  target_language TEXT NOT NULL,
  interpretation TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_translations_owner ON translations(owner_id);
CREATE INDEX IF NOT EXISTS idx_translations_owner_created ON translations(owner_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(baseSchema); err != nil {
		return fmt.Errorf("migrate base schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func runMigrations(db *sql.DB) error {
	// Migration 1: unique index on the content triple so repeat requests
	// update in place instead of inserting duplicates.
	if _, err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_translations_content
		ON translations(owner_id, source_text, translated_text)`); err != nil {
		return fmt.Errorf("create idx_translations_content: %w", err)
	}

	return nil
}
