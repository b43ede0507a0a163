package storage

import "database/sql"

// migrateV001 creates the initial schema: the import log, the incident
// table and its indexes. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS imports (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			source      TEXT NOT NULL DEFAULT '',
			row_count   INTEGER NOT NULL DEFAULT 0,
			imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS incidents (
			seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
			import_id            INTEGER NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
			id                   TEXT NOT NULL DEFAULT '',
			case_number          TEXT NOT NULL DEFAULT '',
			occurred_at          TEXT,
			year                 INTEGER,
			primary_type         TEXT NOT NULL DEFAULT '',
			description          TEXT NOT NULL DEFAULT '',
			location_description TEXT NOT NULL DEFAULT '',
			arrest               BOOLEAN NOT NULL DEFAULT 0,
			domestic             BOOLEAN NOT NULL DEFAULT 0,
			beat                 TEXT NOT NULL DEFAULT '',
			block                TEXT NOT NULL DEFAULT '',
			district             TEXT NOT NULL DEFAULT '',
			latitude             REAL,
			longitude            REAL
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_incidents_occurred_at ON incidents(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_year        ON incidents(year)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_case_number ON incidents(case_number)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_type        ON incidents(primary_type)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_location    ON incidents(location_description)`,
		`CREATE INDEX IF NOT EXISTS idx_incidents_import      ON incidents(import_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
