package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// Rentals deliberately carry no foreign key to games: the ledger is
// append-only history and must outlive catalog rows. A rental whose game
// has disappeared is shown as a degraded entry, not an error.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL,
    name          TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS games (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    genre      TEXT NOT NULL,
    platform   TEXT NOT NULL,
    price      REAL NOT NULL DEFAULT 0 CHECK (price >= 0),
    rent_price REAL NOT NULL DEFAULT 0 CHECK (rent_price >= 0),
    status     TEXT NOT NULL DEFAULT 'Available' CHECK (status IN ('Available', 'Rented')),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rentals (
    id          TEXT PRIMARY KEY,
    game_id     TEXT NOT NULL,
    user_id     TEXT NOT NULL,
    issued_at   DATETIME NOT NULL,
    due_at      DATETIME NOT NULL,
    returned_at DATETIME,
    fine        REAL NOT NULL DEFAULT 0 CHECK (fine >= 0)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_rentals_open_game
    ON rentals(game_id) WHERE returned_at IS NULL;

CREATE INDEX IF NOT EXISTS idx_rentals_user ON rentals(user_id);

CREATE TABLE IF NOT EXISTS counters (
    class TEXT PRIMARY KEY,
    next  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
);
`

// migrations is a list of SQL statements applied in order after schema
// creation. Each migration must be idempotent. Append new migrations at
// the end.
var migrations = []string{
	// Migration 1: seed the id allocator counters. INSERT OR IGNORE keeps
	// existing counter values across restarts.
	`INSERT OR IGNORE INTO counters (class, next) VALUES ('G', 0), ('R', 0), ('U', 0)`,
}

// Migrate creates the schema and runs all migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
