package db

import (
	"context"
	"fmt"
)

// sqliteSchema is the full embedded database schema.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id                      TEXT PRIMARY KEY,
    email                   TEXT NOT NULL UNIQUE,
    password_hash           TEXT NOT NULL,
    first_name              TEXT NOT NULL,
    last_name               TEXT NOT NULL,
    phone                   TEXT NOT NULL,
    emergency_contact_name  TEXT NOT NULL,
    emergency_contact_phone TEXT NOT NULL,
    role                    TEXT NOT NULL CHECK (role IN ('owner', 'staff')),
    created_at              DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS tags (
    id               TEXT PRIMARY KEY,
    owner_id         TEXT NOT NULL REFERENCES users(id),
    code             TEXT NOT NULL UNIQUE,
    item_name        TEXT NOT NULL,
    item_description TEXT,
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'lost', 'found', 'picked-up', 'discarded')),
    photo            BLOB,
    photo_mime       TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS locations (
    id         TEXT PRIMARY KEY,
    staff_id   TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    address    TEXT NOT NULL,
    phone      TEXT NOT NULL,
    latitude   REAL,
    longitude  REAL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS scans (
    id          TEXT PRIMARY KEY,
    tag_id      TEXT NOT NULL REFERENCES tags(id),
    location_id TEXT REFERENCES locations(id),
    scanned_by  TEXT REFERENCES users(id),
    scanned_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS messages (
    id           TEXT PRIMARY KEY,
    from_user_id TEXT NOT NULL REFERENCES users(id),
    to_user_id   TEXT NOT NULL REFERENCES users(id),
    tag_id       TEXT REFERENCES tags(id),
    subject      TEXT NOT NULL,
    body         TEXT NOT NULL,
    email_sent   BOOLEAN NOT NULL DEFAULT 0,
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS status_changes (
    id         TEXT PRIMARY KEY,
    tag_id     TEXT NOT NULL REFERENCES tags(id),
    staff_id   TEXT REFERENCES users(id),
    old_status TEXT,
    new_status TEXT NOT NULL,
    notes      TEXT,
    changed_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at DATETIME NOT NULL
)`,
}

// postgresSchema is the hosted database schema. It carries the same
// tables as sqliteSchema plus the haversine_km SQL function.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id                      TEXT PRIMARY KEY,
    email                   TEXT NOT NULL UNIQUE,
    password_hash           TEXT NOT NULL,
    first_name              TEXT NOT NULL,
    last_name               TEXT NOT NULL,
    phone                   TEXT NOT NULL,
    emergency_contact_name  TEXT NOT NULL,
    emergency_contact_phone TEXT NOT NULL,
    role                    TEXT NOT NULL CHECK (role IN ('owner', 'staff')),
    created_at              TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS tags (
    id               TEXT PRIMARY KEY,
    owner_id         TEXT NOT NULL REFERENCES users(id),
    code             TEXT NOT NULL UNIQUE,
    item_name        TEXT NOT NULL,
    item_description TEXT,
    status           TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'lost', 'found', 'picked-up', 'discarded')),
    photo            BYTEA,
    photo_mime       TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS locations (
    id         TEXT PRIMARY KEY,
    staff_id   TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    address    TEXT NOT NULL,
    phone      TEXT NOT NULL,
    latitude   DOUBLE PRECISION,
    longitude  DOUBLE PRECISION,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS scans (
    id          TEXT PRIMARY KEY,
    tag_id      TEXT NOT NULL REFERENCES tags(id),
    location_id TEXT REFERENCES locations(id),
    scanned_by  TEXT REFERENCES users(id),
    scanned_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS messages (
    id           TEXT PRIMARY KEY,
    from_user_id TEXT NOT NULL REFERENCES users(id),
    to_user_id   TEXT NOT NULL REFERENCES users(id),
    tag_id       TEXT REFERENCES tags(id),
    subject      TEXT NOT NULL,
    body         TEXT NOT NULL,
    email_sent   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS status_changes (
    id         TEXT PRIMARY KEY,
    tag_id     TEXT NOT NULL REFERENCES tags(id),
    staff_id   TEXT REFERENCES users(id),
    old_status TEXT,
    new_status TEXT NOT NULL,
    notes      TEXT,
    changed_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TIMESTAMPTZ NOT NULL
)`,
	`CREATE OR REPLACE FUNCTION haversine_km(lat1 DOUBLE PRECISION, lng1 DOUBLE PRECISION,
                                        lat2 DOUBLE PRECISION, lng2 DOUBLE PRECISION)
RETURNS DOUBLE PRECISION
LANGUAGE sql IMMUTABLE
AS $$
    SELECT 2 * 6371.0 * asin(sqrt(least(1.0,
        power(sin(radians(lat2 - lat1) / 2), 2) +
        cos(radians(lat1)) * cos(radians(lat2)) *
        power(sin(radians(lng2 - lng1) / 2), 2))))
$$`,
}

// indexes are shared by both dialects. Append new ones at the end; each
// must be idempotent.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_tags_owner ON tags(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tags_status ON tags(status)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_staff ON locations(staff_id)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_tag ON scans(tag_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_status_changes_tag ON status_changes(tag_id)`,
}

// EnsureSchema creates all tables, indexes and functions if they don't
// already exist.
func EnsureSchema(db *DB) error {
	ctx := context.Background()

	stmts := sqliteSchema
	if db.dialect == Postgres {
		stmts = postgresSchema
	}
	stmts = append(stmts[:len(stmts):len(stmts)], indexes...)

	for i, s := range stmts {
		// Schema statements carry no placeholders; bypass Rebind so the
		// $$ quoting in the PostgreSQL function body stays intact.
		if _, err := db.sql.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
