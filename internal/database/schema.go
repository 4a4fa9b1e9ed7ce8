package database

import "context"

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pairs (
		pair_code TEXT PRIMARY KEY,
		pair_name TEXT NOT NULL,
		passphrase_hash TEXT NOT NULL,
		user1_name TEXT NOT NULL,
		user2_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		pair_code TEXT NOT NULL REFERENCES pairs (pair_code) ON DELETE CASCADE,
		user_id INT NOT NULL CHECK (user_id IN (1, 2)),
		user_name TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		battery_level INT,
		sharing_duration TEXT NOT NULL DEFAULT 'Indefinitely',
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ,
		UNIQUE (pair_code, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_locations_expires_at
		ON locations (expires_at) WHERE expires_at IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		pair_code TEXT NOT NULL REFERENCES pairs (pair_code) ON DELETE CASCADE,
		from_user TEXT NOT NULL,
		to_user TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_read BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_unread
		ON notifications (pair_code, to_user) WHERE NOT is_read`,
	`CREATE TABLE IF NOT EXISTS pair_sessions (
		id BIGSERIAL PRIMARY KEY,
		token_hash TEXT NOT NULL UNIQUE,
		pair_code TEXT NOT NULL REFERENCES pairs (pair_code) ON DELETE CASCADE,
		user_name TEXT NOT NULL,
		user_slot INT NOT NULL CHECK (user_slot IN (1, 2)),
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables the server needs if they do not exist.
// Statements are idempotent so this is safe to run on every startup.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
