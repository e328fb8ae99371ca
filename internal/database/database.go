// Package database opens the Postgres connection and bootstraps the schema.
package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("database.Connect: %w", err)
	}
	db.SetMaxOpenConns(8)
	return db, nil
}

// EnsureSchema creates the listing tables if they do not exist. Keeping the
// migration in code lets docker-compose bootstrap a fresh database.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS listings (
	id TEXT PRIMARY KEY,
	broker_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	property_type TEXT NOT NULL,
	amenities TEXT[] NOT NULL DEFAULT '{}',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	price NUMERIC(13,2) NOT NULL DEFAULT 0,
	num_sites INTEGER NOT NULL DEFAULT 1,
	occupancy_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	annual_revenue NUMERIC(13,2) NOT NULL DEFAULT 0,
	cap_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
	featured BOOLEAN NOT NULL DEFAULT FALSE,
	status TEXT NOT NULL DEFAULT 'pending',
	rejection_reason TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
CREATE INDEX IF NOT EXISTS idx_listings_state ON listings(state);
CREATE INDEX IF NOT EXISTS idx_listings_broker ON listings(broker_id);

CREATE TABLE IF NOT EXISTS listing_images (
	id TEXT PRIMARY KEY,
	listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
	file_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'image/jpeg',
	position INTEGER NOT NULL DEFAULT 0,
	is_primary BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listing_images_listing ON listing_images(listing_id);

CREATE TABLE IF NOT EXISTS listing_documents (
	id TEXT PRIMARY KEY,
	listing_id TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
	file_id TEXT NOT NULL,
	file_name TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'application/pdf',
	category TEXT NOT NULL DEFAULT 'other',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listing_documents_listing ON listing_documents(listing_id);`

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("database.EnsureSchema: %w", err)
	}
	return nil
}
