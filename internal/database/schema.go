package database

import (
	"context"
	"fmt"
)

// racesSchema mirrors the hosted catalog table. distances holds
// [{"distance": "21km", "entry_fee": 350, "slots": 500}, ...].
const racesSchema = `
CREATE TABLE IF NOT EXISTS races (
	id                UUID PRIMARY KEY,
	name              TEXT NOT NULL,
	slug              TEXT NOT NULL UNIQUE,
	description       TEXT,
	race_date         DATE NOT NULL,
	entry_opens_date  DATE,
	entry_closes_date DATE,
	location_city     TEXT NOT NULL DEFAULT '',
	location_province TEXT NOT NULL DEFAULT '',
	location_venue    TEXT,
	race_type         TEXT NOT NULL DEFAULT '',
	terrain           TEXT NOT NULL DEFAULT '',
	elevation_gain    INTEGER,
	difficulty        TEXT NOT NULL DEFAULT '',
	distances         JSONB NOT NULL DEFAULT '[]'::jsonb,
	website_url       TEXT,
	entry_url         TEXT,
	organizer_name    TEXT,
	organizer_email   TEXT,
	organizer_phone   TEXT,
	image_url         TEXT,
	status            TEXT NOT NULL DEFAULT 'active',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_races_status_date ON races (status, race_date);
`

// EnsureSchema creates the races table and its index when missing
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, racesSchema); err != nil {
		return fmt.Errorf("failed to apply races schema: %w", err)
	}
	return nil
}
