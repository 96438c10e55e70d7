package db

import (
	"database/sql"
	"fmt"
)

const createUsersTableSQL = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createLocationsTableSQL = `
CREATE TABLE IF NOT EXISTS parking_locations (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT NOT NULL,
    latitude DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createLocationSlotsTableSQL = `
CREATE TABLE IF NOT EXISTS location_slots (
    location_id UUID NOT NULL REFERENCES parking_locations(id) ON DELETE CASCADE,
    vehicle_type TEXT NOT NULL CHECK (vehicle_type IN ('2-wheeler', '4-wheeler')),
    total_spaces INTEGER NOT NULL CHECK (total_spaces >= 0),
    available_spaces INTEGER NOT NULL,
    price_cents INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (location_id, vehicle_type),
    CHECK (available_spaces >= 0 AND available_spaces <= total_spaces)
);`

const createBookingsTableSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id),
    location_id UUID NOT NULL REFERENCES parking_locations(id),
    vehicle_type TEXT NOT NULL CHECK (vehicle_type IN ('2-wheeler', '4-wheeler')),
    status TEXT NOT NULL CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed')),
    amount_cents INTEGER NOT NULL DEFAULT 0,
    stripe_session_id TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// One active booking per (user, location, vehicle type). The reservation
// service relies on this index to detect duplicate submissions.
const createActiveBookingIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_unique
    ON bookings (user_id, location_id, vehicle_type)
    WHERE status IN ('pending', 'confirmed');`

// RunMigrations creates the schema if it does not exist yet. All statements
// are idempotent so this is safe to run on every startup.
func RunMigrations(conn *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"users", createUsersTableSQL},
		{"parking_locations", createLocationsTableSQL},
		{"location_slots", createLocationSlotsTableSQL},
		{"bookings", createBookingsTableSQL},
		{"bookings_active_unique", createActiveBookingIndexSQL},
	}
	for _, s := range stmts {
		if _, err := conn.Exec(s.sql); err != nil {
			return fmt.Errorf("error running %s migration: %w", s.name, err)
		}
	}
	return nil
}
