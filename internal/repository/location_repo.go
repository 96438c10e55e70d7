package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkspot/internal/apperr"
	"parkspot/internal/db"
)

// LocationRepository owns parking location metadata and the slot rows that
// back the capacity store. Reads join both tables; capacity mutations live in
// CapacityRepository.
type LocationRepository struct {
	DB *sql.DB
}

func NewLocationRepository(conn *sql.DB) *LocationRepository {
	return &LocationRepository{DB: conn}
}

// Create inserts a location and its slot pools in one transaction. New pools
// start with all spaces available.
func (r *LocationRepository) Create(ctx context.Context, loc *db.ParkingLocation) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO parking_locations (id, name, address, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		loc.ID, loc.Name, loc.Address, loc.Latitude, loc.Longitude,
	).Scan(&loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error inserting location: %w", err)
	}

	for i := range loc.Slots {
		s := &loc.Slots[i]
		s.LocationID = loc.ID
		s.AvailableSpaces = s.TotalSpaces
		_, err = tx.ExecContext(ctx, `
			INSERT INTO location_slots (location_id, vehicle_type, total_spaces, available_spaces, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			s.LocationID, s.VehicleType, s.TotalSpaces, s.AvailableSpaces, s.PriceCents)
		if err != nil {
			return fmt.Errorf("error inserting slot pool %s: %w", s.VehicleType, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing location: %w", err)
	}
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id string) (*db.ParkingLocation, error) {
	var loc db.ParkingLocation
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, address, latitude, longitude, created_at, updated_at
		FROM parking_locations WHERE id = $1`,
		id,
	).Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Latitude, &loc.Longitude, &loc.CreatedAt, &loc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying location: %w", err)
	}
	if err := r.attachSlots(ctx, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// List returns all locations with their slot pools.
func (r *LocationRepository) List(ctx context.Context) ([]db.ParkingLocation, error) {
	return r.listWhere(ctx, ``, nil)
}

// Search does a case-insensitive match over name and address.
func (r *LocationRepository) Search(ctx context.Context, q string) ([]db.ParkingLocation, error) {
	pattern := "%" + q + "%"
	return r.listWhere(ctx, `WHERE name ILIKE $1 OR address ILIKE $1`, []any{pattern})
}

// Nearby returns locations within radiusMeters of the point, closest first.
// The Haversine distance is computed in SQL so the ordering and cutoff happen
// in one scan.
func (r *LocationRepository) Nearby(ctx context.Context, lat, lng, radiusMeters float64) ([]db.ParkingLocation, error) {
	const haversine = `6371000 * 2 * asin(sqrt(
		pow(sin(radians(latitude - $1) / 2), 2) +
		cos(radians($1)) * cos(radians(latitude)) *
		pow(sin(radians(longitude - $2) / 2), 2)))`
	return r.listWhere(ctx,
		`WHERE `+haversine+` <= $3 ORDER BY `+haversine,
		[]any{lat, lng, radiusMeters})
}

func (r *LocationRepository) listWhere(ctx context.Context, clause string, args []any) ([]db.ParkingLocation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, address, latitude, longitude, created_at, updated_at
		FROM parking_locations `+clause,
		args...)
	if err != nil {
		return nil, fmt.Errorf("error querying locations: %w", err)
	}
	defer rows.Close()

	var locations []db.ParkingLocation
	for rows.Next() {
		var loc db.ParkingLocation
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Latitude, &loc.Longitude, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning location: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating location rows: %w", err)
	}
	for i := range locations {
		if err := r.attachSlots(ctx, &locations[i]); err != nil {
			return nil, err
		}
	}
	return locations, nil
}

func (r *LocationRepository) attachSlots(ctx context.Context, loc *db.ParkingLocation) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT location_id, vehicle_type, total_spaces, available_spaces, price_cents
		FROM location_slots WHERE location_id = $1 ORDER BY vehicle_type`,
		loc.ID)
	if err != nil {
		return fmt.Errorf("error querying slot pools: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s db.SlotCapacity
		if err := rows.Scan(&s.LocationID, &s.VehicleType, &s.TotalSpaces, &s.AvailableSpaces, &s.PriceCents); err != nil {
			return fmt.Errorf("error scanning slot pool: %w", err)
		}
		loc.Slots = append(loc.Slots, s)
	}
	return rows.Err()
}

// UpdateMetadata changes name, address and coordinates. Slot pools are
// resized separately through the capacity store.
func (r *LocationRepository) UpdateMetadata(ctx context.Context, loc *db.ParkingLocation) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE parking_locations
		SET name = $2, address = $3, latitude = $4, longitude = $5, updated_at = NOW()
		WHERE id = $1`,
		loc.ID, loc.Name, loc.Address, loc.Latitude, loc.Longitude)
	if err != nil {
		return fmt.Errorf("error updating location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrLocationNotFound
	}
	return nil
}

// Delete removes a location. It is rejected while active bookings reference
// the location.
func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	var active int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE location_id = $1 AND status IN ('pending', 'confirmed')`,
		id).Scan(&active)
	if err != nil {
		return fmt.Errorf("error counting active bookings: %w", err)
	}
	if active > 0 {
		return fmt.Errorf("location %s has %d active bookings: %w", id, active, apperr.ErrCapacityBelowActive)
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM parking_locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting location: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrLocationNotFound
	}
	return nil
}
