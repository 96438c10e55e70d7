package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"parkspot/internal/apperr"
	"parkspot/internal/db"
)

// CapacityRepository is the capacity store: per (location, vehicle type)
// total/available counters. Reserve and release are single conditional
// UPDATEs so two callers racing for the last slot can never both win.
type CapacityRepository struct {
	DB *sql.DB
}

func NewCapacityRepository(conn *sql.DB) *CapacityRepository {
	return &CapacityRepository{DB: conn}
}

// TryReserve atomically claims one available slot. It returns
// apperr.ErrNoAvailability when the pool is exhausted and
// apperr.ErrLocationNotFound when the location does not offer the type.
func (r *CapacityRepository) TryReserve(ctx context.Context, locationID string, vt db.VehicleType) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE location_slots
		SET available_spaces = available_spaces - 1
		WHERE location_id = $1 AND vehicle_type = $2 AND available_spaces > 0`,
		locationID, vt)
	if err != nil {
		return fmt.Errorf("error reserving slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	// No row matched: either the pool is empty or the type is not offered.
	var total int
	err = r.DB.QueryRowContext(ctx,
		`SELECT total_spaces FROM location_slots WHERE location_id = $1 AND vehicle_type = $2`,
		locationID, vt).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrLocationNotFound
	}
	if err != nil {
		return fmt.Errorf("error checking slot configuration: %w", err)
	}
	return apperr.ErrNoAvailability
}

// Release returns one slot to the pool. The guard against exceeding
// total_spaces turns a double-release bug into apperr.ErrOverRelease instead
// of a silent overcount.
func (r *CapacityRepository) Release(ctx context.Context, locationID string, vt db.VehicleType) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE location_slots
		SET available_spaces = available_spaces + 1
		WHERE location_id = $1 AND vehicle_type = $2 AND available_spaces < total_spaces`,
		locationID, vt)
	if err != nil {
		return fmt.Errorf("error releasing slot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("location %s type %s: %w", locationID, vt, apperr.ErrOverRelease)
	}
	return nil
}

// GetAvailability returns a point-in-time snapshot of the slot pools at a
// location.
func (r *CapacityRepository) GetAvailability(ctx context.Context, locationID string) ([]db.SlotCapacity, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT location_id, vehicle_type, total_spaces, available_spaces, price_cents
		FROM location_slots
		WHERE location_id = $1
		ORDER BY vehicle_type`,
		locationID)
	if err != nil {
		return nil, fmt.Errorf("error querying availability: %w", err)
	}
	defer rows.Close()

	var slots []db.SlotCapacity
	for rows.Next() {
		var sc db.SlotCapacity
		if err := rows.Scan(&sc.LocationID, &sc.VehicleType, &sc.TotalSpaces, &sc.AvailableSpaces, &sc.PriceCents); err != nil {
			return nil, fmt.Errorf("error scanning slot capacity: %w", err)
		}
		slots = append(slots, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating slot rows: %w", err)
	}
	if len(slots) == 0 {
		return nil, apperr.ErrLocationNotFound
	}
	return slots, nil
}

// ResizePool sets a new total for one pool, shifting available by the same
// delta so held slots stay held. Shrinking below the active booking count is
// rejected.
func (r *CapacityRepository) ResizePool(ctx context.Context, locationID string, vt db.VehicleType, newTotal, priceCents int) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE location_slots
		SET available_spaces = available_spaces + ($3 - total_spaces),
		    total_spaces = $3,
		    price_cents = $4
		WHERE location_id = $1 AND vehicle_type = $2
		  AND total_spaces - available_spaces <= $3`,
		locationID, vt, newTotal, priceCents)
	if err != nil {
		return fmt.Errorf("error resizing slot pool: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM location_slots WHERE location_id = $1 AND vehicle_type = $2`,
		locationID, vt).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrLocationNotFound
	}
	if err != nil {
		return fmt.Errorf("error checking slot configuration: %w", err)
	}
	return apperr.ErrCapacityBelowActive
}
