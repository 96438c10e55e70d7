package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"parkspot/internal/apperr"
	"parkspot/internal/db"
)

const uniqueViolation = "23505"

// BookingRepository is the booking ledger, the system of record for booking
// lifecycle state. State changes go through Transition, a conditional update
// that succeeds at most once per legal step, which is what makes cancel and
// complete idempotent under races.
type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(conn *sql.DB) *BookingRepository {
	return &BookingRepository{DB: conn}
}

// InsertPending writes a new booking in pending state. The partial unique
// index on (user_id, location_id, vehicle_type) rejects a second active
// booking for the same tuple; that surfaces as ErrDuplicateActiveBooking.
func (r *BookingRepository) InsertPending(ctx context.Context, b *db.Booking) error {
	b.Status = db.StatusPending
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO bookings (id, user_id, location_id, vehicle_type, status, amount_cents, stripe_session_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		b.ID, b.UserID, b.LocationID, b.VehicleType, b.Status, b.AmountCents, b.StripeSessionID,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.ErrDuplicateActiveBooking
		}
		return fmt.Errorf("error inserting booking: %w", err)
	}
	return nil
}

// Transition moves a booking to toStatus only if its current status is one
// of fromStatuses. It returns ErrInvalidStateTransition when the booking
// exists but is in some other state, and ErrBookingNotFound when it does not
// exist at all.
func (r *BookingRepository) Transition(ctx context.Context, bookingID string, fromStatuses []db.BookingStatus, toStatus db.BookingStatus) error {
	from := make([]string, len(fromStatuses))
	for i, s := range fromStatuses {
		from[i] = string(s)
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)`,
		toStatus, bookingID, pq.Array(from))
	if err != nil {
		return fmt.Errorf("error transitioning booking %s: %w", bookingID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	var current string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1`, bookingID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrBookingNotFound
	}
	if err != nil {
		return fmt.Errorf("error checking booking %s: %w", bookingID, err)
	}
	return fmt.Errorf("booking %s is %s: %w", bookingID, current, apperr.ErrInvalidStateTransition)
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*db.Booking, error) {
	return r.getOne(ctx, `WHERE id = $1`, bookingID)
}

func (r *BookingRepository) GetByStripeSession(ctx context.Context, sessionID string) (*db.Booking, error) {
	return r.getOne(ctx, `WHERE stripe_session_id = $1`, sessionID)
}

func (r *BookingRepository) getOne(ctx context.Context, where string, arg any) (*db.Booking, error) {
	var b db.Booking
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, location_id, vehicle_type, status, amount_cents, stripe_session_id, created_at, updated_at
		FROM bookings `+where,
		arg,
	).Scan(&b.ID, &b.UserID, &b.LocationID, &b.VehicleType, &b.Status, &b.AmountCents, &b.StripeSessionID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying booking: %w", err)
	}
	return &b, nil
}

// SetStripeSession records the checkout session created for a booking.
func (r *BookingRepository) SetStripeSession(ctx context.Context, bookingID, sessionID string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE bookings SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1`,
		bookingID, sessionID)
	if err != nil {
		return fmt.Errorf("error storing stripe session for booking %s: %w", bookingID, err)
	}
	return nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, location_id, vehicle_type, status, amount_cents, stripe_session_id, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer rows.Close()

	var bookings []db.Booking
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.UserID, &b.LocationID, &b.VehicleType, &b.Status, &b.AmountCents, &b.StripeSessionID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating booking rows: %w", err)
	}
	return bookings, nil
}

// ListStale returns the IDs of bookings that have sat in the given status
// since before the cutoff. The expiry sweeper feeds these back through the
// reservation service so capacity is released on the normal path.
func (r *BookingRepository) ListStale(ctx context.Context, status db.BookingStatus, cutoff time.Time) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id FROM bookings WHERE status = $1 AND updated_at < $2`,
		status, cutoff)
	if err != nil {
		return nil, fmt.Errorf("error querying stale bookings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning booking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating stale rows: %w", err)
	}
	return ids, nil
}
