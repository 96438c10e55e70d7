// Package apperr defines the sentinel errors shared between the repository,
// service and API layers, and their mapping to HTTP status codes. Handlers
// match them with errors.Is so repositories are free to wrap them with
// context.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrNoAvailability means the capacity store has no free slot of the
	// requested vehicle type at the location. Retryable by picking another
	// type or location.
	ErrNoAvailability = errors.New("no slots available for this vehicle type at this location")

	// ErrDuplicateActiveBooking means the user already holds a pending or
	// confirmed booking for the same (location, vehicle type).
	ErrDuplicateActiveBooking = errors.New("an active booking already exists for this vehicle type at this location")

	// ErrInvalidStateTransition means the booking is not in a state that
	// allows the requested operation (stale cancel, duplicate payment
	// callback, completing an unpaid booking, ...).
	ErrInvalidStateTransition = errors.New("booking state does not allow this operation")

	// ErrOverRelease means a slot release would have pushed the available
	// count past the total. It indicates a release-twice bug and must never
	// be swallowed.
	ErrOverRelease = errors.New("slot release would exceed total capacity")

	// ErrCapacityBelowActive means an admin tried to shrink a slot pool
	// below the number of slots currently held by active bookings.
	ErrCapacityBelowActive = errors.New("total capacity cannot drop below active bookings")

	ErrForbidden          = errors.New("forbidden")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrLocationNotFound   = errors.New("parking location not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// HTTPStatus translates an error into the response code the API layer should
// use. Unrecognized errors are treated as server errors (store failures and
// the like).
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNoAvailability),
		errors.Is(err, ErrDuplicateActiveBooking),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrCapacityBelowActive),
		errors.Is(err, ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBookingNotFound),
		errors.Is(err, ErrLocationNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
