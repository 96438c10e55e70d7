package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrNoAvailability))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrDuplicateActiveBooking))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrInvalidStateTransition))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrCapacityBelowActive))
	assert.Equal(t, http.StatusConflict, HTTPStatus(ErrEmailTaken))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(ErrForbidden))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrBookingNotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrLocationNotFound))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrUserNotFound))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrInvalidCredentials))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("pq: connection refused")))
}

func TestHTTPStatusUnwrapsContext(t *testing.T) {
	wrapped := fmt.Errorf("booking b-1 is cancelled: %w", ErrInvalidStateTransition)
	assert.Equal(t, http.StatusConflict, HTTPStatus(wrapped))
}
