package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVehicleType(t *testing.T) {
	vt, err := ParseVehicleType("2-wheeler")
	assert.NoError(t, err)
	assert.Equal(t, TwoWheeler, vt)

	vt, err = ParseVehicleType("4-wheeler")
	assert.NoError(t, err)
	assert.Equal(t, FourWheeler, vt)

	_, err = ParseVehicleType("truck")
	assert.Error(t, err)

	_, err = ParseVehicleType("")
	assert.Error(t, err)
}

func TestBookingStatusActive(t *testing.T) {
	assert.True(t, StatusPending.Active())
	assert.True(t, StatusConfirmed.Active())
	assert.False(t, StatusCancelled.Active())
	assert.False(t, StatusCompleted.Active())
}
