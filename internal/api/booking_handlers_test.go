package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Validation failures are rejected before the handler touches the service,
// so a nil service is enough for these.

func TestCreateBookingRejectsBadBody(t *testing.T) {
	h := NewBookingHandler(nil)

	cases := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing location", `{"vehicle_type":"2-wheeler"}`},
		{"location not a uuid", `{"location_id":"garage-1","vehicle_type":"2-wheeler"}`},
		{"unknown vehicle type", `{"location_id":"7a9f8f4e-53ac-4a27-9a77-2e8f8f0a1b2c","vehicle_type":"truck"}`},
		{"missing vehicle type", `{"location_id":"7a9f8f4e-53ac-4a27-9a77-2e8f8f0a1b2c"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.CreateBooking(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"location_id":"7a9f8f4e-53ac-4a27-9a77-2e8f8f0a1b2c","vehicle_type":"4-wheeler"}`))
	var body CreateBookingRequest
	assert.NoError(t, decodeAndValidate(req, &body))
	assert.Equal(t, "4-wheeler", body.VehicleType)
}

func TestRegisterRequestValidation(t *testing.T) {
	assert.Error(t, validate.Struct(RegisterRequest{Name: "Ana", Email: "not-an-email", Password: "hunter2hunter2"}))
	assert.Error(t, validate.Struct(RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "short"}))
	assert.Error(t, validate.Struct(RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "hunter2hunter2", Phone: "not-a-phone"}))
	assert.NoError(t, validate.Struct(RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "hunter2hunter2", Phone: "+5491122334455"}))
}

func TestLocationRequestValidation(t *testing.T) {
	valid := LocationRequest{
		Name: "Central Garage", Address: "123 Main St", Latitude: -34.6, Longitude: -58.4,
		Slots: []SlotPoolRequest{{VehicleType: "2-wheeler", TotalSpaces: 10, PriceCents: 2000}},
	}
	assert.NoError(t, validate.Struct(valid))

	noSlots := valid
	noSlots.Slots = nil
	assert.Error(t, validate.Struct(noSlots))

	badSlot := valid
	badSlot.Slots = []SlotPoolRequest{{VehicleType: "boat", TotalSpaces: 10}}
	assert.Error(t, validate.Struct(badSlot))

	badLat := valid
	badLat.Latitude = 95
	assert.Error(t, validate.Struct(badLat))
}
