package api

import (
	"time"

	"parkspot/internal/db"
)

// Auth
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// Bookings
type CreateBookingRequest struct {
	LocationID  string `json:"location_id" validate:"required,uuid4"`
	VehicleType string `json:"vehicle_type" validate:"required,oneof=2-wheeler 4-wheeler"`
}

type BookingResponse struct {
	ID          string    `json:"id"`
	LocationID  string    `json:"location_id"`
	VehicleType string    `json:"vehicle_type"`
	Status      string    `json:"status"`
	AmountCents int       `json:"amount_cents"`
	CheckoutURL string    `json:"checkout_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBookingResponse(b db.Booking, checkoutURL string) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		LocationID:  b.LocationID,
		VehicleType: string(b.VehicleType),
		Status:      string(b.Status),
		AmountCents: b.AmountCents,
		CheckoutURL: checkoutURL,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// Locations
type SlotPoolRequest struct {
	VehicleType string `json:"vehicle_type" validate:"required,oneof=2-wheeler 4-wheeler"`
	TotalSpaces int    `json:"total_spaces" validate:"min=0"`
	PriceCents  int    `json:"price_cents" validate:"min=0"`
}

type LocationRequest struct {
	Name      string            `json:"name" validate:"required"`
	Address   string            `json:"address" validate:"required"`
	Latitude  float64           `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64           `json:"longitude" validate:"min=-180,max=180"`
	Slots     []SlotPoolRequest `json:"slots" validate:"required,min=1,dive"`
}

type ResizeSlotPoolRequest struct {
	TotalSpaces int `json:"total_spaces" validate:"min=0"`
	PriceCents  int `json:"price_cents" validate:"min=0"`
}

type SlotPoolResponse struct {
	VehicleType     string `json:"vehicle_type"`
	TotalSpaces     int    `json:"total_spaces"`
	AvailableSpaces int    `json:"available_spaces"`
	PriceCents      int    `json:"price_cents"`
}

type LocationResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Address   string             `json:"address"`
	Latitude  float64            `json:"latitude"`
	Longitude float64            `json:"longitude"`
	Slots     []SlotPoolResponse `json:"slots"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toSlotPoolResponses(slots []db.SlotCapacity) []SlotPoolResponse {
	out := make([]SlotPoolResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotPoolResponse{
			VehicleType:     string(s.VehicleType),
			TotalSpaces:     s.TotalSpaces,
			AvailableSpaces: s.AvailableSpaces,
			PriceCents:      s.PriceCents,
		})
	}
	return out
}

func toLocationResponse(loc db.ParkingLocation) LocationResponse {
	return LocationResponse{
		ID:        loc.ID,
		Name:      loc.Name,
		Address:   loc.Address,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Slots:     toSlotPoolResponses(loc.Slots),
		CreatedAt: loc.CreatedAt,
		UpdatedAt: loc.UpdatedAt,
	}
}

func toLocationResponses(locs []db.ParkingLocation) []LocationResponse {
	out := make([]LocationResponse, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toLocationResponse(loc))
	}
	return out
}
