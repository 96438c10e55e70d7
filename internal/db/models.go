package db

import (
	"fmt"
	"time"
)

// VehicleType is the closed set of slot categories a location offers.
// Extending it is a schema migration, not a code branch.
type VehicleType string

const (
	TwoWheeler  VehicleType = "2-wheeler"
	FourWheeler VehicleType = "4-wheeler"
)

func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case TwoWheeler, FourWheeler:
		return VehicleType(s), nil
	}
	return "", fmt.Errorf("unknown vehicle type %q", s)
}

// BookingStatus values. Pending and confirmed bookings hold a slot;
// cancelled and completed are terminal.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ParkingLocation struct {
	ID        string
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
	Slots     []SlotCapacity
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotCapacity is one row of the capacity store: the counters for a single
// vehicle type at a single location. AvailableSpaces mirrors the number of
// slots not held by an active booking; the reservation service keeps the two
// in step.
type SlotCapacity struct {
	LocationID      string
	VehicleType     VehicleType
	TotalSpaces     int
	AvailableSpaces int
	PriceCents      int
}

type Booking struct {
	ID              string
	UserID          string
	LocationID      string
	VehicleType     VehicleType
	Status          BookingStatus
	AmountCents     int
	StripeSessionID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
