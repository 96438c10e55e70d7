package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"parkspot/internal/db"
	"parkspot/internal/repository"
)

// SenderService turns booking status changes into email and SMS
// notifications. Delivery runs in the background; a lost notification never
// fails a booking operation.
type SenderService struct {
	users     repository.UserRepository
	locations *repository.LocationRepository
}

func NewSenderService(users repository.UserRepository, locations *repository.LocationRepository) *SenderService {
	return &SenderService{users: users, locations: locations}
}

func (s *SenderService) BookingStatusChanged(b db.Booking) {
	go s.send(b)
}

func (s *SenderService) send(b db.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.users.GetByID(ctx, b.UserID)
	if err != nil {
		log.Printf("notification for booking %s skipped, user lookup failed: %v", b.ID, err)
		return
	}
	locationName := b.LocationID
	if loc, err := s.locations.GetByID(ctx, b.LocationID); err == nil {
		locationName = loc.Name
	}

	subject := fmt.Sprintf("Your ParkSpot booking is %s", b.Status)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour %s parking booking at %s is %s.\n\n"+
			"Booking ID: %s\n\n"+
			"Thank you for choosing ParkSpot.",
		user.Name, b.VehicleType, locationName, b.Status, b.ID,
	)
	if err := SendEmailWithSendGrid(user.Email, user.Name, subject, body); err != nil {
		log.Printf("ALERT: email for booking %s failed: %v", b.ID, err)
	}

	if user.Phone == "" {
		return
	}
	sms := fmt.Sprintf("ParkSpot: your booking at %s is %s. Details in your email.", locationName, b.Status)
	if err := SendSMS(user.Phone, sms); err != nil {
		log.Printf("ALERT: SMS for booking %s failed: %v", b.ID, err)
	}
}
