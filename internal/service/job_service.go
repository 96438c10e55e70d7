package service

import (
	"context"
	"log"
	"time"
)

// JobService is the cron-driven sweeper. It funnels stale bookings back
// through the reservation service so their slots are released on the same
// path as a user-initiated cancel or complete.
type JobService struct {
	Reservations *ReservationService
	PendingTTL   time.Duration
	MaxStay      time.Duration
}

func NewJobService(reservations *ReservationService, pendingTTL, maxStay time.Duration) *JobService {
	return &JobService{Reservations: reservations, PendingTTL: pendingTTL, MaxStay: maxStay}
}

// Sweep cancels pending bookings whose payment never arrived and completes
// confirmed bookings that overstayed.
func (s *JobService) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cancelled, err := s.Reservations.CancelExpiredPending(ctx, s.PendingTTL)
	if err != nil {
		log.Printf("Cron Job: expiry sweep failed: %v", err)
	} else if cancelled > 0 {
		log.Printf("Cron Job: cancelled %d expired pending bookings", cancelled)
	}

	completed, err := s.Reservations.CompleteOverstayed(ctx, s.MaxStay)
	if err != nil {
		log.Printf("Cron Job: overstay sweep failed: %v", err)
	} else if completed > 0 {
		log.Printf("Cron Job: completed %d overstayed bookings", completed)
	}
}
