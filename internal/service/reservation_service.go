package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"parkspot/internal/apperr"
	"parkspot/internal/db"
)

// CapacityStore is the slot counter store. TryReserve and Release must be
// atomic at the storage layer; the service never reads availability and
// writes it back in separate steps.
type CapacityStore interface {
	TryReserve(ctx context.Context, locationID string, vt db.VehicleType) error
	Release(ctx context.Context, locationID string, vt db.VehicleType) error
	GetAvailability(ctx context.Context, locationID string) ([]db.SlotCapacity, error)
}

// BookingLedger is the system of record for booking state. Transition must
// be conditional on the current status so each legal step succeeds at most
// once.
type BookingLedger interface {
	InsertPending(ctx context.Context, b *db.Booking) error
	Transition(ctx context.Context, bookingID string, from []db.BookingStatus, to db.BookingStatus) error
	GetByID(ctx context.Context, bookingID string) (*db.Booking, error)
	GetByStripeSession(ctx context.Context, sessionID string) (*db.Booking, error)
	SetStripeSession(ctx context.Context, bookingID, sessionID string) error
	ListByUser(ctx context.Context, userID string) ([]db.Booking, error)
	ListStale(ctx context.Context, status db.BookingStatus, cutoff time.Time) ([]string, error)
}

// PaymentProvider creates checkout sessions and refunds them. The service
// treats payment as a black box that eventually reports paid or not paid
// through the webhook.
type PaymentProvider interface {
	CreateCheckoutSession(amountCents int64, bookingID, customerEmail string) (url, sessionID string, err error)
	RefundBySession(sessionID string) error
}

// Notifier is told about user-visible status changes. Implementations must
// not block; failures are theirs to log.
type Notifier interface {
	BookingStatusChanged(b db.Booking)
}

// UserDirectory resolves the opaque user identity to contact details.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*db.User, error)
}

// ReservationService drives the booking state machine and keeps the capacity
// counters consistent with the ledger. The two stores are not updated in one
// transaction, so every path that holds a reserved slot without a matching
// active ledger row must release it before returning.
type ReservationService struct {
	capacity CapacityStore
	ledger   BookingLedger
	payments PaymentProvider
	users    UserDirectory
	notifier Notifier
}

func NewReservationService(capacity CapacityStore, ledger BookingLedger, payments PaymentProvider, users UserDirectory, notifier Notifier) *ReservationService {
	return &ReservationService{
		capacity: capacity,
		ledger:   ledger,
		payments: payments,
		users:    users,
		notifier: notifier,
	}
}

var activeStatuses = []db.BookingStatus{db.StatusPending, db.StatusConfirmed}

// CreateBooking reserves a slot and writes a pending booking. On any failure
// after the slot was claimed the claim is rolled back, so a failed create
// never leaks capacity. The returned URL is the payment checkout page, empty
// when no payment provider is configured.
func (s *ReservationService) CreateBooking(ctx context.Context, userID, locationID string, vt db.VehicleType) (*db.Booking, string, error) {
	amount, err := s.slotPrice(ctx, locationID, vt)
	if err != nil {
		return nil, "", err
	}

	if err := s.capacity.TryReserve(ctx, locationID, vt); err != nil {
		return nil, "", err
	}

	booking := &db.Booking{
		ID:          uuid.NewString(),
		UserID:      userID,
		LocationID:  locationID,
		VehicleType: vt,
		AmountCents: amount,
	}
	if err := s.ledger.InsertPending(ctx, booking); err != nil {
		s.releaseSlot(ctx, locationID, vt, booking.ID)
		return nil, "", err
	}

	checkoutURL, err := s.startPayment(ctx, booking)
	if err != nil {
		// The pending row exists, so undo through the normal cancel path:
		// terminal state first, then the slot.
		if terr := s.ledger.Transition(ctx, booking.ID, []db.BookingStatus{db.StatusPending}, db.StatusCancelled); terr != nil {
			log.Printf("rollback of booking %s failed: %v", booking.ID, terr)
		} else {
			s.releaseSlot(ctx, locationID, vt, booking.ID)
		}
		return nil, "", err
	}
	return booking, checkoutURL, nil
}

func (s *ReservationService) startPayment(ctx context.Context, booking *db.Booking) (string, error) {
	if s.payments == nil {
		return "", nil
	}
	email := ""
	if s.users != nil {
		if u, err := s.users.GetByID(ctx, booking.UserID); err == nil {
			email = u.Email
		}
	}
	url, sessionID, err := s.payments.CreateCheckoutSession(int64(booking.AmountCents), booking.ID, email)
	if err != nil {
		return "", fmt.Errorf("error creating checkout session for booking %s: %w", booking.ID, err)
	}
	if err := s.ledger.SetStripeSession(ctx, booking.ID, sessionID); err != nil {
		return "", err
	}
	booking.StripeSessionID = sessionID
	return url, nil
}

// ConfirmBooking marks a pending booking paid. Capacity is untouched: the
// slot was claimed at creation and only cancel or complete return it. A
// stale or duplicate payment callback surfaces as ErrInvalidStateTransition.
func (s *ReservationService) ConfirmBooking(ctx context.Context, bookingID string) error {
	if err := s.ledger.Transition(ctx, bookingID, []db.BookingStatus{db.StatusPending}, db.StatusConfirmed); err != nil {
		return err
	}
	s.notify(ctx, bookingID)
	return nil
}

// ConfirmBySession confirms the booking tied to a checkout session. Called
// by the payment webhook.
func (s *ReservationService) ConfirmBySession(ctx context.Context, sessionID string) error {
	booking, err := s.ledger.GetByStripeSession(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.ConfirmBooking(ctx, booking.ID)
}

// CancelBooking cancels an active booking and returns its slot. When
// requestingUserID is non-empty it must match the booking owner. A booking
// already in a terminal state yields ErrInvalidStateTransition and the
// capacity counters are left alone — the conditional transition is what
// guarantees at most one release per booking.
func (s *ReservationService) CancelBooking(ctx context.Context, bookingID, requestingUserID string) error {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if requestingUserID != "" && booking.UserID != requestingUserID {
		return apperr.ErrForbidden
	}
	wasConfirmed := booking.Status == db.StatusConfirmed

	if err := s.ledger.Transition(ctx, bookingID, activeStatuses, db.StatusCancelled); err != nil {
		return err
	}
	s.releaseSlot(ctx, booking.LocationID, booking.VehicleType, bookingID)

	if wasConfirmed && booking.StripeSessionID != "" && s.payments != nil {
		if err := s.payments.RefundBySession(booking.StripeSessionID); err != nil {
			log.Printf("refund for cancelled booking %s failed: %v", bookingID, err)
		}
	}
	s.notify(ctx, bookingID)
	return nil
}

// ExpirePaymentSession cancels the pending booking behind an expired
// checkout session. Confirmed bookings are never touched here; a session
// that expires after the payment callback already confirmed is stale.
func (s *ReservationService) ExpirePaymentSession(ctx context.Context, sessionID string) error {
	booking, err := s.ledger.GetByStripeSession(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.cancelIfStillIn(ctx, booking.ID, db.StatusPending)
}

// CompleteBooking marks a confirmed booking finished and returns its slot.
// Completing an unpaid (pending) booking is rejected.
func (s *ReservationService) CompleteBooking(ctx context.Context, bookingID string) error {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.ledger.Transition(ctx, bookingID, []db.BookingStatus{db.StatusConfirmed}, db.StatusCompleted); err != nil {
		return err
	}
	s.releaseSlot(ctx, booking.LocationID, booking.VehicleType, bookingID)
	return nil
}

// GetBooking returns a booking after checking ownership.
func (s *ReservationService) GetBooking(ctx context.Context, bookingID, requestingUserID string) (*db.Booking, error) {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if requestingUserID != "" && booking.UserID != requestingUserID {
		return nil, apperr.ErrForbidden
	}
	return booking, nil
}

func (s *ReservationService) ListUserBookings(ctx context.Context, userID string) ([]db.Booking, error) {
	return s.ledger.ListByUser(ctx, userID)
}

// CancelExpiredPending cancels pending bookings that never saw a payment
// within ttl. Run by the cron sweeper. Bookings that got confirmed between
// the scan and the cancel are skipped by the conditional transition.
func (s *ReservationService) CancelExpiredPending(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.ledger.ListStale(ctx, db.StatusPending, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for _, id := range ids {
		if err := s.cancelIfStillIn(ctx, id, db.StatusPending); err != nil {
			log.Printf("expiry sweep: booking %s not cancelled: %v", id, err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// CompleteOverstayed completes confirmed bookings older than maxStay so
// their slots eventually come back even if the operator never closes them
// out.
func (s *ReservationService) CompleteOverstayed(ctx context.Context, maxStay time.Duration) (int, error) {
	ids, err := s.ledger.ListStale(ctx, db.StatusConfirmed, time.Now().UTC().Add(-maxStay))
	if err != nil {
		return 0, err
	}
	completed := 0
	for _, id := range ids {
		if err := s.CompleteBooking(ctx, id); err != nil {
			log.Printf("overstay sweep: booking %s not completed: %v", id, err)
			continue
		}
		completed++
	}
	return completed, nil
}

// cancelIfStillIn transitions a booking out of exactly one expected state.
// Used by system-initiated cancels where racing with a concurrent confirm
// must lose, not clobber.
func (s *ReservationService) cancelIfStillIn(ctx context.Context, bookingID string, from db.BookingStatus) error {
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.ledger.Transition(ctx, bookingID, []db.BookingStatus{from}, db.StatusCancelled); err != nil {
		return err
	}
	s.releaseSlot(ctx, booking.LocationID, booking.VehicleType, bookingID)
	s.notify(ctx, bookingID)
	return nil
}

func (s *ReservationService) slotPrice(ctx context.Context, locationID string, vt db.VehicleType) (int, error) {
	slots, err := s.capacity.GetAvailability(ctx, locationID)
	if err != nil {
		return 0, err
	}
	for _, slot := range slots {
		if slot.VehicleType == vt {
			return slot.PriceCents, nil
		}
	}
	return 0, apperr.ErrLocationNotFound
}

// releaseSlot returns a claimed slot to the pool. A failure here means the
// counters have drifted from the ledger, so it is logged at full volume
// rather than propagated into a response the caller can do nothing about.
func (s *ReservationService) releaseSlot(ctx context.Context, locationID string, vt db.VehicleType, bookingID string) {
	if err := s.capacity.Release(ctx, locationID, vt); err != nil {
		log.Printf("ALERT: slot release failed for booking %s (location %s, type %s): %v", bookingID, locationID, vt, err)
	}
}

func (s *ReservationService) notify(ctx context.Context, bookingID string) {
	if s.notifier == nil {
		return
	}
	booking, err := s.ledger.GetByID(ctx, bookingID)
	if err != nil {
		log.Printf("notify: could not load booking %s: %v", bookingID, err)
		return
	}
	s.notifier.BookingStatusChanged(*booking)
}
