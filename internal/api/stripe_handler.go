package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"parkspot/internal/apperr"
	"parkspot/internal/service"
)

// StripeWebhookHandler is the payment collaborator's entry point: it turns
// verified Stripe events into the two outcomes the reservation service
// understands, confirm and cancel.
type StripeWebhookHandler struct {
	WebhookSecret string
	Reservations  *service.ReservationService
}

func NewStripeWebhookHandler(webhookSecret string, reservations *service.ReservationService) *StripeWebhookHandler {
	return &StripeWebhookHandler{WebhookSecret: webhookSecret, Reservations: reservations}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		sess, ok := h.parseSession(w, event.Data.Raw)
		if !ok {
			return
		}
		err := h.Reservations.ConfirmBySession(r.Context(), sess.ID)
		// A duplicate delivery hits an already-confirmed booking; that is
		// not worth a retry from Stripe.
		if err != nil && !errors.Is(err, apperr.ErrInvalidStateTransition) {
			log.Printf("Error confirming booking for session %s: %v", sess.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "checkout.session.expired":
		sess, ok := h.parseSession(w, event.Data.Raw)
		if !ok {
			return
		}
		err := h.Reservations.ExpirePaymentSession(r.Context(), sess.ID)
		if err != nil && !errors.Is(err, apperr.ErrInvalidStateTransition) {
			log.Printf("Error expiring booking for session %s: %v", sess.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	default:
		log.Printf("Ignoring stripe event type %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
}

func (h *StripeWebhookHandler) parseSession(w http.ResponseWriter, raw json.RawMessage) (*stripe.CheckoutSession, bool) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(raw, &sess); err != nil || sess.ID == "" {
		log.Printf("Error parsing checkout.session payload: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	return &sess, true
}
