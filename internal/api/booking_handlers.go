package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"parkspot/internal/auth"
	"parkspot/internal/db"
	"parkspot/internal/service"
)

type BookingHandler struct {
	Service *service.ReservationService
}

func NewBookingHandler(svc *service.ReservationService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

// CreateBooking reserves a slot for the authenticated user and returns the
// pending booking together with the payment checkout URL.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request: " + err.Error()})
		return
	}
	vt, err := db.ParseVehicleType(req.VehicleType)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	booking, checkoutURL, err := h.Service.CreateBooking(r.Context(), auth.UserID(r), req.LocationID, vt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(*booking, checkoutURL))
}

func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Service.ListUserBookings(r.Context(), auth.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b, ""))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Service.GetBooking(r.Context(), mux.Vars(r)["id"], auth.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(*booking, ""))
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CancelBooking(r.Context(), mux.Vars(r)["id"], auth.UserID(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking cancelled"})
}

// CompleteBooking is called when the visit ends. The route is deliberately
// unauthenticated to match the existing product behaviour; see DESIGN.md.
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CompleteBooking(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking completed"})
}
