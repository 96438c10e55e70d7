package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"parkspot/internal/db"
	"parkspot/internal/service"
)

const defaultNearbyRadiusMeters = 5000

type LocationHandler struct {
	Service *service.LocationService
}

func NewLocationHandler(svc *service.LocationService) *LocationHandler {
	return &LocationHandler{Service: svc}
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request: " + err.Error()})
		return
	}
	loc := db.ParkingLocation{
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	for _, s := range req.Slots {
		vt, err := db.ParseVehicleType(s.VehicleType)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		loc.Slots = append(loc.Slots, db.SlotCapacity{
			VehicleType: vt,
			TotalSpaces: s.TotalSpaces,
			PriceCents:  s.PriceCents,
		})
	}
	if err := h.Service.CreateLocation(r.Context(), &loc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLocationResponse(loc))
}

func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.Service.ListLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponses(locations))
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Service.GetLocation(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponse(*loc))
}

func (h *LocationHandler) SearchLocations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query parameter 'q' is required"})
		return
	}
	locations, err := h.Service.SearchLocations(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponses(locations))
}

func (h *LocationHandler) NearbyLocations(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "lat and lng are required"})
		return
	}
	radius := float64(defaultNearbyRadiusMeters)
	if v := r.URL.Query().Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "radius must be a positive number of meters"})
			return
		}
		radius = parsed
	}
	locations, err := h.Service.NearbyLocations(r.Context(), lat, lng, radius)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocationResponses(locations))
}

func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req LocationRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request: " + err.Error()})
		return
	}
	loc := db.ParkingLocation{
		ID:        mux.Vars(r)["id"],
		Name:      req.Name,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.Service.UpdateLocation(r.Context(), &loc); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location updated"})
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteLocation(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Location deleted"})
}

func (h *LocationHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	slots, err := h.Service.GetAvailability(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSlotPoolResponses(slots))
}

func (h *LocationHandler) ResizeSlotPool(w http.ResponseWriter, r *http.Request) {
	vt, err := db.ParseVehicleType(mux.Vars(r)["vehicle_type"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req ResizeSlotPoolRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.Service.ResizeSlotPool(r.Context(), mux.Vars(r)["id"], vt, req.TotalSpaces, req.PriceCents); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Slot pool updated"})
}
