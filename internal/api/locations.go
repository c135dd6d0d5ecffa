package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/geo"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/tracking"
)

// LocationsHandler handles drop-off location endpoints.
type LocationsHandler struct {
	Tracking *tracking.Service
}

type createLocationRequest struct {
	StaffID   string   `json:"staffId"`
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Create handles POST /api/locations/create. The location belongs to the
// calling staff member.
func (h *LocationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StaffID != "" && req.StaffID != claims.UserID {
		jsonError(w, http.StatusForbidden, "cannot create locations for another user")
		return
	}

	loc, err := h.Tracking.CreateLocation(r.Context(), model.Location{
		StaffID:   claims.UserID,
		Name:      req.Name,
		Address:   req.Address,
		Phone:     req.Phone,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{
		"locationId": loc.ID,
		"message":    "Location created successfully",
	})
}

// ListByStaff handles GET /api/locations/staff/{staffId}.
func (h *LocationsHandler) ListByStaff(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Tracking.ListStaffLocations(r.Context(), r.PathValue("staffId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if locs == nil {
		locs = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, locs)
}

// Nearby handles GET /api/locations/nearby?lat=&lng=&radius=.
func (h *LocationsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid or missing lat")
		return
	}
	lng, err := strconv.ParseFloat(q.Get("lng"), 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid or missing lng")
		return
	}
	radius := tracking.DefaultRadiusKm
	if v := q.Get("radius"); v != "" {
		radius, err = strconv.ParseFloat(v, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid radius")
			return
		}
	}

	locs, err := h.Tracking.Nearby(r.Context(), geo.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if locs == nil {
		locs = []model.Location{}
	}
	jsonResponse(w, http.StatusOK, locs)
}
