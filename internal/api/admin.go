package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/tracking"
)

// AdminHandler serves the staff overview endpoints.
type AdminHandler struct {
	Tracking *tracking.Service
}

type logStatusRequest struct {
	TagID     string `json:"tagId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	Notes     string `json:"notes"`
}

// AllItems handles GET /api/admin/all-items[?status=].
func (h *AdminHandler) AllItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Tracking.AllItems(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []model.AdminItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// LogStatusChange handles POST /api/admin/log-status-change.
func (h *AdminHandler) LogStatusChange(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req logStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	change, err := h.Tracking.LogStatusChange(r.Context(), model.StatusChange{
		TagID:     req.TagID,
		StaffID:   claims.UserID,
		OldStatus: req.OldStatus,
		NewStatus: req.NewStatus,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, change)
}

// ItemHistory handles GET /api/admin/item-history/{tagId}.
func (h *AdminHandler) ItemHistory(w http.ResponseWriter, r *http.Request) {
	tagID := r.PathValue("tagId")
	if _, err := h.Tracking.GetTag(r.Context(), tagID); err != nil {
		writeError(w, r, err)
		return
	}

	changes, err := h.Tracking.ItemHistory(r.Context(), tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if changes == nil {
		changes = []model.StatusChange{}
	}
	jsonResponse(w, http.StatusOK, changes)
}

// Statistics handles GET /api/admin/statistics.
func (h *AdminHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Tracking.Statistics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}
