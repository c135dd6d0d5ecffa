package api

import (
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/tracking"
)

// ScansHandler handles scan endpoints.
type ScansHandler struct {
	Tracking *tracking.Service
}

type recordScanRequest struct {
	TagID      string `json:"tagId"`
	LocationID string `json:"locationId"`
}

// Record handles POST /api/scans/record. The caller is recorded as the
// scanning staff member.
func (h *ScansHandler) Record(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req recordScanRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scan, err := h.Tracking.RecordScan(r.Context(), req.TagID, req.LocationID, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{
		"scanId":  scan.ID,
		"message": "Scan recorded successfully",
	})
}

// History handles GET /api/scans/{tagId}.
func (h *ScansHandler) History(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	tagID := r.PathValue("tagId")

	tag, err := h.Tracking.GetTag(r.Context(), tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !canSeeOwner(claims, tag.OwnerID) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	scans, err := h.Tracking.ScanHistory(r.Context(), tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if scans == nil {
		scans = []model.Scan{}
	}
	jsonResponse(w, http.StatusOK, scans)
}
