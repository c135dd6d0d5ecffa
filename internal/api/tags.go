package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/tracking"
)

// TagsHandler handles tag endpoints.
type TagsHandler struct {
	Tracking *tracking.Service
}

type createTagRequest struct {
	OwnerID         string `json:"ownerId"`
	ItemName        string `json:"itemName"`
	ItemDescription string `json:"itemDescription"`
}

type statusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// canSeeOwner reports whether the caller may act on ownerID's records.
// Staff see everything; owners see only their own.
func canSeeOwner(claims *auth.Claims, ownerID string) bool {
	return claims.Role == model.RoleStaff || claims.UserID == ownerID
}

// Create handles POST /api/tags/create.
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createTagRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.OwnerID == "" {
		req.OwnerID = claims.UserID
	}
	if !canSeeOwner(claims, req.OwnerID) {
		jsonError(w, http.StatusForbidden, "cannot create tags for another user")
		return
	}

	tag, err := h.Tracking.CreateTag(r.Context(), req.OwnerID, req.ItemName, req.ItemDescription)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{
		"tagId":   tag.ID,
		"tagCode": tag.Code,
		"message": "Tag created successfully",
	})
}

// ListByOwner handles GET /api/tags/{ownerId}.
func (h *TagsHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	ownerID := r.PathValue("ownerId")
	if !canSeeOwner(claims, ownerID) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	tags, err := h.Tracking.ListTags(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	jsonResponse(w, http.StatusOK, tags)
}

// SetStatus handles PUT /api/tags/{tagId}/status. Staff changes are
// written to the audit log; owner changes are not.
func (h *TagsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	tagID := r.PathValue("tagId")

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidTagStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	tag, err := h.Tracking.GetTag(r.Context(), tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !canSeeOwner(claims, tag.OwnerID) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	previous := tag.Status
	if claims.Role == model.RoleStaff {
		_, err = h.Tracking.ChangeStatus(r.Context(), tagID, req.Status, claims.UserID, req.Notes)
	} else {
		previous, err = h.Tracking.SetStatus(r.Context(), tagID, req.Status)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("tag status updated", "tag", tagID, "status", req.Status, "by", claims.UserID)
	jsonResponse(w, http.StatusOK, map[string]string{
		"message":        "Tag status updated",
		"previousStatus": previous,
		"status":         req.Status,
	})
}

// Lookup handles GET /api/tags/lookup/{tagCode}.
func (h *TagsHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	found, err := h.Tracking.Lookup(r.Context(), r.PathValue("tagCode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, found)
}
