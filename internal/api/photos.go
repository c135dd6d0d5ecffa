package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/store"
)

// PhotosHandler stores and serves item photos.
type PhotosHandler struct {
	DB *db.DB
}

// Upload handles PUT /api/photos/{tagId}. Only the tag owner may set the
// photo.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	tagID := r.PathValue("tagId")

	tag, err := store.GetTag(r.Context(), h.DB, tagID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tag == nil {
		jsonError(w, http.StatusNotFound, "tag not found")
		return
	}
	if tag.OwnerID != claims.UserID {
		jsonError(w, http.StatusForbidden, "only the owner can change the photo")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if errors.Is(err, imaging.ErrTooLarge) {
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetTagPhoto(r.Context(), h.DB, tagID, photo.Data, photo.MIME); err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "photo uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// Get handles GET /api/photos/{tagId}.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetTagPhoto(r.Context(), h.DB, r.PathValue("tagId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}
