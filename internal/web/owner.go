package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// userMessage turns a service error into text for a flash message.
func userMessage(err error) string {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, model.ErrNotFound):
		return "Not found."
	case errors.Is(err, model.ErrConflict):
		return "Already exists."
	default:
		slog.Error("request failed", "error", err)
		return "Something went wrong, try again."
	}
}

// OwnerDashboard handles GET /owner.
func (s *Server) OwnerDashboard(w http.ResponseWriter, r *http.Request, sess *Session) {
	tags, err := s.Tracking.ListTags(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("failed to list tags", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	inbox, err := s.Relay.Inbox(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("failed to list inbox", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "owner.html", &struct {
		PageData
		Tags  []model.Tag
		Inbox []model.Message
	}{
		PageData: page(r, "My items", sess),
		Tags:     tags,
		Inbox:    inbox,
	})
}

// OwnerCreateTag handles POST /owner/tags.
func (s *Server) OwnerCreateTag(w http.ResponseWriter, r *http.Request, sess *Session) {
	tag, err := s.Tracking.CreateTag(r.Context(), sess.UserID, r.FormValue("itemName"), r.FormValue("itemDescription"))
	if err != nil {
		redirectFlash(w, r, "/owner", "err", userMessage(err))
		return
	}
	redirectFlash(w, r, "/owner/tags/"+tag.ID, "ok", "Tag created. Write "+tag.Code+" on your item.")
}

// ownedTag loads a tag and checks that the session user owns it.
func (s *Server) ownedTag(w http.ResponseWriter, r *http.Request, sess *Session) (*model.Tag, bool) {
	tag, err := s.Tracking.GetTag(r.Context(), r.PathValue("id"))
	if errors.Is(err, model.ErrNotFound) {
		http.NotFound(w, r)
		return nil, false
	}
	if err != nil {
		slog.Error("failed to get tag", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil, false
	}
	if tag.OwnerID != sess.UserID {
		http.NotFound(w, r)
		return nil, false
	}
	return tag, true
}

// OwnerTagDetail handles GET /owner/tags/{id}.
func (s *Server) OwnerTagDetail(w http.ResponseWriter, r *http.Request, sess *Session) {
	tag, ok := s.ownedTag(w, r, sess)
	if !ok {
		return
	}

	scans, err := s.Tracking.ScanHistory(r.Context(), tag.ID)
	if err != nil {
		slog.Error("failed to list scans", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "owner_tag.html", &struct {
		PageData
		Tag   *model.Tag
		Scans []model.Scan
	}{
		PageData: page(r, tag.ItemName, sess),
		Tag:      tag,
		Scans:    scans,
	})
}

// OwnerTagStatus handles POST /owner/tags/{id}/status.
func (s *Server) OwnerTagStatus(w http.ResponseWriter, r *http.Request, sess *Session) {
	tag, ok := s.ownedTag(w, r, sess)
	if !ok {
		return
	}

	back := "/owner/tags/" + tag.ID
	if _, err := s.Tracking.SetStatus(r.Context(), tag.ID, r.FormValue("status")); err != nil {
		redirectFlash(w, r, back, "err", userMessage(err))
		return
	}
	redirectFlash(w, r, back, "ok", "Status updated.")
}

// OwnerTagPhoto handles POST /owner/tags/{id}/photo.
func (s *Server) OwnerTagPhoto(w http.ResponseWriter, r *http.Request, sess *Session) {
	tag, ok := s.ownedTag(w, r, sess)
	if !ok {
		return
	}
	back := "/owner/tags/" + tag.ID

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		redirectFlash(w, r, back, "err", "File too large or invalid upload.")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		redirectFlash(w, r, back, "err", "Choose a photo to upload.")
		return
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if err != nil {
		redirectFlash(w, r, back, "err", err.Error())
		return
	}

	if err := store.SetTagPhoto(r.Context(), s.DB, tag.ID, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save photo", "error", err)
		redirectFlash(w, r, back, "err", "Could not save the photo.")
		return
	}
	redirectFlash(w, r, back, "ok", "Photo saved.")
}
