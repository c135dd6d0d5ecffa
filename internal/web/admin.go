package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
)

// AdminPage handles GET /staff/admin with an optional ?status= filter.
func (s *Server) AdminPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	status := r.URL.Query().Get("status")

	items, err := s.Tracking.AllItems(r.Context(), status)
	if model.IsValidation(err) {
		redirectFlash(w, r, "/staff/admin", "err", userMessage(err))
		return
	}
	if err != nil {
		slog.Error("failed to list items", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	stats, err := s.Tracking.Statistics(r.Context())
	if err != nil {
		slog.Error("failed to load statistics", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "admin.html", &struct {
		PageData
		Items  []model.AdminItem
		Status string
		Stats  *model.Statistics
		Detail *itemDetail
	}{
		PageData: page(r, "All items", sess),
		Items:    items,
		Status:   status,
		Stats:    stats,
	})
}

type itemDetail struct {
	Tag     *model.Tag
	Scans   []model.Scan
	History []model.StatusChange
}

// AdminItem handles GET /staff/admin/items/{id}.
func (s *Server) AdminItem(w http.ResponseWriter, r *http.Request, sess *Session) {
	tag, err := s.Tracking.GetTag(r.Context(), r.PathValue("id"))
	if errors.Is(err, model.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		slog.Error("failed to get tag", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	scans, err := s.Tracking.ScanHistory(r.Context(), tag.ID)
	if err != nil {
		slog.Error("failed to list scans", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	history, err := s.Tracking.ItemHistory(r.Context(), tag.ID)
	if err != nil {
		slog.Error("failed to list history", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "admin.html", &struct {
		PageData
		Items  []model.AdminItem
		Status string
		Stats  *model.Statistics
		Detail *itemDetail
	}{
		PageData: page(r, tag.ItemName, sess),
		Detail:   &itemDetail{Tag: tag, Scans: scans, History: history},
	})
}

// AdminStatus handles POST /staff/admin/items/{id}/status.
func (s *Server) AdminStatus(w http.ResponseWriter, r *http.Request, sess *Session) {
	id := r.PathValue("id")
	back := "/staff/admin/items/" + id

	_, err := s.Tracking.ChangeStatus(r.Context(), id, r.FormValue("status"), sess.UserID, r.FormValue("notes"))
	if err != nil {
		redirectFlash(w, r, back, "err", userMessage(err))
		return
	}
	redirectFlash(w, r, back, "ok", "Status updated.")
}

// AdminContact handles POST /staff/admin/items/{id}/contact.
func (s *Server) AdminContact(w http.ResponseWriter, r *http.Request, sess *Session) {
	id := r.PathValue("id")
	back := "/staff/admin/items/" + id

	tag, err := s.Tracking.GetTag(r.Context(), id)
	if err != nil {
		redirectFlash(w, r, back, "err", userMessage(err))
		return
	}

	msg, err := s.Relay.Send(r.Context(), relay.SendInput{
		FromUserID: sess.UserID,
		ToUserID:   tag.OwnerID,
		TagID:      tag.ID,
		Subject:    r.FormValue("subject"),
		Body:       r.FormValue("message"),
		EmailCopy:  r.FormValue("emailCopy") != "",
	})
	if err != nil {
		redirectFlash(w, r, back, "err", userMessage(err))
		return
	}

	note := "Message sent."
	if msg.EmailSent {
		note = "Message sent with an email copy."
	}
	redirectFlash(w, r, back, "ok", note)
}
