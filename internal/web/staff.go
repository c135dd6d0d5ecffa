package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/relay"
)

// StaffDashboard handles GET /staff. With ?code= it also shows the
// matching item and its owner's contact details.
func (s *Server) StaffDashboard(w http.ResponseWriter, r *http.Request, sess *Session) {
	locations, err := s.Tracking.ListStaffLocations(r.Context(), sess.UserID)
	if err != nil {
		slog.Error("failed to list locations", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := &struct {
		PageData
		Locations []model.Location
		Code      string
		Item      *model.TagLookup
	}{
		PageData:  page(r, "Drop-off desk", sess),
		Locations: locations,
		Code:      strings.TrimSpace(r.URL.Query().Get("code")),
	}

	if data.Code != "" {
		item, err := s.Tracking.Lookup(r.Context(), data.Code)
		switch {
		case errors.Is(err, model.ErrNotFound):
			data.Error = "No item with code " + data.Code + "."
		case err != nil:
			data.Error = userMessage(err)
		default:
			data.Item = item
		}
	}

	s.Templates.Render(w, "staff.html", data)
}

// parseCoord parses an optional coordinate form field.
func parseCoord(v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, model.Invalid("coordinates must be numbers")
	}
	return &f, nil
}

// StaffCreateLocation handles POST /staff/locations.
func (s *Server) StaffCreateLocation(w http.ResponseWriter, r *http.Request, sess *Session) {
	lat, err := parseCoord(r.FormValue("latitude"))
	if err != nil {
		redirectFlash(w, r, "/staff", "err", userMessage(err))
		return
	}
	lng, err := parseCoord(r.FormValue("longitude"))
	if err != nil {
		redirectFlash(w, r, "/staff", "err", userMessage(err))
		return
	}

	_, err = s.Tracking.CreateLocation(r.Context(), model.Location{
		StaffID:   sess.UserID,
		Name:      r.FormValue("name"),
		Address:   r.FormValue("address"),
		Phone:     r.FormValue("phone"),
		Latitude:  lat,
		Longitude: lng,
	})
	if err != nil {
		redirectFlash(w, r, "/staff", "err", userMessage(err))
		return
	}
	redirectFlash(w, r, "/staff", "ok", "Location registered.")
}

// StaffScan handles POST /staff/scan. It records the scan, which marks the
// item found, and optionally notifies the owner.
func (s *Server) StaffScan(w http.ResponseWriter, r *http.Request, sess *Session) {
	code := strings.TrimSpace(r.FormValue("code"))
	back := "/staff?code=" + code

	item, err := s.Tracking.Lookup(r.Context(), code)
	if err != nil {
		redirectFlash(w, r, "/staff", "err", userMessage(err))
		return
	}

	locationID := r.FormValue("locationId")
	if _, err := s.Tracking.RecordScan(r.Context(), item.ID, locationID, sess.UserID); err != nil {
		redirectFlash(w, r, "/staff", "err", userMessage(err))
		return
	}

	if r.FormValue("notify") == "" {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	body := strings.TrimSpace(r.FormValue("message"))
	if body == "" {
		body = fmt.Sprintf("Your item %q was handed in. Contact %s to arrange pickup.", item.ItemName, sess.Name)
	}
	msg, err := s.Relay.Send(r.Context(), relay.SendInput{
		FromUserID: sess.UserID,
		ToUserID:   item.OwnerID,
		TagID:      item.ID,
		Subject:    "Your item was found: " + item.ItemName,
		Body:       body,
		EmailCopy:  true,
	})
	if err != nil {
		redirectFlash(w, r, "/staff", "err", "Scan recorded, but the owner was not notified: "+userMessage(err))
		return
	}

	note := "Scan recorded and owner notified."
	if !msg.EmailSent {
		note = "Scan recorded. The owner will see the message in their inbox."
	}
	redirectFlash(w, r, "/staff", "ok", note)
}
