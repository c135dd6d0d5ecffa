package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/najdeno/internal/geo"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/tracking"
)

// FindPage handles GET /find, the public page for finders. It looks up a
// tag by ?code= and searches drop-off points near ?lat=&lng=.
func (s *Server) FindPage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := &struct {
		PageData
		Code      string
		Item      *model.TagLookup
		Lat       string
		Lng       string
		Radius    string
		Searched  bool
		Locations []model.Location
	}{
		PageData: page(r, "Found something?", nil),
		Code:     strings.TrimSpace(q.Get("code")),
		Lat:      q.Get("lat"),
		Lng:      q.Get("lng"),
		Radius:   q.Get("radius"),
	}
	if sess, err := s.loadSession(r.Context(), r); err == nil {
		data.Session = sess
	}

	if data.Code != "" {
		item, err := s.Tracking.Lookup(r.Context(), data.Code)
		switch {
		case errors.Is(err, model.ErrNotFound):
			data.Error = "No item is registered with code " + data.Code + "."
		case err != nil:
			data.Error = userMessage(err)
		default:
			data.Item = item
		}
	}

	if data.Lat != "" || data.Lng != "" {
		if msg := s.findNearby(r, data.Lat, data.Lng, data.Radius, &data.Locations); msg != "" {
			data.Error = msg
		} else {
			data.Searched = true
		}
	}

	s.Templates.Render(w, "find.html", data)
}

func (s *Server) findNearby(r *http.Request, latStr, lngStr, radiusStr string, out *[]model.Location) string {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return "Latitude must be a number."
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return "Longitude must be a number."
	}
	radius := tracking.DefaultRadiusKm
	if radiusStr != "" {
		if radius, err = strconv.ParseFloat(radiusStr, 64); err != nil {
			return "Radius must be a number."
		}
	}

	locations, err := s.Tracking.Nearby(r.Context(), geo.Point{Lat: lat, Lng: lng}, radius)
	if err != nil {
		return userMessage(err)
	}
	*out = locations
	return ""
}
