package tracking

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/erazemk/najdeno/internal/geo"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// DefaultRadiusKm is the search radius used when none is given.
const DefaultRadiusKm = 5.0

// CreateLocation registers a drop-off location run by l.StaffID.
func (s *Service) CreateLocation(ctx context.Context, l model.Location) (*model.Location, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.Address = strings.TrimSpace(l.Address)
	l.Phone = strings.TrimSpace(l.Phone)
	if l.StaffID == "" {
		return nil, model.Invalid("staffId required")
	}
	if l.Name == "" || l.Address == "" || l.Phone == "" {
		return nil, model.Invalid("name, address and phone required")
	}
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return nil, model.Invalid("latitude and longitude must be given together")
	}
	if l.HasCoordinates() && !(geo.Point{Lat: *l.Latitude, Lng: *l.Longitude}).Valid() {
		return nil, model.Invalid("coordinates out of range")
	}

	staff, err := store.GetUser(ctx, s.DB, l.StaffID)
	if err != nil {
		return nil, err
	}
	if staff == nil {
		return nil, fmt.Errorf("staff: %w", model.ErrNotFound)
	}

	return store.CreateLocation(ctx, s.DB, &l)
}

// ListStaffLocations returns the locations run by staffID.
func (s *Service) ListStaffLocations(ctx context.Context, staffID string) ([]model.Location, error) {
	return store.ListLocations(ctx, s.DB, staffID)
}

// Nearby returns the locations within radiusKm of origin, closest first,
// each with Distance set. Locations without coordinates are skipped.
func (s *Service) Nearby(ctx context.Context, origin geo.Point, radiusKm float64) ([]model.Location, error) {
	if !origin.Valid() {
		return nil, model.Invalid("invalid coordinates")
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 {
		return nil, model.Invalid("invalid radius")
	}

	if s.NearbyInStore {
		return store.NearbyLocations(ctx, s.DB, origin, radiusKm)
	}
	return s.nearbyInMemory(ctx, origin, radiusKm)
}

func (s *Service) nearbyInMemory(ctx context.Context, origin geo.Point, radiusKm float64) ([]model.Location, error) {
	all, err := store.ListLocations(ctx, s.DB, "")
	if err != nil {
		return nil, err
	}

	var within []model.Location
	for _, l := range all {
		if !l.HasCoordinates() {
			continue
		}
		p := geo.Point{Lat: *l.Latitude, Lng: *l.Longitude}
		if !geo.Within(origin, p, radiusKm) {
			continue
		}
		d := geo.Distance(origin, p)
		l.Distance = &d
		within = append(within, l)
	}

	slices.SortStableFunc(within, func(a, b model.Location) int {
		switch {
		case *a.Distance < *b.Distance:
			return -1
		case *a.Distance > *b.Distance:
			return 1
		}
		return 0
	})
	return within, nil
}
