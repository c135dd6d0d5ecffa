package tracking

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/erazemk/najdeno/internal/geo"
	"github.com/erazemk/najdeno/internal/model"
)

func ptr(f float64) *float64 { return &f }

func addLocation(t *testing.T, svc *Service, staffID, name string, lat, lng *float64) *model.Location {
	t.Helper()
	l, err := svc.CreateLocation(context.Background(), model.Location{
		StaffID: staffID, Name: name, Address: name + " 1", Phone: "01",
		Latitude: lat, Longitude: lng,
	})
	if err != nil {
		t.Fatalf("CreateLocation(%s): %v", name, err)
	}
	return l
}

func TestCreateLocationValidation(t *testing.T) {
	svc, _, staff := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		loc  model.Location
	}{
		{"missing name", model.Location{StaffID: staff.ID, Address: "a", Phone: "p"}},
		{"missing staff", model.Location{Name: "n", Address: "a", Phone: "p"}},
		{"half coordinates", model.Location{StaffID: staff.ID, Name: "n", Address: "a", Phone: "p", Latitude: ptr(1)}},
		{"latitude out of range", model.Location{StaffID: staff.ID, Name: "n", Address: "a", Phone: "p", Latitude: ptr(91), Longitude: ptr(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateLocation(ctx, tt.loc); !model.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := svc.CreateLocation(ctx, model.Location{StaffID: "missing", Name: "n", Address: "a", Phone: "p"}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown staff, got %v", err)
	}
}

func TestListStaffLocations(t *testing.T) {
	svc, _, staff := newService(t)
	ctx := context.Background()
	addLocation(t, svc, staff.ID, "One", nil, nil)
	addLocation(t, svc, staff.ID, "Two", ptr(46), ptr(14))

	locs, err := svc.ListStaffLocations(ctx, staff.ID)
	if err != nil {
		t.Fatalf("ListStaffLocations: %v", err)
	}
	if len(locs) != 2 {
		t.Errorf("expected 2 locations, got %d", len(locs))
	}
}

func TestNearbyBoundary(t *testing.T) {
	for _, inStore := range []bool{true, false} {
		svc, _, staff := newService(t)
		svc.NearbyInStore = inStore
		ctx := context.Background()

		origin := addLocation(t, svc, staff.ID, "Origin", ptr(0), ptr(0))
		addLocation(t, svc, staff.ID, "East", ptr(0), ptr(0.1))
		addLocation(t, svc, staff.ID, "Unmapped", nil, nil)

		got, err := svc.Nearby(ctx, geo.Point{}, 11)
		if err != nil {
			t.Fatalf("Nearby(inStore=%v): %v", inStore, err)
		}
		if len(got) != 1 || got[0].ID != origin.ID {
			t.Errorf("inStore=%v: expected only the origin within 11 km, got %d", inStore, len(got))
		}

		zero, _ := svc.Nearby(ctx, geo.Point{}, 0)
		if len(zero) != 1 || *zero[0].Distance != 0 {
			t.Errorf("inStore=%v: expected only the coincident location at radius 0", inStore)
		}

		wide, _ := svc.Nearby(ctx, geo.Point{}, 12)
		if len(wide) != 2 || wide[0].ID != origin.ID {
			t.Errorf("inStore=%v: expected 2 locations sorted by distance, got %d", inStore, len(wide))
		}
	}
}

func TestNearbyPathsAgree(t *testing.T) {
	svc, _, staff := newService(t)
	ctx := context.Background()

	points := []geo.Point{
		{Lat: 46.0569, Lng: 14.5058},
		{Lat: 46.0511, Lng: 14.5051},
		{Lat: 46.0660, Lng: 14.5120},
		{Lat: 46.2389, Lng: 14.3556},
		{Lat: 45.5481, Lng: 13.7302},
	}
	for i, p := range points {
		addLocation(t, svc, staff.ID, string(rune('A'+i)), ptr(p.Lat), ptr(p.Lng))
	}

	origin := geo.Point{Lat: 46.05, Lng: 14.50}
	svc.NearbyInStore = true
	fromStore, err := svc.Nearby(ctx, origin, 100)
	if err != nil {
		t.Fatalf("Nearby store: %v", err)
	}
	svc.NearbyInStore = false
	inMemory, err := svc.Nearby(ctx, origin, 100)
	if err != nil {
		t.Fatalf("Nearby memory: %v", err)
	}

	if len(fromStore) != len(inMemory) {
		t.Fatalf("store returned %d, memory %d", len(fromStore), len(inMemory))
	}
	for i := range fromStore {
		if fromStore[i].ID != inMemory[i].ID {
			t.Errorf("order differs at %d: %s vs %s", i, fromStore[i].Name, inMemory[i].Name)
		}
		a, b := *fromStore[i].Distance, *inMemory[i].Distance
		if math.Abs(a-b) > 1e-6*math.Max(1, math.Abs(b)) {
			t.Errorf("distance differs at %d: %v vs %v", i, a, b)
		}
	}
	for i := 1; i < len(inMemory); i++ {
		if *inMemory[i-1].Distance > *inMemory[i].Distance {
			t.Error("expected ascending distances")
		}
	}
}

func TestNearbyValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Nearby(ctx, geo.Point{}, -1); !model.IsValidation(err) {
		t.Errorf("negative radius: expected validation error, got %v", err)
	}
	if _, err := svc.Nearby(ctx, geo.Point{}, math.NaN()); !model.IsValidation(err) {
		t.Errorf("NaN radius: expected validation error, got %v", err)
	}
	if _, err := svc.Nearby(ctx, geo.Point{Lat: 100}, 5); !model.IsValidation(err) {
		t.Errorf("bad latitude: expected validation error, got %v", err)
	}
	got, err := svc.Nearby(ctx, geo.Point{}, DefaultRadiusKm)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty result on empty table, got %v, %v", got, err)
	}
}
