package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/geo"
	"github.com/erazemk/najdeno/internal/model"
)

const locationColumns = `id, staff_id, name, address, phone, latitude, longitude, created_at`

// CreateLocation inserts a drop-off location.
func CreateLocation(ctx context.Context, db *db.DB, l *model.Location) (*model.Location, error) {
	id := newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO locations (id, staff_id, name, address, phone, latitude, longitude, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, l.StaffID, l.Name, l.Address, l.Phone, nullFloat(l.Latitude), nullFloat(l.Longitude), now(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating location: %w", err)
	}

	return GetLocation(ctx, db, id)
}

// GetLocation returns a location by ID.
func GetLocation(ctx context.Context, db *db.DB, id string) (*model.Location, error) {
	l, err := scanLocation(db.QueryRowContext(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting location: %w", err)
	}
	return l, nil
}

// ListLocations returns locations, optionally only those run by staffID.
func ListLocations(ctx context.Context, db *db.DB, staffID string) ([]model.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations`
	var args []any
	if staffID != "" {
		query += ` WHERE staff_id = ?`
		args = append(args, staffID)
	}
	query += ` ORDER BY created_at`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

// NearbyLocations returns locations within radiusKm of origin, closest
// first, with Distance set. The distance is computed by the database
// through haversine_km. Locations without coordinates never match.
func NearbyLocations(ctx context.Context, db *db.DB, origin geo.Point, radiusKm float64) ([]model.Location, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+locationColumns+`,
		        haversine_km(?, ?, latitude, longitude) AS distance
		 FROM locations
		 WHERE latitude IS NOT NULL AND longitude IS NOT NULL
		   AND haversine_km(?, ?, latitude, longitude) <= ?
		 ORDER BY distance ASC`,
		origin.Lat, origin.Lng, origin.Lat, origin.Lng, radiusKm,
	)
	if err != nil {
		return nil, fmt.Errorf("searching nearby locations: %w", err)
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		var l model.Location
		var lat, lng sql.NullFloat64
		var distance float64
		if err := rows.Scan(&l.ID, &l.StaffID, &l.Name, &l.Address, &l.Phone, &lat, &lng, &l.CreatedAt, &distance); err != nil {
			return nil, fmt.Errorf("scanning location: %w", err)
		}
		l.Latitude = floatPtr(lat)
		l.Longitude = floatPtr(lng)
		l.Distance = &distance
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func scanLocation(row rowScanner) (*model.Location, error) {
	l := &model.Location{}
	var lat, lng sql.NullFloat64
	if err := row.Scan(&l.ID, &l.StaffID, &l.Name, &l.Address, &l.Phone, &lat, &lng, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.Latitude = floatPtr(lat)
	l.Longitude = floatPtr(lng)
	return l, nil
}
