package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateScan appends a scan event. locationID and scannedBy may be empty.
func CreateScan(ctx context.Context, db *db.DB, tagID, locationID, scannedBy string) (*model.Scan, error) {
	s := &model.Scan{
		ID:         newID(),
		TagID:      tagID,
		LocationID: locationID,
		ScannedBy:  scannedBy,
		ScannedAt:  now(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO scans (id, tag_id, location_id, scanned_by, scanned_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.TagID, nullString(locationID), nullString(scannedBy), s.ScannedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	return s, nil
}

// ListTagScans returns a tag's scan history, newest first, with the
// location name and the scanning staff member's name.
func ListTagScans(ctx context.Context, db *db.DB, tagID string) ([]model.Scan, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT s.id, s.tag_id, s.location_id, s.scanned_by, s.scanned_at,
		        l.name, u.first_name, u.last_name
		 FROM scans s
		 LEFT JOIN locations l ON l.id = s.location_id
		 LEFT JOIN users u ON u.id = s.scanned_by
		 WHERE s.tag_id = ?
		 ORDER BY s.scanned_at DESC`, tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	defer rows.Close()

	var scans []model.Scan
	for rows.Next() {
		var s model.Scan
		var locationID, scannedBy, locationName, firstName, lastName sql.NullString
		if err := rows.Scan(&s.ID, &s.TagID, &locationID, &scannedBy, &s.ScannedAt,
			&locationName, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("scanning scan: %w", err)
		}
		s.LocationID = locationID.String
		s.ScannedBy = scannedBy.String
		s.LocationName = locationName.String
		s.FirstName = firstName.String
		s.LastName = lastName.String
		scans = append(scans, s)
	}
	return scans, rows.Err()
}
