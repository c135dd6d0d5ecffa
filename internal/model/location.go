package model

import "time"

// Location is a staffed drop-off point.
type Location struct {
	ID        string    `json:"id"`
	StaffID   string    `json:"staffId"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// Distance in kilometers from the query point (nearby search only).
	Distance *float64 `json:"distance,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l *Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}
