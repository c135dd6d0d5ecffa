package model

import "time"

// Scan records that a tag was found at a location by a staff member.
type Scan struct {
	ID         string    `json:"id"`
	TagID      string    `json:"tagId"`
	LocationID string    `json:"locationId,omitempty"`
	ScannedBy  string    `json:"scannedBy,omitempty"`
	ScannedAt  time.Time `json:"scannedAt"`

	// Joined fields (not always populated).
	LocationName string `json:"locationName,omitempty"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
}

// StatusChange is an audit entry for a staff-initiated status update.
type StatusChange struct {
	ID        string    `json:"id"`
	TagID     string    `json:"tagId"`
	StaffID   string    `json:"staffId"`
	OldStatus string    `json:"oldStatus,omitempty"`
	NewStatus string    `json:"newStatus"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changedAt"`

	// Joined fields (not always populated).
	StaffFirstName string `json:"staffFirstName,omitempty"`
	StaffLastName  string `json:"staffLastName,omitempty"`
}

// Statistics summarizes the system for the staff overview.
type Statistics struct {
	Users     int            `json:"users"`
	Tags      int            `json:"tags"`
	Locations int            `json:"locations"`
	Scans     int            `json:"scans"`
	Messages  int            `json:"messages"`
	ByStatus  map[string]int `json:"byStatus"`
}
