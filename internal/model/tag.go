package model

import (
	"slices"
	"time"
)

// Tag is a registered item carrying a human-enterable lookup code.
type Tag struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"ownerId"`
	Code            string    `json:"tagCode"`
	ItemName        string    `json:"itemName"`
	ItemDescription string    `json:"itemDescription,omitempty"`
	Status          string    `json:"status"`
	PhotoMime       string    `json:"photoMime,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Tag statuses.
const (
	TagStatusActive    = "active"
	TagStatusLost      = "lost"
	TagStatusFound     = "found"
	TagStatusPickedUp  = "picked-up"
	TagStatusDiscarded = "discarded"
)

// TagStatuses lists every status in lifecycle order.
var TagStatuses = []string{
	TagStatusActive,
	TagStatusLost,
	TagStatusFound,
	TagStatusPickedUp,
	TagStatusDiscarded,
}

// ValidTagStatus reports whether status is one of the five lifecycle states.
// Any state may move to any other; only membership is checked.
func ValidTagStatus(status string) bool {
	return slices.Contains(TagStatuses, status)
}

// TagLookup is a tag merged with its owner's contact profile, as shown to
// finders and staff.
type TagLookup struct {
	Tag
	Email                 string `json:"email"`
	Phone                 string `json:"phone"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
}

// AdminItem is a tag with its owner's name, for the staff overview.
type AdminItem struct {
	Tag
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
