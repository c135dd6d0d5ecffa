package model

import (
	"fmt"
	"time"
)

// User is an account holder: an item owner or a drop-off staff member.
type User struct {
	ID                    string    `json:"userId"`
	Email                 string    `json:"email"`
	PasswordHash          string    `json:"-"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	Phone                 string    `json:"phone"`
	EmergencyContactName  string    `json:"emergencyContactName"`
	EmergencyContactPhone string    `json:"emergencyContactPhone"`
	Role                  string    `json:"userType"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Roles.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// Password length bounds. bcrypt only hashes the first 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleStaff
}

// ValidatePassword checks the password policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &ValidationError{Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)}
	}
	if len(password) > MaxPasswordBytes {
		return &ValidationError{Message: fmt.Sprintf("password must be at most %d bytes", MaxPasswordBytes)}
	}
	return nil
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
