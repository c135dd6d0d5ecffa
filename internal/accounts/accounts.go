// Package accounts handles signup and credential checks.
package accounts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Email                 string `json:"email"`
	Password              string `json:"password"`
	FirstName             string `json:"firstName"`
	LastName              string `json:"lastName"`
	Phone                 string `json:"phone"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	Role                  string `json:"userType"`
}

// Signup validates input, hashes the password and creates the user.
func Signup(ctx context.Context, database *db.DB, in SignupInput) (*model.User, error) {
	email := normalizeEmail(in.Email)
	required := []struct{ name, value string }{
		{"email", email},
		{"password", in.Password},
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"phone", in.Phone},
		{"emergencyContactName", in.EmergencyContactName},
		{"emergencyContactPhone", in.EmergencyContactPhone},
		{"userType", in.Role},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, model.Invalid("missing required field: " + f.name)
		}
	}
	if !model.ValidRole(in.Role) {
		return nil, model.Invalid("userType must be owner or staff")
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	existing, err := store.GetUserByEmail(ctx, database, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, model.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := store.CreateUser(ctx, database, &model.User{
		Email:                 email,
		PasswordHash:          string(hash),
		FirstName:             strings.TrimSpace(in.FirstName),
		LastName:              strings.TrimSpace(in.LastName),
		Phone:                 strings.TrimSpace(in.Phone),
		EmergencyContactName:  strings.TrimSpace(in.EmergencyContactName),
		EmergencyContactPhone: strings.TrimSpace(in.EmergencyContactPhone),
		Role:                  in.Role,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("user signed up", "user", user.ID, "role", user.Role)
	return user, nil
}

// Login checks credentials and returns the matching user.
func Login(ctx context.Context, database *db.DB, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.Invalid("email and password required")
	}

	user, err := store.GetUserByEmail(ctx, database, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login failed", "email", email)
		return nil, model.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces a user's password after checking the current one.
func ChangePassword(ctx context.Context, database *db.DB, userID, current, next string) error {
	if current == "" || next == "" {
		return model.Invalid("current and new password required")
	}
	if err := model.ValidatePassword(next); err != nil {
		return err
	}

	user, err := store.GetUser(ctx, database, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return model.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return model.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	return store.UpdateUserPassword(ctx, database, userID, string(hash))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
