// Package tracking implements the tag lifecycle: tag creation, status
// changes, code lookup, scans at drop-off locations and the nearby
// location search.
package tracking

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// CodeLength is the length of every generated tag code.
const CodeLength = 13

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeAttempts bounds retries on a code collision.
const codeAttempts = 5

// Service groups the tracking operations over one database.
type Service struct {
	DB *db.DB
	// ForceFoundOnScan sets a tag to found whenever it is scanned.
	ForceFoundOnScan bool
	// NearbyInStore computes nearby distances in SQL instead of in Go.
	NearbyInStore bool
}

// New returns a service with both flags enabled.
func New(database *db.DB) *Service {
	return &Service{DB: database, ForceFoundOnScan: true, NearbyInStore: true}
}

// CreateTag registers an item for ownerID and assigns it a fresh code.
func (s *Service) CreateTag(ctx context.Context, ownerID, itemName, description string) (*model.Tag, error) {
	itemName = strings.TrimSpace(itemName)
	if ownerID == "" {
		return nil, model.Invalid("ownerId required")
	}
	if itemName == "" {
		return nil, model.Invalid("itemName required")
	}

	owner, err := store.GetUser(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("owner: %w", model.ErrNotFound)
	}

	for range codeAttempts {
		code, err := GenerateCode()
		if err != nil {
			return nil, err
		}
		taken, err := store.TagCodeExists(ctx, s.DB, code)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}

		tag, err := store.CreateTag(ctx, s.DB, ownerID, code, itemName, strings.TrimSpace(description))
		if err != nil {
			return nil, err
		}
		slog.Info("tag created", "tag", tag.ID, "code", tag.Code, "owner", ownerID)
		return tag, nil
	}
	return nil, fmt.Errorf("could not allocate a unique tag code after %d attempts", codeAttempts)
}

// GenerateCode returns a random code of CodeLength characters from
// [A-Z0-9].
func GenerateCode() (string, error) {
	size := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(CodeLength)
	for range CodeLength {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generating tag code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ListTags returns an owner's tags, newest first.
func (s *Service) ListTags(ctx context.Context, ownerID string) ([]model.Tag, error) {
	return store.ListOwnerTags(ctx, s.DB, ownerID)
}

// GetTag returns a tag or ErrNotFound.
func (s *Service) GetTag(ctx context.Context, tagID string) (*model.Tag, error) {
	tag, err := store.GetTag(ctx, s.DB, tagID)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, model.ErrNotFound
	}
	return tag, nil
}

// SetStatus overwrites a tag's status and returns the previous one. Any
// status may follow any other; only membership in the enum is checked.
func (s *Service) SetStatus(ctx context.Context, tagID, status string) (string, error) {
	if !model.ValidTagStatus(status) {
		return "", model.Invalid("invalid status")
	}

	tag, err := s.GetTag(ctx, tagID)
	if err != nil {
		return "", err
	}

	ok, err := store.UpdateTagStatus(ctx, s.DB, tagID, status)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", model.ErrNotFound
	}
	slog.Info("tag status changed", "tag", tagID, "from", tag.Status, "to", status)
	return tag.Status, nil
}

// ChangeStatus sets the status and appends an audit entry attributed to
// staffID.
func (s *Service) ChangeStatus(ctx context.Context, tagID, status, staffID, notes string) (*model.StatusChange, error) {
	old, err := s.SetStatus(ctx, tagID, status)
	if err != nil {
		return nil, err
	}
	return store.CreateStatusChange(ctx, s.DB, &model.StatusChange{
		TagID:     tagID,
		StaffID:   staffID,
		OldStatus: old,
		NewStatus: status,
		Notes:     strings.TrimSpace(notes),
	})
}

// LogStatusChange appends an audit entry as reported by the caller
// without touching the tag.
func (s *Service) LogStatusChange(ctx context.Context, c model.StatusChange) (*model.StatusChange, error) {
	if c.TagID == "" {
		return nil, model.Invalid("tagId required")
	}
	if !model.ValidTagStatus(c.NewStatus) {
		return nil, model.Invalid("invalid status")
	}
	if c.OldStatus != "" && !model.ValidTagStatus(c.OldStatus) {
		return nil, model.Invalid("invalid previous status")
	}
	if _, err := s.GetTag(ctx, c.TagID); err != nil {
		return nil, err
	}
	return store.CreateStatusChange(ctx, s.DB, &c)
}

// Lookup finds a tag by its exact code together with the owner's
// contact details.
func (s *Service) Lookup(ctx context.Context, code string) (*model.TagLookup, error) {
	if code == "" {
		return nil, model.Invalid("tag code required")
	}
	found, err := store.LookupTag(ctx, s.DB, code)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, model.ErrNotFound
	}
	return found, nil
}

// RecordScan appends a scan for tagID and, when ForceFoundOnScan is set,
// marks the tag found. The scan is kept even if the status update fails.
func (s *Service) RecordScan(ctx context.Context, tagID, locationID, staffID string) (*model.Scan, error) {
	if tagID == "" {
		return nil, model.Invalid("tagId required")
	}
	if _, err := s.GetTag(ctx, tagID); err != nil {
		return nil, err
	}
	if locationID != "" {
		loc, err := store.GetLocation(ctx, s.DB, locationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("location: %w", model.ErrNotFound)
		}
	}

	scan, err := store.CreateScan(ctx, s.DB, tagID, locationID, staffID)
	if err != nil {
		return nil, err
	}
	slog.Info("tag scanned", "tag", tagID, "location", locationID, "staff", staffID)

	if s.ForceFoundOnScan {
		if _, err := store.UpdateTagStatus(ctx, s.DB, tagID, model.TagStatusFound); err != nil {
			return scan, err
		}
	}
	return scan, nil
}

// ScanHistory returns a tag's scans, newest first.
func (s *Service) ScanHistory(ctx context.Context, tagID string) ([]model.Scan, error) {
	return store.ListTagScans(ctx, s.DB, tagID)
}

// ItemHistory returns a tag's status audit log, newest first.
func (s *Service) ItemHistory(ctx context.Context, tagID string) ([]model.StatusChange, error) {
	return store.ListStatusChanges(ctx, s.DB, tagID)
}

// AllItems lists every tag with its owner, optionally filtered by status.
func (s *Service) AllItems(ctx context.Context, status string) ([]model.AdminItem, error) {
	if status != "" && !model.ValidTagStatus(status) {
		return nil, model.Invalid("invalid status")
	}
	return store.ListAllTags(ctx, s.DB, status, store.ListOptions{})
}

// Statistics returns system-wide counts.
func (s *Service) Statistics(ctx context.Context) (*model.Statistics, error) {
	return store.GetStatistics(ctx, s.DB)
}
