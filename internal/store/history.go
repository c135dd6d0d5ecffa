package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateStatusChange appends an entry to the status audit log.
func CreateStatusChange(ctx context.Context, db *db.DB, c *model.StatusChange) (*model.StatusChange, error) {
	saved := *c
	saved.ID = newID()
	saved.ChangedAt = now()

	_, err := db.ExecContext(ctx,
		`INSERT INTO status_changes (id, tag_id, staff_id, old_status, new_status, notes, changed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.TagID, nullString(saved.StaffID), nullString(saved.OldStatus),
		saved.NewStatus, nullString(saved.Notes), saved.ChangedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("recording status change: %w", err)
	}
	return &saved, nil
}

// ListStatusChanges returns a tag's status history, newest first.
func ListStatusChanges(ctx context.Context, db *db.DB, tagID string) ([]model.StatusChange, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.tag_id, c.staff_id, c.old_status, c.new_status, c.notes, c.changed_at,
		        u.first_name, u.last_name
		 FROM status_changes c
		 LEFT JOIN users u ON u.id = c.staff_id
		 WHERE c.tag_id = ?
		 ORDER BY c.changed_at DESC`, tagID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing status changes: %w", err)
	}
	defer rows.Close()

	var changes []model.StatusChange
	for rows.Next() {
		var c model.StatusChange
		var staffID, oldStatus, notes, firstName, lastName sql.NullString
		if err := rows.Scan(&c.ID, &c.TagID, &staffID, &oldStatus, &c.NewStatus, &notes, &c.ChangedAt,
			&firstName, &lastName); err != nil {
			return nil, fmt.Errorf("scanning status change: %w", err)
		}
		c.StaffID = staffID.String
		c.OldStatus = oldStatus.String
		c.Notes = notes.String
		c.StaffFirstName = firstName.String
		c.StaffLastName = lastName.String
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

// GetStatistics counts records per table and tags per status.
func GetStatistics(ctx context.Context, db *db.DB) (*model.Statistics, error) {
	stats := &model.Statistics{ByStatus: make(map[string]int)}

	counts := []struct {
		table string
		dest  *int
	}{
		{"users", &stats.Users},
		{"tags", &stats.Tags},
		{"locations", &stats.Locations},
		{"scans", &stats.Scans},
		{"messages", &stats.Messages},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	for _, s := range model.TagStatuses {
		stats.ByStatus[s] = 0
	}

	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tags GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting tags by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning status count: %w", err)
		}
		stats.ByStatus[status] = n
	}
	return stats, rows.Err()
}
