package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

// CreateMessage persists a message with email_sent unset.
func CreateMessage(ctx context.Context, db *db.DB, m *model.Message) (*model.Message, error) {
	saved := *m
	saved.ID = newID()
	saved.EmailSent = false
	saved.CreatedAt = now()

	_, err := db.ExecContext(ctx,
		`INSERT INTO messages (id, from_user_id, to_user_id, tag_id, subject, body, email_sent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		saved.ID, saved.FromUserID, saved.ToUserID, nullString(saved.TagID),
		saved.Subject, saved.Body, false, saved.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}
	return &saved, nil
}

// MarkMessageEmailSent records that an email copy was delivered.
func MarkMessageEmailSent(ctx context.Context, db *db.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE messages SET email_sent = ? WHERE id = ?`, true, id,
	)
	if err != nil {
		return fmt.Errorf("marking message email sent: %w", err)
	}
	return nil
}

// ListInbox returns messages addressed to userID, newest first, with the
// sender's name and the referenced item name.
func ListInbox(ctx context.Context, db *db.DB, userID string, opts ListOptions) ([]model.Message, error) {
	query := `SELECT m.id, m.from_user_id, m.to_user_id, m.tag_id, m.subject, m.body,
	                 m.email_sent, m.created_at,
	                 u.first_name, u.last_name, t.item_name
	          FROM messages m
	          JOIN users u ON u.id = m.from_user_id
	          LEFT JOIN tags t ON t.id = m.tag_id
	          WHERE m.to_user_id = ?
	          ORDER BY m.created_at DESC`
	args := []any{userID}
	limit, limitArgs := opts.clause()
	query += limit
	args = append(args, limitArgs...)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		var tagID, itemName sql.NullString
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.ToUserID, &tagID, &m.Subject, &m.Body,
			&m.EmailSent, &m.CreatedAt, &m.FromFirstName, &m.FromLastName, &itemName); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.TagID = tagID.String
		m.ItemName = itemName.String
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
