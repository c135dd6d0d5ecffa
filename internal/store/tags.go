package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

const tagColumns = `t.id, t.owner_id, t.code, t.item_name, t.item_description, t.status,
	t.photo_mime, t.created_at, t.updated_at`

// CreateTag inserts a tag with the given code. Status starts as active.
func CreateTag(ctx context.Context, db *db.DB, ownerID, code, itemName, itemDescription string) (*model.Tag, error) {
	id := newID()
	ts := now()
	_, err := db.ExecContext(ctx,
		`INSERT INTO tags (id, owner_id, code, item_name, item_description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ownerID, code, itemName, nullString(itemDescription), model.TagStatusActive, ts, ts,
	)
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}

	return GetTag(ctx, db, id)
}

// GetTag returns a tag by ID.
func GetTag(ctx context.Context, db *db.DB, id string) (*model.Tag, error) {
	tag, err := scanTag(db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting tag: %w", err)
	}
	return tag, nil
}

// TagCodeExists reports whether any tag carries code.
func TagCodeExists(ctx context.Context, db *db.DB, code string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE code = ?`, code,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking tag code: %w", err)
	}
	return count > 0, nil
}

// LookupTag returns the tag with exactly this code merged with its owner's
// contact profile. The match is case-sensitive.
func LookupTag(ctx context.Context, db *db.DB, code string) (*model.TagLookup, error) {
	l := &model.TagLookup{}
	var description, photoMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT `+tagColumns+`,
		        u.email, u.phone, u.first_name, u.last_name,
		        u.emergency_contact_name, u.emergency_contact_phone
		 FROM tags t
		 JOIN users u ON u.id = t.owner_id
		 WHERE t.code = ?`, code,
	).Scan(&l.ID, &l.OwnerID, &l.Code, &l.ItemName, &description, &l.Status,
		&photoMime, &l.CreatedAt, &l.UpdatedAt,
		&l.Email, &l.Phone, &l.FirstName, &l.LastName,
		&l.EmergencyContactName, &l.EmergencyContactPhone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up tag: %w", err)
	}
	l.ItemDescription = description.String
	l.PhotoMime = photoMime.String
	return l, nil
}

// ListOwnerTags returns an owner's tags, newest first.
func ListOwnerTags(ctx context.Context, db *db.DB, ownerID string) ([]model.Tag, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags t WHERE t.owner_id = ? ORDER BY t.created_at DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, *tag)
	}
	return tags, rows.Err()
}

// ListAllTags returns every tag with its owner's name, newest first,
// optionally filtered by status.
func ListAllTags(ctx context.Context, db *db.DB, status string, opts ListOptions) ([]model.AdminItem, error) {
	query := `SELECT ` + tagColumns + `, u.first_name, u.last_name, u.email
	          FROM tags t
	          JOIN users u ON u.id = t.owner_id`
	var args []any
	if status != "" {
		query += ` WHERE t.status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY t.created_at DESC`
	limit, limitArgs := opts.clause()
	query += limit
	args = append(args, limitArgs...)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing all tags: %w", err)
	}
	defer rows.Close()

	var items []model.AdminItem
	for rows.Next() {
		var it model.AdminItem
		var description, photoMime sql.NullString
		if err := rows.Scan(&it.ID, &it.OwnerID, &it.Code, &it.ItemName, &description, &it.Status,
			&photoMime, &it.CreatedAt, &it.UpdatedAt,
			&it.FirstName, &it.LastName, &it.Email); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		it.ItemDescription = description.String
		it.PhotoMime = photoMime.String
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateTagStatus overwrites a tag's status. It reports whether a tag
// with that id existed. No transition rules are enforced here.
func UpdateTagStatus(ctx context.Context, db *db.DB, id, status string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE tags SET status = ?, updated_at = ? WHERE id = ?`,
		status, now(), id,
	)
	if err != nil {
		return false, fmt.Errorf("updating tag status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating tag status: %w", err)
	}
	return n > 0, nil
}

// SetTagPhoto stores a tag's photo.
func SetTagPhoto(ctx context.Context, db *db.DB, id string, photo []byte, mime string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE tags SET photo = ?, photo_mime = ?, updated_at = ? WHERE id = ?`,
		photo, mime, now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting tag photo: %w", err)
	}
	return nil
}

// GetTagPhoto returns a tag's photo and MIME type. Data is nil when the
// tag has no photo.
func GetTagPhoto(ctx context.Context, db *db.DB, id string) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM tags WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting tag photo: %w", err)
	}
	return photo, mime.String, nil
}

func scanTag(row rowScanner) (*model.Tag, error) {
	tag := &model.Tag{}
	var description, photoMime sql.NullString
	err := row.Scan(&tag.ID, &tag.OwnerID, &tag.Code, &tag.ItemName, &description, &tag.Status,
		&photoMime, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		return nil, err
	}
	tag.ItemDescription = description.String
	tag.PhotoMime = photoMime.String
	return tag, nil
}
