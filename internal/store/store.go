// Package store holds the SQL for every entity. Functions take the
// storage handle explicitly and work unchanged on SQLite and PostgreSQL.
// Lookups return nil, nil when nothing matches.
package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// ListOptions bounds a fetch-many query. A zero Limit means no limit.
type ListOptions struct {
	Limit int
}

func (o ListOptions) clause() (string, []any) {
	if o.Limit <= 0 {
		return "", nil
	}
	return ` LIMIT ?`, []any{o.Limit}
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

// nullString maps "" to SQL NULL for optional references.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
