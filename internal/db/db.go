package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL backend behind a DB.
type Dialect string

// Supported dialects.
const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB is a storage handle. Queries are written once with ? placeholders
// and rebound for the active dialect, so store code is backend agnostic.
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open opens the backend selected by driver. For SQLite, dsn is a file
// path (or ":memory:"); for PostgreSQL it is a connection URL.
func Open(driver, dsn string) (*DB, error) {
	switch Dialect(driver) {
	case SQLite:
		return OpenSQLite(dsn)
	case Postgres:
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// OpenSQLite opens an embedded SQLite database. Pragmas are passed in the
// DSN so every pooled connection gets them.
func OpenSQLite(path string) (*DB, error) {
	pragmas := []string{
		"journal_mode(WAL)",
		"busy_timeout(5000)",
		"foreign_keys(1)",
		"synchronous(NORMAL)",
	}
	if path == ":memory:" {
		// WAL is meaningless for an in-memory database.
		pragmas = pragmas[1:]
	}

	var q strings.Builder
	q.WriteString("_time_format=sqlite")
	for _, p := range pragmas {
		q.WriteString("&_pragma=")
		q.WriteString(p)
	}

	db, err := sql.Open("sqlite", path+"?"+q.String())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DB{sql: db, dialect: SQLite}, nil
}

// OpenPostgres opens a hosted PostgreSQL database through pgx.
func OpenPostgres(url string) (*DB, error) {
	if url == "" {
		return nil, fmt.Errorf("opening database: empty connection url")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &DB{sql: db, dialect: Postgres}, nil
}

// Dialect returns the backend dialect.
func (d *DB) Dialect() Dialect { return d.dialect }

// Close closes the underlying pool.
func (d *DB) Close() error { return d.sql.Close() }

// PingContext verifies the backend is reachable.
func (d *DB) PingContext(ctx context.Context) error { return d.sql.PingContext(ctx) }

// ExecContext runs a single insert, update or DDL statement.
func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sql.ExecContext(ctx, d.Rebind(query), args...)
}

// QueryRowContext runs a query expected to return at most one row.
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.sql.QueryRowContext(ctx, d.Rebind(query), args...)
}

// QueryContext runs a query returning any number of rows.
func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.sql.QueryContext(ctx, d.Rebind(query), args...)
}

// Rebind rewrites ? placeholders into the dialect's native form.
// Question marks inside single-quoted literals are left alone.
func (d *DB) Rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
