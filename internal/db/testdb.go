package db

import "testing"

// NewTestDB returns an empty in-memory SQLite database with the schema
// and haversine_km available. It is closed when the test ends.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(); err != nil {
			t.Errorf("closing test database: %v", err)
		}
	})

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("applying schema: %v", err)
	}
	return database
}
