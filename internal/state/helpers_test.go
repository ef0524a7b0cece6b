package state_test

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func bumpSchemaVersion(t *testing.T, path string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec("UPDATE schema_version SET version = version + 100"); err != nil {
		t.Fatalf("bump schema version: %v", err)
	}
}
