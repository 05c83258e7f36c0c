package sqlitemigrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyRecordsAppliedFiles(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"0001_campaigns.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE campaigns(id TEXT PRIMARY KEY);"),
		},
		"0002_events.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE events(seq INTEGER PRIMARY KEY);"),
		},
	}

	if err := Apply(context.Background(), db, migrations); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	if got := countLedgerRows(t, db); got != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", got)
	}
	if !tableExists(t, db, "campaigns") || !tableExists(t, db, "events") {
		t.Fatal("expected migrated tables to exist")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := openInMemoryDB(t)

	migrations := fstest.MapFS{
		"0001_campaigns.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE campaigns(id TEXT PRIMARY KEY);"),
		},
	}

	if err := Apply(context.Background(), db, migrations); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if err := Apply(context.Background(), db, migrations); err != nil {
		t.Fatalf("replay should be a no-op: %v", err)
	}

	if got := countLedgerRows(t, db); got != 1 {
		t.Fatalf("expected single ledger row after replay, got %d", got)
	}
}

func TestApplyDoesNotRecordFailedFile(t *testing.T) {
	db := openInMemoryDB(t)

	bad := fstest.MapFS{
		"0001_campaigns.sql": &fstest.MapFile{
			Data: []byte("CREAT table campaigns(id TEXT);"),
		},
	}
	if err := Apply(context.Background(), db, bad); err == nil {
		t.Fatal("expected bad migration to fail")
	}
	if got := countLedgerRows(t, db); got != 0 {
		t.Fatalf("expected failed migration to stay unrecorded, got %d rows", got)
	}

	fixed := fstest.MapFS{
		"0001_campaigns.sql": &fstest.MapFile{
			Data: []byte("CREATE TABLE campaigns(id TEXT PRIMARY KEY);"),
		},
	}
	if err := Apply(context.Background(), db, fixed); err != nil {
		t.Fatalf("apply fixed migration: %v", err)
	}
	if got := countLedgerRows(t, db); got != 1 {
		t.Fatalf("expected fixed migration to be recorded, got %d rows", got)
	}
}

func openInMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	})
	return db
}

func countLedgerRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var value int
	row := db.QueryRow("SELECT COUNT(*) FROM schema_migrations")
	if err := row.Scan(&value); err != nil {
		t.Fatalf("count ledger rows: %v", err)
	}
	return value
}

func tableExists(t *testing.T, db *sql.DB, tableName string) bool {
	t.Helper()
	var name string
	row := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", tableName)
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return false
		}
		t.Fatalf("check table exists: %v", err)
	}
	return name == tableName
}
