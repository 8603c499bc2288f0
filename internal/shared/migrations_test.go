package shared

import (
	"testing"
)

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	for _, table := range []string{"tokens", "conversions", "conversion_tracks", "sequences"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist: %v", table, err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if count == 0 {
		t.Error("expected recorded migrations")
	}

	// A second run is a no-op.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("repeated RunMigrations: %v", err)
	}
	var again int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&again); err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if again != count {
		t.Errorf("expected %d recorded migrations after rerun, got %d", count, again)
	}
}

func TestRollbackMigration(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration: %v", err)
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'tokens'").Scan(&name)
	if err == nil {
		t.Error("expected tokens table to be dropped")
	}

	if err := RollbackMigration(db); err == nil {
		t.Error("expected an error with nothing left to rollback")
	}
}

func TestStripComments(t *testing.T) {
	input := "CREATE TABLE t ( -- trailing comment\n-- full line comment\nid TEXT\n)"
	got := stripComments(input)

	if got != "CREATE TABLE t (\nid TEXT\n)" {
		t.Errorf("unexpected output %q", got)
	}
}
