package db

import "testing"

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("first EnsureSchema: %v", err)
	}
	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	var version int
	if err := database.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("reading user_version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("expected schema version %d, got %d", SchemaVersion, version)
	}
}

func TestEnsureSchemaCreatesAllTables(t *testing.T) {
	database := NewTestDB(t)

	tables := []string{"items", "gallery", "works", "proxies", "images", "legacy_store", "settings"}
	for _, table := range tables {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("expected table %q to exist: %v", table, err)
		}
	}
}

func TestEnsureSchemaUpgradeKeepsData(t *testing.T) {
	database, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	// Simulate a version 1 database: collections only, no images table.
	if _, err := database.Exec(baseSchema); err != nil {
		t.Fatalf("creating v1 schema: %v", err)
	}
	if _, err := database.Exec("PRAGMA user_version = 1"); err != nil {
		t.Fatalf("setting v1: %v", err)
	}
	if _, err := database.Exec(`INSERT INTO works (id, data) VALUES ('w1', '{"id":"w1"}')`); err != nil {
		t.Fatalf("seeding v1 data: %v", err)
	}

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("upgrading schema: %v", err)
	}

	var count int
	if err := database.QueryRow(`SELECT COUNT(*) FROM works`).Scan(&count); err != nil {
		t.Fatalf("counting works: %v", err)
	}
	if count != 1 {
		t.Errorf("expected existing row to survive upgrade, got %d rows", count)
	}

	var name string
	if err := database.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'images'`,
	).Scan(&name); err != nil {
		t.Errorf("expected images table after upgrade: %v", err)
	}
}
