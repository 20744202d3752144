package database

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// TestInitializeSQLite tests that initialization creates the schema.
func TestInitializeSQLite(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	if db == nil {
		t.Fatal("Expected non-nil database")
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='executions'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check executions table: %v", err)
	}
	if count != 1 {
		t.Error("Table executions not found")
	}
}

// TestInitializeSQLite_WALMode tests that WAL journaling is enabled.
func TestInitializeSQLite_WALMode(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	var journalMode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode='wal', got '%s'", journalMode)
	}
}

// TestInitializeSQLite_SingleConnection tests the single connection pool.
func TestInitializeSQLite_SingleConnection(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("InitializeSQLite failed: %v", err)
	}
	defer db.Close()

	stats := db.Stats()
	if stats.OpenConnections != 1 {
		t.Errorf("Expected 1 open connection, got %d", stats.OpenConnections)
	}
}

// TestInitializeSQLite_ReopenExisting tests that data survives a reopen.
func TestInitializeSQLite_ReopenExisting(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	db1, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("First InitializeSQLite failed: %v", err)
	}
	_, err = db1.Exec(`INSERT INTO executions
		(id, board_rows, board_cols, steps, step_count, seed, timestamp, loop_detected, stop_reason, summary_json)
		VALUES ('reopen-1', 10, 10, 5, 5, 42, '2025-09-14T10:30:00Z', 0, 'completed', '{}')`)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	db1.Close()

	db2, err := InitializeSQLite(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Second InitializeSQLite failed: %v", err)
	}
	defer db2.Close()

	var count int
	err = db2.QueryRow("SELECT COUNT(*) FROM executions").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query executions: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 execution after reopen, got %d", count)
	}
}
