package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ramonehamilton/commander-consistency/internal/mtga/capability"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/optimize"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/score"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/consistency/simulate"
	"github.com/ramonehamilton/commander-consistency/internal/mtga/deck"
	"github.com/ramonehamilton/commander-consistency/internal/storage/repository"
)

// setupTestDB opens a migrated database in a temporary directory.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "reports.db")))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrationManager_UpAndDown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migration-test.db")

	mgr, err := NewMigrationManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if v, _, err := mgr.Version(); err != nil || v != 0 {
		t.Fatalf("fresh Version() = %d, %v; want 0, nil", v, err)
	}
	if err := mgr.Up(); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	version, dirty, err := mgr.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Database is in dirty state after migrations")
	}
	if version != 2 {
		t.Errorf("version = %d, want 2", version)
	}

	if err := mgr.Up(); err != nil {
		t.Errorf("second Up should be a no-op, got %v", err)
	}
	if err := mgr.Steps(-1); err != nil {
		t.Fatalf("Failed to step down: %v", err)
	}
	status, err := mgr.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Version != 1 || status.Dirty {
		t.Errorf("status after step down = %+v, want version 1 clean", status)
	}
}

func TestSQLiteURL(t *testing.T) {
	if got := sqliteURL("/tmp/reports.db"); got != "sqlite:///tmp/reports.db" {
		t.Errorf("sqliteURL = %q", got)
	}
	if got := sqliteURL("reports.db"); got != "sqlite://reports.db" {
		t.Errorf("sqliteURL relative = %q", got)
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	db := setupTestDB(t)

	columns := []string{
		"id", "deck_hash", "commander", "total_score", "tier", "seed",
		"mulligan_iterations", "early_turn_iterations", "mulligan_policy",
		"primary_issue", "payload", "created_at",
	}
	for _, col := range columns {
		var name string
		err := db.Conn().QueryRow(
			`SELECT name FROM pragma_table_info('analysis_reports') WHERE name = ?`, col,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			t.Errorf("Column %q does not exist in analysis_reports", col)
		} else if err != nil {
			t.Errorf("Failed to query column %q: %v", col, err)
		}
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := Open(&Config{}); err == nil {
		t.Error("expected error for empty path")
	}
}

func sampleReport() *consistency.Report {
	mv := 4.0
	return &consistency.Report{
		DeckHash: "hash-1",
		Commander: deck.Commander{
			Name:          "Tatyova",
			ColorIdentity: capability.Green | capability.Blue,
			ManaValue:     &mv,
		},
		Seed:        12345678901234567890,
		GeneratedAt: time.Date(2026, 6, 1, 8, 30, 0, 0, time.UTC),
		Mulligan: &simulate.MulliganResult{
			Iterations:       10000,
			Seed:             12345678901234567890,
			Policy:           simulate.Vancouver,
			KeptAt:           []float64{70, 20, 7, 3},
			AverageMulligans: 0.43,
		},
		EarlyTurn: &simulate.EarlyTurnResult{Iterations: 8000},
		Score:     score.Breakdown{Total: 81.2, Tier: score.TierGood},
		Diagnosis: optimize.Report{PrimaryIssue: optimize.IssueMissedLands},
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	saved, err := db.SaveReport(ctx, sampleReport())
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("saved report has no ID")
	}

	record, err := db.Reports().Latest(ctx, "hash-1")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if record.ID != saved.ID {
		t.Errorf("Latest ID = %s, want %s", record.ID, saved.ID)
	}
	if record.MulliganPolicy != "vancouver" || record.MulliganIterations != 10000 || record.EarlyTurnIterations != 8000 {
		t.Errorf("record = %+v", record)
	}
	if record.Tier != "Good" || record.TotalScore != 81.2 || record.PrimaryIssue != optimize.IssueMissedLands {
		t.Errorf("record = %+v", record)
	}
	if !record.CreatedAt.Equal(sampleReport().GeneratedAt) {
		t.Errorf("CreatedAt = %v, want report time", record.CreatedAt)
	}

	report, err := LoadReport(record)
	if err != nil {
		t.Fatalf("LoadReport failed: %v", err)
	}
	if report.Commander.ColorIdentity != capability.Green|capability.Blue {
		t.Errorf("commander colors = %v", report.Commander.ColorIdentity)
	}
	if report.Seed != 12345678901234567890 {
		t.Errorf("Seed = %d", report.Seed)
	}
	if report.Mulligan.Kept(3) != 3 {
		t.Errorf("Kept(3) = %v, want 3", report.Mulligan.Kept(3))
	}
}

func TestLoadReportBadPayload(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	saved, err := db.SaveReport(ctx, sampleReport())
	if err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	saved.Payload = []byte("{not json")
	if _, err := LoadReport(saved); err == nil {
		t.Error("expected decode error")
	}

	if err := db.Reports().Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.Reports().Latest(ctx, "hash-1"); !errors.Is(err, repository.ErrReportNotFound) {
		t.Errorf("Latest after delete = %v, want ErrReportNotFound", err)
	}
}
