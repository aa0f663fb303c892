package history_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"shipit/internal/history"
	"shipit/internal/testsupport"
)

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if err := store.BeginRun(ctx, history.Run{ID: "run-1", Root: cfg.Paths.RootDir}); err != nil {
		t.Fatalf("BeginRun failed: %v", err)
	}
	if err := store.RecordAttempt(ctx, history.Attempt{
		RunID: "run-1", Folder: "My Cool App", Identity: "my-cool-app",
		Stage: "version_control", Status: "succeeded", Duration: 1500 * time.Millisecond,
	}); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}
	if err := store.RecordAttempt(ctx, history.Attempt{
		RunID: "run-1", Folder: "My Cool App", Identity: "my-cool-app",
		Stage: "host_a", Status: "failed", ErrorKind: "external_tool", ErrorMessage: "build failed",
	}); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}
	if err := store.RecordFolder(ctx, history.FolderResult{
		RunID: "run-1", Folder: "My Cool App", Identity: "my-cool-app", State: "partially_done",
	}); err != nil {
		t.Fatalf("RecordFolder failed: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", history.Counts{Total: 1, Partial: 1}); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Counts.Partial != 1 || runs[0].FinishedAt.IsZero() {
		t.Fatalf("unexpected runs: %#v", runs)
	}

	attempts, err := store.Attempts(ctx, "run-1")
	if err != nil {
		t.Fatalf("Attempts failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}
	if attempts[0].Duration != 1500*time.Millisecond || attempts[0].ErrorKind != "" {
		t.Fatalf("unexpected first attempt: %#v", attempts[0])
	}
	if attempts[1].ErrorMessage != "build failed" {
		t.Fatalf("unexpected second attempt: %#v", attempts[1])
	}

	folders, err := store.Folders(ctx, "run-1")
	if err != nil || len(folders) != 1 || folders[0].State != "partially_done" {
		t.Fatalf("unexpected folders: %#v %v", folders, err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := store.BeginRun(ctx, history.Run{ID: id, Root: "/r", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order: %#v", runs)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	_ = store.Close()

	db, err := sql.Open("sqlite", cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := history.Open(cfg.Paths.HistoryDB); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}
