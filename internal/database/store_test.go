package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/titanicprep/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestReferences tests reference age storage.
func TestReferences(t *testing.T) {
	t.Parallel()

	t.Run("saves and loads in listing order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		records := []model.ReferenceRecord{
			{Name: "ASPLUND, Master Edvin", Age: "3", SourceAge: 3},
			{Name: "ALLISON, Miss Helen", Age: "2", SourceAge: 2, Extra: map[string]string{"Class/Dept": "1st Class Passenger"}},
			{Name: "DEAN, Miss Millvina", Age: "9m", SourceAge: 0},
		}
		n, err := db.SaveReferences(ctx, records)
		if err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 saved, got %d", n)
		}

		got, err := db.LoadReferences(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		want := []model.ReferenceRecord{records[2], records[1], records[0]}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("references mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rescrape replaces page rows", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		first := []model.ReferenceRecord{
			{Name: "A", Age: "5", SourceAge: 5},
			{Name: "B", Age: "5", SourceAge: 5},
			{Name: "C", Age: "6", SourceAge: 6},
		}
		if _, err := db.SaveReferences(ctx, first); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		second := []model.ReferenceRecord{{Name: "A2", Age: "5", SourceAge: 5}}
		if _, err := db.SaveReferences(ctx, second); err != nil {
			t.Fatalf("failed to save: %v", err)
		}

		got, err := db.LoadReferences(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		names := make([]string, len(got))
		for i, r := range got {
			names[i] = r.Name
		}
		if diff := cmp.Diff([]string{"A2", "C"}, names); diff != "" {
			t.Errorf("names mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestImputations tests imputation audit storage.
func TestImputations(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	matches := []model.Match{
		{Dataset: "train", PassengerID: "6", Name: "Moran, Mr. James", MatchedName: "MORAN, Mr James", Score: 97, RawAge: "30", Age: "30"},
		{Dataset: "test", PassengerID: "902", Name: "Ilieff, Mr. Ylio", MatchedName: "ILIEFF, Mr Ylio", Score: 96, RawAge: "32", Age: "32", Tie: true},
	}
	if err := db.SaveImputations(ctx, matches); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	all, err := db.ListImputations(ctx, "")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if diff := cmp.Diff(matches, all); diff != "" {
		t.Errorf("imputations mismatch (-want +got):\n%s", diff)
	}

	test, err := db.ListImputations(ctx, "test")
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(test) != 1 || !test[0].Tie {
		t.Errorf("unexpected filtered result %+v", test)
	}
}

// TestRunSummaries tests run summary storage.
func TestRunSummaries(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	missing, err := db.GetLatestRunSummary(ctx, "prepare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil summary before any run")
	}

	first := model.NewRunSummary("prepare")
	first.StartedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := model.NewRunSummary("prepare")
	second.StartedAt = time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	second.Outputs = []string{"tree_train.csv"}

	for _, s := range []*model.RunSummary{first, second, model.NewRunSummary("scrape")} {
		if _, err := db.SaveRunSummary(ctx, s); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
	}

	latest, err := db.GetLatestRunSummary(ctx, "prepare")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || !latest.StartedAt.Equal(second.StartedAt) {
		t.Errorf("expected latest prepare run, got %+v", latest)
	}

	runs, err := db.ListRuns(ctx)
	if err != nil {
		t.Fatalf("failed to list runs: %v", err)
	}
	if len(runs) != 3 || runs[0].Command != "scrape" {
		t.Errorf("unexpected runs %+v", runs)
	}
	if runs[0].Timestamp.IsZero() {
		t.Error("expected parsed timestamp")
	}
}

// TestParseTimestamp tests timestamp parsing fallbacks.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	if got := parseTimestamp("2026-04-15 02:20:00"); got.Year() != 2026 {
		t.Errorf("unexpected time %v", got)
	}
	if got := parseTimestamp("not a time"); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
}
