package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/pdftagdiff/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) (*HistoryDB, func()) {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db, cleanup
}

// newTestRun builds a finished run comparing a.pdf and b.pdf.
func newTestRun(id string, startedAt time.Time) *model.Run {
	run := model.NewRun(id, startedAt, "a.pdf", "b.pdf", []string{"UPS", "SW"})
	run.DocumentA.Hash = "hash-a"
	run.DocumentB.Hash = "hash-b"
	run.RunDir = "output_" + id
	run.Comparison = &model.Comparison{
		DocumentA: run.DocumentA,
		DocumentB: run.DocumentB,
		Tags:      run.Tags,
		Common:    []string{"UPS1"},
		UniqueA:   model.Occurrences{"SW-3": model.NewPageSet(1, 2)},
		UniqueB:   model.Occurrences{"UPS2": model.NewPageSet(4), "SW-9": model.NewPageSet(1)},
	}
	return run
}

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
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false fails for missing database", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	startedAt := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	run := newTestRun("run-1", startedAt)
	run.ReportPath = "output_run-1/comparison_result.txt"
	run.AddAnnotationError("b.pdf", errors.New("broken xref"))

	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	rec, got, err := db.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}

	if !rec.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", rec.StartedAt, startedAt)
	}
	if rec.Doc1 != absPath("a.pdf") || rec.Doc2 != absPath("b.pdf") {
		t.Errorf("documents = %q, %q", rec.Doc1, rec.Doc2)
	}
	if rec.Doc1Hash != "hash-a" || rec.Doc2Hash != "hash-b" {
		t.Errorf("hashes = %q, %q", rec.Doc1Hash, rec.Doc2Hash)
	}
	if len(rec.Tags) != 2 || rec.Tags[0] != "UPS" {
		t.Errorf("Tags = %v", rec.Tags)
	}
	if rec.Unique1 != 1 || rec.Unique2 != 2 || rec.Common != 1 {
		t.Errorf("partition sizes = %d/%d/%d, want 1/2/1", rec.Unique1, rec.Unique2, rec.Common)
	}

	if got.ReportPath != run.ReportPath {
		t.Errorf("ReportPath = %q, want %q", got.ReportPath, run.ReportPath)
	}
	if !got.Comparison.UniqueA.Equal(run.Comparison.UniqueA) {
		t.Errorf("UniqueA = %v, want %v", got.Comparison.UniqueA, run.Comparison.UniqueA)
	}
	if got.AnnotationErrors["b.pdf"] != "broken xref" {
		t.Errorf("AnnotationErrors = %v", got.AnnotationErrors)
	}
	if !got.Failed() {
		t.Error("restored run should report failure")
	}
}

func TestSaveRunStoresErrorMessage(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	run := newTestRun("run-err", time.Now())
	run.Comparison = nil
	run.Error = errors.New("open a.pdf: no such file")

	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	rec, got, err := db.GetRun(ctx, "run-err")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.ErrorMessage != "open a.pdf: no such file" {
		t.Errorf("ErrorMessage = %q", got.ErrorMessage)
	}
	if rec.Unique1 != 0 || rec.Common != 0 {
		t.Errorf("partition sizes should be zero without a comparison: %+v", rec)
	}
	if run.ErrorMessage != "" {
		t.Error("SaveRun() must not modify the caller's run")
	}
}

func TestSaveRunReplacesSameID(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	run := newTestRun("run-1", time.Now())
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	run.RunDir = "output_moved"
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("second SaveRun() error = %v", err)
	}

	runs, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("ListRuns() returned %d runs, want 1", len(runs))
	}
	if runs[0].RunDir != "output_moved" {
		t.Errorf("RunDir = %q, want output_moved", runs[0].RunDir)
	}
}

func TestSaveRunNil(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	if err := db.SaveRun(context.Background(), nil); err == nil {
		t.Error("SaveRun(nil) should fail")
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, _, err := db.GetRun(context.Background(), "nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	db, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		run := newTestRun(id, base.Add(time.Duration(i)*time.Hour))
		if id == "third" {
			run.DocumentB.Path = "c.pdf"
		}
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("SaveRun(%s) error = %v", id, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		want := []string{"third", "second", "first"}
		if len(runs) != len(want) {
			t.Fatalf("ListRuns() returned %d runs, want %d", len(runs), len(want))
		}
		for i, id := range want {
			if runs[i].RunID != id {
				t.Errorf("runs[%d] = %q, want %q", i, runs[i].RunID, id)
			}
		}
	})

	t.Run("limit", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("ListRuns(2) returned %d runs", len(runs))
		}
	})

	t.Run("by document", func(t *testing.T) {
		t.Parallel()

		runs, err := db.ListRunsForDocument(ctx, "c.pdf", 0)
		if err != nil {
			t.Fatalf("ListRunsForDocument() error = %v", err)
		}
		if len(runs) != 1 || runs[0].RunID != "third" {
			t.Errorf("ListRunsForDocument(c.pdf) = %+v", runs)
		}

		runs, err = db.ListRunsForDocument(ctx, "a.pdf", 0)
		if err != nil {
			t.Fatalf("ListRunsForDocument() error = %v", err)
		}
		if len(runs) != 3 {
			t.Errorf("ListRunsForDocument(a.pdf) returned %d runs, want 3", len(runs))
		}
	})

	t.Run("relative and absolute paths match", func(t *testing.T) {
		t.Parallel()

		abs, err := filepath.Abs("c.pdf")
		if err != nil {
			t.Fatal(err)
		}
		for _, path := range []string{abs, "./c.pdf", "sub/../c.pdf"} {
			runs, err := db.ListRunsForDocument(ctx, path, 0)
			if err != nil {
				t.Fatalf("ListRunsForDocument(%s) error = %v", path, err)
			}
			if len(runs) != 1 || runs[0].RunID != "third" {
				t.Errorf("ListRunsForDocument(%s) = %+v", path, runs)
				continue
			}
			if runs[0].Doc2 != abs {
				t.Errorf("stored path = %q, want %q", runs[0].Doc2, abs)
			}
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "RFC3339Nano",
			input: "2024-01-02T03:04:05.123456789Z",
			want:  time.Date(2024, 1, 2, 3, 4, 5, 123456789, time.UTC),
		},
		{
			name:  "SQLite default",
			input: "2024-01-02 03:04:05",
			want:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			name:  "invalid",
			input: "not a time",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
