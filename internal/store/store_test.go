package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestAutoMigrateCreatesEventTables(t *testing.T) {
	s := openTestStore(t)
	m := s.orm.Migrator()

	for _, model := range []any{&modelLoadEventRow{}, &inferenceEventRow{}} {
		if !m.HasTable(model) {
			t.Errorf("expected table for %T", model)
		}
	}
	if !m.HasColumn(&modelLoadEventRow{}, "schema_version") {
		t.Error("expected schema_version column on model_load_events")
	}
	if !m.HasIndex(&inferenceEventRow{}, "idx_inference_events_model") {
		t.Error("expected model/operation index on inference_events")
	}

	var tables int
	err := s.DB().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'global_sequence'`).Scan(&tables)
	if err != nil || tables != 1 {
		t.Errorf("expected global_sequence table, got %d (%v)", tables, err)
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendModelLoad(ctx, ModelLoadEventData{Path: "m.json", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryModelLoads(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event after reopen, got %d", len(events))
	}

	// The sequence continues rather than restarting.
	if err := s.EventRepo().AppendModelLoad(ctx, ModelLoadEventData{Path: "m.json", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	events, err = s.EventRepo().QueryModelLoads(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if events[0].Sequence <= events[1].Sequence {
		t.Errorf("sequence did not advance: %d then %d", events[1].Sequence, events[0].Sequence)
	}
}

func TestAppendAndQueryModelLoads(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendModelLoad(ctx, ModelLoadEventData{
		Path:        "model/random_forest_model1.json",
		Checksum:    "abc123",
		Format:      "random_forest",
		Version:     "v1.0.0",
		Schema:      "rf1",
		NumFeatures: 24,
		LatencyMs:   3,
		Success:     true,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	err = repo.AppendModelLoad(ctx, ModelLoadEventData{
		Path:         "model/missing.json",
		Success:      false,
		ErrorMessage: "file does not exist",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	events, err := repo.QueryModelLoads(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Newest first.
	if events[0].Path != "model/missing.json" || events[0].Success {
		t.Errorf("unexpected newest event: %+v", events[0])
	}
	if events[1].NumFeatures != 24 || events[1].Schema != "rf1" || events[1].Version != "v1.0.0" {
		t.Errorf("unexpected oldest event: %+v", events[1])
	}
	if events[1].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestAppendAndQueryInferences(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, op := range []string{"predict", "predict_proba", "predict"} {
		err := repo.AppendInference(ctx, InferenceEventData{
			RequestID: "req-" + string(rune('a'+i)),
			ModelID:   "random_forest@v1.0.0",
			Operation: op,
			LatencyMs: int64(i + 1),
			Success:   true,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, err := repo.QueryInferences(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].RequestID != "req-c" {
		t.Errorf("expected newest first, got %q", all[0].RequestID)
	}

	limited, err := repo.QueryInferences(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 events with limit, got %d", len(limited))
	}

	after, err := repo.QueryInferences(ctx, QueryOpts{After: all[1].Sequence})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 1 || after[0].RequestID != "req-c" {
		t.Errorf("unexpected events after sequence %d: %+v", all[1].Sequence, after)
	}

	future, err := repo.QueryInferences(ctx, QueryOpts{From: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("query from: %v", err)
	}
	if len(future) != 0 {
		t.Errorf("expected no events in the future, got %d", len(future))
	}
}

func TestGlobalSequenceSpansTables(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendModelLoad(ctx, ModelLoadEventData{Path: "m.json", Success: true}); err != nil {
		t.Fatalf("append load: %v", err)
	}
	if err := repo.AppendInference(ctx, InferenceEventData{ModelID: "m", Operation: "predict", Success: true}); err != nil {
		t.Fatalf("append inference: %v", err)
	}

	loads, _ := repo.QueryModelLoads(ctx, QueryOpts{})
	infs, _ := repo.QueryInferences(ctx, QueryOpts{})
	if len(loads) != 1 || len(infs) != 1 {
		t.Fatalf("expected one event per table, got %d and %d", len(loads), len(infs))
	}
	if infs[0].Sequence != loads[0].Sequence+1 {
		t.Errorf("expected shared sequence, got load=%d inference=%d", loads[0].Sequence, infs[0].Sequence)
	}
}

func TestInferenceStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []InferenceEventData{
		{ModelID: "rf@v1", Operation: "predict", LatencyMs: 2, Success: true},
		{ModelID: "rf@v1", Operation: "predict", LatencyMs: 4, Success: true},
		{ModelID: "rf@v1", Operation: "predict", LatencyMs: 6, Success: false, ErrorMessage: "boom"},
		{ModelID: "rf@v1", Operation: "predict_proba", LatencyMs: 1, Success: true},
	}
	for _, e := range events {
		if err := repo.AppendInference(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	stats, err := repo.InferenceStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 stat rows, got %d", len(stats))
	}
	predict := stats[0]
	if predict.Operation != "predict" || predict.Calls != 3 || predict.Failures != 1 || predict.AvgLatencyMs != 4 {
		t.Errorf("unexpected predict stats: %+v", predict)
	}
	if stats[1].Operation != "predict_proba" || stats[1].Calls != 1 || stats[1].Failures != 0 {
		t.Errorf("unexpected predict_proba stats: %+v", stats[1])
	}
}

func TestDefaultDBPathEnv(t *testing.T) {
	want := filepath.Join(t.TempDir(), "nested", "events.db")
	t.Setenv("CKDRISK_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultDBPathXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CKDRISK_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "ckdrisk", "events.db"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
