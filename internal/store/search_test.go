package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rcliao/biosynth/internal/model"
)

func TestSearch_Basic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, testParams(model.DomainEEG, "sleep_stage1", 1, 128, 128))
	s.Put(ctx, testParams(model.DomainEEG, "sleep_stage2", 1, 128, 128))
	hrv := testParams(model.DomainECG, "normal_sinus", 1, 128, 128)
	hrv.Features = model.FeatureSet{HRV: []model.Stat{{Name: "HRV_RMSSD", Value: 12}}}
	s.Put(ctx, hrv)

	results, err := s.Search(ctx, SearchParams{Query: "sleep"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].MatchField != "pattern" {
		t.Errorf("expected pattern match, got %q", results[0].MatchField)
	}

	// Search by feature name
	results, err = s.Search(ctx, SearchParams{Query: "RMSSD"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].MatchField != "features" {
		t.Fatalf("expected 1 feature match, got %+v", results)
	}

	// Domain filter
	results, err = s.Search(ctx, SearchParams{Query: "normal", Domain: model.DomainEEG})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 eeg results matching class, got %d", len(results))
	}

	// No results
	results, err = s.Search(ctx, SearchParams{Query: "javascript"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0 results, got %d", len(results))
	}
}

func TestSearch_DeletedExcluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sess, _ := s.Put(ctx, testParams(model.DomainEEG, "hypsarrhythmia", 1, 128, 128))
	s.Rm(ctx, RmParams{ID: sess.ID})

	results, err := s.Search(ctx, SearchParams{Query: "hyps"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected 0, got %d", len(results))
	}
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	s.Put(ctx, testParams(model.DomainEEG, "flat_eeg", 2, 128, 128))
	s.Put(ctx, testParams(model.DomainEEG, "flat_eeg", 2, 128, 128))
	gone, _ := s.Put(ctx, testParams(model.DomainECG, "stemi", 1, 128, 128))
	s.Rm(ctx, RmParams{ID: gone.ID})

	stats, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalSessions != 3 || stats.ActiveSessions != 2 {
		t.Fatalf("expected 3 total / 2 active, got %d / %d", stats.TotalSessions, stats.ActiveSessions)
	}
	if stats.TotalSegments != 5 {
		t.Errorf("expected 5 segments, got %d", stats.TotalSegments)
	}
	if stats.SampleBytes != 5*128*8 {
		t.Errorf("expected %d sample bytes, got %d", 5*128*8, stats.SampleBytes)
	}
	if len(stats.Patterns) != 1 || stats.Patterns[0].Count != 2 {
		t.Fatalf("expected 1 active pattern with 2 sessions, got %+v", stats.Patterns)
	}
	if stats.DBSizeBytes == 0 {
		t.Fatal("expected non-zero db size")
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, _ := s.Put(ctx, testParams(model.DomainEEG, "rem_sleep", 1, 128, 128))
	s.Put(ctx, testParams(model.DomainECG, "lbbb", 1, 128, 128))

	all, err := s.ExportAll(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2, got %d", len(all))
	}
	if all[0].ID != first.ID {
		t.Errorf("expected oldest first")
	}
	if all[0].Seed != first.Seed {
		t.Errorf("expected seed %d in export, got %d", first.Seed, all[0].Seed)
	}

	ecgOnly, _ := s.ExportAll(ctx, model.DomainECG)
	if len(ecgOnly) != 1 || ecgOnly[0].Pattern != "lbbb" {
		t.Fatalf("expected only the ecg session, got %+v", ecgOnly)
	}
}
