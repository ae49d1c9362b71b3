package history_test

import (
	"context"
	"testing"
	"time"

	"ytcourier/internal/history"
	"ytcourier/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(testsupport.NewConfig(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runID, err := store.RecordRun(ctx, history.Run{
		ChatID:     42,
		UserID:     7,
		Quality:    "720",
		Requested:  2,
		Succeeded:  1,
		Failed:     1,
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Items: []history.Item{
			{URL: "https://youtu.be/a", Title: "First", Status: history.ItemDelivered, SizeBytes: 1024},
			{URL: "https://youtu.be/b", Status: history.ItemFailed, Detail: "not found"},
		},
	})
	if err != nil {
		t.Fatalf("record run: %v", err)
	}
	if runID == 0 {
		t.Fatal("expected non-zero run id")
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	run := runs[0]
	if run.ChatID != 42 || run.Quality != "720" || run.Succeeded != 1 || run.Failed != 1 {
		t.Errorf("unexpected run: %+v", run)
	}
	if !run.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, start)
	}
	if len(run.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(run.Items))
	}
	if run.Items[0].Title != "First" || run.Items[0].Status != history.ItemDelivered {
		t.Errorf("unexpected first item: %+v", run.Items[0])
	}
	if run.Items[1].Detail != "not found" {
		t.Errorf("unexpected second item: %+v", run.Items[1])
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		now := time.Now().UTC()
		if _, err := store.RecordRun(ctx, history.Run{
			ChatID:     int64(i),
			Quality:    "480",
			Requested:  1,
			Succeeded:  1,
			StartedAt:  now,
			FinishedAt: now,
		}); err != nil {
			t.Fatalf("record run %d: %v", i, err)
		}
	}

	runs, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ChatID != 4 || runs[2].ChatID != 2 {
		t.Errorf("expected newest-first order, got chat ids %d %d %d", runs[0].ChatID, runs[1].ChatID, runs[2].ChatID)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer second.Close()

	runs, err := second.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty journal, got %d runs", len(runs))
	}
}
