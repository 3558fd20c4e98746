package queue

import (
	"context"
	"testing"

	"pausetrim/internal/testsupport"
	"pausetrim/internal/timeline"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAddAndFetch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "/videos/talk.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.ID == 0 || item.JobID == "" {
		t.Fatalf("item not fully populated: %+v", item)
	}
	if item.Status != StatusPending {
		t.Fatalf("expected pending, got %s", item.Status)
	}

	fetched, err := store.ByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if fetched.SourcePath != "/videos/talk.mp4" {
		t.Fatalf("unexpected source path %q", fetched.SourcePath)
	}
	if fetched.JobID != item.JobID {
		t.Fatalf("job id mismatch: %q vs %q", fetched.JobID, item.JobID)
	}
}

func TestByIDNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ByID(context.Background(), 999); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestUpdateRoundTripsAnalysisResults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "/videos/talk.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	item.Status = StatusAnalyzed
	item.DurationSeconds = 93.5
	if err := item.SetSilences([]timeline.Interval{{Start: 2, End: 5}, {Start: 10, End: 12}}); err != nil {
		t.Fatalf("set silences: %v", err)
	}
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	fetched, err := store.ByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if fetched.Status != StatusAnalyzed || fetched.DurationSeconds != 93.5 {
		t.Fatalf("analysis fields lost: %+v", fetched)
	}
	silences, err := fetched.Silences()
	if err != nil {
		t.Fatalf("silences: %v", err)
	}
	if len(silences) != 2 || silences[1].End != 12 {
		t.Fatalf("unexpected silences: %v", silences)
	}
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "/videos/talk.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	item.Status = Status("sideways")
	if err := store.Update(ctx, item); err == nil {
		t.Fatalf("expected status rejection")
	}
}

func TestNextActionableOrdersOldestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Add(ctx, "/videos/a.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, "/videos/b.mp4", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	next, err := store.NextActionable(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected first item, got %+v", next)
	}

	first.Status = StatusCompleted
	if err := store.Update(ctx, first); err != nil {
		t.Fatalf("update: %v", err)
	}
	next, err = store.NextActionable(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next == nil || next.SourcePath != "/videos/b.mp4" {
		t.Fatalf("expected second item, got %+v", next)
	}
}

func TestNextActionableEmptyQueue(t *testing.T) {
	store := newTestStore(t)
	next, err := store.NextActionable(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next != nil {
		t.Fatalf("expected nil on empty queue, got %+v", next)
	}
}

func TestResetProcessingRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "/videos/talk.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	item.Status = StatusRendering
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := store.ResetProcessing(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	fetched, err := store.ByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if fetched.Status != StatusPlanned {
		t.Fatalf("expected rollback to planned, got %s", fetched.Status)
	}
}

func TestRetryFailed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.Add(ctx, "/videos/talk.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	item.Status = StatusFailed
	item.ErrorMessage = "render exploded"
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("update: %v", err)
	}

	count, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 retried item, got %d", count)
	}
	fetched, err := store.ByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if fetched.Status != StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("retry did not reset item: %+v", fetched)
	}
}

func TestClearByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	done, err := store.Add(ctx, "/videos/a.mp4", "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	done.Status = StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := store.Add(ctx, "/videos/b.mp4", ""); err != nil {
		t.Fatalf("add: %v", err)
	}

	removed, err := store.Clear(ctx, StatusCompleted)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	remaining, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].SourcePath != "/videos/b.mp4" {
		t.Fatalf("unexpected remaining items: %+v", remaining)
	}
}
