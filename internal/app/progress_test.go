package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"quizmaster/internal/app"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
)

func TestMarkVisitedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tracker := app.NewProgressTracker(store, nil)
	tracker.Load(ctx)

	for _, id := range []int{4, 2, 4, 2} {
		if err := tracker.MarkVisited(ctx, id); err != nil {
			t.Fatalf("mark %d: %v", id, err)
		}
	}
	if got := tracker.Visited(); !reflect.DeepEqual(got, []int{4, 2}) {
		t.Fatalf("expected insertion-ordered [4 2], got %v", got)
	}
	if !tracker.IsVisited(4) || tracker.IsVisited(3) {
		t.Fatalf("unexpected visited flags")
	}

	raw, err := store.Get(ctx, domain.KeyVisited)
	if err != nil || string(raw) != "[4,2]" {
		t.Fatalf("expected persisted [4,2], got %s (%v)", raw, err)
	}

	reloaded := app.NewProgressTracker(store, nil)
	if got := reloaded.Load(ctx); !reflect.DeepEqual(got, []int{4, 2}) {
		t.Fatalf("expected reload to see [4 2], got %v", got)
	}
}

func TestProgressStatsAndOverride(t *testing.T) {
	ctx := context.Background()
	tracker := app.NewProgressTracker(memory.NewStore(), nil)
	tracker.MarkVisited(ctx, 1)
	tracker.MarkVisited(ctx, 2)

	if got := tracker.Stats(5); got != (domain.GridStats{Total: 5, Completed: 2, Remaining: 3}) {
		t.Fatalf("unexpected stats %+v", got)
	}
	if got := tracker.Stats(1); got.Remaining != 0 {
		t.Fatalf("remaining must not go negative, got %d", got.Remaining)
	}
	if tracker.CanOpen(1, false) {
		t.Fatalf("visited question must be blocked without override")
	}
	if !tracker.CanOpen(1, true) || !tracker.CanOpen(3, false) {
		t.Fatalf("override or unvisited question must be openable")
	}
}

func TestProgressResetNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tracker := app.NewProgressTracker(store, nil)
	tracker.MarkVisited(ctx, 8)

	decline := app.ConfirmFunc(func(string) bool { return false })
	if err := tracker.Reset(ctx, decline); !errors.Is(err, domain.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if !tracker.IsVisited(8) {
		t.Fatalf("declined reset must keep progress")
	}

	if err := tracker.Reset(ctx, app.AlwaysConfirm); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(tracker.Visited()) != 0 {
		t.Fatalf("expected empty progress")
	}
	if _, err := store.Get(ctx, domain.KeyVisited); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected visited record removed, got %v", err)
	}
}
