package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/trackside/livetracker/internal/domain/lineup"
	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/infrastructure/repository/memory"
	"github.com/trackside/livetracker/internal/platform/logging"
)

func snapshotEvents(matchID string, details ...string) []matchevent.Event {
	out := make([]matchevent.Event, 0, len(details))
	for idx, detail := range details {
		out = append(out, matchevent.Event{
			MatchID: matchID,
			Seq:     idx,
			Minute:  10 + idx,
			Type:    matchevent.TypeGoal,
			Detail:  detail,
			TeamID:  "team-home",
			Primary: lineup.Registered(fmt.Sprintf("player-%d", idx)),
		})
	}
	return out
}

func TestEventReconciler_InsertThenIdempotent(t *testing.T) {
	store := memory.NewMatchStore()
	rec := NewEventReconciler(store.Events, logging.NewNop())

	snapshot := snapshotEvents("m-1", "goal one", "goal two", "goal three")
	if err := rec.Reconcile(t.Context(), "m-1", snapshot); err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}

	if err := rec.Reconcile(t.Context(), "m-1", snapshot); err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}

	stored, err := store.Events.ListByMatch(t.Context(), "m-1")
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("expected 3 events after reconciling same snapshot twice, got %d", len(stored))
	}
	for idx, item := range stored {
		if item.Seq != idx {
			t.Fatalf("expected contiguous sequence, got seq=%d at index %d", item.Seq, idx)
		}
	}
}

func TestEventReconciler_OverwritesCorrectedDetails(t *testing.T) {
	store := memory.NewMatchStore()
	rec := NewEventReconciler(store.Events, logging.NewNop())

	if err := rec.Reconcile(t.Context(), "m-1", snapshotEvents("m-1", "goal", "own goal")); err != nil {
		t.Fatalf("seed reconcile failed: %v", err)
	}

	corrected := snapshotEvents("m-1", "goal", "penalty")
	if err := rec.Reconcile(t.Context(), "m-1", corrected); err != nil {
		t.Fatalf("corrected reconcile failed: %v", err)
	}

	stored, _ := store.Events.ListByMatch(t.Context(), "m-1")
	if len(stored) != 2 {
		t.Fatalf("unexpected event count: %d", len(stored))
	}
	if stored[1].Detail != "penalty" {
		t.Fatalf("expected corrected detail at seq 1, got %q", stored[1].Detail)
	}
}

func TestEventReconciler_TrimsSurplusWhenFeedShrinks(t *testing.T) {
	store := memory.NewMatchStore()
	rec := NewEventReconciler(store.Events, logging.NewNop())

	if err := rec.Reconcile(t.Context(), "m-1", snapshotEvents("m-1", "a", "b", "c", "d")); err != nil {
		t.Fatalf("seed reconcile failed: %v", err)
	}

	// Feed retroactively removed two disallowed events.
	if err := rec.Reconcile(t.Context(), "m-1", snapshotEvents("m-1", "a", "b")); err != nil {
		t.Fatalf("shrink reconcile failed: %v", err)
	}

	stored, _ := store.Events.ListByMatch(t.Context(), "m-1")
	if len(stored) != 2 {
		t.Fatalf("expected stored count to match snapshot count exactly, got %d", len(stored))
	}
	if stored[0].Detail != "a" || stored[1].Detail != "b" {
		t.Fatalf("unexpected surviving events: %+v", stored)
	}
}

func TestEventReconciler_RebuildsOnNonContiguousStoredSet(t *testing.T) {
	store := memory.NewMatchStore()
	rec := NewEventReconciler(store.Events, logging.NewNop())

	// A gap at seq 0 means incremental merge cannot be trusted.
	if err := store.Events.Insert(t.Context(), matchevent.Event{MatchID: "m-1", Seq: 1, Detail: "orphan"}); err != nil {
		t.Fatalf("seed insert failed: %v", err)
	}

	snapshot := snapshotEvents("m-1", "a", "b", "c")
	if err := rec.Reconcile(t.Context(), "m-1", snapshot); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	stored, _ := store.Events.ListByMatch(t.Context(), "m-1")
	if len(stored) != 3 {
		t.Fatalf("expected rebuild to store the full snapshot, got %d events", len(stored))
	}
	for idx, item := range stored {
		if item.Seq != idx || item.Detail != snapshot[idx].Detail {
			t.Fatalf("unexpected rebuilt event at %d: %+v", idx, item)
		}
	}
}

type duplicateOnInsertRepo struct {
	matchevent.Repository
	replaced bool
}

func (r *duplicateOnInsertRepo) Insert(ctx context.Context, event matchevent.Event) error {
	return fmt.Errorf("%w: match=%s seq=%d", matchevent.ErrDuplicateSeq, event.MatchID, event.Seq)
}

func (r *duplicateOnInsertRepo) ReplaceAll(ctx context.Context, matchID string, events []matchevent.Event) error {
	r.replaced = true
	return r.Repository.ReplaceAll(ctx, matchID, events)
}

func TestEventReconciler_DuplicateInsertFallsBackToReplaceAll(t *testing.T) {
	store := memory.NewMatchStore()
	repo := &duplicateOnInsertRepo{Repository: store.Events}
	rec := NewEventReconciler(repo, logging.NewNop())

	snapshot := snapshotEvents("m-1", "a", "b")
	if err := rec.Reconcile(t.Context(), "m-1", snapshot); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	if !repo.replaced {
		t.Fatal("expected duplicate insert to trigger the replace-all fallback")
	}
	stored, _ := store.Events.ListByMatch(t.Context(), "m-1")
	if len(stored) != 2 {
		t.Fatalf("expected fallback to store the full snapshot, got %d events", len(stored))
	}
}
