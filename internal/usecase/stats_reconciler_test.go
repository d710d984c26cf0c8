package usecase

import (
	"testing"

	"github.com/trackside/livetracker/internal/domain/lineup"
	"github.com/trackside/livetracker/internal/domain/statistics"
	"github.com/trackside/livetracker/internal/infrastructure/repository/memory"
	"github.com/trackside/livetracker/internal/platform/logging"
)

func TestMergeXGSeries_UpdateExistingMinuteAppendNew(t *testing.T) {
	t.Parallel()

	stored := []statistics.XGPoint{{Minute: 10, Value: "0.5"}}
	incoming := []statistics.XGPoint{{Minute: 10, Value: "0.8"}, {Minute: 11, Value: "0.2"}}

	merged := MergeXGSeries(stored, incoming)

	want := []statistics.XGPoint{{Minute: 10, Value: "0.8"}, {Minute: 11, Value: "0.2"}}
	if len(merged) != len(want) {
		t.Fatalf("unexpected merged length: got %d want %d", len(merged), len(want))
	}
	for idx := range want {
		if merged[idx] != want[idx] {
			t.Fatalf("unexpected point at %d: got %+v want %+v", idx, merged[idx], want[idx])
		}
	}
}

func TestMergeXGSeries_NeverRemovesPoints(t *testing.T) {
	t.Parallel()

	stored := []statistics.XGPoint{{Minute: 5, Value: "0.1"}, {Minute: 20, Value: "0.7"}}
	incoming := []statistics.XGPoint{{Minute: 20, Value: "0.9"}}

	merged := MergeXGSeries(stored, incoming)

	if len(merged) != 2 {
		t.Fatalf("minutes absent from the snapshot must be kept, got %d points", len(merged))
	}
	if merged[0].Minute != 5 || merged[0].Value != "0.1" {
		t.Fatalf("unexpected kept point: %+v", merged[0])
	}
	if merged[1].Value != "0.9" {
		t.Fatalf("expected minute 20 updated in place, got %+v", merged[1])
	}
}

func TestStatsReconciler_TeamRowsOverwrittenWholesale(t *testing.T) {
	store := memory.NewMatchStore()
	rec := NewStatsReconciler(store.TeamStats, store.PlayerStats, logging.NewNop())

	first := []TeamSnapshotStat{{
		Stat: statistics.TeamStat{TeamID: "team-home", ShotsTotal: 4, Corners: 2},
		XG:   []statistics.XGPoint{{Minute: 10, Value: "0.5"}},
	}}
	if err := rec.ReconcileTeams(t.Context(), "m-1", first); err != nil {
		t.Fatalf("first reconcile failed: %v", err)
	}

	second := []TeamSnapshotStat{{
		Stat: statistics.TeamStat{TeamID: "team-home", ShotsTotal: 9, Corners: 5},
		XG:   []statistics.XGPoint{{Minute: 10, Value: "0.8"}, {Minute: 11, Value: "0.2"}},
	}}
	if err := rec.ReconcileTeams(t.Context(), "m-1", second); err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}

	stat, ok, _ := store.TeamStats.Get(t.Context(), "m-1", "team-home")
	if !ok {
		t.Fatal("expected team stats row")
	}
	if stat.ShotsTotal != 9 || stat.Corners != 5 {
		t.Fatalf("expected last write to win, got %+v", stat)
	}

	series, _ := store.TeamStats.GetXGSeries(t.Context(), "m-1", "team-home")
	if len(series) != 2 || series[0].Value != "0.8" || series[1].Value != "0.2" {
		t.Fatalf("unexpected merged series: %+v", series)
	}
}

func TestStatsReconciler_PlayerRowsKeyedByPerson(t *testing.T) {
	store := memory.NewMatchStore()
	rec := NewStatsReconciler(store.TeamStats, store.PlayerStats, logging.NewNop())

	stats := []statistics.PlayerStat{
		{TeamID: "team-home", Person: lineup.Registered("player-1"), Goals: 1},
		{TeamID: "team-home", Person: lineup.Unregistered("tmp-1", "Trialist Keeper", 31), Saves: 4},
	}
	if err := rec.ReconcilePlayers(t.Context(), "m-1", stats); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	registered, ok, _ := store.PlayerStats.Get(t.Context(), "m-1", lineup.Registered("player-1").Key())
	if !ok || registered.Goals != 1 {
		t.Fatalf("unexpected registered player stat: %+v ok=%v", registered, ok)
	}

	unregistered, ok, _ := store.PlayerStats.Get(t.Context(), "m-1", lineup.Unregistered("", "Trialist Keeper", 31).Key())
	if !ok || unregistered.Saves != 4 {
		t.Fatalf("unexpected unregistered player stat: %+v ok=%v", unregistered, ok)
	}
}
