package usecase

import (
	"fmt"
	"testing"

	"github.com/trackside/livetracker/internal/domain/lineup"
	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/domain/statistics"
	"github.com/trackside/livetracker/internal/infrastructure/repository/memory"
	"github.com/trackside/livetracker/internal/platform/logging"
)

func rosterLineup(matchID, teamID string, playerIDs ...string) lineup.Lineup {
	roster := make([]lineup.RosterEntry, 0, len(playerIDs))
	for slot, playerID := range playerIDs {
		roster = append(roster, lineup.RosterEntry{
			MatchID:  matchID,
			TeamID:   teamID,
			Person:   lineup.Registered(playerID),
			Starting: true,
			Slot:     slot,
		})
	}
	return lineup.Lineup{MatchID: matchID, TeamID: teamID, Formation: "4-4-2", Roster: roster}
}

func TestLineupGuard_FirstPublicationSavesRoster(t *testing.T) {
	store := memory.NewMatchStore()
	guard := NewLineupGuard(store.Lineups, store, nil, logging.NewNop())

	resaved, err := guard.EnsureRosterConsistent(t.Context(), "m-1", []lineup.Lineup{
		rosterLineup("m-1", "team-home", "A", "B"),
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !resaved {
		t.Fatal("expected first publication to save the roster")
	}

	stored, _ := store.Lineups.ListByMatch(t.Context(), "m-1")
	if len(stored) != 1 || len(stored[0].Roster) != 2 {
		t.Fatalf("unexpected stored lineup: %+v", stored)
	}
}

func TestLineupGuard_UnchangedRosterIsNoOp(t *testing.T) {
	store := memory.NewMatchStore()
	guard := NewLineupGuard(store.Lineups, store, nil, logging.NewNop())

	snapshot := []lineup.Lineup{rosterLineup("m-1", "team-home", "A", "B")}
	if _, err := guard.EnsureRosterConsistent(t.Context(), "m-1", snapshot); err != nil {
		t.Fatalf("seed ensure failed: %v", err)
	}

	// Same composition again, with events already stored.
	if err := store.Events.Insert(t.Context(), matchevent.Event{MatchID: "m-1", Seq: 0, Detail: "goal"}); err != nil {
		t.Fatalf("seed event failed: %v", err)
	}

	resaved, err := guard.EnsureRosterConsistent(t.Context(), "m-1", []lineup.Lineup{
		rosterLineup("m-1", "team-home", "A", "B"),
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if resaved {
		t.Fatal("identical roster composition must not trigger a resave")
	}

	events, _ := store.Events.ListByMatch(t.Context(), "m-1")
	if len(events) != 1 {
		t.Fatalf("events must survive a no-op roster check, got %d", len(events))
	}
}

func TestLineupGuard_CompositionChangeWipesAllLiveData(t *testing.T) {
	store := memory.NewMatchStore()
	guard := NewLineupGuard(store.Lineups, store, nil, logging.NewNop())

	// Poll one: roster {A, B} plus derived data.
	if _, err := guard.EnsureRosterConsistent(t.Context(), "m-1", []lineup.Lineup{
		rosterLineup("m-1", "team-home", "A", "B"),
	}); err != nil {
		t.Fatalf("seed ensure failed: %v", err)
	}
	if err := store.Events.Insert(t.Context(), matchevent.Event{MatchID: "m-1", Seq: 0, Detail: "goal", Primary: lineup.Registered("B")}); err != nil {
		t.Fatalf("seed event failed: %v", err)
	}
	if err := store.TeamStats.Upsert(t.Context(), statistics.TeamStat{MatchID: "m-1", TeamID: "team-home", ShotsTotal: 3}); err != nil {
		t.Fatalf("seed team stats failed: %v", err)
	}
	if err := store.PlayerStats.Upsert(t.Context(), statistics.PlayerStat{MatchID: "m-1", Person: lineup.Registered("B"), Goals: 1}); err != nil {
		t.Fatalf("seed player stats failed: %v", err)
	}

	// Poll two: B was replaced by C in the feed's roster.
	resaved, err := guard.EnsureRosterConsistent(t.Context(), "m-1", []lineup.Lineup{
		rosterLineup("m-1", "team-home", "A", "C"),
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !resaved {
		t.Fatal("expected composition change to trigger a resave")
	}

	events, _ := store.Events.ListByMatch(t.Context(), "m-1")
	if len(events) != 0 {
		t.Fatalf("expected events wiped, got %d", len(events))
	}
	if _, ok, _ := store.TeamStats.Get(t.Context(), "m-1", "team-home"); ok {
		t.Fatal("expected team stats wiped")
	}
	if _, ok, _ := store.PlayerStats.Get(t.Context(), "m-1", lineup.Registered("B").Key()); ok {
		t.Fatal("expected player stats wiped")
	}

	stored, _ := store.Lineups.ListByMatch(t.Context(), "m-1")
	if len(stored) != 1 {
		t.Fatalf("unexpected stored lineup count: %d", len(stored))
	}
	got := lineup.FingerprintOf(stored)
	want := lineup.FingerprintOf([]lineup.Lineup{rosterLineup("m-1", "team-home", "A", "C")})
	if !got.Equal(want) {
		t.Fatalf("expected fresh roster {A,C}, got fingerprint %s", got.String())
	}
}

type countingIDs struct {
	calls int
}

func (g *countingIDs) NewID() (string, error) {
	g.calls++
	return fmt.Sprintf("tmp-%d", g.calls), nil
}

func unregisteredLineup(matchID, teamID string, names ...string) lineup.Lineup {
	roster := make([]lineup.RosterEntry, 0, len(names))
	for slot, name := range names {
		roster = append(roster, lineup.RosterEntry{
			MatchID:  matchID,
			TeamID:   teamID,
			Person:   lineup.Unregistered("", name, 40+slot),
			Starting: true,
			Slot:     slot,
		})
	}
	return lineup.Lineup{MatchID: matchID, TeamID: teamID, Formation: "4-4-2", Roster: roster}
}

func TestLineupGuard_TempIDsMintedOnlyOnSave(t *testing.T) {
	store := memory.NewMatchStore()
	ids := &countingIDs{}
	guard := NewLineupGuard(store.Lineups, store, ids, logging.NewNop())

	resaved, err := guard.EnsureRosterConsistent(t.Context(), "m-1", []lineup.Lineup{
		unregisteredLineup("m-1", "team-home", "Trialist", "Keeper"),
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if !resaved {
		t.Fatal("expected first publication to save the roster")
	}
	if ids.calls != 2 {
		t.Fatalf("expected one temp id per unregistered entry, got %d mints", ids.calls)
	}

	stored, _ := store.Lineups.ListByMatch(t.Context(), "m-1")
	for _, item := range stored {
		for _, entry := range item.Roster {
			if entry.Person.TempID == "" {
				t.Fatalf("stored unregistered entry missing temp id: %+v", entry.Person)
			}
		}
	}

	// Same composition again, built fresh and id-less: no resave, no mints.
	resaved, err = guard.EnsureRosterConsistent(t.Context(), "m-1", []lineup.Lineup{
		unregisteredLineup("m-1", "team-home", "Trialist", "Keeper"),
	})
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if resaved {
		t.Fatal("identical roster composition must not trigger a resave")
	}
	if ids.calls != 2 {
		t.Fatalf("matching roster must not mint ids, got %d mints", ids.calls)
	}
}

func TestLineupGuard_EmptySnapshotLineupIsIgnored(t *testing.T) {
	store := memory.NewMatchStore()
	guard := NewLineupGuard(store.Lineups, store, nil, logging.NewNop())

	resaved, err := guard.EnsureRosterConsistent(t.Context(), "m-1", nil)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if resaved {
		t.Fatal("unpublished lineups must not trigger a wipe")
	}
}
