// Package memory holds the in-memory match state store. All live data is
// kept in maps keyed by match id (arena plus index, no pointer graphs), so
// the integrity-recovery wipe is a bulk delete-by-key.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/trackside/livetracker/internal/domain/lineup"
	"github.com/trackside/livetracker/internal/domain/match"
	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/domain/statistics"
)

type matchState struct {
	mu          sync.RWMutex
	statuses    map[string]match.LiveStatus
	lineups     map[string][]lineup.Lineup
	events      map[string][]matchevent.Event
	teamStats   map[string]map[string]statistics.TeamStat
	xgSeries    map[string]map[string][]statistics.XGPoint
	playerStats map[string]map[string]statistics.PlayerStat
}

// MatchStore bundles the per-entity repositories over one shared arena and
// implements the live-data wipe used by integrity recovery.
type MatchStore struct {
	state       *matchState
	Statuses    *StatusRepository
	Lineups     *LineupRepository
	Events      *EventRepository
	TeamStats   *TeamStatsRepository
	PlayerStats *PlayerStatsRepository
}

func NewMatchStore() *MatchStore {
	state := &matchState{
		statuses:    make(map[string]match.LiveStatus),
		lineups:     make(map[string][]lineup.Lineup),
		events:      make(map[string][]matchevent.Event),
		teamStats:   make(map[string]map[string]statistics.TeamStat),
		xgSeries:    make(map[string]map[string][]statistics.XGPoint),
		playerStats: make(map[string]map[string]statistics.PlayerStat),
	}
	return &MatchStore{
		state:       state,
		Statuses:    &StatusRepository{state: state},
		Lineups:     &LineupRepository{state: state},
		Events:      &EventRepository{state: state},
		TeamStats:   &TeamStatsRepository{state: state},
		PlayerStats: &PlayerStatsRepository{state: state},
	}
}

// WipeLiveData removes events, team and player statistics, the expected
// goals series, lineups and roster entries for the match. The live status
// row survives; it is overwritten in place on the next poll anyway.
func (s *MatchStore) WipeLiveData(_ context.Context, matchID string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	delete(s.state.events, matchID)
	delete(s.state.teamStats, matchID)
	delete(s.state.xgSeries, matchID)
	delete(s.state.playerStats, matchID)
	delete(s.state.lineups, matchID)
	return nil
}

type StatusRepository struct {
	state *matchState
}

func (r *StatusRepository) Get(_ context.Context, matchID string) (match.LiveStatus, bool, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	status, ok := r.state.statuses[matchID]
	return status, ok, nil
}

func (r *StatusRepository) Upsert(_ context.Context, status match.LiveStatus) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	r.state.statuses[status.MatchID] = status
	return nil
}

func (r *StatusRepository) Delete(_ context.Context, matchID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	delete(r.state.statuses, matchID)
	return nil
}

type LineupRepository struct {
	state *matchState
}

func (r *LineupRepository) ListByMatch(_ context.Context, matchID string) ([]lineup.Lineup, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	items := r.state.lineups[matchID]
	out := make([]lineup.Lineup, len(items))
	copy(out, items)
	return out, nil
}

func (r *LineupRepository) ReplaceAll(_ context.Context, matchID string, lineups []lineup.Lineup) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	items := make([]lineup.Lineup, len(lineups))
	copy(items, lineups)
	r.state.lineups[matchID] = items
	return nil
}

func (r *LineupRepository) DeleteByMatch(_ context.Context, matchID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	delete(r.state.lineups, matchID)
	return nil
}

type EventRepository struct {
	state *matchState
}

func (r *EventRepository) ListByMatch(_ context.Context, matchID string) ([]matchevent.Event, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	items := r.state.events[matchID]
	out := make([]matchevent.Event, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (r *EventRepository) Insert(_ context.Context, event matchevent.Event) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	items := r.state.events[event.MatchID]
	for _, item := range items {
		if item.Seq == event.Seq {
			return fmt.Errorf("%w: match=%s seq=%d", matchevent.ErrDuplicateSeq, event.MatchID, event.Seq)
		}
	}
	r.state.events[event.MatchID] = append(items, event)
	return nil
}

func (r *EventRepository) Update(_ context.Context, event matchevent.Event) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	items := r.state.events[event.MatchID]
	for idx, item := range items {
		if item.Seq == event.Seq {
			items[idx] = event
			return nil
		}
	}
	return fmt.Errorf("event match=%s seq=%d not found", event.MatchID, event.Seq)
}

func (r *EventRepository) DeleteFromSeq(_ context.Context, matchID string, fromSeq int) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	items := r.state.events[matchID]
	kept := items[:0]
	for _, item := range items {
		if item.Seq < fromSeq {
			kept = append(kept, item)
		}
	}
	r.state.events[matchID] = kept
	return nil
}

func (r *EventRepository) ReplaceAll(_ context.Context, matchID string, events []matchevent.Event) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	items := make([]matchevent.Event, len(events))
	copy(items, events)
	r.state.events[matchID] = items
	return nil
}

func (r *EventRepository) DeleteByMatch(_ context.Context, matchID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	delete(r.state.events, matchID)
	return nil
}

type TeamStatsRepository struct {
	state *matchState
}

func (r *TeamStatsRepository) Upsert(_ context.Context, stat statistics.TeamStat) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	byTeam := r.state.teamStats[stat.MatchID]
	if byTeam == nil {
		byTeam = make(map[string]statistics.TeamStat)
		r.state.teamStats[stat.MatchID] = byTeam
	}
	byTeam[stat.TeamID] = stat
	return nil
}

func (r *TeamStatsRepository) GetXGSeries(_ context.Context, matchID, teamID string) ([]statistics.XGPoint, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	series := r.state.xgSeries[matchID][teamID]
	out := make([]statistics.XGPoint, len(series))
	copy(out, series)
	return out, nil
}

func (r *TeamStatsRepository) SaveXGSeries(_ context.Context, matchID, teamID string, points []statistics.XGPoint) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	byTeam := r.state.xgSeries[matchID]
	if byTeam == nil {
		byTeam = make(map[string][]statistics.XGPoint)
		r.state.xgSeries[matchID] = byTeam
	}
	series := make([]statistics.XGPoint, len(points))
	copy(series, points)
	byTeam[teamID] = series
	return nil
}

func (r *TeamStatsRepository) DeleteByMatch(_ context.Context, matchID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	delete(r.state.teamStats, matchID)
	delete(r.state.xgSeries, matchID)
	return nil
}

type PlayerStatsRepository struct {
	state *matchState
}

func (r *PlayerStatsRepository) Upsert(_ context.Context, stat statistics.PlayerStat) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	byPerson := r.state.playerStats[stat.MatchID]
	if byPerson == nil {
		byPerson = make(map[string]statistics.PlayerStat)
		r.state.playerStats[stat.MatchID] = byPerson
	}
	byPerson[stat.Person.Key()] = stat
	return nil
}

func (r *PlayerStatsRepository) DeleteByMatch(_ context.Context, matchID string) error {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()

	delete(r.state.playerStats, matchID)
	return nil
}

// Snapshot helpers for tests and the jobs endpoint.

func (r *TeamStatsRepository) Get(_ context.Context, matchID, teamID string) (statistics.TeamStat, bool, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	stat, ok := r.state.teamStats[matchID][teamID]
	return stat, ok, nil
}

func (r *PlayerStatsRepository) Get(_ context.Context, matchID, personKey string) (statistics.PlayerStat, bool, error) {
	r.state.mu.RLock()
	defer r.state.mu.RUnlock()

	stat, ok := r.state.playerStats[matchID][personKey]
	return stat, ok, nil
}
