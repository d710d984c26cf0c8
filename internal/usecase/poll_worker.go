package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
	"github.com/trackside/livetracker/internal/domain/lineup"
	"github.com/trackside/livetracker/internal/domain/match"
	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/domain/statistics"
	idgen "github.com/trackside/livetracker/internal/platform/id"
	"github.com/trackside/livetracker/internal/platform/logging"
)

// PollWorker runs one poll cycle for one match: fetch the snapshot, repair
// the roster if its composition changed, reconcile events and statistics
// independently, overwrite the live status, and report whether the match is
// finished.
type PollWorker struct {
	provider   SnapshotProvider
	statusRepo match.StatusRepository
	lineups    lineup.Repository
	guard      *LineupGuard
	events     *EventReconciler
	stats      *StatsReconciler
	ids        idgen.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewPollWorker(
	provider SnapshotProvider,
	statusRepo match.StatusRepository,
	lineups lineup.Repository,
	guard *LineupGuard,
	events *EventReconciler,
	stats *StatsReconciler,
	ids idgen.Generator,
	logger *logging.Logger,
) *PollWorker {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	return &PollWorker{
		provider:   provider,
		statusRepo: statusRepo,
		lineups:    lineups,
		guard:      guard,
		events:     events,
		stats:      stats,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

// Poll returns whether the match's new status maps to finished. An empty or
// absent payload is a transient fetch failure: logged, retried next period,
// never fatal.
func (w *PollWorker) Poll(ctx context.Context, matchID string) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PollWorker.Poll")
	defer span.End()

	if matchID == "" {
		return false, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	snap, ok, err := w.provider.Snapshot(ctx, matchID)
	if err != nil {
		return false, fmt.Errorf("fetch snapshot match=%s: %w", matchID, err)
	}
	if !ok {
		w.logger.WarnContext(ctx, "feed returned empty payload, retrying next period", "match_id", matchID)
		return false, nil
	}

	resaved, err := w.guard.EnsureRosterConsistent(ctx, matchID, w.buildLineups(matchID, snap.Lineups))
	if err != nil {
		return false, err
	}
	if resaved {
		w.logger.InfoContext(ctx, "live data rebuilt from snapshot roster", "match_id", matchID)
	}

	persons := w.loadPersonIndex(ctx, matchID)

	events := w.buildEvents(matchID, snap.Events, persons)
	teamStats := w.buildTeamStats(snap.TeamStats)
	playerStats := w.buildPlayerStats(snap.PlayerStats, persons)

	// Events and statistics reconcile independently: a statistics failure
	// must not lose event data and vice versa.
	sections := pool.New().WithErrors().WithContext(ctx)
	sections.Go(func(ctx context.Context) error {
		return w.events.Reconcile(ctx, matchID, events)
	})
	sections.Go(func(ctx context.Context) error {
		return w.stats.ReconcileTeams(ctx, matchID, teamStats)
	})
	sections.Go(func(ctx context.Context) error {
		return w.stats.ReconcilePlayers(ctx, matchID, playerStats)
	})
	if err := sections.Wait(); err != nil {
		w.logger.WarnContext(ctx, "partial reconcile failure, remaining sections committed",
			"match_id", matchID,
			"error", err,
		)
	}

	status := match.LiveStatus{
		MatchID:    matchID,
		StatusCode: match.NormalizeStatus(snap.Status.Code),
		StatusLong: snap.Status.Long,
		Elapsed:    snap.Status.Elapsed,
		HomeScore:  snap.Status.HomeScore,
		AwayScore:  snap.Status.AwayScore,
		UpdatedAt:  w.now().UTC(),
	}
	if err := w.statusRepo.Upsert(ctx, status); err != nil {
		return false, fmt.Errorf("overwrite live status match=%s: %w", matchID, err)
	}
	w.logger.DebugContext(ctx, "live status overwritten",
		"match_id", matchID,
		"status", status.StatusCode,
		"kind", match.StatusKind(status.StatusCode),
	)

	return match.IsFinishedStatus(status.StatusCode), nil
}

func (w *PollWorker) buildLineups(matchID string, items []SnapshotLineup) []lineup.Lineup {
	out := make([]lineup.Lineup, 0, len(items))
	for _, item := range items {
		roster := make([]lineup.RosterEntry, 0, len(item.Roster))
		for slot, entry := range item.Roster {
			roster = append(roster, lineup.RosterEntry{
				MatchID:     matchID,
				TeamID:      item.TeamID,
				Person:      w.resolveRosterPerson(entry),
				Position:    entry.Position,
				ShirtNumber: entry.Number,
				Starting:    entry.Starting,
				Slot:        slot,
			})
		}
		out = append(out, lineup.Lineup{
			MatchID:   matchID,
			TeamID:    item.TeamID,
			Formation: item.Formation,
			Roster:    roster,
			CreatedAt: w.now().UTC(),
		})
	}
	return out
}

func (w *PollWorker) resolveRosterPerson(entry SnapshotRosterEntry) lineup.Person {
	if entry.PlayerID != "" {
		return lineup.Registered(entry.PlayerID)
	}
	// No temp id yet: structural comparison keys off the name, and the guard
	// assigns ids only when the roster is actually saved.
	return lineup.Unregistered("", entry.Name, entry.Number)
}

// loadPersonIndex resolves event and statistic person references against the
// stored roster so unregistered persons keep the temp id assigned when the
// lineup was saved.
func (w *PollWorker) loadPersonIndex(ctx context.Context, matchID string) map[string]lineup.Person {
	stored, err := w.lineups.ListByMatch(ctx, matchID)
	if err != nil {
		w.logger.WarnContext(ctx, "stored roster unreadable for person resolution", "match_id", matchID, "error", err)
		return nil
	}

	index := make(map[string]lineup.Person)
	for _, item := range stored {
		for _, entry := range item.Roster {
			index[entry.Person.Key()] = entry.Person
		}
	}
	return index
}

func (w *PollWorker) resolvePerson(persons map[string]lineup.Person, playerID, name string, number int) lineup.Person {
	if playerID != "" {
		person := lineup.Registered(playerID)
		if known, ok := persons[person.Key()]; ok {
			return known
		}
		return person
	}
	if name == "" {
		return lineup.Person{}
	}

	unregistered := lineup.Unregistered("", name, number)
	if known, ok := persons[unregistered.Key()]; ok {
		return known
	}
	return lineup.Unregistered(w.newTempID(), name, number)
}

func (w *PollWorker) buildEvents(matchID string, items []SnapshotEvent, persons map[string]lineup.Person) []matchevent.Event {
	now := w.now().UTC()
	out := make([]matchevent.Event, 0, len(items))
	for idx, item := range items {
		out = append(out, matchevent.Event{
			MatchID:     matchID,
			Seq:         idx,
			Minute:      item.Minute,
			ExtraMinute: item.ExtraMinute,
			Type:        item.Type,
			Detail:      item.Detail,
			TeamID:      item.TeamID,
			Primary:     w.resolvePerson(persons, item.PlayerID, item.PlayerName, item.PlayerNumber),
			Secondary:   w.resolvePerson(persons, item.RelatedID, item.RelatedName, item.RelatedNumber),
			UpdatedAt:   now,
		})
	}
	return out
}

func (w *PollWorker) buildTeamStats(items []SnapshotTeamStat) []TeamSnapshotStat {
	now := w.now().UTC()
	out := make([]TeamSnapshotStat, 0, len(items))
	for _, item := range items {
		xg := make([]statistics.XGPoint, 0, len(item.ExpectedGoals))
		for _, point := range item.ExpectedGoals {
			xg = append(xg, statistics.XGPoint{Minute: point.Minute, Value: point.Value})
		}
		out = append(out, TeamSnapshotStat{
			Stat: statistics.TeamStat{
				TeamID:          item.TeamID,
				ShotsTotal:      item.ShotsTotal,
				ShotsOnTarget:   item.ShotsOnTarget,
				PossessionPct:   item.PossessionPct,
				PassesTotal:     item.PassesTotal,
				PassesAccurate:  item.PassesAccurate,
				Corners:         item.Corners,
				Offsides:        item.Offsides,
				Fouls:           item.Fouls,
				YellowCards:     item.YellowCards,
				RedCards:        item.RedCards,
				GoalkeeperSaves: item.GoalkeeperSaves,
				UpdatedAt:       now,
			},
			XG: xg,
		})
	}
	return out
}

func (w *PollWorker) buildPlayerStats(items []SnapshotPlayerStat, persons map[string]lineup.Person) []statistics.PlayerStat {
	now := w.now().UTC()
	out := make([]statistics.PlayerStat, 0, len(items))
	for _, item := range items {
		person := w.resolvePerson(persons, item.PlayerID, item.Name, item.Number)
		if person.IsZero() {
			continue
		}
		out = append(out, statistics.PlayerStat{
			TeamID:        item.TeamID,
			Person:        person,
			MinutesPlayed: item.MinutesPlayed,
			Goals:         item.Goals,
			Assists:       item.Assists,
			ShotsTotal:    item.ShotsTotal,
			PassesTotal:   item.PassesTotal,
			Tackles:       item.Tackles,
			YellowCards:   item.YellowCards,
			RedCards:      item.RedCards,
			Saves:         item.Saves,
			Rating:        item.Rating,
			UpdatedAt:     now,
		})
	}
	return out
}

func (w *PollWorker) newTempID() string {
	value, err := w.ids.NewID()
	if err != nil {
		// crypto/rand exhaustion is effectively unreachable; fall back to a
		// time-derived id rather than failing the poll.
		return fmt.Sprintf("tmp-%d", w.now().UnixNano())
	}
	return "tmp-" + value
}
