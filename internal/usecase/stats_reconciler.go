package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/trackside/livetracker/internal/domain/statistics"
	"github.com/trackside/livetracker/internal/platform/logging"
)

// TeamSnapshotStat pairs a team's cumulative totals with its expected-goals
// points from one snapshot.
type TeamSnapshotStat struct {
	Stat statistics.TeamStat
	XG   []statistics.XGPoint
}

// StatsReconciler applies a snapshot's statistics. Numeric rows are
// last-write-wins because the feed reports match-to-date cumulative totals,
// never deltas. The expected-goals series is the one exception: points merge
// by elapsed minute and are never removed.
type StatsReconciler struct {
	teamRepo   statistics.TeamRepository
	playerRepo statistics.PlayerRepository
	logger     *logging.Logger
}

func NewStatsReconciler(
	teamRepo statistics.TeamRepository,
	playerRepo statistics.PlayerRepository,
	logger *logging.Logger,
) *StatsReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsReconciler{teamRepo: teamRepo, playerRepo: playerRepo, logger: logger}
}

func (r *StatsReconciler) ReconcileTeams(ctx context.Context, matchID string, stats []TeamSnapshotStat) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsReconciler.ReconcileTeams")
	defer span.End()

	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	for _, item := range stats {
		item.Stat.MatchID = matchID
		if item.Stat.TeamID == "" {
			return fmt.Errorf("%w: team id is required on team statistics", ErrInvalidInput)
		}

		if err := r.teamRepo.Upsert(ctx, item.Stat); err != nil {
			return fmt.Errorf("upsert team stats match=%s team=%s: %w", matchID, item.Stat.TeamID, err)
		}

		if len(item.XG) == 0 {
			continue
		}
		stored, err := r.teamRepo.GetXGSeries(ctx, matchID, item.Stat.TeamID)
		if err != nil {
			return fmt.Errorf("load xg series match=%s team=%s: %w", matchID, item.Stat.TeamID, err)
		}
		merged := MergeXGSeries(stored, item.XG)
		if err := r.teamRepo.SaveXGSeries(ctx, matchID, item.Stat.TeamID, merged); err != nil {
			return fmt.Errorf("save xg series match=%s team=%s: %w", matchID, item.Stat.TeamID, err)
		}
	}

	return nil
}

func (r *StatsReconciler) ReconcilePlayers(ctx context.Context, matchID string, stats []statistics.PlayerStat) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsReconciler.ReconcilePlayers")
	defer span.End()

	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	for _, item := range stats {
		item.MatchID = matchID
		if item.Person.IsZero() {
			return fmt.Errorf("%w: person is required on player statistics", ErrInvalidInput)
		}
		if err := r.playerRepo.Upsert(ctx, item); err != nil {
			return fmt.Errorf("upsert player stats match=%s person=%s: %w", matchID, item.Person.Key(), err)
		}
	}

	return nil
}

// MergeXGSeries merges incoming points into the stored series: a stored
// point with the same elapsed minute gets its value updated in place, new
// minutes are appended. Stored minutes absent from the snapshot are kept;
// the series never shrinks.
func MergeXGSeries(stored, incoming []statistics.XGPoint) []statistics.XGPoint {
	byMinute := make(map[int]string, len(stored)+len(incoming))
	for _, point := range stored {
		byMinute[point.Minute] = point.Value
	}
	for _, point := range incoming {
		byMinute[point.Minute] = point.Value
	}

	minutes := make([]int, 0, len(byMinute))
	for minute := range byMinute {
		minutes = append(minutes, minute)
	}
	sort.Ints(minutes)

	out := make([]statistics.XGPoint, 0, len(minutes))
	for _, minute := range minutes {
		out = append(out, statistics.XGPoint{Minute: minute, Value: byMinute[minute]})
	}
	return out
}
