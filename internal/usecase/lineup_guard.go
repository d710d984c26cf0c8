package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/trackside/livetracker/internal/domain/lineup"
	idgen "github.com/trackside/livetracker/internal/platform/id"
	"github.com/trackside/livetracker/internal/platform/logging"
)

// LiveDataWiper removes every live-data row for a match in one shot: events,
// team statistics, player statistics, lineups and roster entries. Storage is
// keyed by match id so this is a bulk delete, not a graph traversal.
type LiveDataWiper interface {
	WipeLiveData(ctx context.Context, matchID string) error
}

// LineupGuard detects roster composition changes between polls. Events and
// statistics hold person references resolved against roster entries, so a
// changed roster invalidates all of them; patching the roster in place would
// leave dangling references. The recovery is deliberately heavy-handed: wipe
// everything and re-save the roster from the snapshot.
type LineupGuard struct {
	lineups lineup.Repository
	wiper   LiveDataWiper
	ids     idgen.Generator
	logger  *logging.Logger
	now     func() time.Time
}

func NewLineupGuard(lineups lineup.Repository, wiper LiveDataWiper, ids idgen.Generator, logger *logging.Logger) *LineupGuard {
	if ids == nil {
		ids = idgen.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LineupGuard{lineups: lineups, wiper: wiper, ids: ids, logger: logger, now: time.Now}
}

// EnsureRosterConsistent compares the snapshot roster's structural
// fingerprint against the stored one and wipes-and-resaves on any mismatch.
// A failure while loading the stored lineup fails safe toward resave.
// It reports whether a wipe happened so the caller knows the remaining
// reconciliation starts from an empty slate.
func (g *LineupGuard) EnsureRosterConsistent(ctx context.Context, matchID string, snapshot []lineup.Lineup) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LineupGuard.EnsureRosterConsistent")
	defer span.End()

	if matchID == "" {
		return false, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if len(snapshot) == 0 {
		// Lineups not published yet, or the feed stopped publishing them.
		// Either way there is nothing to compare against; any previously
		// stored roster stays untouched.
		g.logger.DebugContext(ctx, "snapshot carries no lineups, roster check skipped", "match_id", matchID)
		return false, nil
	}
	for idx := range snapshot {
		snapshot[idx].MatchID = matchID
	}

	stored, err := g.lineups.ListByMatch(ctx, matchID)
	if err != nil {
		g.logger.WarnContext(ctx, "stored lineup unreadable, forcing resave",
			"match_id", matchID,
			"error", err,
		)
		return true, g.wipeAndResave(ctx, matchID, snapshot)
	}

	storedPrint := lineup.FingerprintOf(stored)
	snapshotPrint := lineup.FingerprintOf(snapshot)
	if storedPrint.Equal(snapshotPrint) {
		return false, nil
	}

	if len(stored) > 0 {
		g.logger.WarnContext(ctx, "roster composition changed, wiping live data",
			"match_id", matchID,
			"stored_fingerprint", storedPrint.String(),
			"snapshot_fingerprint", snapshotPrint.String(),
		)
	}
	return true, g.wipeAndResave(ctx, matchID, snapshot)
}

func (g *LineupGuard) wipeAndResave(ctx context.Context, matchID string, snapshot []lineup.Lineup) error {
	g.assignTempIDs(snapshot)
	if err := g.wiper.WipeLiveData(ctx, matchID); err != nil {
		return fmt.Errorf("wipe live data match=%s: %w", matchID, err)
	}
	if err := g.lineups.ReplaceAll(ctx, matchID, snapshot); err != nil {
		return fmt.Errorf("resave lineups match=%s: %w", matchID, err)
	}
	return nil
}

// assignTempIDs mints ids for unregistered persons right before the roster is
// saved. Earlier stages work on id-less persons; the structural fingerprint
// keys off the name, so ids are only needed once entries become durable.
func (g *LineupGuard) assignTempIDs(snapshot []lineup.Lineup) {
	for i := range snapshot {
		roster := snapshot[i].Roster
		for j := range roster {
			person := &roster[j].Person
			if person.Kind == lineup.PersonUnregistered && person.TempID == "" {
				person.TempID = g.newTempID()
			}
		}
	}
}

func (g *LineupGuard) newTempID() string {
	value, err := g.ids.NewID()
	if err != nil {
		// crypto/rand exhaustion is effectively unreachable; fall back to a
		// time-derived id rather than failing the save.
		return fmt.Sprintf("tmp-%d", g.now().UnixNano())
	}
	return value
}
