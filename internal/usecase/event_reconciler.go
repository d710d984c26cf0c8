package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/platform/logging"
)

// EventReconciler merges a snapshot's full event array into the stored event
// list. The snapshot index is the identity key across polls: the feed always
// returns the whole history from kickoff, so index i on this poll refers to
// the same event as index i on the previous one.
type EventReconciler struct {
	events matchevent.Repository
	logger *logging.Logger
}

func NewEventReconciler(events matchevent.Repository, logger *logging.Logger) *EventReconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventReconciler{events: events, logger: logger}
}

// Reconcile brings the stored set to exactly the snapshot's count and
// content. Stored entries at a snapshot index are overwritten in place (the
// feed corrects details after the fact), missing indexes are inserted, and
// surplus trailing entries are deleted when the feed retroactively removes
// events. Any constraint violation during the incremental merge falls back
// to wiping and re-inserting the whole array.
func (r *EventReconciler) Reconcile(ctx context.Context, matchID string, snapshot []matchevent.Event) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventReconciler.Reconcile")
	defer span.End()

	if matchID == "" {
		return fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	for idx := range snapshot {
		snapshot[idx].MatchID = matchID
		snapshot[idx].Seq = idx
	}

	stored, err := r.events.ListByMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("list stored events match=%s: %w", matchID, err)
	}

	if !contiguous(stored) {
		r.logger.WarnContext(ctx, "stored events are not a contiguous sequence, rebuilding",
			"match_id", matchID,
			"stored_count", len(stored),
		)
		return r.rebuild(ctx, matchID, snapshot)
	}

	for idx, incoming := range snapshot {
		if idx < len(stored) {
			if eventsEqual(stored[idx], incoming) {
				continue
			}
			if err := r.events.Update(ctx, incoming); err != nil {
				r.logger.WarnContext(ctx, "event update failed, rebuilding",
					"match_id", matchID,
					"seq", idx,
					"error", err,
				)
				return r.rebuild(ctx, matchID, snapshot)
			}
			continue
		}

		if err := r.events.Insert(ctx, incoming); err != nil {
			if errors.Is(err, matchevent.ErrDuplicateSeq) {
				r.logger.WarnContext(ctx, "duplicate event sequence during merge, rebuilding",
					"match_id", matchID,
					"seq", idx,
				)
				return r.rebuild(ctx, matchID, snapshot)
			}
			return fmt.Errorf("insert event match=%s seq=%d: %w", matchID, idx, err)
		}
	}

	if len(stored) > len(snapshot) {
		if err := r.events.DeleteFromSeq(ctx, matchID, len(snapshot)); err != nil {
			return fmt.Errorf("trim surplus events match=%s from_seq=%d: %w", matchID, len(snapshot), err)
		}
	}

	return nil
}

func (r *EventReconciler) rebuild(ctx context.Context, matchID string, snapshot []matchevent.Event) error {
	if err := r.events.ReplaceAll(ctx, matchID, snapshot); err != nil {
		return fmt.Errorf("replace events match=%s: %w", matchID, err)
	}
	return nil
}

func contiguous(stored []matchevent.Event) bool {
	for idx, item := range stored {
		if item.Seq != idx {
			return false
		}
	}
	return true
}

func eventsEqual(a, b matchevent.Event) bool {
	return a.Seq == b.Seq &&
		a.Minute == b.Minute &&
		a.ExtraMinute == b.ExtraMinute &&
		a.Type == b.Type &&
		a.Detail == b.Detail &&
		a.TeamID == b.TeamID &&
		a.Primary.Key() == b.Primary.Key() &&
		a.Secondary.Key() == b.Secondary.Key()
}
