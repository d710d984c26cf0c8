package matchevent

import (
	"context"
	"errors"
)

// ErrDuplicateSeq reports a uniqueness violation on (match_id, seq). The
// reconciler treats it as a signal that incremental merge cannot be trusted.
var ErrDuplicateSeq = errors.New("duplicate event sequence")

// Repository exposes event persistence operations.
type Repository interface {
	// ListByMatch returns the stored events ordered by Seq ascending.
	ListByMatch(ctx context.Context, matchID string) ([]Event, error)
	// Insert fails with ErrDuplicateSeq when (match_id, seq) already exists.
	Insert(ctx context.Context, event Event) error
	Update(ctx context.Context, event Event) error
	// DeleteFromSeq removes every stored event with Seq >= fromSeq.
	DeleteFromSeq(ctx context.Context, matchID string, fromSeq int) error
	// ReplaceAll drops all events for the match and inserts the given set.
	ReplaceAll(ctx context.Context, matchID string, events []Event) error
	DeleteByMatch(ctx context.Context, matchID string) error
}
