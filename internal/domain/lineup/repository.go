package lineup

import "context"

// Repository exposes lineup persistence operations.
type Repository interface {
	ListByMatch(ctx context.Context, matchID string) ([]Lineup, error)
	// ReplaceAll drops every lineup and roster entry for the match and stores
	// the given set in one transaction.
	ReplaceAll(ctx context.Context, matchID string, lineups []Lineup) error
	DeleteByMatch(ctx context.Context, matchID string) error
}
