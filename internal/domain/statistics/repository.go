package statistics

import "context"

// TeamRepository exposes team statistic persistence operations.
type TeamRepository interface {
	Upsert(ctx context.Context, stat TeamStat) error
	GetXGSeries(ctx context.Context, matchID, teamID string) ([]XGPoint, error)
	// SaveXGSeries stores the merged series for one team, replacing the
	// stored points for the minutes present and appending new minutes.
	SaveXGSeries(ctx context.Context, matchID, teamID string, points []XGPoint) error
	DeleteByMatch(ctx context.Context, matchID string) error
}

// PlayerRepository exposes player statistic persistence operations.
type PlayerRepository interface {
	Upsert(ctx context.Context, stat PlayerStat) error
	DeleteByMatch(ctx context.Context, matchID string) error
}
