package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/trackside/livetracker/internal/domain/statistics"
)

type TeamStatsRepository struct {
	db *sqlx.DB
}

func NewTeamStatsRepository(db *sqlx.DB) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

const teamStatUpsertQuery = `INSERT INTO team_statistics (match_id, team_id, shots_total, shots_on_target, possession_pct,
    passes_total, passes_accurate, corners, offsides, fouls, yellow_cards, red_cards, goalkeeper_saves, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (match_id, team_id)
DO UPDATE SET
    shots_total = EXCLUDED.shots_total,
    shots_on_target = EXCLUDED.shots_on_target,
    possession_pct = EXCLUDED.possession_pct,
    passes_total = EXCLUDED.passes_total,
    passes_accurate = EXCLUDED.passes_accurate,
    corners = EXCLUDED.corners,
    offsides = EXCLUDED.offsides,
    fouls = EXCLUDED.fouls,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    goalkeeper_saves = EXCLUDED.goalkeeper_saves,
    updated_at = EXCLUDED.updated_at`

func (r *TeamStatsRepository) Upsert(ctx context.Context, stat statistics.TeamStat) error {
	_, err := r.db.ExecContext(ctx, teamStatUpsertQuery,
		stat.MatchID,
		stat.TeamID,
		stat.ShotsTotal,
		stat.ShotsOnTarget,
		stat.PossessionPct,
		stat.PassesTotal,
		stat.PassesAccurate,
		stat.Corners,
		stat.Offsides,
		stat.Fouls,
		stat.YellowCards,
		stat.RedCards,
		stat.GoalkeeperSaves,
		stat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert team statistics: %w", err)
	}
	return nil
}

const xgSeriesSelectQuery = `SELECT minute, value
FROM team_xg_points
WHERE match_id = $1 AND team_id = $2
ORDER BY minute`

func (r *TeamStatsRepository) GetXGSeries(ctx context.Context, matchID, teamID string) ([]statistics.XGPoint, error) {
	var rows []xgPointTableModel
	if err := r.db.SelectContext(ctx, &rows, xgSeriesSelectQuery, matchID, teamID); err != nil {
		return nil, fmt.Errorf("get xg series: %w", err)
	}

	out := make([]statistics.XGPoint, 0, len(rows))
	for _, row := range rows {
		out = append(out, statistics.XGPoint{Minute: row.Minute, Value: row.Value})
	}
	return out, nil
}

const xgPointUpsertQuery = `INSERT INTO team_xg_points (match_id, team_id, minute, value)
VALUES ($1, $2, $3, $4)
ON CONFLICT (match_id, team_id, minute)
DO UPDATE SET value = EXCLUDED.value`

// SaveXGSeries upserts point by point and never deletes: the series only
// grows or revises in place.
func (r *TeamStatsRepository) SaveXGSeries(ctx context.Context, matchID, teamID string, points []statistics.XGPoint) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save xg series: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, point := range points {
		if _, err := tx.ExecContext(ctx, xgPointUpsertQuery, matchID, teamID, point.Minute, point.Value); err != nil {
			return fmt.Errorf("upsert xg point minute %d: %w", point.Minute, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save xg series: %w", err)
	}
	return nil
}

func (r *TeamStatsRepository) DeleteByMatch(ctx context.Context, matchID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete team statistics: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteTeamStatsTx(ctx, tx, matchID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete team statistics: %w", err)
	}
	return nil
}

func deleteTeamStatsTx(ctx context.Context, tx *sqlx.Tx, matchID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_xg_points WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete xg points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM team_statistics WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete team statistics: %w", err)
	}
	return nil
}
