package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/trackside/livetracker/internal/domain/match"
)

type MatchStatusRepository struct {
	db *sqlx.DB
}

func NewMatchStatusRepository(db *sqlx.DB) *MatchStatusRepository {
	return &MatchStatusRepository{db: db}
}

const matchStatusSelectQuery = `SELECT match_id, status_code, status_long, elapsed, home_score, away_score, updated_at
FROM match_statuses
WHERE match_id = $1`

func (r *MatchStatusRepository) Get(ctx context.Context, matchID string) (match.LiveStatus, bool, error) {
	var row matchStatusTableModel
	if err := r.db.GetContext(ctx, &row, matchStatusSelectQuery, matchID); err != nil {
		if isNotFound(err) {
			return match.LiveStatus{}, false, nil
		}
		return match.LiveStatus{}, false, fmt.Errorf("get match status: %w", err)
	}

	return match.LiveStatus{
		MatchID:    row.MatchID,
		StatusCode: row.StatusCode,
		StatusLong: row.StatusLong,
		Elapsed:    row.Elapsed,
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		UpdatedAt:  row.UpdatedAt,
	}, true, nil
}

const matchStatusUpsertQuery = `INSERT INTO match_statuses (match_id, status_code, status_long, elapsed, home_score, away_score, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (match_id)
DO UPDATE SET
    status_code = EXCLUDED.status_code,
    status_long = EXCLUDED.status_long,
    elapsed = EXCLUDED.elapsed,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = EXCLUDED.updated_at`

func (r *MatchStatusRepository) Upsert(ctx context.Context, status match.LiveStatus) error {
	_, err := r.db.ExecContext(ctx, matchStatusUpsertQuery,
		status.MatchID,
		status.StatusCode,
		status.StatusLong,
		status.Elapsed,
		status.HomeScore,
		status.AwayScore,
		status.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert match status: %w", err)
	}
	return nil
}

func (r *MatchStatusRepository) Delete(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_statuses WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete match status: %w", err)
	}
	return nil
}
