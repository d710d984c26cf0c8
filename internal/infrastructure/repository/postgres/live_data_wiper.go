package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LiveDataWiper deletes every live-data row for one match in a single
// transaction. The status row survives; it is the only record that outlives
// a roster rebuild.
type LiveDataWiper struct {
	db *sqlx.DB
}

func NewLiveDataWiper(db *sqlx.DB) *LiveDataWiper {
	return &LiveDataWiper{db: db}
}

func (w *LiveDataWiper) WipeLiveData(ctx context.Context, matchID string) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wipe live data: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_events WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("wipe match events: %w", err)
	}
	if err := deleteTeamStatsTx(ctx, tx, matchID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM player_statistics WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("wipe player statistics: %w", err)
	}
	if err := deleteLineupsTx(ctx, tx, matchID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit wipe live data: %w", err)
	}
	return nil
}
