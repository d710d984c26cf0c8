package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/trackside/livetracker/internal/domain/lineup"
)

type LineupRepository struct {
	db *sqlx.DB
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db}
}

const lineupSelectQuery = `SELECT match_id, team_id, formation, created_at
FROM match_lineups
WHERE match_id = $1
ORDER BY team_id`

const rosterSelectQuery = `SELECT match_id, team_id, person_kind, person_player_id, person_name, person_temp_id, person_shirt_number, position, shirt_number, starting, slot
FROM lineup_roster
WHERE match_id = $1
ORDER BY team_id, slot`

func (r *LineupRepository) ListByMatch(ctx context.Context, matchID string) ([]lineup.Lineup, error) {
	var lineupRows []lineupTableModel
	if err := r.db.SelectContext(ctx, &lineupRows, lineupSelectQuery, matchID); err != nil {
		return nil, fmt.Errorf("list lineups: %w", err)
	}
	if len(lineupRows) == 0 {
		return nil, nil
	}

	var rosterRows []rosterEntryTableModel
	if err := r.db.SelectContext(ctx, &rosterRows, rosterSelectQuery, matchID); err != nil {
		return nil, fmt.Errorf("list lineup roster: %w", err)
	}

	rosterByTeam := make(map[string][]lineup.RosterEntry, len(lineupRows))
	for _, row := range rosterRows {
		rosterByTeam[row.TeamID] = append(rosterByTeam[row.TeamID], lineup.RosterEntry{
			MatchID:     row.MatchID,
			TeamID:      row.TeamID,
			Person:      personFromColumns(row.PersonKind, row.PersonPlayerID, row.PersonName, row.PersonTempID, row.PersonShirtNumber),
			Position:    row.Position,
			ShirtNumber: row.ShirtNumber,
			Starting:    row.Starting,
			Slot:        row.Slot,
		})
	}

	out := make([]lineup.Lineup, 0, len(lineupRows))
	for _, row := range lineupRows {
		out = append(out, lineup.Lineup{
			MatchID:   row.MatchID,
			TeamID:    row.TeamID,
			Formation: row.Formation,
			Roster:    rosterByTeam[row.TeamID],
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

const lineupInsertQuery = `INSERT INTO match_lineups (match_id, team_id, formation, created_at)
VALUES ($1, $2, $3, $4)`

const rosterInsertQuery = `INSERT INTO lineup_roster (match_id, team_id, person_kind, person_player_id, person_name, person_temp_id, person_shirt_number, position, shirt_number, starting, slot)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// ReplaceAll runs as a single transaction so readers never observe a match
// with half of its teams missing.
func (r *LineupRepository) ReplaceAll(ctx context.Context, matchID string, lineups []lineup.Lineup) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace lineups: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteLineupsTx(ctx, tx, matchID); err != nil {
		return err
	}

	for _, item := range lineups {
		if _, err := tx.ExecContext(ctx, lineupInsertQuery, matchID, item.TeamID, item.Formation, item.CreatedAt); err != nil {
			return fmt.Errorf("insert lineup: %w", err)
		}
		for _, entry := range item.Roster {
			kind, playerID, name, tempID, personShirt := personToColumns(entry.Person)
			if _, err := tx.ExecContext(ctx, rosterInsertQuery,
				matchID,
				item.TeamID,
				kind,
				playerID,
				name,
				tempID,
				personShirt,
				entry.Position,
				entry.ShirtNumber,
				entry.Starting,
				entry.Slot,
			); err != nil {
				return fmt.Errorf("insert roster entry: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace lineups: %w", err)
	}
	return nil
}

func (r *LineupRepository) DeleteByMatch(ctx context.Context, matchID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete lineups: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteLineupsTx(ctx, tx, matchID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete lineups: %w", err)
	}
	return nil
}

func deleteLineupsTx(ctx context.Context, tx *sqlx.Tx, matchID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM lineup_roster WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete lineup roster: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM match_lineups WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete lineups: %w", err)
	}
	return nil
}
