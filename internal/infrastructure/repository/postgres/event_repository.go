package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/trackside/livetracker/internal/domain/matchevent"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventSelectQuery = `SELECT match_id, seq, minute, extra_minute, event_type, detail, team_id,
    primary_kind, primary_player_id, primary_name, primary_temp_id, primary_shirt_number,
    secondary_kind, secondary_player_id, secondary_name, secondary_temp_id, secondary_shirt_number,
    updated_at
FROM match_events
WHERE match_id = $1
ORDER BY seq`

func (r *EventRepository) ListByMatch(ctx context.Context, matchID string) ([]matchevent.Event, error) {
	var rows []matchEventTableModel
	if err := r.db.SelectContext(ctx, &rows, eventSelectQuery, matchID); err != nil {
		return nil, fmt.Errorf("list match events: %w", err)
	}

	out := make([]matchevent.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

const eventInsertQuery = `INSERT INTO match_events (match_id, seq, minute, extra_minute, event_type, detail, team_id,
    primary_kind, primary_player_id, primary_name, primary_temp_id, primary_shirt_number,
    secondary_kind, secondary_player_id, secondary_name, secondary_temp_id, secondary_shirt_number,
    updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

func (r *EventRepository) Insert(ctx context.Context, event matchevent.Event) error {
	if _, err := r.db.ExecContext(ctx, eventInsertQuery, eventArgs(event)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: match %s seq %d", matchevent.ErrDuplicateSeq, event.MatchID, event.Seq)
		}
		return fmt.Errorf("insert match event: %w", err)
	}
	return nil
}

const eventUpdateQuery = `UPDATE match_events SET
    minute = $3,
    extra_minute = $4,
    event_type = $5,
    detail = $6,
    team_id = $7,
    primary_kind = $8,
    primary_player_id = $9,
    primary_name = $10,
    primary_temp_id = $11,
    primary_shirt_number = $12,
    secondary_kind = $13,
    secondary_player_id = $14,
    secondary_name = $15,
    secondary_temp_id = $16,
    secondary_shirt_number = $17,
    updated_at = $18
WHERE match_id = $1 AND seq = $2`

func (r *EventRepository) Update(ctx context.Context, event matchevent.Event) error {
	if _, err := r.db.ExecContext(ctx, eventUpdateQuery, eventArgs(event)...); err != nil {
		return fmt.Errorf("update match event: %w", err)
	}
	return nil
}

func (r *EventRepository) DeleteFromSeq(ctx context.Context, matchID string, fromSeq int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_events WHERE match_id = $1 AND seq >= $2`, matchID, fromSeq); err != nil {
		return fmt.Errorf("delete match events from seq: %w", err)
	}
	return nil
}

func (r *EventRepository) ReplaceAll(ctx context.Context, matchID string, events []matchevent.Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace match events: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_events WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete match events: %w", err)
	}
	for _, event := range events {
		if _, err := tx.ExecContext(ctx, eventInsertQuery, eventArgs(event)...); err != nil {
			return fmt.Errorf("insert match event seq %d: %w", event.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace match events: %w", err)
	}
	return nil
}

func (r *EventRepository) DeleteByMatch(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM match_events WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete match events: %w", err)
	}
	return nil
}

func eventArgs(event matchevent.Event) []any {
	primaryKind, primaryPlayerID, primaryName, primaryTempID, primaryShirt := personToColumns(event.Primary)
	secondaryKind, secondaryPlayerID, secondaryName, secondaryTempID, secondaryShirt := personToColumns(event.Secondary)
	return []any{
		event.MatchID,
		event.Seq,
		event.Minute,
		event.ExtraMinute,
		event.Type,
		event.Detail,
		event.TeamID,
		primaryKind,
		primaryPlayerID,
		primaryName,
		primaryTempID,
		primaryShirt,
		secondaryKind,
		secondaryPlayerID,
		secondaryName,
		secondaryTempID,
		secondaryShirt,
		event.UpdatedAt,
	}
}

func eventFromRow(row matchEventTableModel) matchevent.Event {
	return matchevent.Event{
		MatchID:     row.MatchID,
		Seq:         row.Seq,
		Minute:      row.Minute,
		ExtraMinute: row.ExtraMinute,
		Type:        row.EventType,
		Detail:      row.Detail,
		TeamID:      row.TeamID,
		Primary:     personFromColumns(row.PrimaryKind, row.PrimaryPlayerID, row.PrimaryName, row.PrimaryTempID, row.PrimaryShirtNumber),
		Secondary:   personFromColumns(row.SecondaryKind, row.SecondaryPlayerID, row.SecondaryName, row.SecondaryTempID, row.SecondaryShirtNumber),
		UpdatedAt:   row.UpdatedAt,
	}
}
