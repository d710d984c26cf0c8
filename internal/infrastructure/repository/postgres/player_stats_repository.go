package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/trackside/livetracker/internal/domain/statistics"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

const playerStatUpsertQuery = `INSERT INTO player_statistics (match_id, team_id, person_key, person_kind, person_player_id,
    person_name, person_temp_id, person_shirt_number, minutes_played, goals, assists, shots_total, passes_total,
    tackles, yellow_cards, red_cards, saves, rating, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (match_id, person_key)
DO UPDATE SET
    team_id = EXCLUDED.team_id,
    person_kind = EXCLUDED.person_kind,
    person_player_id = EXCLUDED.person_player_id,
    person_name = EXCLUDED.person_name,
    person_temp_id = EXCLUDED.person_temp_id,
    person_shirt_number = EXCLUDED.person_shirt_number,
    minutes_played = EXCLUDED.minutes_played,
    goals = EXCLUDED.goals,
    assists = EXCLUDED.assists,
    shots_total = EXCLUDED.shots_total,
    passes_total = EXCLUDED.passes_total,
    tackles = EXCLUDED.tackles,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    saves = EXCLUDED.saves,
    rating = EXCLUDED.rating,
    updated_at = EXCLUDED.updated_at`

func (r *PlayerStatsRepository) Upsert(ctx context.Context, stat statistics.PlayerStat) error {
	kind, playerID, name, tempID, shirtNumber := personToColumns(stat.Person)
	_, err := r.db.ExecContext(ctx, playerStatUpsertQuery,
		stat.MatchID,
		stat.TeamID,
		stat.Person.Key(),
		kind,
		playerID,
		name,
		tempID,
		shirtNumber,
		stat.MinutesPlayed,
		stat.Goals,
		stat.Assists,
		stat.ShotsTotal,
		stat.PassesTotal,
		stat.Tackles,
		stat.YellowCards,
		stat.RedCards,
		stat.Saves,
		stat.Rating,
		stat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert player statistics: %w", err)
	}
	return nil
}

func (r *PlayerStatsRepository) DeleteByMatch(ctx context.Context, matchID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM player_statistics WHERE match_id = $1`, matchID); err != nil {
		return fmt.Errorf("delete player statistics: %w", err)
	}
	return nil
}
