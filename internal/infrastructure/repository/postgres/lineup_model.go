package postgres

import "time"

type lineupTableModel struct {
	MatchID   string    `db:"match_id"`
	TeamID    string    `db:"team_id"`
	Formation string    `db:"formation"`
	CreatedAt time.Time `db:"created_at"`
}

type rosterEntryTableModel struct {
	MatchID           string `db:"match_id"`
	TeamID            string `db:"team_id"`
	PersonKind        string `db:"person_kind"`
	PersonPlayerID    string `db:"person_player_id"`
	PersonName        string `db:"person_name"`
	PersonTempID      string `db:"person_temp_id"`
	PersonShirtNumber int    `db:"person_shirt_number"`
	Position          string `db:"position"`
	ShirtNumber       int    `db:"shirt_number"`
	Starting          bool   `db:"starting"`
	Slot              int    `db:"slot"`
}
