package postgres

import "time"

type matchEventTableModel struct {
	MatchID              string    `db:"match_id"`
	Seq                  int       `db:"seq"`
	Minute               int       `db:"minute"`
	ExtraMinute          int       `db:"extra_minute"`
	EventType            string    `db:"event_type"`
	Detail               string    `db:"detail"`
	TeamID               string    `db:"team_id"`
	PrimaryKind          string    `db:"primary_kind"`
	PrimaryPlayerID      string    `db:"primary_player_id"`
	PrimaryName          string    `db:"primary_name"`
	PrimaryTempID        string    `db:"primary_temp_id"`
	PrimaryShirtNumber   int       `db:"primary_shirt_number"`
	SecondaryKind        string    `db:"secondary_kind"`
	SecondaryPlayerID    string    `db:"secondary_player_id"`
	SecondaryName        string    `db:"secondary_name"`
	SecondaryTempID      string    `db:"secondary_temp_id"`
	SecondaryShirtNumber int       `db:"secondary_shirt_number"`
	UpdatedAt            time.Time `db:"updated_at"`
}
