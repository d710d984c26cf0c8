package postgres

import "time"

type xgPointTableModel struct {
	Minute int    `db:"minute"`
	Value  string `db:"value"`
}

type playerStatTableModel struct {
	MatchID           string    `db:"match_id"`
	TeamID            string    `db:"team_id"`
	PersonKey         string    `db:"person_key"`
	PersonKind        string    `db:"person_kind"`
	PersonPlayerID    string    `db:"person_player_id"`
	PersonName        string    `db:"person_name"`
	PersonTempID      string    `db:"person_temp_id"`
	PersonShirtNumber int       `db:"person_shirt_number"`
	MinutesPlayed     int       `db:"minutes_played"`
	Goals             int       `db:"goals"`
	Assists           int       `db:"assists"`
	ShotsTotal        int       `db:"shots_total"`
	PassesTotal       int       `db:"passes_total"`
	Tackles           int       `db:"tackles"`
	YellowCards       int       `db:"yellow_cards"`
	RedCards          int       `db:"red_cards"`
	Saves             int       `db:"saves"`
	Rating            string    `db:"rating"`
	UpdatedAt         time.Time `db:"updated_at"`
}
