package postgres

import "time"

type matchStatusTableModel struct {
	MatchID    string    `db:"match_id"`
	StatusCode string    `db:"status_code"`
	StatusLong string    `db:"status_long"`
	Elapsed    int       `db:"elapsed"`
	HomeScore  int       `db:"home_score"`
	AwayScore  int       `db:"away_score"`
	UpdatedAt  time.Time `db:"updated_at"`
}
