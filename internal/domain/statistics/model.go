package statistics

import (
	"time"

	"github.com/trackside/livetracker/internal/domain/lineup"
)

// TeamStat holds one team's match-to-date cumulative totals. The feed always
// reports cumulative values, so the row is overwritten wholesale each poll.
type TeamStat struct {
	MatchID         string
	TeamID          string
	ShotsTotal      int
	ShotsOnTarget   int
	PossessionPct   float64
	PassesTotal     int
	PassesAccurate  int
	Corners         int
	Offsides        int
	Fouls           int
	YellowCards     int
	RedCards        int
	GoalkeeperSaves int
	UpdatedAt       time.Time
}

// XGPoint is one point of a team's expected-goals series, keyed by elapsed
// minute: unique per minute, value updated in place when the minute recurs.
type XGPoint struct {
	Minute int
	Value  string
}

// PlayerStat holds one person's match-to-date cumulative totals, with the
// same overwrite semantics as TeamStat.
type PlayerStat struct {
	MatchID       string
	TeamID        string
	Person        lineup.Person
	MinutesPlayed int
	Goals         int
	Assists       int
	ShotsTotal    int
	PassesTotal   int
	Tackles       int
	YellowCards   int
	RedCards      int
	Saves         int
	Rating        string
	UpdatedAt     time.Time
}
