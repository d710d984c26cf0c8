package usecase

import "context"

// SnapshotProvider fetches one full feed read for a match. ok=false means
// the feed returned an empty or absent payload, which the worker treats as a
// transient fetch failure.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, matchID string) (Snapshot, bool, error)
}

// Snapshot is one full state read from the external feed for one match.
// Events carry the complete history from kickoff on every read; their array
// position is the authoritative sequence number.
type Snapshot struct {
	MatchID     string
	Status      SnapshotStatus
	Events      []SnapshotEvent
	Lineups     []SnapshotLineup
	TeamStats   []SnapshotTeamStat
	PlayerStats []SnapshotPlayerStat
}

type SnapshotStatus struct {
	Code      string
	Long      string
	Elapsed   int
	HomeScore int
	AwayScore int
}

type SnapshotEvent struct {
	Minute        int
	ExtraMinute   int
	Type          string
	Detail        string
	TeamID        string
	PlayerID      string
	PlayerName    string
	PlayerNumber  int
	RelatedID     string
	RelatedName   string
	RelatedNumber int
}

type SnapshotLineup struct {
	TeamID    string
	Formation string
	Roster    []SnapshotRosterEntry
}

type SnapshotRosterEntry struct {
	PlayerID string
	Name     string
	Number   int
	Position string
	Starting bool
}

type SnapshotTeamStat struct {
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
	ExpectedGoals   []SnapshotXGPoint
}

type SnapshotXGPoint struct {
	Minute int
	Value  string
}

type SnapshotPlayerStat struct {
	TeamID        string
	PlayerID      string
	Name          string
	Number        int
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
}
