package sportsfeed

import (
	"strings"

	"github.com/trackside/livetracker/internal/domain/matchevent"
	"github.com/trackside/livetracker/internal/usecase"
)

type matchEnvelope struct {
	Data *matchPayload `json:"data"`
}

type matchPayload struct {
	ID      string          `json:"id"`
	Status  statusPayload   `json:"status"`
	Events  []eventPayload  `json:"events"`
	Lineups []lineupPayload `json:"lineups"`
	Stats   statsPayload    `json:"statistics"`
}

type statusPayload struct {
	Code      string `json:"short"`
	Long      string `json:"long"`
	Elapsed   int    `json:"elapsed"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

type eventPayload struct {
	Minute        int    `json:"minute"`
	ExtraMinute   int    `json:"extra_minute"`
	Type          string `json:"type"`
	Detail        string `json:"detail"`
	TeamID        string `json:"team_id"`
	PlayerID      string `json:"player_id"`
	PlayerName    string `json:"player_name"`
	PlayerNumber  int    `json:"player_number"`
	RelatedID     string `json:"related_player_id"`
	RelatedName   string `json:"related_player_name"`
	RelatedNumber int    `json:"related_player_number"`
}

type lineupPayload struct {
	TeamID    string          `json:"team_id"`
	Formation string          `json:"formation"`
	Roster    []rosterPayload `json:"players"`
}

type rosterPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Number   int    `json:"number"`
	Position string `json:"position"`
	Starting bool   `json:"starting"`
}

type statsPayload struct {
	Teams   []teamStatPayload   `json:"teams"`
	Players []playerStatPayload `json:"players"`
}

type teamStatPayload struct {
	TeamID          string           `json:"team_id"`
	ShotsTotal      int              `json:"shots_total"`
	ShotsOnTarget   int              `json:"shots_on_target"`
	PossessionPct   float64          `json:"possession_pct"`
	PassesTotal     int              `json:"passes_total"`
	PassesAccurate  int              `json:"passes_accurate"`
	Corners         int              `json:"corners"`
	Offsides        int              `json:"offsides"`
	Fouls           int              `json:"fouls"`
	YellowCards     int              `json:"yellow_cards"`
	RedCards        int              `json:"red_cards"`
	GoalkeeperSaves int              `json:"goalkeeper_saves"`
	ExpectedGoals   []xgPointPayload `json:"expected_goals"`
}

type xgPointPayload struct {
	Minute int    `json:"minute"`
	Value  string `json:"value"`
}

type playerStatPayload struct {
	TeamID        string `json:"team_id"`
	PlayerID      string `json:"player_id"`
	Name          string `json:"name"`
	Number        int    `json:"number"`
	MinutesPlayed int    `json:"minutes_played"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	ShotsTotal    int    `json:"shots_total"`
	PassesTotal   int    `json:"passes_total"`
	Tackles       int    `json:"tackles"`
	YellowCards   int    `json:"yellow_cards"`
	RedCards      int    `json:"red_cards"`
	Saves         int    `json:"saves"`
	Rating        string `json:"rating"`
}

// feedEventTypes folds the feed's type spellings onto the domain vocabulary.
// Unknown types pass through uppercased; events are stored and served as-is
// either way, so an unmapped type is cosmetic rather than lossy.
var feedEventTypes = map[string]string{
	"goal":         matchevent.TypeGoal,
	"own_goal":     matchevent.TypeGoal,
	"penalty":      matchevent.TypeGoal,
	"card":         matchevent.TypeCard,
	"yellowcard":   matchevent.TypeCard,
	"redcard":      matchevent.TypeCard,
	"substitution": matchevent.TypeSubstitution,
	"subst":        matchevent.TypeSubstitution,
	"var":          matchevent.TypeReview,
	"var_review":   matchevent.TypeReview,
}

func normalizeEventType(value string) string {
	value = strings.TrimSpace(value)
	if mapped, ok := feedEventTypes[strings.ToLower(value)]; ok {
		return mapped
	}
	return strings.ToUpper(value)
}

func mapSnapshot(matchID string, payload matchPayload) usecase.Snapshot {
	out := usecase.Snapshot{
		MatchID: matchID,
		Status: usecase.SnapshotStatus{
			Code:      strings.TrimSpace(payload.Status.Code),
			Long:      strings.TrimSpace(payload.Status.Long),
			Elapsed:   payload.Status.Elapsed,
			HomeScore: payload.Status.HomeScore,
			AwayScore: payload.Status.AwayScore,
		},
	}

	if len(payload.Events) > 0 {
		out.Events = make([]usecase.SnapshotEvent, 0, len(payload.Events))
		for _, item := range payload.Events {
			out.Events = append(out.Events, usecase.SnapshotEvent{
				Minute:        item.Minute,
				ExtraMinute:   item.ExtraMinute,
				Type:          normalizeEventType(item.Type),
				Detail:        strings.TrimSpace(item.Detail),
				TeamID:        strings.TrimSpace(item.TeamID),
				PlayerID:      strings.TrimSpace(item.PlayerID),
				PlayerName:    strings.TrimSpace(item.PlayerName),
				PlayerNumber:  item.PlayerNumber,
				RelatedID:     strings.TrimSpace(item.RelatedID),
				RelatedName:   strings.TrimSpace(item.RelatedName),
				RelatedNumber: item.RelatedNumber,
			})
		}
	}

	if len(payload.Lineups) > 0 {
		out.Lineups = make([]usecase.SnapshotLineup, 0, len(payload.Lineups))
		for _, item := range payload.Lineups {
			lineup := usecase.SnapshotLineup{
				TeamID:    strings.TrimSpace(item.TeamID),
				Formation: strings.TrimSpace(item.Formation),
			}
			for _, entry := range item.Roster {
				lineup.Roster = append(lineup.Roster, usecase.SnapshotRosterEntry{
					PlayerID: strings.TrimSpace(entry.PlayerID),
					Name:     strings.TrimSpace(entry.Name),
					Number:   entry.Number,
					Position: strings.TrimSpace(entry.Position),
					Starting: entry.Starting,
				})
			}
			out.Lineups = append(out.Lineups, lineup)
		}
	}

	if len(payload.Stats.Teams) > 0 {
		out.TeamStats = make([]usecase.SnapshotTeamStat, 0, len(payload.Stats.Teams))
		for _, item := range payload.Stats.Teams {
			stat := usecase.SnapshotTeamStat{
				TeamID:          strings.TrimSpace(item.TeamID),
				ShotsTotal:      item.ShotsTotal,
				ShotsOnTarget:   item.ShotsOnTarget,
				PossessionPct:   item.PossessionPct,
				PassesTotal:     item.PassesTotal,
				PassesAccurate:  item.PassesAccurate,
				Corners:         item.Corners,
				Offsides:        item.Offsides,
				Fouls:           item.Fouls,
				YellowCards:     item.YellowCards,
				RedCards:        item.RedCards,
				GoalkeeperSaves: item.GoalkeeperSaves,
			}
			for _, point := range item.ExpectedGoals {
				stat.ExpectedGoals = append(stat.ExpectedGoals, usecase.SnapshotXGPoint{
					Minute: point.Minute,
					Value:  strings.TrimSpace(point.Value),
				})
			}
			out.TeamStats = append(out.TeamStats, stat)
		}
	}

	if len(payload.Stats.Players) > 0 {
		out.PlayerStats = make([]usecase.SnapshotPlayerStat, 0, len(payload.Stats.Players))
		for _, item := range payload.Stats.Players {
			out.PlayerStats = append(out.PlayerStats, usecase.SnapshotPlayerStat{
				TeamID:        strings.TrimSpace(item.TeamID),
				PlayerID:      strings.TrimSpace(item.PlayerID),
				Name:          strings.TrimSpace(item.Name),
				Number:        item.Number,
				MinutesPlayed: item.MinutesPlayed,
				Goals:         item.Goals,
				Assists:       item.Assists,
				ShotsTotal:    item.ShotsTotal,
				PassesTotal:   item.PassesTotal,
				Tackles:       item.Tackles,
				YellowCards:   item.YellowCards,
				RedCards:      item.RedCards,
				Saves:         item.Saves,
				Rating:        strings.TrimSpace(item.Rating),
			})
		}
	}

	return out
}
