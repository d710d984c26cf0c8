package matchevent

import (
	"time"

	"github.com/trackside/livetracker/internal/domain/lineup"
)

const (
	TypeGoal         = "GOAL"
	TypeCard         = "CARD"
	TypeSubstitution = "SUBSTITUTION"
	TypeReview       = "VAR_REVIEW"
)

// Event is one entry in a match's ordered event list. Seq is the event's
// position in the feed's own array, the only reliable total order: elapsed
// minute alone is neither unique nor monotonic across events.
type Event struct {
	MatchID     string
	Seq         int
	Minute      int
	ExtraMinute int
	Type        string
	Detail      string
	TeamID      string
	// Primary is the acting person; Secondary is the assist or the player
	// substituted out, when the feed supplies one.
	Primary   lineup.Person
	Secondary lineup.Person
	UpdatedAt time.Time
}
