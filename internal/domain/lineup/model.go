package lineup

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

type PersonKind string

const (
	PersonRegistered   PersonKind = "registered"
	PersonUnregistered PersonKind = "unregistered"
)

// Person identifies who an event or roster entry refers to. The feed omits
// registry ids for obscure players, coaches and the occasional malformed
// entry; those become unregistered persons keyed by name for the lifetime of
// one match.
type Person struct {
	Kind     PersonKind
	PlayerID string
	// Unregistered fields.
	Name        string
	ShirtNumber int
	TempID      string
}

func Registered(playerID string) Person {
	return Person{Kind: PersonRegistered, PlayerID: playerID}
}

func Unregistered(tempID, name string, shirtNumber int) Person {
	return Person{
		Kind:        PersonUnregistered,
		TempID:      tempID,
		Name:        strings.TrimSpace(name),
		ShirtNumber: shirtNumber,
	}
}

func (p Person) IsZero() bool {
	return p.Kind == ""
}

// Key returns the identity used in roster fingerprints and event references.
func (p Person) Key() string {
	if p.Kind == PersonRegistered {
		return "p:" + p.PlayerID
	}
	return "u:" + strings.ToLower(strings.TrimSpace(p.Name))
}

// RosterEntry is one slot in a team's published lineup.
type RosterEntry struct {
	MatchID     string
	TeamID      string
	Person      Person
	Position    string
	ShirtNumber int
	Starting    bool
	Slot        int
}

// Lineup is one team's published formation and roster for one match. It is
// replaced wholesale, never patched, when the feed's roster composition
// changes mid-match.
type Lineup struct {
	MatchID   string
	TeamID    string
	Formation string
	Roster    []RosterEntry
	CreatedAt time.Time
}

// Fingerprint is a structural digest of a match's roster composition: which
// teams, how many entries per team, and the identity set per team. Events and
// statistics hold references into roster entries, so any composition change
// invalidates everything derived from the roster.
type Fingerprint struct {
	Teams []TeamFingerprint
}

type TeamFingerprint struct {
	TeamID      string
	PlayerCount int
	Identities  []string
}

func FingerprintOf(lineups []Lineup) Fingerprint {
	teams := make([]TeamFingerprint, 0, len(lineups))
	for _, item := range lineups {
		identities := make([]string, 0, len(item.Roster))
		for _, entry := range item.Roster {
			identities = append(identities, entry.Person.Key())
		}
		sort.Strings(identities)
		teams = append(teams, TeamFingerprint{
			TeamID:      item.TeamID,
			PlayerCount: len(item.Roster),
			Identities:  identities,
		})
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })
	return Fingerprint{Teams: teams}
}

func (f Fingerprint) Equal(other Fingerprint) bool {
	return f.String() == other.String()
}

func (f Fingerprint) String() string {
	var b strings.Builder
	for _, team := range f.Teams {
		b.WriteString(team.TeamID)
		b.WriteString("#")
		b.WriteString(strconv.Itoa(team.PlayerCount))
		b.WriteString("[")
		b.WriteString(strings.Join(team.Identities, ","))
		b.WriteString("]")
	}
	return b.String()
}
