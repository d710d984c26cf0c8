package postgres

import "github.com/trackside/livetracker/internal/domain/lineup"

// Person columns are stored denormalized on every row that references one.
// Registered persons carry a player id; unregistered ones carry a name,
// shirt number and the per-match temp id minted at ingest time.
func personToColumns(p lineup.Person) (kind, playerID, name, tempID string, shirtNumber int) {
	return string(p.Kind), p.PlayerID, p.Name, p.TempID, p.ShirtNumber
}

func personFromColumns(kind, playerID, name, tempID string, shirtNumber int) lineup.Person {
	if kind == "" {
		return lineup.Person{}
	}
	return lineup.Person{
		Kind:        lineup.PersonKind(kind),
		PlayerID:    playerID,
		Name:        name,
		TempID:      tempID,
		ShirtNumber: shirtNumber,
	}
}
