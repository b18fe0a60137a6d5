package model

import (
	"encoding/json"
	"fmt"
)

type EntityKind int

const (
	KindPlayer EntityKind = iota
	KindTeam
)

func (k EntityKind) String() string {
	if k == KindTeam {
		return "team"
	}
	return "player"
}

// Entity is either a named player or the whole team. The team is its own
// variant so a player literally called "Team" never collides with it.
type Entity struct {
	Kind EntityKind
	Name string
}

// TeamLabel is how the team row is titled in rendered tables.
const TeamLabel = "Equipo General"

func Player(name string) Entity { return Entity{Kind: KindPlayer, Name: name} }

func Team() Entity { return Entity{Kind: KindTeam} }

func (e Entity) IsTeam() bool { return e.Kind == KindTeam }

func (e Entity) String() string {
	if e.IsTeam() {
		return TeamLabel
	}
	return e.Name
}

type entityJSON struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

func (e Entity) MarshalJSON() ([]byte, error) {
	out := entityJSON{Kind: e.Kind.String()}
	if !e.IsTeam() {
		out.Name = e.Name
	}
	return json.Marshal(out)
}

func (e *Entity) UnmarshalJSON(b []byte) error {
	var in entityJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Kind {
	case "team":
		*e = Team()
	case "player", "":
		if in.Name == "" {
			return fmt.Errorf("player entity requires a name")
		}
		*e = Player(in.Name)
	default:
		return fmt.Errorf("unknown entity kind: %q", in.Kind)
	}
	return nil
}

// Grouping selects how records are reduced by the aggregator.
type Grouping int

const (
	GroupByPlayer Grouping = iota
	GroupByTeam
)
