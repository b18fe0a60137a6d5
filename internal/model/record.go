package model

import "time"

// MatchRecord is one player's line for one match. Records are immutable once
// a table is built; every view is recomputed from them.
type MatchRecord struct {
	Date          time.Time `json:"date"`
	Competition   string    `json:"competition"`
	PlayerName    string    `json:"player_name"`
	Goals         int       `json:"goals"`
	Assists       int       `json:"assists"`
	Rating        float64   `json:"rating"`
	MinutesPlayed int       `json:"minutes_played"`
	// GoalsAgainst is a team-level fact repeated on every row of a match.
	GoalsAgainst int    `json:"goals_against"`
	Opponent     string `json:"opponent,omitempty"`

	GoalContribution int `json:"goal_contribution"`
	GoalDifference   int `json:"goal_difference"`
	// RoundNumber is 0 outside the league competition.
	RoundNumber int `json:"round_number,omitempty"`
}

// MatchKey identifies a single team match. Goals against are deduplicated on it.
type MatchKey struct {
	Date        time.Time
	Competition string
}

func (r MatchRecord) MatchKey() MatchKey {
	return MatchKey{Date: r.Date, Competition: r.Competition}
}
