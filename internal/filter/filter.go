// Package filter restricts a season table to the competitions and league
// segment a request asks for.
package filter

import (
	"fmt"
	"strings"

	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// DefaultTotalRounds matches a 20-team double round robin; the split
// falls after round 19.
const DefaultTotalRounds = 38

type Reason string

const (
	ReasonNoCompetitions Reason = "no_competitions"
	ReasonNoRows         Reason = "no_rows"
)

// EmptySelectionError means nothing is left to compute. It is a user
// input problem, reported as a warning rather than a failure.
type EmptySelectionError struct {
	Reason Reason
}

func (e *EmptySelectionError) Error() string {
	if e.Reason == ReasonNoCompetitions {
		return "no competition selected: select at least one competition"
	}
	return "no rows match the selected competitions"
}

// LeagueSplit slices the league competition into halves.
type LeagueSplit struct {
	TotalRounds int           `json:"total_rounds"`
	Segment     model.Segment `json:"segment"`
}

// SplitPoint is the last round of the first half.
func (s LeagueSplit) SplitPoint() int {
	return s.TotalRounds / 2
}

func (s LeagueSplit) validate() error {
	if s.TotalRounds < 1 {
		return fmt.Errorf("total_rounds must be >= 1, got %d", s.TotalRounds)
	}
	switch s.Segment {
	case model.SegmentAll, model.SegmentFirstHalf, model.SegmentSecondHalf:
		return nil
	}
	return fmt.Errorf("unknown segment: %q", s.Segment)
}

// keeps reports whether a league row with the given round survives.
func (s LeagueSplit) keeps(round int) bool {
	switch s.Segment {
	case model.SegmentFirstHalf:
		return round <= s.SplitPoint()
	case model.SegmentSecondHalf:
		return round > s.SplitPoint()
	}
	return true
}

// Selection is the filter state of one request.
type Selection struct {
	Competitions []string     `json:"competitions"`
	Split        *LeagueSplit `json:"split,omitempty"`
}

// All selects every competition in the table with no league split.
func All(t *ingest.Table) Selection {
	return Selection{Competitions: t.Competitions()}
}

// Apply returns the rows that match sel. The table's league rows already
// carry their round numbers, which are computed over the whole season.
func Apply(t *ingest.Table, sel Selection) ([]model.MatchRecord, error) {
	if len(sel.Competitions) == 0 {
		return nil, &EmptySelectionError{Reason: ReasonNoCompetitions}
	}
	if sel.Split != nil {
		if err := sel.Split.validate(); err != nil {
			return nil, err
		}
	}

	selected := make(map[string]struct{}, len(sel.Competitions))
	for _, c := range sel.Competitions {
		selected[strings.TrimSpace(c)] = struct{}{}
	}
	league := t.League()
	_, leagueSelected := selected[league]

	all := t.Records()
	out := make([]model.MatchRecord, 0, len(all))
	for _, r := range all {
		if _, ok := selected[r.Competition]; !ok {
			continue
		}
		if leagueSelected && sel.Split != nil && r.Competition == league && !sel.Split.keeps(r.RoundNumber) {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, &EmptySelectionError{Reason: ReasonNoRows}
	}
	return out, nil
}
