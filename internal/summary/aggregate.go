package summary

import (
	"sort"
	"time"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// Aggregate is one entity's reduction of the filtered rows.
type Aggregate struct {
	Entity           model.Entity `json:"entity"`
	MatchesPlayed    int          `json:"matches_played"`
	MinutesTotal     int          `json:"minutes_total"`
	RatingMean       float64      `json:"rating_mean"`
	Goals            int          `json:"goals"`
	Assists          int          `json:"assists"`
	GoalContribution int          `json:"goal_contribution"`
	GoalsAgainst     int          `json:"goals_against"`
	GoalDifference   int          `json:"goal_difference"`
}

// PerMatch divides v by matches played, returning 0 when nothing was played.
func (a Aggregate) PerMatch(v int) float64 {
	if a.MatchesPlayed == 0 {
		return 0
	}
	return float64(v) / float64(a.MatchesPlayed)
}

// accum collects one group before it is reduced.
type accum struct {
	entity    model.Entity
	dates     map[time.Time]struct{}
	against   map[model.MatchKey]int
	minutes   int
	ratingSum float64
	rows      int
	goals     int
	assists   int
}

func newAccum(e model.Entity) *accum {
	return &accum{
		entity:  e,
		dates:   make(map[time.Time]struct{}),
		against: make(map[model.MatchKey]int),
	}
}

func (a *accum) add(r model.MatchRecord) {
	a.dates[r.Date] = struct{}{}
	// goals_against repeats on every row of a match; keep it once per match.
	a.against[r.MatchKey()] = r.GoalsAgainst
	a.minutes += r.MinutesPlayed
	a.ratingSum += r.Rating
	a.rows++
	a.goals += r.Goals
	a.assists += r.Assists
}

func (a *accum) reduce() Aggregate {
	against := 0
	for _, ga := range a.against {
		against += ga
	}
	mean := 0.0
	if a.rows > 0 {
		mean = a.ratingSum / float64(a.rows)
	}
	return Aggregate{
		Entity:           a.entity,
		MatchesPlayed:    len(a.dates),
		MinutesTotal:     a.minutes,
		RatingMean:       mean,
		Goals:            a.goals,
		Assists:          a.assists,
		GoalContribution: a.goals + a.assists,
		GoalsAgainst:     against,
		GoalDifference:   a.goals - against,
	}
}

// AggregateBy reduces records per player (sorted by name) or into a single
// team row.
func AggregateBy(records []model.MatchRecord, by model.Grouping) []Aggregate {
	if by == model.GroupByTeam {
		return []Aggregate{AggregateEntity(records, model.Team())}
	}
	groups := make(map[string]*accum)
	for _, r := range records {
		g := groups[r.PlayerName]
		if g == nil {
			g = newAccum(model.Player(r.PlayerName))
			groups[r.PlayerName] = g
		}
		g.add(r)
	}
	out := make([]Aggregate, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.reduce())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entity.Name < out[j].Entity.Name })
	return out
}

// AggregateEntity reduces the rows belonging to one entity. A player with
// no rows yields a zero aggregate.
func AggregateEntity(records []model.MatchRecord, e model.Entity) Aggregate {
	a := newAccum(e)
	for _, r := range records {
		if !e.IsTeam() && r.PlayerName != e.Name {
			continue
		}
		a.add(r)
	}
	return a.reduce()
}

// GlobalRatingMean is the mean rating over every row, all players pooled.
func GlobalRatingMean(records []model.MatchRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Rating
	}
	return sum / float64(len(records))
}

// ParticipationRow is the matches/minutes line for one entity.
type ParticipationRow struct {
	Entity        model.Entity `json:"entity"`
	Name          string       `json:"name"`
	MatchesPlayed int          `json:"matches_played"`
	MinutesTotal  int          `json:"minutes_total"`
}

// Participation summarizes appearances for the requested entities in order.
func Participation(records []model.MatchRecord, entities []model.Entity) []ParticipationRow {
	out := make([]ParticipationRow, 0, len(entities))
	for _, e := range entities {
		a := AggregateEntity(records, e)
		out = append(out, ParticipationRow{
			Entity:        e,
			Name:          e.String(),
			MatchesPlayed: a.MatchesPlayed,
			MinutesTotal:  a.MinutesTotal,
		})
	}
	return out
}
