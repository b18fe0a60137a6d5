package summary

import (
	"sort"
	"time"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// Point is one match on a plotted series, with the context shown next to it.
type Point struct {
	Date             time.Time `json:"date"`
	Value            float64   `json:"value"`
	RoundNumber      int       `json:"round_number,omitempty"`
	Competition      string    `json:"competition"`
	Opponent         string    `json:"opponent,omitempty"`
	GoalsAgainst     int       `json:"goals_against"`
	Goals            int       `json:"goals"`
	Assists          int       `json:"assists"`
	GoalContribution int       `json:"goal_contribution"`
	Rating           float64   `json:"rating"`
}

type SeriesResult struct {
	Entity model.Entity `json:"entity"`
	Name   string       `json:"name"`
	Metric model.Metric `json:"metric"`
	Points []Point      `json:"points"`
}

// Series builds the per-match series of metric for e, oldest first. Player
// series keep one point per row; the team series merges the rows of each
// (date, competition, opponent) match.
func Series(records []model.MatchRecord, e model.Entity, metric model.Metric) SeriesResult {
	var points []Point
	if e.IsTeam() {
		points = teamPoints(records, metric)
	} else {
		points = playerPoints(records, e.Name, metric)
	}
	sortPoints(points)
	return SeriesResult{Entity: e, Name: e.String(), Metric: metric, Points: points}
}

func playerPoints(records []model.MatchRecord, name string, metric model.Metric) []Point {
	out := make([]Point, 0)
	for _, r := range records {
		if r.PlayerName != name {
			continue
		}
		out = append(out, Point{
			Date:             r.Date,
			Value:            metric.Value(r),
			RoundNumber:      r.RoundNumber,
			Competition:      r.Competition,
			Opponent:         r.Opponent,
			GoalsAgainst:     r.GoalsAgainst,
			Goals:            r.Goals,
			Assists:          r.Assists,
			GoalContribution: r.GoalContribution,
			Rating:           r.Rating,
		})
	}
	return out
}

type matchGroup struct {
	date        time.Time
	competition string
	opponent    string
}

func teamPoints(records []model.MatchRecord, metric model.Metric) []Point {
	type acc struct {
		p         Point
		ratingSum float64
		rows      int
	}
	groups := make(map[matchGroup]*acc)
	order := make([]matchGroup, 0)
	for _, r := range records {
		k := matchGroup{date: r.Date, competition: r.Competition, opponent: r.Opponent}
		g := groups[k]
		if g == nil {
			g = &acc{p: Point{
				Date:         r.Date,
				RoundNumber:  r.RoundNumber,
				Competition:  r.Competition,
				Opponent:     r.Opponent,
				GoalsAgainst: r.GoalsAgainst,
			}}
			groups[k] = g
			order = append(order, k)
		}
		g.p.Goals += r.Goals
		g.p.Assists += r.Assists
		g.p.GoalContribution += r.GoalContribution
		g.ratingSum += r.Rating
		g.rows++
	}

	out := make([]Point, 0, len(order))
	for _, k := range order {
		g := groups[k]
		g.p.Rating = g.ratingSum / float64(g.rows)
		switch metric {
		case model.MetricGoals:
			g.p.Value = float64(g.p.Goals)
		case model.MetricAssists:
			g.p.Value = float64(g.p.Assists)
		case model.MetricGoalContribution:
			g.p.Value = float64(g.p.GoalContribution)
		default:
			g.p.Value = g.p.Rating
		}
		out = append(out, g.p)
	}
	return out
}

func sortPoints(points []Point) {
	sort.SliceStable(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		if points[i].Competition != points[j].Competition {
			return points[i].Competition < points[j].Competition
		}
		return points[i].Opponent < points[j].Opponent
	})
}

// CompareSeries returns one series per player, in the order given.
func CompareSeries(records []model.MatchRecord, players []string, metric model.Metric) []SeriesResult {
	out := make([]SeriesResult, 0, len(players))
	for _, name := range players {
		out = append(out, Series(records, model.Player(name), metric))
	}
	return out
}

// DefaultComparison is the initial comparison selection: the first two
// players alphabetically, or all of them when there are fewer.
func DefaultComparison(players []string) []string {
	sorted := append([]string{}, players...)
	sort.Strings(sorted)
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	return sorted
}

// MatchdaySeries keeps only league points, which carry a round number, so
// the series can be plotted by matchday instead of by date.
func MatchdaySeries(s SeriesResult) SeriesResult {
	out := SeriesResult{Entity: s.Entity, Name: s.Name, Metric: s.Metric, Points: make([]Point, 0)}
	for _, p := range s.Points {
		if p.RoundNumber > 0 {
			out.Points = append(out.Points, p)
		}
	}
	return out
}
