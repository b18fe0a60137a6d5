package summary

import (
	"math"
	"sort"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// RatingRow is one line of the adjusted-rating table.
type RatingRow struct {
	Position          int          `json:"position,omitempty"`
	Entity            model.Entity `json:"entity"`
	Name              string       `json:"name"`
	AdjustedRating    float64      `json:"adjusted_rating"`
	RatingMean        float64      `json:"rating_mean"`
	MatchesEquivalent float64      `json:"matches_equivalent"`
	Base              float64      `json:"base"`
	Bonus             float64      `json:"bonus"`
	MatchesPlayed     int          `json:"matches_played"`
	MinutesTotal      int          `json:"minutes_total"`
}

// RatingRanking is the ranked player table plus the team row, which never
// takes a position.
type RatingRanking struct {
	Params           RatingParams `json:"params"`
	GlobalRatingMean float64      `json:"global_rating_mean"`
	MinutesMax       int          `json:"minutes_max"`
	Team             RatingRow    `json:"team"`
	Players          []RatingRow  `json:"players"`
}

// AdjustedRating applies the formula to one aggregate. minutesMax is the
// largest minutes total among the ranked players.
func AdjustedRating(a Aggregate, globalMean float64, minutesMax int, p RatingParams) RatingRow {
	eq := math.Pow(float64(a.MinutesTotal)/MinutesPerMatch, p.Alpha)
	base := (eq*a.RatingMean + p.K*globalMean) / (eq + p.K)
	if math.IsInf(eq, 1) {
		// Smoothing vanishes in the limit.
		base = a.RatingMean
	}
	bonus := 0.0
	if minutesMax > 0 && p.Gamma != 0 {
		bonus = p.Gamma * math.Pow(float64(a.MinutesTotal)/float64(minutesMax), p.Beta)
	}
	return RatingRow{
		Entity:            a.Entity,
		Name:              a.Entity.String(),
		AdjustedRating:    base + bonus,
		RatingMean:        a.RatingMean,
		MatchesEquivalent: eq,
		Base:              base,
		Bonus:             bonus,
		MatchesPlayed:     a.MatchesPlayed,
		MinutesTotal:      a.MinutesTotal,
	}
}

// RankByRating builds the adjusted-rating ranking over the filtered rows.
func RankByRating(records []model.MatchRecord, p RatingParams) (*RatingRanking, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	globalMean := GlobalRatingMean(records)
	players := AggregateBy(records, model.GroupByPlayer)

	minutesMax := 0
	for _, a := range players {
		if a.MinutesTotal > minutesMax {
			minutesMax = a.MinutesTotal
		}
	}

	rows := make([]RatingRow, 0, len(players))
	adjustedSum := 0.0
	for _, a := range players {
		row := AdjustedRating(a, globalMean, minutesMax, p)
		adjustedSum += row.AdjustedRating
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].AdjustedRating != rows[j].AdjustedRating {
			return rows[i].AdjustedRating > rows[j].AdjustedRating
		}
		if rows[i].RatingMean != rows[j].RatingMean {
			return rows[i].RatingMean > rows[j].RatingMean
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Position = i + 1
	}

	team := AggregateEntity(records, model.Team())
	teamAdjusted := globalMean
	if p.Gamma > 0 && len(rows) > 0 {
		teamAdjusted = adjustedSum / float64(len(rows))
	}
	teamRow := RatingRow{
		Entity:         team.Entity,
		Name:           team.Entity.String(),
		AdjustedRating: teamAdjusted,
		RatingMean:     team.RatingMean,
		MatchesPlayed:  team.MatchesPlayed,
		MinutesTotal:   team.MinutesTotal,
	}

	return &RatingRanking{
		Params:           p,
		GlobalRatingMean: globalMean,
		MinutesMax:       minutesMax,
		Team:             teamRow,
		Players:          rows,
	}, nil
}
