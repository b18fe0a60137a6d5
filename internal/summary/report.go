package summary

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// Params is everything a caller can tune for one recomputation.
type Params struct {
	Selection filter.Selection
	Rating    RatingParams
	Metric    model.Metric
	// Focus is the entity whose series is plotted. A nameless player means
	// the team.
	Focus model.Entity
	// Compare lists players for the comparison chart. Nil picks the
	// default pair.
	Compare []string
}

// DefaultParams selects every competition of t with default constants.
func DefaultParams(t *ingest.Table) Params {
	return Params{
		Selection: filter.All(t),
		Rating:    DefaultRatingParams,
		Metric:    model.MetricRating,
		Focus:     model.Team(),
	}
}

// Digest identifies the parameter set. Equal selections, constants and
// chart choices give the same digest regardless of competition order.
func (p Params) Digest() string {
	comps := append([]string(nil), p.Selection.Competitions...)
	sort.Strings(comps)
	metric := p.Metric
	if metric == "" {
		metric = model.MetricRating
	}
	focus := ""
	if p.Focus.Kind == model.KindPlayer {
		focus = p.Focus.Name
	}
	key, _ := json.Marshal(struct {
		Competitions []string           `json:"competitions"`
		Split        *filter.LeagueSplit `json:"split"`
		Rating       RatingParams        `json:"rating"`
		Metric       model.Metric        `json:"metric"`
		Focus        string              `json:"focus"`
		Compare      []string            `json:"compare"`
	}{comps, p.Selection.Split, p.Rating, metric, focus, p.Compare})
	return uuid.NewSHA1(uuid.NameSpaceOID, key).String()[:8]
}

type Report struct {
	GeneratedAtUTC string              `json:"generated_at_utc"`
	League         string              `json:"league"`
	Competitions   []string            `json:"competitions"`
	Split          *filter.LeagueSplit `json:"split,omitempty"`
	Rows           int                 `json:"rows"`
	Participation  []ParticipationRow  `json:"participation"`
	Series         SeriesResult        `json:"series"`
	Comparison     []SeriesResult      `json:"comparison"`
	Rating         *RatingRanking      `json:"rating_ranking"`
	Offensive      *OffensiveRanking   `json:"offensive_ranking"`
}

// BuildReport runs filter, aggregation and ranking for one parameter set.
// An empty selection comes back as *filter.EmptySelectionError.
func BuildReport(t *ingest.Table, p Params) (*Report, error) {
	if err := p.Rating.Validate(); err != nil {
		return nil, err
	}
	records, err := filter.Apply(t, p.Selection)
	if err != nil {
		return nil, err
	}
	metric := p.Metric
	if metric == "" {
		metric = model.MetricRating
	}

	rating, err := RankByRating(records, p.Rating)
	if err != nil {
		return nil, err
	}

	players := t.Players()
	entities := make([]model.Entity, 0, len(players)+1)
	entities = append(entities, model.Team())
	for _, name := range players {
		entities = append(entities, model.Player(name))
	}

	focus := p.Focus
	if !focus.IsTeam() && focus.Name == "" {
		focus = model.Team()
	}

	compare := p.Compare
	if compare == nil {
		compare = DefaultComparison(players)
	}

	r := &Report{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		League:         t.League(),
		Competitions:   p.Selection.Competitions,
		Split:          p.Selection.Split,
		Rows:           len(records),
		Participation:  Participation(records, entities),
		Series:         Series(records, focus, metric),
		Comparison:     CompareSeries(records, compare, metric),
		Rating:         rating,
		Offensive:      RankOffensive(records),
	}
	r.round()
	return r, nil
}

// round2 rounds for presentation, the way the season tables are shown.
func round2(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	v, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return v
}

func (r *Report) round() {
	r.Rating.Round()
	r.Offensive.Round()
}

// Round rounds every presentation value to two decimals. Positions are
// already fixed, so ordering is not affected.
func (r *RatingRanking) Round() {
	r.GlobalRatingMean = round2(r.GlobalRatingMean)
	roundRating(&r.Team)
	for i := range r.Players {
		roundRating(&r.Players[i])
	}
}

func (r *OffensiveRanking) Round() {
	roundOffensive(&r.Team)
	for i := range r.Players {
		roundOffensive(&r.Players[i])
	}
}

func roundRating(row *RatingRow) {
	row.AdjustedRating = round2(row.AdjustedRating)
	row.RatingMean = round2(row.RatingMean)
	row.MatchesEquivalent = round2(row.MatchesEquivalent)
	row.Base = round2(row.Base)
	row.Bonus = round2(row.Bonus)
}

func roundOffensive(row *OffensiveRow) {
	row.GoalsPerMatch = round2(row.GoalsPerMatch)
	row.AssistsPerMatch = round2(row.AssistsPerMatch)
	row.GoalContributionPerMatch = round2(row.GoalContributionPerMatch)
}

func WriteReport(path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}

	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
