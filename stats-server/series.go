package main

import (
	"fmt"

	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

// PlayerSeriesArgs is the input schema for player_series.
type PlayerSeriesArgs struct {
	DatasetID    string   `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
	Competitions []string `json:"competitions,omitempty" jsonschema:"Competitions to include (default all)"`
	Segment      string   `json:"segment,omitempty" jsonschema:"League segment: all|first_half|second_half"`
	TotalRounds  int      `json:"total_rounds,omitempty" jsonschema:"League rounds per season (default 38)"`
	Player       string   `json:"player,omitempty" jsonschema:"Player name (empty = team)"`
	Metric       string   `json:"metric,omitempty" jsonschema:"rating|goals|assists|goal_contribution (default rating)"`
	ByMatchday   bool     `json:"by_matchday,omitempty" jsonschema:"Keep only league points keyed by round"`
}

func buildPlayerSeries(a *app, args PlayerSeriesArgs) (*summary.SeriesResult, error) {
	e, sel, err := a.resolveSelection(selectionArgs{
		DatasetID:    args.DatasetID,
		Competitions: args.Competitions,
		Segment:      args.Segment,
		TotalRounds:  args.TotalRounds,
	})
	if err != nil {
		return nil, err
	}
	metric, err := model.ParseMetric(args.Metric)
	if err != nil {
		return nil, err
	}
	entity := model.Team()
	if args.Player != "" {
		if err := checkPlayers(e.Table(), []string{args.Player}); err != nil {
			return nil, err
		}
		entity = model.Player(args.Player)
	}

	records, err := filter.Apply(e.Table(), sel)
	if err != nil {
		return nil, err
	}
	s := summary.Series(records, entity, metric)
	if args.ByMatchday {
		s = summary.MatchdaySeries(s)
	}
	return &s, nil
}

type ComparePlayersArgs struct {
	DatasetID    string   `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
	Competitions []string `json:"competitions,omitempty" jsonschema:"Competitions to include (default all)"`
	Segment      string   `json:"segment,omitempty" jsonschema:"League segment: all|first_half|second_half"`
	TotalRounds  int      `json:"total_rounds,omitempty" jsonschema:"League rounds per season (default 38)"`
	Players      []string `json:"players,omitempty" jsonschema:"Players to compare (default first two alphabetically)"`
	Metric       string   `json:"metric,omitempty" jsonschema:"rating|goals|assists|goal_contribution (default rating)"`
}

type ComparePlayersResult struct {
	Metric model.Metric           `json:"metric"`
	Series []summary.SeriesResult `json:"series"`
}

func buildComparePlayers(a *app, args ComparePlayersArgs) (*ComparePlayersResult, error) {
	e, sel, err := a.resolveSelection(selectionArgs{
		DatasetID:    args.DatasetID,
		Competitions: args.Competitions,
		Segment:      args.Segment,
		TotalRounds:  args.TotalRounds,
	})
	if err != nil {
		return nil, err
	}
	metric, err := model.ParseMetric(args.Metric)
	if err != nil {
		return nil, err
	}
	players := args.Players
	if len(players) == 0 {
		players = summary.DefaultComparison(e.Table().Players())
	}
	if err := checkPlayers(e.Table(), players); err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("dataset has no players")
	}

	records, err := filter.Apply(e.Table(), sel)
	if err != nil {
		return nil, err
	}
	return &ComparePlayersResult{Metric: metric, Series: summary.CompareSeries(records, players, metric)}, nil
}
