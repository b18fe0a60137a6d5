package main

import (
	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

type ParticipationArgs struct {
	DatasetID    string   `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
	Competitions []string `json:"competitions,omitempty" jsonschema:"Competitions to include (default all)"`
	Segment      string   `json:"segment,omitempty" jsonschema:"League segment: all|first_half|second_half"`
	TotalRounds  int      `json:"total_rounds,omitempty" jsonschema:"League rounds per season (default 38)"`
	Players      []string `json:"players,omitempty" jsonschema:"Players to include (default all, team first)"`
}

type ParticipationResult struct {
	Rows []summary.ParticipationRow `json:"rows"`
}

func buildParticipation(a *app, args ParticipationArgs) (*ParticipationResult, error) {
	e, sel, err := a.resolveSelection(selectionArgs{
		DatasetID:    args.DatasetID,
		Competitions: args.Competitions,
		Segment:      args.Segment,
		TotalRounds:  args.TotalRounds,
	})
	if err != nil {
		return nil, err
	}
	players := args.Players
	if len(players) == 0 {
		players = e.Table().Players()
	} else if err := checkPlayers(e.Table(), players); err != nil {
		return nil, err
	}
	records, err := filter.Apply(e.Table(), sel)
	if err != nil {
		return nil, err
	}

	entities := []model.Entity{model.Team()}
	for _, p := range players {
		entities = append(entities, model.Player(p))
	}
	return &ParticipationResult{Rows: summary.Participation(records, entities)}, nil
}

// RatingRankingArgs is the input schema for rating_ranking. Explicit
// constants override the preset.
type RatingRankingArgs struct {
	DatasetID    string   `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
	Competitions []string `json:"competitions,omitempty" jsonschema:"Competitions to include (default all)"`
	Segment      string   `json:"segment,omitempty" jsonschema:"League segment: all|first_half|second_half"`
	TotalRounds  int      `json:"total_rounds,omitempty" jsonschema:"League rounds per season (default 38)"`
	Preset       string   `json:"preset,omitempty" jsonschema:"classic|smoothed|volume (default smoothed)"`
	K            *float64 `json:"k,omitempty" jsonschema:"Smoothing constant (> 0)"`
	Alpha        *float64 `json:"alpha,omitempty" jsonschema:"Minutes exponent (>= 1)"`
	Gamma        *float64 `json:"gamma,omitempty" jsonschema:"Playing-time bonus weight (>= 0)"`
	Beta         *float64 `json:"beta,omitempty" jsonschema:"Playing-time bonus exponent (> 0)"`
}

func ratingParams(preset string, k, alpha, gamma, beta *float64) (summary.RatingParams, error) {
	return summary.ResolveRatingParams(preset, k, alpha, gamma, beta)
}

func buildRatingRanking(a *app, args RatingRankingArgs) (*summary.RatingRanking, error) {
	p, err := ratingParams(args.Preset, args.K, args.Alpha, args.Gamma, args.Beta)
	if err != nil {
		return nil, err
	}
	e, sel, err := a.resolveSelection(selectionArgs{
		DatasetID:    args.DatasetID,
		Competitions: args.Competitions,
		Segment:      args.Segment,
		TotalRounds:  args.TotalRounds,
	})
	if err != nil {
		return nil, err
	}
	records, err := filter.Apply(e.Table(), sel)
	if err != nil {
		return nil, err
	}
	r, err := summary.RankByRating(records, p)
	if err != nil {
		return nil, err
	}
	r.Round()
	return r, nil
}

type OffensiveRankingArgs struct {
	DatasetID    string   `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
	Competitions []string `json:"competitions,omitempty" jsonschema:"Competitions to include (default all)"`
	Segment      string   `json:"segment,omitempty" jsonschema:"League segment: all|first_half|second_half"`
	TotalRounds  int      `json:"total_rounds,omitempty" jsonschema:"League rounds per season (default 38)"`
}

func buildOffensiveRanking(a *app, args OffensiveRankingArgs) (*summary.OffensiveRanking, error) {
	e, sel, err := a.resolveSelection(selectionArgs{
		DatasetID:    args.DatasetID,
		Competitions: args.Competitions,
		Segment:      args.Segment,
		TotalRounds:  args.TotalRounds,
	})
	if err != nil {
		return nil, err
	}
	records, err := filter.Apply(e.Table(), sel)
	if err != nil {
		return nil, err
	}
	r := summary.RankOffensive(records)
	r.Round()
	return r, nil
}
