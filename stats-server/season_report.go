package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

// SeasonReportArgs is the input schema for season_report.
type SeasonReportArgs struct {
	DatasetID    string   `json:"dataset_id,omitempty" jsonschema:"Dataset id from load_season (default latest)"`
	Competitions []string `json:"competitions,omitempty" jsonschema:"Competitions to include (default all)"`
	Segment      string   `json:"segment,omitempty" jsonschema:"League segment: all|first_half|second_half"`
	TotalRounds  int      `json:"total_rounds,omitempty" jsonschema:"League rounds per season (default 38)"`
	Preset       string   `json:"preset,omitempty" jsonschema:"classic|smoothed|volume (default smoothed)"`
	K            *float64 `json:"k,omitempty" jsonschema:"Smoothing constant (> 0)"`
	Alpha        *float64 `json:"alpha,omitempty" jsonschema:"Minutes exponent (>= 1)"`
	Gamma        *float64 `json:"gamma,omitempty" jsonschema:"Playing-time bonus weight (>= 0)"`
	Beta         *float64 `json:"beta,omitempty" jsonschema:"Playing-time bonus exponent (> 0)"`
	Metric       string   `json:"metric,omitempty" jsonschema:"Series metric (default rating)"`
	Focus        string   `json:"focus,omitempty" jsonschema:"Player for the series chart (empty = team)"`
	Compare      []string `json:"compare,omitempty" jsonschema:"Players for the comparison chart"`
	Write        *bool    `json:"write,omitempty" jsonschema:"Write the report to the derived store (default server setting)"`
	UploadSheet  string   `json:"upload_sheet,omitempty" jsonschema:"Google Sheet URL to publish the rankings to"`
	RatingTab    string   `json:"rating_tab,omitempty" jsonschema:"Tab for the rating table (default Notas)"`
	OffensiveTab string   `json:"offensive_tab,omitempty" jsonschema:"Tab for the offensive table (default Ofensivo)"`
}

type SeasonReportResult struct {
	DatasetID string          `json:"dataset_id"`
	Path      string          `json:"path,omitempty"`
	Uploaded  bool            `json:"uploaded"`
	Report    *summary.Report `json:"report"`
}

func buildSeasonReport(ctx context.Context, a *app, args SeasonReportArgs) (*SeasonReportResult, error) {
	rp, err := ratingParams(args.Preset, args.K, args.Alpha, args.Gamma, args.Beta)
	if err != nil {
		return nil, err
	}
	metric, err := model.ParseMetric(args.Metric)
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
	t := e.Table()

	focus := model.Team()
	if args.Focus != "" {
		if err := checkPlayers(t, []string{args.Focus}); err != nil {
			return nil, err
		}
		focus = model.Player(args.Focus)
	}
	if err := checkPlayers(t, args.Compare); err != nil {
		return nil, err
	}
	var compare []string
	if len(args.Compare) > 0 {
		compare = args.Compare
	}

	params := summary.Params{
		Selection: sel,
		Rating:    rp,
		Metric:    metric,
		Focus:     focus,
		Compare:   compare,
	}
	report, err := summary.BuildReport(t, params)
	if err != nil {
		return nil, err
	}

	out := &SeasonReportResult{DatasetID: e.ID, Report: report}

	write := a.cfg.WriteDerived
	if args.Write != nil {
		write = *args.Write
	}
	if write {
		segment := "all"
		if sel.Split != nil {
			segment = strings.ToLower(string(sel.Split.Segment))
		}
		rel := fmt.Sprintf("reports/%s/%s-%s.json", e.ID, segment, params.Digest())
		if err := a.derived.WriteJSON(rel, report); err != nil {
			return nil, fmt.Errorf("write report: %w", err)
		}
		out.Path = a.derived.Path(rel)
	}

	if args.UploadSheet != "" {
		ratingTab, offensiveTab := args.RatingTab, args.OffensiveTab
		if ratingTab == "" {
			ratingTab = "Notas"
		}
		if offensiveTab == "" {
			offensiveTab = "Ofensivo"
		}
		c, err := a.openSheet(ctx, args.UploadSheet)
		if err != nil {
			return nil, err
		}
		if err := c.UploadReport(ctx, report, ratingTab, offensiveTab); err != nil {
			return nil, err
		}
		out.Uploaded = true
	}

	a.logger.Info("season report built", "dataset", e.ID, "rows", report.Rows, "path", out.Path, "uploaded", out.Uploaded)
	return out, nil
}
