package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

const seasonCSV = `date,competition,player_name,goals,assists,rating,minutes_played
10/01/2024,Liga,Ana,1,0,7.0,90
10/01/2024,Liga,Bea,0,1,6.5,90
14/01/2024,Copa,Ana,2,0,8.0,90
17/01/2024,Liga,Bea,0,0,6.0,60
`

func writeSeason(t *testing.T) (string, options) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "season.csv")
	if err := os.WriteFile(path, []byte(seasonCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, options{
		csvPath:     path,
		league:      ingest.DefaultLeague,
		mode:        "auto",
		segment:     "all",
		totalRounds: 2,
		preset:      "classic",
		metric:      "rating",
		derivedRoot: filepath.Join(dir, "derived"),
		out:         "reports/season.json",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_WritesReport(t *testing.T) {
	dir, o := writeSeason(t)
	o.focus = "Ana"
	path, err := run(context.Background(), o, quietLogger())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if path != filepath.Join(dir, "derived", "reports", "season.json") {
		t.Errorf("path = %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var r struct {
		Rows   int `json:"rows"`
		Series struct {
			Name string `json:"name"`
		} `json:"series"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatal(err)
	}
	if r.Rows != 4 || r.Series.Name != "Ana" {
		t.Errorf("report = %+v", r)
	}
}

func TestRun_EmptySelection(t *testing.T) {
	_, o := writeSeason(t)
	o.competitions = "Supercopa"
	_, err := run(context.Background(), o, quietLogger())
	var ee *filter.EmptySelectionError
	if !errors.As(err, &ee) || ee.Reason != filter.ReasonNoRows {
		t.Errorf("err = %v, want no_rows", err)
	}
}

func TestRun_NoSource(t *testing.T) {
	_, o := writeSeason(t)
	o.csvPath = ""
	if _, err := run(context.Background(), o, quietLogger()); err == nil {
		t.Error("expected error without a source")
	}
}

func TestReportParams(t *testing.T) {
	_, o := writeSeason(t)
	tbl, err := ingest.LoadFile(o.csvPath, ingest.Options{League: "Liga"})
	if err != nil {
		t.Fatal(err)
	}
	o.competitions = " Liga , "
	o.segment = "segunda vuelta"
	o.metric = "g+a"
	o.compare = "Bea"
	p, err := reportParams(tbl, o)
	if err != nil {
		t.Fatalf("reportParams: %v", err)
	}
	if len(p.Selection.Competitions) != 1 || p.Selection.Competitions[0] != "Liga" {
		t.Errorf("competitions = %v", p.Selection.Competitions)
	}
	if p.Selection.Split == nil || p.Selection.Split.Segment != model.SegmentSecondHalf {
		t.Errorf("split = %+v", p.Selection.Split)
	}
	if p.Metric != model.MetricGoalContribution || len(p.Compare) != 1 || !p.Focus.IsTeam() {
		t.Errorf("params = %+v", p)
	}

	o.preset = "nope"
	if _, err := reportParams(tbl, o); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestReportParams_RatingOverrides(t *testing.T) {
	_, o := writeSeason(t)
	tbl, err := ingest.LoadFile(o.csvPath, ingest.Options{League: "Liga"})
	if err != nil {
		t.Fatal(err)
	}
	k, gamma := 3.0, 1.0
	o.k, o.gamma = &k, &gamma
	p, err := reportParams(tbl, o)
	if err != nil {
		t.Fatalf("reportParams: %v", err)
	}
	want := summary.PresetClassic
	want.K, want.Gamma = k, gamma
	if p.Rating != want {
		t.Errorf("rating = %+v, want %+v", p.Rating, want)
	}

	beta := 0.0
	o.beta = &beta
	if _, err := reportParams(tbl, o); err == nil {
		t.Error("expected error for beta = 0")
	}
}

func TestRun_RatingOverridesReachReport(t *testing.T) {
	_, o := writeSeason(t)
	alpha := 2.0
	o.alpha = &alpha
	path, err := run(context.Background(), o, quietLogger())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var r struct {
		Rating struct {
			Params summary.RatingParams `json:"params"`
		} `json:"rating_ranking"`
	}
	if err := json.Unmarshal(b, &r); err != nil {
		t.Fatal(err)
	}
	if r.Rating.Params.Alpha != alpha || r.Rating.Params.K != summary.PresetClassic.K {
		t.Errorf("params = %+v", r.Rating.Params)
	}
}

func TestFloatFlag(t *testing.T) {
	saved := flag.CommandLine
	defer func() { flag.CommandLine = saved }()
	flag.CommandLine = flag.NewFlagSet("season-report", flag.ContinueOnError)
	flag.CommandLine.SetOutput(io.Discard)

	var k, beta *float64
	floatFlag(&k, "k", "")
	floatFlag(&beta, "beta", "")
	if err := flag.CommandLine.Parse([]string{"-k", "12.5"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if k == nil || *k != 12.5 {
		t.Errorf("k = %v, want 12.5", k)
	}
	if beta != nil {
		t.Errorf("beta = %v, want unset", *beta)
	}
	if err := flag.CommandLine.Parse([]string{"-beta", "x"}); err == nil {
		t.Error("expected error for non-numeric beta")
	}
}
