package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carlosmardo/App-Estadisticas/internal/fetch"
	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
	"github.com/carlosmardo/App-Estadisticas/internal/sheets"
	"github.com/carlosmardo/App-Estadisticas/internal/store"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

type options struct {
	csvPath      string
	url          string
	sheet        string
	tab          string
	league       string
	mode         string
	competitions string
	segment      string
	totalRounds  int
	preset       string
	k            *float64
	alpha        *float64
	gamma        *float64
	beta         *float64
	metric       string
	focus        string
	compare      string
	rawRoot      string
	derivedRoot  string
	out          string
	sleepMS      int
	live         bool
	credentials  string
	uploadSheet  string
}

func main() {
	var o options
	flag.StringVar(&o.csvPath, "csv", "", "season CSV file")
	flag.StringVar(&o.url, "url", "", "season CSV export URL")
	flag.StringVar(&o.sheet, "sheet", "", "Google Sheet URL or id to read the season from")
	flag.StringVar(&o.tab, "tab", "Temporada", "sheet tab holding the season table")
	flag.StringVar(&o.league, "league", ingest.DefaultLeague, "competition label numbered into rounds")
	flag.StringVar(&o.mode, "mode", "auto", "column set: auto|base|extended")
	flag.StringVar(&o.competitions, "competitions", "", "comma-separated competitions (default all)")
	flag.StringVar(&o.segment, "segment", "all", "league segment: all|first_half|second_half")
	flag.IntVar(&o.totalRounds, "total-rounds", filter.DefaultTotalRounds, "league rounds per season")
	flag.StringVar(&o.preset, "preset", "smoothed", "rating preset: "+strings.Join(summary.PresetNames(), "|"))
	floatFlag(&o.k, "k", "override the preset's smoothing constant (> 0)")
	floatFlag(&o.alpha, "alpha", "override the preset's minutes exponent (>= 1)")
	floatFlag(&o.gamma, "gamma", "override the preset's playing-time bonus weight (>= 0)")
	floatFlag(&o.beta, "beta", "override the preset's playing-time bonus exponent (> 0)")
	flag.StringVar(&o.metric, "metric", "rating", "series metric: rating|goals|assists|goal_contribution")
	flag.StringVar(&o.focus, "focus", "", "player for the series (default team)")
	flag.StringVar(&o.compare, "compare", "", "comma-separated players to compare")
	flag.StringVar(&o.rawRoot, "raw-root", "data/raw", "root directory for downloaded CSVs")
	flag.StringVar(&o.derivedRoot, "derived-root", "data/derived", "root directory for reports")
	flag.StringVar(&o.out, "out", "reports/season.json", "report path relative to derived root")
	flag.IntVar(&o.sleepMS, "sleep-ms", 250, "sleep before each download in ms")
	flag.BoolVar(&o.live, "live", false, "disable download cache and raw writes")
	flag.StringVar(&o.credentials, "credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"), "service account JSON file for Google Sheets")
	flag.StringVar(&o.uploadSheet, "upload-sheet", "", "Google Sheet URL to publish the rankings to")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()

	path, err := run(ctx, o, logger)
	if err != nil {
		var ee *filter.EmptySelectionError
		if errors.As(err, &ee) {
			logger.Warn("nothing to report", "reason", ee.Reason)
			os.Exit(3)
		}
		logger.Error("season report failed", "err", err)
		os.Exit(1)
	}
	fmt.Println("wrote", path)
}

func run(ctx context.Context, o options, logger *slog.Logger) (string, error) {
	mode, err := ingest.ParseMode(o.mode)
	if err != nil {
		return "", err
	}
	opts := ingest.Options{Mode: mode, League: o.league}

	t, err := loadTable(ctx, o, opts)
	if err != nil {
		return "", err
	}
	logger.Info("season loaded", "rows", t.Len(), "mode", t.Mode(), "rounds", len(t.Rounds()))

	p, err := reportParams(t, o)
	if err != nil {
		return "", err
	}
	report, err := summary.BuildReport(t, p)
	if err != nil {
		return "", err
	}

	derived := store.New(o.derivedRoot)
	if err := derived.WriteJSON(o.out, report); err != nil {
		return "", err
	}

	if o.uploadSheet != "" {
		c, err := openSheet(ctx, o.credentials, o.uploadSheet)
		if err != nil {
			return "", err
		}
		if err := c.UploadReport(ctx, report, "Notas", "Ofensivo"); err != nil {
			return "", err
		}
		logger.Info("rankings published", "sheet", o.uploadSheet)
	}
	return derived.Path(o.out), nil
}

func loadTable(ctx context.Context, o options, opts ingest.Options) (*ingest.Table, error) {
	switch {
	case o.csvPath != "":
		return ingest.LoadFile(o.csvPath, opts)
	case o.url != "":
		client := fetch.NewClient(store.New(o.rawRoot))
		client.Sleep = time.Duration(o.sleepMS) * time.Millisecond
		client.UseCache = !o.live
		client.DisableWrite = o.live
		return client.LoadTable(ctx, o.url, o.live, opts)
	case o.sheet != "":
		c, err := openSheet(ctx, o.credentials, o.sheet)
		if err != nil {
			return nil, err
		}
		return c.ReadTable(ctx, o.tab, opts)
	}
	return nil, errors.New("one of -csv, -url or -sheet is required")
}

func openSheet(ctx context.Context, credentialsPath, sheetURL string) (*sheets.Client, error) {
	if credentialsPath == "" {
		return nil, errors.New("-credentials (or GOOGLE_APPLICATION_CREDENTIALS_JSON) is required for Google Sheets")
	}
	creds, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return sheets.NewClient(ctx, creds, sheetURL)
}

func reportParams(t *ingest.Table, o options) (summary.Params, error) {
	p := summary.DefaultParams(t)
	if comps := splitList(o.competitions); len(comps) > 0 {
		p.Selection.Competitions = comps
	}
	seg, err := model.ParseSegment(o.segment)
	if err != nil {
		return p, err
	}
	if seg != model.SegmentAll {
		p.Selection.Split = &filter.LeagueSplit{TotalRounds: o.totalRounds, Segment: seg}
	}
	if p.Rating, err = summary.ResolveRatingParams(o.preset, o.k, o.alpha, o.gamma, o.beta); err != nil {
		return p, err
	}
	if p.Metric, err = model.ParseMetric(o.metric); err != nil {
		return p, err
	}
	if o.focus != "" {
		p.Focus = model.Player(o.focus)
	}
	if names := splitList(o.compare); len(names) > 0 {
		p.Compare = names
	}
	return p, nil
}

// floatFlag registers a float flag that stays nil unless given.
func floatFlag(dst **float64, name, usage string) {
	flag.Func(name, usage, func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = &v
		return nil
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
