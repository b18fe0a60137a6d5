package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carlosmardo/App-Estadisticas/internal/dataset"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
)

// LoadSeasonArgs is the input schema for load_season. Exactly one source
// must be given.
type LoadSeasonArgs struct {
	Path   string `json:"path,omitempty" jsonschema:"Local CSV file"`
	URL    string `json:"url,omitempty" jsonschema:"CSV export URL (e.g. published Google Sheet)"`
	Sheet  string `json:"sheet,omitempty" jsonschema:"Google Sheet URL or id, read with the service account"`
	Tab    string `json:"tab,omitempty" jsonschema:"Sheet tab name (default Temporada)"`
	CSV    string `json:"csv,omitempty" jsonschema:"Inline CSV content with header row"`
	Mode   string `json:"mode,omitempty" jsonschema:"Column set: auto|base|extended (default auto)"`
	League string `json:"league,omitempty" jsonschema:"League competition label (default Liga)"`
	Force  bool   `json:"force,omitempty" jsonschema:"Re-download even if cached"`
}

type LoadSeasonResult struct {
	Dataset dataset.Entry  `json:"dataset"`
	Rounds  []ingest.Round `json:"rounds"`
}

const defaultTab = "Temporada"

func buildLoadSeason(ctx context.Context, a *app, args LoadSeasonArgs) (*LoadSeasonResult, error) {
	opts, err := a.ingestOptions(args.Mode, args.League)
	if err != nil {
		return nil, err
	}

	sources := 0
	for _, s := range []string{args.Path, args.URL, args.Sheet, args.CSV} {
		if strings.TrimSpace(s) != "" {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("exactly one of path, url, sheet or csv is required")
	}

	var (
		t      *ingest.Table
		source string
	)
	switch {
	case args.Path != "":
		source = args.Path
		t, err = ingest.LoadFile(args.Path, opts)
	case args.URL != "":
		source = args.URL
		t, err = a.fetcher.LoadTable(ctx, args.URL, args.Force, opts)
	case args.Sheet != "":
		tab := args.Tab
		if tab == "" {
			tab = defaultTab
		}
		source = args.Sheet + "#" + tab
		t, err = a.loadSheet(ctx, args.Sheet, tab, opts)
	default:
		source = "inline"
		t, err = ingest.ReadCSV(strings.NewReader(args.CSV), opts)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	e := a.datasets.Put(t, source)
	a.logger.Info("dataset loaded", "id", e.ID, "source", source, "rows", e.Rows, "mode", e.Mode)
	return &LoadSeasonResult{Dataset: e, Rounds: t.Rounds()}, nil
}

func (a *app) loadSheet(ctx context.Context, sheetURL, tab string, opts ingest.Options) (*ingest.Table, error) {
	c, err := a.openSheet(ctx, sheetURL)
	if err != nil {
		return nil, err
	}
	return c.ReadTable(ctx, tab, opts)
}
