package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carlosmardo/App-Estadisticas/internal/dataset"
	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// selectionArgs are the filter inputs shared by every analysis tool.
type selectionArgs struct {
	DatasetID    string
	Competitions []string
	Segment      string
	TotalRounds  int
}

// resolveSelection loads the dataset and turns the filter inputs into a
// filter.Selection. Nil competitions select all; an explicit empty list is
// an empty selection.
func (a *app) resolveSelection(in selectionArgs) (dataset.Entry, filter.Selection, error) {
	e, err := a.datasets.Resolve(in.DatasetID)
	if err != nil {
		return e, filter.Selection{}, err
	}
	t := e.Table()

	sel := filter.All(t)
	if in.Competitions != nil {
		comps, err := checkCompetitions(t, in.Competitions)
		if err != nil {
			return e, sel, err
		}
		sel.Competitions = comps
	}

	seg, err := model.ParseSegment(in.Segment)
	if err != nil {
		return e, sel, err
	}
	if seg != model.SegmentAll {
		total := in.TotalRounds
		if total == 0 {
			total = a.cfg.TotalRounds
		}
		if total == 0 {
			total = filter.DefaultTotalRounds
		}
		sel.Split = &filter.LeagueSplit{TotalRounds: total, Segment: seg}
	}
	return e, sel, nil
}

func checkCompetitions(t *ingest.Table, requested []string) ([]string, error) {
	known := make(map[string]bool)
	for _, c := range t.Competitions() {
		known[c] = true
	}
	out := make([]string, 0, len(requested))
	for _, c := range requested {
		c = strings.TrimSpace(c)
		if !known[c] {
			return nil, fmt.Errorf("unknown competition %q (have: %s)", c, strings.Join(t.Competitions(), ", "))
		}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func checkPlayers(t *ingest.Table, names []string) error {
	known := make(map[string]bool)
	for _, p := range t.Players() {
		known[p] = true
	}
	for _, n := range names {
		if !known[n] {
			return fmt.Errorf("unknown player %q", n)
		}
	}
	return nil
}
