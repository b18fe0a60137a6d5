package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// ErrNoRows is returned for a table whose header is valid but which has no
// data rows.
var ErrNoRows = errors.New("table has no data rows")

// Options controls how a raw table is validated and derived.
type Options struct {
	Mode   Mode
	League string
}

// LoadFile reads a CSV season file from disk.
func LoadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a comma-separated season table with a header row.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ParseRows(rows, opts)
}

// ParseRows validates and parses a header row followed by data rows. Rows
// whose cells are all blank are ignored; any malformed cell is fatal, and
// so is a table left with no rows.
func ParseRows(rows [][]string, opts Options) (*Table, error) {
	if len(rows) == 0 {
		return nil, &SchemaError{Missing: append([]string{}, BaseColumns...)}
	}
	header := rows[0]
	mode := opts.Mode
	if mode == ModeAuto {
		mode = DetectMode(header)
		if mode == ModeAuto {
			mode = ModeBase
		}
	}
	cols, err := Validate(header, mode)
	if err != nil {
		return nil, err
	}

	records := make([]model.MatchRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec, err := parseRecord(row, cols, mode, i+2)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoRows
	}
	return NewTable(records, mode, opts.League), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRecord(row []string, cols Columns, mode Mode, line int) (model.MatchRecord, error) {
	cell := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	fail := func(name string, err error) error {
		return &ParseError{Line: line, Column: name, Value: cell(name), Err: err}
	}

	var rec model.MatchRecord
	var err error
	if rec.Date, err = ParseDate(cell(ColDate)); err != nil {
		return rec, fail(ColDate, err)
	}
	if rec.Competition = cell(ColCompetition); rec.Competition == "" {
		return rec, fail(ColCompetition, fmt.Errorf("empty value"))
	}
	if rec.PlayerName = cell(ColPlayerName); rec.PlayerName == "" {
		return rec, fail(ColPlayerName, fmt.Errorf("empty value"))
	}
	if rec.Goals, err = parseCount(cell(ColGoals)); err != nil {
		return rec, fail(ColGoals, err)
	}
	if rec.Assists, err = parseCount(cell(ColAssists)); err != nil {
		return rec, fail(ColAssists, err)
	}
	if rec.Rating, err = parseReal(cell(ColRating)); err != nil {
		return rec, fail(ColRating, err)
	}
	if rec.MinutesPlayed, err = parseCount(cell(ColMinutesPlayed)); err != nil {
		return rec, fail(ColMinutesPlayed, err)
	}
	if cols.Has(ColGoalsAgainst) {
		raw := cell(ColGoalsAgainst)
		if raw != "" || mode == ModeExtended {
			if rec.GoalsAgainst, err = parseCount(raw); err != nil {
				return rec, fail(ColGoalsAgainst, err)
			}
		}
	}
	rec.Opponent = cell(ColOpponent)
	return rec, nil
}
