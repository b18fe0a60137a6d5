package ingest

import (
	"fmt"
	"strings"
)

// Canonical column names.
const (
	ColDate          = "date"
	ColCompetition   = "competition"
	ColPlayerName    = "player_name"
	ColGoals         = "goals"
	ColAssists       = "assists"
	ColRating        = "rating"
	ColMinutesPlayed = "minutes_played"
	ColGoalsAgainst  = "goals_against"
	ColOpponent      = "opponent"
)

// Mode selects which column set a table must carry.
type Mode int

const (
	// ModeAuto resolves to extended when the header carries the extended
	// columns and to base otherwise.
	ModeAuto Mode = iota
	ModeBase
	ModeExtended
)

func (m Mode) String() string {
	switch m {
	case ModeBase:
		return "base"
	case ModeExtended:
		return "extended"
	default:
		return "auto"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "base":
		return ModeBase, nil
	case "extended":
		return ModeExtended, nil
	}
	return ModeAuto, fmt.Errorf("unknown mode: %q (want auto|base|extended)", s)
}

var BaseColumns = []string{
	ColDate, ColCompetition, ColPlayerName, ColGoals, ColAssists, ColRating, ColMinutesPlayed,
}

var ExtendedColumns = []string{ColGoalsAgainst, ColOpponent}

// aliases maps normalized header labels to canonical names. The Spanish
// labels are the ones written by the season spreadsheet template.
var aliases = map[string]string{
	"date":            ColDate,
	"fecha":           ColDate,
	"competition":     ColCompetition,
	"competicion":     ColCompetition,
	"competición":     ColCompetition,
	"player_name":     ColPlayerName,
	"player":          ColPlayerName,
	"name":            ColPlayerName,
	"nombre":          ColPlayerName,
	"goals":           ColGoals,
	"goles":           ColGoals,
	"assists":         ColAssists,
	"asistencias":     ColAssists,
	"rating":          ColRating,
	"nota":            ColRating,
	"minutes_played":  ColMinutesPlayed,
	"minutes":         ColMinutesPlayed,
	"mins_jugados":    ColMinutesPlayed,
	"goals_against":   ColGoalsAgainst,
	"goles_contra":    ColGoalsAgainst,
	"goles_en_contra": ColGoalsAgainst,
	"opponent":        ColOpponent,
	"rival":           ColOpponent,
}

// SchemaError lists every required column absent from a header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid table: missing columns: %s", strings.Join(e.Missing, ", "))
}

// Columns maps canonical column names to their index in the header.
type Columns map[string]int

func (c Columns) Has(name string) bool {
	_, ok := c[name]
	return ok
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

// Canonical maps a header label to its canonical column name.
func Canonical(h string) (string, bool) {
	name, ok := aliases[normalizeHeader(h)]
	return name, ok
}

func indexHeader(header []string) Columns {
	cols := make(Columns, len(header))
	for i, h := range header {
		name, ok := Canonical(h)
		if !ok {
			continue
		}
		if _, dup := cols[name]; dup {
			continue
		}
		cols[name] = i
	}
	return cols
}

// DetectMode reports the richest mode the header satisfies. ModeAuto is
// returned when not even the base columns are present.
func DetectMode(header []string) Mode {
	cols := indexHeader(header)
	for _, c := range BaseColumns {
		if !cols.Has(c) {
			return ModeAuto
		}
	}
	for _, c := range ExtendedColumns {
		if !cols.Has(c) {
			return ModeBase
		}
	}
	return ModeExtended
}

// Validate checks the header against the mode's required columns and
// returns the column index. ModeAuto validates the base set.
func Validate(header []string, mode Mode) (Columns, error) {
	cols := indexHeader(header)
	required := BaseColumns
	if mode == ModeExtended {
		required = append(append([]string{}, BaseColumns...), ExtendedColumns...)
	}
	var missing []string
	for _, c := range required {
		if !cols.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return cols, nil
}
