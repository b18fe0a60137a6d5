package ingest

import (
	"sort"
	"time"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// DefaultLeague is the competition label whose dates are numbered as rounds.
const DefaultLeague = "Liga"

// Round is one league matchday.
type Round struct {
	Number int       `json:"number"`
	Date   time.Time `json:"date"`
}

// Table is a validated season with all derived fields filled in. It is
// never mutated after construction.
type Table struct {
	records []model.MatchRecord
	mode    Mode
	league  string
	rounds  []Round
	byDate  map[time.Time]int
}

// NewTable copies records, fills the derived fields and numbers the league
// rounds. Caller-provided derived values are ignored.
func NewTable(records []model.MatchRecord, mode Mode, league string) *Table {
	if league == "" {
		league = DefaultLeague
	}
	if mode == ModeAuto {
		mode = ModeBase
	}
	out := make([]model.MatchRecord, len(records))
	copy(out, records)
	for i := range out {
		derive(&out[i])
	}

	t := &Table{records: out, mode: mode, league: league}
	t.rounds, t.byDate = numberRounds(out, league)
	for i := range t.records {
		if t.records[i].Competition != league {
			t.records[i].RoundNumber = 0
			continue
		}
		t.records[i].RoundNumber = t.byDate[t.records[i].Date]
	}
	return t
}

func derive(r *model.MatchRecord) {
	r.GoalContribution = r.Goals + r.Assists
	r.GoalDifference = r.Goals - r.GoalsAgainst
}

// numberRounds ranks the distinct league dates of the whole table, so a
// round number never depends on which competitions are later selected.
func numberRounds(records []model.MatchRecord, league string) ([]Round, map[time.Time]int) {
	seen := make(map[time.Time]struct{})
	dates := make([]time.Time, 0)
	for _, r := range records {
		if r.Competition != league {
			continue
		}
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		dates = append(dates, r.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rounds := make([]Round, len(dates))
	byDate := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		rounds[i] = Round{Number: i + 1, Date: d}
		byDate[d] = i + 1
	}
	return rounds, byDate
}

func (t *Table) Len() int { return len(t.records) }

func (t *Table) Mode() Mode { return t.mode }

func (t *Table) League() string { return t.league }

// Records returns a copy of the rows.
func (t *Table) Records() []model.MatchRecord {
	out := make([]model.MatchRecord, len(t.records))
	copy(out, t.records)
	return out
}

func (t *Table) Rounds() []Round {
	out := make([]Round, len(t.rounds))
	copy(out, t.rounds)
	return out
}

// RoundOf returns the league round played on date.
func (t *Table) RoundOf(date time.Time) (int, bool) {
	n, ok := t.byDate[date]
	return n, ok
}

func (t *Table) Competitions() []string {
	return distinctSorted(t.records, func(r model.MatchRecord) string { return r.Competition })
}

func (t *Table) Players() []string {
	return distinctSorted(t.records, func(r model.MatchRecord) string { return r.PlayerName })
}

func distinctSorted(records []model.MatchRecord, key func(model.MatchRecord) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
