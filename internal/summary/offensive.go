package summary

import (
	"sort"

	"github.com/carlosmardo/App-Estadisticas/internal/model"
)

// OffensiveRow is one line of the goal-contribution table.
type OffensiveRow struct {
	Position                 int          `json:"position,omitempty"`
	Entity                   model.Entity `json:"entity"`
	Name                     string       `json:"name"`
	GoalContribution         int          `json:"goal_contribution"`
	Goals                    int          `json:"goals"`
	Assists                  int          `json:"assists"`
	GoalsPerMatch            float64      `json:"goals_per_match"`
	AssistsPerMatch          float64      `json:"assists_per_match"`
	GoalContributionPerMatch float64      `json:"goal_contribution_per_match"`
	MatchesPlayed            int          `json:"matches_played"`
	MinutesTotal             int          `json:"minutes_total"`
	GoalsAgainst             int          `json:"goals_against"`
	GoalDifference           int          `json:"goal_difference"`
}

type OffensiveRanking struct {
	Team    OffensiveRow   `json:"team"`
	Players []OffensiveRow `json:"players"`
}

func offensiveRow(a Aggregate) OffensiveRow {
	return OffensiveRow{
		Entity:                   a.Entity,
		Name:                     a.Entity.String(),
		GoalContribution:         a.GoalContribution,
		Goals:                    a.Goals,
		Assists:                  a.Assists,
		GoalsPerMatch:            a.PerMatch(a.Goals),
		AssistsPerMatch:          a.PerMatch(a.Assists),
		GoalContributionPerMatch: a.PerMatch(a.GoalContribution),
		MatchesPlayed:            a.MatchesPlayed,
		MinutesTotal:             a.MinutesTotal,
	}
}

// RankOffensive ranks players by G/A, then goals, then name. The team row
// carries the goals-against figures, counted once per match.
func RankOffensive(records []model.MatchRecord) *OffensiveRanking {
	players := AggregateBy(records, model.GroupByPlayer)
	rows := make([]OffensiveRow, 0, len(players))
	for _, a := range players {
		rows = append(rows, offensiveRow(a))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].GoalContribution != rows[j].GoalContribution {
			return rows[i].GoalContribution > rows[j].GoalContribution
		}
		if rows[i].Goals != rows[j].Goals {
			return rows[i].Goals > rows[j].Goals
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Position = i + 1
	}

	team := AggregateEntity(records, model.Team())
	teamRow := offensiveRow(team)
	teamRow.GoalsAgainst = team.GoalsAgainst
	teamRow.GoalDifference = team.GoalDifference

	return &OffensiveRanking{Team: teamRow, Players: rows}
}
