package model

import (
	"fmt"
	"strings"
)

// Metric is a per-match value that can be plotted or compared.
type Metric string

const (
	MetricRating           Metric = "rating"
	MetricGoals            Metric = "goals"
	MetricAssists          Metric = "assists"
	MetricGoalContribution Metric = "goal_contribution"
)

var Metrics = []Metric{MetricRating, MetricGoals, MetricAssists, MetricGoalContribution}

// ParseMetric accepts the canonical names and the labels used by the
// spreadsheet template (NOTA, GOLES, ASISTENCIAS, G/A). Empty means rating.
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rating", "nota":
		return MetricRating, nil
	case "goals", "goles":
		return MetricGoals, nil
	case "assists", "asistencias":
		return MetricAssists, nil
	case "goal_contribution", "g/a", "ga", "g+a":
		return MetricGoalContribution, nil
	}
	return "", fmt.Errorf("unknown metric: %q (want rating|goals|assists|goal_contribution)", s)
}

// Value reads the metric off a single record.
func (m Metric) Value(r MatchRecord) float64 {
	switch m {
	case MetricGoals:
		return float64(r.Goals)
	case MetricAssists:
		return float64(r.Assists)
	case MetricGoalContribution:
		return float64(r.GoalContribution)
	default:
		return r.Rating
	}
}

// Segment picks which half of the league season is kept.
type Segment string

const (
	SegmentAll        Segment = "ALL"
	SegmentFirstHalf  Segment = "FIRST_HALF"
	SegmentSecondHalf Segment = "SECOND_HALF"
)

func ParseSegment(s string) (Segment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "toda la liga":
		return SegmentAll, nil
	case "first_half", "first", "primera vuelta":
		return SegmentFirstHalf, nil
	case "second_half", "second", "segunda vuelta":
		return SegmentSecondHalf, nil
	}
	return "", fmt.Errorf("unknown segment: %q (want ALL|FIRST_HALF|SECOND_HALF)", s)
}
