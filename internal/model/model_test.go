package model

import (
	"encoding/json"
	"testing"
)

func TestEntityJSON(t *testing.T) {
	b, err := json.Marshal(Team())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"kind":"team"}` {
		t.Errorf("team JSON = %s", b)
	}

	var e Entity
	if err := json.Unmarshal([]byte(`{"kind":"player","name":"Team"}`), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.IsTeam() {
		t.Error("a player named Team must not decode as the team entity")
	}
	if e.Name != "Team" {
		t.Errorf("Name = %q, want Team", e.Name)
	}

	if err := json.Unmarshal([]byte(`{"kind":"player"}`), &e); err == nil {
		t.Error("expected error for nameless player")
	}
}

func TestEntityString(t *testing.T) {
	if Team().String() != TeamLabel {
		t.Errorf("Team().String() = %q", Team().String())
	}
	if Player("Pedri").String() != "Pedri" {
		t.Errorf("Player().String() = %q", Player("Pedri").String())
	}
}

func TestParseMetric(t *testing.T) {
	cases := []struct {
		in   string
		want Metric
	}{
		{"", MetricRating},
		{"NOTA", MetricRating},
		{"goles", MetricGoals},
		{"ASISTENCIAS", MetricAssists},
		{"G/A", MetricGoalContribution},
		{"goal_contribution", MetricGoalContribution},
	}
	for _, c := range cases {
		got, err := ParseMetric(c.in)
		if err != nil {
			t.Errorf("ParseMetric(%q) error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseMetric(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if _, err := ParseMetric("xg"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestParseSegment(t *testing.T) {
	cases := map[string]Segment{
		"":               SegmentAll,
		"FIRST_HALF":     SegmentFirstHalf,
		"Primera vuelta": SegmentFirstHalf,
		"second_half":    SegmentSecondHalf,
	}
	for in, want := range cases {
		got, err := ParseSegment(in)
		if err != nil || got != want {
			t.Errorf("ParseSegment(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSegment("third"); err == nil {
		t.Error("expected error for unknown segment")
	}
}

func TestMetricValue(t *testing.T) {
	r := MatchRecord{Goals: 2, Assists: 1, GoalContribution: 3, Rating: 7.5}
	if MetricGoals.Value(r) != 2 || MetricAssists.Value(r) != 1 ||
		MetricGoalContribution.Value(r) != 3 || MetricRating.Value(r) != 7.5 {
		t.Errorf("unexpected metric values for %+v", r)
	}
}
