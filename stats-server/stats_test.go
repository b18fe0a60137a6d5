package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/carlosmardo/App-Estadisticas/internal/filter"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/model"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const seasonCSV = `FECHA,COMPETICION,NOMBRE,GOLES,ASISTENCIAS,NOTA,MINS_JUGADOS,GOLES_EN_CONTRA,RIVAL
10/01/2024,Liga,Ana,1,0,7.0,90,1,Rayo
10/01/2024,Liga,Bea,0,1,6.5,90,1,Rayo
14/01/2024,Copa,Ana,2,0,8.0,90,0,Getafe
17/01/2024,Liga,Ana,0,0,6.0,90,2,Celta
17/01/2024,Liga,Carla,0,1,6.8,30,2,Celta
24/01/2024,Liga,Bea,1,1,7.5,90,0,Osasuna
`

// writeCSV writes content to dir/name and returns the path.
func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// tmpCfg creates a temp directory and a ServerConfig pointing at it.
func tmpCfg(t *testing.T) (string, ServerConfig) {
	t.Helper()
	dir := t.TempDir()
	return dir, ServerConfig{
		RawRoot:      filepath.Join(dir, "raw"),
		DerivedRoot:  filepath.Join(dir, "derived"),
		WriteDerived: true,
		League:       ingest.DefaultLeague,
		TotalRounds:  4,
	}
}

func testApp(t *testing.T, cfg ServerConfig) *app {
	t.Helper()
	a := newApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.fetcher.Sleep = 0
	return a
}

// loadedApp returns an app with seasonCSV loaded inline.
func loadedApp(t *testing.T) (*app, string) {
	t.Helper()
	_, cfg := tmpCfg(t)
	a := testApp(t, cfg)
	res, err := buildLoadSeason(context.Background(), a, LoadSeasonArgs{CSV: seasonCSV})
	if err != nil {
		t.Fatalf("load_season: %v", err)
	}
	return a, res.Dataset.ID
}

// ---------------------------------------------------------------------------
// load_season / datasets
// ---------------------------------------------------------------------------

func TestBuildLoadSeason_Sources(t *testing.T) {
	dir, cfg := tmpCfg(t)
	a := testApp(t, cfg)
	path := writeCSV(t, dir, "season.csv", seasonCSV)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(seasonCSV))
	}))
	defer srv.Close()

	cases := map[string]LoadSeasonArgs{
		"path":   {Path: path},
		"url":    {URL: srv.URL + "/export?format=csv"},
		"inline": {CSV: seasonCSV},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := buildLoadSeason(context.Background(), a, args)
			if err != nil {
				t.Fatalf("load_season: %v", err)
			}
			if res.Dataset.Rows != 6 || res.Dataset.Mode != "extended" {
				t.Errorf("dataset = %+v", res.Dataset)
			}
			if len(res.Rounds) != 3 || res.Rounds[2].Number != 3 {
				t.Errorf("rounds = %+v", res.Rounds)
			}
		})
	}
	if n := len(buildListDatasets(a).Datasets); n != 3 {
		t.Errorf("datasets = %d, want 3", n)
	}
}

func TestBuildLoadSeason_Errors(t *testing.T) {
	_, cfg := tmpCfg(t)
	a := testApp(t, cfg)
	ctx := context.Background()

	if _, err := buildLoadSeason(ctx, a, LoadSeasonArgs{}); err == nil {
		t.Error("expected error with no source")
	}
	if _, err := buildLoadSeason(ctx, a, LoadSeasonArgs{CSV: seasonCSV, Path: "x.csv"}); err == nil {
		t.Error("expected error with two sources")
	}
	if _, err := buildLoadSeason(ctx, a, LoadSeasonArgs{Sheet: "abc"}); err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Errorf("sheet without credentials: %v", err)
	}

	_, err := buildLoadSeason(ctx, a, LoadSeasonArgs{CSV: "FECHA,NOMBRE\n10/01/2024,Ana\n"})
	var se *ingest.SchemaError
	if !errors.As(err, &se) {
		t.Errorf("expected SchemaError, got %v", err)
	}

	header := strings.SplitN(seasonCSV, "\n", 2)[0] + "\n"
	_, err = buildLoadSeason(ctx, a, LoadSeasonArgs{CSV: header})
	if !errors.Is(err, ingest.ErrNoRows) {
		t.Errorf("header-only csv: expected ErrNoRows, got %v", err)
	}
	if len(a.datasets.List()) != 0 {
		t.Errorf("header-only csv registered a dataset")
	}

	_, err = buildLoadSeason(ctx, a, LoadSeasonArgs{CSV: seasonCSV, Mode: "wide"})
	if err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestBuildCompetitionsAndDelete(t *testing.T) {
	a, id := loadedApp(t)
	out, err := buildCompetitions(a, CompetitionsArgs{})
	if err != nil {
		t.Fatalf("competitions: %v", err)
	}
	if out.DatasetID != id || strings.Join(out.Competitions, ",") != "Copa,Liga" {
		t.Errorf("competitions = %+v", out)
	}
	if strings.Join(out.Players, ",") != "Ana,Bea,Carla" {
		t.Errorf("players = %v", out.Players)
	}

	if !buildDeleteDataset(a, DeleteDatasetArgs{DatasetID: id}).Deleted {
		t.Fatal("delete failed")
	}
	if _, err := buildCompetitions(a, CompetitionsArgs{DatasetID: id}); err == nil {
		t.Error("expected error after delete")
	}
}

// ---------------------------------------------------------------------------
// Selection
// ---------------------------------------------------------------------------

func TestResolveSelection(t *testing.T) {
	a, id := loadedApp(t)

	_, sel, err := a.resolveSelection(selectionArgs{DatasetID: id})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Competitions) != 2 || sel.Split != nil {
		t.Errorf("default selection = %+v", sel)
	}

	_, sel, err = a.resolveSelection(selectionArgs{Segment: "primera vuelta"})
	if err != nil {
		t.Fatal(err)
	}
	if sel.Split == nil || sel.Split.TotalRounds != 4 || sel.Split.Segment != model.SegmentFirstHalf {
		t.Errorf("split = %+v", sel.Split)
	}

	if _, _, err := a.resolveSelection(selectionArgs{Competitions: []string{"Supercopa"}}); err == nil {
		t.Error("expected error for unknown competition")
	}
	if _, _, err := a.resolveSelection(selectionArgs{Segment: "third"}); err == nil {
		t.Error("expected error for unknown segment")
	}
}

func TestEmptyCompetitionListIsEmptySelection(t *testing.T) {
	a, _ := loadedApp(t)
	_, err := buildOffensiveRanking(a, OffensiveRankingArgs{Competitions: []string{}})
	var ee *filter.EmptySelectionError
	if !errors.As(err, &ee) || ee.Reason != filter.ReasonNoCompetitions {
		t.Errorf("err = %v, want no_competitions", err)
	}
}

// ---------------------------------------------------------------------------
// Series
// ---------------------------------------------------------------------------

func TestBuildPlayerSeries(t *testing.T) {
	a, _ := loadedApp(t)

	team, err := buildPlayerSeries(a, PlayerSeriesArgs{Metric: "goles"})
	if err != nil {
		t.Fatalf("team series: %v", err)
	}
	if !team.Entity.IsTeam() || len(team.Points) != 4 {
		t.Fatalf("team series = %+v", team)
	}
	if team.Points[0].Value != 1 || team.Points[0].GoalsAgainst != 1 {
		t.Errorf("first team point = %+v", team.Points[0])
	}

	ana, err := buildPlayerSeries(a, PlayerSeriesArgs{Player: "Ana", ByMatchday: true})
	if err != nil {
		t.Fatalf("player series: %v", err)
	}
	if len(ana.Points) != 2 || ana.Points[1].RoundNumber != 2 {
		t.Errorf("Ana matchday series = %+v", ana.Points)
	}

	if _, err := buildPlayerSeries(a, PlayerSeriesArgs{Player: "Zoe"}); err == nil {
		t.Error("expected error for unknown player")
	}
	if _, err := buildPlayerSeries(a, PlayerSeriesArgs{Metric: "xg"}); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestBuildComparePlayers_Default(t *testing.T) {
	a, _ := loadedApp(t)
	out, err := buildComparePlayers(a, ComparePlayersArgs{Metric: "g/a"})
	if err != nil {
		t.Fatalf("compare_players: %v", err)
	}
	if len(out.Series) != 2 || out.Series[0].Name != "Ana" || out.Series[1].Name != "Bea" {
		t.Errorf("series = %+v", out.Series)
	}
	if out.Metric != model.MetricGoalContribution {
		t.Errorf("metric = %s", out.Metric)
	}
}

// ---------------------------------------------------------------------------
// Rankings
// ---------------------------------------------------------------------------

func TestBuildParticipation(t *testing.T) {
	a, _ := loadedApp(t)
	out, err := buildParticipation(a, ParticipationArgs{Competitions: []string{"Liga"}})
	if err != nil {
		t.Fatalf("participation: %v", err)
	}
	if len(out.Rows) != 4 || out.Rows[0].Name != model.TeamLabel {
		t.Fatalf("rows = %+v", out.Rows)
	}
	if out.Rows[0].MatchesPlayed != 3 {
		t.Errorf("team matches = %d, want 3", out.Rows[0].MatchesPlayed)
	}
	if out.Rows[1].Name != "Ana" || out.Rows[1].MatchesPlayed != 2 || out.Rows[1].MinutesTotal != 180 {
		t.Errorf("Ana = %+v", out.Rows[1])
	}
}

func TestBuildRatingRanking(t *testing.T) {
	a, _ := loadedApp(t)
	gamma := 0.0
	out, err := buildRatingRanking(a, RatingRankingArgs{Preset: "smoothed", Gamma: &gamma})
	if err != nil {
		t.Fatalf("rating_ranking: %v", err)
	}
	if out.Params.Gamma != 0 || out.Params.K != 25 {
		t.Errorf("params = %+v", out.Params)
	}
	if len(out.Players) != 3 || out.Players[0].Position != 1 {
		t.Fatalf("players = %+v", out.Players)
	}
	for _, p := range out.Players {
		if p.Bonus != 0 {
			t.Errorf("%s bonus = %v with gamma 0", p.Name, p.Bonus)
		}
	}
	if out.Team.AdjustedRating != out.GlobalRatingMean {
		t.Errorf("team = %v, want pooled mean %v", out.Team.AdjustedRating, out.GlobalRatingMean)
	}

	k := -1.0
	if _, err := buildRatingRanking(a, RatingRankingArgs{K: &k}); err == nil {
		t.Error("expected error for k < 0")
	}
	if _, err := buildRatingRanking(a, RatingRankingArgs{Preset: "nope"}); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestBuildOffensiveRanking_SecondHalf(t *testing.T) {
	a, _ := loadedApp(t)
	// 4 total rounds: second half keeps league rounds 3..4 (Jan 24) plus the cup.
	out, err := buildOffensiveRanking(a, OffensiveRankingArgs{Segment: "second_half"})
	if err != nil {
		t.Fatalf("offensive_ranking: %v", err)
	}
	if len(out.Players) != 2 {
		t.Fatalf("players = %+v", out.Players)
	}
	// Tied on G/A, Ana leads on goals.
	if out.Players[0].Name != "Ana" || out.Players[0].GoalContribution != 2 || out.Players[1].Name != "Bea" {
		t.Errorf("order = %+v", out.Players)
	}
	if out.Team.GoalsAgainst != 0 || out.Team.GoalDifference != 3 {
		t.Errorf("team = %+v", out.Team)
	}
}

// ---------------------------------------------------------------------------
// season_report
// ---------------------------------------------------------------------------

func TestBuildSeasonReport_WritesDerived(t *testing.T) {
	a, id := loadedApp(t)
	out, err := buildSeasonReport(context.Background(), a, SeasonReportArgs{Focus: "Bea", Metric: "goals"})
	if err != nil {
		t.Fatalf("season_report: %v", err)
	}
	if out.DatasetID != id || out.Uploaded {
		t.Errorf("result = %+v", out)
	}
	dir := filepath.Join(a.cfg.DerivedRoot, "reports", id)
	if filepath.Dir(out.Path) != dir || !strings.HasPrefix(filepath.Base(out.Path), "all-") {
		t.Errorf("path = %s, want all-<digest>.json under %s", out.Path, dir)
	}
	b, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded struct {
		Rows   int `json:"rows"`
		Series struct {
			Name string `json:"name"`
		} `json:"series"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Rows != 6 || decoded.Series.Name != "Bea" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestBuildSeasonReport_PathPerParams(t *testing.T) {
	a, _ := loadedApp(t)
	ctx := context.Background()
	k := 5.0

	smoothed, err := buildSeasonReport(ctx, a, SeasonReportArgs{})
	if err != nil {
		t.Fatalf("season_report: %v", err)
	}
	tuned, err := buildSeasonReport(ctx, a, SeasonReportArgs{K: &k})
	if err != nil {
		t.Fatalf("season_report k=5: %v", err)
	}
	again, err := buildSeasonReport(ctx, a, SeasonReportArgs{})
	if err != nil {
		t.Fatalf("season_report repeat: %v", err)
	}
	if smoothed.Path == tuned.Path {
		t.Fatalf("different constants share path %s", smoothed.Path)
	}
	if smoothed.Path != again.Path {
		t.Errorf("same params wrote %s then %s", smoothed.Path, again.Path)
	}

	var first, second struct {
		Rating struct {
			Params summary.RatingParams `json:"params"`
		} `json:"rating_ranking"`
	}
	for path, dst := range map[string]any{smoothed.Path: &first, tuned.Path: &second} {
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if err := json.Unmarshal(b, dst); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	if first.Rating.Params.K == k || second.Rating.Params.K != k {
		t.Errorf("k on disk = %v and %v, want default then %v", first.Rating.Params.K, second.Rating.Params.K, k)
	}
}

func TestBuildSeasonReport_NoWrite(t *testing.T) {
	a, _ := loadedApp(t)
	no := false
	out, err := buildSeasonReport(context.Background(), a, SeasonReportArgs{Write: &no})
	if err != nil {
		t.Fatalf("season_report: %v", err)
	}
	if out.Path != "" {
		t.Errorf("path = %q, want none", out.Path)
	}
}

// ---------------------------------------------------------------------------
// HTTP surface
// ---------------------------------------------------------------------------

func TestMux_Auth(t *testing.T) {
	a, _ := loadedApp(t)
	server, registry := newServer(a)
	srv := httptest.NewServer(newMux(server, registry, "/mcp", "secret", "X-API-Key"))
	defer srv.Close()

	get := func(path string, hdr map[string]string) *http.Response {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		return resp
	}

	resp := get("/health", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no key: status %d", resp.StatusCode)
	}

	resp = get("/health", map[string]string{"X-API-Key": "secret"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("header key: status %d", resp.StatusCode)
	}

	resp = get("/tools", map[string]string{"Authorization": "Bearer secret"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bearer key: status %d", resp.StatusCode)
	}
	var body struct {
		Tools []toolInfo `json:"tools"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Tools) != 10 {
		t.Errorf("tools = %d, want 10", len(body.Tools))
	}
}

func TestMCP_CallTool(t *testing.T) {
	a, _ := loadedApp(t)
	server, _ := newServer(a)
	ctx := context.Background()

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "offensive_ranking",
		Arguments: map[string]any{"competitions": []string{"Liga"}},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %+v", res.Content)
	}
	text := res.Content[0].(*mcp.TextContent).Text
	if !strings.Contains(text, `"players"`) || !strings.Contains(text, model.TeamLabel) {
		t.Errorf("unexpected output: %s", text)
	}

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "player_series",
		Arguments: map[string]any{"player": "Nobody"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !res.IsError {
		t.Error("expected tool error for unknown player")
	}
}
