package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func newServer(a *app) (*mcp.Server, []toolInfo) {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "season-stats-mcp",
			Version: "0.1.0",
		},
		nil,
	)

	registry := make([]toolInfo, 0, 10)

	addTool(server, &registry, &mcp.Tool{
		Name:        "load_season",
		Description: "Load a season table from a CSV file, URL, Google Sheet or inline CSV",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args LoadSeasonArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildLoadSeason(ctx, a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "list_datasets",
		Description: "List loaded season tables",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListDatasetsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildListDatasets(a), nil)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "delete_dataset",
		Description: "Drop a loaded season table",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args DeleteDatasetArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildDeleteDataset(a, args), nil)
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "competitions",
		Description: "Competitions, players and league rounds of a dataset",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CompetitionsArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildCompetitions(a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "player_series",
		Description: "Match-by-match series of a metric for a player or the team",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args PlayerSeriesArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildPlayerSeries(a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "compare_players",
		Description: "Side-by-side metric series for selected players",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ComparePlayersArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildComparePlayers(a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "participation",
		Description: "Matches played and minutes for the team and each player",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ParticipationArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildParticipation(a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "rating_ranking",
		Description: "Players ranked by minutes-weighted adjusted rating",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RatingRankingArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildRatingRanking(a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "offensive_ranking",
		Description: "Players ranked by goals plus assists, with per-match rates",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args OffensiveRankingArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildOffensiveRanking(a, args))
	})

	addTool(server, &registry, &mcp.Tool{
		Name:        "season_report",
		Description: "Full season report; optionally written to disk and published to Google Sheets",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SeasonReportArgs) (*mcp.CallToolResult, any, error) {
		return toolResult(buildSeasonReport(ctx, a, args))
	})

	return server, registry
}
