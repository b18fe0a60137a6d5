package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/summary"
)

// Client reads season tables from, and publishes rankings to, one
// spreadsheet.
type Client struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewClient authenticates with service account credentials.
func NewClient(ctx context.Context, credentialsJSON []byte, sheetURL string) (*Client, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newClient(srv, sheetURL)
}

func newClient(srv *sheets.Service, sheetURL string) (*Client, error) {
	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, err
	}
	return &Client{service: srv, spreadsheetID: spreadsheetID}, nil
}

var spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// extractSpreadsheetID accepts a full sheet URL or a bare id.
func extractSpreadsheetID(url string) (string, error) {
	if m := spreadsheetIDPattern.FindStringSubmatch(url); len(m) >= 2 {
		return m[1], nil
	}
	if url != "" && !strings.ContainsAny(url, "/:?") {
		return url, nil
	}
	return "", fmt.Errorf("could not extract spreadsheet ID from URL: %s", url)
}

// ReadTable loads the season table stored in tab.
func (c *Client) ReadTable(ctx context.Context, tab string, opts ingest.Options) (*ingest.Table, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, tab+"!A:Z").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", tab, err)
	}
	return ingest.ParseRows(cellsToRows(resp.Values), opts)
}

// cellsToRows turns the API's loosely typed cells into CSV-like strings.
func cellsToRows(values [][]interface{}) [][]string {
	rows := make([][]string, 0, len(values))
	for _, v := range values {
		row := make([]string, len(v))
		for i, cell := range v {
			if cell == nil {
				continue
			}
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows
}

// UploadReport replaces the contents of the rating and offensive tabs.
func (c *Client) UploadReport(ctx context.Context, r *summary.Report, ratingTab, offensiveTab string) error {
	if err := c.writeTab(ctx, ratingTab, RatingValues(r.Rating)); err != nil {
		return err
	}
	return c.writeTab(ctx, offensiveTab, OffensiveValues(r.Offensive))
}

func (c *Client) writeTab(ctx context.Context, tab string, rows [][]interface{}) error {
	_, err := c.service.Spreadsheets.Values.Clear(c.spreadsheetID, tab+"!A:ZZ", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", tab, err)
	}

	_, err = c.service.Spreadsheets.Values.Update(c.spreadsheetID, tab+"!A1", &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update sheet %s: %w", tab, err)
	}
	return nil
}

// RatingValues lays out the adjusted-rating table: header, team row, then
// ranked players.
func RatingValues(r *summary.RatingRanking) [][]interface{} {
	rows := [][]interface{}{{
		"POS", "NOMBRE", "NOTA_AJUSTADA", "NOTA_MEDIA", "BONUS",
		"PARTIDOS_JUGADOS", "MINUTOS_TOTALES",
	}}
	rows = append(rows, ratingRow(r.Team))
	for _, p := range r.Players {
		rows = append(rows, ratingRow(p))
	}
	return rows
}

func ratingRow(p summary.RatingRow) []interface{} {
	var pos interface{} = ""
	if p.Position > 0 {
		pos = p.Position
	}
	return []interface{}{pos, p.Name, p.AdjustedRating, p.RatingMean, p.Bonus, p.MatchesPlayed, p.MinutesTotal}
}

func OffensiveValues(r *summary.OffensiveRanking) [][]interface{} {
	rows := [][]interface{}{{
		"POS", "NOMBRE", "G/A", "GOLES", "ASISTENCIAS",
		"GOLES_POR_PARTIDO", "ASISTENCIAS_POR_PARTIDO", "G/A_POR_PARTIDO",
		"PARTIDOS_JUGADOS", "MINUTOS_TOTALES", "GOLES_EN_CONTRA", "DIFERENCIA_GOLES",
	}}
	rows = append(rows, offensiveRow(r.Team, true))
	for _, p := range r.Players {
		rows = append(rows, offensiveRow(p, false))
	}
	return rows
}

func offensiveRow(p summary.OffensiveRow, team bool) []interface{} {
	var pos, against, diff interface{} = "", "", ""
	if p.Position > 0 {
		pos = p.Position
	}
	if team {
		against, diff = p.GoalsAgainst, p.GoalDifference
	}
	return []interface{}{
		pos, p.Name, p.GoalContribution, p.Goals, p.Assists,
		p.GoalsPerMatch, p.AssistsPerMatch, p.GoalContributionPerMatch,
		p.MatchesPlayed, p.MinutesTotal, against, diff,
	}
}
