package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/carlosmardo/App-Estadisticas/internal/dataset"
	"github.com/carlosmardo/App-Estadisticas/internal/fetch"
	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/sheets"
	"github.com/carlosmardo/App-Estadisticas/internal/store"
)

type ServerConfig struct {
	RawRoot         string
	DerivedRoot     string
	WriteDerived    bool
	League          string
	Mode            ingest.Mode
	TotalRounds     int
	CredentialsFile string
}

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// app is the state shared by every tool handler.
type app struct {
	cfg      ServerConfig
	logger   *slog.Logger
	datasets *dataset.Registry
	fetcher  *fetch.Client
	derived  *store.Store
}

func newApp(cfg ServerConfig, logger *slog.Logger) *app {
	return &app{
		cfg:      cfg,
		logger:   logger,
		datasets: dataset.NewRegistry(),
		fetcher:  fetch.NewClient(store.New(cfg.RawRoot)),
		derived:  store.New(cfg.DerivedRoot),
	}
}

func (a *app) ingestOptions(mode, league string) (ingest.Options, error) {
	opts := ingest.Options{Mode: a.cfg.Mode, League: a.cfg.League}
	if strings.TrimSpace(mode) != "" {
		m, err := ingest.ParseMode(mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = m
	}
	if l := strings.TrimSpace(league); l != "" {
		opts.League = l
	}
	return opts, nil
}

// openSheet connects to a spreadsheet with the configured service account.
func (a *app) openSheet(ctx context.Context, sheetURL string) (*sheets.Client, error) {
	if a.cfg.CredentialsFile == "" {
		return nil, errors.New("google sheets credentials not configured (-credentials or GOOGLE_APPLICATION_CREDENTIALS_JSON)")
	}
	creds, err := os.ReadFile(a.cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return sheets.NewClient(ctx, creds, sheetURL)
}

func main() {
	var (
		addr         = flag.String("addr", ":8080", "HTTP listen address")
		mcpPath      = flag.String("path", "/mcp", "HTTP path for MCP endpoint")
		stdio        = flag.Bool("stdio", false, "serve MCP over stdin/stdout instead of HTTP")
		rawRoot      = flag.String("raw-root", "data/raw", "root directory for downloaded season CSVs")
		derivedRoot  = flag.String("derived-root", "data/derived", "root directory for generated reports")
		writeDerived = flag.Bool("write-derived", true, "write season reports to derived root")
		league       = flag.String("league", ingest.DefaultLeague, "competition label numbered into rounds")
		mode         = flag.String("mode", "auto", "column set: auto|base|extended")
		totalRounds  = flag.Int("total-rounds", 38, "league rounds per season, used to split halves")
		credentials  = flag.String("credentials", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"), "service account JSON file for Google Sheets")
		preload      = flag.String("preload", "", "season CSV to load at startup")
		requireAuth  = flag.Bool("require-auth", true, "require API key auth via STATS_MCP_API_KEY")
		authHeader   = flag.String("auth-header", "X-API-Key", "HTTP header to read API key from")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	m, err := ingest.ParseMode(*mode)
	if err != nil {
		logger.Error("invalid flag", "flag", "mode", "err", err)
		os.Exit(2)
	}
	cfg := ServerConfig{
		RawRoot:         *rawRoot,
		DerivedRoot:     *derivedRoot,
		WriteDerived:    *writeDerived,
		League:          *league,
		Mode:            m,
		TotalRounds:     *totalRounds,
		CredentialsFile: *credentials,
	}
	a := newApp(cfg, logger)

	if *preload != "" {
		t, err := ingest.LoadFile(*preload, ingest.Options{Mode: cfg.Mode, League: cfg.League})
		if err != nil {
			logger.Error("preload failed", "path", *preload, "err", err)
			os.Exit(1)
		}
		e := a.datasets.Put(t, *preload)
		logger.Info("dataset loaded", "id", e.ID, "source", e.Source, "rows", e.Rows, "mode", e.Mode)
	}

	server, registry := newServer(a)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *stdio {
		logger.Info("MCP stdio server starting", "tools", len(registry))
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("stdio server stopped", "err", err)
			os.Exit(1)
		}
		return
	}

	apiKey := strings.TrimSpace(os.Getenv("STATS_MCP_API_KEY"))
	if *requireAuth && apiKey == "" {
		logger.Error("STATS_MCP_API_KEY is required (set env var or run with --require-auth=false)")
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(server, registry, *mcpPath, apiKey, *authHeader),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("MCP HTTP server listening", "addr", *addr, "path", *mcpPath, "tools", len(registry))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped", "err", err)
		os.Exit(1)
	}
}

func newMux(server *mcp.Server, registry []toolInfo, mcpPath, apiKey, authHeader string) *http.ServeMux {
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	withAuth := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next(w, r)
				return
			}
			key := strings.TrimSpace(r.Header.Get(authHeader))
			if key == "" {
				if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
					key = strings.TrimSpace(authz[7:])
				}
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))

	mux.HandleFunc("/tools", withAuth(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.MarshalIndent(map[string]any{"tools": registry}, "", "  ")
		w.Write(b)
	}))

	mux.HandleFunc(mcpPath, withAuth(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	return mux
}

func addTool[T any](server *mcp.Server, registry *[]toolInfo, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	*registry = append(*registry, toolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(server, tool, handler)
}

// toolResult marshals out, or reports err as a tool error.
func toolResult(out any, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSONBytes(b), nil, nil
}

func toolJSONBytes(res []byte) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(res)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
