package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/store"
)

// Client downloads season CSV exports, e.g. a published Google Sheet
// ("/export?format=csv"), and keeps a copy in the raw store.
type Client struct {
	HTTP         *http.Client
	Store        *store.Store
	UserAgent    string
	Sleep        time.Duration
	UseCache     bool
	DisableWrite bool
}

func NewClient(st *store.Store) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 20 * time.Second},
		Store:     st,
		UserAgent: "season-stats-raw/1.0",
		Sleep:     250 * time.Millisecond,
		UseCache:  true,
	}
}

// CachePath is the stable store path for a source URL.
func CachePath(rawURL string) string {
	return "csv/" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(rawURL)).String() + ".csv"
}

// FetchCSV downloads rawURL and writes it to CachePath(rawURL).
// Returns raw bytes (from cache or network).
func (c *Client) FetchCSV(ctx context.Context, rawURL string, force bool) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}

	rel := CachePath(rawURL)
	if !force && c.UseCache && c.Store != nil && c.Store.Exists(rel) {
		return c.Store.ReadRaw(rel)
	}

	if c.Sleep > 0 {
		select {
		case <-time.After(c.Sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: read body: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s failed: %d body=%s", rawURL, resp.StatusCode, string(body))
	}

	if !c.DisableWrite && c.Store != nil {
		if err := c.Store.WriteRaw(rel, body, false); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// LoadTable fetches rawURL and parses it as a season table.
func (c *Client) LoadTable(ctx context.Context, rawURL string, force bool, opts ingest.Options) (*ingest.Table, error) {
	body, err := c.FetchCSV(ctx, rawURL, force)
	if err != nil {
		return nil, err
	}
	return ingest.ReadCSV(bytes.NewReader(body), opts)
}
