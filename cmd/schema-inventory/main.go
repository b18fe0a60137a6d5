package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
	"github.com/carlosmardo/App-Estadisticas/internal/store"
)

type Inventory struct {
	GeneratedAtUTC string `json:"generated_at_utc"`
	RawRoot        string `json:"raw_root"`
	Files          []File `json:"files"`
}

// File describes the header of one season CSV.
type File struct {
	Path            string   `json:"path"`
	Rows            int      `json:"rows"`
	Mode            string   `json:"mode"`
	Columns         []Column `json:"columns"`
	MissingBase     []string `json:"missing_base,omitempty"`
	MissingExtended []string `json:"missing_extended,omitempty"`
	Error           string   `json:"error,omitempty"`
}

type Column struct {
	Header    string `json:"header"`
	Canonical string `json:"canonical,omitempty"`
}

func main() {
	var (
		rawRoot  = flag.String("raw-root", "data/raw", "root directory scanned for season CSVs")
		outPath  = flag.String("out", "data/derived/schema_inventory.json", "output path")
		maxFiles = flag.Int("max-files", 0, "max files to scan (0 = no limit)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	files, err := findCSVs(*rawRoot)
	if err != nil {
		logger.Error("scan failed", "root", *rawRoot, "err", err)
		os.Exit(1)
	}
	if *maxFiles > 0 && len(files) > *maxFiles {
		files = files[:*maxFiles]
	}
	if len(files) == 0 {
		logger.Warn("no csv files found", "root", *rawRoot)
	}

	inv := Inventory{
		GeneratedAtUTC: time.Now().UTC().Format(time.RFC3339),
		RawRoot:        *rawRoot,
		Files:          make([]File, 0, len(files)),
	}
	for _, f := range files {
		inv.Files = append(inv.Files, inspect(f))
	}

	out := store.New(filepath.Dir(*outPath))
	if err := out.WriteJSON(filepath.Base(*outPath), inv); err != nil {
		logger.Error("write failed", "path", *outPath, "err", err)
		os.Exit(1)
	}
	fmt.Println("wrote", *outPath)
}

func findCSVs(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".csv") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

func inspect(path string) File {
	out := File{Path: path}
	f, err := os.Open(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	defer f.Close()

	header, rows, err := readHeader(f)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Rows = rows
	out.Mode = ingest.DetectMode(header).String()
	for _, h := range header {
		name, _ := ingest.Canonical(h)
		out.Columns = append(out.Columns, Column{Header: h, Canonical: name})
	}
	out.MissingBase = missing(header, ingest.ModeBase)
	if len(out.MissingBase) == 0 {
		out.MissingExtended = missing(header, ingest.ModeExtended)
	}
	return out
}

// readHeader returns the header and the number of data rows.
func readHeader(r io.Reader) ([]string, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	rows := 0
	for {
		if _, err := cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return header, rows, err
		}
		rows++
	}
	return header, rows, nil
}

func missing(header []string, mode ingest.Mode) []string {
	_, err := ingest.Validate(header, mode)
	var se *ingest.SchemaError
	if errors.As(err, &se) {
		return se.Missing
	}
	return nil
}
