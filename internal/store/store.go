package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is a rooted file tree holding raw season exports ("data/raw") or
// derived reports ("data/derived").
type Store struct {
	Root string
}

func New(root string) *Store {
	return &Store{Root: root}
}

// Path resolves rel under the root. Paths escaping the root are rejected by
// the read/write helpers, not here.
func (s *Store) Path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *Store) checked(rel string) (string, error) {
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes store root", rel)
	}
	return s.Path(clean), nil
}

func (s *Store) Exists(rel string) bool {
	path, err := s.checked(rel)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// WriteRaw stores body as-is. With pretty set and a JSON body, it is
// re-indented first; anything else (CSV) is written untouched.
func (s *Store) WriteRaw(rel string, body []byte, pretty bool) error {
	path, err := s.checked(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	if pretty && json.Valid(body) {
		buf := &bytes.Buffer{}
		if err := json.Indent(buf, body, "", "  "); err == nil {
			buf.WriteByte('\n')
			body = buf.Bytes()
		}
	}

	return os.WriteFile(path, body, 0o644)
}

// WriteJSON marshals v indented with a trailing newline.
func (s *Store) WriteJSON(rel string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return s.WriteRaw(rel, b, false)
}

func (s *Store) ReadRaw(rel string) ([]byte, error) {
	path, err := s.checked(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}
