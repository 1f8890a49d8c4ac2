package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baxromumarov/lunch-menu/internal/menu"
	"github.com/baxromumarov/lunch-menu/internal/observability"
)

const DefaultStatsFile = "run_stats.json"

// Store reads and writes the flat files the tools exchange: menu JSON
// documents and the published HTML page. Relative names resolve against dir.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// SaveMenu writes doc as indented UTF-8 JSON, replacing any previous file.
func (s *Store) SaveMenu(name string, doc *menu.Document) error {
	if doc == nil {
		doc = &menu.Document{}
	}
	data, err := EncodeMenu(doc)
	if err != nil {
		return fmt.Errorf("encode %s failed: %w", name, err)
	}
	return s.WriteFile(name, data)
}

func (s *Store) LoadMenu(name string) (*menu.Document, error) {
	data, err := s.ReadFile(name)
	if err != nil {
		return nil, err
	}
	doc := &menu.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("read %s failed: %w", name, err)
	}
	return doc, nil
}

// EncodeMenu renders doc with two-space indentation and without escaping
// HTML or non-ASCII characters.
func EncodeMenu(doc *menu.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadStats reads the accumulated run counters. A missing file reads as
// zero counts.
func (s *Store) LoadStats(name string) (observability.StatsSnapshot, error) {
	var stats observability.StatsSnapshot
	data, err := s.ReadFile(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, err
	}
	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, fmt.Errorf("read %s failed: %w", name, err)
	}
	return stats, nil
}

// RecordStats adds delta to the counters stored in name.
func (s *Store) RecordStats(name string, delta observability.StatsSnapshot) error {
	total, err := s.LoadStats(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(total.Add(delta), "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s failed: %w", name, err)
	}
	return s.WriteFile(name, append(data, '\n'))
}

func (s *Store) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read %s failed: %w", name, err)
	}
	return data, nil
}

// WriteFile replaces the file atomically: data goes to a temporary file in
// the same directory which is then renamed over the target.
func (s *Store) WriteFile(name string, data []byte) error {
	target := s.Path(name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write %s failed: %w", name, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s failed: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s failed: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s failed: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write %s failed: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("write %s failed: %w", name, err)
	}
	return nil
}
