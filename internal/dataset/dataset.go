// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset reads and writes character datasets: the JSON file shared
// with downstream tools, its plain-text backup, and sample extracts.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// ErrNoCharacters is returned by Load when a file holds no records.
var ErrNoCharacters = errors.New("no characters in dataset")

// DefaultSource is recorded in metadata when none is given.
const DefaultSource = "https://mtg.wiki"

// Metadata describes how a dataset was produced.
type Metadata struct {
	TotalCharacters int `json:"total_characters"`

	// ScrapedDate is an RFC 3339 timestamp. Older files used other layouts,
	// so it is kept as text.
	ScrapedDate string   `json:"scraped_date"`
	FailedPages []string `json:"failed_pages"`
	Source      string   `json:"source"`
}

// Dataset is a keyed set of extracted records.
type Dataset struct {
	Metadata   Metadata                         `json:"metadata"`
	Characters map[string]types.CharacterRecord `json:"characters"`
}

// New returns an empty dataset stamped with now.
func New(now time.Time) *Dataset {
	return &Dataset{
		Metadata:   Metadata{ScrapedDate: now.UTC().Format(time.RFC3339), FailedPages: []string{}, Source: DefaultSource},
		Characters: make(map[string]types.CharacterRecord),
	}
}

// Names returns the record keys in sorted order.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.Characters))
	for name := range d.Characters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sample returns a copy of d holding its first n records by name. A
// non-positive n or an n beyond the dataset size keeps everything.
func (d *Dataset) Sample(n int) *Dataset {
	names := d.Names()
	if n > 0 && n < len(names) {
		names = names[:n]
	}
	out := &Dataset{Metadata: d.Metadata, Characters: make(map[string]types.CharacterRecord, len(names))}
	for _, name := range names {
		out.Characters[name] = d.Characters[name]
	}
	out.Metadata.TotalCharacters = len(out.Characters)
	return out
}

// Write stores d as indented JSON at path. The file is written to a
// temporary sibling and renamed into place so readers never see a partial
// dataset. TotalCharacters is refreshed before writing.
func Write(path string, d *Dataset) error {
	d.Metadata.TotalCharacters = len(d.Characters)
	if d.Metadata.FailedPages == nil {
		d.Metadata.FailedPages = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding dataset: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes data to a temporary file next to path and renames it
// over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// Stored is a dataset read back leniently for the repair pass.
type Stored struct {
	Metadata   Metadata
	Characters map[string]types.StoredRecord
}

// Load reads a dataset file. Both the wrapped form with metadata and the
// bare name-to-record mapping written by progress checkpoints are accepted.
// Metadata that fails to parse is ignored.
func Load(path string) (*Stored, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	s := &Stored{}
	body := data
	if chars, ok := top["characters"]; ok {
		body = chars
		if meta, ok := top["metadata"]; ok {
			_ = json.Unmarshal(meta, &s.Metadata)
		}
	}
	if err := json.Unmarshal(body, &s.Characters); err != nil {
		return nil, fmt.Errorf("parsing characters in %s: %w", path, err)
	}
	if len(s.Characters) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCharacters)
	}
	return s, nil
}

// LoadInputs reads a dataset and returns the records that retained their
// raw markup as extraction inputs, in name order.
func LoadInputs(path string) ([]types.RawInput, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.Characters))
	for name := range s.Characters {
		names = append(names, name)
	}
	sort.Strings(names)

	var inputs []types.RawInput
	for _, name := range names {
		rec := s.Characters[name]
		if rec.RawContent == "" {
			continue
		}
		title := rec.Name
		if title == "" {
			title = name
		}
		inputs = append(inputs, types.RawInput{Title: title, Markup: rec.RawContent, Categories: rec.Categories})
	}
	return inputs, nil
}

// Read decodes a dataset written by Write. Unlike Load it expects records
// in the current shape.
func Read(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(d.Characters) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCharacters)
	}
	return &d, nil
}
