// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store indexes CharacterRecords in SQLite with full-text search
// over names and descriptions.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lore-engine/pkg/types"
)

const (
	dbFile            = "lore.db"
	defaultMaxResults = 20
)

// Store manages the character index database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the index at cfg.IndexDir/lore.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.IndexDir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS characters (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL,
			race TEXT,
			plane TEXT,
			status TEXT,
			colors TEXT,
			is_planeswalker INTEGER NOT NULL DEFAULT 0,
			is_deceased INTEGER NOT NULL DEFAULT 0,
			url TEXT,
			record TEXT NOT NULL,
			content_hash TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_characters_race ON characters(race)`,
		`CREATE INDEX IF NOT EXISTS idx_characters_plane ON characters(plane)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='characters_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE characters_fts USING fts5(name, description, content=characters, content_rowid=rowid)`,
			`CREATE TRIGGER characters_ai AFTER INSERT ON characters BEGIN
				INSERT INTO characters_fts(rowid, name, description) VALUES (new.rowid, new.name, new.description);
			END`,
			`CREATE TRIGGER characters_ad AFTER DELETE ON characters BEGIN
				INSERT INTO characters_fts(characters_fts, rowid, name, description) VALUES('delete', old.rowid, old.name, old.description);
			END`,
			`CREATE TRIGGER characters_au AFTER UPDATE ON characters BEGIN
				INSERT INTO characters_fts(characters_fts, rowid, name, description) VALUES('delete', old.rowid, old.name, old.description);
				INSERT INTO characters_fts(rowid, name, description) VALUES (new.rowid, new.name, new.description);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of records processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest indexes records in name order. A record whose content is unchanged
// since the last run is skipped; a changed one replaces its previous row.
// Raw markup is not indexed. After any change the YAML export is refreshed.
func (s *Store) Ingest(ctx context.Context, records map[string]types.CharacterRecord, w io.Writer) (IngestSummary, error) {
	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)
	if w == nil {
		w = io.Discard
	}

	var summary IngestSummary
	for _, name := range names {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		rec := records[name]
		rec.RawContent = ""
		if rec.Name == "" {
			rec.Name = name
		}

		data, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}
		sum := sha256.Sum256(data)
		hash := hex.EncodeToString(sum[:])

		var stored string
		err = s.db.QueryRowContext(ctx,
			`SELECT content_hash FROM characters WHERE name = ?`, rec.Name,
		).Scan(&stored)
		if err == nil && stored == hash {
			fmt.Fprintf(w, "skipped %s\n", rec.Name)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		if err := s.upsert(ctx, rec, data, hash); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rec.Name, err)
			summary.Failed++
			continue
		}
		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", rec.Name)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s\n", rec.Name)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

func (s *Store) upsert(ctx context.Context, rec types.CharacterRecord, data []byte, hash string) error {
	colors, err := json.Marshal(rec.Colors)
	if err != nil {
		return fmt.Errorf("encoding colors: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO characters (name, description, race, plane, status, colors, is_planeswalker, is_deceased, url, record, content_hash)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			description=excluded.description, race=excluded.race, plane=excluded.plane,
			status=excluded.status, colors=excluded.colors,
			is_planeswalker=excluded.is_planeswalker, is_deceased=excluded.is_deceased,
			url=excluded.url, record=excluded.record, content_hash=excluded.content_hash`,
		rec.Name, rec.Description, rec.Race, rec.Plane, string(rec.Status), string(colors),
		rec.IsPlaneswalker, rec.IsDeceased, rec.URL, string(data), hash,
	)
	if err != nil {
		return fmt.Errorf("upserting character: %w", err)
	}
	return nil
}

// Count returns the number of indexed characters.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM characters`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting characters: %w", err)
	}
	return n, nil
}
