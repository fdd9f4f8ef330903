// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over name and description.
	Query string

	// Race, Plane, Status, and Color filter on exact values, ignoring case.
	Race   string
	Plane  string
	Status string
	Color  string

	// Planeswalker, when set, keeps only planeswalkers (true) or only
	// non-planeswalkers (false).
	Planeswalker *bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Race == "" && q.Plane == "" && q.Status == "" && q.Color == "" && q.Planeswalker == nil
}

// Query searches the index. Full-text results are ranked by relevance;
// filter-only results are sorted by name.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]types.CharacterRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT c.record FROM characters_fts
			JOIN characters c ON c.rowid = characters_fts.rowid
			WHERE characters_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT c.record FROM characters c WHERE 1=1`)
	}

	for _, f := range []struct{ column, value string }{
		{"race", opts.Race},
		{"plane", opts.Plane},
		{"status", opts.Status},
	} {
		if f.value != "" {
			qb.WriteString(` AND c.` + f.column + ` = ? COLLATE NOCASE`)
			args = append(args, f.value)
		}
	}
	if opts.Color != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(c.colors) WHERE value = ? COLLATE NOCASE)`)
		args = append(args, opts.Color)
	}
	if opts.Planeswalker != nil {
		qb.WriteString(` AND c.is_planeswalker = ?`)
		args = append(args, *opts.Planeswalker)
	}

	if useFTS {
		qb.WriteString(` ORDER BY characters_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY c.name`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying characters: %w", err)
	}
	defer rows.Close()

	var results []types.CharacterRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var rec types.CharacterRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
