/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Query describes a catalog search. Text uses SQLite FTS5 syntax (terms,
// "phrases", prefix*, AND/OR/NOT); when empty every entry matching the
// filters is returned.
type Query struct {
	Text   string
	Bundle string

	// Kinds restricts results to "setlist", "preset" or "snapshot".
	Kinds []string

	// Setlists restricts results to the given setlist indexes.
	Setlists []int
	Limit    int
	Offset   int
}

// Result is one matching entry. Preset and Snapshot are -1 when they do not
// apply to the entry's kind.
type Result struct {
	ID       int64
	Bundle   string
	Kind     string
	Setlist  int
	Preset   int
	Snapshot int
	Name     string
	Snippet  string
}

// Search runs q against the catalog, ordered by position.
func (c *Catalog) Search(ctx context.Context, q Query) ([]Result, error) {
	var (
		sb   strings.Builder
		args []any
	)
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString("SELECT e.id, e.bundle, e.kind, e.setlist, e.preset, e.snapshot, e.name, snippet(fts_entries, 0, '[', ']', '...', 8)\n")
		sb.WriteString("FROM fts_entries JOIN entries e ON fts_entries.rowid = e.id\n")
		sb.WriteString("WHERE fts_entries MATCH ?\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("SELECT e.id, e.bundle, e.kind, e.setlist, e.preset, e.snapshot, e.name, ''\n")
		sb.WriteString("FROM entries e\nWHERE 1=1\n")
	}
	if s := strings.TrimSpace(q.Bundle); s != "" {
		sb.WriteString(" AND e.bundle = ?\n")
		args = append(args, s)
	}
	if len(q.Kinds) > 0 {
		sb.WriteString(" AND e.kind IN (" + placeholders(len(q.Kinds)) + ")\n")
		for _, k := range q.Kinds {
			args = append(args, strings.ToLower(strings.TrimSpace(k)))
		}
	}
	if len(q.Setlists) > 0 {
		sb.WriteString(" AND e.setlist IN (" + placeholders(len(q.Setlists)) + ")\n")
		for _, i := range q.Setlists {
			args = append(args, i)
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := max(q.Offset, 0)
	sb.WriteString("ORDER BY e.bundle, e.setlist, COALESCE(e.preset,-1), COALESCE(e.snapshot,-1)\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var (
			r            Result
			preset, snap sql.NullInt64
			snippet      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Bundle, &r.Kind, &r.Setlist, &preset, &snap, &r.Name, &snippet); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.Preset, r.Snapshot = nullIndex(preset), nullIndex(snap)
		r.Snippet = snippet.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullIndex(v sql.NullInt64) int {
	if !v.Valid {
		return -1
	}
	return int(v.Int64)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
