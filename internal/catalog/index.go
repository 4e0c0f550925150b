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
	"log/slog"
	"strings"

	"helixapi/internal/helix"
)

type entry struct {
	kind     string
	setlist  int
	preset   sql.NullInt64
	snapshot sql.NullInt64
	name     string
	text     string
}

// IndexBundle replaces everything stored under label with the names found
// in b. Preset slots that were never initialized are skipped and stay empty.
// It returns the number of entries written.
func (c *Catalog) IndexBundle(ctx context.Context, label string, b *helix.Bundle) (int, error) {
	if strings.TrimSpace(label) == "" {
		return 0, fmt.Errorf("index bundle: label is required")
	}
	rows, err := collect(b)
	if err != nil {
		return 0, fmt.Errorf("index bundle %s: %w", label, err)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE bundle=?`, label); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	ins, err := tx.PrepareContext(ctx, `INSERT INTO entries(bundle, kind, setlist, preset, snapshot, name, text) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer ins.Close()
	for _, r := range rows {
		if _, err := ins.ExecContext(ctx, label, r.kind, r.setlist, r.preset, r.snapshot, r.name, r.text); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	c.l.Info("bundle indexed", slog.String("bundle", label), slog.Int("entries", len(rows)))
	return len(rows), nil
}

// Remove drops every entry stored under label.
func (c *Catalog) Remove(ctx context.Context, label string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM entries WHERE bundle=?`, label); err != nil {
		return fmt.Errorf("remove bundle %s: %w", label, err)
	}
	return nil
}

// Bundles lists the labels present in the catalog, sorted.
func (c *Catalog) Bundles(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT bundle FROM entries ORDER BY bundle`)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func collect(b *helix.Bundle) ([]entry, error) {
	var rows []entry
	for si, sl := range b.Setlists().All() {
		name, err := sl.Name()
		if err != nil {
			return nil, err
		}
		rows = append(rows, entry{kind: "setlist", setlist: si, name: name, text: name})
		for pi, p := range sl.Presets().All() {
			if !p.Initialized() {
				continue
			}
			e, err := presetEntry(si, pi, p)
			if err != nil {
				return nil, err
			}
			rows = append(rows, e)
			for ni, s := range p.Snapshots().All() {
				name, err := s.Name()
				if err != nil {
					return nil, err
				}
				rows = append(rows, entry{
					kind:     "snapshot",
					setlist:  si,
					preset:   sql.NullInt64{Int64: int64(pi), Valid: true},
					snapshot: sql.NullInt64{Int64: int64(ni), Valid: true},
					name:     name,
					text:     name,
				})
			}
		}
	}
	return rows, nil
}

// presetEntry indexes the preset name together with author, band and song.
func presetEntry(si, pi int, p *helix.Preset) (entry, error) {
	var parts []string
	for _, get := range []func() (string, error){p.Name, p.Author, p.Band, p.Song} {
		s, err := get()
		if err != nil {
			return entry{}, err
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	name, _ := p.Name()
	return entry{
		kind:    "preset",
		setlist: si,
		preset:  sql.NullInt64{Int64: int64(pi), Valid: true},
		name:    name,
		text:    strings.Join(parts, " "),
	}, nil
}
