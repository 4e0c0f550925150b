/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"helixapi/internal/catalog"
	"helixapi/internal/config"
	"helixapi/internal/container"
	"helixapi/internal/crash"
	"helixapi/internal/diff"
	"helixapi/internal/export"
	"helixapi/internal/helix"
)

var errUsage = errors.New("usage")

type cli struct {
	cfg config.AppConfig
	out io.Writer
	l   *slog.Logger
}

// need checks the positional argument count before calling fn with the
// arguments after the command name.
func (c *cli) need(args []string, n int, fn func([]string) error) error {
	rest := args[1:]
	if len(positional(rest)) < n {
		return errUsage
	}
	return fn(rest)
}

func positional(args []string) []string {
	var out []string
	for _, a := range args {
		if !strings.HasPrefix(a, "--") {
			out = append(out, a)
		}
	}
	return out
}

func hasFlag(args []string, name string) bool { return slices.Contains(args, "--"+name) }

func (c *cli) options() (helix.Options, error) { return helix.OptionsFromConfig(c.cfg, nil) }

func (c *cli) openBundle(path string) (*helix.Bundle, error) {
	opts, err := c.options()
	if err != nil {
		return nil, err
	}
	return helix.OpenBundle(path, opts)
}

func setlistArg(b *helix.Bundle, s string) (*helix.Setlist, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("setlist index %q: %w", s, err)
	}
	return b.Setlists().At(i)
}

func (c *cli) info(args []string) error {
	path := positional(args)[0]
	kind, err := container.CheckSource(path)
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	switch kind {
	case container.KindBundle:
		b, err := helix.OpenBundle(path, opts)
		if err != nil {
			return err
		}
		defer crash.Recover(b)
		if hasFlag(args, "tree") {
			tree, err := bundleTree(b)
			if err != nil {
				return err
			}
			fmt.Fprint(c.out, tree)
			return nil
		}
		fmt.Fprintf(c.out, "Bundle: %s\n", b.Name())
		for i, sl := range b.Setlists().All() {
			name, err := sl.Name()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "  %d  %-16s  %d presets\n", i, name, initialized(sl))
		}
	case container.KindSetlist:
		sl, err := helix.OpenSetlist(path, opts)
		if err != nil {
			return err
		}
		return c.printSetlist(sl)
	case container.KindPreset:
		p, err := helix.OpenPreset(path, opts)
		if err != nil {
			return err
		}
		return c.printPreset(p)
	}
	return nil
}

func initialized(sl *helix.Setlist) int {
	n := 0
	for _, p := range sl.Presets().All() {
		if p.Initialized() {
			n++
		}
	}
	return n
}

func (c *cli) printSetlist(sl *helix.Setlist) error {
	name, err := sl.Name()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Setlist: %s\n", name)
	for i, p := range sl.Presets().All() {
		if !p.Initialized() {
			continue
		}
		pn, err := p.Name()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "  %s  %s\n", export.BankLabel(i), pn)
	}
	return nil
}

func (c *cli) printPreset(p *helix.Preset) error {
	name, err := p.Name()
	if err != nil {
		return err
	}
	author, _ := p.Author()
	bpm, _ := p.Tempo()
	fmt.Fprintf(c.out, "Preset: %s\nAuthor: %s\nTempo: %g\n", name, author, bpm)
	for i, s := range p.Snapshots().All() {
		sn, err := s.Name()
		if err != nil {
			return err
		}
		led, _ := s.LEDColor()
		mark := " "
		if s.Active() {
			mark = "*"
		}
		fmt.Fprintf(c.out, " %s%d  %-16s  %s\n", mark, i, sn, led)
	}
	return nil
}

func (c *cli) rename(args []string) error {
	p := positional(args)
	b, err := c.openBundle(p[0])
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	sl, err := setlistArg(b, p[1])
	if err != nil {
		return err
	}
	if err := sl.SetName(p[2]); err != nil {
		return err
	}
	return b.Export(p[0])
}

func (c *cli) exportSetlists(args []string) error {
	p := positional(args)
	b, err := c.openBundle(p[0])
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	paths, err := b.Setlists().ExportFiles(p[1], helix.ExportOptions{Generic: hasFlag(args, "generic")})
	c.printPaths(paths)
	return err
}

func (c *cli) exportPresets(args []string) error {
	p := positional(args)
	b, err := c.openBundle(p[0])
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	sl, err := setlistArg(b, p[1])
	if err != nil {
		return err
	}
	paths, err := sl.Presets().ExportFiles(p[2], helix.ExportOptions{
		Generic:   hasFlag(args, "generic"),
		SkipEmpty: !hasFlag(args, "all"),
	})
	c.printPaths(paths)
	return err
}

func (c *cli) printPaths(paths []string) {
	for _, p := range paths {
		fmt.Fprintln(c.out, p)
	}
}

func (c *cli) importSetlists(args []string) error {
	p := positional(args)
	b, err := c.openBundle(p[0])
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	if err := b.Setlists().ImportFiles(p[1:]); err != nil {
		return err
	}
	return b.Export(p[0])
}

func (c *cli) standardize(args []string) error {
	path := positional(args)[0]
	b, err := c.openBundle(path)
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	if err := b.Standardize(); err != nil {
		return err
	}
	return b.Export(path)
}

func (c *cli) openCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if strings.TrimSpace(c.cfg.Catalog.Path) == "" {
		return nil, fmt.Errorf("no catalog configured: set catalog.path or %s", config.EnvCatalog)
	}
	return catalog.Open(ctx, c.cfg.Catalog.Path)
}

func (c *cli) index(args []string) error {
	p := positional(args)
	label := strings.TrimSuffix(filepath.Base(p[0]), filepath.Ext(p[0]))
	if len(p) > 1 {
		label = p[1]
	}
	b, err := c.openBundle(p[0])
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	ctx := context.Background()
	cat, err := c.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()
	n, err := cat.IndexBundle(ctx, label, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Indexed %d names from %s as %q\n", n, p[0], label)
	return nil
}

func (c *cli) search(args []string) error {
	p := positional(args)
	q := catalog.Query{Text: p[0]}
	if len(p) > 1 {
		q.Kinds = p[1:]
	}
	ctx := context.Background()
	cat, err := c.openCatalog(ctx)
	if err != nil {
		return err
	}
	defer cat.Close()
	res, err := cat.Search(ctx, q)
	if err != nil {
		return err
	}
	for _, r := range res {
		where := fmt.Sprintf("setlist %d", r.Setlist)
		if r.Preset >= 0 {
			where += " " + export.BankLabel(r.Preset)
		}
		if r.Snapshot >= 0 {
			where += fmt.Sprintf(" snapshot %d", r.Snapshot)
		}
		fmt.Fprintf(c.out, "%s\t%s\t%s\t%s\n", r.Bundle, r.Kind, where, r.Name)
	}
	return nil
}

func (c *cli) diff(args []string) error {
	p := positional(args)
	var ignore []string
	if !hasFlag(args, "dates") {
		ignore = []string{"modifieddate"}
	}
	s, err := diff.Files(p[0], p[1], diff.Options{IgnoreKeys: ignore})
	if err != nil {
		return err
	}
	if s == "" {
		fmt.Fprintln(c.out, "No differences")
		return nil
	}
	fmt.Fprint(c.out, s)
	return nil
}

func (c *cli) cuesheet(args []string) error {
	p := positional(args)
	b, err := c.openBundle(p[0])
	if err != nil {
		return err
	}
	defer crash.Recover(b)
	sl, err := setlistArg(b, p[1])
	if err != nil {
		return err
	}
	return export.WriteCueSheet(sl, p[2], export.CueSheetOptions{
		IncludeEmpty: hasFlag(args, "all"),
		Snapshots:    hasFlag(args, "snapshots"),
	})
}

func (c *cli) activate(args []string) error {
	p := positional(args)
	idx := make([]int, 0, 3)
	for _, s := range p[1:] {
		i, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("index %q: %w", s, err)
		}
		idx = append(idx, i)
	}
	driver, err := helix.DriverFromConfig(c.cfg)
	if err != nil {
		return err
	}
	h, err := helix.New(c.cfg, driver, p[0])
	if err != nil {
		return err
	}
	defer h.Close()
	defer crash.Recover(h.Bundle())

	sl, err := h.Setlists().At(idx[0])
	if err != nil {
		return err
	}
	if err := sl.Activate(); err != nil {
		return err
	}
	if len(idx) < 2 {
		return nil
	}
	pr, err := sl.Presets().At(idx[1])
	if err != nil {
		return err
	}
	if err := pr.Activate(); err != nil {
		return err
	}
	if len(idx) < 3 {
		return nil
	}
	snap, err := pr.Snapshots().At(idx[2])
	if err != nil {
		return err
	}
	return snap.Activate()
}
