/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import (
	"fmt"
	"log/slog"

	"helixapi/internal/container"
	"helixapi/internal/resolve"
)

// Bundle is the root of the hierarchy: an envelope plus the document shared
// by all setlists, presets and snapshots.
type Bundle struct {
	arena    *arena
	setlists *Setlists
}

// NewBundle creates a bundle from the built-in template.
func NewBundle(opts Options) (*Bundle, error) { return OpenBundle("", opts) }

// OpenBundle loads a .hlb file, or the template when path is empty.
func OpenBundle(path string, opts Options) (*Bundle, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	b := &Bundle{arena: newArena(nil, nil, opts)}
	if err := b.Import(path); err != nil {
		return nil, err
	}
	return b, nil
}

// Import replaces the bundle with a .hlb file, or with the template when path
// is empty. All setlist, preset and snapshot views are rebuilt and the first
// setlist and preset are activated.
func (b *Bundle) Import(path string) error {
	var (
		doc container.Document
		env container.Envelope
		err error
	)
	if path == "" {
		doc, env, err = container.Template(container.KindBundle)
	} else {
		doc, env, err = container.ReadFile(path, container.KindBundle)
	}
	if err != nil {
		return err
	}
	if err := b.arena.validate(container.KindBundle, doc); err != nil {
		return fmt.Errorf("import bundle: %w", err)
	}
	b.arena.doc = doc
	b.arena.env = env
	b.arena.setlistEnv = map[int]container.Envelope{}
	b.arena.normalize()
	for i := range b.arena.opts.MaxSetlists {
		if err := b.arena.clampSnapshots(i); err != nil {
			return err
		}
	}
	b.setlists = newSetlists(b.arena)
	b.arena.log().Debug("bundle imported", slog.String("path", path), slog.Int("setlists", b.setlists.Len()))
	return announce(b.setlists)
}

// announce reports the initial state: setlist 0 and preset 0 of that setlist.
func announce(s *Setlists) error {
	if err := s.SetActiveIndex(0); err != nil {
		return err
	}
	return s.items[0].presets.SetActiveIndex(0)
}

// Export writes the bundle to a .hlb file.
func (b *Bundle) Export(path string) error {
	sealed, err := container.WriteFile(path, b.arena.doc, b.arena.env, container.KindBundle, b.Name())
	if err != nil {
		return fmt.Errorf("export bundle: %w", err)
	}
	sealed.Delete("encoded_data")
	b.arena.env = sealed
	b.arena.log().Debug("bundle exported", slog.String("path", path))
	return nil
}

// Name is the bundle's display name from its envelope.
func (b *Bundle) Name() string {
	return asString(b.arena.env.Object("meta").Get("name"))
}

// SetName renames the bundle. Names longer than 16 characters are rejected.
func (b *Bundle) SetName(name string) error {
	if err := checkName("bundle", "name", name); err != nil {
		return err
	}
	if b.arena.env == nil {
		b.arena.env = container.NewObject()
	}
	b.arena.env.Section("meta").Set("name", name)
	return nil
}

// Setlists returns the bundle's setlists.
func (b *Bundle) Setlists() *Setlists { return b.setlists }

// Document returns the shared document.
func (b *Bundle) Document() container.Document { return b.arena.doc }

// Envelope returns the bundle's envelope metadata.
func (b *Bundle) Envelope() container.Envelope { return b.arena.env }

// Options returns the options the bundle was built with.
func (b *Bundle) Options() Options { return b.arena.opts }

// Resolver returns the field resolver shared by the bundle's views.
func (b *Bundle) Resolver() *resolve.Resolver { return b.arena.opts.Resolver }

// Standardize applies the naming rules to every setlist, every initialized
// preset and their snapshots. If any resulting name is too long nothing is
// renamed.
func (b *Bundle) Standardize() error {
	var (
		r   renames
		err error
	)
	for _, sl := range b.setlists.All() {
		if r, err = sl.standardized(r); err != nil {
			return err
		}
		for _, p := range sl.Presets().All() {
			if !p.Initialized() {
				continue
			}
			if r, err = p.standardized(r); err != nil {
				return err
			}
		}
	}
	return r.apply()
}

// OpenSetlist loads a standalone .hls file, or the setlist template when path
// is empty. The returned setlist is the only member of its collection.
func OpenSetlist(path string, opts Options) (*Setlist, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	opts.MaxSetlists = 1
	a := newArena(container.ObjectOf("setlists", []any{emptySetlist(0)}), nil, opts)
	s := newSetlists(a)
	if err := s.items[0].Import(path); err != nil {
		return nil, err
	}
	if err := announce(s); err != nil {
		return nil, err
	}
	return s.items[0], nil
}

// OpenPreset loads a standalone .hlx file, or the preset template when path
// is empty.
func OpenPreset(path string, opts Options) (*Preset, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	opts.MaxSetlists = 1
	opts.MaxPresets = 1
	a := newArena(container.ObjectOf("setlists", []any{emptySetlist(0)}), nil, opts)
	s := newSetlists(a)
	p := s.items[0].presets.items[0]
	if err := p.Import(path); err != nil {
		return nil, err
	}
	if err := announce(s); err != nil {
		return nil, err
	}
	return p, nil
}
