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
	"helixapi/internal/midi"
	"helixapi/internal/resolve"
)

// Setlist is a view of one setlist slot.
type Setlist struct {
	arena   *arena
	index   int
	owner   *Setlists
	presets *Presets
}

// Setlists is the fixed-size collection of setlists of a bundle.
type Setlists struct {
	collection[*Setlist]
}

type setlistSlot struct {
	root any
	env  container.Envelope
}

func newSetlists(a *arena) *Setlists {
	s := &Setlists{}
	s.collection = collection[*Setlist]{
		name:  "setlists",
		arena: a,
		event: midi.EventSetlist,
		slots: slotStore{
			load: func(i int) (any, error) {
				root, err := a.get(resolve.KindSetlist, resolve.Root, resolve.Coords{Setlist: i})
				if err != nil {
					return nil, err
				}
				return setlistSlot{root: root, env: a.setlistEnv[i]}, nil
			},
			store: func(i int, v any) error {
				slot := v.(setlistSlot)
				if slot.env == nil {
					delete(a.setlistEnv, i)
				} else {
					a.setlistEnv[i] = slot.env
				}
				return a.set(resolve.KindSetlist, resolve.Root, resolve.Coords{Setlist: i}, slot.root)
			},
			dup: func(v any) any {
				slot := v.(setlistSlot)
				out := setlistSlot{root: container.Clone(slot.root)}
				if slot.env != nil {
					out.env = container.Clone(slot.env).(*container.Object)
				}
				return out
			},
		},
	}
	for i := range a.opts.MaxSetlists {
		sl := &Setlist{arena: a, index: i, owner: s}
		sl.presets = newPresets(a, i)
		s.items = append(s.items, sl)
	}
	return s
}

func (s *Setlist) coords() resolve.Coords { return resolve.Coords{Setlist: s.index} }

// Index is the setlist's position in its bundle.
func (s *Setlist) Index() int { return s.index }

// Presets returns the setlist's presets.
func (s *Setlist) Presets() *Presets { return s.presets }

func (s *Setlist) Name() (string, error) {
	return s.arena.getString(resolve.KindSetlist, "name", s.coords())
}

// SetName renames the setlist. Names longer than 16 characters are rejected.
func (s *Setlist) SetName(name string) error {
	if err := checkName("setlist", "name", name); err != nil {
		return err
	}
	return s.arena.set(resolve.KindSetlist, "name", s.coords(), name)
}

// Active reports whether this setlist is the active one.
func (s *Setlist) Active() bool { return s.owner.isActive(s.index) }

// Activate makes this setlist active and notifies the sink.
func (s *Setlist) Activate() error { return s.owner.SetActiveIndex(s.index) }

// Envelope returns the envelope the setlist was last imported or exported with.
func (s *Setlist) Envelope() container.Envelope { return s.arena.setlistEnv[s.index] }

// Document returns the setlist's payload subtree.
func (s *Setlist) Document() (container.Document, error) {
	v, err := s.arena.get(resolve.KindSetlist, resolve.Root, s.coords())
	if err != nil {
		return nil, err
	}
	doc, ok := v.(*container.Object)
	if !ok {
		return nil, fmt.Errorf("helix: setlist %d has no document", s.index)
	}
	return doc, nil
}

// Import replaces the setlist with the contents of a .hls file, or with the
// built-in template when path is empty. The setlist's presets are rebuilt.
func (s *Setlist) Import(path string) error {
	var (
		doc container.Document
		env container.Envelope
		err error
	)
	if path == "" {
		doc, env, err = container.Template(container.KindSetlist)
	} else {
		doc, env, err = container.ReadFile(path, container.KindSetlist)
	}
	if err != nil {
		return err
	}
	if err := s.arena.validate(container.KindSetlist, doc); err != nil {
		return fmt.Errorf("import setlist %d: %w", s.index, err)
	}
	if err := s.arena.set(resolve.KindSetlist, resolve.Root, s.coords(), doc); err != nil {
		return err
	}
	if err := s.arena.clampSnapshots(s.index); err != nil {
		return err
	}
	s.arena.setlistEnv[s.index] = env
	s.presets = newPresets(s.arena, s.index)
	s.arena.log().Debug("setlist imported", slog.Int("setlist", s.index), slog.String("path", path))
	if s.Active() {
		return s.presets.SetActiveIndex(0)
	}
	return nil
}

// Export writes the setlist to a .hls file named after path.
func (s *Setlist) Export(path string) error {
	doc, err := s.Document()
	if err != nil {
		return err
	}
	name, err := s.Name()
	if err != nil {
		return err
	}
	sealed, err := container.WriteFile(path, doc, s.Envelope(), container.KindSetlist, name)
	if err != nil {
		return fmt.Errorf("export setlist %d: %w", s.index, err)
	}
	sealed.Delete("encoded_data")
	s.arena.setlistEnv[s.index] = sealed
	s.arena.log().Debug("setlist exported", slog.Int("setlist", s.index), slog.String("path", path))
	return nil
}

// Reset loads the setlist template and names the setlist "SETLIST n".
func (s *Setlist) Reset() error {
	if err := s.Import(""); err != nil {
		return err
	}
	return s.SetName(defaultSetlistName(s.index))
}

// Standardize applies the configured naming rules to the setlist name.
func (s *Setlist) Standardize() error {
	r, err := s.standardized(nil)
	if err != nil {
		return err
	}
	return r.apply()
}

func (s *Setlist) standardized(r renames) (renames, error) {
	name, err := s.Name()
	if err != nil {
		return r, err
	}
	name = s.arena.opts.Standardizer.Apply(name, resolve.KindSetlist)
	return append(r, rename{entity: "setlist", name: name, set: s.SetName}), nil
}
