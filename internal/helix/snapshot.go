/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import (
	"helixapi/internal/midi"
	"helixapi/internal/resolve"
)

// Snapshot is a view of one snapshot of a preset.
type Snapshot struct {
	arena   *arena
	setlist int
	preset  int
	index   int
	owner   *Snapshots
}

// Snapshots is the fixed-size collection of snapshots of one preset. The
// active index is stored in the preset document.
type Snapshots struct {
	collection[*Snapshot]
}

func newSnapshots(a *arena, setlist, preset int) *Snapshots {
	s := &Snapshots{}
	at := func(i int) resolve.Coords {
		return resolve.Coords{Setlist: setlist, Preset: preset, Snapshot: i}
	}
	presetAt := resolve.Coords{Setlist: setlist, Preset: preset}
	s.collection = collection[*Snapshot]{
		name:  "snapshots",
		arena: a,
		event: midi.EventSnapshot,
		slots: slotStore{
			load: func(i int) (any, error) { return a.get(resolve.KindSnapshot, resolve.Root, at(i)) },
			store: func(i int, v any) error {
				return a.set(resolve.KindSnapshot, resolve.Root, at(i), v)
			},
		},
		loadActive: func() (int, error) {
			v, err := a.peek(resolve.KindPreset, "current_snapshot", presetAt)
			if err != nil {
				return 0, err
			}
			return asInt(v)
		},
		storeActive: func(i int) error {
			return a.set(resolve.KindPreset, "current_snapshot", presetAt, i)
		},
	}
	for i := range a.opts.MaxSnapshots {
		s.items = append(s.items, &Snapshot{arena: a, setlist: setlist, preset: preset, index: i, owner: s})
	}
	return s
}

func (s *Snapshot) coords() resolve.Coords {
	return resolve.Coords{Setlist: s.setlist, Preset: s.preset, Snapshot: s.index}
}

// Index is the snapshot's position in its preset.
func (s *Snapshot) Index() int { return s.index }

func (s *Snapshot) Name() (string, error) {
	return s.arena.getString(resolve.KindSnapshot, "name", s.coords())
}

func (s *Snapshot) SetName(name string) error {
	if err := checkName("snapshot", "name", name); err != nil {
		return err
	}
	return s.arena.set(resolve.KindSnapshot, "name", s.coords(), name)
}

func (s *Snapshot) LEDColor() (LEDColor, error) {
	v, err := s.arena.get(resolve.KindSnapshot, "ledcolor", s.coords())
	if err != nil {
		return LEDAuto, err
	}
	n, err := asInt(v)
	return LEDColor(n), err
}

// SetLEDColor accepts only the twelve device colors.
func (s *Snapshot) SetLEDColor(c LEDColor) error {
	if !c.Valid() {
		return &ValidationError{Entity: "snapshot", Field: "ledcolor", Value: int(c), Reason: "must be one of the 12 LED colors"}
	}
	return s.arena.set(resolve.KindSnapshot, "ledcolor", s.coords(), int(c))
}

func (s *Snapshot) Tempo() (float64, error) {
	v, err := s.arena.get(resolve.KindSnapshot, "tempo", s.coords())
	if err != nil {
		return 0, err
	}
	return asFloat(v)
}

func (s *Snapshot) SetTempo(bpm float64) error {
	if err := checkTempo("snapshot", bpm); err != nil {
		return err
	}
	return s.arena.set(resolve.KindSnapshot, "tempo", s.coords(), bpm)
}

// Valid reports the device's "@valid" flag for the snapshot.
func (s *Snapshot) Valid() (bool, error) {
	v, err := s.arena.get(resolve.KindSnapshot, "valid", s.coords())
	return asBool(v), err
}

// Active reports whether this is the preset's current snapshot.
func (s *Snapshot) Active() bool { return s.owner.isActive(s.index) }

// Activate makes this the preset's current snapshot, storing the index in
// the preset document, and notifies the sink.
func (s *Snapshot) Activate() error { return s.owner.SetActiveIndex(s.index) }

// Standardize applies the naming rules to the snapshot name.
func (s *Snapshot) Standardize() error {
	r, err := s.standardized(nil)
	if err != nil {
		return err
	}
	return r.apply()
}

func (s *Snapshot) standardized(r renames) (renames, error) {
	name, err := s.Name()
	if err != nil {
		return r, err
	}
	name = s.arena.opts.Standardizer.Apply(name, resolve.KindSnapshot)
	return append(r, rename{entity: "snapshot", name: name, set: s.SetName}), nil
}
