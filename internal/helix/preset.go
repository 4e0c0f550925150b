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

// Preset is a view of one preset slot of a setlist. An empty slot is filled
// from the preset template the first time one of its fields is accessed.
type Preset struct {
	arena     *arena
	setlist   int
	index     int
	owner     *Presets
	snapshots *Snapshots
}

// Presets is the fixed-size collection of presets in one setlist.
type Presets struct {
	collection[*Preset]
	setlist int
}

func newPresets(a *arena, setlist int) *Presets {
	p := &Presets{setlist: setlist}
	at := func(i int) resolve.Coords { return resolve.Coords{Setlist: setlist, Preset: i} }
	p.collection = collection[*Preset]{
		name:  "presets",
		arena: a,
		event: midi.EventPreset,
		slots: slotStore{
			// Empty slots are moved as nil so they stay uninitialized.
			load: func(i int) (any, error) { return a.peek(resolve.KindPreset, resolve.Root, at(i)) },
			store: func(i int, v any) error {
				return a.set(resolve.KindPreset, resolve.Root, at(i), v)
			},
		},
	}
	for i := range a.opts.MaxPresets {
		pr := &Preset{arena: a, setlist: setlist, index: i, owner: p}
		pr.snapshots = newSnapshots(a, setlist, i)
		p.items = append(p.items, pr)
	}
	return p
}

// Setlist is the index of the owning setlist.
func (p *Presets) Setlist() int { return p.setlist }

func (p *Preset) coords() resolve.Coords {
	return resolve.Coords{Setlist: p.setlist, Preset: p.index}
}

// Index is the preset's position in its setlist.
func (p *Preset) Index() int { return p.index }

// SetlistIndex is the position of the owning setlist.
func (p *Preset) SetlistIndex() int { return p.setlist }

// Snapshots returns the preset's snapshots.
func (p *Preset) Snapshots() *Snapshots { return p.snapshots }

// Initialized reports whether the slot holds data. It does not fill the slot.
func (p *Preset) Initialized() bool {
	ok, err := p.arena.opts.Resolver.Exists(p.arena.doc, resolve.KindPreset, resolve.Root, p.coords())
	return err == nil && ok
}

func (p *Preset) getString(field string) (string, error) {
	return p.arena.getString(resolve.KindPreset, field, p.coords())
}

func (p *Preset) setName(field, v string) error {
	if err := checkName("preset", field, v); err != nil {
		return err
	}
	return p.arena.set(resolve.KindPreset, field, p.coords(), v)
}

func (p *Preset) Name() (string, error)   { return p.getString("name") }
func (p *Preset) Author() (string, error) { return p.getString("author") }
func (p *Preset) Band() (string, error)   { return p.getString("band") }
func (p *Preset) Song() (string, error)   { return p.getString("song") }

// SetName renames the preset. Names longer than 16 characters are rejected.
func (p *Preset) SetName(v string) error   { return p.setName("name", v) }
func (p *Preset) SetAuthor(v string) error { return p.setName("author", v) }
func (p *Preset) SetBand(v string) error   { return p.setName("band", v) }
func (p *Preset) SetSong(v string) error   { return p.setName("song", v) }

// Tempo returns the preset's global tempo in BPM.
func (p *Preset) Tempo() (float64, error) {
	v, err := p.arena.get(resolve.KindPreset, "tempo", p.coords())
	if err != nil {
		return 0, err
	}
	return asFloat(v)
}

func (p *Preset) SetTempo(bpm float64) error {
	if err := checkTempo("preset", bpm); err != nil {
		return err
	}
	return p.arena.set(resolve.KindPreset, "tempo", p.coords(), bpm)
}

// ActiveSnapshotIndex returns the snapshot index stored in the preset.
func (p *Preset) ActiveSnapshotIndex() int { return p.snapshots.ActiveIndex() }

// SetActiveSnapshotIndex stores i in the preset and notifies the sink.
func (p *Preset) SetActiveSnapshotIndex(i int) error { return p.snapshots.SetActiveIndex(i) }

// Active reports whether this preset is the active one of its setlist.
func (p *Preset) Active() bool { return p.owner.isActive(p.index) }

// Activate makes this preset active and notifies the sink.
func (p *Preset) Activate() error { return p.owner.SetActiveIndex(p.index) }

// Document returns the preset's document, filling an empty slot first.
func (p *Preset) Document() (container.Document, error) {
	v, err := p.arena.get(resolve.KindPreset, resolve.Root, p.coords())
	if err != nil {
		return nil, err
	}
	doc, ok := v.(*container.Object)
	if !ok {
		return nil, fmt.Errorf("helix: preset %d/%d has no document", p.setlist, p.index)
	}
	return doc, nil
}

// Import replaces the preset with a .hlx file, or with the preset template
// when path is empty.
func (p *Preset) Import(path string) error {
	var (
		doc container.Document
		err error
	)
	if path == "" {
		doc = p.arena.opts.Resolver.PresetTemplate()
		if doc == nil {
			doc, _, err = container.Template(container.KindPreset)
		}
	} else {
		doc, _, err = container.ReadFile(path, container.KindPreset)
	}
	if err != nil {
		return err
	}
	if err := p.arena.validate(container.KindPreset, doc); err != nil {
		return fmt.Errorf("import preset %d/%d: %w", p.setlist, p.index, err)
	}
	if err := p.arena.set(resolve.KindPreset, resolve.Root, p.coords(), doc); err != nil {
		return err
	}
	if err := p.arena.clampSnapshot(p.coords()); err != nil {
		return err
	}
	p.snapshots = newSnapshots(p.arena, p.setlist, p.index)
	p.arena.log().Debug("preset imported", slog.Int("setlist", p.setlist), slog.Int("preset", p.index), slog.String("path", path))
	return nil
}

// Export writes the preset as an uncompressed .hlx file.
func (p *Preset) Export(path string) error {
	doc, err := p.Document()
	if err != nil {
		return err
	}
	name, err := p.Name()
	if err != nil {
		return err
	}
	if _, err := container.WriteFile(path, doc, nil, container.KindPreset, name); err != nil {
		return fmt.Errorf("export preset %d/%d: %w", p.setlist, p.index, err)
	}
	p.arena.log().Debug("preset exported", slog.Int("setlist", p.setlist), slog.Int("preset", p.index), slog.String("path", path))
	return nil
}

// Reset replaces the preset with the template.
func (p *Preset) Reset() error { return p.Import("") }

// Standardize applies the naming rules to the preset and its snapshots.
func (p *Preset) Standardize() error {
	r, err := p.standardized(nil)
	if err != nil {
		return err
	}
	return r.apply()
}

func (p *Preset) standardized(r renames) (renames, error) {
	name, err := p.Name()
	if err != nil {
		return r, err
	}
	name = p.arena.opts.Standardizer.Apply(name, resolve.KindPreset)
	r = append(r, rename{entity: "preset", name: name, set: p.SetName})
	for _, s := range p.snapshots.All() {
		if r, err = s.standardized(r); err != nil {
			return r, err
		}
	}
	return r, nil
}
