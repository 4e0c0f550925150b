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

// arena owns the document shared by every view of one bundle.
type arena struct {
	doc container.Document
	env container.Envelope
	// setlistEnv holds the envelope each setlist was imported with, by slot.
	setlistEnv map[int]container.Envelope
	opts       Options
}

func newArena(doc container.Document, env container.Envelope, opts Options) *arena {
	return &arena{doc: doc, env: env, setlistEnv: map[int]container.Envelope{}, opts: opts}
}

func (a *arena) get(kind, field string, c resolve.Coords) (any, error) {
	return a.opts.Resolver.Get(a.doc, kind, field, c)
}

func (a *arena) set(kind, field string, c resolve.Coords, v any) error {
	return a.opts.Resolver.Set(a.doc, kind, field, c, v)
}

func (a *arena) peek(kind, field string, c resolve.Coords) (any, error) {
	return a.opts.Resolver.Peek(a.doc, kind, field, c)
}

func (a *arena) getString(kind, field string, c resolve.Coords) (string, error) {
	v, err := a.get(kind, field, c)
	if err != nil {
		return "", err
	}
	return asString(v), nil
}

func (a *arena) notify(kind midi.EventKind, index int) error {
	ev := midi.Event{Kind: kind, Index: index}
	a.opts.Logger.Debug("notify", slog.String("event", ev.String()))
	return a.opts.Sink.Notify(ev)
}

func (a *arena) log() *slog.Logger { return a.opts.Logger }

// normalize makes sure the document has a setlists array with at least
// MaxSetlists entries, each with a meta object and a presets array.
func (a *arena) normalize() {
	list, _ := a.doc.Get("setlists").([]any)
	if len(list) < a.opts.MaxSetlists {
		grown := make([]any, a.opts.MaxSetlists)
		copy(grown, list)
		list = grown
	}
	for i, s := range list {
		m, ok := s.(*container.Object)
		if !ok || m.Len() == 0 {
			m = emptySetlist(i)
			list[i] = m
		}
		if m.Object("meta") == nil {
			m.Set("meta", container.ObjectOf("name", defaultSetlistName(i)))
		}
		if _, ok := m.Get("presets").([]any); !ok {
			m.Set("presets", []any{})
		}
	}
	a.doc.Set("setlists", list)
}

func emptySetlist(i int) *container.Object {
	return container.ObjectOf(
		"meta", container.ObjectOf("name", defaultSetlistName(i)),
		"presets", []any{},
	)
}

// clampSnapshot resets a stored active-snapshot index outside
// [0, MaxSnapshots) to 0. Empty preset slots are left empty.
func (a *arena) clampSnapshot(c resolve.Coords) error {
	v, err := a.peek(resolve.KindPreset, "current_snapshot", c)
	if err != nil || v == nil {
		return err
	}
	if i, err := asInt(v); err == nil && i >= 0 && i < a.opts.MaxSnapshots {
		return nil
	}
	a.log().Warn("active snapshot out of range, reset to 0",
		slog.Int("setlist", c.Setlist), slog.Int("preset", c.Preset), slog.Any("value", v))
	return a.set(resolve.KindPreset, "current_snapshot", c, 0)
}

// clampSnapshots applies clampSnapshot to every preset slot of a setlist.
func (a *arena) clampSnapshots(setlist int) error {
	for i := range a.opts.MaxPresets {
		if err := a.clampSnapshot(resolve.Coords{Setlist: setlist, Preset: i}); err != nil {
			return err
		}
	}
	return nil
}

func defaultSetlistName(i int) string { return fmt.Sprintf("SETLIST %d", i+1) }

func (a *arena) validate(kind container.Kind, doc container.Document) error {
	if a.opts.Validate == nil {
		return nil
	}
	return a.opts.Validate(kind, doc)
}
