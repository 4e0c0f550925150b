/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package resolve maps (entity kind, field) pairs onto locations inside a
// shared bundle document.
//
// Every field is described by a dotted path template such as
// "setlists.{setlist_index}.presets.{preset_index}.data.meta.name". At access
// time the placeholders are replaced by the entity's coordinates and the
// document is walked segment by segment. Before descending through a
// {preset_index} segment the resolver makes sure the preset slot holds a
// document, copying the preset template into it on first use.
package resolve

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"helixapi/internal/container"
)

// Entity kinds known to the mapping table.
const (
	KindBundle   = "bundle"
	KindSetlist  = "setlist"
	KindPreset   = "preset"
	KindSnapshot = "snapshot"
)

// Root is the field name that addresses an entity's whole subtree.
const Root = "root"

// Coords are the zero-based indices that locate an entity in a bundle.
type Coords struct {
	Setlist  int
	Preset   int
	Snapshot int
}

func (c Coords) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.Setlist, c.Preset, c.Snapshot)
}

// Mapping is the static field table: kind -> field -> path template.
type Mapping map[string]map[string]string

//go:embed mappings.yaml
var defaultMappings []byte

// DefaultMapping returns the built-in field table.
func DefaultMapping() (Mapping, error) { return ParseMapping(defaultMappings) }

// ParseMapping reads a field table from YAML.
func ParseMapping(data []byte) (Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mappings: %w", err)
	}
	return m, nil
}

type placeholder int

const (
	literal placeholder = iota
	setlistIndex
	presetIndex
	snapshotIndex
)

var placeholderNames = map[string]placeholder{
	"{setlist_index}":  setlistIndex,
	"{preset_index}":   presetIndex,
	"{snapshot_index}": snapshotIndex,
}

// segment is one dotted path component. A whole-segment placeholder yields an
// integer index; a literal may embed placeholders and yields a map key.
type segment struct {
	text string
	ph   placeholder
}

func (s segment) key(c Coords) any {
	switch s.ph {
	case setlistIndex:
		return c.Setlist
	case presetIndex:
		return c.Preset
	case snapshotIndex:
		return c.Snapshot
	}
	if !strings.Contains(s.text, "{") {
		return s.text
	}
	return strings.NewReplacer(
		"{setlist_index}", strconv.Itoa(c.Setlist),
		"{preset_index}", strconv.Itoa(c.Preset),
		"{snapshot_index}", strconv.Itoa(c.Snapshot),
	).Replace(s.text)
}

// Resolver reads and writes fields of a document through the mapping table.
type Resolver struct {
	paths          map[string]map[string][]segment
	presetTemplate container.Document
}

// New compiles a mapping table. presetTemplate is deep-copied into empty
// preset slots on first access; it may be nil to disable lazy fill.
func New(m Mapping, presetTemplate container.Document) (*Resolver, error) {
	r := &Resolver{paths: map[string]map[string][]segment{}}
	if presetTemplate != nil {
		r.presetTemplate = container.Clone(presetTemplate).(*container.Object)
	}
	for kind, fields := range m {
		r.paths[kind] = map[string][]segment{}
		for field, tmpl := range fields {
			segs, err := compile(tmpl)
			if err != nil {
				return nil, fmt.Errorf("mapping %s.%s: %w", kind, field, err)
			}
			r.paths[kind][field] = segs
		}
	}
	return r, nil
}

// Default builds a resolver over the built-in mapping table.
func Default(presetTemplate container.Document) (*Resolver, error) {
	m, err := DefaultMapping()
	if err != nil {
		return nil, err
	}
	return New(m, presetTemplate)
}

func compile(tmpl string) ([]segment, error) {
	if strings.TrimSpace(tmpl) == "" {
		return nil, errors.New("empty path")
	}
	parts := strings.Split(tmpl, ".")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty segment in %q", tmpl)
		}
		if ph, ok := placeholderNames[p]; ok {
			segs = append(segs, segment{text: p, ph: ph})
			continue
		}
		rest := p
		for strings.Contains(rest, "{") {
			open := strings.Index(rest, "{")
			end := strings.Index(rest[open:], "}")
			if end < 0 {
				return nil, fmt.Errorf("unterminated placeholder in %q", p)
			}
			name := rest[open : open+end+1]
			if _, ok := placeholderNames[name]; !ok {
				return nil, fmt.Errorf("unknown placeholder %s", name)
			}
			rest = rest[open+end+1:]
		}
		segs = append(segs, segment{text: p})
	}
	return segs, nil
}

// Fields lists the fields known for kind, sorted.
func (r *Resolver) Fields(kind string) []string {
	out := make([]string, 0, len(r.paths[kind]))
	for f := range r.paths[kind] {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// PresetTemplate returns a fresh copy of the template used for lazy fill.
func (r *Resolver) PresetTemplate() container.Document {
	if r.presetTemplate == nil {
		return nil
	}
	return container.Clone(r.presetTemplate).(*container.Object)
}

// Path returns the concrete dotted path of a field at c.
func (r *Resolver) Path(kind, field string, c Coords) (string, error) {
	segs, err := r.lookup(kind, field)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprint(s.key(c))
	}
	return strings.Join(parts, "."), nil
}

func (r *Resolver) lookup(kind, field string) ([]segment, error) {
	segs, ok := r.paths[kind][field]
	if !ok {
		return nil, &UnknownFieldError{Kind: kind, Field: field}
	}
	return segs, nil
}

// Get returns the value of field at c. An absent terminal key yields nil.
func (r *Resolver) Get(doc container.Document, kind, field string, c Coords) (any, error) {
	segs, err := r.lookup(kind, field)
	if err != nil {
		return nil, err
	}
	n, err := r.walk(doc, segs, c, true)
	if err != nil {
		return nil, err
	}
	return n.get(), nil
}

// Set assigns value to field at c, mutating doc in place.
func (r *Resolver) Set(doc container.Document, kind, field string, c Coords, value any) error {
	segs, err := r.lookup(kind, field)
	if err != nil {
		return err
	}
	n, err := r.walk(doc, segs, c, true)
	if err != nil {
		return err
	}
	return n.set(value)
}

// Peek is Get without lazy fill: absent paths, including empty preset slots,
// read as nil.
func (r *Resolver) Peek(doc container.Document, kind, field string, c Coords) (any, error) {
	segs, err := r.lookup(kind, field)
	if err != nil {
		return nil, err
	}
	n, err := r.walk(doc, segs, c, false)
	if err != nil {
		var mp *MissingPathError
		if errors.As(err, &mp) {
			return nil, nil
		}
		return nil, err
	}
	return n.get(), nil
}

// Exists reports whether field at c holds a non-empty value. It never fills
// preset slots.
func (r *Resolver) Exists(doc container.Document, kind, field string, c Coords) (bool, error) {
	segs, err := r.lookup(kind, field)
	if err != nil {
		return false, err
	}
	n, err := r.walk(doc, segs, c, false)
	if err != nil {
		var mp *MissingPathError
		if errors.As(err, &mp) {
			return false, nil
		}
		return false, err
	}
	return !empty(n.get()), nil
}

// node is a (holder, key) pair addressing one slot of the tree. replace writes
// a new holder back into its own parent when a slice has to grow.
type node struct {
	holder  any
	key     any
	replace func(any)
}

func (n node) get() any {
	switch h := n.holder.(type) {
	case *container.Object:
		return h.Get(keyString(n.key))
	case []any:
		i, ok := n.key.(int)
		if !ok || i < 0 || i >= len(h) {
			return nil
		}
		return h[i]
	}
	return nil
}

func (n *node) set(v any) error {
	switch h := n.holder.(type) {
	case *container.Object:
		h.Set(keyString(n.key), v)
		return nil
	case []any:
		i, ok := n.key.(int)
		if !ok || i < 0 {
			return fmt.Errorf("resolve: invalid array index %v", n.key)
		}
		if i >= len(h) {
			grown := make([]any, i+1)
			copy(grown, h)
			h = grown
			n.holder = h
			n.replace(h)
		}
		h[i] = v
		return nil
	}
	return fmt.Errorf("resolve: cannot assign into %T", n.holder)
}

func (r *Resolver) walk(doc container.Document, segs []segment, c Coords, fill bool) (*node, error) {
	if doc == nil {
		return nil, errors.New("resolve: nil document")
	}
	n := &node{holder: doc, replace: func(any) {}}
	for i, s := range segs {
		n.key = s.key(c)
		if fill && s.ph == presetIndex {
			if err := r.ensurePreset(n); err != nil {
				return nil, err
			}
		}
		if i == len(segs)-1 {
			break
		}
		child := n.get()
		switch child.(type) {
		case *container.Object, []any:
		default:
			return nil, &MissingPathError{Path: joinKeys(segs[:i+1], c)}
		}
		parent := *n
		n = &node{holder: child, replace: func(v any) { _ = parent.set(v) }}
	}
	return n, nil
}

// ensurePreset stores a copy of the preset template in the slot n addresses
// when that slot is absent or empty. Populated slots are left untouched.
func (r *Resolver) ensurePreset(n *node) error {
	if r.presetTemplate == nil || !empty(n.get()) {
		return nil
	}
	return n.set(container.Clone(r.presetTemplate))
}

func empty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case *container.Object:
		return t.Len() == 0
	case []any:
		return len(t) == 0
	}
	return false
}

func keyString(k any) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprint(k)
}

func joinKeys(segs []segment, c Coords) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprint(s.key(c))
	}
	return strings.Join(parts, ".")
}
