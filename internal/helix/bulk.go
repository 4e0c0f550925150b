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
	"path/filepath"
	"strings"

	"helixapi/internal/container"
)

// ExportOptions controls bulk export.
type ExportOptions struct {
	// Generic names files "<kind>_<index>.<ext>" instead of after the
	// display name. Display-name collisions get a " (n)" suffix.
	Generic bool
	// SkipEmpty leaves out preset slots that were never initialized.
	SkipEmpty bool
}

var unsafeFileChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

func exportPath(dir string, kind container.Kind, index int, name string, generic bool) string {
	name = strings.TrimSpace(unsafeFileChars.Replace(name))
	if generic || name == "" || name == "." || name == ".." {
		return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", kind, index, kind.Extension()))
	}
	return container.UniqueName(filepath.Join(dir, name+"."+kind.Extension()))
}

// ExportFiles writes every setlist to dir and returns the paths written.
func (s *Setlists) ExportFiles(dir string, o ExportOptions) ([]string, error) {
	var paths []string
	for i, sl := range s.All() {
		name, err := sl.Name()
		if err != nil {
			return paths, err
		}
		p := exportPath(dir, container.KindSetlist, i, name, o.Generic)
		if err := sl.Export(p); err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ImportFiles imports paths into slots 0, 1, ... in order. Slots beyond the
// list are left alone.
func (s *Setlists) ImportFiles(paths []string) error {
	if len(paths) > s.Len() {
		return &CapacityError{Collection: "setlists", Count: len(paths), Max: s.Len()}
	}
	for i, p := range paths {
		if err := s.items[i].Import(p); err != nil {
			return err
		}
	}
	return nil
}

// ExportFiles writes the setlist's presets to dir and returns the paths written.
func (p *Presets) ExportFiles(dir string, o ExportOptions) ([]string, error) {
	var paths []string
	for i, pr := range p.All() {
		if o.SkipEmpty && !pr.Initialized() {
			continue
		}
		name, err := pr.Name()
		if err != nil {
			return paths, err
		}
		path := exportPath(dir, container.KindPreset, i, name, o.Generic)
		if err := pr.Export(path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ImportFiles imports paths into preset slots 0, 1, ... in order.
func (p *Presets) ImportFiles(paths []string) error {
	if len(paths) > p.Len() {
		return &CapacityError{Collection: "presets", Count: len(paths), Max: p.Len()}
	}
	for i, path := range paths {
		if err := p.items[i].Import(path); err != nil {
			return err
		}
	}
	return nil
}
