/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package container

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies one of the three container file types.
type Kind int

const (
	KindUnknown Kind = iota
	KindBundle
	KindSetlist
	KindPreset
)

var kindNames = map[Kind]string{
	KindBundle:  "bundle",
	KindSetlist: "setlist",
	KindPreset:  "preset",
}

var kindExtensions = map[Kind]string{
	KindBundle:  "hlb",
	KindSetlist: "hls",
	KindPreset:  "hlx",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Extension returns the file extension for the kind without the leading dot.
func (k Kind) Extension() string { return kindExtensions[k] }

// Compressed reports whether files of this kind carry an envelope with a compressed payload.
func (k Kind) Compressed() bool { return k == KindBundle || k == KindSetlist }

// KindFromPath returns the kind matching the path's extension (case-insensitive),
// or KindUnknown.
func KindFromPath(path string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return KindUnknown
	}
	for k, e := range kindExtensions {
		if e == ext {
			return k
		}
	}
	return KindUnknown
}

// ParseKind resolves a kind by name ("bundle", "setlist", "preset").
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, v := range kindNames {
		if v == n {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("container: %q is not a valid file kind", name)
}
