/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package schema validates decoded payload documents against the JSON
// schemas of the three container kinds.
package schema

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"helixapi/internal/container"
)

//go:embed schemas/*.schema.json
var files embed.FS

// Error lists the schema violations of one document.
type Error struct {
	Kind     container.Kind
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("schema: %s document is invalid: %s", e.Kind, strings.Join(e.Problems, "; "))
}

var (
	mu       sync.Mutex
	compiled = map[container.Kind]*gojsonschema.Schema{}
)

// Source returns the raw JSON schema for kind.
func Source(kind container.Kind) ([]byte, error) {
	b, err := files.ReadFile("schemas/" + kind.String() + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema for %s: %w", kind, err)
	}
	return b, nil
}

func load(kind container.Kind) (*gojsonschema.Schema, error) {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := compiled[kind]; ok {
		return s, nil
	}
	src, err := Source(kind)
	if err != nil {
		return nil, err
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(src))
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", kind, err)
	}
	compiled[kind] = s
	return s, nil
}

// Validate checks doc against the schema for kind. Violations are reported
// as *Error; other failures are returned as plain errors.
func Validate(kind container.Kind, doc container.Document) error {
	s, err := load(kind)
	if err != nil {
		return err
	}
	b, err := container.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", kind, err)
	}
	return ValidateBytes(s, kind, b)
}

// ValidateFile decodes a container file and validates its payload.
func ValidateFile(path string) error {
	kind, err := container.CheckSource(path)
	if err != nil {
		return err
	}
	doc, _, err := container.ReadFile(path, kind)
	if err != nil {
		return err
	}
	return Validate(kind, doc)
}

// ValidateBytes validates an already serialized payload.
func ValidateBytes(s *gojsonschema.Schema, kind container.Kind, payload []byte) error {
	res, err := s.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("validate %s document: %w", kind, err)
	}
	if res.Valid() {
		return nil
	}
	e := &Error{Kind: kind}
	for _, re := range res.Errors() {
		e.Problems = append(e.Problems, re.String())
	}
	return e
}
