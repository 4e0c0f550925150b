/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package diff compares the payload documents of two containers as unified
// diffs of their pretty-printed JSON.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"helixapi/internal/container"
)

// Options controls diff output.
type Options struct {
	// Context is the number of context lines per hunk. 0 means 3.
	Context int
	// IgnoreKeys are object keys dropped at any depth before comparing,
	// e.g. "modifieddate".
	IgnoreKeys []string
}

// Files decodes both containers and diffs their payloads. Both files must
// be of the same kind. An empty result means the payloads are equal.
func Files(aPath, bPath string, opt Options) (string, error) {
	ka, err := container.CheckSource(aPath)
	if err != nil {
		return "", err
	}
	kb, err := container.CheckSource(bPath)
	if err != nil {
		return "", err
	}
	if ka != kb {
		return "", fmt.Errorf("diff %s and %s: cannot compare %s with %s", aPath, bPath, ka, kb)
	}
	a, _, err := container.ReadFile(aPath, ka)
	if err != nil {
		return "", err
	}
	b, _, err := container.ReadFile(bPath, kb)
	if err != nil {
		return "", err
	}
	return Documents(aPath, bPath, a, b, opt)
}

// Documents diffs two payload documents labelled aName and bName.
func Documents(aName, bName string, a, b container.Document, opt Options) (string, error) {
	ta, err := render(a, opt.IgnoreKeys)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", aName, err)
	}
	tb, err := render(b, opt.IgnoreKeys)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", bName, err)
	}
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(ta),
		B:        difflib.SplitLines(tb),
		FromFile: aName,
		ToFile:   bName,
		Context:  ctx,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("diff %s and %s: %w", aName, bName, err)
	}
	return s, nil
}

func render(doc container.Document, ignore []string) (string, error) {
	var v any = doc
	if len(ignore) > 0 {
		v = strip(container.Clone(doc), ignore)
	}
	out, err := container.MarshalIndent(v)
	if err != nil {
		return "", err
	}
	s := string(out)
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s, nil
}

func strip(v any, keys []string) any {
	switch t := v.(type) {
	case *container.Object:
		for _, k := range keys {
			t.Delete(k)
		}
		for _, k := range t.Keys() {
			t.Set(k, strip(t.Get(k), keys))
		}
	case []any:
		for i, c := range t {
			t[i] = strip(c, keys)
		}
	}
	return v
}
