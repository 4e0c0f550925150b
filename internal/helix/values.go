/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// MaxNameLength is the longest name, in characters, the device displays.
const MaxNameLength = 16

// Tempo limits in BPM.
const (
	MinTempo = 30.0
	MaxTempo = 240.0
)

func checkName(entity, field, v string) error {
	if n := utf8.RuneCountInString(v); n > MaxNameLength {
		return &ValidationError{Entity: entity, Field: field, Value: v, Reason: fmt.Sprintf("%d characters, at most %d allowed", n, MaxNameLength)}
	}
	return nil
}

// rename is a pending name change.
type rename struct {
	entity string
	name   string
	set    func(string) error
}

type renames []rename

// apply checks every name before writing any of them.
func (r renames) apply() error {
	for _, n := range r {
		if err := checkName(n.entity, "name", n.name); err != nil {
			return err
		}
	}
	for _, n := range r {
		if err := n.set(n.name); err != nil {
			return err
		}
	}
	return nil
}

func checkTempo(entity string, v float64) error {
	if math.IsNaN(v) || v < MinTempo || v > MaxTempo {
		return &ValidationError{Entity: entity, Field: "tempo", Value: v, Reason: fmt.Sprintf("must be within %g..%g BPM", MinTempo, MaxTempo)}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asInt(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), nil
		}
		f, err := t.Float64()
		return int(f), err
	case string:
		return strconv.Atoi(t)
	}
	return 0, fmt.Errorf("helix: %T is not a number", v)
}

func asFloat(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	}
	return 0, fmt.Errorf("helix: %T is not a number", v)
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
