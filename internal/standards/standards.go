/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package standards applies naming rules to setlist, preset and snapshot names.
package standards

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Casing values accepted in a Rule.
const (
	CasingNone  = ""
	CasingUpper = "uppercase"
	CasingLower = "lowercase"
	CasingTitle = "titlecase"
)

// Replacement substitutes With for every case-insensitive match of any pattern.
type Replacement struct {
	With     string
	Patterns []string
}

// Replacements is an ordered list. In YAML it is written as a mapping from
// replacement text to a list of patterns; mapping order is preserved.
type Replacements []Replacement

func (r *Replacements) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("replacements: expected mapping at line %d", n.Line)
	}
	out := make(Replacements, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var with string
		if err := n.Content[i].Decode(&with); err != nil {
			return fmt.Errorf("replacements: key at line %d: %w", n.Content[i].Line, err)
		}
		var patterns []string
		v := n.Content[i+1]
		if v.Kind == yaml.ScalarNode {
			var p string
			if err := v.Decode(&p); err != nil {
				return err
			}
			patterns = []string{p}
		} else if err := v.Decode(&patterns); err != nil {
			return fmt.Errorf("replacements %q: %w", with, err)
		}
		out = append(out, Replacement{With: with, Patterns: patterns})
	}
	*r = out
	return nil
}

func (r Replacements) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, rep := range r {
		k := &yaml.Node{Kind: yaml.ScalarNode, Value: rep.With}
		v := &yaml.Node{}
		if err := v.Encode(rep.Patterns); err != nil {
			return nil, err
		}
		n.Content = append(n.Content, k, v)
	}
	return n, nil
}

// Rule is the configuration for one entity kind.
type Rule struct {
	Casing       string       `yaml:"casing,omitempty"`
	Replacements Replacements `yaml:"replacements,omitempty"`
}

// Rules maps entity kind ("setlist", "preset", "snapshot") to its rule.
type Rules map[string]Rule

type compiled struct {
	casing string
	subs   []sub
}

type sub struct {
	re   *regexp.Regexp
	with string
}

// Standardizer applies compiled Rules. The zero value passes names through.
type Standardizer struct {
	kinds map[string]compiled
	title cases.Caser
}

// New compiles rules. Patterns are Go regular expressions matched without
// regard to case; unknown casing values are rejected.
func New(rules Rules) (*Standardizer, error) {
	s := &Standardizer{kinds: map[string]compiled{}, title: cases.Title(language.Und)}
	for kind, rule := range rules {
		c := compiled{casing: strings.ToLower(strings.TrimSpace(rule.Casing))}
		switch c.casing {
		case CasingNone, CasingUpper, CasingLower, CasingTitle:
		default:
			return nil, fmt.Errorf("standards %s: unknown casing %q", kind, rule.Casing)
		}
		for _, rep := range rule.Replacements {
			for _, p := range rep.Patterns {
				re, err := regexp.Compile("(?i)" + p)
				if err != nil {
					return nil, fmt.Errorf("standards %s: pattern %q: %w", kind, p, err)
				}
				c.subs = append(c.subs, sub{re: re, with: rep.With})
			}
		}
		s.kinds[kind] = c
	}
	return s, nil
}

// Apply returns name standardized for kind. Kinds without a rule are returned unchanged.
func (s *Standardizer) Apply(name, kind string) string {
	if s == nil {
		return name
	}
	c, ok := s.kinds[kind]
	if !ok {
		return name
	}
	for _, sb := range c.subs {
		name = sb.re.ReplaceAllLiteralString(name, sb.with)
	}
	switch c.casing {
	case CasingUpper:
		name = strings.ToUpper(name)
	case CasingLower:
		name = strings.ToLower(name)
	case CasingTitle:
		name = s.title.String(name)
	}
	return name
}

// Has reports whether a rule exists for kind.
func (s *Standardizer) Has(kind string) bool {
	if s == nil {
		return false
	}
	_, ok := s.kinds[kind]
	return ok
}
