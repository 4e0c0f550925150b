/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"

	"helixapi/internal/export"
	"helixapi/internal/helix"
)

// bundleTree renders setlists, initialized presets and their snapshots.
// The active member of each level is marked with "*".
func bundleTree(b *helix.Bundle) (string, error) {
	root := gotree.New(b.Name())
	for i, sl := range b.Setlists().All() {
		name, err := sl.Name()
		if err != nil {
			return "", err
		}
		st := root.Add(label(sl.Active(), fmt.Sprintf("%d %s", i, name)))
		for pi, p := range sl.Presets().All() {
			if !p.Initialized() {
				continue
			}
			pn, err := p.Name()
			if err != nil {
				return "", err
			}
			pt := st.Add(label(p.Active(), export.BankLabel(pi)+" "+pn))
			for _, s := range p.Snapshots().All() {
				sn, err := s.Name()
				if err != nil {
					return "", err
				}
				pt.Add(label(s.Active(), sn))
			}
		}
	}
	return root.Print(), nil
}

func label(active bool, s string) string {
	if active {
		return "*" + s
	}
	return s
}
