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
	"strings"
)

// LEDColor is a snapshot's footswitch LED color.
type LEDColor int

const (
	LEDAuto LEDColor = iota
	LEDWhite
	LEDRed
	LEDDarkOrange
	LEDLightOrange
	LEDYellow
	LEDGreen
	LEDTurquoise
	LEDBlue
	LEDViolet
	LEDPink
	LEDOff
)

var ledNames = [...]string{
	"auto", "white", "red", "dark_orange", "light_orange", "yellow",
	"green", "turquoise", "blue", "violet", "pink", "off",
}

// Valid reports whether c is one of the twelve device colors.
func (c LEDColor) Valid() bool { return c >= LEDAuto && c <= LEDOff }

func (c LEDColor) String() string {
	if c.Valid() {
		return ledNames[c]
	}
	return fmt.Sprintf("LEDColor(%d)", int(c))
}

// ParseLEDColor accepts a color name ("dark_orange", "Dark Orange") or its number.
func ParseLEDColor(s string) (LEDColor, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer(" ", "_", "-", "_").Replace(n)
	for i, name := range ledNames {
		if name == n {
			return LEDColor(i), nil
		}
	}
	var i int
	if _, err := fmt.Sscanf(n, "%d", &i); err == nil && LEDColor(i).Valid() && fmt.Sprint(i) == n {
		return LEDColor(i), nil
	}
	return 0, &ValidationError{Entity: "snapshot", Field: "ledcolor", Value: s, Reason: "unknown color"}
}
