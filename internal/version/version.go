/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package version holds build information set via -ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version and Commit are overridden at build time:
//
//	go build -ldflags "-X helixapi/internal/version.Version=v1.2.0 -X helixapi/internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = ""
)

// String returns the version, with the commit when known.
func String() string {
	commit := Commit
	if commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			}
		}
	}
	if commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, commit)
}
