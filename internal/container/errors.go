/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package container

import "fmt"

// PathError reports a bad, missing, unreadable or unwritable file path.
type PathError struct {
	Op     string // "read" or "write"
	Path   string
	Reason string
	Err    error
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("container: %s %q: %s", e.Op, e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PathError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DecodeError reports a corrupt container. Stage names the layer that failed:
// "envelope", "base64", "zlib", "utf8" or "payload".
type DecodeError struct {
	Kind  Kind
	Stage string
	Err   error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("container: decode %s (%s): %v", e.Kind, e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
