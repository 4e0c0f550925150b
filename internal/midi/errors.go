/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package midi

import "fmt"

// TransportError reports a failure to open or write a MIDI port.
type TransportError struct {
	Port string
	Op   string // "open", "send" or "close"
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("midi: %s %q: %v", e.Op, e.Port, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
