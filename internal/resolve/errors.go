/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package resolve

import "fmt"

// UnknownFieldError reports a (kind, field) pair missing from the mapping table.
type UnknownFieldError struct {
	Kind  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("resolve: unknown field %q for %s", e.Field, e.Kind)
}

// MissingPathError reports an intermediate path segment that does not lead to
// an object or array.
type MissingPathError struct {
	Path string
}

func (e *MissingPathError) Error() string {
	return fmt.Sprintf("resolve: path %s does not exist", e.Path)
}
