/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import "fmt"

// ValidationError reports a field value that violates its constraint.
type ValidationError struct {
	Entity string
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("helix: invalid %s %s %v: %s", e.Entity, e.Field, e.Value, e.Reason)
}

// IndexError reports a collection index outside [0, Len).
type IndexError struct {
	Collection string
	Index      int
	Len        int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("helix: %s index %d out of range [0, %d)", e.Collection, e.Index, e.Len)
}

// CapacityError reports a bulk import with more files than slots.
type CapacityError struct {
	Collection string
	Count      int
	Max        int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("helix: %d %s exceed the maximum of %d", e.Count, e.Collection, e.Max)
}
