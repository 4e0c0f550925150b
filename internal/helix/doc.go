/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package helix models a Helix bundle as a hierarchy of setlists, presets and
// snapshots.
//
// A bundle owns one document. Setlists, presets and snapshots are views over
// that document identified by their coordinates; every accessor reads and
// writes through the field resolver, so a change made through one view is
// visible through every other view of the same slot. Each collection tracks
// one active member and reports activations to a midi.Sink.
//
// Swap, Move and Clone move document data between slots. A view keeps its
// coordinates, so after Swap(0, 1) the setlist at position 0 shows what used
// to be stored in slot 1. Active pointers are positional and do not follow
// the data.
package helix
