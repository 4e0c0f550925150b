/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package container implements the on-disk formats for Helix bundle (.hlb),
// setlist (.hls) and preset (.hlx) files.
//
// Bundle and setlist files are a JSON envelope whose "encoded_data" field holds
// the payload document as compact JSON, zlib-deflated and base64-encoded. The
// envelope records the payload's decompressed size and CRC-32 so the payload
// can be verified without reparsing. Preset files are the raw, indented JSON
// document with no envelope.
package container
