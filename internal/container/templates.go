/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package container

import (
	"embed"
	"fmt"
)

//go:embed templates/*
var templates embed.FS

// Template returns a fresh decoded copy of the built-in file for kind.
func Template(kind Kind) (Document, Envelope, error) {
	if kind == KindUnknown {
		return nil, nil, fmt.Errorf("container: no template for %s kind", kind)
	}
	data, err := TemplateBytes(kind)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data, kind)
}

// TemplateBytes returns the raw built-in file for kind.
func TemplateBytes(kind Kind) ([]byte, error) {
	data, err := templates.ReadFile("templates/" + kind.String() + "." + kind.Extension())
	if err != nil {
		return nil, fmt.Errorf("read %s template: %w", kind, err)
	}
	return data, nil
}
