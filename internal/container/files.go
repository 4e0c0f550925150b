/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package container

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckSource verifies that path names an existing, readable regular file
// whose extension maps to a container kind, and returns that kind.
func CheckSource(path string) (Kind, error) {
	kind := KindFromPath(path)
	if kind == KindUnknown {
		return kind, &PathError{Op: "read", Path: path, Reason: "unrecognized file extension"}
	}
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return kind, &PathError{Op: "read", Path: path, Reason: "file does not exist", Err: err}
		}
		return kind, &PathError{Op: "read", Path: path, Reason: "cannot stat file", Err: err}
	}
	if !fi.Mode().IsRegular() {
		return kind, &PathError{Op: "read", Path: path, Reason: "not a regular file"}
	}
	f, err := os.Open(path)
	if err != nil {
		return kind, &PathError{Op: "read", Path: path, Reason: "file is not readable", Err: err}
	}
	_ = f.Close()
	return kind, nil
}

// CheckDestination verifies that path has a recognized extension and that its
// parent directory exists. Writability is checked when the file is written.
func CheckDestination(path string) (Kind, error) {
	kind := KindFromPath(path)
	if kind == KindUnknown {
		return kind, &PathError{Op: "write", Path: path, Reason: "unrecognized file extension"}
	}
	dir := filepath.Dir(path)
	fi, err := os.Stat(dir)
	if err != nil {
		return kind, &PathError{Op: "write", Path: path, Reason: "directory does not exist", Err: err}
	}
	if !fi.IsDir() {
		return kind, &PathError{Op: "write", Path: path, Reason: "parent is not a directory"}
	}
	return kind, nil
}

func expectKind(op, path string, got, want Kind) error {
	if want != KindUnknown && got != want {
		return &PathError{Op: op, Path: path, Reason: fmt.Sprintf("expected a .%s file", want.Extension())}
	}
	return nil
}

// ReadFile loads and decodes a container file. kind may be KindUnknown to
// accept whatever the extension says.
func ReadFile(path string, kind Kind) (Document, Envelope, error) {
	got, err := CheckSource(path)
	if err != nil {
		return nil, nil, err
	}
	if err := expectKind("read", path, got, kind); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &PathError{Op: "read", Path: path, Reason: "file is not readable", Err: err}
	}
	return Decode(data, got)
}

// WriteFile encodes doc and writes it to path. The full file is rendered in
// memory, written to a temporary file next to the target and renamed into
// place, so a failed write never leaves a partial file behind.
func WriteFile(path string, doc Document, env Envelope, kind Kind, name string) (Envelope, error) {
	got, err := CheckDestination(path)
	if err != nil {
		return nil, err
	}
	if err := expectKind("write", path, got, kind); err != nil {
		return nil, err
	}
	data, sealed, err := Encode(doc, env, got, name)
	if err != nil {
		return nil, err
	}
	if err := writeAtomic(path, data); err != nil {
		return nil, err
	}
	return sealed, nil
}

// WriteBytes writes already rendered data to path with the same guarantees as WriteFile.
func WriteBytes(path string, data []byte) error {
	dir := filepath.Dir(path)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return &PathError{Op: "write", Path: path, Reason: "directory does not exist", Err: err}
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &PathError{Op: "write", Path: path, Reason: "directory is not writable", Err: err}
	}
	temp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(temp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("close temp file: %w", err)
	}
	_ = os.Chmod(temp, 0o644)
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// UniqueName returns path unchanged if nothing exists there, otherwise the
// first "name (n).ext" variant that is free.
func UniqueName(path string) string {
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Lstat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
