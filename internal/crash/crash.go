/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the CLI into a report file and an autosave
// of the loaded bundle.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"helixapi/internal/helix"
	applog "helixapi/internal/log"
	"helixapi/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// dirFn returns the directory reports and autosaves go to.
var dirFn = os.TempDir

// Recover captures a panic, logs it with the stack, writes a crash report
// and autosaves b (when not nil) next to it, then exits with code 2.
//
// Usage: defer crash.Recover(b)
func Recover(b *helix.Bundle) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	stamp := time.Now().Format("20060102-150405")
	reportPath, err := writeReport(b, r, stack, stamp)
	if err != nil {
		l.Error("write crash report failed", slog.Any("err", err))
	}
	if b != nil {
		if path, err := autosave(b, stamp); err != nil {
			l.Error("autosave failed", slog.Any("err", err))
		} else {
			l.Info("autosave written", slog.String("path", path))
			_, _ = fmt.Fprintf(os.Stderr, "Unsaved bundle written to: %s\n", path)
		}
	}
	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func autosave(b *helix.Bundle, stamp string) (string, error) {
	path := filepath.Join(dirFn(), fmt.Sprintf("helixapi-autosave-%s.hlb", stamp))
	if err := b.Export(path); err != nil {
		return "", err
	}
	return path, nil
}

func writeReport(b *helix.Bundle, panicVal any, stack []byte, stamp string) (string, error) {
	path := filepath.Join(dirFn(), fmt.Sprintf("helixapi-crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "helixapi crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if b != nil {
		_, _ = fmt.Fprintf(&buf, "Bundle: %s\n", b.Name())
		_, _ = fmt.Fprintf(&buf, "Active setlist: %d\n", b.Setlists().ActiveIndex())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
