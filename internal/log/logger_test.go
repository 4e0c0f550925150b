/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestInitAndStructuredLoggingToFile verifies that the file handler writes JSON
// records carrying the static and contextual attributes.
func TestInitAndStructuredLoggingToFile(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "helix.log")
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "json", File: fpath, Writer: &console})

	l := WithOperation(WithComponent("testcomp"), "op1")
	l.Info("hello world", slog.String("k", "v"))

	time.Sleep(50 * time.Millisecond)
	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for scanner.Scan() {
		if s := strings.TrimSpace(scanner.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	if m["app"] != "helixapi" {
		t.Fatalf("missing app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "testcomp" || m["op"] != "op1" || m["msg"] != "hello world" {
		t.Fatalf("unexpected record: %v", m)
	}
	if !strings.Contains(console.String(), "hello world") {
		t.Fatalf("console writer did not receive the record")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HELIX_LOG_LEVEL", "warn")
	t.Setenv("HELIX_LOG_FORMAT", "json")
	t.Setenv("HELIX_LOG_SOURCE", "true")
	t.Setenv("HELIX_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if v := getenv("HELIX_SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestLineHandler(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "warn", Writer: &buf})

	l.Info("hidden")
	l.With("k", "v").WithGroup("grp").Error("boom", slog.Int("n", 42), slog.Float64("pi", 3.14), slog.String("s", "two words"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %q", out)
	}
	for _, want := range []string{"ERR", "boom", "k=v", "grp.n=42", "grp.pi=3.14", `grp.s="two words"`, "app=helixapi"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q: %q", want, out)
		}
	}
}

func TestLineHandlerSource(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", AddSource: true, Writer: &buf})
	l.Info("where")
	if out := buf.String(); !strings.Contains(out, "src=") || !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("source missing: %q", out)
	}
	buf.Reset()
	New(Options{Level: "info", Writer: &buf}).Info("quiet")
	if strings.Contains(buf.String(), "src=") {
		t.Fatalf("source written without AddSource: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger should not be enabled")
	}
}
