/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"helixapi/internal/config"
	"helixapi/internal/crash"
	applog "helixapi/internal/log"
	"helixapi/internal/version"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "helixctl - manage Helix bundles, setlists and presets")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage (indexes are 0-based):")
	fmt.Fprintln(w, "  helixctl version|-v|--version                      Show version")
	fmt.Fprintln(w, "  helixctl info <file> [--tree]                      Summarize a .hlb, .hls or .hlx file")
	fmt.Fprintln(w, "  helixctl rename <bundle> <setlist> <name>          Rename a setlist in place")
	fmt.Fprintln(w, "  helixctl export-setlists <bundle> <dir> [--generic]")
	fmt.Fprintln(w, "  helixctl export-presets <bundle> <setlist> <dir> [--generic] [--all]")
	fmt.Fprintln(w, "  helixctl import-setlists <bundle> <file.hls>...    Replace setlists 0.. and save")
	fmt.Fprintln(w, "  helixctl standardize <bundle>                      Apply naming rules and save")
	fmt.Fprintln(w, "  helixctl index <bundle> [label]                    Add a bundle to the catalog")
	fmt.Fprintln(w, "  helixctl search <query> [kind]                     Search the catalog")
	fmt.Fprintln(w, "  helixctl diff <a> <b>                              Diff two files of the same kind")
	fmt.Fprintln(w, "  helixctl cuesheet <bundle> <setlist> <out.pdf>     Print a setlist cue sheet")
	fmt.Fprintln(w, "  helixctl activate <bundle> <setlist> [preset [snapshot]]")
	fmt.Fprintln(w, "                                                     Send the selection to the MIDI targets")
}

func main() {
	cfg, err := config.Load()
	applog.Init(mergeLogOptions(cfg.LogOptions(), applog.FromEnv()))
	l := applog.WithComponent("cli")
	if err != nil {
		l.Warn("settings not loaded, using defaults", slog.Any("err", err))
	}
	defer crash.Recover(nil)

	l.Debug("start", slog.Int("args", len(os.Args)))
	os.Exit(run(cfg, os.Args[1:], os.Stdout, os.Stderr))
}

// mergeLogOptions lets the environment override the settings file.
func mergeLogOptions(file, env applog.Options) applog.Options {
	out := file
	if _, ok := os.LookupEnv("HELIX_LOG_LEVEL"); ok || out.Level == "" {
		out.Level = env.Level
	}
	if _, ok := os.LookupEnv("HELIX_LOG_FORMAT"); ok || out.Format == "" {
		out.Format = env.Format
	}
	if _, ok := os.LookupEnv("HELIX_LOG_FILE"); ok {
		out.File = env.File
	}
	out.AddSource = out.AddSource || env.AddSource
	out.MaxSizeMB, out.MaxBackups = env.MaxSizeMB, env.MaxBackups
	return out
}

// run executes one command and returns the process exit code.
func run(cfg config.AppConfig, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 0
	}
	c := &cli{cfg: cfg, out: stdout, l: applog.WithComponent("cli")}
	var err error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.String())
		return 0
	case "help", "-h", "--help":
		usage(stdout)
		return 0
	case "info":
		err = c.need(args, 1, c.info)
	case "rename":
		err = c.need(args, 3, c.rename)
	case "export-setlists":
		err = c.need(args, 2, c.exportSetlists)
	case "export-presets":
		err = c.need(args, 3, c.exportPresets)
	case "import-setlists":
		err = c.need(args, 2, c.importSetlists)
	case "standardize":
		err = c.need(args, 1, c.standardize)
	case "index":
		err = c.need(args, 1, c.index)
	case "search":
		err = c.need(args, 1, c.search)
	case "diff":
		err = c.need(args, 2, c.diff)
	case "cuesheet":
		err = c.need(args, 3, c.cuesheet)
	case "activate":
		err = c.need(args, 2, c.activate)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}
	if err == errUsage {
		fmt.Fprintf(stderr, "%s: missing arguments\n\n", args[0])
		usage(stderr)
		return 2
	}
	if err != nil {
		c.l.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
