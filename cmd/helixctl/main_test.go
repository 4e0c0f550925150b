package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"helixapi/internal/config"
	"helixapi/internal/helix"
	"helixapi/internal/standards"
)

func writeBundle(t *testing.T, dir string) string {
	t.Helper()
	b, err := helix.NewBundle(helix.Options{})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	sl, _ := b.Setlists().At(0)
	p, _ := sl.Presets().At(1)
	if err := p.SetName("big solo"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	path := filepath.Join(dir, "live.hlb")
	if err := b.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	return path
}

func runCLI(t *testing.T, cfg config.AppConfig, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(cfg, args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRunUsageAndVersion(t *testing.T) {
	cfg := config.Defaults()
	if code, out, _ := runCLI(t, cfg); code != 0 || !strings.Contains(out, "Usage") {
		t.Fatalf("no args: code=%d out=%q", code, out)
	}
	if code, out, _ := runCLI(t, cfg, "version"); code != 0 || strings.TrimSpace(out) == "" {
		t.Fatalf("version: code=%d out=%q", code, out)
	}
	if code, _, errOut := runCLI(t, cfg, "frobnicate"); code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown: code=%d err=%q", code, errOut)
	}
	if code, _, errOut := runCLI(t, cfg, "rename", "x.hlb"); code != 2 || !strings.Contains(errOut, "missing arguments") {
		t.Fatalf("missing args: code=%d err=%q", code, errOut)
	}
}

func TestRenameAndInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir)
	cfg := config.Defaults()
	if code, _, errOut := runCLI(t, cfg, "rename", path, "2", "Sunday"); code != 0 {
		t.Fatalf("rename: %d %s", code, errOut)
	}
	code, out, errOut := runCLI(t, cfg, "info", path)
	if code != 0 {
		t.Fatalf("info: %d %s", code, errOut)
	}
	if !strings.Contains(out, "Sunday") || !strings.Contains(out, "1 presets") {
		t.Fatalf("info output:\n%s", out)
	}
	code, out, _ = runCLI(t, cfg, "info", path, "--tree")
	if code != 0 || !strings.Contains(out, "01B big solo") || !strings.Contains(out, "*SNAPSHOT 1") {
		t.Fatalf("tree output:\n%s", out)
	}
	if code, _, _ := runCLI(t, cfg, "rename", path, "2", strings.Repeat("x", 17)); code != 1 {
		t.Fatalf("long name accepted")
	}
	if code, _, _ := runCLI(t, cfg, "info", filepath.Join(dir, "nope.hlb")); code != 1 {
		t.Fatalf("missing file accepted")
	}
}

func TestExportPresetsAndInfo(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir)
	out := filepath.Join(dir, "presets")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := config.Defaults()
	code, stdout, errOut := runCLI(t, cfg, "export-presets", path, "0", out)
	if code != 0 {
		t.Fatalf("export-presets: %d %s", code, errOut)
	}
	want := filepath.Join(out, "big solo.hlx")
	if strings.TrimSpace(stdout) != want {
		t.Fatalf("exported %q want %q", stdout, want)
	}
	code, stdout, _ = runCLI(t, cfg, "info", want)
	if code != 0 || !strings.Contains(stdout, "Preset: big solo") || !strings.Contains(stdout, "*0") {
		t.Fatalf("preset info: %d\n%s", code, stdout)
	}
}

func TestStandardizeAndDiff(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir)
	orig := filepath.Join(dir, "orig.hlb")
	data, _ := os.ReadFile(path)
	if err := os.WriteFile(orig, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if code, out, _ := runCLI(t, config.Defaults(), "diff", orig, path); code != 0 || !strings.Contains(out, "No differences") {
		t.Fatalf("diff identical: %d %q", code, out)
	}
	cfg := config.Defaults()
	cfg.Standards = standards.Rules{"preset": {Casing: standards.CasingUpper}}
	if code, _, errOut := runCLI(t, cfg, "standardize", path); code != 0 {
		t.Fatalf("standardize: %d %s", code, errOut)
	}
	code, out, _ := runCLI(t, cfg, "diff", orig, path)
	if code != 0 || !strings.Contains(out, `"name": "BIG SOLO"`) || !strings.Contains(out, "\n-") {
		t.Fatalf("diff after standardize:\n%s", out)
	}
}

func TestIndexAndSearch(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir)
	cfg := config.Defaults()
	if code, _, errOut := runCLI(t, cfg, "index", path); code != 1 || !strings.Contains(errOut, "no catalog configured") {
		t.Fatalf("index without catalog: %d %s", code, errOut)
	}
	cfg.Catalog.Path = filepath.Join(dir, "catalog.sqlite")
	if code, _, errOut := runCLI(t, cfg, "index", path); code != 0 {
		t.Fatalf("index: %d %s", code, errOut)
	}
	code, out, _ := runCLI(t, cfg, "search", "solo")
	if code != 0 || !strings.Contains(out, "live\tpreset\tsetlist 0 01B\tbig solo") {
		t.Fatalf("search output:\n%s", out)
	}
}

func TestCuesheetAndActivate(t *testing.T) {
	dir := t.TempDir()
	path := writeBundle(t, dir)
	cfg := config.Defaults()
	pdf := filepath.Join(dir, "set.pdf")
	if code, _, errOut := runCLI(t, cfg, "cuesheet", path, "0", pdf, "--snapshots"); code != 0 {
		t.Fatalf("cuesheet: %d %s", code, errOut)
	}
	if st, err := os.Stat(pdf); err != nil || st.Size() == 0 {
		t.Fatalf("cue sheet not written: %v", err)
	}
	cfg.MIDI.Driver = "none"
	if code, _, errOut := runCLI(t, cfg, "activate", path, "1", "3", "2"); code != 0 {
		t.Fatalf("activate: %d %s", code, errOut)
	}
	if code, _, _ := runCLI(t, cfg, "activate", path, "9"); code != 1 {
		t.Fatalf("out of range setlist accepted")
	}
}
