package helix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"helixapi/internal/config"
	"helixapi/internal/container"
	"helixapi/internal/midi"
	"helixapi/internal/resolve"
	"helixapi/internal/standards"
)

type eventLog struct{ events []midi.Event }

func (l *eventLog) Notify(e midi.Event) error {
	l.events = append(l.events, e)
	return nil
}

func newTestBundle(t *testing.T) (*Bundle, *eventLog) {
	t.Helper()
	log := &eventLog{}
	b, err := NewBundle(Options{Sink: log})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	return b, log
}

func setlistAt(t *testing.T, b *Bundle, i int) *Setlist {
	t.Helper()
	s, err := b.Setlists().At(i)
	if err != nil {
		t.Fatalf("setlist %d: %v", i, err)
	}
	return s
}

func presetAt(t *testing.T, b *Bundle, sl, i int) *Preset {
	t.Helper()
	p, err := setlistAt(t, b, sl).Presets().At(i)
	if err != nil {
		t.Fatalf("preset %d/%d: %v", sl, i, err)
	}
	return p
}

func TestNewBundleFromTemplate(t *testing.T) {
	b, log := newTestBundle(t)
	if got := b.Setlists().Len(); got != config.DefaultMaxSetlists {
		t.Fatalf("setlists = %d want %d", got, config.DefaultMaxSetlists)
	}
	sl := setlistAt(t, b, 0)
	if sl.Presets().Len() != config.DefaultMaxPresets {
		t.Fatalf("presets = %d", sl.Presets().Len())
	}
	p := presetAt(t, b, 0, 0)
	if p.Snapshots().Len() != config.DefaultMaxSnapshots {
		t.Fatalf("snapshots = %d", p.Snapshots().Len())
	}
	if name, _ := setlistAt(t, b, 2).Name(); name != "SETLIST 3" {
		t.Fatalf("setlist 2 name = %q", name)
	}
	if b.Name() != "New Bundle" {
		t.Fatalf("bundle name = %q", b.Name())
	}
	want := []midi.Event{{Kind: midi.EventSetlist, Index: 0}, {Kind: midi.EventPreset, Index: 0}}
	if !reflect.DeepEqual(log.events, want) {
		t.Fatalf("initial events = %v", log.events)
	}
	if !sl.Active() || !p.Active() {
		t.Fatalf("index 0 should be active after construction")
	}
}

func TestRenameExportReload(t *testing.T) {
	b, _ := newTestBundle(t)
	if err := setlistAt(t, b, 0).SetName("A"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out.hlb")
	if err := b.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if err := container.Verify(raw, container.KindBundle); err != nil {
		t.Fatalf("exported bundle fails verification: %v", err)
	}

	again, err := OpenBundle(path, Options{})
	if err != nil {
		t.Fatalf("OpenBundle: %v", err)
	}
	if name, _ := setlistAt(t, again, 0).Name(); name != "A" {
		t.Fatalf("reloaded setlist 0 name = %q", name)
	}
	if again.Name() != b.Name() {
		t.Fatalf("bundle name changed: %q vs %q", again.Name(), b.Name())
	}
}

func TestNameLengthLimit(t *testing.T) {
	b, _ := newTestBundle(t)
	ok, long := strings.Repeat("x", 16), strings.Repeat("x", 17)
	snap, _ := presetAt(t, b, 0, 0).Snapshots().At(0)
	setters := map[string]func(string) error{
		"bundle":  b.SetName,
		"setlist": setlistAt(t, b, 0).SetName,
		"preset":  presetAt(t, b, 0, 0).SetName,
		"author":  presetAt(t, b, 0, 0).SetAuthor,
		"song":    presetAt(t, b, 0, 0).SetSong,
		"snap":    snap.SetName,
	}
	for name, set := range setters {
		if err := set(ok); err != nil {
			t.Fatalf("%s: 16 characters rejected: %v", name, err)
		}
		var ve *ValidationError
		if err := set(long); !errors.As(err, &ve) {
			t.Fatalf("%s: expected ValidationError for 17 characters, got %v", name, err)
		}
	}
	// characters, not bytes
	if err := presetAt(t, b, 0, 1).SetName(strings.Repeat("ü", 16)); err != nil {
		t.Fatalf("16 runes rejected: %v", err)
	}
}

func TestActiveInvariant(t *testing.T) {
	b, _ := newTestBundle(t)
	check := func(what string, n int, active func(int) bool) {
		t.Helper()
		count := 0
		for i := range n {
			if active(i) {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("%s: %d active members", what, count)
		}
	}
	sls := b.Setlists()
	for k := range sls.Len() {
		if err := sls.SetActiveIndex(k); err != nil {
			t.Fatalf("SetActiveIndex(%d): %v", k, err)
		}
		check("setlists", sls.Len(), func(i int) bool { s, _ := sls.At(i); return s.Active() })
		if s, _ := sls.At(k); !s.Active() || sls.ActiveItem() != s {
			t.Fatalf("setlist %d not active", k)
		}
	}
	presets := setlistAt(t, b, 1).Presets()
	for _, k := range []int{0, 5, 127} {
		if err := presets.SetActiveIndex(k); err != nil {
			t.Fatalf("presets SetActiveIndex(%d): %v", k, err)
		}
		check("presets", presets.Len(), func(i int) bool { p, _ := presets.At(i); return p.Active() })
		if presets.ActiveIndex() != k {
			t.Fatalf("presets active = %d", presets.ActiveIndex())
		}
	}
	snaps := presetAt(t, b, 1, 5).Snapshots()
	for k := range snaps.Len() {
		if err := snaps.SetActiveIndex(k); err != nil {
			t.Fatalf("snapshots SetActiveIndex(%d): %v", k, err)
		}
		check("snapshots", snaps.Len(), func(i int) bool { s, _ := snaps.At(i); return s.Active() })
	}
}

func TestActivationNotifiesSink(t *testing.T) {
	b, log := newTestBundle(t)
	log.events = nil
	sl := setlistAt(t, b, 2)
	if err := sl.Activate(); err != nil {
		t.Fatalf("Activate setlist: %v", err)
	}
	p, _ := sl.Presets().At(7)
	if err := p.Activate(); err != nil {
		t.Fatalf("Activate preset: %v", err)
	}
	s, _ := p.Snapshots().At(4)
	if err := s.Activate(); err != nil {
		t.Fatalf("Activate snapshot: %v", err)
	}
	// already active: still notified
	if err := s.Activate(); err != nil {
		t.Fatalf("Activate snapshot again: %v", err)
	}
	want := []midi.Event{
		{Kind: midi.EventSetlist, Index: 2},
		{Kind: midi.EventPreset, Index: 7},
		{Kind: midi.EventSnapshot, Index: 4},
		{Kind: midi.EventSnapshot, Index: 4},
	}
	if !reflect.DeepEqual(log.events, want) {
		t.Fatalf("events = %v", log.events)
	}
	if p.ActiveSnapshotIndex() != 4 {
		t.Fatalf("persisted snapshot index = %d", p.ActiveSnapshotIndex())
	}
}

func TestSetActiveItemIgnoresNonMembers(t *testing.T) {
	b, log := newTestBundle(t)
	other, _ := newTestBundle(t)
	log.events = nil
	if err := b.Setlists().SetActiveItem(setlistAt(t, other, 3)); err != nil {
		t.Fatalf("SetActiveItem: %v", err)
	}
	if b.Setlists().ActiveIndex() != 0 || len(log.events) != 0 {
		t.Fatalf("non-member changed state: active=%d events=%v", b.Setlists().ActiveIndex(), log.events)
	}
	if err := b.Setlists().SetActiveItem(setlistAt(t, b, 3)); err != nil {
		t.Fatalf("SetActiveItem: %v", err)
	}
	if b.Setlists().ActiveIndex() != 3 {
		t.Fatalf("member not activated")
	}
}

func TestSinkErrorPropagates(t *testing.T) {
	boom := &midi.TransportError{Port: "Helix", Op: "send", Err: errors.New("unplugged")}
	fail := false
	sink := midi.SinkFunc(func(midi.Event) error {
		if fail {
			return boom
		}
		return nil
	})
	b, err := NewBundle(Options{Sink: sink})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	fail = true
	var te *midi.TransportError
	if err := b.Setlists().SetActiveIndex(1); !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestSnapshotIndexSurvivesPresetExport(t *testing.T) {
	b, _ := newTestBundle(t)
	p := presetAt(t, b, 0, 0)
	if err := p.SetActiveSnapshotIndex(3); err != nil {
		t.Fatalf("SetActiveSnapshotIndex: %v", err)
	}
	path := filepath.Join(t.TempDir(), "p.hlx")
	if err := p.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := p.Import(""); err != nil {
		t.Fatalf("Import template: %v", err)
	}
	if got := p.ActiveSnapshotIndex(); got != 0 {
		t.Fatalf("template snapshot index = %d", got)
	}
	if err := p.Import(path); err != nil {
		t.Fatalf("Import export: %v", err)
	}
	if got := p.ActiveSnapshotIndex(); got != 3 {
		t.Fatalf("reloaded snapshot index = %d", got)
	}
	s, _ := p.Snapshots().At(3)
	if !s.Active() {
		t.Fatalf("snapshot 3 should be active after reload")
	}
}

func TestClonePresetIsIndependent(t *testing.T) {
	b, _ := newTestBundle(t)
	presets := setlistAt(t, b, 0).Presets()
	p0, p1 := presetAt(t, b, 0, 0), presetAt(t, b, 0, 1)
	if err := p0.SetName("Crunch"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if err := presets.Clone(0, 1); err != nil {
		t.Fatalf("Clone: %v", err)
	}
	n0, _ := p0.Name()
	n1, _ := p1.Name()
	if n0 != n1 {
		t.Fatalf("clone name %q != %q", n1, n0)
	}
	if err := p0.SetName("Changed"); err != nil {
		t.Fatalf("SetName: %v", err)
	}
	if n1, _ := p1.Name(); n1 != "Crunch" {
		t.Fatalf("clone follows source: %q", n1)
	}
	var ie *IndexError
	if err := presets.Clone(0, 128); !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
}

func names(t *testing.T, b *Bundle) []string {
	t.Helper()
	var out []string
	for _, s := range b.Setlists().All() {
		n, err := s.Name()
		if err != nil {
			t.Fatalf("Name: %v", err)
		}
		out = append(out, n)
	}
	return out
}

func TestSwapAndMoveRelocateData(t *testing.T) {
	b, _ := newTestBundle(t)
	for i, n := range []string{"A", "B", "C", "D"} {
		_ = setlistAt(t, b, i).SetName(n)
	}
	sls := b.Setlists()
	if err := sls.Swap(0, 1); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if got := names(t, b)[:4]; !reflect.DeepEqual(got, []string{"B", "A", "C", "D"}) {
		t.Fatalf("after swap: %v", got)
	}
	if err := sls.Move(0, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := names(t, b)[:4]; !reflect.DeepEqual(got, []string{"A", "C", "B", "D"}) {
		t.Fatalf("after move forward: %v", got)
	}
	if err := sls.Move(3, 0); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got := names(t, b)[:4]; !reflect.DeepEqual(got, []string{"D", "A", "C", "B"}) {
		t.Fatalf("after move back: %v", got)
	}
	var ie *IndexError
	if err := sls.Swap(-1, 0); !errors.As(err, &ie) {
		t.Fatalf("expected IndexError, got %v", err)
	}
	if _, err := sls.At(8); !errors.As(err, &ie) || ie.Len != 8 {
		t.Fatalf("expected IndexError from At, got %v", err)
	}
}

func TestPresetMoveKeepsEmptySlotsEmpty(t *testing.T) {
	b, _ := newTestBundle(t)
	presets := setlistAt(t, b, 0).Presets()
	p0 := presetAt(t, b, 0, 0)
	_ = p0.SetName("First")
	if err := presets.Move(0, 2); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if presetAt(t, b, 0, 0).Initialized() || presetAt(t, b, 0, 1).Initialized() {
		t.Fatalf("empty slots were filled by Move")
	}
	if n, _ := presetAt(t, b, 0, 2).Name(); n != "First" {
		t.Fatalf("moved preset name = %q", n)
	}
}

func TestLazyFillAndInitialized(t *testing.T) {
	b, _ := newTestBundle(t)
	p := presetAt(t, b, 3, 40)
	if p.Initialized() {
		t.Fatalf("slot should start empty")
	}
	n1, err := p.Name()
	if err != nil || n1 != "New Preset" {
		t.Fatalf("Name = %q, %v", n1, err)
	}
	_ = p.SetSong("Song")
	n2, _ := p.Name()
	song, _ := p.Song()
	if n1 != n2 || song != "Song" || !p.Initialized() {
		t.Fatalf("second access reset data: name=%q song=%q", n2, song)
	}
}

func TestFieldValidation(t *testing.T) {
	b, _ := newTestBundle(t)
	p := presetAt(t, b, 0, 0)
	s, _ := p.Snapshots().At(1)
	var ve *ValidationError
	if err := s.SetLEDColor(LEDColor(12)); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for LED 12, got %v", err)
	}
	if err := s.SetLEDColor(LEDTurquoise); err != nil {
		t.Fatalf("SetLEDColor: %v", err)
	}
	if c, _ := s.LEDColor(); c != LEDTurquoise || c.String() != "turquoise" {
		t.Fatalf("LEDColor = %v", c)
	}
	if err := p.SetTempo(20); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for tempo, got %v", err)
	}
	if err := p.SetTempo(98.5); err != nil {
		t.Fatalf("SetTempo: %v", err)
	}
	if bpm, _ := p.Tempo(); bpm != 98.5 {
		t.Fatalf("Tempo = %v", bpm)
	}
	if c, err := ParseLEDColor("Dark Orange"); err != nil || c != LEDDarkOrange {
		t.Fatalf("ParseLEDColor = %v, %v", c, err)
	}
	if _, err := ParseLEDColor("magenta"); err == nil {
		t.Fatalf("expected error for unknown color")
	}
}

func TestSetlistExportImportAndReset(t *testing.T) {
	b, _ := newTestBundle(t)
	sl := setlistAt(t, b, 1)
	_ = sl.SetName("Gig")
	_ = presetAt(t, b, 1, 2).SetName("Clean")
	path := filepath.Join(t.TempDir(), "gig.hls")
	if err := sl.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if err := sl.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n, _ := sl.Name(); n != "SETLIST 2" {
		t.Fatalf("reset name = %q", n)
	}
	if presetAt(t, b, 1, 2).Initialized() {
		t.Fatalf("reset left preset data behind")
	}
	target := setlistAt(t, b, 5)
	if err := target.Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n, _ := target.Name(); n != "Gig" {
		t.Fatalf("imported name = %q", n)
	}
	if n, _ := presetAt(t, b, 5, 2).Name(); n != "Clean" {
		t.Fatalf("imported preset name = %q", n)
	}
	var pe *container.PathError
	if err := target.Import(filepath.Join(t.TempDir(), "x.hlb")); !errors.As(err, &pe) {
		t.Fatalf("expected PathError, got %v", err)
	}
}

func TestOpenStandaloneFiles(t *testing.T) {
	b, _ := newTestBundle(t)
	_ = setlistAt(t, b, 0).SetName("Solo Set")
	_ = presetAt(t, b, 0, 0).SetName("Solo Tone")
	dir := t.TempDir()
	if err := setlistAt(t, b, 0).Export(filepath.Join(dir, "s.hls")); err != nil {
		t.Fatalf("export setlist: %v", err)
	}
	if err := presetAt(t, b, 0, 0).Export(filepath.Join(dir, "p.hlx")); err != nil {
		t.Fatalf("export preset: %v", err)
	}
	sl, err := OpenSetlist(filepath.Join(dir, "s.hls"), Options{})
	if err != nil {
		t.Fatalf("OpenSetlist: %v", err)
	}
	if n, _ := sl.Name(); n != "Solo Set" {
		t.Fatalf("setlist name = %q", n)
	}
	p, err := OpenPreset(filepath.Join(dir, "p.hlx"), Options{})
	if err != nil {
		t.Fatalf("OpenPreset: %v", err)
	}
	if n, _ := p.Name(); n != "Solo Tone" {
		t.Fatalf("preset name = %q", n)
	}
}

func TestBulkExportImport(t *testing.T) {
	b, _ := newTestBundle(t)
	sl := setlistAt(t, b, 0)
	_ = presetAt(t, b, 0, 0).SetName("Lead/Solo")
	_ = presetAt(t, b, 0, 3).SetName("Lead/Solo")
	dir := t.TempDir()
	paths, err := sl.Presets().ExportFiles(dir, ExportOptions{SkipEmpty: true})
	if err != nil {
		t.Fatalf("ExportFiles: %v", err)
	}
	want := []string{filepath.Join(dir, "Lead_Solo.hlx"), filepath.Join(dir, "Lead_Solo (1).hlx")}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v", paths)
	}
	if err := setlistAt(t, b, 4).Presets().ImportFiles(paths); err != nil {
		t.Fatalf("ImportFiles: %v", err)
	}
	if n, _ := presetAt(t, b, 4, 1).Name(); n != "Lead/Solo" {
		t.Fatalf("imported name = %q", n)
	}

	gen, err := b.Setlists().ExportFiles(t.TempDir(), ExportOptions{Generic: true})
	if err != nil {
		t.Fatalf("setlists ExportFiles: %v", err)
	}
	if len(gen) != 8 || filepath.Base(gen[7]) != "setlist_7.hls" {
		t.Fatalf("generic names = %v", gen)
	}
	var ce *CapacityError
	if err := b.Setlists().ImportFiles(append(gen, gen[0])); !errors.As(err, &ce) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if err := b.Setlists().ImportFiles(gen[:2]); err != nil {
		t.Fatalf("ImportFiles: %v", err)
	}
}

func TestStandardize(t *testing.T) {
	std, err := standards.New(standards.Rules{
		"setlist":  {Casing: standards.CasingUpper},
		"preset":   {Casing: standards.CasingTitle, Replacements: standards.Replacements{{With: "Lead", Patterns: []string{"solo"}}}},
		"snapshot": {Casing: standards.CasingLower},
	})
	if err != nil {
		t.Fatalf("standards.New: %v", err)
	}
	b, err := NewBundle(Options{Standardizer: std})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	_ = setlistAt(t, b, 0).SetName("live show")
	p := presetAt(t, b, 0, 9)
	_ = p.SetName("big solo")
	if err := b.Standardize(); err != nil {
		t.Fatalf("Standardize: %v", err)
	}
	if n, _ := setlistAt(t, b, 0).Name(); n != "LIVE SHOW" {
		t.Fatalf("setlist = %q", n)
	}
	if n, _ := p.Name(); n != "Big Lead" {
		t.Fatalf("preset = %q", n)
	}
	s, _ := p.Snapshots().At(0)
	if n, _ := s.Name(); n != "snapshot 1" {
		t.Fatalf("snapshot = %q", n)
	}
	if presetAt(t, b, 0, 10).Initialized() {
		t.Fatalf("Standardize filled an empty preset")
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	b, _ := newTestBundle(t)
	path := filepath.Join(t.TempDir(), "bad.hlx")
	if err := os.WriteFile(path, []byte(`{"data":{"meta":{}}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := presetAt(t, b, 0, 0).Import(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestHelixSendsMIDI(t *testing.T) {
	cfg := config.Defaults()
	cfg.MIDI.Targets = []string{"Helix", "Gone"}
	cfg.Author.Name = "Ana"
	rec := midi.NewRecorder("Helix")
	h, err := New(cfg, rec, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	want := []string{"Helix: CC ch0 32=0", "Helix: CC ch0 32=0", "Helix: PC ch0 0"}
	if got := rec.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("startup messages = %v", got)
	}
	rec.Reset()
	sl, _ := h.Setlists().At(1)
	_ = sl.Activate()
	p, _ := sl.Presets().At(9)
	_ = p.Activate()
	s, _ := p.Snapshots().At(2)
	_ = s.Activate()
	want = []string{"Helix: CC ch0 32=1", "Helix: CC ch0 32=1", "Helix: PC ch0 9", "Helix: CC ch0 69=2"}
	if got := rec.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("activation messages = %v", got)
	}
	if a, _ := p.Author(); a != "Ana" {
		t.Fatalf("default author = %q", a)
	}
	if got := h.Config().MIDI.Targets; !reflect.DeepEqual(got, []string{"Helix", "Gone"}) {
		t.Fatalf("config targets = %v", got)
	}
	if got := h.Commands().Targets().Names(); !reflect.DeepEqual(got, []string{"Helix"}) {
		t.Fatalf("matched targets = %v", got)
	}
}

func storedSnapshot(t *testing.T, p *Preset) int {
	t.Helper()
	v, err := p.arena.peek(resolve.KindPreset, "current_snapshot", p.coords())
	if err != nil {
		t.Fatalf("peek current_snapshot: %v", err)
	}
	n, err := asInt(v)
	if err != nil {
		t.Fatalf("current_snapshot %v: %v", v, err)
	}
	return n
}

func TestImportResetsOutOfRangeSnapshot(t *testing.T) {
	dir := t.TempDir()
	src, err := OpenPreset("", Options{})
	if err != nil {
		t.Fatalf("OpenPreset: %v", err)
	}
	if err := src.SetActiveSnapshotIndex(6); err != nil {
		t.Fatalf("SetActiveSnapshotIndex: %v", err)
	}
	path := filepath.Join(dir, "six.hlx")
	if err := src.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	p, err := OpenPreset(path, Options{MaxSnapshots: 4})
	if err != nil {
		t.Fatalf("OpenPreset small: %v", err)
	}
	if got := p.ActiveSnapshotIndex(); got != 0 {
		t.Fatalf("ActiveSnapshotIndex = %d", got)
	}
	if got := storedSnapshot(t, p); got != 0 {
		t.Fatalf("stored index = %d, want 0", got)
	}
	again := filepath.Join(dir, "again.hlx")
	if err := p.Export(again); err != nil {
		t.Fatalf("Export: %v", err)
	}
	doc, _, err := container.ReadFile(again, container.KindPreset)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if v := doc.Object("data").Object("tone").Object("global").Get("@current_snapshot"); fmt.Sprint(v) != "0" {
		t.Fatalf("re-exported index = %v", v)
	}
}

func TestSetlistImportResetsOutOfRangeSnapshot(t *testing.T) {
	b, _ := newTestBundle(t)
	if err := presetAt(t, b, 0, 5).SetActiveSnapshotIndex(7); err != nil {
		t.Fatalf("SetActiveSnapshotIndex: %v", err)
	}
	path := filepath.Join(t.TempDir(), "set.hls")
	if err := setlistAt(t, b, 0).Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	small, err := NewBundle(Options{MaxSnapshots: 4})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	if err := setlistAt(t, small, 2).Import(path); err != nil {
		t.Fatalf("Import: %v", err)
	}
	p := presetAt(t, small, 2, 5)
	if got := storedSnapshot(t, p); got != 0 {
		t.Fatalf("stored index = %d, want 0", got)
	}
	if presetAt(t, small, 2, 6).Initialized() {
		t.Fatalf("import filled an empty preset slot")
	}
}

func TestImportRejectsSnapshotBeyondDevice(t *testing.T) {
	doc, _, err := container.Template(container.KindPreset)
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	doc.Object("data").Object("tone").Object("global").Set("@current_snapshot", 9)
	path := filepath.Join(t.TempDir(), "nine.hlx")
	if _, err := container.WriteFile(path, doc, nil, container.KindPreset, "nine"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	b, _ := newTestBundle(t)
	if err := presetAt(t, b, 0, 0).Import(path); err == nil {
		t.Fatalf("expected index 9 to be rejected")
	}
}

func TestReadingActiveSnapshotDoesNotFill(t *testing.T) {
	b, _ := newTestBundle(t)
	p := presetAt(t, b, 1, 20)
	if got := p.ActiveSnapshotIndex(); got != 0 {
		t.Fatalf("ActiveSnapshotIndex = %d", got)
	}
	s, _ := p.Snapshots().At(0)
	if !s.Active() {
		t.Fatalf("snapshot 0 should read as active")
	}
	if p.Initialized() {
		t.Fatalf("reading the active snapshot filled the slot")
	}
}

func TestStandardizeIsAllOrNothing(t *testing.T) {
	std, err := standards.New(standards.Rules{
		"setlist": {Casing: standards.CasingUpper},
		"preset":  {Replacements: standards.Replacements{{With: "Distortion", Patterns: []string{"dist"}}}},
	})
	if err != nil {
		t.Fatalf("standards.New: %v", err)
	}
	b, err := NewBundle(Options{Standardizer: std})
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	_ = setlistAt(t, b, 0).SetName("opener")
	_ = presetAt(t, b, 0, 3).SetName("dist dist")

	var ve *ValidationError
	if err := b.Standardize(); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if n, _ := setlistAt(t, b, 0).Name(); n != "opener" {
		t.Fatalf("setlist renamed before the batch was checked: %q", n)
	}
	if n, _ := presetAt(t, b, 0, 3).Name(); n != "dist dist" {
		t.Fatalf("preset = %q", n)
	}
}

func TestBundleExportKeepsPayloadOrder(t *testing.T) {
	b, _ := newTestBundle(t)
	want := b.Document().Keys()
	first := presetAt(t, b, 0, 0)
	_ = first.SetName("Ordered")
	doc, _ := first.Document()
	metaKeys := doc.Object("data").Object("meta").Keys()

	path := filepath.Join(t.TempDir(), "o.hlb")
	if err := b.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	got, _, err := container.ReadFile(path, container.KindBundle)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !reflect.DeepEqual(got.Keys(), want) {
		t.Fatalf("payload keys = %v want %v", got.Keys(), want)
	}
	p := got.Get("setlists").([]any)[0].(*container.Object).Get("presets").([]any)[0].(*container.Object)
	if keys := p.Object("data").Object("meta").Keys(); !reflect.DeepEqual(keys, metaKeys) {
		t.Fatalf("preset meta keys = %v want %v", keys, metaKeys)
	}
}
