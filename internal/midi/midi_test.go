package midi

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func newCommands(t *testing.T, ports []string, wanted ...string) (*Commands, *Recorder) {
	t.Helper()
	rec := NewRecorder(ports...)
	c, err := NewCommands(NewTargets(rec, wanted, nil), 0, nil)
	if err != nil {
		t.Fatalf("NewCommands: %v", err)
	}
	return c, rec
}

func TestTargetsMatchAvailablePorts(t *testing.T) {
	rec := NewRecorder("Helix", "IAC Bus 1")
	tg := NewTargets(rec, []string{"Helix", "Missing", "Helix"}, nil)
	if got := tg.Names(); !reflect.DeepEqual(got, []string{"Helix"}) {
		t.Fatalf("Names = %v", got)
	}

	var saved []string
	tg.OnChange = func(n []string) { saved = n }
	if err := tg.Add("IAC Bus 1"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !reflect.DeepEqual(saved, []string{"Helix", "IAC Bus 1"}) {
		t.Fatalf("OnChange got %v", saved)
	}
	var te *TransportError
	if err := tg.Add("Nope"); !errors.As(err, &te) || !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if err := tg.Remove("Helix"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if tg.Contains("Helix") || tg.Len() != 1 {
		t.Fatalf("Remove did not drop target: %v", tg.Names())
	}
}

func TestPresetChangeSendsBankThenProgram(t *testing.T) {
	c, rec := newCommands(t, []string{"A", "B"}, "A", "B")
	if err := c.Notify(Event{Kind: EventSetlist, Index: 2}); err != nil {
		t.Fatalf("setlist: %v", err)
	}
	rec.Reset()
	if err := c.Notify(Event{Kind: EventPreset, Index: 5}); err != nil {
		t.Fatalf("preset: %v", err)
	}
	want := []string{"A: CC ch0 32=2", "A: PC ch0 5", "B: CC ch0 32=2", "B: PC ch0 5"}
	if got := rec.Strings(); !reflect.DeepEqual(got, want) {
		t.Fatalf("messages = %v want %v", got, want)
	}
}

func TestCommandMessages(t *testing.T) {
	cases := []struct {
		name string
		run  func(*Commands) error
		want string
	}{
		{"snapshot", func(c *Commands) error { return c.ChangeSnapshot(3) }, "A: CC ch0 69=3"},
		{"next preset", (*Commands).NextPreset, "A: CC ch0 72=64"},
		{"previous preset", (*Commands).PreviousPreset, "A: CC ch0 72=0"},
		{"next snapshot", (*Commands).NextSnapshot, "A: CC ch0 69=8"},
		{"previous snapshot", (*Commands).PreviousSnapshot, "A: CC ch0 69=9"},
		{"toe", (*Commands).ToggleToe, "A: CC ch0 59=0"},
		{"tuner", (*Commands).ToggleTuner, "A: CC ch0 68=0"},
		{"event next", func(c *Commands) error { return c.Notify(Event{Kind: EventNext, Index: NoIndex}) }, "A: CC ch0 72=64"},
	}
	for _, tc := range cases {
		c, rec := newCommands(t, []string{"A"}, "A")
		if err := tc.run(c); err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := rec.Strings(); len(got) != 1 || got[0] != tc.want {
			t.Fatalf("%s: got %v want %s", tc.name, got, tc.want)
		}
	}
}

func TestNoTargetsIsValid(t *testing.T) {
	c, rec := newCommands(t, nil)
	if err := c.ChangePreset(1); err != nil {
		t.Fatalf("ChangePreset without targets: %v", err)
	}
	if len(rec.Messages()) != 0 {
		t.Fatalf("no messages expected")
	}
	var nilCmd Commands
	if err := nilCmd.ToggleTuner(); err != nil {
		t.Fatalf("nil targets: %v", err)
	}
}

func TestRangeAndTransportErrors(t *testing.T) {
	c, rec := newCommands(t, []string{"A"}, "A")
	if err := c.ChangePreset(128); err == nil {
		t.Fatalf("expected range error")
	}
	boom := errors.New("unplugged")
	rec.Fail = map[string]error{"A": boom}
	err := c.ChangeSnapshot(1)
	var te *TransportError
	if !errors.As(err, &te) || te.Port != "A" || !errors.Is(err, boom) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if _, err := NewCommands(nil, 16, nil); err == nil {
		t.Fatalf("expected channel error")
	}
}

func TestRawDriverWritesBytes(t *testing.T) {
	dir := t.TempDir()
	dev := filepath.Join(dir, "midiC1D0")
	if err := os.WriteFile(dev, nil, 0o644); err != nil {
		t.Fatalf("create fake device: %v", err)
	}
	d := RawDriver{Dir: dir}
	ports, err := d.Ports()
	if err != nil || !reflect.DeepEqual(ports, []string{"midiC1D0"}) {
		t.Fatalf("Ports = %v, %v", ports, err)
	}
	c, err := NewCommands(NewTargets(d, ports, nil), 0, nil)
	if err != nil {
		t.Fatalf("NewCommands: %v", err)
	}
	if err := c.ChangeSnapshot(2); err != nil {
		t.Fatalf("ChangeSnapshot: %v", err)
	}
	if err := c.Targets().Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, _ := os.ReadFile(dev)
	if !reflect.DeepEqual(b, []byte{0xB0, 69, 2}) {
		t.Fatalf("device bytes = % x", b)
	}
}

func TestEventString(t *testing.T) {
	if s := (Event{Kind: EventSnapshot, Index: 3}).String(); s != "snapshot 3" {
		t.Fatalf("String = %q", s)
	}
	if s := (Event{Kind: EventTuner, Index: NoIndex}).String(); s != "tuner" {
		t.Fatalf("String = %q", s)
	}
}
