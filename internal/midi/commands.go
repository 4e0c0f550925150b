/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package midi

import (
	"fmt"
	"log/slog"

	gm "gitlab.com/gomidi/midi/v2"
)

// Helix MIDI implementation: controller numbers and fixed values.
const (
	ccBankSelect = 32
	ccToe        = 59
	ccTuner      = 68
	ccSnapshot   = 69
	ccPresetStep = 72

	valueNextPreset     = 64
	valuePreviousPreset = 0
	valueNextSnapshot   = 8
	valuePrevSnapshot   = 9
)

// Commands sends Helix commands to a set of targets. It implements Sink.
type Commands struct {
	targets *Targets
	channel uint8
	setlist int
	logger  *slog.Logger
}

// NewCommands sends on the given zero-based MIDI channel (0..15).
func NewCommands(t *Targets, channel int, logger *slog.Logger) (*Commands, error) {
	if channel < 0 || channel > 15 {
		return nil, fmt.Errorf("midi: channel %d out of range 0..15", channel)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Commands{targets: t, channel: uint8(channel), logger: logger}, nil
}

// Targets returns the target set commands are sent to.
func (c *Commands) Targets() *Targets { return c.targets }

// Notify translates an event into the matching command.
func (c *Commands) Notify(e Event) error {
	switch e.Kind {
	case EventSetlist:
		return c.ChangeSetlist(e.Index)
	case EventPreset:
		return c.ChangePreset(e.Index)
	case EventSnapshot:
		return c.ChangeSnapshot(e.Index)
	case EventNext:
		return c.NextPreset()
	case EventPrevious:
		return c.PreviousPreset()
	case EventToe:
		return c.ToggleToe()
	case EventTuner:
		return c.ToggleTuner()
	}
	return fmt.Errorf("midi: unknown event %v", e.Kind)
}

// ChangeSetlist selects a setlist with a bank select message. The setlist
// is remembered as the bank for later preset changes.
func (c *Commands) ChangeSetlist(i int) error {
	if err := checkValue("setlist", i); err != nil {
		return err
	}
	c.setlist = i
	c.logger.Debug("change setlist", slog.Int("setlist", i))
	return c.targets.Send(gm.ControlChange(c.channel, ccBankSelect, uint8(i)))
}

// ChangePreset selects preset i of the current setlist: bank select first,
// then program change. The device requires this order.
func (c *Commands) ChangePreset(i int) error {
	if err := checkValue("preset", i); err != nil {
		return err
	}
	c.logger.Debug("change preset", slog.Int("setlist", c.setlist), slog.Int("preset", i))
	return c.targets.Send(
		gm.ControlChange(c.channel, ccBankSelect, uint8(c.setlist)),
		gm.ProgramChange(c.channel, uint8(i)),
	)
}

func (c *Commands) ChangeSnapshot(i int) error {
	if err := checkValue("snapshot", i); err != nil {
		return err
	}
	c.logger.Debug("change snapshot", slog.Int("snapshot", i))
	return c.targets.Send(gm.ControlChange(c.channel, ccSnapshot, uint8(i)))
}

func (c *Commands) NextPreset() error { return c.cc(ccPresetStep, valueNextPreset) }

func (c *Commands) PreviousPreset() error { return c.cc(ccPresetStep, valuePreviousPreset) }

func (c *Commands) NextSnapshot() error { return c.cc(ccSnapshot, valueNextSnapshot) }

func (c *Commands) PreviousSnapshot() error { return c.cc(ccSnapshot, valuePrevSnapshot) }

func (c *Commands) ToggleToe() error { return c.cc(ccToe, 0) }

func (c *Commands) ToggleTuner() error { return c.cc(ccTuner, 0) }

func (c *Commands) cc(controller, value uint8) error {
	return c.targets.Send(gm.ControlChange(c.channel, controller, value))
}

func checkValue(what string, v int) error {
	if v < 0 || v > 127 {
		return fmt.Errorf("midi: %s %d out of range 0..127", what, v)
	}
	return nil
}

// describe renders CC and PC messages compactly ("CC ch0 69=3", "PC ch0 12").
func describe(m gm.Message) string {
	var ch, a, b uint8
	switch {
	case m.GetControlChange(&ch, &a, &b):
		return fmt.Sprintf("CC ch%d %d=%d", ch, a, b)
	case m.GetProgramChange(&ch, &a):
		return fmt.Sprintf("PC ch%d %d", ch, a)
	}
	return m.String()
}
