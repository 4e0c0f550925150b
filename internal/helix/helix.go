/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import (
	"fmt"
	"strings"

	"helixapi/internal/config"
	applog "helixapi/internal/log"
	"helixapi/internal/midi"
)

// Helix ties a loaded bundle to the settings and to the MIDI targets that
// mirror its active setlist, preset and snapshot.
type Helix struct {
	cfg      config.AppConfig
	commands *midi.Commands
	bundle   *Bundle
}

// DriverFromConfig returns the MIDI driver named in the settings, or nil
// when MIDI output is disabled.
func DriverFromConfig(cfg config.AppConfig) (midi.Driver, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.MIDI.Driver)) {
	case "", "none":
		return nil, nil
	case "raw":
		return midi.RawDriver{Dir: cfg.MIDI.Dir}, nil
	}
	return nil, fmt.Errorf("helix: unknown midi driver %q", cfg.MIDI.Driver)
}

// New opens the bundle at path (the template when empty) with commands sent
// through driver to the configured targets. driver may be nil.
func New(cfg config.AppConfig, driver midi.Driver, path string) (*Helix, error) {
	logger := applog.WithComponent("midi")
	h := &Helix{cfg: cfg}
	targets := midi.NewTargets(driver, cfg.MIDI.Targets, logger)
	targets.OnChange = func(names []string) { h.cfg.MIDI.Targets = names }
	cmds, err := midi.NewCommands(targets, cfg.MIDI.Channel, logger)
	if err != nil {
		return nil, err
	}
	h.commands = cmds
	opts, err := OptionsFromConfig(cfg, cmds)
	if err != nil {
		return nil, err
	}
	if h.bundle, err = OpenBundle(path, opts); err != nil {
		_ = targets.Close()
		return nil, err
	}
	return h, nil
}

// Bundle returns the loaded bundle. It changes only through Bundle().Import.
func (h *Helix) Bundle() *Bundle { return h.bundle }

// Setlists is shorthand for Bundle().Setlists().
func (h *Helix) Setlists() *Setlists { return h.bundle.Setlists() }

// Commands gives direct access to the device commands.
func (h *Helix) Commands() *midi.Commands { return h.commands }

// Config returns the settings, including target changes made since New.
func (h *Helix) Config() config.AppConfig { return h.cfg }

// Close releases open MIDI ports.
func (h *Helix) Close() error { return h.commands.Targets().Close() }
