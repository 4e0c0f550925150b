/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package midi

import (
	"errors"
	"log/slog"
	"slices"

	gm "gitlab.com/gomidi/midi/v2"
)

// ErrUnavailable is returned when a target names a port the driver does not offer.
var ErrUnavailable = errors.New("midi: port not available")

// Targets is the ordered set of output ports commands are sent to. Ports are
// opened on first use and stay open until Close.
type Targets struct {
	driver Driver
	logger *slog.Logger
	names  []string
	open   map[string]Port

	// OnChange, when set, is called with the new target list after Add or Remove.
	OnChange func(names []string)
}

// NewTargets keeps the wanted names that match an available port. Unmatched
// names are logged and dropped.
func NewTargets(d Driver, wanted []string, logger *slog.Logger) *Targets {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Targets{driver: d, logger: logger, open: map[string]Port{}}
	if d == nil {
		return t
	}
	available, err := d.Ports()
	if err != nil {
		logger.Warn("cannot list MIDI ports", slog.Any("err", err))
		return t
	}
	for _, name := range wanted {
		if !slices.Contains(available, name) {
			logger.Warn("MIDI target not matched to any available port", slog.String("target", name))
			continue
		}
		if !slices.Contains(t.names, name) {
			t.names = append(t.names, name)
		}
	}
	logger.Debug("MIDI targets loaded", slog.Any("targets", t.names))
	return t
}

// Available lists the ports the driver offers.
func (t *Targets) Available() ([]string, error) {
	if t == nil || t.driver == nil {
		return nil, nil
	}
	return t.driver.Ports()
}

// Names returns the current targets in order.
func (t *Targets) Names() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

func (t *Targets) Len() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

func (t *Targets) Contains(name string) bool { return t != nil && slices.Contains(t.names, name) }

// Add appends an available port to the targets. Adding a present target is a no-op.
func (t *Targets) Add(name string) error {
	available, err := t.Available()
	if err != nil {
		return err
	}
	if !slices.Contains(available, name) {
		t.logger.Warn("cannot add MIDI target: not available", slog.String("target", name))
		return &TransportError{Port: name, Op: "open", Err: ErrUnavailable}
	}
	if slices.Contains(t.names, name) {
		return nil
	}
	t.names = append(t.names, name)
	t.logger.Debug("added MIDI target", slog.String("target", name))
	if t.OnChange != nil {
		t.OnChange(t.Names())
	}
	return nil
}

// Remove drops a target and closes its port if open.
func (t *Targets) Remove(name string) error {
	i := slices.Index(t.names, name)
	if i < 0 {
		return nil
	}
	t.names = slices.Delete(t.names, i, i+1)
	var err error
	if p, ok := t.open[name]; ok {
		delete(t.open, name)
		err = p.Close()
	}
	t.logger.Debug("removed MIDI target", slog.String("target", name))
	if t.OnChange != nil {
		t.OnChange(t.Names())
	}
	return err
}

// Send writes msgs, in order, to every target. The first failure stops the
// send and is returned as a *TransportError.
func (t *Targets) Send(msgs ...gm.Message) error {
	if t == nil {
		return nil
	}
	for _, name := range t.names {
		p, err := t.port(name)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			if err := p.Send(m); err != nil {
				return asTransport(name, "send", err)
			}
			t.logger.Debug("sent MIDI message", slog.String("target", name), slog.String("msg", describe(m)))
		}
	}
	return nil
}

func (t *Targets) port(name string) (Port, error) {
	if p, ok := t.open[name]; ok {
		return p, nil
	}
	p, err := t.driver.Open(name)
	if err != nil {
		return nil, asTransport(name, "open", err)
	}
	t.open[name] = p
	return p, nil
}

// Close closes every open port.
func (t *Targets) Close() error {
	if t == nil {
		return nil
	}
	var errs []error
	for name, p := range t.open {
		if err := p.Close(); err != nil {
			errs = append(errs, asTransport(name, "close", err))
		}
		delete(t.open, name)
	}
	return errors.Join(errs...)
}

func asTransport(port, op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Port: port, Op: op, Err: err}
}
