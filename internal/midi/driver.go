/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package midi

import (
	"os"
	"path/filepath"
	"sort"
	"sync"

	gm "gitlab.com/gomidi/midi/v2"
)

// Port is an open MIDI output.
type Port interface {
	Name() string
	Send(msg gm.Message) error
	Close() error
}

// Driver lists and opens MIDI output ports.
type Driver interface {
	Ports() ([]string, error)
	Open(name string) (Port, error)
}

// RawDriver writes to Linux raw MIDI device nodes (/dev/snd/midiC*D*).
// Port names are the device file names, e.g. "midiC1D0".
type RawDriver struct {
	// Dir defaults to /dev/snd.
	Dir string
}

func (d RawDriver) dir() string {
	if d.Dir == "" {
		return "/dev/snd"
	}
	return d.Dir
}

func (d RawDriver) Ports() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(d.dir(), "midiC*D*"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	sort.Strings(names)
	return names, nil
}

func (d RawDriver) Open(name string) (Port, error) {
	f, err := os.OpenFile(filepath.Join(d.dir(), name), os.O_WRONLY, 0)
	if err != nil {
		return nil, &TransportError{Port: name, Op: "open", Err: err}
	}
	return &rawPort{name: name, f: f}, nil
}

type rawPort struct {
	name string
	f    *os.File
}

func (p *rawPort) Name() string { return p.name }

func (p *rawPort) Send(msg gm.Message) error {
	if _, err := p.f.Write([]byte(msg)); err != nil {
		return &TransportError{Port: p.name, Op: "send", Err: err}
	}
	return nil
}

func (p *rawPort) Close() error {
	if err := p.f.Close(); err != nil {
		return &TransportError{Port: p.name, Op: "close", Err: err}
	}
	return nil
}

// Recorder is an in-memory driver that captures every message sent to its
// ports. It is used by tests and by dry runs of the CLI.
type Recorder struct {
	mu       sync.Mutex
	names    []string
	messages []Sent
	// Fail makes Send on the named port return an error.
	Fail map[string]error
}

// Sent is one captured message.
type Sent struct {
	Port    string
	Message gm.Message
}

// NewRecorder returns a recorder exposing the given port names.
func NewRecorder(ports ...string) *Recorder {
	return &Recorder{names: append([]string(nil), ports...)}
}

func (r *Recorder) Ports() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...), nil
}

func (r *Recorder) Open(name string) (Port, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.names {
		if n == name {
			return &recordedPort{r: r, name: name}, nil
		}
	}
	return nil, &TransportError{Port: name, Op: "open", Err: os.ErrNotExist}
}

// Messages returns a copy of everything sent so far, in order.
func (r *Recorder) Messages() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.messages...)
}

// Strings renders the captured messages for easy comparison.
func (r *Recorder) Strings() []string {
	msgs := r.Messages()
	out := make([]string, len(msgs))
	for i, s := range msgs {
		out[i] = s.Port + ": " + describe(s.Message)
	}
	return out
}

// Reset discards captured messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}

type recordedPort struct {
	r    *Recorder
	name string
}

func (p *recordedPort) Name() string { return p.name }

func (p *recordedPort) Send(msg gm.Message) error {
	p.r.mu.Lock()
	defer p.r.mu.Unlock()
	if err := p.r.Fail[p.name]; err != nil {
		return &TransportError{Port: p.name, Op: "send", Err: err}
	}
	p.r.messages = append(p.r.messages, Sent{Port: p.name, Message: append(gm.Message(nil), msg...)})
	return nil
}

func (p *recordedPort) Close() error { return nil }
