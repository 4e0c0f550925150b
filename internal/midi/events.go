/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package midi sends Helix control messages to MIDI output ports.
//
// Commands turns logical requests ("change to preset 12", "next snapshot")
// into the Control Change and Program Change messages the device expects and
// sends them to every configured target port. It also serves as the
// notification sink for the entity hierarchy: activating a setlist, preset or
// snapshot produces an Event that Commands translates into wire messages.
package midi

import "fmt"

// EventKind names a device-facing state change.
type EventKind int

const (
	EventSetlist EventKind = iota
	EventPreset
	EventSnapshot
	EventNext
	EventPrevious
	EventToe
	EventTuner
)

// NoIndex marks events that carry no index.
const NoIndex = -1

var eventNames = [...]string{"setlist", "preset", "snapshot", "next", "previous", "toe", "tuner"}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one notification: a kind plus an index, or NoIndex.
type Event struct {
	Kind  EventKind
	Index int
}

func (e Event) String() string {
	if e.Index == NoIndex {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s %d", e.Kind, e.Index)
}

// Sink receives notifications. Implementations must handle events
// synchronously and in call order.
type Sink interface {
	Notify(Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event) error

func (f SinkFunc) Notify(e Event) error { return f(e) }

// Nop is a sink that accepts every event and does nothing.
var Nop Sink = SinkFunc(func(Event) error { return nil })
