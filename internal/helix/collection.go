/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package helix

import (
	"iter"
	"slices"

	"helixapi/internal/container"
	"helixapi/internal/midi"
)

// slotStore reads and writes the document data behind one collection slot.
type slotStore struct {
	load  func(i int) (any, error)
	store func(i int, v any) error
	dup   func(v any) any
}

// collection is an ordered, fixed-size list of views with one active member.
type collection[T comparable] struct {
	name  string
	items []T
	slots slotStore
	arena *arena
	event midi.EventKind

	active int
	// loadActive and storeActive replace the in-memory pointer when the
	// active index is persisted in the document.
	loadActive  func() (int, error)
	storeActive func(int) error
}

func (c *collection[T]) Len() int { return len(c.items) }

// At returns the member at i.
func (c *collection[T]) At(i int) (T, error) {
	if err := c.check(i); err != nil {
		var zero T
		return zero, err
	}
	return c.items[i], nil
}

// Index returns the position of item, or -1.
func (c *collection[T]) Index(item T) int { return slices.Index(c.items, item) }

func (c *collection[T]) Contains(item T) bool { return c.Index(item) >= 0 }

// All yields the members in order.
func (c *collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, it := range c.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

func (c *collection[T]) check(i int) error {
	if i < 0 || i >= len(c.items) {
		return &IndexError{Collection: c.name, Index: i, Len: len(c.items)}
	}
	return nil
}

// Swap exchanges the data stored in slots i and j.
func (c *collection[T]) Swap(i, j int) error {
	if err := c.check(i); err != nil {
		return err
	}
	if err := c.check(j); err != nil {
		return err
	}
	if i == j {
		return nil
	}
	a, err := c.slots.load(i)
	if err != nil {
		return err
	}
	b, err := c.slots.load(j)
	if err != nil {
		return err
	}
	if err := c.slots.store(i, b); err != nil {
		return err
	}
	return c.slots.store(j, a)
}

// Move removes the data in slot from and reinserts it at slot to, shifting
// the slots in between by one.
func (c *collection[T]) Move(from, to int) error {
	if err := c.check(from); err != nil {
		return err
	}
	if err := c.check(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	lo, hi := min(from, to), max(from, to)
	vals := make([]any, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		v, err := c.slots.load(i)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	v := vals[from-lo]
	vals = slices.Delete(vals, from-lo, from-lo+1)
	vals = slices.Insert(vals, to-lo, v)
	for k, v := range vals {
		if err := c.slots.store(lo+k, v); err != nil {
			return err
		}
	}
	return nil
}

// Clone overwrites slot dst with a deep copy of slot src.
func (c *collection[T]) Clone(src, dst int) error {
	if err := c.check(src); err != nil {
		return err
	}
	if err := c.check(dst); err != nil {
		return err
	}
	if src == dst {
		return nil
	}
	v, err := c.slots.load(src)
	if err != nil {
		return err
	}
	dup := c.slots.dup
	if dup == nil {
		dup = container.Clone
	}
	return c.slots.store(dst, dup(v))
}

// ActiveIndex returns the index of the active member.
func (c *collection[T]) ActiveIndex() int {
	if c.loadActive != nil {
		i, err := c.loadActive()
		if err != nil || i < 0 || i >= len(c.items) {
			return 0
		}
		return i
	}
	return c.active
}

// SetActiveIndex makes member i active and notifies the sink. The sink is
// called even when i is already active.
func (c *collection[T]) SetActiveIndex(i int) error {
	if err := c.check(i); err != nil {
		return err
	}
	if c.storeActive != nil {
		if err := c.storeActive(i); err != nil {
			return err
		}
	} else {
		c.active = i
	}
	return c.arena.notify(c.event, i)
}

// ActiveItem returns the active member.
func (c *collection[T]) ActiveItem() T {
	var zero T
	if len(c.items) == 0 {
		return zero
	}
	return c.items[c.ActiveIndex()]
}

// SetActiveItem activates item. Items that are not members are ignored.
func (c *collection[T]) SetActiveItem(item T) error {
	i := c.Index(item)
	if i < 0 {
		return nil
	}
	return c.SetActiveIndex(i)
}

func (c *collection[T]) isActive(i int) bool { return c.ActiveIndex() == i }
