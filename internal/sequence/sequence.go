// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package sequence restores list order over results that complete out of
// order. It is the same slot machine the async loader runs in the browser.
package sequence

import (
	"fmt"
	"sync"
)

// SlotState is the lifecycle of one slot.
type SlotState int

const (
	Pending SlotState = iota // Not completed yet
	Ready                    // Completed, waiting for lower slots
	Written                  // Handed to the sink
)

func (s SlotState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Written:
		return "written"
	default:
		return "unknown"
	}
}

// Sink consumes slot values in index order.
type Sink[T any] func(index int, value T) error

// Sequencer holds n slots and a next-write index. Complete marks a slot
// ready and advances: every consecutive ready slot from the next-write
// index is passed to the sink, stopping at the first pending slot. The
// first sink error is sticky; no further values reach the sink.
type Sequencer[T any] struct {
	mu     sync.Mutex
	states []SlotState
	values []T
	next   int
	sink   Sink[T]
	err    error
}

// New creates a Sequencer of n pending slots draining into sink.
func New[T any](n int, sink Sink[T]) *Sequencer[T] {
	return &Sequencer[T]{
		states: make([]SlotState, n),
		values: make([]T, n),
		sink:   sink,
	}
}

// Complete stores value at index and advances. It returns the sticky sink
// error, if any. Completing a slot twice or out of range is an error.
func (s *Sequencer[T]) Complete(index int, value T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.states) {
		return fmt.Errorf("slot %d out of range [0, %d)", index, len(s.states))
	}
	if s.states[index] != Pending {
		return fmt.Errorf("slot %d already %s", index, s.states[index])
	}

	s.states[index] = Ready
	s.values[index] = value
	return s.advance()
}

// advance drains consecutive ready slots. Callers hold s.mu.
func (s *Sequencer[T]) advance() error {
	for s.err == nil && s.next < len(s.states) && s.states[s.next] == Ready {
		i := s.next
		v := s.values[i]
		var zero T
		s.values[i] = zero
		if err := s.sink(i, v); err != nil {
			s.err = err
			return err
		}
		s.states[i] = Written
		s.next++
	}
	return s.err
}

// Done reports whether every slot has been written.
func (s *Sequencer[T]) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next == len(s.states)
}

// Err returns the sticky sink error.
func (s *Sequencer[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// State returns the state of slot index.
func (s *Sequencer[T]) State(index int) SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[index]
}
