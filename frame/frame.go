// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package frame bounds the number of frames in flight per window.
//
// A Synchronizer owns a fixed ring of slots, one per allowed in-flight
// frame. Claiming the next slot blocks until its previous occupant has
// completed, which is the backpressure that keeps the CPU from running
// ahead of the GPU. Draining waits for every slot, a precondition for
// swapchain recreation and window teardown.
package frame

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrTimeout is returned when a slot does not complete within the
// synchronizer's bounded wait. Callers treat it as a lost device.
var ErrTimeout = errors.New("frame: wait for in-flight frame timed out")

// ErrClosed is returned when claiming from a closed synchronizer.
var ErrClosed = errors.New("frame: synchronizer closed")

// DefaultMaxInFlight is the slot count used when none is configured.
const DefaultMaxInFlight = 2

// DefaultWait bounds every blocking wait on frame completion.
const DefaultWait = 2 * time.Second

// Slot tracks one in-flight frame: the swapchain generation it was
// acquired under and a completion signal.
type Slot struct {
	index int

	mu         sync.Mutex
	inFlight   bool
	generation uint64
	done       chan struct{}
}

// Index returns the slot's position in the ring.
func (s *Slot) Index() int { return s.index }

// Generation returns the swapchain generation recorded when the slot
// was claimed.
func (s *Slot) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Complete marks the slot's frame as finished on the GPU, releasing
// anyone blocked on it. Safe to call from any goroutine; idempotent.
func (s *Slot) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight {
		return
	}
	s.inFlight = false
	close(s.done)
}

// waitCh returns the channel to block on, or nil when the slot is free.
func (s *Slot) waitCh() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inFlight {
		return nil
	}
	return s.done
}

func (s *Slot) claim(generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = true
	s.generation = generation
	s.done = make(chan struct{})
}

// Synchronizer hands out slots round-robin and enforces the in-flight
// bound. Claim and Drain belong to the single goroutine driving frames;
// Complete may be called from anywhere.
type Synchronizer struct {
	slots  []*Slot
	next   int
	wait   time.Duration
	closed bool
}

// NewSynchronizer creates a ring of maxInFlight slots. Non-positive
// arguments fall back to DefaultMaxInFlight and DefaultWait.
func NewSynchronizer(maxInFlight int, wait time.Duration) *Synchronizer {
	if maxInFlight <= 0 {
		maxInFlight = DefaultMaxInFlight
	}
	if wait <= 0 {
		wait = DefaultWait
	}
	slots := make([]*Slot, maxInFlight)
	for i := range slots {
		slots[i] = &Slot{index: i}
	}
	return &Synchronizer{slots: slots, wait: wait}
}

// Cap returns the maximum number of frames in flight.
func (sy *Synchronizer) Cap() int { return len(sy.slots) }

// InFlight counts slots currently occupied.
func (sy *Synchronizer) InFlight() int {
	n := 0
	for _, s := range sy.slots {
		if s.waitCh() != nil {
			n++
		}
	}
	return n
}

// OutstandingFor counts in-flight slots claimed under the given
// swapchain generation. Zero means the generation can be retired.
func (sy *Synchronizer) OutstandingFor(generation uint64) int {
	n := 0
	for _, s := range sy.slots {
		s.mu.Lock()
		if s.inFlight && s.generation == generation {
			n++
		}
		s.mu.Unlock()
	}
	return n
}

// Claim returns the next slot in the ring, blocking until its previous
// frame completes. The wait is bounded; on expiry the slot is left
// untouched and ErrTimeout is returned.
func (sy *Synchronizer) Claim(generation uint64) (*Slot, error) {
	if sy.closed {
		return nil, ErrClosed
	}
	slot := sy.slots[sy.next]
	if err := sy.waitSlot(slot); err != nil {
		return nil, err
	}
	sy.next = (sy.next + 1) % len(sy.slots)
	slot.claim(generation)
	return slot, nil
}

// Drain blocks until every in-flight frame completes. On timeout it
// reports which slot is stuck and leaves the rest untouched.
func (sy *Synchronizer) Drain() error {
	for _, s := range sy.slots {
		if err := sy.waitSlot(s); err != nil {
			return fmt.Errorf("frame: drain slot %d: %w", s.index, err)
		}
	}
	return nil
}

// Close drains and marks the synchronizer unusable. Further Claim
// calls fail with ErrClosed. Idempotent.
func (sy *Synchronizer) Close() error {
	if sy.closed {
		return nil
	}
	err := sy.Drain()
	sy.closed = true
	return err
}

func (sy *Synchronizer) waitSlot(s *Slot) error {
	ch := s.waitCh()
	if ch == nil {
		return nil
	}
	timer := time.NewTimer(sy.wait)
	defer timer.Stop()
	select {
	case <-ch:
		return nil
	case <-timer.C:
		return ErrTimeout
	}
}
