// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// State is the current swapchain configuration. It is a value snapshot;
// holding one across a recreate does not keep the configuration alive.
type State struct {
	Format      wgpu.TextureFormat
	PresentMode wgpu.PresentMode
	Extent      Extent
	ImageCount  int

	// Generation increments on every successful (re)configuration.
	// A frame acquired under generation N must not be submitted once
	// the manager reports a generation other than N.
	Generation uint64
}

// DrainFunc blocks until all in-flight frames referencing the current
// swapchain have completed. The manager calls it before reconfiguring
// so no GPU work references images that are about to be invalidated.
type DrainFunc func() error

// Manager owns the swapchain lifecycle for one surface: creation,
// negotiation, lazy resize-driven recreation, and the suspended state
// for zero-area (minimized) windows.
//
// Manager is NOT safe for concurrent use. The frame driver that owns
// the window also owns its Manager.
type Manager struct {
	surface Surface
	prefs   Preferences

	state      State
	configured bool
	suspended  bool
	released   bool

	// Latest requested extent, applied lazily on Ensure. Multiple
	// MarkResize calls within a tick coalesce to the last one.
	pending       bool
	pendingExtent Extent
}

// NewManager wraps a surface. No swapchain exists until the first
// Ensure with a non-zero extent.
func NewManager(s Surface, prefs Preferences) *Manager {
	if prefs.DesiredImageCount <= 0 {
		prefs.DesiredImageCount = DefaultPreferences().DesiredImageCount
	}
	if len(prefs.PresentModes) == 0 {
		prefs.PresentModes = []wgpu.PresentMode{wgpu.PresentModeFifo}
	}
	return &Manager{surface: s, prefs: prefs}
}

// Surface returns the wrapped surface.
func (m *Manager) Surface() Surface { return m.surface }

// State returns a snapshot of the current configuration. Meaningless
// while Suspended or before the first Ensure.
func (m *Manager) State() State { return m.state }

// Generation returns the current configuration generation. Zero means
// no configuration has ever succeeded.
func (m *Manager) Generation() uint64 { return m.state.Generation }

// Suspended reports whether the window has a zero-area extent and
// per-frame processing should be skipped.
func (m *Manager) Suspended() bool { return m.suspended }

// MarkResize records a new target extent without touching the GPU.
// Successive calls within a tick overwrite each other; only the last
// extent is applied when Ensure next runs.
func (m *Manager) MarkResize(e Extent) {
	m.pending = true
	m.pendingExtent = e
}

// MarkOutdated forces a recreate at the current extent on the next
// Ensure. Called after an acquire or present reports ErrOutdated.
func (m *Manager) MarkOutdated() {
	if !m.pending {
		m.pending = true
		m.pendingExtent = m.state.Extent
	}
}

// NeedsRecreate reports whether Ensure would touch the swapchain:
// either a resize is pending or no configuration exists yet.
func (m *Manager) NeedsRecreate() bool {
	return m.pending || (!m.configured && !m.suspended)
}

// Ensure brings the swapchain in line with the latest requested extent.
// It is the once-per-tick entry point: if nothing is pending and a
// configuration exists, it returns immediately. A pending zero-area
// extent suspends the manager; a non-zero one recreates.
//
// drain may be nil when the caller knows no frames are in flight.
func (m *Manager) Ensure(drain DrainFunc) error {
	if m.released {
		return ErrLost
	}
	if !m.pending {
		if m.suspended {
			return ErrSuspended
		}
		if !m.configured {
			// No extent has ever been provided.
			return ErrSuspended
		}
		return nil
	}
	extent := m.pendingExtent
	m.pending = false
	if err := m.Recreate(extent, drain); err != nil {
		// Keep the request pending so the next tick retries, except
		// for suspension, which is a state rather than a failure.
		if !errors.Is(err, ErrSuspended) {
			m.pending = true
			m.pendingExtent = extent
		}
		return err
	}
	return nil
}

// Recreate drains in-flight work, renegotiates against current surface
// capabilities, and applies a new configuration at the given extent.
// A zero-area extent suspends instead. On success the generation is
// bumped, invalidating frames acquired under the old configuration.
func (m *Manager) Recreate(extent Extent, drain DrainFunc) error {
	if m.released {
		return ErrLost
	}
	if drain != nil {
		if err := drain(); err != nil {
			return fmt.Errorf("swapchain: drain before recreate: %w", err)
		}
	}
	if extent.IsZero() {
		m.suspended = true
		m.configured = false
		return ErrSuspended
	}

	caps, err := m.surface.Capabilities()
	if err != nil {
		return fmt.Errorf("swapchain: query capabilities: %w", err)
	}
	format, err := pickFormat(caps.Formats, m.prefs.Formats)
	if err != nil {
		return err
	}
	mode := pickPresentMode(caps.PresentModes, m.prefs.PresentModes)

	cfg := Config{Format: format, PresentMode: mode, Extent: extent}
	if err := m.surface.Configure(cfg); err != nil {
		return fmt.Errorf("swapchain: configure %s: %w", extent, err)
	}

	m.suspended = false
	m.configured = true
	m.state = State{
		Format:      format,
		PresentMode: mode,
		Extent:      extent,
		ImageCount:  m.prefs.DesiredImageCount,
		Generation:  m.state.Generation + 1,
	}
	return nil
}

// Release drains nothing and frees the surface. The caller must have
// drained in-flight frames first. Idempotent.
func (m *Manager) Release() {
	if m.released {
		return
	}
	m.released = true
	m.configured = false
	if m.surface != nil {
		m.surface.Release()
	}
}
