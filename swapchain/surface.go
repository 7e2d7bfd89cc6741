// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Common errors returned by surface and swapchain operations.
var (
	// ErrOutdated is returned when the swapchain no longer matches the
	// surface (typically after a resize). The swapchain must be recreated
	// before the next acquire.
	ErrOutdated = errors.New("swapchain: outdated")

	// ErrLost is returned when the surface or device is unrecoverable.
	// The window must be torn down and recreated by the host.
	ErrLost = errors.New("swapchain: surface lost")

	// ErrSuspended is returned when an operation requires a configured
	// swapchain but the manager is suspended (zero-area extent).
	ErrSuspended = errors.New("swapchain: suspended")

	// ErrNoFormats is returned when a surface reports no supported
	// texture formats during negotiation.
	ErrNoFormats = errors.New("swapchain: surface reports no supported formats")
)

// Extent is a surface size in pixels.
type Extent struct {
	Width  uint32
	Height uint32
}

// IsZero reports whether the extent has no presentable area.
// Minimized windows report a zero extent on most platforms.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Capabilities describes what a surface supports, queried before
// configuration. Formats is in the surface's preference order.
type Capabilities struct {
	Formats      []wgpu.TextureFormat
	PresentModes []wgpu.PresentMode
}

// Config is a concrete swapchain configuration produced by negotiation.
type Config struct {
	Format      wgpu.TextureFormat
	PresentMode wgpu.PresentMode
	Extent      Extent
}

// TextureView is an opaque renderable view of an acquired image.
// Release must be called exactly once when rendering to the view is done;
// further calls are no-ops.
type TextureView interface {
	Release()
}

// Image is one presentable image acquired from a surface. It is valid
// until Release, or until the swapchain it came from is reconfigured,
// whichever comes first.
type Image interface {
	// View returns a renderable view of the image.
	View() (TextureView, error)

	// Release drops the acquisition without requiring a present.
	// Idempotent.
	Release()
}

// Surface is the boundary between swapchain management and a concrete
// presentation backend. Implementations wrap a real windowed GPU surface
// or an in-memory stand-in for tests.
//
// A Surface is NOT safe for concurrent use; the frame driver owns it.
type Surface interface {
	// Capabilities queries supported formats and present modes.
	Capabilities() (Capabilities, error)

	// Configure applies a negotiated configuration. Calling Configure
	// invalidates any image acquired under the previous configuration.
	Configure(cfg Config) error

	// Acquire obtains the next presentable image. It fails with
	// ErrOutdated when the configuration no longer matches the surface
	// and with ErrLost when the surface is unrecoverable.
	Acquire() (Image, error)

	// Present queues the most recently acquired image for display.
	Present() error

	// Release frees the surface. Idempotent.
	Release()
}
