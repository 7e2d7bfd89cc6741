package present

import (
	"errors"
	"fmt"

	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/swapchain"
)

// Common errors returned by Core operations.
var (
	// ErrClosed is returned when operations are attempted on a closed Core.
	ErrClosed = errors.New("present: core is closed")

	// ErrWindowNotFound is returned when an operation names a WindowID
	// that is not registered.
	ErrWindowNotFound = errors.New("present: window not found")

	// ErrNilRender is returned when a window is added without a render
	// callback.
	ErrNilRender = errors.New("present: nil render callback")
)

// SurfaceCreationError indicates a backend failed to create a
// presentation surface for a native window.
type SurfaceCreationError struct {
	Backend string
	Err     error
}

func (e *SurfaceCreationError) Error() string {
	return fmt.Sprintf("present: backend %q: surface creation failed: %v", e.Backend, e.Err)
}

func (e *SurfaceCreationError) Unwrap() error { return e.Err }

// DeviceError indicates a GPU device operation failed outside the
// Outdated/Lost taxonomy.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("present: device %s failed: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// IsOutdated reports whether err means the swapchain must be recreated
// before the next frame. Outdated is recoverable and handled inside the
// frame driver.
func IsOutdated(err error) bool {
	return errors.Is(err, swapchain.ErrOutdated)
}

// IsLost reports whether err means the surface is unrecoverable and the
// window must be torn down. A timed-out frame wait counts as lost.
func IsLost(err error) bool {
	return errors.Is(err, swapchain.ErrLost) || errors.Is(err, frame.ErrTimeout)
}
