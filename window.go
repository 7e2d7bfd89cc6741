package present

import (
	"time"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present/swapchain"
)

// WindowID identifies a registered window. IDs are assigned by the Core
// and never reused within its lifetime.
type WindowID uint64

// Extent is a window size in pixels.
type Extent = swapchain.Extent

// RenderTarget is the transient handle passed to a render callback for
// one frame. It is valid only for the duration of the callback; holding
// View or using the target afterwards is a programming error.
type RenderTarget struct {
	// Window identifies the window being rendered.
	Window WindowID

	// View is the renderable view of this frame's swapchain image.
	// Backends with a real GPU surface provide a *wgpu.TextureView
	// through WGPUView.
	View swapchain.TextureView

	// Extent is the image size in pixels.
	Extent Extent

	// Format is the swapchain's color format.
	Format wgpu.TextureFormat

	// Generation is the swapchain generation this frame was acquired
	// under. Diagnostic only; the driver enforces generation safety.
	Generation uint64
}

// WGPUView returns the underlying *wgpu.TextureView when the backend is
// GPU-backed, or nil for in-memory backends.
func (t RenderTarget) WGPUView() *wgpu.TextureView {
	type wgpuViewer interface {
		WGPUView() *wgpu.TextureView
	}
	if v, ok := t.View.(wgpuViewer); ok {
		return v.WGPUView()
	}
	return nil
}

// RenderFunc is the host's per-frame callback. It records and submits
// GPU work targeting the given view. Returning an error abandons the
// frame; the window stays registered.
type RenderFunc func(target RenderTarget) error

// WindowStats exposes per-window frame accounting for host HUDs.
type WindowStats struct {
	// Frames counts successfully presented frames.
	Frames uint64

	// LastPresent is the wall time of the most recent present.
	LastPresent time.Time

	// ConsecutiveOutdated counts ticks in a row the window stayed
	// Outdated. Reset on any successful present.
	ConsecutiveOutdated int

	// OverlaySkips counts frames where overlay composition failed and
	// was skipped.
	OverlaySkips uint64

	// RenderErrors counts frames abandoned by a failing render callback.
	RenderErrors uint64
}
