package present

// Overlay composes an extra pass (debug HUD, immediate-mode GUI) onto a
// frame after the host's render callback and before present. Overlay
// work targets the same swapchain image as the main pass.
//
// Composition failures are never fatal: the driver logs a warning,
// counts the skip, and presents the frame without the overlay.
type Overlay interface {
	// Name identifies the overlay in logs.
	Name() string

	// Compose records and submits the overlay pass for one frame.
	Compose(target RenderTarget) error
}

// NopOverlay is an Overlay that draws nothing. It stands in wherever an
// overlay is wired but the feature is off.
type NopOverlay struct{}

var _ Overlay = NopOverlay{}

// Name implements Overlay.
func (NopOverlay) Name() string { return "nop" }

// Compose implements Overlay.
func (NopOverlay) Compose(RenderTarget) error { return nil }
