package present

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrCaptureUnsupported is returned when a window's backend cannot read
// presented pixels back.
var ErrCaptureUnsupported = errors.New("present: backend does not support capture")

// Grabber is implemented by surfaces that can read back the most
// recently presented frame. The headless backend grabs directly;
// GPU-backed surfaces need a copy-to-buffer readback and may not
// implement it.
type Grabber interface {
	Grab() (*image.RGBA, error)
}

// Capture returns the pixels of the window's most recently presented
// frame. Fails with ErrCaptureUnsupported when the backend has no
// readback path.
func (c *Core) Capture(id WindowID) (*image.RGBA, error) {
	c.mu.Lock()
	w, ok := c.windows[id]
	c.mu.Unlock()
	if !ok {
		return nil, ErrWindowNotFound
	}
	g, ok := w.mgr.Surface().(Grabber)
	if !ok {
		return nil, ErrCaptureUnsupported
	}
	img, err := g.Grab()
	if err != nil {
		return nil, fmt.Errorf("present: capture window %d: %w", uint64(id), err)
	}
	return img, nil
}

// CaptureThumbnail captures the window and scales the result so its
// longer side is maxDim pixels, preserving aspect ratio. Frames already
// within the bound are returned unscaled.
func (c *Core) CaptureThumbnail(id WindowID, maxDim int) (*image.RGBA, error) {
	if maxDim <= 0 {
		return nil, fmt.Errorf("present: invalid thumbnail dimension %d", maxDim)
	}
	full, err := c.Capture(id)
	if err != nil {
		return nil, err
	}
	b := full.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return full, nil
	}
	if w >= h {
		h = h * maxDim / w
		w = maxDim
	} else {
		w = w * maxDim / h
		h = maxDim
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	thumb := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(thumb, thumb.Bounds(), full, b, draw.Src, nil)
	return thumb, nil
}
