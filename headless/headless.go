// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides an in-memory presentation backend.
//
// It implements the full surface contract without a GPU or a window
// system: acquired images are plain pixel buffers, present copies them
// into a readback-able "screen". Importing the package registers the
// backend at priority 10, below any GPU backend, so it is selected
// automatically only when nothing better is available. Tests and CI
// use it both as a null presentation target and as a fault injector
// for the Outdated/Lost recovery paths.
package headless

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present"
	"github.com/gogpu/present/swapchain"
)

// Name is the backend's registry name.
const Name = "headless"

func init() {
	present.RegisterBackend(Name, 10, New, nil)
}

// Common errors returned by headless surfaces.
var (
	// ErrNotConfigured is returned when acquiring from a surface that
	// was never configured.
	ErrNotConfigured = errors.New("headless: surface not configured")

	// ErrNothingAcquired is returned when presenting without a prior
	// acquire.
	ErrNothingAcquired = errors.New("headless: present without acquired image")

	// ErrNothingPresented is returned when grabbing before the first
	// present.
	ErrNothingPresented = errors.New("headless: nothing presented yet")
)

// Backend creates in-memory surfaces. The native window handle passed
// to CreateSurface is ignored.
type Backend struct{}

var _ present.Backend = (*Backend)(nil)

// New creates the headless backend. The registry calls this; direct
// construction is fine too.
func New(present.Config) (present.Backend, error) {
	return &Backend{}, nil
}

// Name implements present.Backend.
func (b *Backend) Name() string { return Name }

// CreateSurface implements present.Backend. Passing a pre-built
// *Surface as the native handle adopts it, which is how tests hand a
// fault-injecting surface to a Core; any other handle gets a fresh
// surface.
func (b *Backend) CreateSurface(native any) (swapchain.Surface, error) {
	if s, ok := native.(*Surface); ok {
		return s, nil
	}
	return NewSurface(), nil
}

// Release implements present.Backend.
func (b *Backend) Release() {}

// Surface is an in-memory presentation surface. Error injection queues
// let tests script Outdated and Lost sequences; each injected error is
// consumed by exactly one call.
//
// The counters and injection methods are safe for concurrent use.
type Surface struct {
	mu sync.Mutex

	caps       swapchain.Capabilities
	cfg        swapchain.Config
	configured bool
	released   bool

	acquired  bool
	fill      color.RGBA
	presented *image.RGBA

	configureErrs []error
	acquireErrs   []error
	presentErrs   []error

	configures int
	acquires   int
	presents   int
}

var (
	_ swapchain.Surface = (*Surface)(nil)
	_ present.Grabber   = (*Surface)(nil)
)

// NewSurface creates an unconfigured surface with default capabilities.
func NewSurface() *Surface {
	return &Surface{
		caps: swapchain.Capabilities{
			Formats: []wgpu.TextureFormat{
				wgpu.TextureFormatBGRA8UnormSrgb,
				wgpu.TextureFormatRGBA8Unorm,
			},
			PresentModes: []wgpu.PresentMode{
				wgpu.PresentModeFifo,
				wgpu.PresentModeImmediate,
			},
		},
	}
}

// SetCapabilities overrides the advertised capabilities.
func (s *Surface) SetCapabilities(caps swapchain.Capabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps = caps
}

// InjectConfigureError queues an error for a future Configure call.
func (s *Surface) InjectConfigureError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configureErrs = append(s.configureErrs, err)
}

// InjectAcquireError queues an error for a future Acquire call.
// Queue swapchain.ErrOutdated or swapchain.ErrLost to script recovery.
func (s *Surface) InjectAcquireError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquireErrs = append(s.acquireErrs, err)
}

// InjectPresentError queues an error for a future Present call.
func (s *Surface) InjectPresentError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presentErrs = append(s.presentErrs, err)
}

// Configures returns how many Configure calls succeeded.
func (s *Surface) Configures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configures
}

// Acquires returns how many Acquire calls succeeded.
func (s *Surface) Acquires() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquires
}

// Presents returns how many Present calls succeeded.
func (s *Surface) Presents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presents
}

// Config returns the active configuration.
func (s *Surface) Config() swapchain.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Capabilities implements swapchain.Surface.
func (s *Surface) Capabilities() (swapchain.Capabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps, nil
}

// Configure implements swapchain.Surface.
func (s *Surface) Configure(cfg swapchain.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := pop(&s.configureErrs); err != nil {
		return err
	}
	s.cfg = cfg
	s.configured = true
	s.acquired = false
	s.configures++
	return nil
}

// Acquire implements swapchain.Surface.
func (s *Surface) Acquire() (swapchain.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := pop(&s.acquireErrs); err != nil {
		return nil, err
	}
	if !s.configured {
		return nil, ErrNotConfigured
	}
	s.acquired = true
	s.fill = color.RGBA{}
	s.acquires++
	return &Image{s: s}, nil
}

// Present implements swapchain.Surface. The acquired image's fill
// color becomes the readback-able screen content.
func (s *Surface) Present() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := pop(&s.presentErrs); err != nil {
		return err
	}
	if !s.acquired {
		return ErrNothingAcquired
	}
	w := int(s.cfg.Extent.Width)
	h := int(s.cfg.Extent.Height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, s.fill)
		}
	}
	s.presented = img
	s.acquired = false
	s.presents++
	return nil
}

// Release implements swapchain.Surface.
func (s *Surface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	s.configured = false
}

// Grab implements present.Grabber: a copy of the last presented frame.
func (s *Surface) Grab() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presented == nil {
		return nil, ErrNothingPresented
	}
	out := image.NewRGBA(s.presented.Bounds())
	copy(out.Pix, s.presented.Pix)
	return out, nil
}

// Image is one acquired in-memory image.
type Image struct {
	s        *Surface
	released bool
}

// View implements swapchain.Image.
func (i *Image) View() (swapchain.TextureView, error) {
	return &TextureView{s: i.s}, nil
}

// Release implements swapchain.Image. Idempotent.
func (i *Image) Release() { i.released = true }

// TextureView lets a render callback "draw" by setting a fill color.
type TextureView struct {
	s        *Surface
	released bool
}

// Fill records the color the frame will present as.
func (v *TextureView) Fill(c color.RGBA) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.fill = c
}

// Release implements swapchain.TextureView. Idempotent.
func (v *TextureView) Release() { v.released = true }

// pop consumes the head of an injection queue, nil when empty.
func pop(q *[]error) error {
	if len(*q) == 0 {
		return nil
	}
	err := (*q)[0]
	*q = (*q)[1:]
	return err
}
