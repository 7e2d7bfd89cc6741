// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpusurface

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present/swapchain"
)

// Surface adapts a *wgpu.Surface to the swapchain boundary.
//
// WebGPU does not distinguish Outdated from Lost in GetCurrentTexture,
// so classification is positional: the first failure after a good
// configuration reads as Outdated (recreate and retry), a failure on a
// freshly configured surface reads as Lost.
type Surface struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device

	// failedSinceConfigure is set by a failed acquire and cleared by
	// Configure; a second failure without an intervening Configure
	// escalates to Lost.
	failedSinceConfigure bool
	released             bool
}

var _ swapchain.Surface = (*Surface)(nil)

// Capabilities implements swapchain.Surface.
func (s *Surface) Capabilities() (swapchain.Capabilities, error) {
	caps := s.surface.GetCapabilities(s.adapter)
	if len(caps.Formats) == 0 {
		return swapchain.Capabilities{}, swapchain.ErrNoFormats
	}
	return swapchain.Capabilities{
		Formats:      caps.Formats,
		PresentModes: caps.PresentModes,
	}, nil
}

// Configure implements swapchain.Surface.
func (s *Surface) Configure(cfg swapchain.Config) error {
	caps := s.surface.GetCapabilities(s.adapter)
	if len(caps.AlphaModes) == 0 {
		return fmt.Errorf("%w: no alpha modes", swapchain.ErrLost)
	}
	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      cfg.Format,
		Width:       cfg.Extent.Width,
		Height:      cfg.Extent.Height,
		PresentMode: cfg.PresentMode,
		AlphaMode:   caps.AlphaModes[0],
	})
	s.failedSinceConfigure = false
	return nil
}

// Acquire implements swapchain.Surface.
func (s *Surface) Acquire() (swapchain.Image, error) {
	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		if s.failedSinceConfigure {
			return nil, fmt.Errorf("%w: %v", swapchain.ErrLost, err)
		}
		s.failedSinceConfigure = true
		return nil, fmt.Errorf("%w: %v", swapchain.ErrOutdated, err)
	}
	s.failedSinceConfigure = false
	return &Image{texture: tex}, nil
}

// Present implements swapchain.Surface.
func (s *Surface) Present() error {
	s.surface.Present()
	return nil
}

// Release implements swapchain.Surface. Idempotent.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true
	s.surface.Release()
}

// Image wraps one acquired swapchain texture.
type Image struct {
	texture  *wgpu.Texture
	released bool
}

// View implements swapchain.Image.
func (i *Image) View() (swapchain.TextureView, error) {
	v, err := i.texture.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("wgpusurface: create view: %w", err)
	}
	return &TextureView{view: v}, nil
}

// Release implements swapchain.Image. Idempotent.
func (i *Image) Release() {
	if i.released {
		return
	}
	i.released = true
	i.texture.Release()
}

// TextureView wraps the renderable swapchain view.
type TextureView struct {
	view     *wgpu.TextureView
	released bool
}

// WGPUView exposes the raw view for render callbacks; see
// present.RenderTarget.WGPUView.
func (v *TextureView) WGPUView() *wgpu.TextureView { return v.view }

// Release implements swapchain.TextureView. Idempotent.
func (v *TextureView) Release() {
	if v.released {
		return
	}
	v.released = true
	v.view.Release()
}
