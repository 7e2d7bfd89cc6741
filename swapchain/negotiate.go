// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package swapchain

import "github.com/cogentcore/webgpu/wgpu"

// Preferences guides negotiation against surface capabilities.
// Zero-value fields fall back to defaults via DefaultPreferences.
type Preferences struct {
	// Formats in descending preference order. The first one the surface
	// supports wins; if none match, the surface's first format is used.
	Formats []wgpu.TextureFormat

	// PresentModes in descending preference order. Fifo is appended as
	// the guaranteed fallback if absent.
	PresentModes []wgpu.PresentMode

	// DesiredImageCount is advisory; backends that cannot honor it
	// report the actual count through the resulting State.
	DesiredImageCount int
}

// DefaultPreferences prefers an sRGB color target and vsync presentation.
func DefaultPreferences() Preferences {
	return Preferences{
		Formats: []wgpu.TextureFormat{
			wgpu.TextureFormatBGRA8UnormSrgb,
			wgpu.TextureFormatRGBA8UnormSrgb,
		},
		PresentModes:      []wgpu.PresentMode{wgpu.PresentModeFifo},
		DesiredImageCount: 3,
	}
}

// pickFormat selects the first preferred format the surface supports,
// falling back to the surface's own first choice.
func pickFormat(supported, preferred []wgpu.TextureFormat) (wgpu.TextureFormat, error) {
	if len(supported) == 0 {
		return 0, ErrNoFormats
	}
	for _, want := range preferred {
		for _, have := range supported {
			if want == have {
				return want, nil
			}
		}
	}
	return supported[0], nil
}

// pickPresentMode selects the first preferred mode the surface supports.
// Fifo is always available per the WebGPU contract, so negotiation never
// fails: an empty or unmatched list degrades to Fifo.
func pickPresentMode(supported, preferred []wgpu.PresentMode) wgpu.PresentMode {
	for _, want := range preferred {
		for _, have := range supported {
			if want == have {
				return want
			}
		}
	}
	return wgpu.PresentModeFifo
}
