// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpusurface

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present"
)

// ClearFrame records and submits a render pass that clears the target
// view to the given color. The minimal useful render callback; also the
// pass hosts start from when they have nothing to draw yet.
func ClearFrame(dc *present.DeviceContext, view *wgpu.TextureView, clear wgpu.Color) error {
	encoder, err := dc.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("wgpusurface: create encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		}},
	})
	pass.End()
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("wgpusurface: finish encoder: %w", err)
	}
	dc.Submit(cmd)
	cmd.Release()
	encoder.Release()
	return nil
}
