// Package present bridges OS windows to GPU presentation.
//
// # Overview
//
// present owns the swapchain for each registered window and drives the
// per-frame acquire, render, overlay, submit, present cycle. The host
// owns the windows and the render callbacks; present owns everything
// between "the window exists" and "pixels are on screen": surface
// lifetime, format and present-mode negotiation, resize and minimize
// handling, Outdated recovery, and bounded frames-in-flight pacing.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/present"
//	    _ "github.com/gogpu/present/wgpusurface" // register the GPU backend
//	)
//
//	core, err := present.NewCore(present.DefaultConfig())
//	if err != nil { ... }
//	defer core.Close()
//
//	id, err := core.AddWindow(desc, present.Extent{Width: 800, Height: 600},
//	    func(t present.RenderTarget) error {
//	        // record and submit GPU work targeting t.WGPUView()
//	        return nil
//	    })
//
//	for !done {
//	    // poll OS events, forward resizes via core.NotifyResize
//	    _ = core.RenderWindows()
//	}
//
// # Backends
//
// Presentation backends register themselves by importing their package:
// wgpusurface for real windows over WebGPU, headless for tests and CI.
// The highest-priority available backend is used unless the
// configuration names one explicitly.
//
// # Failure model
//
// Outdated swapchains are recreated in place and never surface to the
// host. Lost surfaces tear the window down and arrive as a WindowLost
// event; all other windows keep presenting. Every blocking wait on the
// GPU is bounded, and a timeout is treated as a lost device.
package present
