// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package swapchain manages the lifecycle of a GPU presentation swapchain
// for a single window surface.
//
// The package owns creation, resize-triggered recreation, and teardown of
// the swapchain configuration, plus format and present-mode negotiation
// against the surface's reported capabilities. It does not talk to a GPU
// API directly: the Surface interface is the boundary, implemented by the
// wgpusurface backend for real windows and by the headless backend for
// tests and CI.
//
// Every successful (re)configuration bumps a generation counter. Frame
// bookkeeping records the generation at acquire time; a mismatch later in
// the frame means the swapchain was recreated mid-flight and the frame
// must be abandoned rather than submitted. See the frame package for the
// in-flight accounting that enforces this.
//
// A zero-area extent (minimized window) puts the Manager into a suspended
// state: no swapchain exists and per-frame processing is skipped until a
// non-zero extent arrives.
package swapchain
