// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpusurface presents to real windows through WebGPU.
//
// Importing the package registers the "wgpu" backend at priority 100.
// CreateSurface expects a *wgpu.SurfaceDescriptor for the native
// window, typically produced by wgpuglfw.GetSurfaceDescriptor. One
// instance/adapter/device/queue is created per backend and shared by
// all windows; the host reaches it through Core.Device to build
// pipelines and record command buffers.
package wgpusurface

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present"
	"github.com/gogpu/present/swapchain"
)

// Name is the backend's registry name.
const Name = "wgpu"

func init() {
	present.RegisterBackend(Name, 100, New, nil)
}

// ErrBadNativeHandle is returned when CreateSurface receives anything
// other than a *wgpu.SurfaceDescriptor.
var ErrBadNativeHandle = errors.New("wgpusurface: native handle must be a *wgpu.SurfaceDescriptor")

// Backend owns the shared WebGPU device state and creates window
// surfaces on it.
type Backend struct {
	dc       *present.DeviceContext
	released bool
}

var (
	_ present.Backend        = (*Backend)(nil)
	_ present.DeviceProvider = (*Backend)(nil)
)

// New creates the backend: instance, adapter, device, queue.
func New(present.Config) (present.Backend, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.New("wgpusurface: create instance failed")
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("wgpusurface: request adapter: %w", err)
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "present device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("wgpusurface: request device: %w", err)
	}

	present.Logger().Info("present: wgpu device ready")
	return &Backend{dc: &present.DeviceContext{
		Instance: instance,
		Adapter:  adapter,
		Device:   device,
		Queue:    device.GetQueue(),
	}}, nil
}

// Name implements present.Backend.
func (b *Backend) Name() string { return Name }

// DeviceContext implements present.DeviceProvider.
func (b *Backend) DeviceContext() *present.DeviceContext { return b.dc }

// CreateSurface implements present.Backend.
func (b *Backend) CreateSurface(native any) (swapchain.Surface, error) {
	desc, ok := native.(*wgpu.SurfaceDescriptor)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrBadNativeHandle, native)
	}
	surf := b.dc.Instance.CreateSurface(desc)
	if surf == nil {
		return nil, errors.New("wgpusurface: create surface failed")
	}
	return &Surface{
		surface: surf,
		adapter: b.dc.Adapter,
		device:  b.dc.Device,
	}, nil
}

// Release implements present.Backend. Idempotent.
func (b *Backend) Release() {
	if b.released {
		return
	}
	b.released = true
	b.dc.Release()
}
