package present

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// DeviceContext holds the shared GPU device state a GPU-backed backend
// creates once and every window borrows. In-memory backends have none;
// DeviceProvider returns nil there.
//
// Handles are created in instance → adapter → device → queue order and
// released in reverse.
type DeviceContext struct {
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue

	// submitMu serializes queue submission. Render callbacks may run
	// work on the queue; Submit is the one entry point that touches it.
	submitMu sync.Mutex
	released bool
}

// Submit serializes command buffer submission on the shared queue.
func (dc *DeviceContext) Submit(buffers ...*wgpu.CommandBuffer) {
	dc.submitMu.Lock()
	defer dc.submitMu.Unlock()
	dc.Queue.Submit(buffers...)
}

// Release frees the device state in reverse creation order. Idempotent.
func (dc *DeviceContext) Release() {
	if dc == nil || dc.released {
		return
	}
	dc.released = true
	if dc.Device != nil {
		dc.Device.Release()
		dc.Device = nil
	}
	dc.Queue = nil
	if dc.Adapter != nil {
		dc.Adapter.Release()
		dc.Adapter = nil
	}
	if dc.Instance != nil {
		dc.Instance.Release()
		dc.Instance = nil
	}
}
