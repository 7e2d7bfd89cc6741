package present

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/swapchain"
)

// windowEntry bundles everything the driver owns for one window: the
// surface's swapchain manager, the in-flight frame ring, the host's
// render callback, and per-window bookkeeping.
type windowEntry struct {
	id     WindowID
	native any
	mgr    *swapchain.Manager
	sync   *frame.Synchronizer
	render RenderFunc

	state driveState

	// ready flips when the swapchain is first configured; the
	// WindowReady event fires at that point.
	ready bool

	// outdatedTicks counts consecutive ticks the window failed to
	// produce a frame. Reset on any successful present; crossing
	// MaxOutdatedTicks declares the window Lost.
	outdatedTicks int

	stats WindowStats
}

// Core owns presentation for a set of windows: one backend, one
// swapchain manager and frame ring per window, and the per-tick frame
// driver.
//
// AddWindow, RemoveWindow, RenderWindows and Close belong to a single
// goroutine, the one driving the frame loop. NotifyResize and Stats are
// safe to call from any goroutine (OS event callbacks typically deliver
// resizes on another thread). Events may be consumed anywhere.
type Core struct {
	cfg     Config
	backend Backend
	overlay Overlay

	// ownsBackend is set when the Core opened the backend itself and
	// must release it on Close.
	ownsBackend bool

	mu      sync.Mutex
	windows map[WindowID]*windowEntry
	order   []WindowID
	nextID  WindowID
	resizes []resizeMsg
	closed  bool

	events *eventSink
}

// NewCore opens the configured backend (or the best available one) and
// returns a Core ready to register windows.
func NewCore(cfg Config) (*Core, error) {
	cfg = cfg.normalized()
	b, err := globalBackends.Open(cfg.Backend, cfg)
	if err != nil {
		return nil, err
	}
	c := newCore(b, cfg)
	c.ownsBackend = true
	return c, nil
}

// NewCoreWith wraps an already-constructed backend. The caller keeps
// ownership of the backend; Close does not release it.
func NewCoreWith(b Backend, cfg Config) *Core {
	return newCore(b, cfg.normalized())
}

func newCore(b Backend, cfg Config) *Core {
	return &Core{
		cfg:     cfg,
		backend: b,
		windows: make(map[WindowID]*windowEntry),
		events:  newEventSink(cfg.EventBuffer),
	}
}

// Backend returns the backend serving this Core.
func (c *Core) Backend() Backend { return c.backend }

// Device returns the backend's shared GPU device state, or nil for
// backends without one.
func (c *Core) Device() *DeviceContext {
	if p, ok := c.backend.(DeviceProvider); ok {
		return p.DeviceContext()
	}
	return nil
}

// SetOverlay installs an overlay compositor. The overlay only runs when
// the configuration enables it. Call before the first RenderWindows.
func (c *Core) SetOverlay(o Overlay) { c.overlay = o }

// Events returns the host notification channel. The channel is closed
// by Close.
func (c *Core) Events() <-chan Event { return c.events.ch }

// AddWindow registers a native window and returns its ID. The swapchain
// is configured on the next RenderWindows; WindowReady fires once that
// succeeds. A zero initial extent registers the window suspended, as a
// minimized window would be.
func (c *Core) AddWindow(native any, initial Extent, render RenderFunc) (WindowID, error) {
	if render == nil {
		return 0, ErrNilRender
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.mu.Unlock()

	surf, err := c.backend.CreateSurface(native)
	if err != nil {
		return 0, &SurfaceCreationError{Backend: c.backend.Name(), Err: err}
	}

	prefs := swapchain.DefaultPreferences()
	prefs.PresentModes = c.cfg.presentModePreference()
	prefs.DesiredImageCount = c.cfg.MaxFramesInFlight + 1

	w := &windowEntry{
		native: native,
		mgr:    swapchain.NewManager(surf, prefs),
		sync:   frame.NewSynchronizer(c.cfg.MaxFramesInFlight, c.cfg.FrameWait),
		render: render,
		state:  stateIdle,
	}
	w.mgr.MarkResize(initial)

	c.mu.Lock()
	c.nextID++
	w.id = c.nextID
	c.windows[w.id] = w
	c.order = append(c.order, w.id)
	c.mu.Unlock()

	Logger().Info("present: window added",
		"window", uint64(w.id), "backend", c.backend.Name(), "extent", initial.String())
	return w.id, nil
}

// RemoveWindow drains the window's in-flight frames and releases its
// surface. Removing an unknown ID is a no-op, so hosts may remove
// windows that were already torn down as Lost.
func (c *Core) RemoveWindow(id WindowID) error {
	c.mu.Lock()
	w, ok := c.windows[id]
	if ok {
		c.detachLocked(id)
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}

	if err := w.sync.Close(); err != nil {
		Logger().Warn("present: drain on remove timed out",
			"window", uint64(id), "error", err)
	}
	w.mgr.Release()
	Logger().Info("present: window removed", "window", uint64(id))
	return nil
}

// detachLocked unlinks a window from the registry. Caller holds c.mu.
func (c *Core) detachLocked(id WindowID) {
	delete(c.windows, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// NotifyResize queues a new extent for a window. Safe from any
// goroutine. Multiple notifications between ticks coalesce; only the
// last extent is applied. Unknown IDs are ignored (the window may have
// been lost since the OS event was queued).
func (c *Core) NotifyResize(id WindowID, e Extent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if _, ok := c.windows[id]; !ok {
		return
	}
	c.resizes = append(c.resizes, resizeMsg{window: id, extent: e})
}

// Windows returns the registered window IDs in registration order.
func (c *Core) Windows() []WindowID {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]WindowID, len(c.order))
	copy(out, c.order)
	return out
}

// Stats returns per-window frame accounting.
func (c *Core) Stats(id WindowID) (WindowStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.windows[id]
	if !ok {
		return WindowStats{}, ErrWindowNotFound
	}
	return w.stats, nil
}

// State returns the window's swapchain state snapshot.
func (c *Core) State(id WindowID) (swapchain.State, error) {
	c.mu.Lock()
	w, ok := c.windows[id]
	c.mu.Unlock()
	if !ok {
		return swapchain.State{}, ErrWindowNotFound
	}
	return w.mgr.State(), nil
}

// SurfaceFormat returns the negotiated color format for a window,
// needed by hosts building render pipelines against the swapchain.
func (c *Core) SurfaceFormat(id WindowID) (wgpu.TextureFormat, error) {
	st, err := c.State(id)
	if err != nil {
		return 0, err
	}
	return st.Format, nil
}

// Close tears down every window, releases the backend if this Core
// opened it, and closes the event channel. Idempotent.
func (c *Core) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ids := make([]WindowID, len(c.order))
	copy(ids, c.order)
	entries := make([]*windowEntry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, c.windows[id])
		c.detachLocked(id)
	}
	c.mu.Unlock()

	for _, w := range entries {
		if err := w.sync.Close(); err != nil {
			Logger().Warn("present: drain on close timed out",
				"window", uint64(w.id), "error", err)
		}
		w.mgr.Release()
	}
	if c.ownsBackend {
		c.backend.Release()
	}
	close(c.events.ch)
	return nil
}
