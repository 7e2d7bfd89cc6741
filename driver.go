package present

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/swapchain"
)

// driveState is the frame driver's per-window state, advanced once per
// tick. Suspended and Recovering persist across ticks; the others are
// the phases of a single frame.
type driveState int

const (
	stateIdle driveState = iota
	stateAcquiring
	stateRendering
	statePresenting
	stateSuspended
	stateRecovering
)

func (s driveState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAcquiring:
		return "acquiring"
	case stateRendering:
		return "rendering"
	case statePresenting:
		return "presenting"
	case stateSuspended:
		return "suspended"
	case stateRecovering:
		return "recovering"
	}
	return "unknown"
}

// RenderWindows drives one frame for every registered window: apply
// pending resizes, then acquire, render, composite and present each
// window in registration order.
//
// Per-window failures never abort the other windows. Recoverable
// failures (Outdated, a failing render callback) are handled or skipped
// in place; unrecoverable ones tear the window down and emit a
// WindowLost event. The returned error joins the per-window errors of
// this tick and is diagnostic; hosts typically watch Events instead.
func (c *Core) RenderWindows() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	for _, msg := range c.resizes {
		if w, ok := c.windows[msg.window]; ok {
			w.mgr.MarkResize(msg.extent)
		}
	}
	c.resizes = c.resizes[:0]

	ids := make([]WindowID, len(c.order))
	copy(ids, c.order)
	c.mu.Unlock()

	var errs []error
	for _, id := range ids {
		c.mu.Lock()
		w, ok := c.windows[id]
		c.mu.Unlock()
		if !ok {
			continue
		}
		if err := c.tickWindow(w); err != nil {
			errs = append(errs, fmt.Errorf("window %d: %w", uint64(id), err))
		}
	}
	return errors.Join(errs...)
}

// tickWindow runs one frame for one window. Returns a non-nil error for
// anything the host may want to see in the tick's joined error; the
// window has already been handled (skipped, recovered or torn down).
func (c *Core) tickWindow(w *windowEntry) error {
	prevGen := w.mgr.Generation()

	if err := w.mgr.Ensure(w.sync.Drain); err != nil {
		if errors.Is(err, swapchain.ErrSuspended) {
			w.state = stateSuspended
			return nil
		}
		return c.handleEnsureFailure(w, err)
	}
	c.noteConfigured(w, prevGen)

	slot, err := w.sync.Claim(w.mgr.Generation())
	if err != nil {
		c.loseWindow(w, err)
		return err
	}

	w.state = stateAcquiring
	img, err := w.mgr.Surface().Acquire()
	if err != nil {
		img, slot, err = c.retryAcquire(w, slot, err)
		if err != nil || img == nil {
			return err
		}
	}

	// The slot's recorded generation must match the live swapchain, or
	// the frame would present into a retired configuration.
	if slot.Generation() != w.mgr.Generation() {
		img.Release()
		slot.Complete()
		w.state = stateRecovering
		return nil
	}

	w.state = stateRendering
	view, err := img.View()
	if err != nil {
		img.Release()
		slot.Complete()
		w.state = stateRecovering
		return &DeviceError{Op: "create view", Err: err}
	}

	st := w.mgr.State()
	target := RenderTarget{
		Window:     w.id,
		View:       view,
		Extent:     st.Extent,
		Format:     st.Format,
		Generation: st.Generation,
	}

	if err := w.render(target); err != nil {
		view.Release()
		img.Release()
		slot.Complete()
		w.state = stateIdle
		c.bumpStats(w, func(s *WindowStats) { s.RenderErrors++ })
		Logger().Warn("present: render callback failed, frame abandoned",
			"window", uint64(w.id), "error", err)
		return fmt.Errorf("render: %w", err)
	}

	c.composeOverlay(w, target)

	w.state = statePresenting
	presentErr := w.mgr.Surface().Present()
	view.Release()
	img.Release()

	switch {
	case presentErr == nil:
		// GPU work for this frame is retired by the present on every
		// wired backend, so the slot completes here rather than via an
		// asynchronous fence.
		slot.Complete()
		w.state = stateIdle
		w.outdatedTicks = 0
		c.bumpStats(w, func(s *WindowStats) {
			s.Frames++
			s.LastPresent = time.Now()
			s.ConsecutiveOutdated = 0
		})
		Logger().Debug("present: frame presented",
			"window", uint64(w.id), "generation", st.Generation)
		return nil
	case IsOutdated(presentErr):
		slot.Complete()
		w.mgr.MarkOutdated()
		return c.noteOutdatedTick(w, presentErr)
	default:
		slot.Complete()
		c.loseWindow(w, presentErr)
		return presentErr
	}
}

// retryAcquire handles an acquire failure: Outdated gets one in-tick
// recreate and re-acquire; anything else is counted or fatal. A nil
// image with nil error means the tick is skipped.
func (c *Core) retryAcquire(w *windowEntry, slot *frame.Slot, acquireErr error) (swapchain.Image, *frame.Slot, error) {
	slot.Complete()

	if IsLost(acquireErr) {
		c.loseWindow(w, acquireErr)
		return nil, nil, acquireErr
	}
	if !IsOutdated(acquireErr) {
		w.state = stateRecovering
		err := &DeviceError{Op: "acquire", Err: acquireErr}
		return nil, nil, c.noteFailedTick(w, err)
	}

	w.mgr.MarkOutdated()
	if err := w.mgr.Ensure(w.sync.Drain); err != nil {
		if errors.Is(err, swapchain.ErrSuspended) {
			w.state = stateSuspended
			return nil, nil, nil
		}
		return nil, nil, c.handleEnsureFailure(w, err)
	}
	Logger().Debug("present: swapchain recreated after outdated acquire",
		"window", uint64(w.id), "generation", w.mgr.Generation())

	slot, err := w.sync.Claim(w.mgr.Generation())
	if err != nil {
		c.loseWindow(w, err)
		return nil, nil, err
	}
	img, err := w.mgr.Surface().Acquire()
	if err != nil {
		slot.Complete()
		if IsOutdated(err) {
			// Still outdated after a fresh configuration. Give up for
			// this tick; the counter bounds how long this can go on.
			w.mgr.MarkOutdated()
			return nil, nil, c.noteOutdatedTick(w, err)
		}
		c.loseWindow(w, err)
		return nil, nil, err
	}
	return img, slot, nil
}

// handleEnsureFailure classifies a failed swapchain (re)configuration.
// No supported format means the device cannot drive this surface at
// all, which is fatal for the window right away.
func (c *Core) handleEnsureFailure(w *windowEntry, err error) error {
	if errors.Is(err, swapchain.ErrNoFormats) {
		devErr := &DeviceError{Op: "negotiate", Err: err}
		c.loseWindow(w, devErr)
		return devErr
	}
	if IsLost(err) {
		c.loseWindow(w, err)
		return err
	}
	w.state = stateRecovering
	Logger().Warn("present: swapchain reconfigure failed",
		"window", uint64(w.id), "error", err)
	return c.noteFailedTick(w, err)
}

// noteConfigured fires WindowReady on first configuration and
// WindowResized when a recreate changed the generation.
func (c *Core) noteConfigured(w *windowEntry, prevGen uint64) {
	gen := w.mgr.Generation()
	if gen == prevGen {
		return
	}
	st := w.mgr.State()
	if !w.ready {
		w.ready = true
		Logger().Info("present: window ready",
			"window", uint64(w.id), "extent", st.Extent.String(),
			"format", uint32(st.Format), "mode", uint32(st.PresentMode))
		c.events.post(Event{Kind: WindowReady, Window: w.id, Extent: st.Extent})
		return
	}
	Logger().Info("present: swapchain recreated",
		"window", uint64(w.id), "extent", st.Extent.String(), "generation", gen)
	c.events.post(Event{Kind: WindowResized, Window: w.id, Extent: st.Extent})
}

// noteOutdatedTick records one tick lost to Outdated and tears the
// window down once the bound is crossed.
func (c *Core) noteOutdatedTick(w *windowEntry, cause error) error {
	w.state = stateRecovering
	return c.noteFailedTick(w, cause)
}

// noteFailedTick advances the consecutive-failure counter shared by the
// Outdated and Recovering paths.
func (c *Core) noteFailedTick(w *windowEntry, cause error) error {
	w.outdatedTicks++
	c.bumpStats(w, func(s *WindowStats) { s.ConsecutiveOutdated = w.outdatedTicks })
	if w.outdatedTicks >= c.cfg.MaxOutdatedTicks {
		err := fmt.Errorf("%w: outdated for %d consecutive ticks: %w",
			swapchain.ErrLost, w.outdatedTicks, cause)
		c.loseWindow(w, err)
		return err
	}
	return nil
}

// loseWindow tears a window down after an unrecoverable failure and
// notifies the host. The rest of the tick continues with the other
// windows.
func (c *Core) loseWindow(w *windowEntry, cause error) {
	Logger().Warn("present: window lost",
		"window", uint64(w.id), "error", cause)

	c.mu.Lock()
	c.detachLocked(w.id)
	c.mu.Unlock()

	if err := w.sync.Close(); err != nil {
		Logger().Warn("present: drain on loss timed out",
			"window", uint64(w.id), "error", err)
	}
	w.mgr.Release()
	c.events.post(Event{Kind: WindowLost, Window: w.id, Err: cause})
}

// composeOverlay runs the overlay pass when enabled. Failures degrade
// to a skipped overlay, never a failed frame.
func (c *Core) composeOverlay(w *windowEntry, target RenderTarget) {
	if !c.cfg.OverlayEnabled || c.overlay == nil {
		return
	}
	if err := c.overlay.Compose(target); err != nil {
		c.bumpStats(w, func(s *WindowStats) { s.OverlaySkips++ })
		Logger().Warn("present: overlay skipped",
			"window", uint64(w.id), "overlay", c.overlay.Name(), "error", err)
	}
}

func (c *Core) bumpStats(w *windowEntry, f func(*WindowStats)) {
	c.mu.Lock()
	f(&w.stats)
	c.mu.Unlock()
}
