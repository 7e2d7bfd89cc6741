package present_test

import (
	"errors"
	"testing"

	"github.com/gogpu/present"
	"github.com/gogpu/present/headless"
	"github.com/gogpu/present/swapchain"
)

// addSurface registers a window backed by a pre-built headless surface
// so the test can inject faults and inspect call counts.
func addSurface(t *testing.T, core *present.Core, s *headless.Surface, w, h uint32, render present.RenderFunc) present.WindowID {
	t.Helper()
	if render == nil {
		render = noopRender
	}
	id, err := core.AddWindow(s, present.Extent{Width: w, Height: h}, render)
	if err != nil {
		t.Fatalf("AddWindow() error = %v", err)
	}
	return id
}

func countKind(events []present.Event, kind present.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// TestSteadyStatePresentsEveryTick drives several windows over several
// ticks: one present per window per tick, one WindowReady each.
func TestSteadyStatePresentsEveryTick(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s1, s2 := headless.NewSurface(), headless.NewSurface()
	id1 := addSurface(t, core, s1, 100, 100, nil)
	addSurface(t, core, s2, 200, 200, nil)

	const ticks = 5
	for i := 0; i < ticks; i++ {
		if err := core.RenderWindows(); err != nil {
			t.Fatalf("RenderWindows() tick %d error = %v", i, err)
		}
	}

	if got := s1.Presents(); got != ticks {
		t.Errorf("surface 1 presents = %d, want %d", got, ticks)
	}
	if got := s2.Presents(); got != ticks {
		t.Errorf("surface 2 presents = %d, want %d", got, ticks)
	}
	stats, err := core.Stats(id1)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Frames != ticks {
		t.Errorf("stats.Frames = %d, want %d", stats.Frames, ticks)
	}
	if stats.LastPresent.IsZero() {
		t.Error("stats.LastPresent is zero after presenting")
	}

	events := drainEvents(core)
	if got := countKind(events, present.WindowReady); got != 2 {
		t.Errorf("WindowReady events = %d, want 2", got)
	}
}

// TestResizeStormRecreatesOnce floods resize notifications between two
// ticks; exactly one recreate happens, at the final size.
func TestResizeStormRecreatesOnce(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s := headless.NewSurface()
	id := addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}
	drainEvents(core)

	for w := uint32(101); w <= 160; w++ {
		core.NotifyResize(id, present.Extent{Width: w, Height: w / 2})
	}
	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() after storm error = %v", err)
	}

	if got := s.Configures(); got != 2 {
		t.Errorf("Configures() = %d, want 2 (initial + one coalesced recreate)", got)
	}
	st, err := core.State(id)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if st.Extent != (present.Extent{Width: 160, Height: 80}) {
		t.Errorf("extent after storm = %v, want 160x80", st.Extent)
	}
	if st.Generation != 2 {
		t.Errorf("generation after storm = %d, want 2", st.Generation)
	}

	events := drainEvents(core)
	if got := countKind(events, present.WindowResized); got != 1 {
		t.Errorf("WindowResized events = %d, want 1", got)
	}
}

// TestMinimizeSuspendsAndRestores verifies the zero-extent cycle:
// suspended windows consume no frames, restore resumes presentation.
func TestMinimizeSuspendsAndRestores(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s := headless.NewSurface()
	id := addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}
	presented := s.Presents()

	core.NotifyResize(id, present.Extent{})
	for i := 0; i < 3; i++ {
		if err := core.RenderWindows(); err != nil {
			t.Fatalf("RenderWindows() while minimized error = %v", err)
		}
	}
	if got := s.Presents(); got != presented {
		t.Errorf("presents while minimized = %d, want unchanged %d", got, presented)
	}
	if got := s.Acquires(); got != presented {
		t.Errorf("acquires while minimized = %d, want unchanged %d", got, presented)
	}

	core.NotifyResize(id, present.Extent{Width: 50, Height: 50})
	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() after restore error = %v", err)
	}
	if got := s.Presents(); got != presented+1 {
		t.Errorf("presents after restore = %d, want %d", got, presented+1)
	}
	st, _ := core.State(id)
	if st.Generation != 2 {
		t.Errorf("generation after restore = %d, want 2", st.Generation)
	}
}

// TestOutdatedRecoversWithinTick injects a single Outdated acquire:
// the driver recreates and still presents in the same tick.
func TestOutdatedRecoversWithinTick(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s := headless.NewSurface()
	id := addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}

	s.InjectAcquireError(swapchain.ErrOutdated)
	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() with outdated acquire error = %v", err)
	}

	if got := s.Presents(); got != 2 {
		t.Errorf("presents = %d, want 2 (outdated tick still presented)", got)
	}
	if got := s.Configures(); got != 2 {
		t.Errorf("configures = %d, want 2 (recreate after outdated)", got)
	}
	if got := len(core.Windows()); got != 1 {
		t.Errorf("window count = %d, want 1", got)
	}
	st, _ := core.State(id)
	if st.Generation != 2 {
		t.Errorf("generation = %d, want 2", st.Generation)
	}
}

// TestPersistentOutdatedBecomesLost keeps a surface permanently
// Outdated; after the configured tick bound the window is torn down
// while a healthy window is untouched.
func TestPersistentOutdatedBecomesLost(t *testing.T) {
	cfg := present.DefaultConfig()
	cfg.MaxOutdatedTicks = 2
	core := newTestCore(t, cfg)

	sick, healthy := headless.NewSurface(), headless.NewSurface()
	sickID := addSurface(t, core, sick, 100, 100, nil)
	healthyID := addSurface(t, core, healthy, 100, 100, nil)

	// Each tick consumes two injected errors: the first acquire and
	// the post-recreate retry.
	for i := 0; i < 4; i++ {
		sick.InjectAcquireError(swapchain.ErrOutdated)
	}

	var sawLossError bool
	for i := 0; i < 2; i++ {
		if err := core.RenderWindows(); err != nil {
			if !present.IsLost(err) {
				t.Fatalf("RenderWindows() tick %d error = %v, want lost classification", i, err)
			}
			sawLossError = true
		}
	}
	if !sawLossError {
		t.Error("RenderWindows() never reported the loss")
	}

	ids := core.Windows()
	if len(ids) != 1 || ids[0] != healthyID {
		t.Fatalf("Windows() = %v, want only healthy window %d", ids, uint64(healthyID))
	}
	if got := healthy.Presents(); got != 2 {
		t.Errorf("healthy presents = %d, want 2 (unaffected by sick window)", got)
	}

	events := drainEvents(core)
	lost := 0
	for _, ev := range events {
		if ev.Kind == present.WindowLost {
			lost++
			if ev.Window != sickID {
				t.Errorf("WindowLost for window %d, want %d", uint64(ev.Window), uint64(sickID))
			}
			if ev.Err == nil {
				t.Error("WindowLost event has nil Err")
			}
		}
	}
	if lost != 1 {
		t.Errorf("WindowLost events = %d, want 1", lost)
	}
}

// TestLostSurfaceTearsDownWindow injects a hard loss on acquire.
func TestLostSurfaceTearsDownWindow(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s := headless.NewSurface()
	id := addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}

	s.InjectAcquireError(swapchain.ErrLost)
	err := core.RenderWindows()
	if !present.IsLost(err) {
		t.Fatalf("RenderWindows() error = %v, want lost classification", err)
	}
	if got := len(core.Windows()); got != 0 {
		t.Errorf("window count = %d, want 0", got)
	}

	events := drainEvents(core)
	if got := countKind(events, present.WindowLost); got != 1 {
		t.Errorf("WindowLost events = %d, want 1", got)
	}
	_ = id
}

// TestRenderErrorAbandonsFrameOnly verifies a failing render callback
// costs one frame, not the window.
func TestRenderErrorAbandonsFrameOnly(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s := headless.NewSurface()

	fail := false
	id := addSurface(t, core, s, 100, 100, func(present.RenderTarget) error {
		if fail {
			return errors.New("shader blew up")
		}
		return nil
	})

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}

	fail = true
	if err := core.RenderWindows(); err == nil {
		t.Error("RenderWindows() error = nil, want render failure in joined error")
	}
	fail = false
	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() after recovery error = %v", err)
	}

	if got := s.Presents(); got != 2 {
		t.Errorf("presents = %d, want 2 (failed frame abandoned)", got)
	}
	stats, _ := core.Stats(id)
	if stats.RenderErrors != 1 {
		t.Errorf("stats.RenderErrors = %d, want 1", stats.RenderErrors)
	}
	if got := len(core.Windows()); got != 1 {
		t.Errorf("window count = %d, want 1 (render errors are not fatal)", got)
	}
}

// recordingOverlay captures compose calls and optionally fails.
type recordingOverlay struct {
	calls int
	fail  bool
}

func (o *recordingOverlay) Name() string { return "recording" }
func (o *recordingOverlay) Compose(present.RenderTarget) error {
	o.calls++
	if o.fail {
		return errors.New("font atlas missing")
	}
	return nil
}

// TestOverlayComposesWhenEnabled verifies gating and sequencing of the
// overlay pass.
func TestOverlayComposesWhenEnabled(t *testing.T) {
	cfg := present.DefaultConfig().WithOverlay(true)
	core := newTestCore(t, cfg)
	ov := &recordingOverlay{}
	core.SetOverlay(ov)

	s := headless.NewSurface()
	addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}
	if ov.calls != 1 {
		t.Errorf("overlay calls = %d, want 1", ov.calls)
	}
}

// TestOverlayDisabledNotCalled verifies the feature gate.
func TestOverlayDisabledNotCalled(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig().WithOverlay(false))
	ov := &recordingOverlay{}
	core.SetOverlay(ov)

	s := headless.NewSurface()
	addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}
	if ov.calls != 0 {
		t.Errorf("overlay calls = %d, want 0 when disabled", ov.calls)
	}
}

// TestOverlayFailureSkipsNotFails verifies overlay errors degrade to a
// skipped overlay while the frame still presents.
func TestOverlayFailureSkipsNotFails(t *testing.T) {
	cfg := present.DefaultConfig().WithOverlay(true)
	core := newTestCore(t, cfg)
	ov := &recordingOverlay{fail: true}
	core.SetOverlay(ov)

	s := headless.NewSurface()
	id := addSurface(t, core, s, 100, 100, nil)

	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v (overlay failure must not fail the tick)", err)
	}
	if got := s.Presents(); got != 1 {
		t.Errorf("presents = %d, want 1 (frame presented without overlay)", got)
	}
	stats, _ := core.Stats(id)
	if stats.OverlaySkips != 1 {
		t.Errorf("stats.OverlaySkips = %d, want 1", stats.OverlaySkips)
	}
}

// TestNoSupportedFormatIsImmediatelyFatal verifies a surface whose
// device supports no format at all is torn down on the first tick, not
// retried for the full outdated budget.
func TestNoSupportedFormatIsImmediatelyFatal(t *testing.T) {
	core := newTestCore(t, present.DefaultConfig())
	s := headless.NewSurface()
	s.SetCapabilities(swapchain.Capabilities{})
	addSurface(t, core, s, 100, 100, nil)

	err := core.RenderWindows()
	if err == nil {
		t.Fatal("RenderWindows() error = nil, want device error")
	}
	var devErr *present.DeviceError
	if !errors.As(err, &devErr) {
		t.Errorf("RenderWindows() error = %v, want DeviceError", err)
	}
	if got := len(core.Windows()); got != 0 {
		t.Errorf("window count = %d, want 0 after one tick", got)
	}
	events := drainEvents(core)
	if got := countKind(events, present.WindowLost); got != 1 {
		t.Errorf("WindowLost events = %d, want 1", got)
	}
}

// TestConfigureFailureCountsTowardLoss verifies repeated reconfigure
// failures eventually tear the window down instead of looping forever.
func TestConfigureFailureCountsTowardLoss(t *testing.T) {
	cfg := present.DefaultConfig()
	cfg.MaxOutdatedTicks = 2
	core := newTestCore(t, cfg)

	s := headless.NewSurface()
	id := addSurface(t, core, s, 100, 100, nil)
	if err := core.RenderWindows(); err != nil {
		t.Fatalf("RenderWindows() error = %v", err)
	}

	s.InjectConfigureError(errors.New("device busy"))
	s.InjectConfigureError(errors.New("device busy"))
	core.NotifyResize(id, present.Extent{Width: 300, Height: 300})

	for i := 0; i < 2; i++ {
		core.NotifyResize(id, present.Extent{Width: 300, Height: 300})
		_ = core.RenderWindows()
	}
	if got := len(core.Windows()); got != 0 {
		t.Errorf("window count = %d, want 0 after repeated configure failures", got)
	}
	events := drainEvents(core)
	if got := countKind(events, present.WindowLost); got != 1 {
		t.Errorf("WindowLost events = %d, want 1", got)
	}
}
