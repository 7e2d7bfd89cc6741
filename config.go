package present

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/present/frame"
)

// DefaultMaxOutdatedTicks is how many consecutive ticks a window may
// stay Outdated before it is declared Lost.
const DefaultMaxOutdatedTicks = 120

// Config controls Core behavior. The zero value is not usable; start
// from DefaultConfig and chain With* methods, or load a YAML file.
type Config struct {
	// Backend selects a presentation backend by name. Empty means
	// highest-priority available.
	Backend string `yaml:"backend"`

	// MaxFramesInFlight bounds CPU-ahead-of-GPU distance per window.
	MaxFramesInFlight int `yaml:"max_frames_in_flight"`

	// VSync selects Fifo presentation. When false, Mailbox then
	// Immediate are preferred, with Fifo as the guaranteed fallback.
	VSync bool `yaml:"vsync"`

	// PresentMode overrides the vsync-derived preference when set.
	// Recognized values: "fifo", "mailbox", "immediate". Anything else
	// is ignored with a warning.
	PresentMode string `yaml:"present_mode"`

	// OverlayEnabled gates overlay composition for all windows.
	OverlayEnabled bool `yaml:"overlay_enabled"`

	// FrameWait bounds every blocking wait on frame completion.
	// A wait past this is treated as a lost device.
	FrameWait time.Duration `yaml:"frame_wait"`

	// MaxOutdatedTicks bounds consecutive Outdated ticks per window
	// before the window is declared Lost.
	MaxOutdatedTicks int `yaml:"max_outdated_ticks"`

	// EventBuffer sizes the host event channel. On overflow the oldest
	// event is dropped with a warning.
	EventBuffer int `yaml:"event_buffer"`
}

// DefaultConfig returns the recommended configuration: two frames in
// flight, vsync on, overlay off.
func DefaultConfig() Config {
	return Config{
		MaxFramesInFlight: frame.DefaultMaxInFlight,
		VSync:             true,
		FrameWait:         frame.DefaultWait,
		MaxOutdatedTicks:  DefaultMaxOutdatedTicks,
		EventBuffer:       16,
	}
}

// WithBackend selects a backend by name.
func (c Config) WithBackend(name string) Config {
	c.Backend = name
	return c
}

// WithMaxFramesInFlight sets the in-flight frame bound.
func (c Config) WithMaxFramesInFlight(n int) Config {
	c.MaxFramesInFlight = n
	return c
}

// WithVSync toggles vsync presentation.
func (c Config) WithVSync(on bool) Config {
	c.VSync = on
	return c
}

// WithPresentMode sets an explicit present-mode preference, overriding
// the vsync mapping.
func (c Config) WithPresentMode(mode string) Config {
	c.PresentMode = mode
	return c
}

// WithOverlay toggles overlay composition.
func (c Config) WithOverlay(on bool) Config {
	c.OverlayEnabled = on
	return c
}

// WithFrameWait sets the bounded wait for frame completion.
func (c Config) WithFrameWait(d time.Duration) Config {
	c.FrameWait = d
	return c
}

// LoadConfig reads a YAML config file on top of DefaultConfig, so
// omitted keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("present: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("present: parse config %s: %w", path, err)
	}
	return cfg.normalized(), nil
}

// normalized clamps out-of-range values back to defaults.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.MaxFramesInFlight <= 0 {
		c.MaxFramesInFlight = def.MaxFramesInFlight
	}
	if c.FrameWait <= 0 {
		c.FrameWait = def.FrameWait
	}
	if c.MaxOutdatedTicks <= 0 {
		c.MaxOutdatedTicks = def.MaxOutdatedTicks
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = def.EventBuffer
	}
	return c
}

// presentModePreference maps the configuration to a negotiation order.
// An explicit PresentMode wins; otherwise the VSync toggle decides.
// Fifo always terminates the list as the guaranteed fallback.
func (c Config) presentModePreference() []wgpu.PresentMode {
	switch strings.ToLower(c.PresentMode) {
	case "":
	case "fifo":
		return []wgpu.PresentMode{wgpu.PresentModeFifo}
	case "mailbox":
		return []wgpu.PresentMode{wgpu.PresentModeMailbox, wgpu.PresentModeFifo}
	case "immediate":
		return []wgpu.PresentMode{wgpu.PresentModeImmediate, wgpu.PresentModeFifo}
	default:
		Logger().Warn("present: unrecognized present_mode, using vsync mapping",
			"present_mode", c.PresentMode)
	}
	if c.VSync {
		return []wgpu.PresentMode{wgpu.PresentModeFifo}
	}
	return []wgpu.PresentMode{
		wgpu.PresentModeMailbox,
		wgpu.PresentModeImmediate,
		wgpu.PresentModeFifo,
	}
}
