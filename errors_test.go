package present

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gogpu/present/frame"
	"github.com/gogpu/present/swapchain"
)

// TestClassification exercises IsOutdated and IsLost over the error
// taxonomy, including wrapped forms.
func TestClassification(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantOutdated bool
		wantLost     bool
	}{
		{"nil", nil, false, false},
		{"outdated", swapchain.ErrOutdated, true, false},
		{"wrapped outdated", fmt.Errorf("acquire: %w", swapchain.ErrOutdated), true, false},
		{"lost", swapchain.ErrLost, false, true},
		{"wrapped lost", fmt.Errorf("present: %w", swapchain.ErrLost), false, true},
		{"frame timeout counts as lost", frame.ErrTimeout, false, true},
		{"unrelated", errors.New("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOutdated(tt.err); got != tt.wantOutdated {
				t.Errorf("IsOutdated(%v) = %v, want %v", tt.err, got, tt.wantOutdated)
			}
			if got := IsLost(tt.err); got != tt.wantLost {
				t.Errorf("IsLost(%v) = %v, want %v", tt.err, got, tt.wantLost)
			}
		})
	}
}

// TestTypedErrorsUnwrap verifies the parameterized error types carry
// their cause for errors.Is.
func TestTypedErrorsUnwrap(t *testing.T) {
	cause := errors.New("no vulkan loader")
	var err error = &SurfaceCreationError{Backend: "wgpu", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("SurfaceCreationError does not unwrap its cause")
	}
	var sce *SurfaceCreationError
	if !errors.As(err, &sce) || sce.Backend != "wgpu" {
		t.Errorf("errors.As(SurfaceCreationError) backend = %q, want wgpu", sce.Backend)
	}

	err = &DeviceError{Op: "acquire", Err: swapchain.ErrOutdated}
	if !IsOutdated(err) {
		t.Error("DeviceError wrapping ErrOutdated should classify as outdated")
	}
}
