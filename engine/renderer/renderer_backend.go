package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// BackendType identifies the native API a Device is built on.
type BackendType int

const (
	// BackendLegacy selects the fixed-function OpenGL 2.1 backend.
	BackendLegacy BackendType = iota

	// BackendCore selects the OpenGL 4.1 core profile backend.
	BackendCore

	// BackendModern selects the WebGPU backend.
	BackendModern
)

var backendNames = map[BackendType]string{
	BackendLegacy: "legacy",
	BackendCore:   "core",
	BackendModern: "modern",
}

func (b BackendType) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BackendType(%d)", int(b))
}

// GraphicsAPI returns the window context kind the backend needs.
//
// Returns:
//   - window.GraphicsAPI: the context kind to pass to window.WithGraphicsAPI
func (b BackendType) GraphicsAPI() window.GraphicsAPI {
	switch b {
	case BackendLegacy:
		return window.APIOpenGL21
	case BackendCore:
		return window.APIOpenGL41Core
	default:
		return window.APINone
	}
}

// ParseBackendType resolves a backend name as written in configuration files.
//
// Parameters:
//   - name: "legacy", "core" or "modern", case-insensitive
//
// Returns:
//   - BackendType: the backend
//   - error: ErrInvalidArgument for an unknown name
func ParseBackendType(name string) (BackendType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for b, n := range backendNames {
		if n == name {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown backend %q: %w", name, device.ErrInvalidArgument)
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode resolves a present mode name as written in configuration files.
//
// Parameters:
//   - name: "vsync" or "uncapped", case-insensitive
//
// Returns:
//   - PresentMode: the present mode
//   - error: ErrInvalidArgument for an unknown name
func ParsePresentMode(name string) (PresentMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vsync":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	}
	return 0, fmt.Errorf("unknown present mode %q: %w", name, device.ErrInvalidArgument)
}

// swapInterval maps the present mode onto the GL swap interval.
func (m PresentMode) swapInterval() int {
	if m == PresentModeUncapped {
		return 0
	}
	return 1
}

// wgpu maps the present mode onto the WebGPU surface present mode.
func (m PresentMode) wgpu() wgpu.PresentMode {
	if m == PresentModeUncapped {
		return wgpu.PresentModeImmediate
	}
	return wgpu.PresentModeFifo
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// Only specific power-of-two values are valid for GPU hardware. WebGPU guarantees support for
// 1 (off) and 4; higher values (8, 16) are adapter-dependent and may not be available.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4

	// MSAA8x enables 8× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA8x MSAASampleCount = 8

	// MSAA16x enables 16× multisample anti-aliasing. Adapter-dependent; not all hardware supports this.
	MSAA16x MSAASampleCount = 16
)

// valid reports whether the count is one of the declared sample counts.
func (c MSAASampleCount) valid() bool {
	switch c {
	case MSAAOff, MSAA4x, MSAA8x, MSAA16x:
		return true
	}
	return false
}
