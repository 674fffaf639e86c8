package renderer

import (
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
)

// RendererBuilderOption is a functional option applied to the device factory via NewDevice.
type RendererBuilderOption func(*renderer)

// WithBackend selects the native API the device is built on. Defaults to BackendModern.
//
// Parameters:
//   - backend: the BackendType to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option
func WithBackend(backend BackendType) RendererBuilderOption {
	return func(r *renderer) {
		r.backendType = backend
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
// GL backends honour it through the window swap interval, see WindowOptions.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. When not specified, MSAA is off.
// Higher values (MSAA8x, MSAA16x) are adapter-dependent and may not be supported by all hardware.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff, MSAA4x, MSAA8x, or MSAA16x)
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe). Ignored by the GL backends.
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithDeviceOptions forwards options to device.NewDevice.
//
// Parameters:
//   - options: the device options
//
// Returns:
//   - RendererBuilderOption: a function that applies the device options
func WithDeviceOptions(options ...device.DeviceBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.deviceOptions = append(r.deviceOptions, options...)
	}
}

// WithModernOptions forwards options to the WebGPU backend adapter.
//
// Parameters:
//   - options: the modern backend options
//
// Returns:
//   - RendererBuilderOption: a function that applies the options
func WithModernOptions(options ...device.ModernBackendOption) RendererBuilderOption {
	return func(r *renderer) {
		r.modernOptions = append(r.modernOptions, options...)
	}
}
