// Package renderer selects a backend adapter and its native binding for a window and builds the
// Device on top of them.
package renderer

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/gl21"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/gl41"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/webgpu"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is the part of a window the native bindings draw into.
type Surface interface {
	GraphicsAPI() window.GraphicsAPI
	SwapBuffers()
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer collects the factory configuration from builder options.
type renderer struct {
	backendType          BackendType
	presentMode          PresentMode
	msaa                 MSAASampleCount
	forceFallbackAdapter bool

	deviceOptions []device.DeviceBuilderOption
	modernOptions []device.ModernBackendOption
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		backendType: BackendModern,
		presentMode: PresentModeVSync,
		msaa:        MSAAOff,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// NewDevice creates the Device for a window. The window must have been created with the context
// kind of the selected backend, see WindowOptions.
//
// Parameters:
//   - surface: the window to render into
//   - options: builder options
//
// Returns:
//   - device.Device: the initialized device
//   - error: ErrInvalidArgument for a mismatched window or bad option, or the backend init failure
func NewDevice(surface Surface, options ...RendererBuilderOption) (device.Device, error) {
	r := newRenderer(options...)
	backend, err := r.backend(surface)
	if err != nil {
		return nil, err
	}

	dev, err := device.NewDevice(backend, r.deviceOptions...)
	if err != nil {
		return nil, err
	}
	if err := dev.SetViewport(surface.Width(), surface.Height()); err != nil {
		_ = dev.Destroy()
		return nil, err
	}
	device.Logger().Info("renderer ready",
		slog.String("backend", r.backendType.String()),
		slog.Int("width", surface.Width()),
		slog.Int("height", surface.Height()),
	)
	return dev, nil
}

// WindowOptions returns the window options matching a backend configuration: the context kind,
// the swap interval and the multisample count for GL contexts.
//
// Parameters:
//   - options: the builder options that will be passed to NewDevice
//
// Returns:
//   - []window.WindowBuilderOption: options to append to window.NewWindow
func WindowOptions(options ...RendererBuilderOption) []window.WindowBuilderOption {
	r := newRenderer(options...)
	return []window.WindowBuilderOption{
		window.WithGraphicsAPI(r.backendType.GraphicsAPI()),
		window.WithSwapInterval(r.presentMode.swapInterval()),
		window.WithMultisample(int(r.msaa)),
	}
}

// backend pairs the backend adapter with its native binding.
func (r *renderer) backend(surface Surface) (device.Backend, error) {
	if surface == nil {
		return nil, fmt.Errorf("nil surface: %w", device.ErrInvalidArgument)
	}
	if !r.msaa.valid() {
		return nil, fmt.Errorf("msaa sample count %d: %w", r.msaa, device.ErrInvalidArgument)
	}
	if want := r.backendType.GraphicsAPI(); surface.GraphicsAPI() != want {
		return nil, fmt.Errorf("%s backend needs a window created with graphics API %d, got %d: %w",
			r.backendType, want, surface.GraphicsAPI(), device.ErrInvalidArgument)
	}

	switch r.backendType {
	case BackendLegacy:
		return device.NewLegacyBackend(gl21.New(surface)), nil
	case BackendCore:
		return device.NewCoreBackend(gl41.New(surface)), nil
	case BackendModern:
		native := webgpu.New(surface,
			webgpu.WithPresentMode(r.presentMode.wgpu()),
			webgpu.WithSampleCount(uint32(r.msaa)),
			webgpu.WithFallbackAdapter(r.forceFallbackAdapter),
		)
		return device.NewModernBackend(native, r.modernOptions...), nil
	default:
		return nil, fmt.Errorf("backend %s: %w", r.backendType, device.ErrUnsupported)
	}
}
