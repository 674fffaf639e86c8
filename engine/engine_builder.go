package engine

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-gfx/engine/camera"
	"github.com/Carmen-Shannon/oxy-gfx/engine/config"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gfx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gfx/engine/scene"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// logOutput receives the logger built by WithConfig.
var logOutput io.Writer = os.Stderr

// WithConfig applies loaded settings: backend, present mode and MSAA for the renderer, title
// and size for the window, the clear color and the log level. Options given after WithConfig
// override it.
//
// Parameters:
//   - cfg: the settings, usually from config.Load
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		if opts, err := cfg.RendererOptions(); err == nil {
			e.rendererOptions = append(e.rendererOptions, opts...)
		} else {
			device.Logger().Warn("ignoring renderer settings", slog.Any("error", err))
		}
		e.windowOptions = append(e.windowOptions, cfg.WindowOptions()...)
		e.clearColor = cfg.ClearColorVec()
		if e.logger == nil {
			e.logger = cfg.NewLogger(logOutput)
		}
	}
}

// WithLogger installs the logger shared by every package through device.SetLogger.
//
// Parameters:
//   - logger: the logger, nil keeps the current one
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		e.logger = logger
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerOptions passes options to the profiler.
//
// Parameters:
//   - options: profiler options such as profiler.WithInterval
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfilerOptions(options ...profiler.ProfilerBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.profilerOptions = append(e.profilerOptions, options...)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. The window's context must match the selected backend.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithWindowOptions passes options to the window the engine creates.
//
// Parameters:
//   - options: window options such as window.WithTitle
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindowOptions(options ...window.WindowBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.windowOptions = append(e.windowOptions, options...)
	}
}

// WithRendererOptions passes options to the backend factory.
//
// Parameters:
//   - options: renderer options such as renderer.WithBackend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRendererOptions(options ...renderer.RendererBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.rendererOptions = append(e.rendererOptions, options...)
	}
}

// WithDevice uses an existing device instead of building one. It must render into the engine's
// window.
//
// Parameters:
//   - dev: the device
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDevice(dev device.Device) EngineBuilderOption {
	return func(e *engine) {
		e.device = dev
	}
}

// WithDriverOptions passes options to the scene driver. The driver clock defaults to the
// window's time.
//
// Parameters:
//   - options: driver options such as scene.WithClock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDriverOptions(options ...scene.DriverBuilderOption) EngineBuilderOption {
	return func(e *engine) {
		e.driverOptions = append(e.driverOptions, options...)
	}
}

// WithCameraController replaces the default orbit controller.
//
// Parameters:
//   - ctrl: the controller driving the engine camera
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCameraController(ctrl camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = ctrl
	}
}

// WithClearColor sets the color every frame is cleared to.
//
// Parameters:
//   - color: RGB in [0, 1]
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClearColor(color mgl32.Vec3) EngineBuilderOption {
	return func(e *engine) {
		e.clearColor = color
	}
}

// WithScreenshotDir sets where F12 screenshots are written.
//
// Parameters:
//   - dir: an existing directory
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScreenshotDir(dir string) EngineBuilderOption {
	return func(e *engine) {
		if dir != "" {
			e.screenshotDir = dir
		}
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}
