// Package engine ties a window, a rendering device, a scene driver and an orbit camera together
// and runs the frame loop on the calling goroutine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/Carmen-Shannon/oxy-gfx/engine/camera"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gfx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gfx/engine/scene"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrQuit can be returned from an update callback to stop Run without reporting an error.
var ErrQuit = errors.New("quit")

// FrameContext is handed to the update callback once per frame, inside an open scene with the
// camera matrices already uploaded.
type FrameContext struct {
	Device device.Device
	Driver scene.Driver
	Window window.Window
	Camera camera.Camera

	// DeltaTime is the time since the previous frame in seconds.
	DeltaTime float32
	// Frame counts frames from 0.
	Frame uint64
}

// engine implements the Engine interface.
type engine struct {
	window   window.Window
	device   device.Device
	driver   scene.Driver
	camera   camera.Camera
	profiler *profiler.Profiler

	windowOptions   []window.WindowBuilderOption
	rendererOptions []renderer.RendererBuilderOption
	driverOptions   []scene.DriverBuilderOption
	profilerOptions []profiler.ProfilerBuilderOption
	controller      camera.CameraController
	logger          *slog.Logger

	profilingEnabled bool
	renderFrameLimit time.Duration
	clearColor       mgl32.Vec3
	screenshotDir    string

	quit         bool
	frame        uint64
	lastTime     float64
	pendingShot  bool
	scrollDelta  float32
	screenshotNo int
}

// Engine is the main entry point. It owns the window, device and driver and runs a single
// threaded frame loop: poll, tick, update, present.
type Engine interface {
	// Window returns the underlying window.
	Window() window.Window

	// Device returns the rendering device.
	Device() device.Device

	// Driver returns the scene driver used to create nodes and textures.
	Driver() scene.Driver

	// Camera returns the camera rig driven by the orbit controller.
	Camera() camera.Camera

	// EnableProfiler enables per-second frame statistics through the device logger.
	EnableProfiler()

	// DisableProfiler disables frame statistics.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run drives the frame loop on the calling goroutine until the window is closed, Quit is
	// called or update returns an error. Each frame it polls the window, ticks the driver,
	// moves the camera, opens a scene, clears, calls update, closes the scene and presents.
	//
	// Parameters:
	//   - update: the per-frame callback, may be nil
	//
	// Returns:
	//   - error: the first device or callback error; ErrQuit from the callback is not reported
	Run(update func(frame FrameContext) error) error

	// Quit stops Run after the current frame.
	Quit()

	// Screenshot reads back the current frame and writes it as a lossless WebP file. Call it
	// after drawing, for example at the end of the update callback.
	//
	// Parameters:
	//   - path: the output file
	//
	// Returns:
	//   - error: device.ErrUnsupported on backends without read back, or an encoding error
	Screenshot(path string) error

	// Close destroys the device and the window.
	//
	// Returns:
	//   - error: the first destroy error
	Close() error
}

// NewEngine creates the window, the device for the selected backend, the scene driver, the
// camera rig and the profiler.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: error if the window or device cannot be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{
		clearColor:    mgl32.Vec3{0.1, 0.1, 0.15},
		screenshotDir: ".",
	}
	for _, opt := range options {
		opt(e)
	}
	if e.logger != nil {
		device.SetLogger(e.logger)
	}

	ownWindow := e.window == nil
	if ownWindow {
		opts := append(e.windowOptions, renderer.WindowOptions(e.rendererOptions...)...)
		w, err := window.NewWindow(opts...)
		if err != nil {
			return nil, err
		}
		e.window = w
	}
	if e.device == nil {
		dev, err := renderer.NewDevice(e.window, e.rendererOptions...)
		if err != nil {
			if ownWindow {
				_ = e.window.Close()
			}
			return nil, err
		}
		e.device = dev
	}

	win := e.window
	e.driver = scene.NewDriver(append([]scene.DriverBuilderOption{
		scene.WithClock(func() time.Duration { return time.Duration(win.Time() * float64(time.Second)) }),
	}, e.driverOptions...)...)

	node, _ := e.driver.CreateFrame(scene.KindCamera).(*scene.Camera)
	if e.controller == nil {
		e.controller = camera.NewCameraController()
	}
	e.camera = camera.NewCamera(camera.WithNode(node), camera.WithController(e.controller))

	e.profiler = profiler.NewProfiler(append([]profiler.ProfilerBuilderOption{
		profiler.WithResourceCounter(e.device.LiveResources),
	}, e.profilerOptions...)...)

	e.window.SetResizeCallback(e.resize)
	e.window.SetScrollCallback(func(delta float32) { e.scrollDelta += delta })
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		if keyCode == common.KeyF12 {
			e.pendingShot = true
		}
	})
	e.lastTime = e.window.Time()

	device.Logger().Info("engine ready",
		slog.String("backend", e.device.Backend()),
		slog.Int("width", e.window.Width()),
		slog.Int("height", e.window.Height()),
	)
	return e, nil
}

func (e *engine) Window() window.Window { return e.window }
func (e *engine) Device() device.Device { return e.device }
func (e *engine) Driver() scene.Driver  { return e.driver }
func (e *engine) Camera() camera.Camera { return e.camera }
func (e *engine) EnableProfiler()       { e.profilingEnabled = true }
func (e *engine) DisableProfiler()      { e.profilingEnabled = false }
func (e *engine) Quit()                 { e.quit = true }

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run(update func(frame FrameContext) error) error {
	e.quit = false
	for !e.quit {
		start := time.Now()
		if !e.window.PollEvents() || e.window.CloseRequested() {
			break
		}
		if err := e.runFrame(update); err != nil {
			if errors.Is(err, ErrQuit) {
				break
			}
			return err
		}
		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	return nil
}

// runFrame renders one frame. The scene is always closed again so a failing callback leaves
// the device usable.
func (e *engine) runFrame(update func(frame FrameContext) error) (err error) {
	now := e.window.Time()
	dt := float32(now - e.lastTime)
	e.lastTime = now

	e.driver.Tick()
	e.controller.HandleInput(e.window, dt)
	if e.scrollDelta != 0 {
		e.controller.Zoom(e.scrollDelta)
		e.scrollDelta = 0
	}
	if err := e.camera.Update(e.aspect()); err != nil {
		return err
	}

	if err := e.device.BeginScene(); err != nil {
		return err
	}
	defer func() {
		if endErr := e.device.EndScene(); endErr != nil && err == nil {
			err = endErr
		}
		if err == nil || errors.Is(err, ErrQuit) {
			e.finishFrame()
		}
	}()

	if err := e.device.Clear(device.ClearAll, e.clearColor); err != nil {
		return err
	}
	if err := e.camera.Apply(e.device); err != nil {
		return err
	}
	if update == nil {
		return nil
	}
	return update(FrameContext{
		Device:    e.device,
		Driver:    e.driver,
		Window:    e.window,
		Camera:    e.camera,
		DeltaTime: dt,
		Frame:     e.frame,
	})
}

// finishFrame takes a pending screenshot, presents and samples the profiler.
func (e *engine) finishFrame() {
	if e.pendingShot {
		e.pendingShot = false
		e.screenshotNo++
		path := filepath.Join(e.screenshotDir, "screenshot-"+strconv.Itoa(e.screenshotNo)+".webp")
		if err := e.Screenshot(path); err != nil {
			device.Logger().Warn("screenshot failed", slog.String("path", path), slog.Any("error", err))
		}
	}
	if err := e.device.Present(); err != nil {
		device.Logger().Warn("present failed", slog.Any("error", err))
	}
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	e.frame++
}

func (e *engine) Screenshot(path string) error {
	pixels, w, h, err := e.device.ReadPixels()
	if err != nil {
		return fmt.Errorf("failed to read back frame: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := common.EncodeWebP(f, pixels, w, h); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	device.Logger().Info("screenshot saved", slog.String("path", path), slog.Int("width", w), slog.Int("height", h))
	return nil
}

func (e *engine) Close() error {
	var errs []error
	if e.device != nil {
		errs = append(errs, e.device.Destroy())
	}
	if e.window != nil {
		errs = append(errs, e.window.Close())
	}
	return errors.Join(errs...)
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if err := e.device.SetViewport(width, height); err != nil {
		device.Logger().Warn("viewport resize failed", slog.Int("width", width), slog.Int("height", height), slog.Any("error", err))
	}
}

func (e *engine) aspect() float32 {
	w, h := e.device.Viewport()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
