package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/scene"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// fakeWindow implements the window calls the engine makes. Anything else panics on the nil
// embedded interface.
type fakeWindow struct {
	window.Window

	time      float64
	maxPolls  int
	polls     int
	closed    bool
	keys      map[uint32]bool
	onKeyDown func(uint32)
	onResize  func(int, int)
	onScroll  func(float32)
}

func (w *fakeWindow) PollEvents() bool {
	w.polls++
	w.time += 0.25
	return w.polls <= w.maxPolls
}

func (w *fakeWindow) CloseRequested() bool                         { return false }
func (w *fakeWindow) Time() float64                                { return w.time }
func (w *fakeWindow) Width() int                                   { return 640 }
func (w *fakeWindow) Height() int                                  { return 480 }
func (w *fakeWindow) IsKeyDown(code uint32) bool                   { return w.keys[code] }
func (w *fakeWindow) IsMouseButtonDown(window.MouseButton) bool    { return false }
func (w *fakeWindow) MouseDelta() (float32, float32)               { return 0, 0 }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))     { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))   { w.onKeyDown = cb }

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

// stubBackend records the frame calls the engine makes.
type stubBackend struct {
	device.Backend

	calls    []string
	viewProj [2]mgl32.Mat4
	pixels   []byte
}

func (b *stubBackend) Name() string   { return "stub" }
func (b *stubBackend) Init() error    { return nil }
func (b *stubBackend) Destroy() error { return nil }

func (b *stubBackend) SetState(device.DeviceState, uint32) error              { return nil }
func (b *stubBackend) SetSamplerState(int, device.SamplerState, uint32) error { return nil }
func (b *stubBackend) SetViewport(int, int) error                             { return nil }

func (b *stubBackend) Clear(device.ClearFlags, mgl32.Vec3) error {
	b.calls = append(b.calls, "clear")
	return nil
}

func (b *stubBackend) BeginScene() error {
	b.calls = append(b.calls, "begin")
	return nil
}

func (b *stubBackend) EndScene() error {
	b.calls = append(b.calls, "end")
	return nil
}

func (b *stubBackend) Present() error {
	b.calls = append(b.calls, "present")
	return nil
}

func (b *stubBackend) SetViewProj(view, proj mgl32.Mat4) error {
	b.viewProj = [2]mgl32.Mat4{view, proj}
	return nil
}

func (b *stubBackend) ReadPixels() ([]byte, int, int, error) {
	if b.pixels == nil {
		return nil, 0, 0, device.ErrUnsupported
	}
	return b.pixels, 2, 2, nil
}

func newTestEngine(t *testing.T, frames int, options ...EngineBuilderOption) (*engine, *fakeWindow, *stubBackend) {
	t.Helper()
	win := &fakeWindow{maxPolls: frames, keys: map[uint32]bool{}}
	backend := &stubBackend{}
	dev, err := device.NewDevice(backend)
	if err != nil {
		t.Fatal(err)
	}
	if err := dev.SetViewport(640, 480); err != nil {
		t.Fatal(err)
	}
	opts := append([]EngineBuilderOption{WithWindow(win), WithDevice(dev)}, options...)
	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e.(*engine), win, backend
}

func TestRunFrameOrder(t *testing.T) {
	e, _, backend := newTestEngine(t, 2)

	var seen []uint64
	err := e.Run(func(f FrameContext) error {
		seen = append(seen, f.Frame)
		backend.calls = append(backend.calls, "update")
		if f.Driver != e.Driver() || f.Device != e.Device() {
			t.Error("frame context does not carry the engine's driver and device")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 0 || seen[1] != 1 {
		t.Fatalf("frames = %v, want [0 1]", seen)
	}
	want := []string{"begin", "clear", "update", "end", "present", "begin", "clear", "update", "end", "present"}
	if len(backend.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", backend.calls, want)
	}
	for i := range want {
		if backend.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", backend.calls, want)
		}
	}

	node := e.Camera().Node()
	if !backend.viewProj[0].ApproxEqual(node.ViewMatrix()) || !backend.viewProj[1].ApproxEqual(node.ProjectionMatrix()) {
		t.Error("camera matrices not uploaded")
	}
}

func TestRunTicksDriverFromWindowTime(t *testing.T) {
	e, _, _ := newTestEngine(t, 3)
	var times []uint32
	if err := e.Run(func(f FrameContext) error {
		times = append(times, f.Driver.RenderTime())
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(times) != 3 || times[0] != 250 || times[2] != 750 {
		t.Fatalf("render times = %v, want [250 500 750]", times)
	}
}

func TestRunStopsOnCallbackError(t *testing.T) {
	e, _, backend := newTestEngine(t, 10)
	boom := errors.New("boom")
	err := e.Run(func(f FrameContext) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if backend.calls[len(backend.calls)-1] != "end" {
		t.Errorf("scene left open: %v", backend.calls)
	}

	e2, _, _ := newTestEngine(t, 10)
	frames := 0
	err = e2.Run(func(f FrameContext) error {
		frames++
		if frames == 2 {
			return ErrQuit
		}
		return nil
	})
	if err != nil || frames != 2 {
		t.Fatalf("ErrQuit: err = %v after %d frames", err, frames)
	}

	e3, _, _ := newTestEngine(t, 10)
	frames = 0
	_ = e3.Run(func(f FrameContext) error {
		frames++
		e3.Quit()
		return nil
	})
	if frames != 1 {
		t.Fatalf("Quit: ran %d frames, want 1", frames)
	}
}

func TestCameraInput(t *testing.T) {
	e, win, _ := newTestEngine(t, 1)
	before := e.Camera().Controller().Azimuth()
	win.keys[common.KeyRight] = true
	win.onScroll(2)
	radius := e.Camera().Controller().Radius()
	if err := e.Run(nil); err != nil {
		t.Fatal(err)
	}
	if e.Camera().Controller().Azimuth() <= before {
		t.Error("arrow key did not orbit the camera")
	}
	if e.Camera().Controller().Radius() >= radius {
		t.Error("scroll did not zoom the camera")
	}
}

func TestScreenshot(t *testing.T) {
	dir := t.TempDir()
	e, win, backend := newTestEngine(t, 1, WithScreenshotDir(dir))

	if err := e.Screenshot(filepath.Join(dir, "x.webp")); !errors.Is(err, device.ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}

	backend.pixels = make([]byte, 2*2*4)
	for i := range backend.pixels {
		backend.pixels[i] = 0xff
	}
	win.onKeyDown(common.KeyF12)
	if err := e.Run(nil); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(filepath.Join(dir, "screenshot-1.webp"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty screenshot")
	}
}

func TestClose(t *testing.T) {
	e, win, _ := newTestEngine(t, 0)
	dev := e.Device()
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if !win.closed {
		t.Error("window not closed")
	}
	if err := dev.BeginScene(); !errors.Is(err, device.ErrNotInitialized) {
		t.Errorf("device still usable after Close: %v", err)
	}
	if _, ok := e.Driver().CreateFrame(scene.KindSector).(*scene.Sector); !ok {
		t.Error("driver unusable after Close")
	}
}
