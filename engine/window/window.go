package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// GraphicsAPI selects the kind of context the window creates for its surface.
type GraphicsAPI int

const (
	// APINone creates no GL context. Used by the WebGPU backend which owns its surface.
	APINone GraphicsAPI = iota

	// APIOpenGL21 creates an OpenGL 2.1 compatibility context with fixed-function state.
	APIOpenGL21

	// APIOpenGL41Core creates a forward-compatible OpenGL 4.1 core profile context.
	APIOpenGL41Core
)

// MouseButton identifies a mouse button. Values match GLFW button numbers.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
type Window interface {
	// SetUpdateCallback sets the function called each message loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// GraphicsAPI reports the kind of context the window was created with.
	//
	// Returns:
	//   - GraphicsAPI: the context kind
	GraphicsAPI() GraphicsAPI

	// SwapBuffers presents the back buffer of the GL context. No-op for APINone windows.
	SwapBuffers()

	// PollEvents processes pending window events without blocking and resets the per-frame
	// mouse delta before the new events accumulate into it.
	//
	// Returns:
	//   - bool: true while the window has not been asked to close
	PollEvents() bool

	// CloseRequested reports whether the user or the program asked the window to close.
	//
	// Returns:
	//   - bool: true once a close was requested
	CloseRequested() bool

	// RequestClose flags the window for closing without destroying it.
	RequestClose()

	// IsKeyDown reports whether a key is currently held.
	//
	// Parameters:
	//   - keyCode: the virtual key code (see common.Key*)
	//
	// Returns:
	//   - bool: true while the key is pressed
	IsKeyDown(keyCode uint32) bool

	// IsMouseButtonDown reports whether a mouse button is currently held.
	//
	// Parameters:
	//   - button: the mouse button
	//
	// Returns:
	//   - bool: true while the button is pressed
	IsMouseButtonDown(button MouseButton) bool

	// MouseDelta returns the cursor movement accumulated since the last PollEvents.
	//
	// Returns:
	//   - float32: horizontal movement in pixels
	//   - float32: vertical movement in pixels
	MouseDelta() (float32, float32)

	// SetCursorPos warps the cursor. The jump is not reported through MouseDelta.
	//
	// Parameters:
	//   - x: the horizontal position in window coordinates
	//   - y: the vertical position in window coordinates
	SetCursorPos(x, y float64)

	// Time returns the seconds elapsed since the window system was initialized.
	//
	// Returns:
	//   - float64: the time in seconds
	Time() float64

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop.
	// Blocks until the window is closed. Calls OnUpdate callback each iteration.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, input state and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// maxWidth is the maximum allowed window width during resize.
	maxWidth int

	// maxHeight is the maximum allowed window height during resize.
	maxHeight int

	// minWidth is the minimum allowed window width during resize.
	minWidth int

	// minHeight is the minimum allowed window height during resize.
	minHeight int

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// api is the context kind created for the window.
	api GraphicsAPI

	// swapInterval is passed to glfwSwapInterval for GL contexts, 1 waits for vblank.
	swapInterval int

	// samples is the multisample count of the GL default framebuffer, 0 for none.
	samples int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	input inputState

	// onUpdate is called each iteration of the message loop (if set).
	onUpdate func()

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onScroll is called for mouse wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	onScroll func(delta float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onKeyUp is called when a key is released.
	onKeyUp func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the spawned window
//   - error: error if the platform window or its context cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:        "Default Window Title",
		maxWidth:     1600,
		maxHeight:    1200,
		minWidth:     600,
		minHeight:    200,
		width:        1280,
		height:       720,
		swapInterval: 1,
		input:        newInputState(),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) GraphicsAPI() GraphicsAPI {
	return w.api
}

func (w *engineWindow) SwapBuffers() {
	platformSwapBuffers(w)
}

func (w *engineWindow) PollEvents() bool {
	w.input.beginFrame()
	return platformProcessMessages(w)
}

func (w *engineWindow) CloseRequested() bool {
	return !w.IsRunning()
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) IsKeyDown(keyCode uint32) bool {
	return w.input.keys[keyCode]
}

func (w *engineWindow) IsMouseButtonDown(button MouseButton) bool {
	return w.input.buttons[button]
}

func (w *engineWindow) MouseDelta() (float32, float32) {
	return w.input.dx, w.input.dy
}

func (w *engineWindow) SetCursorPos(x, y float64) {
	platformSetCursorPos(w, x, y)
	w.input.warp(x, y)
}

func (w *engineWindow) Time() float64 {
	return platformTime()
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := w.PollEvents(); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
