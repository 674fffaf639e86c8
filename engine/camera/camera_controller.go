package camera

import (
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

// Input is the part of the window a controller polls each frame.
type Input interface {
	IsKeyDown(keyCode uint32) bool
	IsMouseButtonDown(button window.MouseButton) bool
	MouseDelta() (dx, dy float32)
}

// CameraController defines the union interface for camera control systems.
// Controllers own positional state (position, target). A Rig reads from the controller and
// places its scene camera node accordingly. Orbit and planar controls work simultaneously
// from a single controller instance.
type CameraController interface {
	orbitCameraController
	planarCameraController

	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Target returns the look-at point.
	Target() mgl32.Vec3

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - target: world-space coordinates
	SetTarget(target mgl32.Vec3)

	// Zoom adjusts the camera's distance by modifying orbit radius.
	// Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// HandleInput applies one frame of keyboard and mouse input: arrow keys orbit, WASD/QE pan
	// and a left drag orbits by the mouse delta.
	//
	// Parameters:
	//   - in: the input source, usually the window
	//   - dt: the frame time in seconds, scaling pan speed
	//
	// Returns:
	//   - bool: true if the controller moved
	HandleInput(in Input, dt float32) bool
}

// orbitCameraController defines orbit-specific control methods using spherical coordinates
// (radius, azimuth, elevation) relative to the target.
type orbitCameraController interface {
	// Orbit rotates the camera around the target. Elevation is clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle change in radians
	//   - dElevation: vertical angle change in radians
	Orbit(dAzimuth, dElevation float32)

	// Radius returns the current distance from the target.
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// Azimuth returns the horizontal angle around the Y axis in radians, 0 facing down -Z.
	Azimuth() float32

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32

	// OrbitSpeed returns the keyboard orbit speed in radians per frame.
	OrbitSpeed() float32
}

// planarCameraController defines panning along the camera's local axes. Panning shifts both
// position and target by the same offset, preserving the orbit relationship.
type planarCameraController interface {
	// Pan translates the camera along its local right, up and forward axes.
	//
	// Parameters:
	//   - right: distance along the right axis
	//   - up: distance along the up axis
	//   - forward: distance towards the target
	Pan(right, up, forward float32)

	// PanSpeed returns the pan speed in world units per second.
	PanSpeed() float32
}
