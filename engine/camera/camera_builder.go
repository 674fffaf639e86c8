package camera

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

type CameraBuilderOption func(*cameraImpl)

// WithNode makes the rig drive an existing scene camera, for example one created by a Driver
// and attached to the hierarchy.
//
// Parameters:
//   - node: the camera node
//
// Returns:
//   - CameraBuilderOption: a function that sets the node
func WithNode(node *scene.Camera) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.node = node
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up direction
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl32.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFov sets the node's vertical field of view. Out of range values are logged and ignored.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.ensureNode()
		if err := c.node.SetFieldOfView(fov); err != nil {
			device.Logger().Warn("ignoring camera option", slog.Any("error", err))
		}
	}
}

// WithRange sets the node's near and far clip distances. Invalid ranges are logged and ignored.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: functional option to set the clip range
func WithRange(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.ensureNode()
		if err := c.node.SetRange(near, far); err != nil {
			device.Logger().Warn("ignoring camera option", slog.Any("error", err))
		}
	}
}

// WithController attaches a controller to the camera.
// After all options are applied, the node is placed from the controller's state.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: functional option to set the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

func (c *cameraImpl) ensureNode() {
	if c.node == nil {
		c.node = scene.NewCamera()
	}
}
