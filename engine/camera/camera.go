// Package camera keeps a scene camera node in sync with an orbit controller and uploads its
// matrices to a device.
package camera

import (
	"github.com/Carmen-Shannon/oxy-gfx/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// MatrixSink receives the view and projection matrices. device.Device satisfies it.
type MatrixSink interface {
	SetViewProjMatrix(view, proj mgl32.Mat4) error
}

// Camera pairs a scene camera node with the controller that positions it.
type Camera interface {
	// Node returns the scene camera node the rig drives.
	Node() *scene.Camera

	// Controller returns the attached controller, or nil.
	Controller() CameraController

	// SetController attaches a controller. nil leaves the node where it is.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)

	// Up returns the up vector used when aiming the node.
	Up() mgl32.Vec3

	// SetUp sets the up vector used when aiming the node.
	//
	// Parameters:
	//   - up: the up direction
	SetUp(up mgl32.Vec3)

	// Update aims the node from the controller and refreshes the projection for aspect. The
	// node's transform is only touched when the controller moved since the last Update.
	//
	// Parameters:
	//   - aspect: the viewport width divided by its height
	//
	// Returns:
	//   - error: scene.ErrInvalidArgument for an unusable aspect ratio
	Update(aspect float32) error

	// Apply uploads the node's view and current projection.
	//
	// Parameters:
	//   - sink: the device receiving the matrices
	//
	// Returns:
	//   - error: the sink's error
	Apply(sink MatrixSink) error
}

type cameraImpl struct {
	node       *scene.Camera
	controller CameraController
	up         mgl32.Vec3

	// last pose pushed into the node
	lastPos    mgl32.Vec3
	lastTarget mgl32.Vec3
	placed     bool
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera rig. Without WithNode a fresh scene camera is used.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up: mgl32.Vec3{0, 1, 0},
	}
	for _, option := range options {
		option(c)
	}
	if c.node == nil {
		c.node = scene.NewCamera()
	}
	c.place()
	return c
}

func (c *cameraImpl) Node() *scene.Camera          { return c.node }
func (c *cameraImpl) Controller() CameraController { return c.controller }
func (c *cameraImpl) Up() mgl32.Vec3               { return c.up }

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.controller = ctrl
	c.placed = false
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	c.up = up
	c.placed = false
}

func (c *cameraImpl) Update(aspect float32) error {
	c.place()
	_, err := c.node.UpdateProjection(aspect)
	return err
}

func (c *cameraImpl) Apply(sink MatrixSink) error {
	return sink.SetViewProjMatrix(c.node.ViewMatrix(), c.node.ProjectionMatrix())
}

// place aims the node at the controller's target if the pose changed.
func (c *cameraImpl) place() {
	if c.controller == nil {
		return
	}
	pos, target := c.controller.Position(), c.controller.Target()
	if c.placed && pos == c.lastPos && target == c.lastTarget {
		return
	}
	c.node.LookAt(pos, target, c.up)
	c.lastPos, c.lastTarget = pos, target
	c.placed = true
}
