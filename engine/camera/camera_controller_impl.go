package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/Carmen-Shannon/oxy-gfx/engine/window"
	"github.com/go-gl/mathgl/mgl32"
)

var worldUp = mgl32.Vec3{0, 1, 0}

// cameraControllerImpl is the single implementation of CameraController.
// Orbit methods modify spherical coordinates and recompute position; planar methods translate
// both position and target along the local camera axes.
type cameraControllerImpl struct {
	// position is derived from target and the spherical coordinates
	position mgl32.Vec3
	target   mgl32.Vec3

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit camera controller.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		radius:    5,
		elevation: float32(math.Pi / 6),

		minRadius:    0.5,
		maxRadius:    500,
		minElevation: -float32(math.Pi/2 - 0.1),
		maxElevation: float32(math.Pi/2 - 0.1),

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.5,
		panSpeed:         3,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = mgl32.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = mgl32.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
func (cc *cameraControllerImpl) updatePosition() {
	sinE, cosE := math.Sincos(float64(cc.elevation))
	sinA, cosA := math.Sincos(float64(cc.azimuth))
	offset := mgl32.Vec3{
		float32(cosE * sinA),
		float32(sinE),
		float32(cosE * cosA),
	}
	cc.position = cc.target.Add(offset.Mul(cc.radius))
}

// localAxes returns the camera's right, up and forward axes, matching mgl32.LookAtV. All three
// are zero if position and target coincide.
func (cc *cameraControllerImpl) localAxes() (right, up, forward mgl32.Vec3) {
	back := cc.position.Sub(cc.target)
	if back.Len() < 1e-8 {
		return
	}
	back = back.Normalize()
	right = worldUp.Cross(back)
	if right.Len() < 1e-8 {
		return mgl32.Vec3{}, mgl32.Vec3{}, mgl32.Vec3{}
	}
	right = right.Normalize()
	up = back.Cross(right)
	forward = back.Mul(-1)
	return
}

func (cc *cameraControllerImpl) Position() mgl32.Vec3 { return cc.position }
func (cc *cameraControllerImpl) Target() mgl32.Vec3   { return cc.target }
func (cc *cameraControllerImpl) Radius() float32      { return cc.radius }
func (cc *cameraControllerImpl) Azimuth() float32     { return cc.azimuth }
func (cc *cameraControllerImpl) Elevation() float32   { return cc.elevation }
func (cc *cameraControllerImpl) OrbitSpeed() float32  { return cc.orbitSpeed }
func (cc *cameraControllerImpl) PanSpeed() float32    { return cc.panSpeed }

func (cc *cameraControllerImpl) SetTarget(target mgl32.Vec3) {
	cc.target = target
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.SetRadius(cc.radius - delta*cc.zoomSpeed)
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.radius = mgl32.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Orbit(dAzimuth, dElevation float32) {
	cc.azimuth += dAzimuth
	cc.elevation = mgl32.Clamp(cc.elevation+dElevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Pan(right, up, forward float32) {
	r, u, f := cc.localAxes()
	offset := r.Mul(right).Add(u.Mul(up)).Add(f.Mul(forward))
	cc.target = cc.target.Add(offset)
	cc.position = cc.position.Add(offset)
}

func (cc *cameraControllerImpl) HandleInput(in Input, dt float32) bool {
	var dAzim, dElev float32
	if in.IsKeyDown(common.KeyLeft) {
		dAzim -= cc.orbitSpeed
	}
	if in.IsKeyDown(common.KeyRight) {
		dAzim += cc.orbitSpeed
	}
	if in.IsKeyDown(common.KeyUp) {
		dElev += cc.orbitSpeed
	}
	if in.IsKeyDown(common.KeyDown) {
		dElev -= cc.orbitSpeed
	}
	if in.IsMouseButtonDown(window.MouseButtonLeft) {
		dx, dy := in.MouseDelta()
		dAzim -= dx * cc.mouseSensitivity
		dElev += dy * cc.mouseSensitivity
	}

	var right, up, forward float32
	step := cc.panSpeed * dt
	for _, k := range []struct {
		code uint32
		axis *float32
		sign float32
	}{
		{common.KeyD, &right, 1},
		{common.KeyA, &right, -1},
		{common.KeyE, &up, 1},
		{common.KeyQ, &up, -1},
		{common.KeyW, &forward, 1},
		{common.KeyS, &forward, -1},
	} {
		if in.IsKeyDown(k.code) {
			*k.axis += k.sign * step
		}
	}

	moved := false
	if dAzim != 0 || dElev != 0 {
		cc.Orbit(dAzim, dElev)
		moved = true
	}
	if right != 0 || up != 0 || forward != 0 {
		cc.Pan(right, up, forward)
		moved = true
	}
	return moved
}
