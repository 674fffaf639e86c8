package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	defaultFieldOfView = math.Pi / 2
	defaultNear        = 0.1
	defaultFar         = 1000
)

// Camera is a frame node that also owns a perspective projection. The projection has its own
// dirty flag so moving the camera never rebuilds it and changing the lens never dirties the
// transform hierarchy.
type Camera struct {
	Frame

	fov       float32
	near, far float32
	aspect    float32
	proj      mgl32.Mat4

	projDirty      bool
	projRecomputes int
	sector         *Sector
}

var _ Node = &Camera{}

// NewCamera returns a detached camera with a 90 degree vertical field of view and a 0.1..1000
// depth range. The projection is dirty until the first UpdateProjection.
func NewCamera() *Camera {
	c := &Camera{
		fov:       defaultFieldOfView,
		near:      defaultNear,
		far:       defaultFar,
		proj:      mgl32.Ident4(),
		projDirty: true,
	}
	c.init(KindCamera, c)
	return c
}

func (c *Camera) FieldOfView() float32          { return c.fov }
func (c *Camera) Range() (near, far float32)    { return c.near, c.far }
func (c *Camera) ProjectionDirty() bool         { return c.projDirty }
func (c *Camera) ProjectionRecomputes() int     { return c.projRecomputes }
func (c *Camera) CurrentSector() *Sector        { return c.sector }
func (c *Camera) SetCurrentSector(sect *Sector) { c.sector = sect }

// SetFieldOfView sets the vertical field of view.
//
// Parameters:
//   - fov: the angle in radians, in (0, pi)
//
// Returns:
//   - error: ErrInvalidArgument outside the range
func (c *Camera) SetFieldOfView(fov float32) error {
	if fov <= 0 || fov >= math.Pi {
		return fmt.Errorf("field of view %v: %w", fov, ErrInvalidArgument)
	}
	c.fov = fov
	c.projDirty = true
	return nil
}

// SetRange sets the near and far clip distances.
//
// Parameters:
//   - near: the near plane distance, > 0
//   - far: the far plane distance, > near
//
// Returns:
//   - error: ErrInvalidArgument for an empty or negative range
func (c *Camera) SetRange(near, far float32) error {
	if near <= 0 || far <= near {
		return fmt.Errorf("camera range [%v, %v]: %w", near, far, ErrInvalidArgument)
	}
	c.near, c.far = near, far
	c.projDirty = true
	return nil
}

// UpdateProjection rebuilds the projection matrix if the lens changed or the aspect ratio differs
// from the one the current matrix was built with. An invalid aspect leaves the matrix as it was.
//
// Parameters:
//   - aspect: the viewport width divided by its height, > 0
//
// Returns:
//   - bool: true if the matrix was rebuilt
//   - error: ErrInvalidArgument for a non-positive, infinite or NaN aspect
func (c *Camera) UpdateProjection(aspect float32) (bool, error) {
	if !(aspect > 0) || math.IsInf(float64(aspect), 1) {
		return false, fmt.Errorf("aspect ratio %v: %w", aspect, ErrInvalidArgument)
	}
	if !c.projDirty && aspect == c.aspect {
		return false, nil
	}
	c.aspect = aspect
	c.proj = mgl32.Perspective(c.fov, aspect, c.near, c.far)
	c.projDirty = false
	c.projRecomputes++
	return true, nil
}

// ProjectionMatrix returns the projection built by the last UpdateProjection.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.proj
}

// ViewMatrix returns the inverse of the camera's world matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return c.WorldMatrix().Inv()
}

// LookAt places the camera at eye facing target.
//
// Parameters:
//   - eye: the camera position in parent space
//   - target: the point to face in parent space
//   - up: the up direction
func (c *Camera) LookAt(eye, target, up mgl32.Vec3) {
	c.SetPosition(eye)
	c.SetRotation(mgl32.Mat4ToQuat(mgl32.LookAtV(eye, target, up).Inv()))
}

func (c *Camera) Duplicate(src Node) {
	if s, ok := src.(*Camera); ok {
		c.fov = s.fov
		c.near, c.far = s.near, s.far
		c.sector = s.sector
		c.projDirty = true
	}
	c.Frame.Duplicate(src)
}
