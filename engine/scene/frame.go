package scene

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// Frame is the null node: a bare transform in the hierarchy. The other variants embed it.
type Frame struct {
	// self is the outermost node wrapping this frame, handed to children as their parent.
	self Node

	kind  Kind
	flags Flags
	name  string

	// parent is a back-reference only; the parent's children list is what keeps a node attached.
	parent   Node
	children []Node

	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3

	local mgl32.Mat4
	world mgl32.Mat4

	localRecomputes int
	worldRecomputes int
}

var _ Node = &Frame{}

// NewFrame returns a detached null node at the origin.
//
// Returns:
//   - *Frame: the node, enabled and world-dirty
func NewFrame() *Frame {
	f := &Frame{}
	f.init(KindNull, f)
	return f
}

func (f *Frame) init(kind Kind, self Node) {
	f.self = self
	f.kind = kind
	f.flags = FlagOn | FlagWorldDirty
	f.rotation = mgl32.QuatIdent()
	f.scale = mgl32.Vec3{1, 1, 1}
	f.local = mgl32.Ident4()
	f.world = mgl32.Ident4()
}

func (f *Frame) base() *Frame { return f }

func (f *Frame) Kind() Kind           { return f.kind }
func (f *Frame) Name() string         { return f.name }
func (f *Frame) SetName(name string)  { f.name = name }
func (f *Frame) Flags() Flags         { return f.flags }
func (f *Frame) IsOn() bool           { return f.flags&FlagOn != 0 }
func (f *Frame) Parent() Node         { return f.parent }
func (f *Frame) Position() mgl32.Vec3 { return f.position }
func (f *Frame) Rotation() mgl32.Quat { return f.rotation }
func (f *Frame) Scale() mgl32.Vec3    { return f.scale }
func (f *Frame) WorldRecomputes() int { return f.worldRecomputes }

// LocalRecomputes returns how many times the local matrix has been rebuilt from position,
// rotation and scale.
func (f *Frame) LocalRecomputes() int { return f.localRecomputes }

func (f *Frame) SetOn(on bool) {
	if on {
		f.flags |= FlagOn
	} else {
		f.flags &^= FlagOn
	}
}

func (f *Frame) Children() []Node {
	return slices.Clone(f.children)
}

func (f *Frame) AddChild(child Node) error {
	if child == nil {
		return ErrInvalidNode
	}
	c := child.base()
	for n := f.self; n != nil; n = n.Parent() {
		if n.base() == c {
			return ErrCycle
		}
	}
	if c.parent != nil {
		if c.parent.base() == f {
			return nil
		}
		c.parent.RemoveChild(child)
	}

	f.children = append(f.children, child)
	c.parent = f.self
	c.propagateWorldDirty()
	return nil
}

func (f *Frame) RemoveChild(child Node) bool {
	if child == nil {
		return false
	}
	c := child.base()
	i := slices.IndexFunc(f.children, func(n Node) bool { return n.base() == c })
	if i < 0 {
		return false
	}
	f.children = slices.Delete(f.children, i, i+1)
	c.parent = nil
	c.propagateWorldDirty()
	return true
}

func (f *Frame) SetPosition(pos mgl32.Vec3) {
	f.position = pos
	f.flags |= FlagPositionDirty
	f.propagateWorldDirty()
}

func (f *Frame) SetRotation(rot mgl32.Quat) {
	f.rotation = rot
	f.flags |= FlagRotationDirty
	f.propagateWorldDirty()
}

func (f *Frame) SetScale(scale mgl32.Vec3) {
	f.scale = scale
	f.flags |= FlagScaleDirty
	f.propagateWorldDirty()
}

func (f *Frame) SetLocalMatrix(m mgl32.Mat4) {
	f.local = m
	f.flags &^= localDirty
	f.propagateWorldDirty()
}

func (f *Frame) LocalMatrix() mgl32.Mat4 {
	if f.flags&localDirty != 0 {
		t := mgl32.Translate3D(f.position.X(), f.position.Y(), f.position.Z())
		s := mgl32.Scale3D(f.scale.X(), f.scale.Y(), f.scale.Z())
		f.local = t.Mul4(f.rotation.Mat4()).Mul4(s)
		f.flags &^= localDirty
		f.localRecomputes++
	}
	return f.local
}

func (f *Frame) WorldMatrix() mgl32.Mat4 {
	if f.flags&FlagWorldDirty == 0 {
		return f.world
	}
	local := f.LocalMatrix()
	if f.parent != nil {
		f.world = f.parent.WorldMatrix().Mul4(local)
	} else {
		f.world = local
	}
	f.flags &^= FlagWorldDirty
	f.worldRecomputes++
	return f.world
}

// WorldPosition returns the translation of the world matrix.
func (f *Frame) WorldPosition() mgl32.Vec3 {
	return f.self.WorldMatrix().Col(3).Vec3()
}

func (f *Frame) Duplicate(src Node) {
	if src == nil {
		return
	}
	s := src.base()
	f.name = s.name
	f.position = s.position
	f.rotation = s.rotation
	f.scale = s.scale
	f.local = s.local
	f.flags = s.flags | FlagWorldDirty
	f.propagateWorldDirty()
}

// propagateWorldDirty flags this node and its whole subtree. Already dirty children are still
// visited.
func (f *Frame) propagateWorldDirty() {
	f.flags |= FlagWorldDirty
	for _, child := range f.children {
		child.base().propagateWorldDirty()
	}
}
