// Package scene holds the frame hierarchy: transform-bearing nodes whose local and world matrices
// are cached and recomputed only when a dirty flag says so. Nodes are created through a Driver,
// which also provides the render clock used by animated textures.
//
// Nothing in this package is safe for concurrent use. All calls belong on the render thread.
package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies the variant of a frame node.
type Kind int

const (
	KindNull Kind = iota
	KindVisual
	KindLight
	KindCamera
	KindSound
	KindSector
	KindDummy
	KindReserved
	KindUser
	KindModel
	KindJoint
	KindVolume
	KindOccluder
)

var kindNames = [...]string{
	KindNull:     "null",
	KindVisual:   "visual",
	KindLight:    "light",
	KindCamera:   "camera",
	KindSound:    "sound",
	KindSector:   "sector",
	KindDummy:    "dummy",
	KindReserved: "reserved",
	KindUser:     "user",
	KindModel:    "model",
	KindJoint:    "joint",
	KindVolume:   "volume",
	KindOccluder: "occluder",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Flags is the per-node state bit set.
type Flags uint32

const (
	// FlagOn marks the node as enabled.
	FlagOn Flags = 1 << 1
	// FlagWorldDirty forces the world matrix to be recomputed on the next query.
	FlagWorldDirty Flags = 1 << 2
	// FlagRotationDirty forces the local matrix to be rebuilt from position, rotation and scale.
	FlagRotationDirty Flags = 1 << 3
	// FlagScaleDirty forces the local matrix to be rebuilt from position, rotation and scale.
	FlagScaleDirty Flags = 1 << 4
	// FlagPositionDirty forces the local matrix to be rebuilt from position, rotation and scale.
	FlagPositionDirty Flags = 1 << 5

	localDirty = FlagPositionDirty | FlagRotationDirty | FlagScaleDirty
)

var (
	// ErrInvalidNode is returned when a nil node is passed where a node is required.
	ErrInvalidNode = errors.New("invalid frame node")

	// ErrInvalidArgument is returned for out of range lens or clock parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCycle is returned when attaching a node would make it its own ancestor.
	ErrCycle = errors.New("frame hierarchy cycle")
)

// Node is a frame in the hierarchy. The set of implementations is closed: *Frame, *Dummy,
// *Camera and *Sector. Use a type switch to reach the variant.
type Node interface {
	// Kind returns the node variant.
	Kind() Kind

	Name() string
	SetName(name string)

	// Flags returns the raw state bits.
	Flags() Flags
	IsOn() bool
	SetOn(on bool)

	// Parent returns the node this one is attached to, or nil for a root.
	Parent() Node

	// Children returns a copy of the child list in attach order.
	Children() []Node

	// AddChild attaches a node, detaching it from its previous parent first.
	//
	// Parameters:
	//   - child: the node to attach
	//
	// Returns:
	//   - error: ErrInvalidNode for nil, ErrCycle if child is this node or one of its ancestors
	AddChild(child Node) error

	// RemoveChild detaches a direct child. The child keeps its subtree.
	//
	// Parameters:
	//   - child: the node to detach
	//
	// Returns:
	//   - bool: true if child was attached to this node
	RemoveChild(child Node) bool

	Position() mgl32.Vec3
	SetPosition(pos mgl32.Vec3)
	Rotation() mgl32.Quat
	SetRotation(rot mgl32.Quat)
	Scale() mgl32.Vec3
	SetScale(scale mgl32.Vec3)

	// SetLocalMatrix replaces the local matrix, bypassing position, rotation and scale until one
	// of them is set again.
	SetLocalMatrix(m mgl32.Mat4)

	// LocalMatrix returns translation * rotation * scale, rebuilt only when one of them changed.
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns parent.WorldMatrix() * LocalMatrix(), recomputed only while the node
	// is flagged FlagWorldDirty.
	WorldMatrix() mgl32.Mat4

	// WorldRecomputes returns how many times the world matrix has been recomputed.
	WorldRecomputes() int

	// Duplicate copies the name, flags and local transform of src onto this node. Variant
	// specific data is copied when src is of the same variant. The hierarchy is not copied.
	Duplicate(src Node)

	base() *Frame
}
