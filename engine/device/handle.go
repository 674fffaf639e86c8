package device

import "fmt"

// ResourceKind identifies the type of GPU object a ResourceHandle refers to.
type ResourceKind int

const (
	// KindTexture is a 2-D image resource.
	KindTexture ResourceKind = iota
	// KindVertexBuffer is a vertex data buffer. Its handle payload also carries the stride.
	KindVertexBuffer
	// KindIndexBuffer is a 32-bit index buffer.
	KindIndexBuffer
	// KindVertexLayout is a vertex layout (declaration / VAO / pipeline vertex state).
	KindVertexLayout
)

func (k ResourceKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindVertexBuffer:
		return "vertex buffer"
	case KindIndexBuffer:
		return "index buffer"
	case KindVertexLayout:
		return "vertex layout"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// resource is the device-owned record behind a ResourceHandle. Every copy of a handle shares
// the same record, so releasing it through one copy invalidates all of them.
type resource struct {
	owner    *device
	id       uint64
	kind     ResourceKind
	native   any
	released bool

	// texture
	format TextureFormat
	width  int
	height int
	levels int

	// buffers
	count int
	stride int
	usage  BufferUsage

	// vertex layout
	elements []VertexElement
}

// ResourceHandle is an opaque, copyable capability token referencing a GPU object owned by the
// device that created it. The zero value is the null handle.
type ResourceHandle struct {
	kind ResourceKind
	res  *resource
}

// Kind returns the resource kind of the handle. The null handle reports KindTexture.
func (h ResourceHandle) Kind() ResourceKind {
	return h.kind
}

// IsNull reports whether the handle refers to no live resource. A handle becomes null once
// its resource has been destroyed through any copy.
func (h ResourceHandle) IsNull() bool {
	return h.res == nil || h.res.released
}

// ID returns a device-unique identifier for the resource, or 0 for the null handle.
func (h ResourceHandle) ID() uint64 {
	if h.IsNull() {
		return 0
	}
	return h.res.id
}

// Stride returns the vertex stride for vertex buffers and vertex layouts, 0 otherwise.
func (h ResourceHandle) Stride() int {
	if h.IsNull() {
		return 0
	}
	return h.res.stride
}

// Size returns the texture dimensions, or zeros for other kinds and the null handle.
func (h ResourceHandle) Size() (width, height int) {
	if h.IsNull() || h.kind != KindTexture {
		return 0, 0
	}
	return h.res.width, h.res.height
}

// Format returns the pixel format of a texture. Other kinds and the null handle report the zero
// format, so check Kind first when it matters.
func (h ResourceHandle) Format() TextureFormat {
	if h.IsNull() || h.kind != KindTexture {
		return 0
	}
	return h.res.format
}

// MipLevels returns the number of mip levels a texture was created with, after resolving a
// requested 0 to the full chain. Other kinds and the null handle report 0.
func (h ResourceHandle) MipLevels() int {
	if h.IsNull() || h.kind != KindTexture {
		return 0
	}
	return h.res.levels
}

// Usage returns the usage hint of a vertex buffer. Other kinds and the null handle report UsageStatic.
func (h ResourceHandle) Usage() BufferUsage {
	if h.IsNull() || h.kind != KindVertexBuffer {
		return UsageStatic
	}
	return h.res.usage
}

func (h ResourceHandle) String() string {
	if h.IsNull() {
		return "ResourceHandle(null)"
	}
	return fmt.Sprintf("ResourceHandle(%s #%d)", h.kind, h.res.id)
}
