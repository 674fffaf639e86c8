package device

// TextureFormat is the pixel layout accepted by CreateTexture.
type TextureFormat int

const (
	// FormatRGB is 3 bytes per pixel, red first.
	FormatRGB TextureFormat = iota
	// FormatRGBA is 4 bytes per pixel, red first.
	FormatRGBA
	// FormatBGRA is 4 bytes per pixel, blue first.
	FormatBGRA
)

// BytesPerPixel returns the size of one pixel in bytes, or 0 for unknown formats.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB:
		return 3
	case FormatRGBA, FormatBGRA:
		return 4
	default:
		return 0
	}
}

func (f TextureFormat) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	case FormatBGRA:
		return "BGRA"
	default:
		return "unknown"
	}
}

// BufferUsage is the update-frequency hint for vertex buffers.
type BufferUsage int

const (
	// UsageStatic data is written once and drawn many times.
	UsageStatic BufferUsage = iota
	// UsageDynamic data is rewritten occasionally.
	UsageDynamic
	// UsageStream data is rewritten every frame.
	UsageStream
)

// ClearFlags selects which framebuffer planes Clear resets.
type ClearFlags uint32

const (
	ClearColor ClearFlags = 1 << iota
	ClearDepth
	ClearStencil

	ClearAll = ClearColor | ClearDepth | ClearStencil
)

// TextureDesc describes a texture allocation passed to a Backend.
type TextureDesc struct {
	Format TextureFormat
	Width  int
	Height int
	// MipLevels is the number of levels to allocate. 0 requests a generated full chain.
	MipLevels int
}

// DrawCall describes one indexed triangle-list draw passed to a Backend.
type DrawCall struct {
	VertexCount  int
	IndexCount   int
	VertexOffset int
	IndexOffset  int
	// Stride is the stride of the bound vertex buffer.
	Stride int
}
