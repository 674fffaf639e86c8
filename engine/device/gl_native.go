package device

import "github.com/go-gl/mathgl/mgl32"

// GLTextureUpload is a texture creation request translated to GL terms.
type GLTextureUpload struct {
	Width  int
	Height int
	// PixelFormat is GLRGB, GLRGBA or GLBGRA. The internal format is always RGBA8.
	PixelFormat uint32
	// MaxLevel is the highest mip level index the texture may use.
	MaxLevel int
	// GenerateMips asks the native side to build levels 1..MaxLevel from level 0.
	GenerateMips bool
	MinFilter    uint32
	MagFilter    uint32
	Wrap         uint32
}

// GLNative is the subset of OpenGL used by both GL adapters. Object names are GL names, 0 is
// never a valid object.
//
// Render state registers are written through SetRenderState with these encodings: booleans
// are 0 or 1; enumerations are GL enums; GLAlphaTestRef is 0..255; float registers carry float32
// bits; color registers carry 0xAARRGGBB; GLColorWriteMask carries ColorWrite* bits;
// GLCullFaceMode is 0 for no culling, GLCW to cull clockwise triangles or GLCCW to cull
// counter-clockwise ones. RenderState returns the value last written in the same encoding,
// or the entry from GLDefaultRenderStates.
//
// Sampler parameters use the same encodings: GLTextureBorderColor carries 0xAARRGGBB and
// GLTextureLodBias float32 bits.
type GLNative interface {
	Init() error
	Destroy()

	CreateTexture(upload GLTextureUpload, pixels []byte) (uint32, error)
	DeleteTexture(tex uint32)
	BindTexture(unit int, tex uint32)
	SetSamplerParameter(unit int, pname, value uint32)

	CreateBuffer(target uint32, data []byte, size int, usage uint32) (uint32, error)
	BufferSubData(target, buf uint32, offset int, data []byte)
	DeleteBuffer(buf uint32)
	BindBuffer(target, buf uint32)

	SetRenderState(token, value uint32)
	RenderState(token uint32) uint32

	Viewport(width, height int)
	Clear(mask uint32, r, g, b float32)
	DrawElements(count, indexByteOffset int)
	// ReadPixels returns RGBA rows bottom row first, the GL convention.
	ReadPixels(width, height int) []byte
	SwapBuffers()
}

// ClientArrayKind selects a fixed-function vertex array.
type ClientArrayKind int

const (
	ArrayVertex ClientArrayKind = iota
	ArrayNormal
	ArrayColor
	ArrayTexCoord
)

// ClientArray describes one enabled fixed-function vertex array inside the bound array buffer.
type ClientArray struct {
	Kind ClientArrayKind
	// Unit is the texture unit of a texture coordinate array.
	Unit   int
	Size   int32
	Type   uint32
	Stride int
	// Offset is the byte offset of the first element inside the array buffer.
	Offset int
}

// LegacyNative is the fixed-function OpenGL 2.1 surface used by the legacy adapter.
type LegacyNative interface {
	GLNative

	// LoadMatrix replaces the top of the GLProjection or GLModelView stack.
	LoadMatrix(mode uint32, m mgl32.Mat4)
	// SetClientArrays enables exactly the given arrays and disables every other one.
	SetClientArrays(arrays []ClientArray)
}

// CoreNative is the OpenGL 4.1 core profile surface used by the core adapter.
type CoreNative interface {
	GLNative

	CreateProgram(vertexSrc, fragmentSrc string) (uint32, error)
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	// UniformLocation returns -1 for uniforms the linker removed.
	UniformLocation(program uint32, name string) int32
	UniformMatrix4(location int32, m mgl32.Mat4)
	Uniform1i(location int32, v int32)
	Uniform2f(location int32, x, y float32)

	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int)
	EnableVertexAttribArray(index uint32)

	DrawElementsBaseVertex(count, indexByteOffset, baseVertex int)
}
