// Package gl21 implements device.LegacyNative on an OpenGL 2.1 compatibility context.
package gl21

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/glstate"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Swapper presents the back buffer of the context's window.
type Swapper interface {
	SwapBuffers()
}

type nativeImpl struct {
	swapper Swapper
	regs    *glstate.Registers
	sink    sink

	units   [device.MaxTextureSlots]uint32
	buffers map[uint32]uint32
	arrays  []device.ClientArray
}

var _ device.LegacyNative = &nativeImpl{}

// New returns the OpenGL 2.1 native. The context must be current on the calling thread when Init
// and every later call run.
//
// Parameters:
//   - swapper: the window owning the context
//
// Returns:
//   - device.LegacyNative: the native binding
func New(swapper Swapper) device.LegacyNative {
	return &nativeImpl{
		swapper: swapper,
		regs:    glstate.New(true),
		buffers: make(map[uint32]uint32),
	}
}

func (n *nativeImpl) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl21: %w", err)
	}
	device.Logger().Info("opengl context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.Fogi(gl.FOG_MODE, gl.LINEAR)
	n.regs.ApplyAll(n.sink)
	return nil
}

func (n *nativeImpl) Destroy() {
	n.SetClientArrays(nil)
	for unit := range n.units {
		n.BindTexture(unit, 0)
	}
}

func (n *nativeImpl) CreateTexture(upload device.GLTextureUpload, pixels []byte) (uint32, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, fmt.Errorf("gl21: glGenTextures returned 0")
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(upload.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(upload.MagFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(upload.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(upload.Wrap))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(upload.MaxLevel))
	if upload.GenerateMips {
		gl.TexParameteri(gl.TEXTURE_2D, gl.GENERATE_MIPMAP, gl.TRUE)
	}

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(upload.Width), int32(upload.Height), 0,
		upload.PixelFormat, gl.UNSIGNED_BYTE, ptr(pixels))

	gl.BindTexture(gl.TEXTURE_2D, n.units[0])
	return tex, nil
}

func (n *nativeImpl) DeleteTexture(tex uint32) {
	for unit, bound := range n.units {
		if bound == tex {
			n.units[unit] = 0
		}
	}
	gl.DeleteTextures(1, &tex)
}

// BindTexture also toggles fixed-function texturing on the unit.
func (n *nativeImpl) BindTexture(unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, tex)
	if tex != 0 {
		gl.Enable(gl.TEXTURE_2D)
	} else {
		gl.Disable(gl.TEXTURE_2D)
	}
	n.units[unit] = tex
}

// SetSamplerParameter writes to the texture bound on the unit, GL 2.1 has no sampler objects.
// Parameters for an empty unit are dropped, the adapter reapplies them on bind.
func (n *nativeImpl) SetSamplerParameter(unit int, pname, value uint32) {
	if n.units[unit] == 0 {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	switch pname {
	case device.GLTextureBorderColor:
		r, g, b, a := device.ValueColor(value)
		c := [4]float32{r, g, b, a}
		gl.TexParameterfv(gl.TEXTURE_2D, pname, &c[0])
	case device.GLTextureLodBias:
		gl.TexParameterf(gl.TEXTURE_2D, pname, device.ValueFloat(value))
	case device.GLTextureMaxAnisotropy:
		gl.TexParameterf(gl.TEXTURE_2D, pname, float32(value))
	default:
		gl.TexParameteri(gl.TEXTURE_2D, pname, int32(value))
	}
}

func (n *nativeImpl) CreateBuffer(target uint32, data []byte, size int, usage uint32) (uint32, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, fmt.Errorf("gl21: glGenBuffers returned 0")
	}
	if len(data) < size {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}
	gl.BindBuffer(target, buf)
	gl.BufferData(target, size, ptr(data), usage)
	gl.BindBuffer(target, n.buffers[target])
	return buf, nil
}

func (n *nativeImpl) BufferSubData(target, buf uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(target, buf)
	gl.BufferSubData(target, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(target, n.buffers[target])
}

func (n *nativeImpl) DeleteBuffer(buf uint32) {
	for target, bound := range n.buffers {
		if bound == buf {
			n.buffers[target] = 0
		}
	}
	gl.DeleteBuffers(1, &buf)
}

func (n *nativeImpl) BindBuffer(target, buf uint32) {
	gl.BindBuffer(target, buf)
	n.buffers[target] = buf
}

func (n *nativeImpl) SetRenderState(token, value uint32) { n.regs.Set(n.sink, token, value) }
func (n *nativeImpl) RenderState(token uint32) uint32    { return n.regs.Get(token) }

func (n *nativeImpl) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Clear resets the planes regardless of the current write masks.
func (n *nativeImpl) Clear(mask uint32, r, g, b float32) {
	gl.ClearColor(r, g, b, 1)
	gl.ClearDepth(1)
	gl.ClearStencil(0)
	gl.DepthMask(true)
	gl.ColorMask(true, true, true, true)
	gl.StencilMask(0xFFFFFFFF)

	gl.Clear(mask)

	w := n.regs.Get(device.GLColorWriteMask)
	gl.DepthMask(n.regs.Get(device.GLDepthWriteMask) != 0)
	gl.ColorMask(w&device.ColorWriteRed != 0, w&device.ColorWriteGreen != 0,
		w&device.ColorWriteBlue != 0, w&device.ColorWriteAlpha != 0)
	gl.StencilMask(n.regs.Get(device.GLStencilWriteMask))
}

func (n *nativeImpl) DrawElements(count, indexByteOffset int) {
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(indexByteOffset))
}

func (n *nativeImpl) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (n *nativeImpl) SwapBuffers() {
	n.swapper.SwapBuffers()
}

func (n *nativeImpl) LoadMatrix(mode uint32, m mgl32.Mat4) {
	gl.MatrixMode(mode)
	gl.LoadMatrixf(&m[0])
}

func (n *nativeImpl) SetClientArrays(arrays []device.ClientArray) {
	for _, a := range n.arrays {
		if a.Kind == device.ArrayTexCoord {
			gl.ClientActiveTexture(gl.TEXTURE0 + uint32(a.Unit))
		}
		gl.DisableClientState(clientState(a.Kind))
	}

	for _, a := range arrays {
		offset := gl.PtrOffset(a.Offset)
		switch a.Kind {
		case device.ArrayVertex:
			gl.VertexPointer(a.Size, a.Type, int32(a.Stride), offset)
		case device.ArrayNormal:
			gl.NormalPointer(a.Type, int32(a.Stride), offset)
		case device.ArrayColor:
			gl.ColorPointer(a.Size, a.Type, int32(a.Stride), offset)
		case device.ArrayTexCoord:
			gl.ClientActiveTexture(gl.TEXTURE0 + uint32(a.Unit))
			gl.TexCoordPointer(a.Size, a.Type, int32(a.Stride), offset)
		}
		gl.EnableClientState(clientState(a.Kind))
	}
	n.arrays = append(n.arrays[:0], arrays...)
}

func clientState(kind device.ClientArrayKind) uint32 {
	switch kind {
	case device.ArrayNormal:
		return gl.NORMAL_ARRAY
	case device.ArrayColor:
		return gl.COLOR_ARRAY
	case device.ArrayTexCoord:
		return gl.TEXTURE_COORD_ARRAY
	default:
		return gl.VERTEX_ARRAY
	}
}

// ptr is gl.Ptr that maps an empty upload to NULL.
func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
