// Package gl41 implements device.CoreNative on an OpenGL 4.1 core profile context.
package gl41

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/glstate"
	"github.com/go-gl/gl/v4.1-core/gl"
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

	// samplers holds one sampler object per texture unit, created by Init.
	samplers [device.MaxTextureSlots]uint32
	units    [device.MaxTextureSlots]uint32
	buffers  map[uint32]uint32

	// defaultVAO stands in for VAO 0, which a core profile cannot draw or bind element buffers on.
	defaultVAO uint32
}

var _ device.CoreNative = &nativeImpl{}

// New returns the OpenGL 4.1 core native. The context must be current on the calling thread when
// Init and every later call run.
//
// Parameters:
//   - swapper: the window owning the context
//
// Returns:
//   - device.CoreNative: the native binding
func New(swapper Swapper) device.CoreNative {
	return &nativeImpl{
		swapper: swapper,
		regs:    glstate.New(false),
		buffers: make(map[uint32]uint32),
	}
}

func (n *nativeImpl) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl41: %w", err)
	}
	device.Logger().Info("opengl context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	gl.GenVertexArrays(1, &n.defaultVAO)
	gl.BindVertexArray(n.defaultVAO)

	gl.GenSamplers(int32(len(n.samplers)), &n.samplers[0])
	for unit, s := range n.samplers {
		gl.BindSampler(uint32(unit), s)
	}
	n.regs.ApplyAll(n.sink)
	return nil
}

func (n *nativeImpl) Destroy() {
	for unit := range n.samplers {
		gl.BindSampler(uint32(unit), 0)
	}
	gl.DeleteSamplers(int32(len(n.samplers)), &n.samplers[0])
	gl.BindVertexArray(0)
	gl.DeleteVertexArrays(1, &n.defaultVAO)
	gl.UseProgram(0)
}

func (n *nativeImpl) CreateTexture(upload device.GLTextureUpload, pixels []byte) (uint32, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, fmt.Errorf("gl41: glGenTextures returned 0")
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(upload.MaxLevel))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(upload.Width), int32(upload.Height), 0,
		upload.PixelFormat, gl.UNSIGNED_BYTE, ptr(pixels))
	if upload.GenerateMips {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

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

func (n *nativeImpl) BindTexture(unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, tex)
	n.units[unit] = tex
}

// SetSamplerParameter writes to the unit's sampler object. The base level is texture state and
// goes to the texture bound on the unit.
func (n *nativeImpl) SetSamplerParameter(unit int, pname, value uint32) {
	s := n.samplers[unit]
	switch pname {
	case device.GLTextureBaseLevel:
		if n.units[unit] == 0 {
			return
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.TexParameteri(gl.TEXTURE_2D, pname, int32(value))
	case device.GLTextureBorderColor:
		r, g, b, a := device.ValueColor(value)
		c := [4]float32{r, g, b, a}
		gl.SamplerParameterfv(s, pname, &c[0])
	case device.GLTextureLodBias:
		gl.SamplerParameterf(s, pname, device.ValueFloat(value))
	case device.GLTextureMaxAnisotropy:
		gl.SamplerParameterf(s, pname, float32(value))
	default:
		gl.SamplerParameteri(s, pname, int32(value))
	}
}

func (n *nativeImpl) CreateBuffer(target uint32, data []byte, size int, usage uint32) (uint32, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, fmt.Errorf("gl41: glGenBuffers returned 0")
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

func (n *nativeImpl) DrawElementsBaseVertex(count, indexByteOffset, baseVertex int) {
	gl.DrawElementsBaseVertex(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, gl.PtrOffset(indexByteOffset), int32(baseVertex))
}

func (n *nativeImpl) ReadPixels(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func (n *nativeImpl) SwapBuffers() {
	n.swapper.SwapBuffers()
}

func (n *nativeImpl) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("gl41: vertex shader: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		return 0, fmt.Errorf("gl41: fragment shader: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetProgramInfoLog(program, length, nil, gl.Str(log))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("gl41: link: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csrc, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var length int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
		log := strings.Repeat("\x00", int(length+1))
		gl.GetShaderInfoLog(shader, length, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func (n *nativeImpl) UseProgram(program uint32)    { gl.UseProgram(program) }
func (n *nativeImpl) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (n *nativeImpl) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (n *nativeImpl) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (n *nativeImpl) Uniform1i(location int32, v int32)      { gl.Uniform1i(location, v) }
func (n *nativeImpl) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (n *nativeImpl) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (n *nativeImpl) BindVertexArray(vao uint32) {
	if vao == 0 {
		vao = n.defaultVAO
	}
	gl.BindVertexArray(vao)
}

func (n *nativeImpl) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (n *nativeImpl) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, typ, normalized, int32(stride), uintptr(offset))
}

func (n *nativeImpl) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

// ptr is gl.Ptr that maps an empty upload to NULL.
func ptr(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}
