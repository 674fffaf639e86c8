package device

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Fixed attribute locations of the built-in program.
const (
	attribPosition uint32 = 0
	attribNormal   uint32 = 1
	attribColor    uint32 = 2
	attribTexCoord uint32 = 3
)

const coreVertexShader = `#version 410 core
layout(location = 0) in vec4 a_position;
layout(location = 1) in vec3 a_normal;
layout(location = 2) in vec4 a_color;
layout(location = 3) in vec2 a_texcoord;

uniform mat4 u_view;
uniform mat4 u_proj;
uniform mat4 u_model;
uniform bool u_positionTransformed;
uniform vec2 u_viewport;

out vec4 v_color;
out vec2 v_texcoord;

void main() {
	if (u_positionTransformed) {
		gl_Position = vec4(a_position.x / u_viewport.x * 2.0 - 1.0,
			1.0 - a_position.y / u_viewport.y * 2.0,
			a_position.z * 2.0 - 1.0,
			1.0);
	} else {
		gl_Position = u_proj * u_view * u_model * vec4(a_position.xyz, 1.0);
	}
	v_color = a_color;
	v_texcoord = a_texcoord;
}
`

const coreFragmentShader = `#version 410 core
in vec4 v_color;
in vec2 v_texcoord;

uniform sampler2D u_texture0;
uniform bool u_useTexture;
uniform bool u_hasColor;

out vec4 fragColor;

void main() {
	vec4 color = u_hasColor ? v_color : vec4(1.0);
	if (u_useTexture) {
		color *= texture(u_texture0, v_texcoord);
	}
	fragColor = color;
}
`

type coreLayout struct {
	vao                 uint32
	positionTransformed bool
	hasColor            bool

	elements []VertexElement
	stride   int
	// buffer is the vertex buffer the VAO attribute pointers currently read from.
	buffer *glBuffer
}

type coreUniforms struct {
	view                int32
	proj                int32
	model               int32
	positionTransformed int32
	viewport            int32
	texture0            int32
	useTexture          int32
	hasColor            int32
}

// coreBackend drives an OpenGL 4.1 core profile context through one built-in shader program.
type coreBackend struct {
	glBase
	native CoreNative

	program  uint32
	uniforms coreUniforms
	layout   *coreLayout
}

var _ Backend = &coreBackend{}

// NewCoreBackend creates the OpenGL 4.1 core profile backend adapter.
//
// Parameters:
//   - native: the GL 4.1 binding, with its context current on the calling thread
//
// Returns:
//   - Backend: the core backend
func NewCoreBackend(native CoreNative) Backend {
	return &coreBackend{
		glBase: newGLBase(native, &glCoreStates, "core"),
		native: native,
	}
}

func (b *coreBackend) Name() string {
	return "core"
}

func (b *coreBackend) Init() error {
	if err := b.native.Init(); err != nil {
		return err
	}
	program, err := b.native.CreateProgram(coreVertexShader, coreFragmentShader)
	if err != nil {
		b.native.Destroy()
		return fmt.Errorf("core: failed to build program: %w", err)
	}
	b.program = program
	b.native.UseProgram(program)

	loc := func(name string) int32 { return b.native.UniformLocation(program, name) }
	b.uniforms = coreUniforms{
		view:                loc("u_view"),
		proj:                loc("u_proj"),
		model:               loc("u_model"),
		positionTransformed: loc("u_positionTransformed"),
		viewport:            loc("u_viewport"),
		texture0:            loc("u_texture0"),
		useTexture:          loc("u_useTexture"),
		hasColor:            loc("u_hasColor"),
	}
	ident := mgl32.Ident4()
	b.native.UniformMatrix4(b.uniforms.view, ident)
	b.native.UniformMatrix4(b.uniforms.proj, ident)
	b.native.UniformMatrix4(b.uniforms.model, ident)
	b.native.Uniform1i(b.uniforms.texture0, 0)
	b.native.Uniform1i(b.uniforms.useTexture, 0)
	return nil
}

func (b *coreBackend) Destroy() error {
	if b.program != 0 {
		b.native.DeleteProgram(b.program)
		b.program = 0
	}
	b.native.Destroy()
	return nil
}

func (b *coreBackend) CreateTexture(desc TextureDesc, pixels []byte) (any, error) {
	return b.createTexture(desc, pixels)
}

func (b *coreBackend) BindTexture(tex any, slot int) error {
	if err := b.bindTexture(tex, slot); err != nil {
		return err
	}
	if slot == 0 {
		b.native.Uniform1i(b.uniforms.useTexture, 1)
	}
	return nil
}

func (b *coreBackend) ClearTexture(slot int) error {
	if slot == 0 {
		b.native.Uniform1i(b.uniforms.useTexture, 0)
	}
	return b.clearTexture(slot)
}

func (b *coreBackend) CreateVertexBuffer(data []byte, size int, usage BufferUsage) (any, error) {
	return b.createBuffer(GLArrayBuffer, data, size, usage)
}

func (b *coreBackend) CreateIndexBuffer(data []uint32, count int) (any, error) {
	return b.createIndexBuffer(data, count)
}

func (b *coreBackend) UpdateBuffer(_ ResourceKind, buf any, offset int, data []byte) error {
	return b.updateBuffer(buf, offset, data)
}

func (b *coreBackend) BindVertexBuffer(buf any, _ int) error {
	return b.bindVertexBuffer(buf)
}

func (b *coreBackend) BindIndexBuffer(buf any) error {
	return b.bindIndexBuffer(buf)
}

// CreateVertexLayout records the attribute pointers in a new VAO. The vertex buffer must be bound
// while the pointers are captured.
func (b *coreBackend) CreateVertexLayout(elements []VertexElement, stride int, vb any) (any, error) {
	buf, ok := vb.(*glBuffer)
	if !ok {
		return nil, fmt.Errorf("core: foreign buffer %T: %w", vb, ErrInvalidArgument)
	}
	vao := b.native.CreateVertexArray()
	if vao == 0 {
		return nil, fmt.Errorf("core: vertex array name is 0")
	}
	b.native.BindVertexArray(vao)

	l := &coreLayout{vao: vao, elements: elements, stride: stride}
	for _, e := range elements {
		loc, ok := coreAttribLocation(e)
		if !ok {
			continue
		}
		b.native.EnableVertexAttribArray(loc)
		switch loc {
		case attribColor:
			l.hasColor = true
		case attribPosition:
			l.positionTransformed = e.Usage == UsagePositionT
		}
	}
	b.pointAttribs(l, buf)

	if b.layout != nil {
		b.native.BindVertexArray(b.layout.vao)
	} else {
		b.native.BindVertexArray(0)
	}
	if b.vb != nil {
		b.native.BindBuffer(GLArrayBuffer, b.vb.id)
	} else {
		b.native.BindBuffer(GLArrayBuffer, 0)
	}
	return l, nil
}

// pointAttribs aims the attribute pointers of l at buf. The VAO of l must be bound.
func (b *coreBackend) pointAttribs(l *coreLayout, buf *glBuffer) {
	b.native.BindBuffer(GLArrayBuffer, buf.id)
	for _, e := range l.elements {
		if loc, ok := coreAttribLocation(e); ok {
			b.native.VertexAttribPointer(loc, glAttribSize(e.Type), glScalarTypes[e.Type.Scalar()], e.Type.Normalized(), l.stride, e.Offset)
		}
	}
	l.buffer = buf
}

func (b *coreBackend) SetVertexLayout(layout any) error {
	l, ok := layout.(*coreLayout)
	if !ok {
		return fmt.Errorf("core: foreign layout %T: %w", layout, ErrInvalidArgument)
	}
	b.native.BindVertexArray(l.vao)
	b.native.Uniform1i(b.uniforms.positionTransformed, boolInt(l.positionTransformed))
	b.native.Uniform1i(b.uniforms.hasColor, boolInt(l.hasColor))
	b.layout = l
	return nil
}

func (b *coreBackend) Release(kind ResourceKind, native any) error {
	if kind != KindVertexLayout {
		return b.release(kind, native)
	}
	l, ok := native.(*coreLayout)
	if !ok {
		return fmt.Errorf("core: foreign layout %T: %w", native, ErrInvalidArgument)
	}
	if b.layout == l {
		b.native.BindVertexArray(0)
		b.layout = nil
	}
	b.native.DeleteVertexArray(l.vao)
	return nil
}

func (b *coreBackend) SetState(id DeviceState, value uint32) error {
	return b.setState(id, value)
}

func (b *coreBackend) State(id DeviceState) (uint32, error) {
	return b.state(id)
}

func (b *coreBackend) SetSamplerState(slot int, id SamplerState, value uint32) error {
	return b.setSamplerState(slot, id, value)
}

func (b *coreBackend) SamplerState(slot int, id SamplerState) (uint32, error) {
	return b.samplerState(slot, id)
}

func (b *coreBackend) SetViewport(width, height int) error {
	b.setViewport(width, height)
	b.native.Uniform2f(b.uniforms.viewport, float32(width), float32(height))
	return nil
}

func (b *coreBackend) SetViewProj(view, proj mgl32.Mat4) error {
	b.native.UniformMatrix4(b.uniforms.view, view)
	b.native.UniformMatrix4(b.uniforms.proj, proj)
	return nil
}

func (b *coreBackend) SetModel(model mgl32.Mat4) error {
	b.native.UniformMatrix4(b.uniforms.model, model)
	return nil
}

func (b *coreBackend) Clear(flags ClearFlags, color mgl32.Vec3) error {
	return b.clear(flags, color)
}

func (b *coreBackend) BeginScene() error {
	return nil
}

func (b *coreBackend) Draw(call DrawCall) error {
	if b.layout == nil {
		return fmt.Errorf("core: no vertex layout: %w", ErrNullHandle)
	}
	if b.ib == nil {
		return fmt.Errorf("core: no index buffer: %w", ErrNullHandle)
	}
	if b.vb == nil {
		return fmt.Errorf("core: no vertex buffer: %w", ErrNullHandle)
	}
	// attribute pointers are VAO state and keep reading the buffer they were captured with
	if b.layout.buffer != b.vb {
		b.pointAttribs(b.layout, b.vb)
	}
	// the element array binding is VAO state
	b.native.BindBuffer(GLElementArrayBuffer, b.ib.id)
	b.native.DrawElementsBaseVertex(call.IndexCount, call.IndexOffset*4, call.VertexOffset)
	return nil
}

func (b *coreBackend) EndScene() error {
	return nil
}

func (b *coreBackend) Present() error {
	b.native.SwapBuffers()
	return nil
}

func (b *coreBackend) ReadPixels() ([]byte, int, int, error) {
	return b.readPixels()
}

// coreAttribLocation returns the built-in program location fed by an element.
func coreAttribLocation(e VertexElement) (uint32, bool) {
	if e.UsageIndex != 0 {
		return 0, false
	}
	switch e.Usage {
	case UsagePosition, UsagePositionT:
		return attribPosition, true
	case UsageNormal:
		return attribNormal, true
	case UsageColor:
		return attribColor, true
	case UsageTexCoord:
		return attribTexCoord, true
	default:
		return 0, false
	}
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
