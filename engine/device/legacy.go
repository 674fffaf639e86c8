package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/go-gl/mathgl/mgl32"
)

// legacyLayout is a vertex layout on the fixed-function pipeline: client arrays are described by
// the elements and re-pointed on every draw.
type legacyLayout struct {
	elements            []VertexElement
	stride              int
	positionTransformed bool
}

// legacyBackend drives the fixed-function OpenGL 2.1 pipeline. Matrices go straight to the GL
// matrix stacks, so no shader program is involved.
type legacyBackend struct {
	glBase
	native LegacyNative

	view  mgl32.Mat4
	proj  mgl32.Mat4
	model mgl32.Mat4

	layout *legacyLayout
}

var _ Backend = &legacyBackend{}

// NewLegacyBackend creates the fixed-function OpenGL 2.1 backend adapter.
//
// Parameters:
//   - native: the GL 2.1 binding, with its context current on the calling thread
//
// Returns:
//   - Backend: the legacy backend
func NewLegacyBackend(native LegacyNative) Backend {
	return &legacyBackend{
		glBase: newGLBase(native, &glStates, "legacy"),
		native: native,
		view:   mgl32.Ident4(),
		proj:   mgl32.Ident4(),
		model:  mgl32.Ident4(),
	}
}

func (b *legacyBackend) Name() string {
	return "legacy"
}

func (b *legacyBackend) Init() error {
	if err := b.native.Init(); err != nil {
		return err
	}
	b.applyMatrices()
	return nil
}

func (b *legacyBackend) Destroy() error {
	b.native.Destroy()
	return nil
}

func (b *legacyBackend) CreateTexture(desc TextureDesc, pixels []byte) (any, error) {
	return b.createTexture(desc, pixels)
}

func (b *legacyBackend) BindTexture(tex any, slot int) error {
	return b.bindTexture(tex, slot)
}

func (b *legacyBackend) ClearTexture(slot int) error {
	return b.clearTexture(slot)
}

func (b *legacyBackend) CreateVertexBuffer(data []byte, size int, usage BufferUsage) (any, error) {
	return b.createBuffer(GLArrayBuffer, data, size, usage)
}

func (b *legacyBackend) CreateIndexBuffer(data []uint32, count int) (any, error) {
	return b.createIndexBuffer(data, count)
}

func (b *legacyBackend) UpdateBuffer(_ ResourceKind, buf any, offset int, data []byte) error {
	return b.updateBuffer(buf, offset, data)
}

func (b *legacyBackend) BindVertexBuffer(buf any, _ int) error {
	return b.bindVertexBuffer(buf)
}

func (b *legacyBackend) BindIndexBuffer(buf any) error {
	return b.bindIndexBuffer(buf)
}

func (b *legacyBackend) CreateVertexLayout(elements []VertexElement, stride int, _ any) (any, error) {
	for _, e := range elements {
		if (e.Usage == UsagePosition || e.Usage == UsagePositionT) && e.UsageIndex == 0 {
			switch e.Type.Scalar() {
			case ScalarFloat32, ScalarInt16, ScalarFloat16:
			default:
				return nil, fmt.Errorf("legacy: position type %s: %w", e.Type, ErrUnsupported)
			}
		}
	}
	return &legacyLayout{
		elements:            elements,
		stride:              stride,
		positionTransformed: HasUsage(elements, UsagePositionT),
	}, nil
}

func (b *legacyBackend) SetVertexLayout(layout any) error {
	l, ok := layout.(*legacyLayout)
	if !ok {
		return fmt.Errorf("legacy: foreign layout %T: %w", layout, ErrInvalidArgument)
	}
	b.layout = l
	b.applyMatrices()
	return nil
}

func (b *legacyBackend) Release(kind ResourceKind, native any) error {
	if kind == KindVertexLayout {
		if b.layout == native {
			b.layout = nil
		}
		return nil
	}
	return b.release(kind, native)
}

func (b *legacyBackend) SetState(id DeviceState, value uint32) error {
	return b.setState(id, value)
}

func (b *legacyBackend) State(id DeviceState) (uint32, error) {
	return b.state(id)
}

func (b *legacyBackend) SetSamplerState(slot int, id SamplerState, value uint32) error {
	return b.setSamplerState(slot, id, value)
}

func (b *legacyBackend) SamplerState(slot int, id SamplerState) (uint32, error) {
	return b.samplerState(slot, id)
}

func (b *legacyBackend) SetViewport(width, height int) error {
	b.setViewport(width, height)
	if b.layout != nil && b.layout.positionTransformed {
		b.applyMatrices()
	}
	return nil
}

func (b *legacyBackend) SetViewProj(view, proj mgl32.Mat4) error {
	b.view, b.proj = view, proj
	b.applyMatrices()
	return nil
}

func (b *legacyBackend) SetModel(model mgl32.Mat4) error {
	b.model = model
	b.applyMatrices()
	return nil
}

// applyMatrices loads the projection and modelview stacks. Pre-transformed layouts get a pixel
// space projection of the current viewport and an identity modelview.
func (b *legacyBackend) applyMatrices() {
	if b.layout != nil && b.layout.positionTransformed {
		b.native.LoadMatrix(GLProjection, common.ScreenSpaceProjection(b.viewportW, b.viewportH))
		b.native.LoadMatrix(GLModelView, mgl32.Ident4())
		return
	}
	b.native.LoadMatrix(GLProjection, b.proj)
	b.native.LoadMatrix(GLModelView, b.view.Mul4(b.model))
}

func (b *legacyBackend) Clear(flags ClearFlags, color mgl32.Vec3) error {
	return b.clear(flags, color)
}

func (b *legacyBackend) BeginScene() error {
	return nil
}

func (b *legacyBackend) Draw(call DrawCall) error {
	if b.layout == nil {
		return fmt.Errorf("legacy: no vertex layout: %w", ErrNullHandle)
	}
	b.native.SetClientArrays(legacyClientArrays(b.layout, call.Stride, call.VertexOffset*call.Stride))
	b.native.DrawElements(call.IndexCount, call.IndexOffset*4)
	return nil
}

func (b *legacyBackend) EndScene() error {
	return nil
}

func (b *legacyBackend) Present() error {
	b.native.SwapBuffers()
	return nil
}

func (b *legacyBackend) ReadPixels() ([]byte, int, int, error) {
	return b.readPixels()
}

// legacyClientArrays maps layout elements to fixed-function arrays. The fixed-function pipeline
// only consumes positions, normals, the first color and texture coordinates; base is added to
// every offset to emulate a base vertex.
func legacyClientArrays(l *legacyLayout, stride, base int) []ClientArray {
	arrays := make([]ClientArray, 0, len(l.elements))
	for _, e := range l.elements {
		a := ClientArray{
			Size:   glAttribSize(e.Type),
			Type:   glScalarTypes[e.Type.Scalar()],
			Stride: stride,
			Offset: base + e.Offset,
		}
		switch {
		case (e.Usage == UsagePosition || e.Usage == UsagePositionT) && e.UsageIndex == 0:
			a.Kind = ArrayVertex
			if e.Usage == UsagePositionT {
				// the fourth component is a reciprocal w, not a homogeneous coordinate
				a.Size = min(a.Size, 3)
			}
		case e.Usage == UsageNormal && e.UsageIndex == 0:
			a.Kind = ArrayNormal
		case e.Usage == UsageColor && e.UsageIndex == 0:
			a.Kind = ArrayColor
		case e.Usage == UsageTexCoord && e.UsageIndex < MaxTextureSlots:
			a.Kind = ArrayTexCoord
			a.Unit = e.UsageIndex
		default:
			continue
		}
		arrays = append(arrays, a)
	}
	return arrays
}
