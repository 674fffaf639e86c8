package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/go-gl/mathgl/mgl32"
)

type glTexture struct {
	id     uint32
	levels int
}

type glBuffer struct {
	id     uint32
	target uint32
	size   int
}

// glBase holds the state and operations shared by the legacy and core adapters.
type glBase struct {
	native  GLNative
	states  *[StateCount]stateMapping
	profile string

	samplers [MaxTextureSlots][SamplerStateCount]uint32
	textures [MaxTextureSlots]*glTexture

	vb *glBuffer
	ib *glBuffer

	viewportW int
	viewportH int
}

func newGLBase(native GLNative, states *[StateCount]stateMapping, profile string) glBase {
	b := glBase{native: native, states: states, profile: profile}
	for slot := range b.samplers {
		b.samplers[slot] = samplerDefaults
	}
	return b
}

func (b *glBase) createTexture(desc TextureDesc, pixels []byte) (*glTexture, error) {
	full := common.MipLevelCount(desc.Width, desc.Height)
	levels := desc.MipLevels
	if levels == 0 || levels > full {
		levels = full
	}
	upload := GLTextureUpload{
		Width:        desc.Width,
		Height:       desc.Height,
		PixelFormat:  glPixelFormat(desc.Format),
		MaxLevel:     levels - 1,
		GenerateMips: levels > 1,
		MinFilter:    GLNearest,
		MagFilter:    GLLinear,
		Wrap:         GLRepeat,
	}
	if upload.GenerateMips {
		upload.MinFilter = GLLinearMipmapLinear
	}
	id, err := b.native.CreateTexture(upload, pixels)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("%s: texture name is 0", b.profile)
	}
	return &glTexture{id: id, levels: levels}, nil
}

func (b *glBase) bindTexture(tex any, slot int) error {
	t, ok := tex.(*glTexture)
	if !ok {
		return fmt.Errorf("%s: foreign texture %T: %w", b.profile, tex, ErrInvalidArgument)
	}
	b.native.BindTexture(slot, t.id)
	b.textures[slot] = t
	b.applySampler(slot)
	return nil
}

func (b *glBase) clearTexture(slot int) error {
	b.native.BindTexture(slot, 0)
	b.textures[slot] = nil
	return nil
}

func (b *glBase) createBuffer(target uint32, data []byte, size int, usage BufferUsage) (*glBuffer, error) {
	id, err := b.native.CreateBuffer(target, data, size, glBufferUsage(usage))
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, fmt.Errorf("%s: buffer name is 0", b.profile)
	}
	return &glBuffer{id: id, target: target, size: size}, nil
}

func (b *glBase) createIndexBuffer(data []uint32, count int) (*glBuffer, error) {
	return b.createBuffer(GLElementArrayBuffer, common.SliceToBytes(data), count*4, UsageStatic)
}

func (b *glBase) updateBuffer(buf any, offset int, data []byte) error {
	gb, ok := buf.(*glBuffer)
	if !ok {
		return fmt.Errorf("%s: foreign buffer %T: %w", b.profile, buf, ErrInvalidArgument)
	}
	b.native.BufferSubData(gb.target, gb.id, offset, data)
	return nil
}

func (b *glBase) bindVertexBuffer(buf any) error {
	gb, ok := buf.(*glBuffer)
	if !ok {
		return fmt.Errorf("%s: foreign buffer %T: %w", b.profile, buf, ErrInvalidArgument)
	}
	b.native.BindBuffer(GLArrayBuffer, gb.id)
	b.vb = gb
	return nil
}

func (b *glBase) bindIndexBuffer(buf any) error {
	gb, ok := buf.(*glBuffer)
	if !ok {
		return fmt.Errorf("%s: foreign buffer %T: %w", b.profile, buf, ErrInvalidArgument)
	}
	b.native.BindBuffer(GLElementArrayBuffer, gb.id)
	b.ib = gb
	return nil
}

// release frees textures and buffers. Layouts are released by the adapters.
func (b *glBase) release(kind ResourceKind, native any) error {
	switch kind {
	case KindTexture:
		t, ok := native.(*glTexture)
		if !ok {
			return fmt.Errorf("%s: foreign texture %T: %w", b.profile, native, ErrInvalidArgument)
		}
		for slot, bound := range b.textures {
			if bound == t {
				b.native.BindTexture(slot, 0)
				b.textures[slot] = nil
			}
		}
		b.native.DeleteTexture(t.id)
	case KindVertexBuffer, KindIndexBuffer:
		gb, ok := native.(*glBuffer)
		if !ok {
			return fmt.Errorf("%s: foreign buffer %T: %w", b.profile, native, ErrInvalidArgument)
		}
		if b.vb == gb {
			b.vb = nil
		}
		if b.ib == gb {
			b.ib = nil
		}
		b.native.DeleteBuffer(gb.id)
	default:
		return fmt.Errorf("%s: cannot release %s: %w", b.profile, kind, ErrKindMismatch)
	}
	return nil
}

func (b *glBase) setState(id DeviceState, value uint32) error {
	m := b.states[id]
	if m.status != stateMapped {
		return fmt.Errorf("%s: %s: %w", b.profile, id, ErrUnregisteredState)
	}
	native, err := glAliases.toNative(id.Class(), value)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", b.profile, id, err)
	}
	b.native.SetRenderState(m.token, native)
	return nil
}

func (b *glBase) state(id DeviceState) (uint32, error) {
	m := b.states[id]
	if m.status != stateMapped {
		return 0, fmt.Errorf("%s: %s: %w", b.profile, id, ErrUnregisteredState)
	}
	return glAliases.toGeneric(id.Class(), b.native.RenderState(m.token))
}

func (b *glBase) setSamplerState(slot int, id SamplerState, value uint32) error {
	if glSamplerStates[id].status != stateMapped {
		return fmt.Errorf("%s: sampler %s: %w", b.profile, id, ErrUnregisteredState)
	}
	b.samplers[slot][id] = value
	b.applySamplerState(slot, id)
	return nil
}

func (b *glBase) samplerState(slot int, id SamplerState) (uint32, error) {
	if glSamplerStates[id].status != stateMapped {
		return 0, fmt.Errorf("%s: sampler %s: %w", b.profile, id, ErrUnregisteredState)
	}
	return b.samplers[slot][id], nil
}

// applySampler pushes every mapped sampler state of a slot to the native side.
func (b *glBase) applySampler(slot int) {
	for id := SamplerState(0); id < SamplerStateCount; id++ {
		if id == SamplerMipFilter || glSamplerStates[id].status != stateMapped {
			continue
		}
		b.applySamplerState(slot, id)
	}
}

func (b *glBase) applySamplerState(slot int, id SamplerState) {
	s := &b.samplers[slot]
	pname := glSamplerStates[id].token
	value := s[id]
	switch id {
	case SamplerMinFilter, SamplerMipFilter:
		levels := 1
		if t := b.textures[slot]; t != nil {
			levels = t.levels
		}
		value = glMinFilter(s[SamplerMinFilter], s[SamplerMipFilter], levels)
	case SamplerMagFilter:
		value = glMagFilter(value)
	case SamplerAddressU, SamplerAddressV, SamplerAddressW:
		value, _ = glAliases.toNative(ClassAddress, value)
	case SamplerMaxAnisotropy:
		value = max(value, 1)
	}
	b.native.SetSamplerParameter(slot, pname, value)
}

func (b *glBase) setViewport(width, height int) {
	b.native.Viewport(width, height)
	b.viewportW, b.viewportH = width, height
}

func (b *glBase) clear(flags ClearFlags, color mgl32.Vec3) error {
	var mask uint32
	if flags&ClearColor != 0 {
		mask |= GLColorBufferBit
	}
	if flags&ClearDepth != 0 {
		mask |= GLDepthBufferBit
	}
	if flags&ClearStencil != 0 {
		mask |= GLStencilBufferBit
	}
	b.native.Clear(mask, color.X(), color.Y(), color.Z())
	return nil
}

func (b *glBase) readPixels() ([]byte, int, int, error) {
	w, h := b.viewportW, b.viewportH
	if w <= 0 || h <= 0 {
		return nil, 0, 0, fmt.Errorf("%s: viewport not set: %w", b.profile, ErrInvalidArgument)
	}
	pixels := b.native.ReadPixels(w, h)
	if len(pixels) != w*h*4 {
		return nil, 0, 0, fmt.Errorf("%s: read back %d bytes for %dx%d", b.profile, len(pixels), w, h)
	}
	return flipRows(pixels, w*4), w, h, nil
}

// flipRows reverses the row order of a tightly packed image in place.
func flipRows(pixels []byte, rowBytes int) []byte {
	rows := len(pixels) / rowBytes
	tmp := make([]byte, rowBytes)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pixels[top*rowBytes : (top+1)*rowBytes]
		z := pixels[bottom*rowBytes : (bottom+1)*rowBytes]
		copy(tmp, a)
		copy(a, z)
		copy(z, tmp)
	}
	return pixels
}
