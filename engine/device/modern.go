package device

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

const (
	// modernUniformSlot is the dynamic offset alignment of the per-draw uniform ring.
	modernUniformSlot = 256
	// DefaultUniformSlots is the number of draws a modern scene can record.
	DefaultUniformSlots = 1024
)

// modernStates marks the states a WebGPU pipeline can express. Tokens are unused, the values
// are folded into the pipeline key instead.
var modernStates = func() [StateCount]stateMapping {
	var t [StateCount]stateMapping
	for s := range t {
		t[s] = mapped(0)
	}
	for _, s := range []DeviceState{
		StateFillMode, StateShadeMode, StateAlphaTestEnable, StateAlphaRef, StateAlphaFunc,
		StateDitherEnable, StateFogEnable, StateFogColor, StateFogStart, StateFogEnd,
		StateFogDensity, StateLighting, StateAmbient, StateNormalizeNormals, StatePointSize,
		StateScissorTestEnable, StateMultisampleAntialias,
	} {
		t[s] = unsupported
	}
	return t
}()

var modernSamplerStates = [SamplerStateCount]stateMapping{
	SamplerAddressU:      mapped(0),
	SamplerAddressV:      mapped(0),
	SamplerAddressW:      mapped(0),
	SamplerBorderColor:   unsupported,
	SamplerMagFilter:     mapped(0),
	SamplerMinFilter:     mapped(0),
	SamplerMipFilter:     mapped(0),
	SamplerMipMapLodBias: unsupported,
	SamplerMaxMipLevel:   mapped(0),
	SamplerMaxAnisotropy: mapped(0),
	SamplerSRGBTexture:   unsupported,
	SamplerElementIndex:  unsupported,
	SamplerDMapOffset:    unsupported,
}

// modernCull packs a front face and a cull mode as frontFace<<4 | cullMode. With a
// counter-clockwise front face, back faces are the clockwise ones.
const (
	modernCullNone = uint32(gputypes.FrontFaceCCW)<<4 | uint32(gputypes.CullModeNone)
	modernCullCW   = uint32(gputypes.FrontFaceCCW)<<4 | uint32(gputypes.CullModeBack)
	modernCullCCW  = uint32(gputypes.FrontFaceCW)<<4 | uint32(gputypes.CullModeBack)
)

var modernAliases = valueAliases{
	ClassCompare: {0, 1, 2, 3, 4, 5, 6, 7, 8},
	ClassBlend: {0,
		uint32(gputypes.BlendFactorZero),
		uint32(gputypes.BlendFactorOne),
		uint32(gputypes.BlendFactorSrc),
		uint32(gputypes.BlendFactorOneMinusSrc),
		uint32(gputypes.BlendFactorSrcAlpha),
		uint32(gputypes.BlendFactorOneMinusSrcAlpha),
		uint32(gputypes.BlendFactorDstAlpha),
		uint32(gputypes.BlendFactorOneMinusDstAlpha),
		uint32(gputypes.BlendFactorDst),
		uint32(gputypes.BlendFactorOneMinusDst),
		uint32(gputypes.BlendFactorSrcAlphaSaturated),
		uint32(gputypes.BlendFactorConstant),
		uint32(gputypes.BlendFactorOneMinusConstant),
	},
	ClassBlendOp: {0,
		uint32(gputypes.BlendOperationAdd),
		uint32(gputypes.BlendOperationSubtract),
		uint32(gputypes.BlendOperationReverseSubtract),
		uint32(gputypes.BlendOperationMin),
		uint32(gputypes.BlendOperationMax),
	},
	ClassCull: {0, modernCullNone, modernCullCW, modernCullCCW},
	ClassStencilOp: {0,
		uint32(gputypes.StencilOperationKeep),
		uint32(gputypes.StencilOperationZero),
		uint32(gputypes.StencilOperationReplace),
		uint32(gputypes.StencilOperationIncrementClamp),
		uint32(gputypes.StencilOperationDecrementClamp),
		uint32(gputypes.StencilOperationInvert),
		uint32(gputypes.StencilOperationIncrementWrap),
		uint32(gputypes.StencilOperationDecrementWrap),
	},
}

// modernDefaultStates is the initial value of every supported state, natively encoded.
var modernDefaultStates = [StateCount]uint32{
	StateZWriteEnable:     1,
	StateZFunc:            uint32(gputypes.CompareFunctionLessEqual),
	StateCullMode:         modernCullNone,
	StateSrcBlend:         uint32(gputypes.BlendFactorOne),
	StateDestBlend:        uint32(gputypes.BlendFactorZero),
	StateBlendOp:          uint32(gputypes.BlendOperationAdd),
	StateSrcBlendAlpha:    uint32(gputypes.BlendFactorOne),
	StateDestBlendAlpha:   uint32(gputypes.BlendFactorZero),
	StateBlendOpAlpha:     uint32(gputypes.BlendOperationAdd),
	StateColorWriteEnable: ColorWriteAll,
	StateStencilFunc:      uint32(gputypes.CompareFunctionAlways),
	StateStencilFail:      uint32(gputypes.StencilOperationKeep),
	StateStencilZFail:     uint32(gputypes.StencilOperationKeep),
	StateStencilPass:      uint32(gputypes.StencilOperationKeep),
	StateStencilMask:      0xFFFFFFFF,
	StateStencilWriteMask: 0xFFFFFFFF,
}

// modernUniforms is the per-draw uniform block, laid out like the WGSL Uniforms struct.
type modernUniforms struct {
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	Model    mgl32.Mat4
	Viewport [4]float32
	Flags    [4]uint32
}

type modernTexture struct {
	handle GPUHandle
	levels int
}

// modernBuffer keeps a CPU copy so partial updates can be widened to 4-byte aligned writes.
type modernBuffer struct {
	handle GPUHandle
	shadow []byte
}

type modernLayout struct {
	id     uint64
	shader GPUHandle
	buffer gputypes.VertexBufferLayout
}

// modernPipelineKey identifies a render pipeline: a vertex layout plus every state a pipeline
// bakes in. Stencil reference is dynamic and not part of it.
type modernPipelineKey struct {
	layout uint64

	depthWrite   bool
	depthCompare gputypes.CompareFunction
	cull         uint32

	blend    bool
	srcColor gputypes.BlendFactor
	dstColor gputypes.BlendFactor
	opColor  gputypes.BlendOperation
	srcAlpha gputypes.BlendFactor
	dstAlpha gputypes.BlendFactor
	opAlpha  gputypes.BlendOperation

	writeMask gputypes.ColorWriteMask

	stencil          bool
	stencilCompare   gputypes.CompareFunction
	stencilFail      gputypes.StencilOperation
	stencilDepthFail gputypes.StencilOperation
	stencilPass      gputypes.StencilOperation
	stencilRead      uint32
	stencilWrite     uint32

	depthBias int32
	slopeBias float32
}

type modernBindKey struct {
	texture GPUHandle
	sampler GPUHandle
}

// ModernBackendOption configures the modern backend adapter.
type ModernBackendOption func(*modernBackend)

// WithUniformSlots sets how many draws one scene can record. Each draw takes a 256 byte slot of
// the uniform ring.
func WithUniformSlots(n int) ModernBackendOption {
	return func(b *modernBackend) {
		if n > 0 {
			b.uniformSlots = n
		}
	}
}

// modernBackend drives WebGPU. Render states are folded into cached pipelines, sampler states
// into cached samplers, and the matrices go through a ring of dynamic-offset uniform slots.
type modernBackend struct {
	native ModernNative

	states   [StateCount]uint32
	samplers [MaxTextureSlots][SamplerStateCount]uint32
	textures [MaxTextureSlots]*modernTexture

	vb     *modernBuffer
	ib     *modernBuffer
	layout *modernLayout

	nextLayout uint64

	view  mgl32.Mat4
	proj  mgl32.Mat4
	model mgl32.Mat4

	viewportW int
	viewportH int
	resize    bool

	uniformSlots int
	uniformBuf   GPUHandle
	uniformNext  int
	white        GPUHandle

	shaders    map[string]GPUHandle
	pipelines  map[modernPipelineKey]GPUHandle
	samplerSet map[[SamplerStateCount]uint32]GPUHandle
	bindGroups map[modernBindKey]GPUHandle

	pending  ModernFrame
	passOpen bool
}

var _ Backend = &modernBackend{}

// NewModernBackend creates the WebGPU backend adapter.
//
// Parameters:
//   - native: the WebGPU binding, already attached to a surface
//   - options: adapter options
//
// Returns:
//   - Backend: the modern backend
func NewModernBackend(native ModernNative, options ...ModernBackendOption) Backend {
	b := &modernBackend{
		native:       native,
		states:       modernDefaultStates,
		view:         mgl32.Ident4(),
		proj:         common.ZeroToOneDepth(mgl32.Ident4()),
		model:        mgl32.Ident4(),
		uniformSlots: DefaultUniformSlots,
		shaders:      make(map[string]GPUHandle),
		pipelines:    make(map[modernPipelineKey]GPUHandle),
		samplerSet:   make(map[[SamplerStateCount]uint32]GPUHandle),
		bindGroups:   make(map[modernBindKey]GPUHandle),
		pending:      loadFrame(),
	}
	for slot := range b.samplers {
		b.samplers[slot] = samplerDefaults
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func loadFrame() ModernFrame {
	return ModernFrame{
		ColorLoad:   gputypes.LoadOpLoad,
		DepthLoad:   gputypes.LoadOpLoad,
		StencilLoad: gputypes.LoadOpLoad,
		ClearDepth:  1,
	}
}

func (b *modernBackend) Name() string {
	return "modern"
}

func (b *modernBackend) Init() error {
	if err := b.native.Init(); err != nil {
		return err
	}
	buf, err := b.native.CreateBuffer(gputypes.BufferDescriptor{
		Label: "uniform ring",
		Size:  uint64(b.uniformSlots * modernUniformSlot),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	}, nil)
	if err != nil {
		b.native.Destroy()
		return fmt.Errorf("modern: failed to create uniform ring: %w", err)
	}
	b.uniformBuf = buf

	white, err := b.native.CreateTexture(gputypes.TextureDescriptor{
		Label:         "white",
		Size:          gputypes.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}, [][]byte{{0xFF, 0xFF, 0xFF, 0xFF}})
	if err != nil {
		b.native.Release(b.uniformBuf)
		b.native.Destroy()
		return fmt.Errorf("modern: failed to create default texture: %w", err)
	}
	b.white = white
	return nil
}

func (b *modernBackend) Destroy() error {
	for _, h := range b.bindGroups {
		b.native.Release(h)
	}
	for _, h := range b.pipelines {
		b.native.Release(h)
	}
	for _, h := range b.samplerSet {
		b.native.Release(h)
	}
	for _, h := range b.shaders {
		b.native.Release(h)
	}
	clear(b.bindGroups)
	clear(b.pipelines)
	clear(b.samplerSet)
	clear(b.shaders)
	if b.white != 0 {
		b.native.Release(b.white)
		b.white = 0
	}
	if b.uniformBuf != 0 {
		b.native.Release(b.uniformBuf)
		b.uniformBuf = 0
	}
	b.native.Destroy()
	return nil
}

func (b *modernBackend) CreateTexture(desc TextureDesc, pixels []byte) (any, error) {
	full := common.MipLevelCount(desc.Width, desc.Height)
	levels := desc.MipLevels
	if levels == 0 || levels > full {
		levels = full
	}
	format := gputypes.TextureFormatRGBA8Unorm
	if desc.Format == FormatBGRA {
		format = gputypes.TextureFormatBGRA8Unorm
	}

	var data [][]byte
	if pixels != nil {
		if desc.Format == FormatRGB {
			pixels = expandRGB(pixels)
		}
		data = common.BuildMipChain(pixels, desc.Width, desc.Height)[:levels]
	}
	h, err := b.native.CreateTexture(gputypes.TextureDescriptor{
		Size:          gputypes.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: uint32(levels),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	}, data)
	if err != nil {
		return nil, err
	}
	return &modernTexture{handle: h, levels: levels}, nil
}

// expandRGB widens tightly packed RGB pixels to opaque RGBA.
func expandRGB(rgb []byte) []byte {
	n := len(rgb) / 3
	rgba := make([]byte, n*4)
	for i := 0; i < n; i++ {
		copy(rgba[i*4:i*4+3], rgb[i*3:i*3+3])
		rgba[i*4+3] = 0xFF
	}
	return rgba
}

func (b *modernBackend) BindTexture(tex any, slot int) error {
	t, ok := tex.(*modernTexture)
	if !ok {
		return fmt.Errorf("modern: foreign texture %T: %w", tex, ErrInvalidArgument)
	}
	b.textures[slot] = t
	return nil
}

func (b *modernBackend) ClearTexture(slot int) error {
	b.textures[slot] = nil
	return nil
}

func (b *modernBackend) createBuffer(label string, data []byte, size int, usage gputypes.BufferUsage) (*modernBuffer, error) {
	shadow := make([]byte, align4(size))
	copy(shadow, data)
	h, err := b.native.CreateBuffer(gputypes.BufferDescriptor{
		Label: label,
		Size:  uint64(len(shadow)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	}, shadow)
	if err != nil {
		return nil, err
	}
	return &modernBuffer{handle: h, shadow: shadow}, nil
}

func (b *modernBackend) CreateVertexBuffer(data []byte, size int, _ BufferUsage) (any, error) {
	return b.createBuffer("vertex buffer", data, size, gputypes.BufferUsageVertex)
}

func (b *modernBackend) CreateIndexBuffer(data []uint32, count int) (any, error) {
	return b.createBuffer("index buffer", common.SliceToBytes(data), count*4, gputypes.BufferUsageIndex)
}

func (b *modernBackend) UpdateBuffer(_ ResourceKind, buf any, offset int, data []byte) error {
	mb, ok := buf.(*modernBuffer)
	if !ok {
		return fmt.Errorf("modern: foreign buffer %T: %w", buf, ErrInvalidArgument)
	}
	copy(mb.shadow[offset:], data)
	start := offset &^ 3
	end := min(align4(offset+len(data)), len(mb.shadow))
	b.native.WriteBuffer(mb.handle, uint64(start), mb.shadow[start:end])
	return nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

func (b *modernBackend) BindVertexBuffer(buf any, _ int) error {
	mb, ok := buf.(*modernBuffer)
	if !ok {
		return fmt.Errorf("modern: foreign buffer %T: %w", buf, ErrInvalidArgument)
	}
	b.vb = mb
	return nil
}

func (b *modernBackend) BindIndexBuffer(buf any) error {
	mb, ok := buf.(*modernBuffer)
	if !ok {
		return fmt.Errorf("modern: foreign buffer %T: %w", buf, ErrInvalidArgument)
	}
	b.ib = mb
	return nil
}

// CreateVertexLayout generates and validates the layout's shader. Layouts that produce the same
// source share one shader module.
func (b *modernBackend) CreateVertexLayout(elements []VertexElement, stride int, _ any) (any, error) {
	sh, err := generateWGSL(elements, stride)
	if err != nil {
		return nil, err
	}
	module, ok := b.shaders[sh.source]
	if !ok {
		if err := validateWGSL(sh.source); err != nil {
			return nil, err
		}
		module, err = b.native.CreateShaderModule("vertex layout", sh.source)
		if err != nil {
			return nil, err
		}
		b.shaders[sh.source] = module
	}
	b.nextLayout++
	return &modernLayout{id: b.nextLayout, shader: module, buffer: sh.buffer}, nil
}

func (b *modernBackend) SetVertexLayout(layout any) error {
	l, ok := layout.(*modernLayout)
	if !ok {
		return fmt.Errorf("modern: foreign layout %T: %w", layout, ErrInvalidArgument)
	}
	b.layout = l
	return nil
}

func (b *modernBackend) Release(kind ResourceKind, native any) error {
	switch kind {
	case KindTexture:
		t, ok := native.(*modernTexture)
		if !ok {
			return fmt.Errorf("modern: foreign texture %T: %w", native, ErrInvalidArgument)
		}
		for slot, bound := range b.textures {
			if bound == t {
				b.textures[slot] = nil
			}
		}
		for key, group := range b.bindGroups {
			if key.texture == t.handle {
				b.native.Release(group)
				delete(b.bindGroups, key)
			}
		}
		b.native.Release(t.handle)
	case KindVertexBuffer, KindIndexBuffer:
		mb, ok := native.(*modernBuffer)
		if !ok {
			return fmt.Errorf("modern: foreign buffer %T: %w", native, ErrInvalidArgument)
		}
		if b.vb == mb {
			b.vb = nil
		}
		if b.ib == mb {
			b.ib = nil
		}
		b.native.Release(mb.handle)
	case KindVertexLayout:
		l, ok := native.(*modernLayout)
		if !ok {
			return fmt.Errorf("modern: foreign layout %T: %w", native, ErrInvalidArgument)
		}
		if b.layout == l {
			b.layout = nil
		}
		for key, p := range b.pipelines {
			if key.layout == l.id {
				b.native.Release(p)
				delete(b.pipelines, key)
			}
		}
	default:
		return fmt.Errorf("modern: cannot release %s: %w", kind, ErrKindMismatch)
	}
	return nil
}

func (b *modernBackend) SetState(id DeviceState, value uint32) error {
	if modernStates[id].status != stateMapped {
		return fmt.Errorf("modern: %s: %w", id, ErrUnregisteredState)
	}
	native, err := modernAliases.toNative(id.Class(), value)
	if err != nil {
		return fmt.Errorf("modern: %s: %w", id, err)
	}
	b.states[id] = native
	return nil
}

func (b *modernBackend) State(id DeviceState) (uint32, error) {
	if modernStates[id].status != stateMapped {
		return 0, fmt.Errorf("modern: %s: %w", id, ErrUnregisteredState)
	}
	return modernAliases.toGeneric(id.Class(), b.states[id])
}

func (b *modernBackend) SetSamplerState(slot int, id SamplerState, value uint32) error {
	if modernSamplerStates[id].status != stateMapped {
		return fmt.Errorf("modern: sampler %s: %w", id, ErrUnregisteredState)
	}
	b.samplers[slot][id] = value
	return nil
}

func (b *modernBackend) SamplerState(slot int, id SamplerState) (uint32, error) {
	if modernSamplerStates[id].status != stateMapped {
		return 0, fmt.Errorf("modern: sampler %s: %w", id, ErrUnregisteredState)
	}
	return b.samplers[slot][id], nil
}

// SetViewport takes effect when the next render pass opens, the surface cannot be reconfigured
// while a frame is being recorded.
func (b *modernBackend) SetViewport(width, height int) error {
	b.viewportW, b.viewportH = width, height
	b.resize = true
	return nil
}

func (b *modernBackend) SetViewProj(view, proj mgl32.Mat4) error {
	b.view = view
	b.proj = common.ZeroToOneDepth(proj)
	return nil
}

func (b *modernBackend) SetModel(model mgl32.Mat4) error {
	b.model = model
	return nil
}

// Clear sets the load operations of the next render pass. Once the pass of the current scene
// has opened, the clear applies to the following scene.
func (b *modernBackend) Clear(flags ClearFlags, color mgl32.Vec3) error {
	if b.passOpen {
		Logger().Debug("clear deferred to the next scene", slog.Int("flags", int(flags)))
	}
	if flags&ClearColor != 0 {
		b.pending.ColorLoad = gputypes.LoadOpClear
		b.pending.ClearColor = gputypes.Color{R: float64(color.X()), G: float64(color.Y()), B: float64(color.Z()), A: 1}
	}
	if flags&ClearDepth != 0 {
		b.pending.DepthLoad = gputypes.LoadOpClear
		b.pending.ClearDepth = 1
	}
	if flags&ClearStencil != 0 {
		b.pending.StencilLoad = gputypes.LoadOpClear
		b.pending.ClearStencil = 0
	}
	return nil
}

func (b *modernBackend) BeginScene() error {
	b.uniformNext = 0
	b.passOpen = false
	return nil
}

// openPass begins the frame on the first draw of a scene, or at EndScene for empty scenes.
func (b *modernBackend) openPass() error {
	if b.passOpen {
		return nil
	}
	if b.resize {
		if err := b.native.Resize(b.viewportW, b.viewportH); err != nil {
			return fmt.Errorf("modern: failed to resize surface: %w", err)
		}
		b.resize = false
	}
	if err := b.native.BeginFrame(b.pending); err != nil {
		return err
	}
	b.pending = loadFrame()
	b.passOpen = true
	return nil
}

func (b *modernBackend) Draw(call DrawCall) error {
	switch {
	case b.layout == nil:
		return fmt.Errorf("modern: no vertex layout: %w", ErrNullHandle)
	case b.vb == nil:
		return fmt.Errorf("modern: no vertex buffer: %w", ErrNullHandle)
	case b.ib == nil:
		return fmt.Errorf("modern: no index buffer: %w", ErrNullHandle)
	}
	if b.uniformNext >= b.uniformSlots {
		return fmt.Errorf("modern: more than %d draws in one scene: %w", b.uniformSlots, ErrInvalidArgument)
	}
	pipeline, err := b.pipeline()
	if err != nil {
		return err
	}
	group, useTexture, err := b.bindGroup()
	if err != nil {
		return err
	}
	if err := b.openPass(); err != nil {
		return err
	}

	u := modernUniforms{
		View:     b.view,
		Proj:     b.proj,
		Model:    b.model,
		Viewport: [4]float32{float32(b.viewportW), float32(b.viewportH), 0, 0},
	}
	if useTexture {
		u.Flags[0] = 1
	}
	offset := b.uniformNext * modernUniformSlot
	b.uniformNext++
	b.native.WriteBuffer(b.uniformBuf, uint64(offset), common.StructToBytes(&u))

	b.native.SetPipeline(pipeline)
	b.native.SetBindGroup(group, uint32(offset))
	b.native.SetVertexBuffer(b.vb.handle)
	b.native.SetIndexBuffer(b.ib.handle)
	if b.states[StateStencilEnable] != 0 {
		b.native.SetStencilReference(b.states[StateStencilRef])
	}
	b.native.DrawIndexed(uint32(call.IndexCount), uint32(call.IndexOffset), int32(call.VertexOffset))
	return nil
}

func (b *modernBackend) EndScene() error {
	if err := b.openPass(); err != nil {
		return err
	}
	b.passOpen = false
	return b.native.EndFrame()
}

func (b *modernBackend) Present() error {
	b.native.Present()
	return nil
}

func (b *modernBackend) ReadPixels() ([]byte, int, int, error) {
	return nil, 0, 0, fmt.Errorf("modern: read back: %w", ErrUnsupported)
}

// pipelineKey folds the current layout and render states into a pipeline cache key.
func (b *modernBackend) pipelineKey() modernPipelineKey {
	s := &b.states
	k := modernPipelineKey{
		layout:       b.layout.id,
		depthCompare: gputypes.CompareFunctionAlways,
		cull:         s[StateCullMode],
		writeMask:    gputypes.ColorWriteMask(s[StateColorWriteEnable] & ColorWriteAll),
		depthBias:    int32(DepthBiasUnits(s[StateDepthBias])),
		slopeBias:    ValueFloat(s[StateSlopeScaleDepthBias]),
	}
	if s[StateZEnable] != 0 {
		k.depthCompare = gputypes.CompareFunction(s[StateZFunc])
		k.depthWrite = s[StateZWriteEnable] != 0
	}
	if s[StateAlphaBlendEnable] != 0 {
		k.blend = true
		k.srcColor = gputypes.BlendFactor(s[StateSrcBlend])
		k.dstColor = gputypes.BlendFactor(s[StateDestBlend])
		k.opColor = gputypes.BlendOperation(s[StateBlendOp])
		k.srcAlpha = gputypes.BlendFactor(s[StateSrcBlendAlpha])
		k.dstAlpha = gputypes.BlendFactor(s[StateDestBlendAlpha])
		k.opAlpha = gputypes.BlendOperation(s[StateBlendOpAlpha])
	}
	if s[StateStencilEnable] != 0 {
		k.stencil = true
		k.stencilCompare = gputypes.CompareFunction(s[StateStencilFunc])
		k.stencilFail = gputypes.StencilOperation(s[StateStencilFail])
		k.stencilDepthFail = gputypes.StencilOperation(s[StateStencilZFail])
		k.stencilPass = gputypes.StencilOperation(s[StateStencilPass])
		k.stencilRead = s[StateStencilMask]
		k.stencilWrite = s[StateStencilWriteMask]
	}
	return k
}

func (b *modernBackend) pipeline() (GPUHandle, error) {
	key := b.pipelineKey()
	if p, ok := b.pipelines[key]; ok {
		return p, nil
	}
	Logger().Debug("building pipeline", slog.Uint64("layout", key.layout), slog.Int("cached", len(b.pipelines)))
	p, err := b.native.CreatePipeline(b.pipelineDesc(key))
	if err != nil {
		return 0, fmt.Errorf("modern: failed to create pipeline: %w", err)
	}
	b.pipelines[key] = p
	return p, nil
}

func (b *modernBackend) pipelineDesc(k modernPipelineKey) ModernPipelineDesc {
	face := gputypes.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      gputypes.StencilOperationKeep,
		DepthFailOp: gputypes.StencilOperationKeep,
		PassOp:      gputypes.StencilOperationKeep,
	}
	var readMask, writeMask uint32
	if k.stencil {
		face = gputypes.StencilFaceState{
			Compare:     k.stencilCompare,
			FailOp:      k.stencilFail,
			DepthFailOp: k.stencilDepthFail,
			PassOp:      k.stencilPass,
		}
		readMask, writeMask = k.stencilRead, k.stencilWrite
	}

	target := gputypes.ColorTargetState{
		Format:    b.native.SurfaceFormat(),
		WriteMask: k.writeMask,
	}
	if k.blend {
		target.Blend = &gputypes.BlendState{
			Color: gputypes.BlendComponent{SrcFactor: k.srcColor, DstFactor: k.dstColor, Operation: k.opColor},
			Alpha: gputypes.BlendComponent{SrcFactor: k.srcAlpha, DstFactor: k.dstAlpha, Operation: k.opAlpha},
		}
	}

	return ModernPipelineDesc{
		Label:  fmt.Sprintf("layout %d", k.layout),
		Shader: b.layout.shader,
		Buffer: b.layout.buffer,
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFace(k.cull >> 4),
			CullMode:  gputypes.CullMode(k.cull & 0xF),
		},
		DepthStencil: gputypes.DepthStencilState{
			Format:              b.native.DepthFormat(),
			DepthWriteEnabled:   k.depthWrite,
			DepthCompare:        k.depthCompare,
			StencilFront:        face,
			StencilBack:         face,
			StencilReadMask:     readMask,
			StencilWriteMask:    writeMask,
			DepthBias:           k.depthBias,
			DepthBiasSlopeScale: k.slopeBias,
		},
		Target: target,
	}
}

// bindGroup returns the group for the texture and sampler state of slot 0. Without a texture the
// white default is bound and texturing is switched off in the shader.
func (b *modernBackend) bindGroup() (GPUHandle, bool, error) {
	texture, useTexture := b.white, false
	if t := b.textures[0]; t != nil {
		texture, useTexture = t.handle, true
	}
	sampler, err := b.sampler(0)
	if err != nil {
		return 0, false, err
	}
	key := modernBindKey{texture: texture, sampler: sampler}
	if g, ok := b.bindGroups[key]; ok {
		return g, useTexture, nil
	}
	g, err := b.native.CreateBindGroup(b.uniformBuf, texture, sampler, modernUniformSlot)
	if err != nil {
		return 0, false, fmt.Errorf("modern: failed to create bind group: %w", err)
	}
	b.bindGroups[key] = g
	return g, useTexture, nil
}

func (b *modernBackend) sampler(slot int) (GPUHandle, error) {
	s := b.samplers[slot]
	if h, ok := b.samplerSet[s]; ok {
		return h, nil
	}
	h, err := b.native.CreateSampler(modernSamplerDesc(s))
	if err != nil {
		return 0, fmt.Errorf("modern: failed to create sampler: %w", err)
	}
	b.samplerSet[s] = h
	return h, nil
}

// modernSamplerDesc translates sampler states. Anisotropic filtering requires linear filtering
// on every axis.
func modernSamplerDesc(s [SamplerStateCount]uint32) gputypes.SamplerDescriptor {
	desc := gputypes.SamplerDescriptor{
		AddressModeU:  modernAddress(s[SamplerAddressU]),
		AddressModeV:  modernAddress(s[SamplerAddressV]),
		AddressModeW:  modernAddress(s[SamplerAddressW]),
		MagFilter:     modernFilter(s[SamplerMagFilter]),
		MinFilter:     modernFilter(s[SamplerMinFilter]),
		MipmapFilter:  gputypes.MipmapFilterModeNearest,
		LodMinClamp:   float32(min(s[SamplerMaxMipLevel], 32)),
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
	switch s[SamplerMipFilter] {
	case FilterNone:
		desc.LodMaxClamp = desc.LodMinClamp
	case FilterPoint:
	default:
		desc.MipmapFilter = gputypes.MipmapFilterModeLinear
	}
	if s[SamplerMinFilter] == FilterAnisotropic || s[SamplerMagFilter] == FilterAnisotropic {
		desc.MaxAnisotropy = uint16(min(max(s[SamplerMaxAnisotropy], 1), 16))
		if desc.MaxAnisotropy > 1 {
			desc.MagFilter = gputypes.FilterModeLinear
			desc.MinFilter = gputypes.FilterModeLinear
			desc.MipmapFilter = gputypes.MipmapFilterModeLinear
		}
	}
	return desc
}

func modernAddress(v uint32) gputypes.AddressMode {
	switch v {
	case AddressMirror, AddressMirrorOnce:
		return gputypes.AddressModeMirrorRepeat
	case AddressClamp, AddressBorder:
		return gputypes.AddressModeClampToEdge
	default:
		return gputypes.AddressModeRepeat
	}
}

func modernFilter(v uint32) gputypes.FilterMode {
	if v == FilterNone || v == FilterPoint {
		return gputypes.FilterModeNearest
	}
	return gputypes.FilterModeLinear
}
