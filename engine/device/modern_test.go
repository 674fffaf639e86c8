package device

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

func newModernDevice(t *testing.T, options ...ModernBackendOption) (Device, *fakeGPU) {
	t.Helper()
	native := newFakeGPU()
	return newTestDevice(t, NewModernBackend(native, options...)), native
}

func TestGenerateWGSL(t *testing.T) {
	for _, tc := range []struct {
		name     string
		elements []VertexElement
		stride   int
		want     []string
	}{
		{
			name: "position color texcoord",
			elements: []VertexElement{
				{Offset: 0, Type: DeclFloat3, Usage: UsagePosition},
				{Offset: 12, Type: DeclFloat3, Usage: UsageNormal},
				{Offset: 24, Type: DeclColor, Usage: UsageColor},
				{Offset: 28, Type: DeclFloat2, Usage: UsageTexCoord},
			},
			stride: 36,
			want:   []string{"a.color.zyxw", "u.proj * u.view * u.model"},
		},
		{
			name: "pre-transformed",
			elements: []VertexElement{
				{Offset: 0, Type: DeclFloat4, Usage: UsagePositionT},
				{Offset: 16, Type: DeclFloat2, Usage: UsageTexCoord},
			},
			stride: 24,
			want:   []string{"u.viewport.x", "o.color = vec4<f32>(1.0, 1.0, 1.0, 1.0)"},
		},
		{
			name: "integer inputs",
			elements: []VertexElement{
				{Offset: 0, Type: DeclShort4N, Usage: UsagePosition},
				{Offset: 8, Type: DeclUByte4, Usage: UsageColor},
				{Offset: 12, Type: DeclFloat16x2, Usage: UsageTexCoord},
			},
			stride: 16,
			want:   []string{"vec4<f32>(a.color)", "vec4<u32>"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			sh, err := generateWGSL(tc.elements, tc.stride)
			if err != nil {
				t.Fatalf("generateWGSL: %v", err)
			}
			for _, s := range tc.want {
				if !strings.Contains(sh.source, s) {
					t.Errorf("shader does not contain %q:\n%s", s, sh.source)
				}
			}
			if err := validateWGSL(sh.source); err != nil {
				t.Fatalf("validateWGSL: %v\n%s", err, sh.source)
			}
			if sh.buffer.ArrayStride != uint64(tc.stride) {
				t.Fatalf("array stride = %d, want %d", sh.buffer.ArrayStride, tc.stride)
			}
			for _, a := range sh.buffer.Attributes {
				if a.ShaderLocation == attribNormal {
					t.Fatalf("normal consumed by the shader: %+v", a)
				}
			}
		})
	}
}

func TestGenerateWGSLRejects(t *testing.T) {
	if _, err := generateWGSL([]VertexElement{{Type: DeclFloat2, Usage: UsageTexCoord}}, 8); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("layout without a position error = %v, want ErrInvalidArgument", err)
	}
	if _, err := generateWGSL([]VertexElement{{Type: DeclUDec3, Usage: UsagePosition}}, 4); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("packed position error = %v, want ErrUnsupported", err)
	}
	// unconsumed elements may use any type
	if _, err := generateWGSL([]VertexElement{
		{Type: DeclFloat3, Usage: UsagePosition},
		{Offset: 12, Type: DeclDec3N, Usage: UsageNormal},
	}, 16); err != nil {
		t.Fatalf("packed normal: %v", err)
	}
}

func TestValidateWGSLRejectsBrokenSource(t *testing.T) {
	if err := validateWGSL("fn vs_main( {"); err == nil {
		t.Fatal("validateWGSL accepted a syntax error")
	}
}

func TestModernShaderModulesShared(t *testing.T) {
	d, native := newModernDevice(t)
	vb, err := d.CreateVertexBuffer(nil, 4, 16, UsageStatic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := d.CreateVertexLayout(quadElements, vb); err != nil {
			t.Fatalf("CreateVertexLayout: %v", err)
		}
	}
	if n := len(native.shaders); n != 1 {
		t.Fatalf("%d shader modules for identical layouts, want 1", n)
	}
}

func TestModernPipelineCache(t *testing.T) {
	d, native := newModernDevice(t)
	_, _, layout := bindQuad(t, d)
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
			t.Fatalf("DrawPrimitives: %v", err)
		}
	}
	if n := len(native.pipelines); n != 1 {
		t.Fatalf("%d pipelines after identical draws, want 1", n)
	}

	for _, s := range []struct {
		id    DeviceState
		value uint32
	}{
		{StateAlphaBlendEnable, 1},
		{StateSrcBlend, BlendSrcAlpha},
		{StateDestBlend, BlendInvSrcAlpha},
		{StateCullMode, CullCW},
	} {
		if err := d.SetState(s.id, s.value); err != nil {
			t.Fatalf("SetState(%s): %v", s.id, err)
		}
	}
	// stencil reference is dynamic
	if err := d.SetState(StateStencilRef, 3); err != nil {
		t.Fatalf("SetState(StencilRef): %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	if n := len(native.pipelines); n != 2 {
		t.Fatalf("%d pipelines after a state change, want 2", n)
	}
	desc := native.pipelines[native.draws[3].pipeline]
	if desc.Target.Blend == nil || desc.Target.Blend.Color.SrcFactor != gputypes.BlendFactorSrcAlpha ||
		desc.Target.Blend.Color.DstFactor != gputypes.BlendFactorOneMinusSrcAlpha {
		t.Fatalf("blend state = %+v, want src alpha / one minus src alpha", desc.Target.Blend)
	}
	if desc.Primitive.CullMode != gputypes.CullModeBack || desc.Primitive.FrontFace != gputypes.FrontFaceCCW {
		t.Fatalf("primitive = %+v, want back faces culled with counter-clockwise fronts", desc.Primitive)
	}
	if desc.DepthStencil.DepthCompare != gputypes.CompareFunctionLessEqual || !desc.DepthStencil.DepthWriteEnabled {
		t.Fatalf("depth = %+v, want less-equal with writes", desc.DepthStencil)
	}

	if err := d.DestroyResource(&layout); err != nil {
		t.Fatalf("DestroyResource: %v", err)
	}
	for p := range native.pipelines {
		if !native.released[p] {
			t.Fatalf("pipeline %d survived its layout", p)
		}
	}
}

func TestModernDepthDisabled(t *testing.T) {
	d, native := newModernDevice(t)
	bindQuad(t, d)
	if err := d.SetState(StateZEnable, 0); err != nil {
		t.Fatalf("SetState(ZEnable): %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	ds := native.pipelines[native.draws[0].pipeline].DepthStencil
	if ds.DepthCompare != gputypes.CompareFunctionAlways || ds.DepthWriteEnabled {
		t.Fatalf("depth = %+v, want always passing without writes", ds)
	}
}

func TestModernUniformRing(t *testing.T) {
	d, native := newModernDevice(t, WithUniformSlots(2))
	bindQuad(t, d)
	for scene := 0; scene < 2; scene++ {
		if err := d.BeginScene(); err != nil {
			t.Fatalf("BeginScene: %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
				t.Fatalf("scene %d draw %d: %v", scene, i, err)
			}
		}
		if scene == 0 {
			if err := d.DrawPrimitives(4, 6, 0, 0); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("draw past the uniform ring error = %v, want ErrInvalidArgument", err)
			}
		}
		if err := d.EndScene(); err != nil {
			t.Fatalf("EndScene: %v", err)
		}
	}
	offsets := []uint32{0, modernUniformSlot, 0, modernUniformSlot}
	for i, draw := range native.draws {
		if draw.offset != offsets[i] {
			t.Fatalf("draw %d uniform offset = %d, want %d", i, draw.offset, offsets[i])
		}
	}
}

func TestModernBaseVertex(t *testing.T) {
	d, native := newModernDevice(t)
	vb, err := d.CreateVertexBuffer(nil, 8, 16, UsageStatic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	ib, err := d.CreateIndexBuffer(make([]uint32, 12), 12)
	if err != nil {
		t.Fatalf("CreateIndexBuffer: %v", err)
	}
	layout, err := d.CreateVertexLayout(quadElements, vb)
	if err != nil {
		t.Fatalf("CreateVertexLayout: %v", err)
	}
	for _, h := range []ResourceHandle{vb, ib} {
		if err := d.BindBuffer(h); err != nil {
			t.Fatalf("BindBuffer: %v", err)
		}
	}
	if err := d.SetVertexLayout(layout); err != nil {
		t.Fatalf("SetVertexLayout: %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 4, 6); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	if got := native.draws[0]; got.indexCount != 6 || got.firstIndex != 6 || got.baseVertex != 4 {
		t.Fatalf("draw = %+v, want 6 indices from index 6 with base vertex 4", got)
	}
}

func TestModernClearAppliesToNextPass(t *testing.T) {
	d, native := newModernDevice(t)
	bindQuad(t, d)

	if err := d.Clear(ClearColor|ClearDepth, mgl32.Vec3{0.25, 0.5, 1}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	// after the pass opened, the clear belongs to the next scene
	if err := d.Clear(ClearStencil, mgl32.Vec3{}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := d.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}

	if len(native.frames) != 3 {
		t.Fatalf("%d frames begun, want 3", len(native.frames))
	}
	first, second, third := native.frames[0], native.frames[1], native.frames[2]
	if first.ColorLoad != gputypes.LoadOpClear || first.DepthLoad != gputypes.LoadOpClear || first.StencilLoad != gputypes.LoadOpLoad {
		t.Fatalf("first frame = %+v, want color and depth cleared", first)
	}
	if first.ClearColor != (gputypes.Color{R: 0.25, G: 0.5, B: 1, A: 1}) {
		t.Fatalf("clear color = %+v", first.ClearColor)
	}
	if second.StencilLoad != gputypes.LoadOpClear || second.ColorLoad != gputypes.LoadOpLoad {
		t.Fatalf("second frame = %+v, want only stencil cleared", second)
	}
	if third.ColorLoad != gputypes.LoadOpLoad || third.DepthLoad != gputypes.LoadOpLoad || third.StencilLoad != gputypes.LoadOpLoad {
		t.Fatalf("third frame = %+v, want everything loaded", third)
	}
	if native.ended != 3 {
		t.Fatalf("%d frames ended, want 3", native.ended)
	}
}

func TestModernViewportResizesAtNextPass(t *testing.T) {
	d, native := newModernDevice(t)
	if err := d.SetViewport(1280, 720); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if len(native.resizes) != 0 {
		t.Fatal("surface resized before a pass opened")
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if len(native.resizes) != 1 || native.resizes[0] != [2]int{1280, 720} {
		t.Fatalf("resizes = %v, want one 1280x720", native.resizes)
	}
}

func TestModernUpdateBufferAligned(t *testing.T) {
	d, native := newModernDevice(t)
	vb, err := d.CreateVertexBuffer(nil, 2, 6, UsageDynamic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	if err := d.UpdateBuffer(vb, 5, []byte{1, 2}); err != nil {
		t.Fatalf("UpdateBuffer: %v", err)
	}
	w := native.writes[len(native.writes)-1]
	if w.offset != 4 || w.size != 4 {
		t.Fatalf("write = %+v, want bytes [4, 8)", w)
	}
	if err := d.UpdateBuffer(vb, 10, []byte{1, 2}); err != nil {
		t.Fatalf("UpdateBuffer: %v", err)
	}
	if w := native.writes[len(native.writes)-1]; w.offset != 8 || w.size != 4 {
		t.Fatalf("write = %+v, want bytes [8, 12)", w)
	}
}

func TestModernTextures(t *testing.T) {
	d, native := newModernDevice(t)
	if _, err := d.CreateTexture(FormatRGB, 4, 2, make([]byte, 24), 2); err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	h := native.next
	desc, levels := native.textures[h], native.levels[h]
	if desc.Format != gputypes.TextureFormatRGBA8Unorm || desc.MipLevelCount != 2 {
		t.Fatalf("descriptor = %+v, want RGBA8 with 2 levels", desc)
	}
	if len(levels) != 2 || len(levels[0]) != 32 || len(levels[1]) != 8 {
		t.Fatalf("uploaded %d levels, want RGBA 4x2 and 2x1", len(levels))
	}
	if levels[0][3] != 0xFF {
		t.Fatal("expanded RGB pixels are not opaque")
	}

	if _, err := d.CreateTexture(FormatBGRA, 2, 2, nil, 0); err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if got := native.textures[native.next]; got.Format != gputypes.TextureFormatBGRA8Unorm || got.MipLevelCount != 2 {
		t.Fatalf("descriptor = %+v, want BGRA8 with a full chain", got)
	}
	if native.levels[native.next] != nil {
		t.Fatal("uninitialized texture uploaded data")
	}
}

func TestModernReadPixelsUnsupported(t *testing.T) {
	d, _ := newModernDevice(t)
	if _, _, _, err := d.ReadPixels(); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ReadPixels error = %v, want ErrUnsupported", err)
	}
}

func TestModernSamplerDesc(t *testing.T) {
	s := samplerDefaults
	s[SamplerAddressU] = AddressBorder
	s[SamplerAddressV] = AddressMirrorOnce
	s[SamplerMinFilter] = FilterAnisotropic
	s[SamplerMaxAnisotropy] = 64
	desc := modernSamplerDesc(s)
	if desc.AddressModeU != gputypes.AddressModeClampToEdge || desc.AddressModeV != gputypes.AddressModeMirrorRepeat {
		t.Fatalf("address modes = %v, %v", desc.AddressModeU, desc.AddressModeV)
	}
	if desc.MaxAnisotropy != 16 || desc.MagFilter != gputypes.FilterModeLinear {
		t.Fatalf("anisotropy = %d with mag %v, want 16 with linear filtering", desc.MaxAnisotropy, desc.MagFilter)
	}

	s = samplerDefaults
	s[SamplerMipFilter] = FilterNone
	s[SamplerMaxMipLevel] = 2
	desc = modernSamplerDesc(s)
	if desc.LodMinClamp != 2 || desc.LodMaxClamp != 2 || desc.MagFilter != gputypes.FilterModeNearest {
		t.Fatalf("lod clamp = [%v, %v] mag %v, want [2, 2] nearest", desc.LodMinClamp, desc.LodMaxClamp, desc.MagFilter)
	}
}

func TestModernSamplersCached(t *testing.T) {
	d, native := newModernDevice(t)
	bindQuad(t, d)
	tex, err := d.CreateTexture(FormatRGBA, 1, 1, []byte{1, 2, 3, 4}, 1)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := d.BindTexture(tex, 0); err != nil {
		t.Fatalf("BindTexture: %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
			t.Fatalf("DrawPrimitives: %v", err)
		}
	}
	if len(native.samplers) != 1 {
		t.Fatalf("%d samplers for one sampler state, want 1", len(native.samplers))
	}
	if native.draws[0].group != native.draws[1].group {
		t.Fatal("bind group rebuilt for an unchanged texture and sampler")
	}
	if err := d.SetSamplerState(0, SamplerAddressU, AddressClamp); err != nil {
		t.Fatalf("SetSamplerState: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	if len(native.samplers) != 2 {
		t.Fatalf("%d samplers after a state change, want 2", len(native.samplers))
	}
}

func TestModernDestroyReleasesEverything(t *testing.T) {
	native := newFakeGPU()
	d, err := NewDevice(NewModernBackend(native))
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	bindQuad(t, d)
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	if err := d.EndScene(); err != nil {
		t.Fatalf("EndScene: %v", err)
	}
	if err := d.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	for h := GPUHandle(1); h <= native.next; h++ {
		if !native.released[h] {
			t.Errorf("handle %d not released", h)
		}
	}
	if !native.destroyed {
		t.Fatal("native not destroyed")
	}
}
