package device

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type testBackend struct {
	name   string
	states *[StateCount]stateMapping
	newFn  func() Backend
}

func testBackends() []testBackend {
	return []testBackend{
		{"legacy", &glStates, func() Backend { return NewLegacyBackend(newFakeGL()) }},
		{"core", &glCoreStates, func() Backend { return NewCoreBackend(newFakeGL()) }},
		{"modern", &modernStates, func() Backend { return NewModernBackend(newFakeGPU()) }},
	}
}

func newTestDevice(t *testing.T, backend Backend, options ...DeviceBuilderOption) Device {
	t.Helper()
	d, err := NewDevice(backend, options...)
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	t.Cleanup(func() { _ = d.Destroy() })
	return d
}

// quadVertices is four Float3 positions followed by a BGRA color each.
func quadVertices() []byte {
	return make([]byte, 4*16)
}

var quadElements = []VertexElement{
	{Offset: 0, Type: DeclFloat3, Usage: UsagePosition},
	{Offset: 12, Type: DeclColor, Usage: UsageColor},
}

// bindQuad creates and binds a vertex buffer, an index buffer and a layout for two triangles.
func bindQuad(t *testing.T, d Device) (vb, ib, layout ResourceHandle) {
	t.Helper()
	var err error
	if vb, err = d.CreateVertexBuffer(quadVertices(), 4, 16, UsageStatic); err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	if ib, err = d.CreateIndexBuffer([]uint32{0, 1, 2, 2, 1, 3}, 6); err != nil {
		t.Fatalf("CreateIndexBuffer: %v", err)
	}
	if layout, err = d.CreateVertexLayout(quadElements, vb); err != nil {
		t.Fatalf("CreateVertexLayout: %v", err)
	}
	for _, h := range []ResourceHandle{vb, ib} {
		if err := d.BindBuffer(h); err != nil {
			t.Fatalf("BindBuffer(%s): %v", h, err)
		}
	}
	if err := d.SetVertexLayout(layout); err != nil {
		t.Fatalf("SetVertexLayout: %v", err)
	}
	return vb, ib, layout
}

func TestNewDeviceNilBackend(t *testing.T) {
	if _, err := NewDevice(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("NewDevice(nil) error = %v, want ErrInvalidArgument", err)
	}
}

func TestNewDeviceInitFailure(t *testing.T) {
	native := newFakeGL()
	native.initErr = errors.New("no context")
	if _, err := NewDevice(NewLegacyBackend(native)); err == nil {
		t.Fatal("NewDevice succeeded with a failing native init")
	}
}

func TestDeviceName(t *testing.T) {
	for _, tb := range testBackends() {
		d := newTestDevice(t, tb.newFn())
		if got := d.Backend(); got != tb.name {
			t.Fatalf("Backend() = %q, want %q", got, tb.name)
		}
	}
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()), WithName("tools"))
	if got := d.Backend(); got != "tools" {
		t.Fatalf("Backend() with WithName = %q, want tools", got)
	}
}

func TestInitialStates(t *testing.T) {
	for _, tb := range testBackends() {
		t.Run(tb.name, func(t *testing.T) {
			d := newTestDevice(t, tb.newFn())
			if v, err := d.State(StateZEnable); err != nil || v != 1 {
				t.Fatalf("ZEnable = %d, %v; want 1", v, err)
			}
			if v, err := d.State(StateAlphaBlendEnable); err != nil || v != 0 {
				t.Fatalf("AlphaBlendEnable = %d, %v; want 0", v, err)
			}
			for slot := 0; slot < 2; slot++ {
				for _, id := range []SamplerState{SamplerMinFilter, SamplerMagFilter} {
					if v, err := d.SamplerState(slot, id); err != nil || v != FilterLinear {
						t.Fatalf("slot %d %s = %d, %v; want linear", slot, id, v, err)
					}
				}
			}
			if v, _ := d.SamplerState(2, SamplerMinFilter); v != FilterPoint {
				t.Fatalf("slot 2 MinFilter = %d, want point", v)
			}
		})
	}
}

func TestWithoutInitialStates(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()), WithInitialStates(false))
	if v, err := d.State(StateZEnable); err != nil || v != 0 {
		t.Fatalf("ZEnable = %d, %v; want the native default 0", v, err)
	}
}

func TestStateRoundTrip(t *testing.T) {
	sample := map[ValueClass]uint32{
		ClassRaw:       7,
		ClassBool:      1,
		ClassCompare:   CmpGreater,
		ClassBlend:     BlendInvSrcAlpha,
		ClassBlendOp:   BlendOpRevSubtract,
		ClassCull:      CullCCW,
		ClassFill:      FillWireframe,
		ClassShade:     ShadeFlat,
		ClassStencilOp: StencilOpIncr,
		ClassFloat:     FloatValue(0.5),
		ClassColor:     ColorValue(1, 0, 0, 1),
	}
	for _, tb := range testBackends() {
		t.Run(tb.name, func(t *testing.T) {
			d := newTestDevice(t, tb.newFn())
			for id := DeviceState(0); id < StateCount; id++ {
				value := sample[id.Class()]
				err := d.SetState(id, value)
				if tb.states[id].status == stateUnsupported {
					if !errors.Is(err, ErrUnregisteredState) {
						t.Fatalf("SetState(%s) error = %v, want ErrUnregisteredState", id, err)
					}
					if _, err := d.State(id); !errors.Is(err, ErrUnregisteredState) {
						t.Fatalf("State(%s) error = %v, want ErrUnregisteredState", id, err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("SetState(%s, %d): %v", id, value, err)
				}
				got, err := d.State(id)
				if err != nil {
					t.Fatalf("State(%s): %v", id, err)
				}
				if got != value {
					t.Fatalf("State(%s) = %d, want %d", id, got, value)
				}
			}
		})
	}
}

func TestStateValidation(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	for _, tc := range []struct {
		name  string
		id    DeviceState
		value uint32
		want  error
	}{
		{"bool out of range", StateZEnable, 2, ErrInvalidArgument},
		{"zero enum", StateZFunc, 0, ErrInvalidArgument},
		{"enum past range", StateSrcBlend, BlendInvFactor + 1, ErrInvalidArgument},
		{"unknown state", StateCount, 0, ErrUnregisteredState},
		{"negative state", -1, 0, ErrUnregisteredState},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := d.SetState(tc.id, tc.value); !errors.Is(err, tc.want) {
				t.Fatalf("SetState error = %v, want %v", err, tc.want)
			}
		})
	}
	if err := d.SetSamplerState(MaxTextureSlots, SamplerMinFilter, FilterLinear); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetSamplerState on slot %d error = %v, want ErrInvalidArgument", MaxTextureSlots, err)
	}
	if err := d.SetSamplerState(0, SamplerMinFilter, 4); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetSamplerState with a retired filter error = %v, want ErrInvalidArgument", err)
	}
}

func TestSamplerStateRoundTrip(t *testing.T) {
	for _, tb := range testBackends() {
		t.Run(tb.name, func(t *testing.T) {
			d := newTestDevice(t, tb.newFn())
			for _, tc := range []struct {
				id    SamplerState
				value uint32
			}{
				{SamplerAddressU, AddressClamp},
				{SamplerAddressV, AddressMirror},
				{SamplerMipFilter, FilterNone},
				{SamplerMaxAnisotropy, 8},
			} {
				if err := d.SetSamplerState(3, tc.id, tc.value); err != nil {
					t.Fatalf("SetSamplerState(%s): %v", tc.id, err)
				}
				if got, err := d.SamplerState(3, tc.id); err != nil || got != tc.value {
					t.Fatalf("SamplerState(%s) = %d, %v; want %d", tc.id, got, err, tc.value)
				}
			}
			if err := d.SetSamplerState(0, SamplerSRGBTexture, 1); !errors.Is(err, ErrUnregisteredState) {
				t.Fatalf("SRGBTexture error = %v, want ErrUnregisteredState", err)
			}
		})
	}
}

func TestDestroyResourceNullsEveryCopy(t *testing.T) {
	for _, tb := range testBackends() {
		t.Run(tb.name, func(t *testing.T) {
			d := newTestDevice(t, tb.newFn())
			tex, err := d.CreateTexture(FormatRGBA, 2, 2, make([]byte, 16), 1)
			if err != nil {
				t.Fatalf("CreateTexture: %v", err)
			}
			copied := tex
			if w, h := copied.Size(); w != 2 || h != 2 {
				t.Fatalf("Size() = %dx%d, want 2x2", w, h)
			}
			if err := d.DestroyResource(&tex); err != nil {
				t.Fatalf("DestroyResource: %v", err)
			}
			if !tex.IsNull() || !copied.IsNull() {
				t.Fatal("handles still live after DestroyResource")
			}
			if err := d.BindTexture(copied, 0); !errors.Is(err, ErrNullHandle) {
				t.Fatalf("BindTexture of a destroyed texture error = %v, want ErrNullHandle", err)
			}
			if err := d.DestroyResource(&copied); err != nil {
				t.Fatalf("second DestroyResource: %v", err)
			}
			if n := d.LiveResources(); n != 0 {
				t.Fatalf("LiveResources() = %d, want 0", n)
			}
		})
	}
}

func TestKindMismatch(t *testing.T) {
	d := newTestDevice(t, NewCoreBackend(newFakeGL()))
	vb, err := d.CreateVertexBuffer(nil, 3, 12, UsageDynamic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	if err := d.BindTexture(vb, 0); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("BindTexture(vertex buffer) error = %v, want ErrKindMismatch", err)
	}
	if err := d.SetVertexLayout(vb); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("SetVertexLayout(vertex buffer) error = %v, want ErrKindMismatch", err)
	}
	tex, err := d.CreateTexture(FormatRGB, 1, 1, []byte{1, 2, 3}, 0)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := d.BindBuffer(tex); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("BindBuffer(texture) error = %v, want ErrKindMismatch", err)
	}
	if err := d.UpdateBuffer(tex, 0, []byte{1}); !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("UpdateBuffer(texture) error = %v, want ErrKindMismatch", err)
	}
}

func TestForeignHandle(t *testing.T) {
	a := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	b := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	tex, err := a.CreateTexture(FormatRGBA, 1, 1, nil, 1)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	if err := b.BindTexture(tex, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("BindTexture on another device error = %v, want ErrInvalidArgument", err)
	}
	if err := b.DestroyResource(&tex); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("DestroyResource on another device error = %v, want ErrInvalidArgument", err)
	}
}

func TestCreateArguments(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	for _, tc := range []struct {
		name string
		fn   func() error
	}{
		{"zero width texture", func() error {
			_, err := d.CreateTexture(FormatRGBA, 0, 4, nil, 1)
			return err
		}},
		{"short texture data", func() error {
			_, err := d.CreateTexture(FormatRGB, 2, 2, make([]byte, 4), 1)
			return err
		}},
		{"unknown texture format", func() error {
			_, err := d.CreateTexture(TextureFormat(9), 2, 2, nil, 1)
			return err
		}},
		{"zero vertices", func() error {
			_, err := d.CreateVertexBuffer(nil, 0, 12, UsageStatic)
			return err
		}},
		{"vertex data length", func() error {
			_, err := d.CreateVertexBuffer(make([]byte, 10), 1, 12, UsageStatic)
			return err
		}},
		{"index data length", func() error {
			_, err := d.CreateIndexBuffer([]uint32{0, 1}, 3)
			return err
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.fn(); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
	if n := d.LiveResources(); n != 0 {
		t.Fatalf("failed creations left %d live resources", n)
	}
}

func TestCreateVertexLayout(t *testing.T) {
	native := newFakeGL()
	d := newTestDevice(t, NewCoreBackend(native))
	vb, err := d.CreateVertexBuffer(nil, 4, 24, UsageStatic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}

	names, vaos, live := native.next, len(native.vaos), d.LiveResources()
	empty, err := d.CreateVertexLayout(nil, vb)
	if err != nil || !empty.IsNull() {
		t.Fatalf("empty layout = %s, %v; want the null handle and no error", empty, err)
	}
	if native.next != names || len(native.vaos) != vaos || d.LiveResources() != live {
		t.Fatalf("empty layout allocated: names %d -> %d, vaos %d -> %d, live %d -> %d",
			names, native.next, vaos, len(native.vaos), live, d.LiveResources())
	}

	layout, err := d.CreateVertexLayout(quadElements, vb)
	if err != nil {
		t.Fatalf("CreateVertexLayout: %v", err)
	}
	if layout.Stride() != 24 {
		t.Fatalf("layout stride = %d, want the buffer stride 24", layout.Stride())
	}

	tooWide := []VertexElement{{Offset: 20, Type: DeclFloat2, Usage: UsageTexCoord}}
	if _, err := d.CreateVertexLayout(tooWide, vb); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("layout past the stride error = %v, want ErrInvalidArgument", err)
	}
	if _, err := d.CreateVertexLayout(quadElements, ResourceHandle{}); !errors.Is(err, ErrNullHandle) {
		t.Fatalf("layout without a buffer error = %v, want ErrNullHandle", err)
	}
}

func TestUpdateBufferRange(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	vb, err := d.CreateVertexBuffer(nil, 2, 8, UsageDynamic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	if err := d.UpdateBuffer(vb, 8, make([]byte, 8)); err != nil {
		t.Fatalf("UpdateBuffer of the second vertex: %v", err)
	}
	if err := d.UpdateBuffer(vb, 9, make([]byte, 8)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("UpdateBuffer past the end error = %v, want ErrInvalidArgument", err)
	}
	if err := d.UpdateBuffer(ResourceHandle{}, 0, nil); !errors.Is(err, ErrNullHandle) {
		t.Fatalf("UpdateBuffer(null) error = %v, want ErrNullHandle", err)
	}
}

func TestSceneBracketing(t *testing.T) {
	for _, tb := range testBackends() {
		t.Run(tb.name, func(t *testing.T) {
			d := newTestDevice(t, tb.newFn())
			bindQuad(t, d)

			if err := d.DrawPrimitives(4, 6, 0, 0); !errors.Is(err, ErrSceneState) {
				t.Fatalf("draw outside a scene error = %v, want ErrSceneState", err)
			}
			if err := d.EndScene(); !errors.Is(err, ErrSceneState) {
				t.Fatalf("EndScene without BeginScene error = %v, want ErrSceneState", err)
			}
			if err := d.BeginScene(); err != nil {
				t.Fatalf("BeginScene: %v", err)
			}
			if err := d.BeginScene(); !errors.Is(err, ErrSceneState) {
				t.Fatalf("nested BeginScene error = %v, want ErrSceneState", err)
			}
			if err := d.Present(); !errors.Is(err, ErrSceneState) {
				t.Fatalf("Present inside a scene error = %v, want ErrSceneState", err)
			}
			if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
				t.Fatalf("DrawPrimitives: %v", err)
			}
			if err := d.EndScene(); err != nil {
				t.Fatalf("EndScene: %v", err)
			}
			if err := d.Present(); err != nil {
				t.Fatalf("Present: %v", err)
			}
		})
	}
}

func TestDrawValidation(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); !errors.Is(err, ErrNullHandle) {
		t.Fatalf("draw with nothing bound error = %v, want ErrNullHandle", err)
	}
	bindQuad(t, d)
	for _, tc := range []struct {
		name                                              string
		vertexCount, indexCount, vertexOffset, indexOffset int
	}{
		{"zero indices", 4, 0, 0, 0},
		{"not triangles", 4, 4, 0, 0},
		{"indices past the end", 4, 6, 0, 3},
		{"vertices past the end", 4, 6, 1, 0},
		{"negative offset", 4, 3, -1, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := d.DrawPrimitives(tc.vertexCount, tc.indexCount, tc.vertexOffset, tc.indexOffset)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestDestroyedResourceUnbinds(t *testing.T) {
	d := newTestDevice(t, NewCoreBackend(newFakeGL()))
	vb, _, _ := bindQuad(t, d)
	if err := d.DestroyResource(&vb); err != nil {
		t.Fatalf("DestroyResource: %v", err)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); !errors.Is(err, ErrNullHandle) {
		t.Fatalf("draw after destroying the vertex buffer error = %v, want ErrNullHandle", err)
	}
}

func TestDestroyReleasesLeaks(t *testing.T) {
	native := newFakeGL()
	d, err := NewDevice(NewLegacyBackend(native))
	if err != nil {
		t.Fatalf("NewDevice: %v", err)
	}
	tex, err := d.CreateTexture(FormatBGRA, 4, 4, nil, 0)
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	bindQuad(t, d)
	if n := d.LiveResources(); n != 4 {
		t.Fatalf("LiveResources() = %d, want 4", n)
	}

	if err := d.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !native.destroyed {
		t.Fatal("native backend was not destroyed")
	}
	if len(native.textures) != 0 || len(native.buffers) != 0 {
		t.Fatalf("native objects left: %d textures, %d buffers", len(native.textures), len(native.buffers))
	}
	if !tex.IsNull() {
		t.Fatal("texture handle still live after Destroy")
	}
	if err := d.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
	if _, err := d.CreateTexture(FormatRGBA, 1, 1, nil, 1); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("CreateTexture after Destroy error = %v, want ErrNotInitialized", err)
	}
	if err := d.SetModelMatrix(mgl32.Ident4()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("SetModelMatrix after Destroy error = %v, want ErrNotInitialized", err)
	}
}

func TestViewport(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	if err := d.SetViewport(0, 10); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetViewport(0, 10) error = %v, want ErrInvalidArgument", err)
	}
	if err := d.SetViewport(640, 480); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if w, h := d.Viewport(); w != 640 || h != 480 {
		t.Fatalf("Viewport() = %dx%d, want 640x480", w, h)
	}
}

func TestStateTablesComplete(t *testing.T) {
	for name, table := range map[string]*[StateCount]stateMapping{
		"legacy": &glStates,
		"core":   &glCoreStates,
		"modern": &modernStates,
	} {
		for id, m := range table {
			if m.status == stateMissing {
				t.Errorf("%s: no entry for %s", name, DeviceState(id))
			}
		}
	}
	for name, table := range map[string]*[SamplerStateCount]stateMapping{
		"gl":     &glSamplerStates,
		"modern": &modernSamplerStates,
	} {
		for id, m := range table {
			if m.status == stateMissing {
				t.Errorf("%s: no entry for sampler %s", name, SamplerState(id))
			}
		}
	}
}

func TestAliasTables(t *testing.T) {
	for name, aliases := range map[string]*valueAliases{"gl": &glAliases, "modern": &modernAliases} {
		for class, table := range aliases {
			if table == nil {
				continue
			}
			if want := int(classRange[class]) + 1; len(table) != want {
				t.Errorf("%s: class %d has %d aliases, want %d", name, class, len(table), want)
				continue
			}
			for v := uint32(1); v <= classRange[class]; v++ {
				native, err := aliases.toNative(ValueClass(class), v)
				if err != nil {
					t.Fatalf("%s: toNative(%d, %d): %v", name, class, v, err)
				}
				back, err := aliases.toGeneric(ValueClass(class), native)
				if err != nil || back != v {
					t.Errorf("%s: class %d value %d came back as %d, %v", name, class, v, back, err)
				}
			}
		}
	}
}

func TestDrawRejectsLayoutStrideMismatch(t *testing.T) {
	backends := map[string]func() Backend{
		"legacy": func() Backend { return NewLegacyBackend(newFakeGL()) },
		"core":   func() Backend { return NewCoreBackend(newFakeGL()) },
		"modern": func() Backend { return NewModernBackend(newFakeGPU()) },
	}
	for name, backend := range backends {
		t.Run(name, func(t *testing.T) {
			d := newTestDevice(t, backend())
			bindQuad(t, d)
			wide, err := d.CreateVertexBuffer(nil, 4, 32, UsageStatic)
			if err != nil {
				t.Fatalf("CreateVertexBuffer: %v", err)
			}
			if err := d.BindBuffer(wide); err != nil {
				t.Fatalf("BindBuffer: %v", err)
			}
			if err := d.BeginScene(); err != nil {
				t.Fatalf("BeginScene: %v", err)
			}
			if err := d.DrawPrimitives(4, 6, 0, 0); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("draw with a stride 16 layout over a stride 32 buffer: error = %v, want ErrInvalidArgument", err)
			}

			same, err := d.CreateVertexBuffer(quadVertices(), 4, 16, UsageStatic)
			if err != nil {
				t.Fatalf("CreateVertexBuffer: %v", err)
			}
			if err := d.BindBuffer(same); err != nil {
				t.Fatalf("BindBuffer: %v", err)
			}
			if err := d.DrawPrimitives(4, 6, 0, 0); err != nil {
				t.Fatalf("draw with a matching stride from another buffer: %v", err)
			}
			if err := d.EndScene(); err != nil {
				t.Fatalf("EndScene: %v", err)
			}
		})
	}
}

func TestDepthBiasAgreesAcrossBackends(t *testing.T) {
	const want = 16777 // 0.001 of a 24 bit depth range
	bias := FloatValue(0.001)

	gl := newFakeGL()
	legacy := newTestDevice(t, NewLegacyBackend(gl))
	if err := legacy.SetState(StateDepthBias, bias); err != nil {
		t.Fatalf("legacy SetState: %v", err)
	}
	if got := int32(DepthBiasUnits(gl.regs[GLPolygonOffsetUnits])); got != want {
		t.Fatalf("legacy polygon offset units = %d, want %d", got, want)
	}

	modern, gpu := newModernDevice(t)
	bindQuad(t, modern)
	if err := modern.SetState(StateDepthBias, bias); err != nil {
		t.Fatalf("modern SetState: %v", err)
	}
	if err := modern.BeginScene(); err != nil {
		t.Fatalf("BeginScene: %v", err)
	}
	if err := modern.DrawPrimitives(4, 6, 0, 0); err != nil {
		t.Fatalf("DrawPrimitives: %v", err)
	}
	if got := gpu.pipelines[gpu.draws[0].pipeline].DepthStencil.DepthBias; got != want {
		t.Fatalf("modern depth bias = %d, want %d", got, want)
	}
}

// failingRelease fails the next fails native releases.
type failingRelease struct {
	Backend
	fails int
}

func (b *failingRelease) Release(kind ResourceKind, native any) error {
	if b.fails > 0 {
		b.fails--
		return errors.New("device lost")
	}
	return b.Backend.Release(kind, native)
}

func TestDestroyResourceRetriesFailedRelease(t *testing.T) {
	native := newFakeGL()
	backend := &failingRelease{Backend: NewCoreBackend(native), fails: 1}
	d := newTestDevice(t, backend)
	vb, err := d.CreateVertexBuffer(quadVertices(), 4, 16, UsageStatic)
	if err != nil {
		t.Fatalf("CreateVertexBuffer: %v", err)
	}
	if err := d.BindBuffer(vb); err != nil {
		t.Fatal(err)
	}
	alias := vb

	if err := d.DestroyResource(&vb); err == nil {
		t.Fatal("failed release reported no error")
	}
	if vb.IsNull() || alias.IsNull() {
		t.Fatal("failed release nulled the handle")
	}
	if n := d.LiveResources(); n != 1 {
		t.Fatalf("live resources after failed release = %d, want 1", n)
	}
	if len(native.deleted) != 0 {
		t.Fatalf("deleted %v before a successful release", native.deleted)
	}

	if err := d.DestroyResource(&vb); err != nil {
		t.Fatalf("retried DestroyResource: %v", err)
	}
	if !vb.IsNull() || !alias.IsNull() || d.LiveResources() != 0 {
		t.Fatalf("retry left vb=%s alias=%s live=%d", vb, alias, d.LiveResources())
	}
	if len(native.deleted) != 1 {
		t.Fatalf("deleted = %v, want one buffer", native.deleted)
	}
	if err := d.BeginScene(); err != nil {
		t.Fatal(err)
	}
	if err := d.DrawPrimitives(4, 6, 0, 0); !errors.Is(err, ErrNullHandle) {
		t.Errorf("draw after destroying the bound buffer error = %v, want ErrNullHandle", err)
	}
	if err := d.EndScene(); err != nil {
		t.Fatal(err)
	}
}

func TestDestroyForgetsResourcesThatFailRelease(t *testing.T) {
	backend := &failingRelease{Backend: NewLegacyBackend(newFakeGL()), fails: 1}
	d, err := NewDevice(backend)
	if err != nil {
		t.Fatal(err)
	}
	tex, err := d.CreateTexture(FormatRGBA, 2, 2, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Destroy(); err == nil {
		t.Fatal("Destroy hid the release failure")
	}
	if !tex.IsNull() || d.LiveResources() != 0 {
		t.Errorf("after Destroy tex=%s live=%d", tex, d.LiveResources())
	}
}

func TestResourceHandleDescribesResource(t *testing.T) {
	d := newTestDevice(t, NewLegacyBackend(newFakeGL()))
	tex, err := d.CreateTexture(FormatBGRA, 8, 4, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Format() != FormatBGRA || tex.MipLevels() != 4 {
		t.Errorf("texture format %v levels %d, want BGRA and the full chain of 4", tex.Format(), tex.MipLevels())
	}
	capped, err := d.CreateTexture(FormatRGB, 8, 8, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if capped.MipLevels() != 2 {
		t.Errorf("requested 2 levels, handle reports %d", capped.MipLevels())
	}

	vb, err := d.CreateVertexBuffer(nil, 4, 16, UsageStream)
	if err != nil {
		t.Fatal(err)
	}
	if vb.Usage() != UsageStream || vb.Format() != 0 || vb.MipLevels() != 0 {
		t.Errorf("vertex buffer usage %v format %v levels %d", vb.Usage(), vb.Format(), vb.MipLevels())
	}

	if err := d.DestroyResource(&tex); err != nil {
		t.Fatal(err)
	}
	if tex.Format() != 0 || tex.MipLevels() != 0 {
		t.Error("null handle still describes the destroyed texture")
	}
}
