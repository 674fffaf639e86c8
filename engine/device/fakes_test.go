package device

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
)

type fakeDraw struct {
	count      int
	byteOffset int
	baseVertex int
}

type fakeAttrib struct {
	size       int32
	typ        uint32
	normalized bool
	stride     int
	offset     int
	buffer     uint32
}

// fakeGL records the GL calls of both GL adapters and keeps just enough state to answer queries.
type fakeGL struct {
	next uint32

	regs     map[uint32]uint32
	params   map[[2]uint32]uint32
	textures map[uint32]GLTextureUpload
	buffers  map[uint32][]byte
	deleted  []uint32
	units    [MaxTextureSlots]uint32
	bound    map[uint32]uint32

	matrices map[uint32]mgl32.Mat4
	arrays   []ClientArray

	locations map[string]int32
	ints      map[int32]int32
	vec2s     map[int32][2]float32
	mats      map[int32]mgl32.Mat4
	vao       uint32
	vaos      map[uint32]map[uint32]fakeAttrib
	program   uint32

	viewport [2]int
	clears   []uint32
	draws    []fakeDraw
	frame    []byte
	swaps    int

	initErr   error
	destroyed bool
}

var (
	_ LegacyNative = &fakeGL{}
	_ CoreNative   = &fakeGL{}
)

func newFakeGL() *fakeGL {
	return &fakeGL{
		regs:      GLDefaultRenderStates(),
		params:    make(map[[2]uint32]uint32),
		textures:  make(map[uint32]GLTextureUpload),
		buffers:   make(map[uint32][]byte),
		bound:     make(map[uint32]uint32),
		matrices:  make(map[uint32]mgl32.Mat4),
		locations: make(map[string]int32),
		ints:      make(map[int32]int32),
		vec2s:     make(map[int32][2]float32),
		mats:      make(map[int32]mgl32.Mat4),
		vaos:      make(map[uint32]map[uint32]fakeAttrib),
	}
}

func (f *fakeGL) name() uint32 {
	f.next++
	return f.next
}

func (f *fakeGL) Init() error { return f.initErr }
func (f *fakeGL) Destroy()    { f.destroyed = true }

func (f *fakeGL) CreateTexture(upload GLTextureUpload, _ []byte) (uint32, error) {
	id := f.name()
	f.textures[id] = upload
	return id, nil
}

func (f *fakeGL) DeleteTexture(tex uint32) {
	delete(f.textures, tex)
	f.deleted = append(f.deleted, tex)
}

func (f *fakeGL) BindTexture(unit int, tex uint32) { f.units[unit] = tex }

func (f *fakeGL) SetSamplerParameter(unit int, pname, value uint32) {
	f.params[[2]uint32{uint32(unit), pname}] = value
}

func (f *fakeGL) CreateBuffer(_ uint32, data []byte, size int, _ uint32) (uint32, error) {
	id := f.name()
	buf := make([]byte, size)
	copy(buf, data)
	f.buffers[id] = buf
	return id, nil
}

func (f *fakeGL) BufferSubData(_ uint32, buf uint32, offset int, data []byte) {
	copy(f.buffers[buf][offset:], data)
}

func (f *fakeGL) DeleteBuffer(buf uint32) {
	delete(f.buffers, buf)
	f.deleted = append(f.deleted, buf)
}

func (f *fakeGL) BindBuffer(target, buf uint32) { f.bound[target] = buf }

func (f *fakeGL) SetRenderState(token, value uint32) { f.regs[token] = value }
func (f *fakeGL) RenderState(token uint32) uint32    { return f.regs[token] }

func (f *fakeGL) Viewport(width, height int) { f.viewport = [2]int{width, height} }

func (f *fakeGL) Clear(mask uint32, _, _, _ float32) { f.clears = append(f.clears, mask) }

func (f *fakeGL) DrawElements(count, indexByteOffset int) {
	f.draws = append(f.draws, fakeDraw{count: count, byteOffset: indexByteOffset})
}

func (f *fakeGL) ReadPixels(width, height int) []byte {
	if f.frame != nil {
		return append([]byte(nil), f.frame...)
	}
	return make([]byte, width*height*4)
}

func (f *fakeGL) SwapBuffers() { f.swaps++ }

func (f *fakeGL) LoadMatrix(mode uint32, m mgl32.Mat4) { f.matrices[mode] = m }

func (f *fakeGL) SetClientArrays(arrays []ClientArray) {
	f.arrays = append([]ClientArray(nil), arrays...)
}

func (f *fakeGL) CreateProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	if vertexSrc == "" || fragmentSrc == "" {
		return 0, fmt.Errorf("empty shader")
	}
	return f.name(), nil
}

func (f *fakeGL) UseProgram(program uint32)    { f.program = program }
func (f *fakeGL) DeleteProgram(program uint32) { f.deleted = append(f.deleted, program) }

func (f *fakeGL) UniformLocation(_ uint32, name string) int32 {
	if loc, ok := f.locations[name]; ok {
		return loc
	}
	loc := int32(len(f.locations))
	f.locations[name] = loc
	return loc
}

func (f *fakeGL) UniformMatrix4(location int32, m mgl32.Mat4) { f.mats[location] = m }
func (f *fakeGL) Uniform1i(location int32, v int32)           { f.ints[location] = v }
func (f *fakeGL) Uniform2f(location int32, x, y float32)      { f.vec2s[location] = [2]float32{x, y} }

func (f *fakeGL) CreateVertexArray() uint32 {
	id := f.name()
	f.vaos[id] = make(map[uint32]fakeAttrib)
	return id
}

func (f *fakeGL) BindVertexArray(vao uint32) { f.vao = vao }

func (f *fakeGL) DeleteVertexArray(vao uint32) {
	delete(f.vaos, vao)
	f.deleted = append(f.deleted, vao)
}

func (f *fakeGL) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int) {
	f.vaos[f.vao][index] = fakeAttrib{
		size:       size,
		typ:        typ,
		normalized: normalized,
		stride:     stride,
		offset:     offset,
		buffer:     f.bound[GLArrayBuffer],
	}
}

func (f *fakeGL) EnableVertexAttribArray(uint32) {}

func (f *fakeGL) DrawElementsBaseVertex(count, indexByteOffset, baseVertex int) {
	f.draws = append(f.draws, fakeDraw{count: count, byteOffset: indexByteOffset, baseVertex: baseVertex})
}

func (f *fakeGL) uniform(name string) int32 {
	return f.locations[name]
}

type fakeGPUDraw struct {
	pipeline   GPUHandle
	group      GPUHandle
	offset     uint32
	indexCount uint32
	firstIndex uint32
	baseVertex int32
}

type fakeWrite struct {
	buf    GPUHandle
	offset uint64
	size   int
}

// fakeGPU records the calls of the modern adapter.
type fakeGPU struct {
	next GPUHandle

	pipelines map[GPUHandle]ModernPipelineDesc
	samplers  map[GPUHandle]gputypes.SamplerDescriptor
	textures  map[GPUHandle]gputypes.TextureDescriptor
	levels    map[GPUHandle][][]byte
	shaders   map[GPUHandle]string
	released  map[GPUHandle]bool
	writes    []fakeWrite

	frames  []ModernFrame
	draws   []fakeGPUDraw
	resizes [][2]int
	ended   int
	present int

	pipeline GPUHandle
	group    GPUHandle
	offset   uint32
	inFrame  bool

	destroyed bool
}

var _ ModernNative = &fakeGPU{}

func newFakeGPU() *fakeGPU {
	return &fakeGPU{
		pipelines: make(map[GPUHandle]ModernPipelineDesc),
		samplers:  make(map[GPUHandle]gputypes.SamplerDescriptor),
		textures:  make(map[GPUHandle]gputypes.TextureDescriptor),
		levels:    make(map[GPUHandle][][]byte),
		shaders:   make(map[GPUHandle]string),
		released:  make(map[GPUHandle]bool),
	}
}

func (f *fakeGPU) handle() GPUHandle {
	f.next++
	return f.next
}

func (f *fakeGPU) Init() error { return nil }
func (f *fakeGPU) Destroy()    { f.destroyed = true }

func (f *fakeGPU) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }
func (f *fakeGPU) DepthFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatDepth24PlusStencil8
}

func (f *fakeGPU) Resize(width, height int) error {
	f.resizes = append(f.resizes, [2]int{width, height})
	return nil
}

func (f *fakeGPU) CreateBuffer(gputypes.BufferDescriptor, []byte) (GPUHandle, error) {
	return f.handle(), nil
}

func (f *fakeGPU) WriteBuffer(buf GPUHandle, offset uint64, data []byte) {
	f.writes = append(f.writes, fakeWrite{buf: buf, offset: offset, size: len(data)})
}

func (f *fakeGPU) CreateTexture(desc gputypes.TextureDescriptor, levels [][]byte) (GPUHandle, error) {
	h := f.handle()
	f.textures[h] = desc
	f.levels[h] = levels
	return h, nil
}

func (f *fakeGPU) CreateSampler(desc gputypes.SamplerDescriptor) (GPUHandle, error) {
	h := f.handle()
	f.samplers[h] = desc
	return h, nil
}

func (f *fakeGPU) CreateShaderModule(_, wgsl string) (GPUHandle, error) {
	h := f.handle()
	f.shaders[h] = wgsl
	return h, nil
}

func (f *fakeGPU) CreatePipeline(desc ModernPipelineDesc) (GPUHandle, error) {
	h := f.handle()
	f.pipelines[h] = desc
	return h, nil
}

func (f *fakeGPU) CreateBindGroup(_, _, _ GPUHandle, _ uint64) (GPUHandle, error) {
	return f.handle(), nil
}

func (f *fakeGPU) Release(h GPUHandle) { f.released[h] = true }

func (f *fakeGPU) BeginFrame(frame ModernFrame) error {
	if f.inFrame {
		return fmt.Errorf("frame already open")
	}
	f.inFrame = true
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeGPU) SetPipeline(p GPUHandle)                 { f.pipeline = p }
func (f *fakeGPU) SetBindGroup(g GPUHandle, offset uint32) { f.group, f.offset = g, offset }
func (f *fakeGPU) SetVertexBuffer(GPUHandle)               {}
func (f *fakeGPU) SetIndexBuffer(GPUHandle)                {}
func (f *fakeGPU) SetStencilReference(uint32)              {}
func (f *fakeGPU) Present()                                { f.present++ }

func (f *fakeGPU) DrawIndexed(indexCount, firstIndex uint32, baseVertex int32) {
	f.draws = append(f.draws, fakeGPUDraw{
		pipeline:   f.pipeline,
		group:      f.group,
		offset:     f.offset,
		indexCount: indexCount,
		firstIndex: firstIndex,
		baseVertex: baseVertex,
	})
}

func (f *fakeGPU) EndFrame() error {
	if !f.inFrame {
		return fmt.Errorf("no open frame")
	}
	f.inFrame = false
	f.ended++
	return nil
}
