package device

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-gfx/common"
	"github.com/go-gl/mathgl/mgl32"
)

// device is the implementation of the Device interface. It owns resource bookkeeping, argument
// validation and frame bracketing, and delegates the native work to a Backend.
type device struct {
	mu *sync.Mutex

	name    string
	backend Backend

	skipDefaults bool

	resources map[uint64]*resource
	nextID    uint64

	boundVB     *resource
	boundIB     *resource
	boundLayout *resource

	viewportW int
	viewportH int

	inScene   bool
	destroyed bool
}

// Device is the backend-neutral rendering device.
//
// A Device owns every resource it creates. Resources are referenced through ResourceHandle values
// which stay valid until DestroyResource is called on any copy of them, or until the Device itself
// is destroyed. All methods must be called from the thread that owns the native context.
type Device interface {
	// Backend returns the name of the backend adapter driving this device.
	//
	// Returns:
	//   - string: the backend name, e.g. "legacy", "core" or "modern"
	Backend() string

	// CreateTexture creates a 2-D texture and uploads its first mip level.
	//
	// Parameters:
	//   - format: the layout of pixels
	//   - width: the width in pixels, > 0
	//   - height: the height in pixels, > 0
	//   - pixels: the level 0 pixel data, nil for an uninitialized texture
	//   - mipLevels: the number of levels, 0 to generate the full chain
	//
	// Returns:
	//   - ResourceHandle: the texture handle, or the null handle on failure
	//   - error: ErrInvalidArgument for bad sizes, or the backend failure
	CreateTexture(format TextureFormat, width, height int, pixels []byte, mipLevels int) (ResourceHandle, error)

	// BindTexture binds a texture to a sampler slot.
	//
	// Parameters:
	//   - h: the texture handle
	//   - slot: the slot index in [0, MaxTextureSlots)
	//
	// Returns:
	//   - error: ErrNullHandle, ErrKindMismatch or ErrInvalidArgument on bad input
	BindTexture(h ResourceHandle, slot int) error

	// ClearTexture unbinds whatever texture is bound to a slot.
	//
	// Parameters:
	//   - slot: the slot index in [0, MaxTextureSlots)
	//
	// Returns:
	//   - error: ErrInvalidArgument for an out of range slot
	ClearTexture(slot int) error

	// CreateVertexLayout creates a vertex layout describing the interleaved vertices of vb.
	// An empty element list yields the null handle and no error.
	//
	// Parameters:
	//   - elements: the vertex elements
	//   - vb: a live vertex buffer the layout is built against
	//
	// Returns:
	//   - ResourceHandle: the layout handle, or the null handle
	//   - error: error if the elements or the vertex buffer are invalid
	CreateVertexLayout(elements []VertexElement, vb ResourceHandle) (ResourceHandle, error)

	// SetVertexLayout activates a vertex layout for subsequent draws. Layouts containing a
	// UsagePositionT element switch the device to screen-space positions.
	//
	// Parameters:
	//   - h: the layout handle
	//
	// Returns:
	//   - error: ErrNullHandle or ErrKindMismatch on bad input
	SetVertexLayout(h ResourceHandle) error

	// CreateVertexBuffer creates a vertex buffer holding count vertices of stride bytes.
	//
	// Parameters:
	//   - data: the initial contents, nil or exactly count*stride bytes
	//   - count: the number of vertices, > 0
	//   - stride: the size of one vertex in bytes, > 0
	//   - usage: the update-frequency hint
	//
	// Returns:
	//   - ResourceHandle: the buffer handle, or the null handle on failure
	//   - error: ErrInvalidArgument for bad sizes, or the backend failure
	CreateVertexBuffer(data []byte, count, stride int, usage BufferUsage) (ResourceHandle, error)

	// CreateIndexBuffer creates a buffer of 32-bit indices.
	//
	// Parameters:
	//   - data: the initial indices, nil or exactly count entries
	//   - count: the number of indices, > 0
	//
	// Returns:
	//   - ResourceHandle: the buffer handle, or the null handle on failure
	//   - error: ErrInvalidArgument for bad sizes, or the backend failure
	CreateIndexBuffer(data []uint32, count int) (ResourceHandle, error)

	// UpdateBuffer overwrites part of a vertex or index buffer.
	//
	// Parameters:
	//   - h: the buffer handle
	//   - offset: the byte offset to write at
	//   - data: the bytes to write; offset+len(data) must fit in the buffer
	//
	// Returns:
	//   - error: error if the handle is not a live buffer or the range is out of bounds
	UpdateBuffer(h ResourceHandle, offset int, data []byte) error

	// BindBuffer binds a vertex or index buffer for subsequent draws, dispatching on its kind.
	//
	// Parameters:
	//   - h: the buffer handle
	//
	// Returns:
	//   - error: ErrNullHandle or ErrKindMismatch on bad input
	BindBuffer(h ResourceHandle) error

	// DestroyResource releases the resource behind h and sets *h to the null handle. Every other
	// copy of the handle becomes null too. Destroying a null handle is a no-op. When the backend
	// fails to release the object, h and its copies stay live and the call can be retried.
	//
	// Parameters:
	//   - h: pointer to the handle to destroy
	//
	// Returns:
	//   - error: error if the handle belongs to another device or the backend release fails
	DestroyResource(h *ResourceHandle) error

	// SetState sets a render state.
	//
	// Parameters:
	//   - id: the state to set
	//   - value: the generic value, interpreted according to id.Class()
	//
	// Returns:
	//   - error: ErrUnregisteredState if the backend does not map id, ErrInvalidArgument for bad values
	SetState(id DeviceState, value uint32) error

	// State returns the current value of a render state in generic form.
	//
	// Parameters:
	//   - id: the state to query
	//
	// Returns:
	//   - uint32: the generic value last set, or the backend default
	//   - error: ErrUnregisteredState if the backend does not map id
	State(id DeviceState) (uint32, error)

	// SetSamplerState sets a sampling parameter on a texture slot.
	//
	// Parameters:
	//   - slot: the slot index in [0, MaxTextureSlots)
	//   - id: the sampler state to set
	//   - value: the generic value
	//
	// Returns:
	//   - error: ErrUnregisteredState if the backend does not map id, ErrInvalidArgument for bad input
	SetSamplerState(slot int, id SamplerState, value uint32) error

	// SamplerState returns a sampling parameter of a texture slot in generic form.
	//
	// Parameters:
	//   - slot: the slot index in [0, MaxTextureSlots)
	//   - id: the sampler state to query
	//
	// Returns:
	//   - uint32: the generic value
	//   - error: ErrUnregisteredState if the backend does not map id
	SamplerState(slot int, id SamplerState) (uint32, error)

	// SetViewport sets the drawable area, anchored at the origin.
	//
	// Parameters:
	//   - width: the width in pixels, > 0
	//   - height: the height in pixels, > 0
	//
	// Returns:
	//   - error: ErrInvalidArgument for non-positive sizes
	SetViewport(width, height int) error

	// Viewport returns the size last passed to SetViewport.
	//
	// Returns:
	//   - int: the width in pixels, 0 before the first SetViewport
	//   - int: the height in pixels, 0 before the first SetViewport
	Viewport() (int, int)

	// SetViewProjMatrix sets the camera view and projection matrices. Projection matrices use
	// the OpenGL clip-space convention; backends with a different depth range correct them.
	//
	// Parameters:
	//   - view: the world to view transform
	//   - proj: the view to clip transform
	//
	// Returns:
	//   - error: ErrNotInitialized after Destroy
	SetViewProjMatrix(view, proj mgl32.Mat4) error

	// SetModelMatrix sets the object to world transform used by subsequent draws.
	//
	// Parameters:
	//   - model: the model matrix
	//
	// Returns:
	//   - error: ErrNotInitialized after Destroy
	SetModelMatrix(model mgl32.Mat4) error

	// DrawPrimitives draws an indexed triangle list from the bound buffers and layout. The layout
	// may have been created for another vertex buffer as long as the strides match.
	//
	// Parameters:
	//   - vertexCount: the number of vertices referenced, 0 to skip the range check
	//   - indexCount: the number of indices, a positive multiple of 3
	//   - vertexOffset: added to every index before fetching a vertex
	//   - indexOffset: the first index to read
	//
	// Returns:
	//   - error: ErrSceneState outside BeginScene/EndScene, ErrInvalidArgument for bad ranges or a
	//     layout whose stride differs from the bound vertex buffer
	DrawPrimitives(vertexCount, indexCount, vertexOffset, indexOffset int) error

	// Clear resets the selected framebuffer planes. Depth clears to 1 and stencil to 0.
	//
	// Parameters:
	//   - flags: the planes to clear
	//   - color: the RGB clear color, alpha is 1
	//
	// Returns:
	//   - error: ErrNotInitialized after Destroy
	Clear(flags ClearFlags, color mgl32.Vec3) error

	// BeginScene opens a frame. Scenes do not nest.
	//
	// Returns:
	//   - error: ErrSceneState if a scene is already open
	BeginScene() error

	// EndScene closes the frame opened by BeginScene.
	//
	// Returns:
	//   - error: ErrSceneState if no scene is open
	EndScene() error

	// Present shows the finished frame.
	//
	// Returns:
	//   - error: ErrSceneState if a scene is still open
	Present() error

	// ReadPixels reads back the current framebuffer as tightly packed RGBA rows, top row first.
	//
	// Returns:
	//   - []byte: the pixel data
	//   - int: the width in pixels
	//   - int: the height in pixels
	//   - error: ErrUnsupported if the backend cannot read back
	ReadPixels() ([]byte, int, int, error)

	// LiveResources returns the number of resources created and not yet destroyed.
	//
	// Returns:
	//   - int: the number of live resources
	LiveResources() int

	// Destroy releases every remaining resource and the native context. Calling Destroy twice
	// is a no-op.
	//
	// Returns:
	//   - error: the first release or teardown failure
	Destroy() error
}

var _ Device = &device{}

// Backend is a native rendering API adapter. A Backend only translates; the Device validates every
// argument and guarantees handles passed back are live, of the right kind and created by this
// Backend. Native objects are returned as opaque values and handed back unchanged.
type Backend interface {
	Name() string
	Init() error
	Destroy() error

	CreateTexture(desc TextureDesc, pixels []byte) (any, error)
	BindTexture(tex any, slot int) error
	ClearTexture(slot int) error

	CreateVertexBuffer(data []byte, size int, usage BufferUsage) (any, error)
	CreateIndexBuffer(data []uint32, count int) (any, error)
	UpdateBuffer(kind ResourceKind, buf any, offset int, data []byte) error
	BindVertexBuffer(buf any, stride int) error
	BindIndexBuffer(buf any) error

	CreateVertexLayout(elements []VertexElement, stride int, vb any) (any, error)
	SetVertexLayout(layout any) error

	Release(kind ResourceKind, native any) error

	SetState(id DeviceState, value uint32) error
	State(id DeviceState) (uint32, error)
	SetSamplerState(slot int, id SamplerState, value uint32) error
	SamplerState(slot int, id SamplerState) (uint32, error)

	SetViewport(width, height int) error
	SetViewProj(view, proj mgl32.Mat4) error
	SetModel(model mgl32.Mat4) error

	Clear(flags ClearFlags, color mgl32.Vec3) error
	BeginScene() error
	Draw(call DrawCall) error
	EndScene() error
	Present() error

	ReadPixels() ([]byte, int, int, error)
}

// NewDevice wraps a backend in a Device, initializes it and applies the initial render states:
// alpha blending off, lighting off, depth test on, linear min/mag filtering on slots 0 and 1.
//
// Parameters:
//   - backend: the backend adapter to drive
//   - options: builder options
//
// Returns:
//   - Device: the initialized device
//   - error: error if the backend fails to initialize
func NewDevice(backend Backend, options ...DeviceBuilderOption) (Device, error) {
	if backend == nil {
		return nil, fmt.Errorf("nil backend: %w", ErrInvalidArgument)
	}
	d := &device{
		mu:        &sync.Mutex{},
		backend:   backend,
		name:      backend.Name(),
		resources: make(map[uint64]*resource),
	}
	for _, opt := range options {
		opt(d)
	}

	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", d.name, err)
	}
	if !d.skipDefaults {
		if err := d.applyDefaults(); err != nil {
			_ = backend.Destroy()
			return nil, err
		}
	}
	Logger().Info("device initialized", slog.String("backend", d.name))
	return d, nil
}

func (d *device) applyDefaults() error {
	defaults := []struct {
		id    DeviceState
		value uint32
	}{
		{StateAlphaBlendEnable, 0},
		{StateLighting, 0},
		{StateZEnable, 1},
	}
	for _, s := range defaults {
		if err := d.backend.SetState(s.id, s.value); err != nil && !errors.Is(err, ErrUnregisteredState) {
			return fmt.Errorf("failed to apply default %s: %w", s.id, err)
		}
	}
	for slot := 0; slot < 2; slot++ {
		for _, id := range []SamplerState{SamplerMinFilter, SamplerMagFilter} {
			if err := d.backend.SetSamplerState(slot, id, FilterLinear); err != nil && !errors.Is(err, ErrUnregisteredState) {
				return fmt.Errorf("failed to apply default sampler %s on slot %d: %w", id, slot, err)
			}
		}
	}
	return nil
}

func (d *device) Backend() string {
	return d.name
}

func (d *device) CreateTexture(format TextureFormat, width, height int, pixels []byte, mipLevels int) (ResourceHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ResourceHandle{}, ErrNotInitialized
	}

	bpp := format.BytesPerPixel()
	switch {
	case bpp == 0:
		return ResourceHandle{}, fmt.Errorf("texture format %d: %w", int(format), ErrInvalidArgument)
	case width <= 0 || height <= 0:
		return ResourceHandle{}, fmt.Errorf("texture size %dx%d: %w", width, height, ErrInvalidArgument)
	case pixels != nil && len(pixels) != width*height*bpp:
		return ResourceHandle{}, fmt.Errorf("texture %dx%d %s needs %d bytes, got %d: %w",
			width, height, format, width*height*bpp, len(pixels), ErrInvalidArgument)
	case mipLevels < 0:
		return ResourceHandle{}, fmt.Errorf("mip levels %d: %w", mipLevels, ErrInvalidArgument)
	}

	levels := mipLevels
	if full := common.MipLevelCount(width, height); levels == 0 || levels > full {
		levels = full
	}
	desc := TextureDesc{Format: format, Width: width, Height: height, MipLevels: mipLevels}
	native, err := d.backend.CreateTexture(desc, pixels)
	if err != nil {
		Logger().Warn("texture creation failed", slog.Int("width", width), slog.Int("height", height), slog.Any("error", err))
		return ResourceHandle{}, fmt.Errorf("failed to create texture: %w", err)
	}
	res := d.track(KindTexture, native)
	res.format = format
	res.width = width
	res.height = height
	res.levels = levels
	return ResourceHandle{kind: KindTexture, res: res}, nil
}

func (d *device) BindTexture(h ResourceHandle, slot int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.lookup(h, KindTexture)
	if err != nil {
		return err
	}
	if err := checkSlot(slot); err != nil {
		return err
	}
	return d.backend.BindTexture(res.native, slot)
}

func (d *device) ClearTexture(slot int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if err := checkSlot(slot); err != nil {
		return err
	}
	return d.backend.ClearTexture(slot)
}

func (d *device) CreateVertexLayout(elements []VertexElement, vb ResourceHandle) (ResourceHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ResourceHandle{}, ErrNotInitialized
	}
	if len(elements) == 0 {
		return ResourceHandle{}, nil
	}
	vbRes, err := d.lookup(vb, KindVertexBuffer)
	if err != nil {
		return ResourceHandle{}, err
	}
	if err := validateElements(elements); err != nil {
		return ResourceHandle{}, err
	}

	stride := LayoutStride(elements)
	if stride > vbRes.stride {
		return ResourceHandle{}, fmt.Errorf("layout stride %d exceeds vertex stride %d: %w", stride, vbRes.stride, ErrInvalidArgument)
	}
	// Layouts may describe only part of a vertex, the buffer stride wins.
	stride = vbRes.stride

	copied := append([]VertexElement(nil), elements...)
	native, err := d.backend.CreateVertexLayout(copied, stride, vbRes.native)
	if err != nil {
		Logger().Warn("vertex layout creation failed", slog.Int("elements", len(elements)), slog.Any("error", err))
		return ResourceHandle{}, fmt.Errorf("failed to create vertex layout: %w", err)
	}
	res := d.track(KindVertexLayout, native)
	res.stride = stride
	res.elements = copied
	return ResourceHandle{kind: KindVertexLayout, res: res}, nil
}

func (d *device) SetVertexLayout(h ResourceHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	res, err := d.lookup(h, KindVertexLayout)
	if err != nil {
		return err
	}
	if err := d.backend.SetVertexLayout(res.native); err != nil {
		return err
	}
	d.boundLayout = res
	return nil
}

func (d *device) CreateVertexBuffer(data []byte, count, stride int, usage BufferUsage) (ResourceHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ResourceHandle{}, ErrNotInitialized
	}
	switch {
	case count <= 0 || stride <= 0:
		return ResourceHandle{}, fmt.Errorf("vertex buffer of %d vertices with stride %d: %w", count, stride, ErrInvalidArgument)
	case data != nil && len(data) != count*stride:
		return ResourceHandle{}, fmt.Errorf("vertex buffer needs %d bytes, got %d: %w", count*stride, len(data), ErrInvalidArgument)
	case usage < UsageStatic || usage > UsageStream:
		return ResourceHandle{}, fmt.Errorf("buffer usage %d: %w", int(usage), ErrInvalidArgument)
	}

	native, err := d.backend.CreateVertexBuffer(data, count*stride, usage)
	if err != nil {
		Logger().Warn("vertex buffer creation failed", slog.Int("bytes", count*stride), slog.Any("error", err))
		return ResourceHandle{}, fmt.Errorf("failed to create vertex buffer: %w", err)
	}
	res := d.track(KindVertexBuffer, native)
	res.count = count
	res.stride = stride
	res.usage = usage
	return ResourceHandle{kind: KindVertexBuffer, res: res}, nil
}

func (d *device) CreateIndexBuffer(data []uint32, count int) (ResourceHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ResourceHandle{}, ErrNotInitialized
	}
	if count <= 0 || (data != nil && len(data) != count) {
		return ResourceHandle{}, fmt.Errorf("index buffer of %d indices with %d values: %w", count, len(data), ErrInvalidArgument)
	}

	native, err := d.backend.CreateIndexBuffer(data, count)
	if err != nil {
		Logger().Warn("index buffer creation failed", slog.Int("indices", count), slog.Any("error", err))
		return ResourceHandle{}, fmt.Errorf("failed to create index buffer: %w", err)
	}
	res := d.track(KindIndexBuffer, native)
	res.count = count
	res.stride = 4
	return ResourceHandle{kind: KindIndexBuffer, res: res}, nil
}

func (d *device) UpdateBuffer(h ResourceHandle, offset int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if h.IsNull() {
		return ErrNullHandle
	}
	if h.kind != KindVertexBuffer && h.kind != KindIndexBuffer {
		return fmt.Errorf("%s is not a buffer: %w", h.kind, ErrKindMismatch)
	}
	res, err := d.lookup(h, h.kind)
	if err != nil {
		return err
	}
	size := res.count * res.stride
	if offset < 0 || offset+len(data) > size {
		return fmt.Errorf("update [%d, %d) outside buffer of %d bytes: %w", offset, offset+len(data), size, ErrInvalidArgument)
	}
	if len(data) == 0 {
		return nil
	}
	return d.backend.UpdateBuffer(res.kind, res.native, offset, data)
}

func (d *device) BindBuffer(h ResourceHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if h.IsNull() {
		return ErrNullHandle
	}
	switch h.kind {
	case KindVertexBuffer:
		res, err := d.lookup(h, KindVertexBuffer)
		if err != nil {
			return err
		}
		if err := d.backend.BindVertexBuffer(res.native, res.stride); err != nil {
			return err
		}
		d.boundVB = res
	case KindIndexBuffer:
		res, err := d.lookup(h, KindIndexBuffer)
		if err != nil {
			return err
		}
		if err := d.backend.BindIndexBuffer(res.native); err != nil {
			return err
		}
		d.boundIB = res
	default:
		return fmt.Errorf("%s is not a buffer: %w", h.kind, ErrKindMismatch)
	}
	return nil
}

func (d *device) DestroyResource(h *ResourceHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if h == nil || h.IsNull() {
		if h != nil {
			*h = ResourceHandle{}
		}
		return nil
	}
	if h.res.owner != d {
		return fmt.Errorf("%s belongs to another device: %w", h, ErrInvalidArgument)
	}
	if err := d.release(h.res); err != nil {
		return err
	}
	*h = ResourceHandle{}
	return nil
}

func (d *device) SetState(id DeviceState, value uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if !id.Valid() {
		return fmt.Errorf("%s: %w", id, ErrUnregisteredState)
	}
	if err := checkValue(id.Class(), value); err != nil {
		return fmt.Errorf("state %s: %w", id, err)
	}
	return d.backend.SetState(id, value)
}

func (d *device) State(id DeviceState) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return 0, ErrNotInitialized
	}
	if !id.Valid() {
		return 0, fmt.Errorf("%s: %w", id, ErrUnregisteredState)
	}
	return d.backend.State(id)
}

func (d *device) SetSamplerState(slot int, id SamplerState, value uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if err := checkSlot(slot); err != nil {
		return err
	}
	if !id.Valid() {
		return fmt.Errorf("%s: %w", id, ErrUnregisteredState)
	}
	if err := checkValue(id.Class(), value); err != nil {
		return fmt.Errorf("sampler state %s: %w", id, err)
	}
	return d.backend.SetSamplerState(slot, id, value)
}

func (d *device) SamplerState(slot int, id SamplerState) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return 0, ErrNotInitialized
	}
	if err := checkSlot(slot); err != nil {
		return 0, err
	}
	if !id.Valid() {
		return 0, fmt.Errorf("%s: %w", id, ErrUnregisteredState)
	}
	return d.backend.SamplerState(slot, id)
}

func (d *device) SetViewport(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("viewport %dx%d: %w", width, height, ErrInvalidArgument)
	}
	if err := d.backend.SetViewport(width, height); err != nil {
		return err
	}
	d.viewportW, d.viewportH = width, height
	return nil
}

func (d *device) Viewport() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewportW, d.viewportH
}

func (d *device) SetViewProjMatrix(view, proj mgl32.Mat4) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	return d.backend.SetViewProj(view, proj)
}

func (d *device) SetModelMatrix(model mgl32.Mat4) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	return d.backend.SetModel(model)
}

func (d *device) DrawPrimitives(vertexCount, indexCount, vertexOffset, indexOffset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if !d.inScene {
		return fmt.Errorf("draw outside BeginScene/EndScene: %w", ErrSceneState)
	}
	if indexCount <= 0 || indexCount%3 != 0 {
		return fmt.Errorf("index count %d is not a positive multiple of 3: %w", indexCount, ErrInvalidArgument)
	}
	if vertexCount < 0 || vertexOffset < 0 || indexOffset < 0 {
		return fmt.Errorf("negative draw range: %w", ErrInvalidArgument)
	}
	switch {
	case d.boundVB == nil:
		return fmt.Errorf("no vertex buffer bound: %w", ErrNullHandle)
	case d.boundIB == nil:
		return fmt.Errorf("no index buffer bound: %w", ErrNullHandle)
	case d.boundLayout == nil:
		return fmt.Errorf("no vertex layout set: %w", ErrNullHandle)
	}
	if d.boundLayout.stride != d.boundVB.stride {
		return fmt.Errorf("vertex layout stride %d does not match bound vertex buffer stride %d: %w",
			d.boundLayout.stride, d.boundVB.stride, ErrInvalidArgument)
	}
	if indexOffset+indexCount > d.boundIB.count {
		return fmt.Errorf("indices [%d, %d) outside buffer of %d: %w", indexOffset, indexOffset+indexCount, d.boundIB.count, ErrInvalidArgument)
	}
	if vertexCount > 0 && vertexOffset+vertexCount > d.boundVB.count {
		return fmt.Errorf("vertices [%d, %d) outside buffer of %d: %w", vertexOffset, vertexOffset+vertexCount, d.boundVB.count, ErrInvalidArgument)
	}

	return d.backend.Draw(DrawCall{
		VertexCount:  vertexCount,
		IndexCount:   indexCount,
		VertexOffset: vertexOffset,
		IndexOffset:  indexOffset,
		Stride:       d.boundVB.stride,
	})
}

func (d *device) Clear(flags ClearFlags, color mgl32.Vec3) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if flags&ClearAll == 0 {
		return nil
	}
	return d.backend.Clear(flags&ClearAll, color)
}

func (d *device) BeginScene() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if d.inScene {
		return fmt.Errorf("BeginScene inside an open scene: %w", ErrSceneState)
	}
	if err := d.backend.BeginScene(); err != nil {
		return err
	}
	d.inScene = true
	return nil
}

func (d *device) EndScene() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if !d.inScene {
		return fmt.Errorf("EndScene without BeginScene: %w", ErrSceneState)
	}
	d.inScene = false
	return d.backend.EndScene()
}

func (d *device) Present() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrNotInitialized
	}
	if d.inScene {
		return fmt.Errorf("Present inside an open scene: %w", ErrSceneState)
	}
	return d.backend.Present()
}

func (d *device) ReadPixels() ([]byte, int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil, 0, 0, ErrNotInitialized
	}
	return d.backend.ReadPixels()
}

func (d *device) LiveResources() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.resources)
}

func (d *device) Destroy() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return nil
	}

	var firstErr error
	if n := len(d.resources); n > 0 {
		Logger().Warn("releasing leaked resources", slog.String("backend", d.name), slog.Int("count", n))
		ids := make([]uint64, 0, n)
		for id := range d.resources {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			res := d.resources[id]
			if err := d.release(res); err != nil {
				// the backend goes away below and takes the object with it
				d.forget(res)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
	}
	if err := d.backend.Destroy(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to destroy %s backend: %w", d.name, err)
	}
	d.destroyed = true
	d.inScene = false
	Logger().Info("device destroyed", slog.String("backend", d.name))
	return firstErr
}

// track registers a freshly created native object.
func (d *device) track(kind ResourceKind, native any) *resource {
	d.nextID++
	res := &resource{owner: d, id: d.nextID, kind: kind, native: native}
	d.resources[res.id] = res
	Logger().Debug("resource created", slog.String("kind", kind.String()), slog.Uint64("id", res.id))
	return res
}

// release frees a live resource and forgets every binding that referenced it.
// release frees the native object of res and then forgets the record. A failed native release
// leaves the record live, so the caller can retry through the same handle.
func (d *device) release(res *resource) error {
	if err := d.backend.Release(res.kind, res.native); err != nil {
		Logger().Warn("resource release failed", slog.String("kind", res.kind.String()), slog.Uint64("id", res.id), slog.Any("error", err))
		return fmt.Errorf("failed to release %s: %w", res.kind, err)
	}
	d.forget(res)
	Logger().Debug("resource destroyed", slog.String("kind", res.kind.String()), slog.Uint64("id", res.id))
	return nil
}

// forget drops res from the device and invalidates every handle copy referencing it.
func (d *device) forget(res *resource) {
	delete(d.resources, res.id)
	res.released = true
	switch res {
	case d.boundVB:
		d.boundVB = nil
	case d.boundIB:
		d.boundIB = nil
	case d.boundLayout:
		d.boundLayout = nil
	}
}

// lookup validates that h is a live handle of the wanted kind owned by d.
func (d *device) lookup(h ResourceHandle, kind ResourceKind) (*resource, error) {
	if d.destroyed {
		return nil, ErrNotInitialized
	}
	if h.IsNull() {
		return nil, ErrNullHandle
	}
	if h.kind != kind {
		return nil, fmt.Errorf("expected %s, got %s: %w", kind, h.kind, ErrKindMismatch)
	}
	if h.res.owner != d {
		return nil, fmt.Errorf("%s belongs to another device: %w", h, ErrInvalidArgument)
	}
	return h.res, nil
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= MaxTextureSlots {
		return fmt.Errorf("texture slot %d outside [0, %d): %w", slot, MaxTextureSlots, ErrInvalidArgument)
	}
	return nil
}
