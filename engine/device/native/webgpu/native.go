// Package webgpu implements device.ModernNative on wgpu-native through cogentcore/webgpu.
package webgpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// Surface is the window the native presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Option configures the native before Init.
type Option func(*nativeImpl)

// WithPresentMode sets how frames are delivered to the display. The default is
// wgpu.PresentModeFifo.
func WithPresentMode(mode wgpu.PresentMode) Option {
	return func(n *nativeImpl) {
		n.presentMode = mode
	}
}

// WithSampleCount sets the MSAA sample count of the frame's render pass. 1 disables MSAA.
func WithSampleCount(count uint32) Option {
	return func(n *nativeImpl) {
		n.sampleCount = max(count, 1)
	}
}

// WithFallbackAdapter requests the software adapter instead of the hardware one.
func WithFallbackAdapter(force bool) Option {
	return func(n *nativeImpl) {
		n.forceFallback = force
	}
}

type texture struct {
	tex  *wgpu.Texture
	view *wgpu.TextureView
}

type nativeImpl struct {
	mu *sync.Mutex

	window        Surface
	presentMode   wgpu.PresentMode
	sampleCount   uint32
	forceFallback bool

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	format    wgpu.TextureFormat
	alphaMode wgpu.CompositeAlphaMode
	depth     texture
	msaa      texture

	bindLayout *wgpu.BindGroupLayout
	layout     *wgpu.PipelineLayout

	next    device.GPUHandle
	objects map[device.GPUHandle]any

	frameTex  *wgpu.Texture
	frameView *wgpu.TextureView
	encoder   *wgpu.CommandEncoder
	pass      *wgpu.RenderPassEncoder
}

var _ device.ModernNative = &nativeImpl{}

const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// New returns the WebGPU native for a window. Nothing is created before Init.
//
// Parameters:
//   - window: the window to present to
//   - options: optional configuration
//
// Returns:
//   - device.ModernNative: the native binding
func New(window Surface, options ...Option) device.ModernNative {
	n := &nativeImpl{
		mu:          &sync.Mutex{},
		window:      window,
		presentMode: wgpu.PresentModeFifo,
		sampleCount: 1,
		objects:     make(map[device.GPUHandle]any),
	}
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *nativeImpl) Init() error {
	runtime.LockOSThread()

	n.instance = wgpu.CreateInstance(nil)
	n.surface = n.instance.CreateSurface(n.window.SurfaceDescriptor())

	a, err := n.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: n.forceFallback,
		CompatibleSurface:    n.surface,
	})
	if err != nil {
		return fmt.Errorf("webgpu: request adapter: %w", err)
	}
	n.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Device"})
	if err != nil {
		return fmt.Errorf("webgpu: request device: %w", err)
	}
	n.device = d
	n.queue = d.GetQueue()

	caps := n.surface.GetCapabilities(n.adapter)
	found := false
	for _, f := range caps.Formats {
		if surfaceFormat(f) != gputypes.TextureFormatUndefined {
			n.format, found = f, true
			break
		}
	}
	if !found {
		return fmt.Errorf("webgpu: surface offers no 8-bit RGBA format: %w", device.ErrUnsupported)
	}
	if len(caps.AlphaModes) > 0 {
		n.alphaMode = caps.AlphaModes[0]
	}

	if err := n.createLayouts(); err != nil {
		return err
	}
	return n.Resize(n.window.Width(), n.window.Height())
}

// createLayouts builds the single bind group layout every pipeline shares.
func (n *nativeImpl) createLayouts() error {
	entries := make([]wgpu.BindGroupLayoutEntry, 3)
	entries[0].Binding = 0
	entries[0].Visibility = wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	entries[0].Buffer.Type = wgpu.BufferBindingTypeUniform
	entries[0].Buffer.HasDynamicOffset = true
	entries[1].Binding = 1
	entries[1].Visibility = wgpu.ShaderStageFragment
	entries[1].Texture.SampleType = wgpu.TextureSampleTypeFloat
	entries[1].Texture.ViewDimension = wgpu.TextureViewDimension2D
	entries[2].Binding = 2
	entries[2].Visibility = wgpu.ShaderStageFragment
	entries[2].Sampler.Type = wgpu.SamplerBindingTypeFiltering

	bgl, err := n.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Device Bind Group Layout",
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("webgpu: bind group layout: %w", err)
	}
	n.bindLayout = bgl

	pl, err := n.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Device Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bgl},
	})
	if err != nil {
		return fmt.Errorf("webgpu: pipeline layout: %w", err)
	}
	n.layout = pl
	return nil
}

func (n *nativeImpl) Destroy() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.abortFrame()
	for h, obj := range n.objects {
		releaseObject(obj)
		delete(n.objects, h)
	}
	n.releaseTargets()
	if n.layout != nil {
		n.layout.Release()
	}
	if n.bindLayout != nil {
		n.bindLayout.Release()
	}
	if n.queue != nil {
		n.queue.Release()
	}
	if n.device != nil {
		n.device.Release()
	}
	if n.adapter != nil {
		n.adapter.Release()
	}
	if n.surface != nil {
		n.surface.Release()
	}
	if n.instance != nil {
		n.instance.Release()
	}
}

func (n *nativeImpl) SurfaceFormat() gputypes.TextureFormat { return surfaceFormat(n.format) }
func (n *nativeImpl) DepthFormat() gputypes.TextureFormat   { return depthFormat }

// Resize reconfigures the surface and rebuilds the depth and MSAA targets. A zero size, as
// reported for a minimized window, keeps the previous configuration.
func (n *nativeImpl) Resize(width, height int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}
	n.surface.Configure(n.adapter, n.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      n.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: n.presentMode,
		AlphaMode:   n.alphaMode,
	})

	n.releaseTargets()
	var err error
	n.depth, err = n.createTarget("Depth Texture", textureFormats[depthFormat], width, height)
	if err != nil {
		return err
	}
	if n.sampleCount > 1 {
		n.msaa, err = n.createTarget("MSAA Texture", n.format, width, height)
		if err != nil {
			return err
		}
	}
	return nil
}

func (n *nativeImpl) createTarget(label string, format wgpu.TextureFormat, width, height int) (texture, error) {
	tex, err := n.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   n.sampleCount,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return texture{}, fmt.Errorf("webgpu: %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return texture{}, fmt.Errorf("webgpu: %s view: %w", label, err)
	}
	return texture{tex: tex, view: view}, nil
}

func (n *nativeImpl) releaseTargets() {
	for _, t := range []*texture{&n.depth, &n.msaa} {
		if t.view != nil {
			t.view.Release()
		}
		if t.tex != nil {
			t.tex.Release()
		}
		*t = texture{}
	}
}

func (n *nativeImpl) store(obj any) device.GPUHandle {
	n.next++
	n.objects[n.next] = obj
	return n.next
}

func (n *nativeImpl) CreateBuffer(desc gputypes.BufferDescriptor, data []byte) (device.GPUHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	buf, err := n.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: bufferUsage(desc.Usage),
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: buffer %q: %w", desc.Label, err)
	}
	if len(data) > 0 {
		n.queue.WriteBuffer(buf, 0, data)
	}
	return n.store(buf), nil
}

func (n *nativeImpl) WriteBuffer(h device.GPUHandle, offset uint64, data []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if buf, ok := n.objects[h].(*wgpu.Buffer); ok && len(data) > 0 {
		n.queue.WriteBuffer(buf, offset, data)
	}
}

func (n *nativeImpl) CreateTexture(desc gputypes.TextureDescriptor, levels [][]byte) (device.GPUHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	format, ok := textureFormats[desc.Format]
	if !ok {
		return 0, fmt.Errorf("webgpu: texture format %v: %w", desc.Format, device.ErrUnsupported)
	}
	tex, err := n.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        format,
		MipLevelCount: max(desc.MipLevelCount, 1),
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: texture %q: %w", desc.Label, err)
	}

	w, h := desc.Size.Width, desc.Size.Height
	for level, pixels := range levels {
		if len(pixels) > 0 {
			n.queue.WriteTexture(
				&wgpu.ImageCopyTexture{
					Texture:  tex,
					MipLevel: uint32(level),
					Origin:   wgpu.Origin3D{},
					Aspect:   wgpu.TextureAspectAll,
				},
				pixels,
				&wgpu.TextureDataLayout{
					Offset:       0,
					BytesPerRow:  w * 4,
					RowsPerImage: h,
				},
				&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
			)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, fmt.Errorf("webgpu: texture %q view: %w", desc.Label, err)
	}
	return n.store(&texture{tex: tex, view: view}), nil
}

func (n *nativeImpl) CreateSampler(desc gputypes.SamplerDescriptor) (device.GPUHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	s, err := n.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  addressModes[desc.AddressModeU],
		AddressModeV:  addressModes[desc.AddressModeV],
		AddressModeW:  addressModes[desc.AddressModeW],
		MagFilter:     filterMode(desc.MagFilter),
		MinFilter:     filterMode(desc.MinFilter),
		MipmapFilter:  mipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   desc.LodMinClamp,
		LodMaxClamp:   desc.LodMaxClamp,
		MaxAnisotropy: max(desc.MaxAnisotropy, 1),
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: sampler: %w", err)
	}
	return n.store(s), nil
}

func (n *nativeImpl) CreateShaderModule(label, wgsl string) (device.GPUHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	m, err := n.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: shader %q: %w", label, err)
	}
	return n.store(m), nil
}

func (n *nativeImpl) CreatePipeline(desc device.ModernPipelineDesc) (device.GPUHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	module, ok := n.objects[desc.Shader].(*wgpu.ShaderModule)
	if !ok {
		return 0, fmt.Errorf("webgpu: pipeline %q: shader %d: %w", desc.Label, desc.Shader, device.ErrNullHandle)
	}

	target := wgpu.ColorTargetState{
		Format:    n.format,
		WriteMask: colorWriteMask(desc.Target.WriteMask),
	}
	if desc.Target.Blend != nil {
		target.Blend = &wgpu.BlendState{
			Color: blendComponent(desc.Target.Blend.Color),
			Alpha: blendComponent(desc.Target.Blend.Alpha),
		}
	}
	ds := desc.DepthStencil

	p, err := n.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: n.layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout(desc.Buffer)},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: frontFace(desc.Primitive.FrontFace),
			CullMode:  cullModes[desc.Primitive.CullMode],
		},
		Multisample: wgpu.MultisampleState{
			Count: n.sampleCount,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              textureFormats[depthFormat],
			DepthWriteEnabled:   ds.DepthWriteEnabled,
			DepthCompare:        compareFunctions[ds.DepthCompare],
			StencilFront:        stencilFace(ds.StencilFront),
			StencilBack:         stencilFace(ds.StencilBack),
			StencilReadMask:     ds.StencilReadMask,
			StencilWriteMask:    ds.StencilWriteMask,
			DepthBias:           ds.DepthBias,
			DepthBiasSlopeScale: ds.DepthBiasSlopeScale,
			DepthBiasClamp:      ds.DepthBiasClamp,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: pipeline %q: %w", desc.Label, err)
	}
	return n.store(p), nil
}

func (n *nativeImpl) CreateBindGroup(uniforms, tex, sampler device.GPUHandle, uniformSize uint64) (device.GPUHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	buf, okBuf := n.objects[uniforms].(*wgpu.Buffer)
	t, okTex := n.objects[tex].(*texture)
	s, okSampler := n.objects[sampler].(*wgpu.Sampler)
	if !okBuf || !okTex || !okSampler {
		return 0, fmt.Errorf("webgpu: bind group: %w", device.ErrNullHandle)
	}

	bg, err := n.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Device Bind Group",
		Layout: n.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: buf, Offset: 0, Size: uniformSize},
			{Binding: 1, TextureView: t.view},
			{Binding: 2, Sampler: s},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: bind group: %w", err)
	}
	return n.store(bg), nil
}

func (n *nativeImpl) Release(h device.GPUHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if obj, ok := n.objects[h]; ok {
		releaseObject(obj)
		delete(n.objects, h)
	}
}

func releaseObject(obj any) {
	switch o := obj.(type) {
	case *wgpu.Buffer:
		o.Release()
	case *texture:
		o.view.Release()
		o.tex.Release()
	case *wgpu.Sampler:
		o.Release()
	case *wgpu.ShaderModule:
		o.Release()
	case *wgpu.RenderPipeline:
		o.Release()
	case *wgpu.BindGroup:
		o.Release()
	}
}

// BeginFrame acquires the swapchain texture and opens the frame's only render pass.
func (n *nativeImpl) BeginFrame(frame device.ModernFrame) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.frameTex != nil {
		return fmt.Errorf("webgpu: previous frame not presented")
	}

	surfaceTexture, err := n.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("webgpu: acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("webgpu: surface view: %w", err)
	}
	encoder, err := n.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("webgpu: command encoder: %w", err)
	}

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  loadOp(frame.ColorLoad),
		StoreOp: wgpu.StoreOpStore,
		ClearValue: wgpu.Color{
			R: frame.ClearColor.R,
			G: frame.ClearColor.G,
			B: frame.ClearColor.B,
			A: frame.ClearColor.A,
		},
	}
	if n.sampleCount > 1 {
		color.View = n.msaa.view
		color.ResolveTarget = view
	}

	n.pass = encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              n.depth.view,
			DepthLoadOp:       loadOp(frame.DepthLoad),
			DepthStoreOp:      wgpu.StoreOpStore,
			DepthClearValue:   frame.ClearDepth,
			StencilLoadOp:     loadOp(frame.StencilLoad),
			StencilStoreOp:    wgpu.StoreOpStore,
			StencilClearValue: frame.ClearStencil,
		},
	})
	n.encoder = encoder
	n.frameTex = surfaceTexture
	n.frameView = view
	return nil
}

func (n *nativeImpl) SetPipeline(h device.GPUHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if p, ok := n.objects[h].(*wgpu.RenderPipeline); ok && n.pass != nil {
		n.pass.SetPipeline(p)
	}
}

func (n *nativeImpl) SetBindGroup(h device.GPUHandle, dynamicOffset uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if bg, ok := n.objects[h].(*wgpu.BindGroup); ok && n.pass != nil {
		n.pass.SetBindGroup(0, bg, []uint32{dynamicOffset})
	}
}

func (n *nativeImpl) SetVertexBuffer(h device.GPUHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if buf, ok := n.objects[h].(*wgpu.Buffer); ok && n.pass != nil {
		n.pass.SetVertexBuffer(0, buf, 0, wgpu.WholeSize)
	}
}

func (n *nativeImpl) SetIndexBuffer(h device.GPUHandle) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if buf, ok := n.objects[h].(*wgpu.Buffer); ok && n.pass != nil {
		n.pass.SetIndexBuffer(buf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	}
}

func (n *nativeImpl) SetStencilReference(ref uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pass != nil {
		n.pass.SetStencilReference(ref)
	}
}

func (n *nativeImpl) DrawIndexed(indexCount, firstIndex uint32, baseVertex int32) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pass != nil {
		n.pass.DrawIndexed(indexCount, 1, firstIndex, baseVertex, 0)
	}
}

// EndFrame closes the pass and submits it. The surface texture stays acquired until Present.
func (n *nativeImpl) EndFrame() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pass == nil {
		return fmt.Errorf("webgpu: no open frame")
	}
	n.pass.End()
	n.pass.Release()
	n.pass = nil

	commandBuffer, err := n.encoder.Finish(nil)
	n.encoder.Release()
	n.encoder = nil
	if err != nil {
		n.releaseFrame()
		return fmt.Errorf("webgpu: finish: %w", err)
	}
	n.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (n *nativeImpl) Present() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.frameTex == nil {
		return
	}
	n.surface.Present()
	n.releaseFrame()
}

func (n *nativeImpl) releaseFrame() {
	if n.frameView != nil {
		n.frameView.Release()
		n.frameView = nil
	}
	if n.frameTex != nil {
		n.frameTex.Release()
		n.frameTex = nil
	}
}

// abortFrame drops a frame left open by a failed scene.
func (n *nativeImpl) abortFrame() {
	if n.pass != nil {
		n.pass.End()
		n.pass.Release()
		n.pass = nil
	}
	if n.encoder != nil {
		n.encoder.Release()
		n.encoder = nil
	}
	n.releaseFrame()
}
