package device

import "github.com/gogpu/gputypes"

// GPUHandle names an object owned by a ModernNative. 0 is never a valid handle.
type GPUHandle uint64

// ModernPipelineDesc is everything a render pipeline is built from. The bind group layout is
// fixed: binding 0 is a uniform buffer with a dynamic offset, binding 1 a 2-D float texture and
// binding 2 a filtering sampler, all in group 0.
type ModernPipelineDesc struct {
	Label        string
	Shader       GPUHandle
	Buffer       gputypes.VertexBufferLayout
	Primitive    gputypes.PrimitiveState
	DepthStencil gputypes.DepthStencilState
	Target       gputypes.ColorTargetState
}

// ModernFrame holds the load operations of the single render pass of a frame.
type ModernFrame struct {
	ClearColor   gputypes.Color
	ColorLoad    gputypes.LoadOp
	DepthLoad    gputypes.LoadOp
	StencilLoad  gputypes.LoadOp
	ClearDepth   float32
	ClearStencil uint32
}

// ModernNative is the WebGPU surface used by the modern adapter. Vertex and fragment entry points
// of shader modules are vs_main and fs_main.
type ModernNative interface {
	Init() error
	Destroy()

	// SurfaceFormat is the color format of the presentation surface.
	SurfaceFormat() gputypes.TextureFormat
	// DepthFormat is the format of the depth-stencil attachment, it always carries stencil.
	DepthFormat() gputypes.TextureFormat
	// Resize reconfigures the surface and the depth attachment.
	Resize(width, height int) error

	CreateBuffer(desc gputypes.BufferDescriptor, data []byte) (GPUHandle, error)
	WriteBuffer(buf GPUHandle, offset uint64, data []byte)
	// CreateTexture uploads every level, levels[0] being the full size image.
	CreateTexture(desc gputypes.TextureDescriptor, levels [][]byte) (GPUHandle, error)
	CreateSampler(desc gputypes.SamplerDescriptor) (GPUHandle, error)
	CreateShaderModule(label, wgsl string) (GPUHandle, error)
	CreatePipeline(desc ModernPipelineDesc) (GPUHandle, error)
	// CreateBindGroup binds uniformSize bytes of the uniform buffer, a texture view and a sampler.
	CreateBindGroup(uniforms, texture, sampler GPUHandle, uniformSize uint64) (GPUHandle, error)
	Release(h GPUHandle)

	// BeginFrame acquires the surface texture and opens the frame's render pass.
	BeginFrame(frame ModernFrame) error
	SetPipeline(pipeline GPUHandle)
	SetBindGroup(group GPUHandle, dynamicOffset uint32)
	SetVertexBuffer(buf GPUHandle)
	SetIndexBuffer(buf GPUHandle)
	SetStencilReference(ref uint32)
	DrawIndexed(indexCount, firstIndex uint32, baseVertex int32)
	// EndFrame closes the render pass and submits the recorded commands.
	EndFrame() error
	Present()
}
