package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// The device describes pipelines with gputypes values. Both packages follow webgpu.h naming but
// not the same header revision, so enumerants are translated by name.

var textureFormats = map[gputypes.TextureFormat]wgpu.TextureFormat{
	gputypes.TextureFormatRGBA8Unorm:          wgpu.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb:      wgpu.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatBGRA8Unorm:          wgpu.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatBGRA8UnormSrgb:      wgpu.TextureFormatBGRA8UnormSrgb,
	gputypes.TextureFormatDepth24Plus:         wgpu.TextureFormatDepth24Plus,
	gputypes.TextureFormatDepth24PlusStencil8: wgpu.TextureFormatDepth24PlusStencil8,
}

var vertexFormats = map[gputypes.VertexFormat]wgpu.VertexFormat{
	gputypes.VertexFormatFloat32:   wgpu.VertexFormatFloat32,
	gputypes.VertexFormatFloat32x2: wgpu.VertexFormatFloat32x2,
	gputypes.VertexFormatFloat32x3: wgpu.VertexFormatFloat32x3,
	gputypes.VertexFormatFloat32x4: wgpu.VertexFormatFloat32x4,
	gputypes.VertexFormatUnorm8x4:  wgpu.VertexFormatUnorm8x4,
	gputypes.VertexFormatUint8x4:   wgpu.VertexFormatUint8x4,
	gputypes.VertexFormatSint16x2:  wgpu.VertexFormatSint16x2,
	gputypes.VertexFormatSint16x4:  wgpu.VertexFormatSint16x4,
	gputypes.VertexFormatSnorm16x2: wgpu.VertexFormatSnorm16x2,
	gputypes.VertexFormatSnorm16x4: wgpu.VertexFormatSnorm16x4,
	gputypes.VertexFormatUnorm16x2: wgpu.VertexFormatUnorm16x2,
	gputypes.VertexFormatUnorm16x4: wgpu.VertexFormatUnorm16x4,
	gputypes.VertexFormatFloat16x2: wgpu.VertexFormatFloat16x2,
	gputypes.VertexFormatFloat16x4: wgpu.VertexFormatFloat16x4,
}

var compareFunctions = map[gputypes.CompareFunction]wgpu.CompareFunction{
	gputypes.CompareFunctionNever:        wgpu.CompareFunctionNever,
	gputypes.CompareFunctionLess:         wgpu.CompareFunctionLess,
	gputypes.CompareFunctionEqual:        wgpu.CompareFunctionEqual,
	gputypes.CompareFunctionLessEqual:    wgpu.CompareFunctionLessEqual,
	gputypes.CompareFunctionGreater:      wgpu.CompareFunctionGreater,
	gputypes.CompareFunctionNotEqual:     wgpu.CompareFunctionNotEqual,
	gputypes.CompareFunctionGreaterEqual: wgpu.CompareFunctionGreaterEqual,
	gputypes.CompareFunctionAlways:       wgpu.CompareFunctionAlways,
}

var blendFactors = map[gputypes.BlendFactor]wgpu.BlendFactor{
	gputypes.BlendFactorZero:              wgpu.BlendFactorZero,
	gputypes.BlendFactorOne:               wgpu.BlendFactorOne,
	gputypes.BlendFactorSrc:               wgpu.BlendFactorSrc,
	gputypes.BlendFactorOneMinusSrc:       wgpu.BlendFactorOneMinusSrc,
	gputypes.BlendFactorSrcAlpha:          wgpu.BlendFactorSrcAlpha,
	gputypes.BlendFactorOneMinusSrcAlpha:  wgpu.BlendFactorOneMinusSrcAlpha,
	gputypes.BlendFactorDst:               wgpu.BlendFactorDst,
	gputypes.BlendFactorOneMinusDst:       wgpu.BlendFactorOneMinusDst,
	gputypes.BlendFactorDstAlpha:          wgpu.BlendFactorDstAlpha,
	gputypes.BlendFactorOneMinusDstAlpha:  wgpu.BlendFactorOneMinusDstAlpha,
	gputypes.BlendFactorSrcAlphaSaturated: wgpu.BlendFactorSrcAlphaSaturated,
	gputypes.BlendFactorConstant:          wgpu.BlendFactorConstant,
	gputypes.BlendFactorOneMinusConstant:  wgpu.BlendFactorOneMinusConstant,
}

var blendOperations = map[gputypes.BlendOperation]wgpu.BlendOperation{
	gputypes.BlendOperationAdd:             wgpu.BlendOperationAdd,
	gputypes.BlendOperationSubtract:        wgpu.BlendOperationSubtract,
	gputypes.BlendOperationReverseSubtract: wgpu.BlendOperationReverseSubtract,
	gputypes.BlendOperationMin:             wgpu.BlendOperationMin,
	gputypes.BlendOperationMax:             wgpu.BlendOperationMax,
}

var stencilOperations = map[gputypes.StencilOperation]wgpu.StencilOperation{
	gputypes.StencilOperationKeep:           wgpu.StencilOperationKeep,
	gputypes.StencilOperationZero:           wgpu.StencilOperationZero,
	gputypes.StencilOperationReplace:        wgpu.StencilOperationReplace,
	gputypes.StencilOperationInvert:         wgpu.StencilOperationInvert,
	gputypes.StencilOperationIncrementClamp: wgpu.StencilOperationIncrementClamp,
	gputypes.StencilOperationDecrementClamp: wgpu.StencilOperationDecrementClamp,
	gputypes.StencilOperationIncrementWrap:  wgpu.StencilOperationIncrementWrap,
	gputypes.StencilOperationDecrementWrap:  wgpu.StencilOperationDecrementWrap,
}

var addressModes = map[gputypes.AddressMode]wgpu.AddressMode{
	gputypes.AddressModeRepeat:       wgpu.AddressModeRepeat,
	gputypes.AddressModeMirrorRepeat: wgpu.AddressModeMirrorRepeat,
	gputypes.AddressModeClampToEdge:  wgpu.AddressModeClampToEdge,
}

var cullModes = map[gputypes.CullMode]wgpu.CullMode{
	gputypes.CullModeNone:  wgpu.CullModeNone,
	gputypes.CullModeFront: wgpu.CullModeFront,
	gputypes.CullModeBack:  wgpu.CullModeBack,
}

func frontFace(f gputypes.FrontFace) wgpu.FrontFace {
	if f == gputypes.FrontFaceCW {
		return wgpu.FrontFaceCW
	}
	return wgpu.FrontFaceCCW
}

func filterMode(f gputypes.FilterMode) wgpu.FilterMode {
	if f == gputypes.FilterModeLinear {
		return wgpu.FilterModeLinear
	}
	return wgpu.FilterModeNearest
}

func mipmapFilterMode(f gputypes.MipmapFilterMode) wgpu.MipmapFilterMode {
	if f == gputypes.MipmapFilterModeLinear {
		return wgpu.MipmapFilterModeLinear
	}
	return wgpu.MipmapFilterModeNearest
}

func loadOp(op gputypes.LoadOp) wgpu.LoadOp {
	if op == gputypes.LoadOpClear {
		return wgpu.LoadOpClear
	}
	return wgpu.LoadOpLoad
}

func colorWriteMask(m gputypes.ColorWriteMask) wgpu.ColorWriteMask {
	var out wgpu.ColorWriteMask
	if m&gputypes.ColorWriteMaskRed != 0 {
		out |= wgpu.ColorWriteMaskRed
	}
	if m&gputypes.ColorWriteMaskGreen != 0 {
		out |= wgpu.ColorWriteMaskGreen
	}
	if m&gputypes.ColorWriteMaskBlue != 0 {
		out |= wgpu.ColorWriteMaskBlue
	}
	if m&gputypes.ColorWriteMaskAlpha != 0 {
		out |= wgpu.ColorWriteMaskAlpha
	}
	return out
}

func bufferUsage(u gputypes.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&gputypes.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	if u&gputypes.BufferUsageIndex != 0 {
		out |= wgpu.BufferUsageIndex
	}
	if u&gputypes.BufferUsageVertex != 0 {
		out |= wgpu.BufferUsageVertex
	}
	if u&gputypes.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	return out
}

func stencilFace(s gputypes.StencilFaceState) wgpu.StencilFaceState {
	return wgpu.StencilFaceState{
		Compare:     compareFunctions[s.Compare],
		FailOp:      stencilOperations[s.FailOp],
		DepthFailOp: stencilOperations[s.DepthFailOp],
		PassOp:      stencilOperations[s.PassOp],
	}
}

func blendComponent(c gputypes.BlendComponent) wgpu.BlendComponent {
	return wgpu.BlendComponent{
		Operation: blendOperations[c.Operation],
		SrcFactor: blendFactors[c.SrcFactor],
		DstFactor: blendFactors[c.DstFactor],
	}
}

func vertexBufferLayout(l gputypes.VertexBufferLayout) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, len(l.Attributes))
	for i, a := range l.Attributes {
		attrs[i] = wgpu.VertexAttribute{
			Format:         vertexFormats[a.Format],
			Offset:         a.Offset,
			ShaderLocation: a.ShaderLocation,
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: l.ArrayStride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// surfaceFormat reports a wgpu surface format in gputypes terms, or TextureFormatUndefined.
func surfaceFormat(f wgpu.TextureFormat) gputypes.TextureFormat {
	for g, w := range textureFormats {
		if w == f {
			return g
		}
	}
	return gputypes.TextureFormatUndefined
}
