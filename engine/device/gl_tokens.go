package device

// OpenGL enumerants shared by the legacy and core adapters and their native bindings. Values are
// the ones from the Khronos registry so the native side can pass them to GL unchanged.
const (
	GLZero uint32 = 0
	GLOne  uint32 = 1

	GLFloat              uint32 = 0x1406
	GLUnsignedByte       uint32 = 0x1401
	GLShort              uint32 = 0x1402
	GLUnsignedShort      uint32 = 0x1403
	GLUnsignedInt        uint32 = 0x1405
	GLHalfFloat          uint32 = 0x140B
	GLUnsignedInt2101010 uint32 = 0x8368
	GLInt2101010         uint32 = 0x8D9F

	GLRGB  uint32 = 0x1907
	GLRGBA uint32 = 0x1908
	GLBGRA uint32 = 0x80E1

	GLArrayBuffer        uint32 = 0x8892
	GLElementArrayBuffer uint32 = 0x8893
	GLStreamDraw         uint32 = 0x88E0
	GLStaticDraw         uint32 = 0x88E4
	GLDynamicDraw        uint32 = 0x88E8

	GLColorBufferBit   uint32 = 0x4000
	GLDepthBufferBit   uint32 = 0x0100
	GLStencilBufferBit uint32 = 0x0400

	GLProjection uint32 = 0x1701
	GLModelView  uint32 = 0x1700

	// render state tokens
	GLDepthTest            uint32 = 0x0B71
	GLDepthWriteMask       uint32 = 0x0B72
	GLDepthFunc            uint32 = 0x0B74
	GLCullFaceMode         uint32 = 0x0B45
	GLPolygonMode          uint32 = 0x0B40
	GLShadeModel           uint32 = 0x0B54
	GLAlphaTest            uint32 = 0x0BC0
	GLAlphaTestFunc        uint32 = 0x0BC1
	GLAlphaTestRef         uint32 = 0x0BC2
	GLDither               uint32 = 0x0BD0
	GLBlend                uint32 = 0x0BE2
	GLFog                  uint32 = 0x0B60
	GLFogColor             uint32 = 0x0B66
	GLFogStart             uint32 = 0x0B63
	GLFogEnd               uint32 = 0x0B64
	GLFogDensity           uint32 = 0x0B62
	GLStencilTest          uint32 = 0x0B90
	GLStencilFunc          uint32 = 0x0B92
	GLStencilRef           uint32 = 0x0B97
	GLStencilValueMask     uint32 = 0x0B93
	GLStencilWriteMask     uint32 = 0x0B98
	GLStencilFail          uint32 = 0x0B94
	GLStencilPassDepthFail uint32 = 0x0B95
	GLStencilPassDepthPass uint32 = 0x0B96
	GLLighting             uint32 = 0x0B50
	GLLightModelAmbient    uint32 = 0x0B53
	GLNormalize            uint32 = 0x0BA1
	GLPointSize            uint32 = 0x0B11
	GLColorWriteMask       uint32 = 0x0C23
	GLScissorTest          uint32 = 0x0C11
	GLPolygonOffsetFactor  uint32 = 0x8038
	GLPolygonOffsetUnits   uint32 = 0x2A00
	GLMultisample          uint32 = 0x809D
	GLBlendSrcRGB          uint32 = 0x80C9
	GLBlendDstRGB          uint32 = 0x80C8
	GLBlendSrcAlpha        uint32 = 0x80CB
	GLBlendDstAlpha        uint32 = 0x80CA
	GLBlendEquationRGB     uint32 = 0x8009
	GLBlendEquationAlpha   uint32 = 0x883D

	// sampler parameters
	GLTextureWrapS         uint32 = 0x2802
	GLTextureWrapT         uint32 = 0x2803
	GLTextureWrapR         uint32 = 0x8072
	GLTextureBorderColor   uint32 = 0x1004
	GLTextureMagFilter     uint32 = 0x2800
	GLTextureMinFilter     uint32 = 0x2801
	GLTextureBaseLevel     uint32 = 0x813C
	GLTextureMaxLevel      uint32 = 0x813D
	GLTextureLodBias       uint32 = 0x8501
	GLTextureMaxAnisotropy uint32 = 0x84FE

	GLNearest              uint32 = 0x2600
	GLLinear               uint32 = 0x2601
	GLNearestMipmapNearest uint32 = 0x2700
	GLLinearMipmapNearest  uint32 = 0x2701
	GLNearestMipmapLinear  uint32 = 0x2702
	GLLinearMipmapLinear   uint32 = 0x2703

	GLRepeat            uint32 = 0x2901
	GLMirroredRepeat    uint32 = 0x8370
	GLClampToEdge       uint32 = 0x812F
	GLClampToBorder     uint32 = 0x812D
	GLMirrorClampToEdge uint32 = 0x8743

	GLCW  uint32 = 0x0900
	GLCCW uint32 = 0x0901
)

// glStates maps every device state to its GL register token. Registers are written through
// GLNative.SetRenderState, see there for value encodings.
var glStates = [StateCount]stateMapping{
	StateZEnable:              mapped(GLDepthTest),
	StateFillMode:             mapped(GLPolygonMode),
	StateShadeMode:            mapped(GLShadeModel),
	StateZWriteEnable:         mapped(GLDepthWriteMask),
	StateAlphaTestEnable:      mapped(GLAlphaTest),
	StateSrcBlend:             mapped(GLBlendSrcRGB),
	StateDestBlend:            mapped(GLBlendDstRGB),
	StateCullMode:             mapped(GLCullFaceMode),
	StateZFunc:                mapped(GLDepthFunc),
	StateAlphaRef:             mapped(GLAlphaTestRef),
	StateAlphaFunc:            mapped(GLAlphaTestFunc),
	StateDitherEnable:         mapped(GLDither),
	StateAlphaBlendEnable:     mapped(GLBlend),
	StateFogEnable:            mapped(GLFog),
	StateFogColor:             mapped(GLFogColor),
	StateFogStart:             mapped(GLFogStart),
	StateFogEnd:               mapped(GLFogEnd),
	StateFogDensity:           mapped(GLFogDensity),
	StateStencilEnable:        mapped(GLStencilTest),
	StateStencilFail:          mapped(GLStencilFail),
	StateStencilZFail:         mapped(GLStencilPassDepthFail),
	StateStencilPass:          mapped(GLStencilPassDepthPass),
	StateStencilFunc:          mapped(GLStencilFunc),
	StateStencilRef:           mapped(GLStencilRef),
	StateStencilMask:          mapped(GLStencilValueMask),
	StateStencilWriteMask:     mapped(GLStencilWriteMask),
	StateLighting:             mapped(GLLighting),
	StateAmbient:              mapped(GLLightModelAmbient),
	StateNormalizeNormals:     mapped(GLNormalize),
	StatePointSize:            mapped(GLPointSize),
	StateColorWriteEnable:     mapped(GLColorWriteMask),
	StateBlendOp:              mapped(GLBlendEquationRGB),
	StateScissorTestEnable:    mapped(GLScissorTest),
	StateSlopeScaleDepthBias:  mapped(GLPolygonOffsetFactor),
	StateDepthBias:            mapped(GLPolygonOffsetUnits),
	StateMultisampleAntialias: mapped(GLMultisample),
	StateSrcBlendAlpha:        mapped(GLBlendSrcAlpha),
	StateDestBlendAlpha:       mapped(GLBlendDstAlpha),
	StateBlendOpAlpha:         mapped(GLBlendEquationAlpha),
}

// fixedFunctionStates only exist in the compatibility profile.
var fixedFunctionStates = []DeviceState{
	StateShadeMode,
	StateAlphaTestEnable,
	StateAlphaRef,
	StateAlphaFunc,
	StateFogEnable,
	StateFogColor,
	StateFogStart,
	StateFogEnd,
	StateFogDensity,
	StateLighting,
	StateAmbient,
	StateNormalizeNormals,
}

// glCoreStates is glStates without the fixed-function registers.
var glCoreStates = func() [StateCount]stateMapping {
	t := glStates
	for _, id := range fixedFunctionStates {
		t[id] = unsupported
	}
	return t
}()

var glSamplerStates = [SamplerStateCount]stateMapping{
	SamplerAddressU:      mapped(GLTextureWrapS),
	SamplerAddressV:      mapped(GLTextureWrapT),
	SamplerAddressW:      mapped(GLTextureWrapR),
	SamplerBorderColor:   mapped(GLTextureBorderColor),
	SamplerMagFilter:     mapped(GLTextureMagFilter),
	SamplerMinFilter:     mapped(GLTextureMinFilter),
	SamplerMipFilter:     mapped(GLTextureMinFilter),
	SamplerMipMapLodBias: mapped(GLTextureLodBias),
	SamplerMaxMipLevel:   mapped(GLTextureBaseLevel),
	SamplerMaxAnisotropy: mapped(GLTextureMaxAnisotropy),
	SamplerSRGBTexture:   unsupported,
	SamplerElementIndex:  unsupported,
	SamplerDMapOffset:    unsupported,
}

var glAliases = valueAliases{
	ClassCompare: {0, 0x0200, 0x0201, 0x0202, 0x0203, 0x0204, 0x0205, 0x0206, 0x0207},
	ClassBlend: {0, GLZero, GLOne, 0x0300, 0x0301, 0x0302, 0x0303, 0x0304, 0x0305, 0x0306,
		0x0307, 0x0308, 0x8001, 0x8002},
	ClassBlendOp:   {0, 0x8006, 0x800A, 0x800B, 0x8007, 0x8008},
	ClassCull:      {0, 0, GLCW, GLCCW},
	ClassFill:      {0, 0x1B00, 0x1B01, 0x1B02},
	ClassShade:     {0, 0x1D00, 0x1D01},
	ClassStencilOp: {0, 0x1E00, GLZero, 0x1E01, 0x1E02, 0x1E03, 0x150A, 0x8507, 0x8508},
	ClassAddress:   {0, GLRepeat, GLMirroredRepeat, GLClampToEdge, GLClampToBorder, GLMirrorClampToEdge},
}

// GLDefaultRenderStates returns the initial value of every render state register in the encoding
// used by GLNative.SetRenderState. Native bindings seed their shadow registers from it.
//
// Returns:
//   - map[uint32]uint32: register token to initial value
func GLDefaultRenderStates() map[uint32]uint32 {
	return map[uint32]uint32{
		GLDepthTest:            0,
		GLDepthWriteMask:       1,
		GLDepthFunc:            0x0201,
		GLCullFaceMode:         0,
		GLPolygonMode:          0x1B02,
		GLShadeModel:           0x1D01,
		GLAlphaTest:            0,
		GLAlphaTestFunc:        0x0207,
		GLAlphaTestRef:         0,
		GLDither:               1,
		GLBlend:                0,
		GLFog:                  0,
		GLFogColor:             0,
		GLFogStart:             FloatValue(0),
		GLFogEnd:               FloatValue(1),
		GLFogDensity:           FloatValue(1),
		GLStencilTest:          0,
		GLStencilFunc:          0x0207,
		GLStencilRef:           0,
		GLStencilValueMask:     0xFFFFFFFF,
		GLStencilWriteMask:     0xFFFFFFFF,
		GLStencilFail:          0x1E00,
		GLStencilPassDepthFail: 0x1E00,
		GLStencilPassDepthPass: 0x1E00,
		GLLighting:             0,
		GLLightModelAmbient:    ColorValue(0.2, 0.2, 0.2, 1),
		GLNormalize:            0,
		GLPointSize:            FloatValue(1),
		GLColorWriteMask:       ColorWriteAll,
		GLBlendEquationRGB:     0x8006,
		GLBlendEquationAlpha:   0x8006,
		GLScissorTest:          0,
		GLPolygonOffsetFactor:  FloatValue(0),
		GLPolygonOffsetUnits:   FloatValue(0),
		GLMultisample:          1,
		GLBlendSrcRGB:          GLOne,
		GLBlendDstRGB:          GLZero,
		GLBlendSrcAlpha:        GLOne,
		GLBlendDstAlpha:        GLZero,
	}
}

// glScalarTypes maps vertex component storage to GL component types.
var glScalarTypes = map[ScalarType]uint32{
	ScalarFloat32:     GLFloat,
	ScalarUint8:       GLUnsignedByte,
	ScalarInt16:       GLShort,
	ScalarUint16:      GLUnsignedShort,
	ScalarFloat16:     GLHalfFloat,
	ScalarUint1010102: GLUnsignedInt2101010,
	ScalarInt1010102:  GLInt2101010,
}

// glAttribSize returns the size argument of an attribute pointer call. Packed colors use the
// GL_BGRA size so the driver swizzles them.
func glAttribSize(t DeclType) int32 {
	switch t {
	case DeclColor:
		return int32(GLBGRA)
	case DeclUDec3, DeclDec3N:
		return 4
	default:
		return int32(t.Components())
	}
}

func glPixelFormat(f TextureFormat) uint32 {
	switch f {
	case FormatRGB:
		return GLRGB
	case FormatBGRA:
		return GLBGRA
	default:
		return GLRGBA
	}
}

func glBufferUsage(u BufferUsage) uint32 {
	switch u {
	case UsageDynamic:
		return GLDynamicDraw
	case UsageStream:
		return GLStreamDraw
	default:
		return GLStaticDraw
	}
}

// glMinFilter combines the min and mip filters into one GL minification filter. Textures with a
// single level never use a mipmapped filter, GL would treat them as incomplete.
func glMinFilter(minFilter, mipFilter uint32, levels int) uint32 {
	linear := minFilter != FilterPoint && minFilter != FilterNone
	if levels <= 1 || mipFilter == FilterNone {
		if linear {
			return GLLinear
		}
		return GLNearest
	}
	if mipFilter == FilterPoint {
		if linear {
			return GLLinearMipmapNearest
		}
		return GLNearestMipmapNearest
	}
	if linear {
		return GLLinearMipmapLinear
	}
	return GLNearestMipmapLinear
}

func glMagFilter(magFilter uint32) uint32 {
	if magFilter == FilterPoint || magFilter == FilterNone {
		return GLNearest
	}
	return GLLinear
}
