package device

import (
	"fmt"
	"math"
)

// DeviceState identifies a render state in the backend-neutral vocabulary.
type DeviceState int

const (
	StateZEnable DeviceState = iota
	StateFillMode
	StateShadeMode
	StateZWriteEnable
	StateAlphaTestEnable
	StateSrcBlend
	StateDestBlend
	StateCullMode
	StateZFunc
	StateAlphaRef
	StateAlphaFunc
	StateDitherEnable
	StateAlphaBlendEnable
	StateFogEnable
	StateFogColor
	StateFogStart
	StateFogEnd
	StateFogDensity
	StateStencilEnable
	StateStencilFail
	StateStencilZFail
	StateStencilPass
	StateStencilFunc
	StateStencilRef
	StateStencilMask
	StateStencilWriteMask
	StateLighting
	StateAmbient
	StateNormalizeNormals
	StatePointSize
	StateColorWriteEnable
	StateBlendOp
	StateScissorTestEnable
	StateSlopeScaleDepthBias
	// StateDepthBias is a constant depth offset as a fraction of the depth range, see DepthBiasUnits.
	StateDepthBias
	StateMultisampleAntialias
	StateSrcBlendAlpha
	StateDestBlendAlpha
	StateBlendOpAlpha

	// StateCount is the number of device states. It is not a valid state.
	StateCount
)

// ValueClass selects how the value of a state is interpreted and translated.
type ValueClass int

const (
	// ClassRaw values are passed through untouched (masks, references, counts).
	ClassRaw ValueClass = iota
	// ClassBool values are 0 or 1.
	ClassBool
	// ClassCompare values are Cmp* constants.
	ClassCompare
	// ClassBlend values are Blend* constants.
	ClassBlend
	// ClassBlendOp values are BlendOp* constants.
	ClassBlendOp
	// ClassCull values are Cull* constants.
	ClassCull
	// ClassFill values are Fill* constants.
	ClassFill
	// ClassShade values are Shade* constants.
	ClassShade
	// ClassStencilOp values are StencilOp* constants.
	ClassStencilOp
	// ClassFloat values are IEEE-754 bits of a float32, see FloatValue.
	ClassFloat
	// ClassColor values are packed 0xAARRGGBB colors, see ColorValue.
	ClassColor
	// ClassAddress values are Address* constants.
	ClassAddress
	// ClassFilter values are Filter* constants.
	ClassFilter

	valueClassCount
)

// Comparison functions.
const (
	CmpNever uint32 = iota + 1
	CmpLess
	CmpEqual
	CmpLessEqual
	CmpGreater
	CmpNotEqual
	CmpGreaterEqual
	CmpAlways
)

// Blend factors.
const (
	BlendZero uint32 = iota + 1
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
	BlendSrcAlphaSat
	BlendFactor
	BlendInvFactor
)

// Blend operations.
const (
	BlendOpAdd uint32 = iota + 1
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

// Cull modes. CullCW culls triangles wound clockwise on screen, CullCCW counter-clockwise ones.
const (
	CullNone uint32 = iota + 1
	CullCW
	CullCCW
)

// Fill modes.
const (
	FillPoint uint32 = iota + 1
	FillWireframe
	FillSolid
)

// Shade modes.
const (
	ShadeFlat uint32 = iota + 1
	ShadeGouraud
)

// Stencil operations.
const (
	StencilOpKeep uint32 = iota + 1
	StencilOpZero
	StencilOpReplace
	StencilOpIncrSat
	StencilOpDecrSat
	StencilOpInvert
	StencilOpIncr
	StencilOpDecr
)

// Color write mask bits for StateColorWriteEnable.
const (
	ColorWriteRed uint32 = 1 << iota
	ColorWriteGreen
	ColorWriteBlue
	ColorWriteAlpha

	ColorWriteAll = ColorWriteRed | ColorWriteGreen | ColorWriteBlue | ColorWriteAlpha
)

// classRange is the number of generic values of each enumerated class. Values run 1..n.
var classRange = [valueClassCount]uint32{
	ClassCompare:   CmpAlways,
	ClassBlend:     BlendInvFactor,
	ClassBlendOp:   BlendOpMax,
	ClassCull:      CullCCW,
	ClassFill:      FillSolid,
	ClassShade:     ShadeGouraud,
	ClassStencilOp: StencilOpDecr,
	ClassAddress:   AddressMirrorOnce,
}

var stateClasses = [StateCount]ValueClass{
	StateZEnable:              ClassBool,
	StateFillMode:             ClassFill,
	StateShadeMode:            ClassShade,
	StateZWriteEnable:         ClassBool,
	StateAlphaTestEnable:      ClassBool,
	StateSrcBlend:             ClassBlend,
	StateDestBlend:            ClassBlend,
	StateCullMode:             ClassCull,
	StateZFunc:                ClassCompare,
	StateAlphaRef:             ClassRaw,
	StateAlphaFunc:            ClassCompare,
	StateDitherEnable:         ClassBool,
	StateAlphaBlendEnable:     ClassBool,
	StateFogEnable:            ClassBool,
	StateFogColor:             ClassColor,
	StateFogStart:             ClassFloat,
	StateFogEnd:               ClassFloat,
	StateFogDensity:           ClassFloat,
	StateStencilEnable:        ClassBool,
	StateStencilFail:          ClassStencilOp,
	StateStencilZFail:         ClassStencilOp,
	StateStencilPass:          ClassStencilOp,
	StateStencilFunc:          ClassCompare,
	StateStencilRef:           ClassRaw,
	StateStencilMask:          ClassRaw,
	StateStencilWriteMask:     ClassRaw,
	StateLighting:             ClassBool,
	StateAmbient:              ClassColor,
	StateNormalizeNormals:     ClassBool,
	StatePointSize:            ClassFloat,
	StateColorWriteEnable:     ClassRaw,
	StateBlendOp:              ClassBlendOp,
	StateScissorTestEnable:    ClassBool,
	StateSlopeScaleDepthBias:  ClassFloat,
	StateDepthBias:            ClassFloat,
	StateMultisampleAntialias: ClassBool,
	StateSrcBlendAlpha:        ClassBlend,
	StateDestBlendAlpha:       ClassBlend,
	StateBlendOpAlpha:         ClassBlendOp,
}

var stateNames = [StateCount]string{
	"ZEnable", "FillMode", "ShadeMode", "ZWriteEnable", "AlphaTestEnable", "SrcBlend",
	"DestBlend", "CullMode", "ZFunc", "AlphaRef", "AlphaFunc", "DitherEnable",
	"AlphaBlendEnable", "FogEnable", "FogColor", "FogStart", "FogEnd", "FogDensity",
	"StencilEnable", "StencilFail", "StencilZFail", "StencilPass", "StencilFunc", "StencilRef",
	"StencilMask", "StencilWriteMask", "Lighting", "Ambient", "NormalizeNormals", "PointSize",
	"ColorWriteEnable", "BlendOp", "ScissorTestEnable", "SlopeScaleDepthBias", "DepthBias",
	"MultisampleAntialias", "SrcBlendAlpha", "DestBlendAlpha", "BlendOpAlpha",
}

// Valid reports whether s names a device state.
func (s DeviceState) Valid() bool {
	return s >= 0 && s < StateCount
}

// Class returns the value class of the state.
func (s DeviceState) Class() ValueClass {
	if !s.Valid() {
		return ClassRaw
	}
	return stateClasses[s]
}

func (s DeviceState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("DeviceState(%d)", int(s))
	}
	return stateNames[s]
}

// SamplerState identifies a per-slot texture sampling parameter.
type SamplerState int

const (
	SamplerAddressU SamplerState = iota
	SamplerAddressV
	SamplerAddressW
	SamplerBorderColor
	SamplerMagFilter
	SamplerMinFilter
	SamplerMipFilter
	SamplerMipMapLodBias
	SamplerMaxMipLevel
	SamplerMaxAnisotropy
	SamplerSRGBTexture
	SamplerElementIndex
	SamplerDMapOffset

	// SamplerStateCount is the number of sampler states. It is not a valid state.
	SamplerStateCount
)

// Texture filter values. The numbering leaves gaps where retired filter kinds used to be.
const (
	FilterNone          uint32 = 0
	FilterPoint         uint32 = 1
	FilterLinear        uint32 = 2
	FilterAnisotropic   uint32 = 3
	FilterPyramidalQuad uint32 = 6
	FilterGaussianQuad  uint32 = 7
)

// Texture address values.
const (
	AddressWrap uint32 = iota + 1
	AddressMirror
	AddressClamp
	AddressBorder
	AddressMirrorOnce
)

// MaxTextureSlots is the number of texture and sampler slots a device exposes.
const MaxTextureSlots = 8

var samplerClasses = [SamplerStateCount]ValueClass{
	SamplerAddressU:      ClassAddress,
	SamplerAddressV:      ClassAddress,
	SamplerAddressW:      ClassAddress,
	SamplerBorderColor:   ClassColor,
	SamplerMagFilter:     ClassFilter,
	SamplerMinFilter:     ClassFilter,
	SamplerMipFilter:     ClassFilter,
	SamplerMipMapLodBias: ClassFloat,
	SamplerMaxMipLevel:   ClassRaw,
	SamplerMaxAnisotropy: ClassRaw,
	SamplerSRGBTexture:   ClassBool,
	SamplerElementIndex:  ClassRaw,
	SamplerDMapOffset:    ClassRaw,
}

// samplerDefaults are the values every slot starts with. Mipmapped textures filter trilinearly
// once min and mag filtering are linear.
var samplerDefaults = [SamplerStateCount]uint32{
	SamplerAddressU:      AddressWrap,
	SamplerAddressV:      AddressWrap,
	SamplerAddressW:      AddressWrap,
	SamplerMagFilter:     FilterPoint,
	SamplerMinFilter:     FilterPoint,
	SamplerMipFilter:     FilterLinear,
	SamplerMaxAnisotropy: 1,
}

var samplerNames = [SamplerStateCount]string{
	"AddressU", "AddressV", "AddressW", "BorderColor", "MagFilter", "MinFilter", "MipFilter",
	"MipMapLodBias", "MaxMipLevel", "MaxAnisotropy", "SRGBTexture", "ElementIndex", "DMapOffset",
}

// Valid reports whether s names a sampler state.
func (s SamplerState) Valid() bool {
	return s >= 0 && s < SamplerStateCount
}

// Class returns the value class of the sampler state.
func (s SamplerState) Class() ValueClass {
	if !s.Valid() {
		return ClassRaw
	}
	return samplerClasses[s]
}

func (s SamplerState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SamplerState(%d)", int(s))
	}
	return samplerNames[s]
}

// FloatValue encodes a float32 for states of ClassFloat.
func FloatValue(f float32) uint32 {
	return math.Float32bits(f)
}

// ValueFloat decodes a ClassFloat state value.
func ValueFloat(v uint32) float32 {
	return math.Float32frombits(v)
}

// DepthBiasResolution is the number of depth bias units in the whole depth range, one unit being
// the smallest step of a 24 bit depth buffer.
const DepthBiasResolution = 1 << 24

// DepthBiasUnits converts a StateDepthBias value into the native depth bias units used by
// glPolygonOffset and the WebGPU depth stencil state.
func DepthBiasUnits(v uint32) float32 {
	return ValueFloat(v) * DepthBiasResolution
}

// ColorValue packs a color with components in [0, 1] into 0xAARRGGBB for states of ClassColor.
func ColorValue(r, g, b, a float32) uint32 {
	return uint32(unitByte(a))<<24 | uint32(unitByte(r))<<16 | uint32(unitByte(g))<<8 | uint32(unitByte(b))
}

// ValueColor unpacks a ClassColor value into components in [0, 1].
func ValueColor(v uint32) (r, g, b, a float32) {
	return float32(v>>16&0xFF) / 255, float32(v>>8&0xFF) / 255, float32(v&0xFF) / 255, float32(v>>24) / 255
}

func unitByte(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	default:
		return uint8(f*255 + 0.5)
	}
}

// checkValue validates a generic value against its class.
func checkValue(class ValueClass, value uint32) error {
	switch class {
	case ClassBool:
		if value > 1 {
			return fmt.Errorf("boolean state value %d: %w", value, ErrInvalidArgument)
		}
	case ClassFilter:
		switch value {
		case FilterNone, FilterPoint, FilterLinear, FilterAnisotropic, FilterPyramidalQuad, FilterGaussianQuad:
		default:
			return fmt.Errorf("filter value %d: %w", value, ErrInvalidArgument)
		}
	case ClassRaw, ClassFloat, ClassColor:
	default:
		if value < 1 || value > classRange[class] {
			return fmt.Errorf("value %d out of range 1..%d: %w", value, classRange[class], ErrInvalidArgument)
		}
	}
	return nil
}

// stateStatus records whether a backend maps a state. The zero value marks a table gap.
type stateStatus uint8

const (
	stateMissing stateStatus = iota
	stateMapped
	stateUnsupported
)

// stateMapping is one entry of a backend's state table.
type stateMapping struct {
	token  uint32
	status stateStatus
}

func mapped(token uint32) stateMapping {
	return stateMapping{token: token, status: stateMapped}
}

var unsupported = stateMapping{status: stateUnsupported}

// valueAliases translates enumerated generic values to a backend's native values. Each slice
// is indexed by generic value, index 0 is unused. Classes without a slice pass through.
type valueAliases [valueClassCount][]uint32

func (a *valueAliases) toNative(class ValueClass, value uint32) (uint32, error) {
	table := a[class]
	if table == nil {
		return value, nil
	}
	if value == 0 || int(value) >= len(table) {
		return 0, fmt.Errorf("value %d has no native alias: %w", value, ErrInvalidArgument)
	}
	return table[value], nil
}

func (a *valueAliases) toGeneric(class ValueClass, native uint32) (uint32, error) {
	table := a[class]
	if table == nil {
		return native, nil
	}
	for generic := 1; generic < len(table); generic++ {
		if table[generic] == native {
			return uint32(generic), nil
		}
	}
	return 0, fmt.Errorf("native value %#x has no generic alias: %w", native, ErrInvalidArgument)
}
