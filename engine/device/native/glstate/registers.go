// Package glstate keeps the shadow copy of the GL render state registers written through
// device.GLNative.SetRenderState and translates register writes into GL calls.
package glstate

import (
	"github.com/Carmen-Shannon/oxy-gfx/engine/device"
)

const (
	glCullFace          uint32 = 0x0B44
	glFront             uint32 = 0x0404
	glBack              uint32 = 0x0405
	glFrontAndBack      uint32 = 0x0408
	glPolygonOffsetFill uint32 = 0x8037
)

// Sink receives the GL calls produced by register writes. The fixed-function methods are only
// called for registers of the compatibility profile.
type Sink interface {
	Enable(cap uint32)
	Disable(cap uint32)
	DepthMask(on bool)
	DepthFunc(fn uint32)
	FrontFace(mode uint32)
	CullFace(mode uint32)
	PolygonMode(face, mode uint32)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32)
	BlendEquationSeparate(rgb, alpha uint32)
	StencilFunc(fn uint32, ref int32, mask uint32)
	StencilOp(fail, zfail, zpass uint32)
	StencilMask(mask uint32)
	ColorMask(r, g, b, a bool)
	PolygonOffset(factor, units float32)
	PointSize(size float32)

	ShadeModel(mode uint32)
	AlphaFunc(fn uint32, ref float32)
	Fogf(pname uint32, value float32)
	Fogfv(pname uint32, value [4]float32)
	LightModelAmbient(color [4]float32)
}

// capabilities are the registers that map one to one onto glEnable/glDisable.
var capabilities = map[uint32]bool{
	device.GLDepthTest:   true,
	device.GLDither:      true,
	device.GLBlend:       true,
	device.GLStencilTest: true,
	device.GLScissorTest: true,
	device.GLMultisample: true,
	device.GLAlphaTest:   true,
	device.GLFog:         true,
	device.GLLighting:    true,
	device.GLNormalize:   true,
}

// fixedFunction are the registers a core profile context does not have.
var fixedFunction = map[uint32]bool{
	device.GLShadeModel:        true,
	device.GLAlphaTest:         true,
	device.GLAlphaTestFunc:     true,
	device.GLAlphaTestRef:      true,
	device.GLFog:               true,
	device.GLFogColor:          true,
	device.GLFogStart:          true,
	device.GLFogEnd:            true,
	device.GLFogDensity:        true,
	device.GLLighting:          true,
	device.GLLightModelAmbient: true,
	device.GLNormalize:         true,
}

// Registers is the shadow register file of one GL context.
type Registers struct {
	values        map[uint32]uint32
	fixedFunction bool
}

// New returns a register file holding the GL defaults.
//
// Parameters:
//   - fixedFunction: whether the context is a compatibility profile with fixed-function state
//
// Returns:
//   - *Registers: the register file
func New(fixedFunction bool) *Registers {
	return &Registers{values: device.GLDefaultRenderStates(), fixedFunction: fixedFunction}
}

// Get returns the last value written to a register.
func (r *Registers) Get(token uint32) uint32 {
	return r.values[token]
}

// Set stores a register value and issues the GL calls it implies. Writing the value a register
// already holds issues nothing.
//
// Parameters:
//   - sink: the GL call target
//   - token: the register token
//   - value: the register value in device.GLNative encoding
func (r *Registers) Set(sink Sink, token, value uint32) {
	if !r.accepts(token) {
		return
	}
	if old, ok := r.values[token]; ok && old == value {
		return
	}
	r.values[token] = value
	r.apply(sink, token)
}

// ApplyAll pushes every register to the context. Used once after the context is created so the
// driver state matches the shadow copy.
func (r *Registers) ApplyAll(sink Sink) {
	for token := range r.values {
		if r.accepts(token) {
			r.apply(sink, token)
		}
	}
}

func (r *Registers) accepts(token uint32) bool {
	return r.fixedFunction || !fixedFunction[token]
}

func (r *Registers) apply(sink Sink, token uint32) {
	v := r.values[token]
	if capabilities[token] {
		if v != 0 {
			sink.Enable(token)
		} else {
			sink.Disable(token)
		}
		return
	}

	switch token {
	case device.GLDepthWriteMask:
		sink.DepthMask(v != 0)
	case device.GLDepthFunc:
		sink.DepthFunc(v)
	case device.GLCullFaceMode:
		switch v {
		case device.GLCW:
			sink.Enable(glCullFace)
			sink.FrontFace(device.GLCCW)
			sink.CullFace(glBack)
		case device.GLCCW:
			sink.Enable(glCullFace)
			sink.FrontFace(device.GLCCW)
			sink.CullFace(glFront)
		default:
			sink.Disable(glCullFace)
		}
	case device.GLPolygonMode:
		sink.PolygonMode(glFrontAndBack, v)
	case device.GLBlendSrcRGB, device.GLBlendDstRGB, device.GLBlendSrcAlpha, device.GLBlendDstAlpha:
		sink.BlendFuncSeparate(
			r.values[device.GLBlendSrcRGB],
			r.values[device.GLBlendDstRGB],
			r.values[device.GLBlendSrcAlpha],
			r.values[device.GLBlendDstAlpha],
		)
	case device.GLBlendEquationRGB, device.GLBlendEquationAlpha:
		sink.BlendEquationSeparate(r.values[device.GLBlendEquationRGB], r.values[device.GLBlendEquationAlpha])
	case device.GLStencilFunc, device.GLStencilRef, device.GLStencilValueMask:
		sink.StencilFunc(
			r.values[device.GLStencilFunc],
			int32(r.values[device.GLStencilRef]),
			r.values[device.GLStencilValueMask],
		)
	case device.GLStencilFail, device.GLStencilPassDepthFail, device.GLStencilPassDepthPass:
		sink.StencilOp(
			r.values[device.GLStencilFail],
			r.values[device.GLStencilPassDepthFail],
			r.values[device.GLStencilPassDepthPass],
		)
	case device.GLStencilWriteMask:
		sink.StencilMask(v)
	case device.GLColorWriteMask:
		sink.ColorMask(
			v&device.ColorWriteRed != 0,
			v&device.ColorWriteGreen != 0,
			v&device.ColorWriteBlue != 0,
			v&device.ColorWriteAlpha != 0,
		)
	case device.GLPolygonOffsetFactor, device.GLPolygonOffsetUnits:
		factor := device.ValueFloat(r.values[device.GLPolygonOffsetFactor])
		units := device.DepthBiasUnits(r.values[device.GLPolygonOffsetUnits])
		if factor != 0 || units != 0 {
			sink.Enable(glPolygonOffsetFill)
		} else {
			sink.Disable(glPolygonOffsetFill)
		}
		sink.PolygonOffset(factor, units)
	case device.GLPointSize:
		sink.PointSize(device.ValueFloat(v))
	case device.GLShadeModel:
		sink.ShadeModel(v)
	case device.GLAlphaTestFunc, device.GLAlphaTestRef:
		sink.AlphaFunc(r.values[device.GLAlphaTestFunc], float32(r.values[device.GLAlphaTestRef])/255)
	case device.GLFogColor:
		sink.Fogfv(device.GLFogColor, color(v))
	case device.GLFogStart, device.GLFogEnd, device.GLFogDensity:
		sink.Fogf(token, device.ValueFloat(v))
	case device.GLLightModelAmbient:
		sink.LightModelAmbient(color(v))
	}
}

func color(v uint32) [4]float32 {
	r, g, b, a := device.ValueColor(v)
	return [4]float32{r, g, b, a}
}
