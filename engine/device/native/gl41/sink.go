package gl41

import (
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/glstate"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// sink forwards register writes to the core profile. The fixed-function registers never reach it.
type sink struct{}

var _ glstate.Sink = sink{}

func (sink) Enable(c uint32)                 { gl.Enable(c) }
func (sink) Disable(c uint32)                { gl.Disable(c) }
func (sink) DepthMask(on bool)               { gl.DepthMask(on) }
func (sink) DepthFunc(fn uint32)             { gl.DepthFunc(fn) }
func (sink) FrontFace(mode uint32)           { gl.FrontFace(mode) }
func (sink) CullFace(mode uint32)            { gl.CullFace(mode) }
func (sink) PolygonMode(face, mode uint32)   { gl.PolygonMode(face, mode) }
func (sink) StencilMask(mask uint32)         { gl.StencilMask(mask) }
func (sink) ColorMask(r, g, b, a bool)       { gl.ColorMask(r, g, b, a) }
func (sink) PolygonOffset(factor, u float32) { gl.PolygonOffset(factor, u) }
func (sink) PointSize(size float32)          { gl.PointSize(size) }

func (sink) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha uint32) {
	gl.BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha)
}

func (sink) BlendEquationSeparate(rgb, alpha uint32) {
	gl.BlendEquationSeparate(rgb, alpha)
}

func (sink) StencilFunc(fn uint32, ref int32, mask uint32) {
	gl.StencilFunc(fn, ref, mask)
}

func (sink) StencilOp(fail, zfail, zpass uint32) {
	gl.StencilOp(fail, zfail, zpass)
}

func (sink) ShadeModel(uint32)            {}
func (sink) AlphaFunc(uint32, float32)    {}
func (sink) Fogf(uint32, float32)         {}
func (sink) Fogfv(uint32, [4]float32)     {}
func (sink) LightModelAmbient([4]float32) {}
