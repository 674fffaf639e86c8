package gl21

import (
	"github.com/Carmen-Shannon/oxy-gfx/engine/device/native/glstate"
	"github.com/go-gl/gl/v2.1/gl"
)

// sink forwards register writes to the compatibility profile.
type sink struct{}

var _ glstate.Sink = sink{}

func (sink) Enable(c uint32)                  { gl.Enable(c) }
func (sink) Disable(c uint32)                 { gl.Disable(c) }
func (sink) DepthMask(on bool)                { gl.DepthMask(on) }
func (sink) DepthFunc(fn uint32)              { gl.DepthFunc(fn) }
func (sink) FrontFace(mode uint32)            { gl.FrontFace(mode) }
func (sink) CullFace(mode uint32)             { gl.CullFace(mode) }
func (sink) PolygonMode(face, mode uint32)    { gl.PolygonMode(face, mode) }
func (sink) StencilMask(mask uint32)          { gl.StencilMask(mask) }
func (sink) ColorMask(r, g, b, a bool)        { gl.ColorMask(r, g, b, a) }
func (sink) PolygonOffset(factor, u float32)  { gl.PolygonOffset(factor, u) }
func (sink) PointSize(size float32)           { gl.PointSize(size) }
func (sink) ShadeModel(mode uint32)           { gl.ShadeModel(mode) }
func (sink) AlphaFunc(fn uint32, ref float32) { gl.AlphaFunc(fn, ref) }
func (sink) Fogf(pname uint32, v float32)     { gl.Fogf(pname, v) }

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

func (sink) Fogfv(pname uint32, v [4]float32) {
	gl.Fogfv(pname, &v[0])
}

func (sink) LightModelAmbient(c [4]float32) {
	gl.LightModelfv(gl.LIGHT_MODEL_AMBIENT, &c[0])
}
