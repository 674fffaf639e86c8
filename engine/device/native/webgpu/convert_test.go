package webgpu

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

func TestEnumTablesComplete(t *testing.T) {
	if len(compareFunctions) != 8 {
		t.Errorf("compare functions = %d, want 8", len(compareFunctions))
	}
	if len(blendFactors) != 13 {
		t.Errorf("blend factors = %d, want 13", len(blendFactors))
	}
	if len(blendOperations) != 5 {
		t.Errorf("blend operations = %d, want 5", len(blendOperations))
	}
	if len(stencilOperations) != 8 {
		t.Errorf("stencil operations = %d, want 8", len(stencilOperations))
	}
}

func TestSurfaceFormatRoundTrip(t *testing.T) {
	for g, w := range textureFormats {
		if got := surfaceFormat(w); got != g {
			t.Errorf("surfaceFormat(%v) = %v, want %v", w, got, g)
		}
	}
	if got := surfaceFormat(wgpu.TextureFormatRGBA16Float); got != gputypes.TextureFormatUndefined {
		t.Errorf("unknown format mapped to %v", got)
	}
}

func TestColorWriteMask(t *testing.T) {
	if got := colorWriteMask(gputypes.ColorWriteMaskAll); got != wgpu.ColorWriteMaskAll {
		t.Errorf("all = %v, want %v", got, wgpu.ColorWriteMaskAll)
	}
	if got := colorWriteMask(gputypes.ColorWriteMaskRed | gputypes.ColorWriteMaskAlpha); got != wgpu.ColorWriteMaskRed|wgpu.ColorWriteMaskAlpha {
		t.Errorf("red|alpha = %v", got)
	}
	if got := colorWriteMask(0); got != 0 {
		t.Errorf("none = %v, want 0", got)
	}
}

func TestBufferUsage(t *testing.T) {
	got := bufferUsage(gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst)
	if got != wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst {
		t.Errorf("uniform|copydst = %v", got)
	}
	got = bufferUsage(gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst)
	if got != wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst {
		t.Errorf("index|copydst = %v", got)
	}
}

func TestVertexBufferLayout(t *testing.T) {
	l := vertexBufferLayout(gputypes.VertexBufferLayout{
		ArrayStride: 24,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatUnorm8x4, Offset: 12, ShaderLocation: 2},
		},
	})
	if l.ArrayStride != 24 || l.StepMode != wgpu.VertexStepModeVertex {
		t.Fatalf("layout = %+v", l)
	}
	if len(l.Attributes) != 2 || l.Attributes[1].Format != wgpu.VertexFormatUnorm8x4 || l.Attributes[1].ShaderLocation != 2 {
		t.Errorf("attributes = %+v", l.Attributes)
	}
}
